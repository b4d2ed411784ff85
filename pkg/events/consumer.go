package events

import (
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/ctdf"
)

type EventsBatchConsumer struct {
	Verbose bool
}

func NewEventsBatchConsumer(verbose bool) *EventsBatchConsumer {
	return &EventsBatchConsumer{Verbose: verbose}
}

func (c *EventsBatchConsumer) Consume(batch rmq.Deliveries) {
	for _, payload := range batch.Payloads() {
		c.handle(payload)
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Fatal().Err(err).Msg("Failed to consume event")
		}
	}
}

func (c *EventsBatchConsumer) handle(payload string) (*ctdf.Event, bool) {
	var event ctdf.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		log.Error().Err(err).Msg("Failed to decode event")
		return nil, false
	}

	notificationData := event.GetNotificationData()
	log.Info().
		Str("id", event.ID).
		Str("type", string(event.Type)).
		Time("timestamp", event.Timestamp).
		Str("title", notificationData.Title).
		Msg(notificationData.Message)

	if c.Verbose {
		pretty.Println(event)
	}

	return &event, true
}
