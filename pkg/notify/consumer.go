package notify

import (
	"context"
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/ctdf"
)

type Pusher interface {
	SendPush(ctx context.Context, notification ctdf.Notification) error
}

type NotifyBatchConsumer struct {
	Pusher Pusher
}

func NewNotifyBatchConsumer(pusher Pusher) *NotifyBatchConsumer {
	return &NotifyBatchConsumer{Pusher: pusher}
}

func (c *NotifyBatchConsumer) Consume(batch rmq.Deliveries) {
	c.deliver(context.Background(), batch.Payloads())

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Fatal().Err(err).Msg("Failed to consume from queue")
		}
	}
}

// deliver sends each queued notification. Undecodable or undeliverable ones are logged
// and dropped so they don't block the queue.
func (c *NotifyBatchConsumer) deliver(ctx context.Context, payloads []string) int {
	delivered := 0

	for _, payload := range payloads {
		var notification ctdf.Notification
		if err := json.Unmarshal([]byte(payload), &notification); err != nil {
			log.Error().Err(err).Msg("Failed to decode notification")
			continue
		}

		if err := c.Pusher.SendPush(ctx, notification); err != nil {
			log.Error().Err(err).Str("id", notification.ID).Msg("Failed to send notification")
			continue
		}

		delivered++
	}

	return delivered
}
