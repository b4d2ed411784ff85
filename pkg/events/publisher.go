package events

import (
	"encoding/json"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/ctdf"
)

const QueueName = "events-queue"

type Publisher interface {
	Publish(event ctdf.Event) error
}

type bytesPublisher interface {
	PublishBytes(payload ...[]byte) error
}

// QueuePublisher puts journey events on the events queue for the events runner
type QueuePublisher struct {
	Queue bytesPublisher
}

func NewQueuePublisher(connection rmq.Connection) (*QueuePublisher, error) {
	queue, err := connection.OpenQueue(QueueName)
	if err != nil {
		return nil, err
	}

	return &QueuePublisher{Queue: queue}, nil
}

func (p *QueuePublisher) Publish(event ctdf.Event) error {
	stamp(&event)

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Queue.PublishBytes(eventBytes)
}

// LogPublisher just logs events, used when running without redis
type LogPublisher struct{}

func (LogPublisher) Publish(event ctdf.Event) error {
	stamp(&event)

	notificationData := event.GetNotificationData()
	log.Info().
		Str("type", string(event.Type)).
		Str("title", notificationData.Title).
		Msg(notificationData.Message)

	return nil
}

func stamp(event *ctdf.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
}
