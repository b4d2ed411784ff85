package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/google/uuid"
	"github.com/travigo/railcommute/pkg/ctdf"
)

const QueueName = "notify-queue"

type Publisher interface {
	PublishBytes(payload ...[]byte) error
}

// QueueSink hands alerts to the notify consumer rather than delivering them itself
type QueueSink struct {
	Queue  Publisher
	Target string
}

func NewQueueSink(connection rmq.Connection, target string) (*QueueSink, error) {
	queue, err := connection.OpenQueue(QueueName)
	if err != nil {
		return nil, err
	}

	return &QueueSink{
		Queue:  queue,
		Target: target,
	}, nil
}

func (s *QueueSink) Speak(_ context.Context, text string) error {
	return s.publish(ctdf.Notification{
		Kind:    ctdf.NotificationKindSpeak,
		Title:   "Arriving soon",
		Message: text,
	})
}

func (s *QueueSink) Vibrate(_ context.Context, pattern []time.Duration) error {
	return s.publish(ctdf.Notification{
		Kind:             ctdf.NotificationKindVibrate,
		Title:            "Arriving soon",
		Message:          ArrivalMessage,
		VibrationPattern: pattern,
	})
}

func (s *QueueSink) publish(notification ctdf.Notification) error {
	notification.ID = uuid.NewString()
	notification.TargetUser = s.Target
	notification.Type = ctdf.NotificationTypePush

	notificationBytes, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	return s.Queue.PublishBytes(notificationBytes)
}
