package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/util"
	"google.golang.org/api/option"
)

type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushSink delivers alerts to the travellers phone through Firebase Cloud Messaging.
// The app on the phone does the speaking and vibrating.
type PushSink struct {
	Sender MessageSender

	// Device registration token used when a notification has no target of its own
	Token string
}

func NewPushSink(ctx context.Context) (*PushSink, error) {
	env := util.GetEnvironmentVariables()

	fireBaseAuthKey := util.EnvironmentString(env, "FIREBASE_SERVICE_ACCOUNT", "")
	if fireBaseAuthKey == "" {
		return nil, errors.New("RAILCOMMUTE_FIREBASE_SERVICE_ACCOUNT is not set")
	}

	decodedKey, err := base64.StdEncoding.DecodeString(fireBaseAuthKey)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithCredentialsJSON(decodedKey)}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}

	fcmClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}

	return &PushSink{
		Sender: fcmClient,
		Token:  util.EnvironmentString(env, "PUSH_TOKEN", ""),
	}, nil
}

func (p *PushSink) Speak(ctx context.Context, text string) error {
	return p.SendPush(ctx, ctdf.Notification{
		Type:    ctdf.NotificationTypePush,
		Kind:    ctdf.NotificationKindSpeak,
		Title:   "Arriving soon",
		Message: text,
	})
}

func (p *PushSink) Vibrate(ctx context.Context, pattern []time.Duration) error {
	return p.SendPush(ctx, ctdf.Notification{
		Type:             ctdf.NotificationTypePush,
		Kind:             ctdf.NotificationKindVibrate,
		Title:            "Arriving soon",
		Message:          ArrivalMessage,
		VibrationPattern: pattern,
	})
}

func (p *PushSink) SendPush(ctx context.Context, notification ctdf.Notification) error {
	token := notification.TargetUser
	if token == "" {
		token = p.Token
	}
	if token == "" {
		return errors.New("failed to find push token")
	}

	_, err := p.Sender.Send(ctx, &messaging.Message{
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Message,
		},
		Data: map[string]string{
			"kind":    string(notification.Kind),
			"message": notification.Message,
			"pattern": FormatPattern(notification.VibrationPattern),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		Token: token,
	})
	if err != nil {
		return err
	}

	log.Info().Str("kind", string(notification.Kind)).Msg("Sent Push Notification")

	return nil
}
