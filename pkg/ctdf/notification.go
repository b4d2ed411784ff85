package ctdf

import "time"

type Notification struct {
	ID         string
	TargetUser string
	Type       NotificationType
	Kind       NotificationKind

	Title   string
	Message string

	VibrationPattern []time.Duration
}

type NotificationType string

const (
	NotificationTypePush NotificationType = "Push"
	NotificationTypeLog  NotificationType = "Log"
)

// NotificationKind is how the device should present the notification
type NotificationKind string

const (
	NotificationKindSpeak   NotificationKind = "Speak"
	NotificationKindVibrate NotificationKind = "Vibrate"
)
