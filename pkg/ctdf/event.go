package ctdf

import (
	"fmt"
	"time"
)

type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Body      *JourneyEvent
}

type EventType string

const (
	EventTypeJourneyStarted        EventType = "JourneyStarted"
	EventTypeArrivalAlertTriggered EventType = "ArrivalAlertTriggered"
	EventTypeJourneyCompleted      EventType = "JourneyCompleted"
	EventTypeJourneyEnded          EventType = "JourneyEnded"
)

type JourneyEvent struct {
	JourneyID          string
	ServiceID          string
	OriginName         string
	DestinationName    string
	ScheduledDeparture string

	Progress    *JourneyProgress
	AlertAction string
}

type EventNotificationData struct {
	Title   string
	Message string
}

func (e *Event) GetNotificationData() EventNotificationData {
	eventNotificationData := EventNotificationData{}

	if e.Body == nil {
		return eventNotificationData
	}

	switch e.Type {
	case EventTypeJourneyStarted:
		eventNotificationData.Title = "Journey started"
		eventNotificationData.Message = fmt.Sprintf("Tracking the %s from %s to %s.", e.Body.ScheduledDeparture, e.Body.OriginName, e.Body.DestinationName)
	case EventTypeArrivalAlertTriggered:
		eventNotificationData.Title = "Arriving soon"
		eventNotificationData.Message = fmt.Sprintf("Arriving at %s in 2 minutes.", e.Body.DestinationName)
	case EventTypeJourneyCompleted:
		eventNotificationData.Title = "Arrived"
		eventNotificationData.Message = fmt.Sprintf("The %s has arrived at %s.", e.Body.ScheduledDeparture, e.Body.DestinationName)

		if e.Body.Progress != nil && e.Body.Progress.IsDelayed {
			eventNotificationData.Message = fmt.Sprintf("%s It was %d minutes late.", eventNotificationData.Message, e.Body.Progress.DelayMinutes)
		}
	case EventTypeJourneyEnded:
		eventNotificationData.Title = "Journey ended"
		eventNotificationData.Message = fmt.Sprintf("Stopped tracking the %s to %s.", e.Body.ScheduledDeparture, e.Body.DestinationName)
	}

	return eventNotificationData
}
