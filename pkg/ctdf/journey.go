package ctdf

import "time"

// ActiveJourney is the boarded trip. It is built once and never mutated; progress is
// always recalculated against this same calling point snapshot.
type ActiveJourney struct {
	JourneyID      string         `json:"journeyId" groups:"basic,detailed"`
	ServiceID      string         `json:"serviceId" groups:"basic,detailed"`
	TrainDeparture TrainDeparture `json:"trainDeparture" groups:"detailed"`
	CallingPoints  []CallingPoint `json:"callingPoints" groups:"detailed"`
	BoardedAt      time.Time      `json:"boardedAt" groups:"basic,detailed"`

	Direction       TravelDirection `json:"direction" groups:"basic,detailed"`
	OriginCrs       string          `json:"originCrs" groups:"basic,detailed"`
	OriginName      string          `json:"originName" groups:"basic,detailed"`
	DestinationCrs  string          `json:"destinationCrs" groups:"basic,detailed"`
	DestinationName string          `json:"destinationName" groups:"basic,detailed"`
}

type JourneyProgress struct {
	CurrentStopIndex int `json:"currentStopIndex" groups:"basic,detailed"`
	TotalStops       int `json:"totalStops" groups:"basic,detailed"`
	StopsRemaining   int `json:"stopsRemaining" groups:"basic,detailed"`

	MinutesToArrival     *int    `json:"minutesToArrival" groups:"basic,detailed"`
	EstimatedArrivalTime *string `json:"estimatedArrivalTime" groups:"basic,detailed"`
	ScheduledArrivalTime *string `json:"scheduledArrivalTime" groups:"basic,detailed"`

	DelayMinutes int  `json:"delayMinutes" groups:"basic,detailed"`
	IsDelayed    bool `json:"isDelayed" groups:"basic,detailed"`

	NextStopName     *string `json:"nextStopName" groups:"basic,detailed"`
	PreviousStopName *string `json:"previousStopName" groups:"basic,detailed"`

	HasArrived bool `json:"hasArrived" groups:"basic,detailed"`
}
