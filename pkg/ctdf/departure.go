package ctdf

type TrainStatus string

const (
	TrainStatusOnTime    TrainStatus = "ON_TIME"
	TrainStatusDelayed   TrainStatus = "DELAYED"
	TrainStatusCancelled TrainStatus = "CANCELLED"
)

// TrainDeparture is the normalised form of one service on the departure board
type TrainDeparture struct {
	ServiceID          string `json:"serviceId" csv:"service_id" groups:"basic,detailed"`
	ScheduledDeparture string `json:"scheduledDeparture" csv:"scheduled" groups:"basic,detailed"`
	EstimatedDeparture string `json:"estimatedDeparture" csv:"estimated" groups:"basic,detailed"`
	Platform           string `json:"platform" csv:"platform" groups:"basic,detailed"`
	DestinationName    string `json:"destinationName" csv:"destination" groups:"basic,detailed"`

	JourneyTimeMinutes *int        `json:"journeyTimeMinutes" csv:"journey_minutes" groups:"basic,detailed"`
	Status             TrainStatus `json:"status" csv:"status" groups:"basic,detailed"`
	DelayMinutes       int         `json:"delayMinutes" csv:"delay_minutes" groups:"basic,detailed"`
	IsCancelled        bool        `json:"isCancelled" csv:"cancelled" groups:"basic,detailed"`

	CallingPoints []CallingPoint `json:"callingPoints" csv:"-" groups:"detailed"`
}

type DisruptionSeverity string

const (
	DisruptionSeverityMinor  DisruptionSeverity = "MINOR"
	DisruptionSeverityMajor  DisruptionSeverity = "MAJOR"
	DisruptionSeveritySevere DisruptionSeverity = "SEVERE"
)

type Disruption struct {
	Message  string             `json:"message" groups:"basic,detailed"`
	Severity DisruptionSeverity `json:"severity" groups:"basic,detailed"`
}

// TrainData is one departure board fetch for a direction
type TrainData struct {
	Departures  []TrainDeparture `json:"departures" groups:"basic,detailed"`
	Disruptions []Disruption     `json:"disruptions" groups:"basic,detailed"`

	FromStation string  `json:"fromStation" groups:"basic,detailed"`
	ToStation   string  `json:"toStation" groups:"basic,detailed"`
	GeneratedAt *string `json:"generatedAt" groups:"detailed"`
}

func (d *TrainData) Departure(serviceID string) *TrainDeparture {
	for i := range d.Departures {
		if d.Departures[i].ServiceID == serviceID {
			return &d.Departures[i]
		}
	}

	return nil
}
