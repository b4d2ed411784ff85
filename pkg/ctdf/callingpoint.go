package ctdf

// CallingPoint is a station a service stops at as reported by the departures feed.
// Optional times are nil when the feed omitted them.
type CallingPoint struct {
	LocationName string `json:"locationName" csv:"location" groups:"detailed"`
	Crs          string `json:"crs" csv:"crs" groups:"detailed"`

	ScheduledTime *string `json:"st,omitempty" groups:"detailed"`
	EstimatedTime *string `json:"et,omitempty" groups:"detailed"`
	ActualTime    *string `json:"at,omitempty" groups:"detailed"`

	IsCancelled *bool `json:"isCancelled,omitempty" groups:"detailed"`
	Length      *int  `json:"length,omitempty" groups:"detailed"`
}

// ExpectedTime is the estimated time, falling back to the scheduled time
func (c CallingPoint) ExpectedTime() *string {
	if c.EstimatedTime != nil {
		return c.EstimatedTime
	}

	return c.ScheduledTime
}

func (c CallingPoint) Cancelled() bool {
	return c.IsCancelled != nil && *c.IsCancelled
}
