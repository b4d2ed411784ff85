package query

import (
	"time"

	"github.com/travigo/railcommute/pkg/ctdf"
)

// ArrivalWeather is the forecast at Station for the hour of ArrivalTime (HH:MM) on Date
type ArrivalWeather struct {
	Station     ctdf.Station
	ArrivalTime string
	Date        time.Time
}
