package query

import "github.com/travigo/railcommute/pkg/ctdf"

// Departures is the departure board from Origin filtered to services calling at Destination
type Departures struct {
	Direction   ctdf.TravelDirection
	Origin      ctdf.Station
	Destination ctdf.Station

	Count                int
	IncludeCallingPoints bool
}
