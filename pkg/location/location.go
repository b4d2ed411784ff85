package location

import (
	"context"
	"sync"
	"time"

	"github.com/travigo/railcommute/pkg/config"
	"github.com/travigo/railcommute/pkg/ctdf"
)

// Provider gives the travellers position on a best effort basis, nil when unknown
type Provider interface {
	CurrentLocation(ctx context.Context) *ctdf.Coordinates
}

// Reported is the last position the device sent us. Fixes older than MaxAge are ignored.
type Reported struct {
	MaxAge time.Duration
	Now    func() time.Time

	mutex       sync.Mutex
	coordinates *ctdf.Coordinates
	reportedAt  time.Time
}

func NewReported(maxAge time.Duration) *Reported {
	return &Reported{
		MaxAge: maxAge,
		Now:    time.Now,
	}
}

func (r *Reported) Report(coordinates ctdf.Coordinates) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.coordinates = &coordinates
	r.reportedAt = r.now()
}

func (r *Reported) CurrentLocation(_ context.Context) *ctdf.Coordinates {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.coordinates == nil {
		return nil
	}
	if r.MaxAge > 0 && r.now().Sub(r.reportedAt) > r.MaxAge {
		return nil
	}

	coordinates := *r.coordinates
	return &coordinates
}

func (r *Reported) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}

	return r.Now()
}

// Fixed always reports the same position, or nothing
type Fixed struct {
	Coordinates *ctdf.Coordinates
}

func (f Fixed) CurrentLocation(_ context.Context) *ctdf.Coordinates {
	return f.Coordinates
}

type NearestStation struct {
	Station       ctdf.Station `json:"station" groups:"basic,detailed"`
	DistanceMiles float64      `json:"distanceMiles" groups:"basic,detailed"`
}

type Resolution struct {
	Coordinates    ctdf.Coordinates `json:"coordinates" groups:"basic,detailed"`
	NearestStation NearestStation   `json:"nearestStation" groups:"basic,detailed"`

	// Nil when not near either end of the line
	DetectedDirection *ctdf.TravelDirection `json:"detectedDirection" groups:"basic,detailed"`

	DistanceToA float64 `json:"distanceToA" groups:"detailed"`
	DistanceToB float64 `json:"distanceToB" groups:"detailed"`
}

// Resolve works out which end of the line the traveller is near. Being near station A
// means they are heading to B and the other way round.
func Resolve(coordinates ctdf.Coordinates, route *config.Route) Resolution {
	distanceToA := coordinates.DistanceMiles(route.StationA.Location)
	distanceToB := coordinates.DistanceMiles(route.StationB.Location)

	resolution := Resolution{
		Coordinates: coordinates,
		DistanceToA: distanceToA,
		DistanceToB: distanceToB,
	}

	var detected ctdf.TravelDirection
	switch {
	case distanceToA <= route.NearStationMiles:
		detected = ctdf.TravelDirectionToB
		resolution.DetectedDirection = &detected
	case distanceToB <= route.NearStationMiles:
		detected = ctdf.TravelDirectionToA
		resolution.DetectedDirection = &detected
	}

	if distanceToA <= distanceToB {
		resolution.NearestStation = NearestStation{Station: route.StationA, DistanceMiles: distanceToA}
	} else {
		resolution.NearestStation = NearestStation{Station: route.StationB, DistanceMiles: distanceToB}
	}

	return resolution
}

// Locate asks the provider for a position and resolves it. Nil if there's no position.
func Locate(ctx context.Context, provider Provider, route *config.Route) *Resolution {
	if provider == nil {
		return nil
	}

	coordinates := provider.CurrentLocation(ctx)
	if coordinates == nil {
		return nil
	}

	resolution := Resolve(*coordinates, route)
	return &resolution
}
