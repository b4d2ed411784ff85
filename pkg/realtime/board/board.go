package board

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/travigo/railcommute/pkg/config"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/dataaggregator"
	"github.com/travigo/railcommute/pkg/dataaggregator/query"
	"github.com/travigo/railcommute/pkg/location"
	"github.com/travigo/railcommute/pkg/metrics"
)

var ErrUnknownDeparture = errors.New("departure is not on the board")

const defaultErrorMessage = "Failed to load train data"

// Snapshot is what the board is currently showing
type Snapshot struct {
	Direction ctdf.TravelDirection `json:"direction" groups:"basic,detailed"`
	Data      *ctdf.TrainData      `json:"data" groups:"basic,detailed"`
	Error     string               `json:"error,omitempty" groups:"basic,detailed"`

	Location      *location.Resolution `json:"location" groups:"detailed"`
	IsNearStation bool                 `json:"isNearStation" groups:"basic,detailed"`

	IsLoading   bool       `json:"isLoading" groups:"basic,detailed"`
	LastUpdated *time.Time `json:"lastUpdated" groups:"basic,detailed"`
}

// Board keeps the departure list for the direction being travelled. Fetches that come
// back after the direction has changed, or after a newer fetch has landed, are dropped.
type Board struct {
	Route      *config.Route
	Aggregator *dataaggregator.Aggregator
	Location   location.Provider
	Metrics    *metrics.Collector

	Now func() time.Time

	mutex         sync.Mutex
	snapshot      Snapshot
	dataDirection ctdf.TravelDirection
	issued        uint64
	applied       uint64
}

func New(route *config.Route, aggregator *dataaggregator.Aggregator, provider location.Provider) *Board {
	return &Board{
		Route:      route,
		Aggregator: aggregator,
		Location:   provider,
		Now:        time.Now,

		snapshot: Snapshot{
			Direction: ctdf.TravelDirectionToB,
			IsLoading: true,
		},
	}
}

func (b *Board) Snapshot() Snapshot {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.snapshot
}

func (b *Board) Direction() ctdf.TravelDirection {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.snapshot.Direction
}

// Load works out where the traveller is and fetches the board for the direction that
// implies. The board for the direction already shown is fetched while the location
// resolves and is only fetched again if the location points the other way.
func (b *Board) Load(ctx context.Context) (Snapshot, error) {
	b.mutex.Lock()
	b.snapshot.IsLoading = true
	b.snapshot.Error = ""
	guess := b.snapshot.Direction
	b.mutex.Unlock()

	var resolution *location.Resolution
	var guessed *ctdf.TrainData
	var guessErr error
	var guessSequence uint64

	var wg conc.WaitGroup
	wg.Go(func() {
		resolution = location.Locate(ctx, b.Location, b.Route)
	})
	wg.Go(func() {
		guessSequence = b.issue()
		guessed, guessErr = b.lookup(ctx, guess)
	})
	wg.Wait()

	b.mutex.Lock()
	b.snapshot.Location = resolution
	b.snapshot.IsNearStation = resolution != nil && resolution.DetectedDirection != nil
	if resolution != nil && resolution.DetectedDirection != nil {
		b.snapshot.Direction = *resolution.DetectedDirection
	}
	direction := b.snapshot.Direction
	b.mutex.Unlock()

	if direction == guess {
		return b.apply(direction, guessSequence, guessed, guessErr)
	}

	log.Debug().Str("direction", string(direction)).Msg("Location points the other way, fetching again")
	b.Metrics.Stale("departures")

	return b.fetch(ctx, direction)
}

// Refresh fetches the board again for the current direction
func (b *Board) Refresh(ctx context.Context) (Snapshot, error) {
	return b.fetch(ctx, b.Direction())
}

// ToggleDirection swaps to the other direction of travel and fetches its board
func (b *Board) ToggleDirection(ctx context.Context) (Snapshot, error) {
	b.mutex.Lock()
	b.snapshot.Direction = b.snapshot.Direction.Reverse()
	direction := b.snapshot.Direction
	b.mutex.Unlock()

	log.Info().Str("direction", string(direction)).Msg("Switched direction")

	return b.fetch(ctx, direction)
}

// Departure finds a service on the board for the current direction
func (b *Board) Departure(serviceID string) (ctdf.TrainDeparture, ctdf.TravelDirection, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.snapshot.Data == nil || b.dataDirection != b.snapshot.Direction {
		return ctdf.TrainDeparture{}, b.snapshot.Direction, ErrUnknownDeparture
	}

	departure := b.snapshot.Data.Departure(serviceID)
	if departure == nil {
		return ctdf.TrainDeparture{}, b.snapshot.Direction, ErrUnknownDeparture
	}

	return *departure, b.snapshot.Direction, nil
}

// Run refreshes the board every BoardRefreshInterval once it has something on it,
// until ctx is cancelled
func (b *Board) Run(ctx context.Context) {
	ticker := time.NewTicker(b.refreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if b.Snapshot().Data == nil {
				continue
			}

			if _, err := b.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to refresh departures")
			}
		}
	}
}

func (b *Board) fetch(ctx context.Context, direction ctdf.TravelDirection) (Snapshot, error) {
	sequence := b.issue()
	data, err := b.lookup(ctx, direction)

	return b.apply(direction, sequence, data, err)
}

func (b *Board) issue() uint64 {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.issued++
	return b.issued
}

func (b *Board) lookup(ctx context.Context, direction ctdf.TravelDirection) (*ctdf.TrainData, error) {
	origin, destination := b.Route.Endpoints(direction)

	started := time.Now()
	data, err := dataaggregator.Lookup[*ctdf.TrainData](ctx, b.Aggregator, query.Departures{
		Direction:            direction,
		Origin:               origin,
		Destination:          destination,
		Count:                b.Route.DeparturesCount,
		IncludeCallingPoints: true,
	})
	b.Metrics.ObserveProvider("departures", started, err)

	if err == nil && data == nil {
		err = errors.New(defaultErrorMessage)
	}

	return data, err
}

func (b *Board) apply(direction ctdf.TravelDirection, sequence uint64, data *ctdf.TrainData, err error) (Snapshot, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if direction != b.snapshot.Direction || sequence < b.applied {
		b.Metrics.Stale("departures")
		log.Debug().Str("direction", string(direction)).Msg("Discarding superseded departures")

		return b.snapshot, nil
	}
	b.applied = sequence

	b.snapshot.IsLoading = false

	if err != nil {
		message := err.Error()
		if message == "" {
			message = defaultErrorMessage
		}
		b.snapshot.Error = message

		log.Error().Err(err).Str("direction", string(direction)).Msg("Failed to load departures")

		return b.snapshot, err
	}

	updated := b.now()
	b.snapshot.Data = data
	b.snapshot.Error = ""
	b.snapshot.LastUpdated = &updated
	b.dataDirection = direction

	return b.snapshot, nil
}

func (b *Board) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}

	return b.Now()
}

func (b *Board) refreshInterval() time.Duration {
	if b.Route.BoardRefreshInterval <= 0 {
		return time.Minute
	}

	return b.Route.BoardRefreshInterval
}
