package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/travigo/railcommute/pkg/config"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/dataaggregator"
	"github.com/travigo/railcommute/pkg/dataaggregator/query"
	"github.com/travigo/railcommute/pkg/events"
	"github.com/travigo/railcommute/pkg/metrics"
	"github.com/travigo/railcommute/pkg/notify"
	"github.com/travigo/railcommute/pkg/preferences"
	"github.com/travigo/railcommute/pkg/realtime/progress"
	"github.com/travigo/railcommute/pkg/util"
)

var ErrNoJourney = errors.New("no journey in progress")

const weatherLookupTimeout = 30 * time.Second

// Session tracks a single boarded journey from Start until it arrives or is ended.
//
// Start, Tick and End are serialised so progress and alert state only ever have one
// writer. Weather lookups and settings changes arrive from other goroutines and are
// only applied if the journey they were issued for is still the current one.
type Session struct {
	Route       *config.Route
	Aggregator  *dataaggregator.Aggregator
	Policy      *notify.Policy
	Preferences preferences.Store
	Events      events.Publisher
	Metrics     *metrics.Collector

	Now func() time.Time

	transition sync.Mutex
	stop       func()

	mutex           sync.Mutex
	state           State
	weather         WeatherState
	settings        ctdf.JourneyAlertSettings
	destination     ctdf.Station
	generation      uint64
	weatherSequence uint64

	lookups conc.WaitGroup
	updates chan struct{}
}

func New(route *config.Route, aggregator *dataaggregator.Aggregator, policy *notify.Policy, store preferences.Store) *Session {
	return &Session{
		Route:       route,
		Aggregator:  aggregator,
		Policy:      policy,
		Preferences: store,
		Events:      events.LogPublisher{},
		Now:         time.Now,

		state:    Idle{},
		weather:  WeatherIdle{},
		settings: ctdf.DefaultJourneyAlertSettings(),
		updates:  make(chan struct{}, 1),
	}
}

func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.state
}

func (s *Session) Weather() WeatherState {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.weather
}

// Settings are the alert settings the current journey is being evaluated with
func (s *Session) Settings() ctdf.JourneyAlertSettings {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.settings
}

// Updates is signalled whenever the journey or weather state changes. Signals are
// coalesced so a slow reader should re-read State and Weather each time.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

// Start begins tracking departure. Any journey already being tracked is replaced and
// its ticker, settings subscription and pending weather are abandoned.
func (s *Session) Start(ctx context.Context, departure ctdf.TrainDeparture, direction ctdf.TravelDirection) (*ctdf.ActiveJourney, error) {
	if departure.ServiceID == "" {
		return nil, errors.New("departure has no service id")
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("unknown direction %q", direction)
	}

	s.transition.Lock()
	defer s.transition.Unlock()

	if previous := JourneyOf(s.State()); previous != nil {
		log.Info().Str("journey", previous.JourneyID).Msg("Replacing journey in progress")
	}
	s.stopTracking()

	origin, destination := s.Route.Endpoints(direction)

	journey := &ctdf.ActiveJourney{
		JourneyID:       uuid.NewString(),
		ServiceID:       departure.ServiceID,
		BoardedAt:       s.now(),
		Direction:       direction,
		OriginCrs:       origin.Crs,
		OriginName:      origin.Name,
		DestinationCrs:  destination.Crs,
		DestinationName: destination.Name,
	}
	if err := copier.CopyWithOption(&journey.TrainDeparture, &departure, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	if err := copier.CopyWithOption(&journey.CallingPoints, &departure.CallingPoints, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}

	s.Policy.Reset()

	trackingContext, cancel := context.WithCancel(context.Background())
	settingsUpdates, unsubscribe := s.Preferences.Subscribe(trackingContext)
	settings := ctdf.DefaultJourneyAlertSettings()
	if current, ok := <-settingsUpdates; ok {
		settings = current
	}

	initialProgress := progress.Calculate(journey, s.nowMinutes())

	s.mutex.Lock()
	s.generation++
	generation := s.generation
	s.state = Active{Journey: journey, Progress: initialProgress}
	s.settings = settings
	s.destination = destination
	s.weather = WeatherIdle{}
	if arrivalTime, ok := weatherArrivalTime(initialProgress); ok {
		s.requestWeatherLocked(generation, arrivalTime)
	}
	s.mutex.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.followSettings(generation, settingsUpdates)
	}()
	go func() {
		defer wg.Done()
		s.run(trackingContext, generation)
	}()

	s.stop = func() {
		cancel()
		unsubscribe()
		wg.Wait()
	}

	s.publish(ctdf.EventTypeJourneyStarted, journey, &initialProgress, "")
	s.Metrics.JourneyStarted()
	s.signal()

	log.Info().
		Str("journey", journey.JourneyID).
		Str("service", journey.ServiceID).
		Str("from", journey.OriginName).
		Str("to", journey.DestinationName).
		Msg("Journey started")

	return journey, nil
}

// Tick recalculates progress for the journey being tracked straight away.
// A completed journey is returned unchanged.
func (s *Session) Tick(ctx context.Context) (State, error) {
	s.mutex.Lock()
	generation := s.generation
	s.mutex.Unlock()

	return s.tick(ctx, generation)
}

// End stops tracking and returns the session to Idle
func (s *Session) End() error {
	s.transition.Lock()
	defer s.transition.Unlock()

	journey := JourneyOf(s.State())
	if journey == nil {
		return ErrNoJourney
	}

	s.stopTracking()

	s.mutex.Lock()
	s.generation++
	s.state = Idle{}
	s.weather = WeatherIdle{}
	s.mutex.Unlock()

	s.publish(ctdf.EventTypeJourneyEnded, journey, nil, "")
	s.Metrics.JourneyEnded()
	s.signal()

	log.Info().Str("journey", journey.JourneyID).Msg("Journey ended")

	return nil
}

// Close stops tracking without changing state and waits for outstanding lookups
func (s *Session) Close() {
	s.transition.Lock()
	s.stopTracking()
	s.mutex.Lock()
	s.generation++
	s.mutex.Unlock()
	s.transition.Unlock()

	s.lookups.Wait()
}

// WaitForLookups blocks until every weather lookup issued so far has finished
func (s *Session) WaitForLookups() {
	s.lookups.Wait()
}

func (s *Session) tick(ctx context.Context, generation uint64) (State, error) {
	s.transition.Lock()
	defer s.transition.Unlock()

	s.mutex.Lock()
	active, isActive := s.state.(Active)
	current := s.state
	settings := s.settings
	stale := s.generation != generation
	s.mutex.Unlock()

	if stale {
		return current, nil
	}
	if _, idle := current.(Idle); idle {
		return current, ErrNoJourney
	}
	if !isActive {
		return current, nil
	}

	started := time.Now()
	defer s.Metrics.ObserveTick(started)

	journeyProgress := progress.Calculate(active.Journey, s.nowMinutes())

	action := s.Policy.Evaluate(ctx, journeyProgress, settings)
	if action != notify.ActionNone {
		s.Metrics.Alert(string(action))
		s.publish(ctdf.EventTypeArrivalAlertTriggered, active.Journey, &journeyProgress, string(action))
	}

	var next State
	if journeyProgress.HasArrived {
		s.stopTracking()
		next = Completed{Journey: active.Journey, Progress: journeyProgress}
	} else {
		next = Active{Journey: active.Journey, Progress: journeyProgress}
	}

	s.mutex.Lock()
	s.state = next
	if !journeyProgress.HasArrived && !sameTime(journeyProgress.EstimatedArrivalTime, active.Progress.EstimatedArrivalTime) {
		if arrivalTime, ok := weatherArrivalTime(journeyProgress); ok {
			s.requestWeatherLocked(generation, arrivalTime)
		}
	}
	s.mutex.Unlock()

	if journeyProgress.HasArrived {
		s.publish(ctdf.EventTypeJourneyCompleted, active.Journey, &journeyProgress, "")
		s.Metrics.JourneyCompleted()

		log.Info().Str("journey", active.Journey.JourneyID).Int("delay", journeyProgress.DelayMinutes).Msg("Journey completed")
	}
	s.signal()

	return next, nil
}

func (s *Session) run(ctx context.Context, generation uint64) {
	ticker := time.NewTicker(s.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Tick stops the tracking itself on arrival so run it separately to avoid
			// waiting on our own exit
			done := make(chan State, 1)
			go func() {
				state, _ := s.tick(ctx, generation)
				done <- state
			}()

			select {
			case <-ctx.Done():
				return
			case state := <-done:
				if _, active := state.(Active); !active {
					return
				}
			}
		}
	}
}

func (s *Session) followSettings(generation uint64, updates <-chan ctdf.JourneyAlertSettings) {
	for settings := range updates {
		s.mutex.Lock()
		if s.generation == generation {
			s.settings = settings
		}
		s.mutex.Unlock()

		log.Debug().
			Bool("enabled", settings.TwoMinuteAlertEnabled).
			Str("preference", string(settings.AlertPreference)).
			Msg("Alert settings changed")
	}
}

// requestWeatherLocked must be called with s.mutex held
func (s *Session) requestWeatherLocked(generation uint64, arrivalTime string) {
	s.weatherSequence++
	sequence := s.weatherSequence
	destination := s.destination
	date := s.now().In(s.location())

	s.weather = WeatherLoading{}

	s.lookups.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), weatherLookupTimeout)
		defer cancel()

		started := time.Now()
		weather, err := dataaggregator.Lookup[*ctdf.ArrivalWeather](ctx, s.Aggregator, query.ArrivalWeather{
			Station:     destination,
			ArrivalTime: arrivalTime,
			Date:        date,
		})
		s.Metrics.ObserveProvider("weather", started, err)

		s.mutex.Lock()
		if s.generation != generation || s.weatherSequence != sequence {
			s.mutex.Unlock()

			s.Metrics.Stale("weather")
			log.Debug().Str("arrival", arrivalTime).Msg("Discarding superseded weather")
			return
		}

		if err != nil || weather == nil {
			message := "Unknown error"
			if err != nil {
				message = err.Error()
			}
			s.weather = WeatherError{Message: message}
			log.Warn().Err(err).Str("arrival", arrivalTime).Msg("Failed to get arrival weather")
		} else {
			s.weather = WeatherSuccess{Weather: *weather}
		}
		s.mutex.Unlock()

		s.signal()
	})
}

// stopTracking must be called with s.transition held
func (s *Session) stopTracking() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

func (s *Session) publish(eventType ctdf.EventType, journey *ctdf.ActiveJourney, journeyProgress *ctdf.JourneyProgress, action string) {
	if s.Events == nil {
		return
	}

	err := s.Events.Publish(ctdf.Event{
		Type:      eventType,
		Timestamp: s.now(),
		Body: &ctdf.JourneyEvent{
			JourneyID:          journey.JourneyID,
			ServiceID:          journey.ServiceID,
			OriginName:         journey.OriginName,
			DestinationName:    journey.DestinationName,
			ScheduledDeparture: journey.TrainDeparture.ScheduledDeparture,
			Progress:           journeyProgress,
			AlertAction:        action,
		},
	})
	if err != nil {
		log.Error().Err(err).Str("type", string(eventType)).Msg("Failed to publish journey event")
	}
}

func (s *Session) signal() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}

	return s.Now()
}

func (s *Session) location() *time.Location {
	if s.Route.Location == nil {
		return time.Local
	}

	return s.Route.Location
}

func (s *Session) nowMinutes() int {
	return util.ClockMinutes(s.now().In(s.location()))
}

func (s *Session) tickInterval() time.Duration {
	if s.Route.TickInterval <= 0 {
		return 30 * time.Second
	}

	return s.Route.TickInterval
}

// weatherArrivalTime is the time to look the forecast up for. An estimate that is only a
// status word falls back to the timetabled arrival.
func weatherArrivalTime(p ctdf.JourneyProgress) (string, bool) {
	if p.EstimatedArrivalTime == nil {
		return "", false
	}

	if _, ok := util.ParseClock(*p.EstimatedArrivalTime); ok {
		return *p.EstimatedArrivalTime, true
	}

	if p.ScheduledArrivalTime != nil {
		if _, ok := util.ParseClock(*p.ScheduledArrivalTime); ok {
			return *p.ScheduledArrivalTime, true
		}
	}

	return *p.EstimatedArrivalTime, true
}

func sameTime(a *string, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
