package session

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railcommute/pkg/config"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/dataaggregator"
	"github.com/travigo/railcommute/pkg/dataaggregator/query"
	"github.com/travigo/railcommute/pkg/metrics"
	"github.com/travigo/railcommute/pkg/notify"
	"github.com/travigo/railcommute/pkg/preferences"
)

type fakeWeather struct {
	mutex   sync.Mutex
	queries []query.ArrivalWeather
	err     error

	// Lookups for this arrival time wait for release
	hold    string
	release chan struct{}
}

func (f *fakeWeather) GetName() string { return "fake weather" }

func (f *fakeWeather) Supports() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(ctdf.ArrivalWeather{})}
}

func (f *fakeWeather) Lookup(ctx context.Context, q any) (interface{}, error) {
	weatherQuery, ok := q.(query.ArrivalWeather)
	if !ok {
		return nil, errors.New("unexpected query")
	}

	f.mutex.Lock()
	f.queries = append(f.queries, weatherQuery)
	err := f.err
	hold, release := f.hold, f.release
	f.mutex.Unlock()

	if hold != "" && weatherQuery.ArrivalTime == hold {
		<-release
	}

	if err != nil {
		return nil, err
	}

	weather := ctdf.NewArrivalWeather(70, 1.5, 61)
	return &weather, nil
}

func (f *fakeWeather) arrivalTimes() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	var times []string
	for _, q := range f.queries {
		times = append(times, q.ArrivalTime)
	}

	return times
}

type recordedEvents struct {
	mutex  sync.Mutex
	events []ctdf.Event
}

func (r *recordedEvents) Publish(event ctdf.Event) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.events = append(r.events, event)
	return nil
}

func (r *recordedEvents) types() []ctdf.EventType {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var types []ctdf.EventType
	for _, event := range r.events {
		types = append(types, event.Type)
	}

	return types
}

type testClock struct {
	mutex sync.Mutex
	now   time.Time
}

func (c *testClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.now
}

func (c *testClock) Set(clock string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		panic(err)
	}
	c.now = time.Date(2024, 3, 4, parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
}

type harness struct {
	session *Session
	clock   *testClock
	weather *fakeWeather
	events  *recordedEvents
	sink    *notify.RecordingSink
	store   *preferences.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	route := config.DefaultRoute()
	route.Location = time.UTC
	// Long enough that only explicit ticks run unless a test shortens it
	route.TickInterval = time.Hour

	h := &harness{
		clock:   &testClock{},
		weather: &fakeWeather{},
		events:  &recordedEvents{},
		sink:    &notify.RecordingSink{},
		store:   preferences.NewMemoryStore(),
	}
	h.clock.Set("08:00")

	aggregator := &dataaggregator.Aggregator{}
	aggregator.RegisterSource(h.weather)

	h.session = New(route, aggregator, notify.NewPolicy(h.sink, nil), h.store)
	h.session.Now = h.clock.Now
	h.session.Events = h.events
	h.session.Metrics = metrics.NewCollector(route.TickInterval)

	t.Cleanup(h.session.Close)

	return h
}

func strPtr(s string) *string {
	return &s
}

func testDeparture() ctdf.TrainDeparture {
	return ctdf.TrainDeparture{
		ServiceID:          "svc-1",
		ScheduledDeparture: "08:00",
		EstimatedDeparture: "On time",
		Platform:           "1",
		DestinationName:    "Fenchurch Street",
		Status:             ctdf.TrainStatusOnTime,
		CallingPoints: []ctdf.CallingPoint{
			{LocationName: "Benfleet", Crs: "BEF", ScheduledTime: strPtr("08:08")},
			{LocationName: "Upminster", Crs: "UPM", ScheduledTime: strPtr("08:25")},
			{LocationName: "London Fenchurch Street", Crs: "FST", ScheduledTime: strPtr("08:45"), EstimatedTime: strPtr("08:48")},
		},
	}
}

func activeState(t *testing.T, state State) Active {
	t.Helper()

	active, ok := state.(Active)
	require.True(t, ok, "expected Active, got %s", state.Name())

	return active
}

func TestStartBuildsJourney(t *testing.T) {
	h := newHarness(t)

	journey, err := h.session.Start(context.Background(), testDeparture(), ctdf.TravelDirectionToB)
	require.NoError(t, err)

	assert.NotEmpty(t, journey.JourneyID)
	assert.Equal(t, "svc-1", journey.ServiceID)
	assert.Equal(t, "LES", journey.OriginCrs)
	assert.Equal(t, "FST", journey.DestinationCrs)
	assert.Equal(t, "Fenchurch Street", journey.DestinationName)
	assert.Equal(t, h.clock.Now(), journey.BoardedAt)

	active := activeState(t, h.session.State())
	assert.Same(t, journey, active.Journey)
	assert.Equal(t, 0, active.Progress.CurrentStopIndex)
	assert.Equal(t, 3, active.Progress.TotalStops)
	assert.Equal(t, 48, *active.Progress.MinutesToArrival)

	h.session.WaitForLookups()
	weather, ok := h.session.Weather().(WeatherSuccess)
	require.True(t, ok)
	assert.True(t, weather.Weather.ShouldBringUmbrella)
	assert.Equal(t, []string{"08:48"}, h.weather.arrivalTimes())

	assert.Equal(t, []ctdf.EventType{ctdf.EventTypeJourneyStarted}, h.events.types())
}

func TestStartValidates(t *testing.T) {
	h := newHarness(t)

	departure := testDeparture()
	departure.ServiceID = ""
	_, err := h.session.Start(context.Background(), departure, ctdf.TravelDirectionToB)
	assert.Error(t, err)

	_, err = h.session.Start(context.Background(), testDeparture(), ctdf.TravelDirection("SIDEWAYS"))
	assert.Error(t, err)

	assert.IsType(t, Idle{}, h.session.State())
}

func TestStartSnapshotsCallingPoints(t *testing.T) {
	h := newHarness(t)

	departure := testDeparture()
	journey, err := h.session.Start(context.Background(), departure, ctdf.TravelDirectionToB)
	require.NoError(t, err)

	*departure.CallingPoints[2].EstimatedTime = "09:30"
	departure.CallingPoints[0].LocationName = "Somewhere else"

	assert.Equal(t, "08:48", *journey.CallingPoints[2].EstimatedTime)
	assert.Equal(t, "Benfleet", journey.CallingPoints[0].LocationName)
	assert.Equal(t, "08:48", *journey.TrainDeparture.CallingPoints[2].EstimatedTime)
}

func TestTicksThroughAlertToCompletion(t *testing.T) {
	h := newHarness(t)

	_, err := h.session.Start(context.Background(), testDeparture(), ctdf.TravelDirectionToB)
	require.NoError(t, err)

	for _, clock := range []string{"08:30", "08:43", "08:44", "08:45", "08:46", "08:47"} {
		h.clock.Set(clock)
		state, err := h.session.Tick(context.Background())
		require.NoError(t, err)
		activeState(t, state)
	}

	spoken, vibrated := h.sink.Deliveries()
	assert.Equal(t, 0, spoken)
	assert.Equal(t, 1, vibrated)

	h.clock.Set("08:48")
	state, err := h.session.Tick(context.Background())
	require.NoError(t, err)

	completed, ok := state.(Completed)
	require.True(t, ok)
	assert.True(t, completed.Progress.HasArrived)
	assert.Equal(t, 3, completed.Progress.DelayMinutes)

	// Further ticks leave a completed journey alone
	state, err = h.session.Tick(context.Background())
	require.NoError(t, err)
	assert.IsType(t, Completed{}, state)

	assert.Equal(t, []ctdf.EventType{
		ctdf.EventTypeJourneyStarted,
		ctdf.EventTypeArrivalAlertTriggered,
		ctdf.EventTypeJourneyCompleted,
	}, h.events.types())
}

func TestArrivalOnActualTime(t *testing.T) {
	h := newHarness(t)

	departure := testDeparture()
	departure.CallingPoints[2].ActualTime = strPtr("08:44")

	_, err := h.session.Start(context.Background(), departure, ctdf.TravelDirectionToB)
	require.NoError(t, err)

	state, err := h.session.Tick(context.Background())
	require.NoError(t, err)
	assert.IsType(t, Completed{}, state)
}

func TestEnd(t *testing.T) {
	h := newHarness(t)

	assert.ErrorIs(t, h.session.End(), ErrNoJourney)

	_, err := h.session.Start(context.Background(), testDeparture(), ctdf.TravelDirectionToB)
	require.NoError(t, err)
	h.session.WaitForLookups()

	require.NoError(t, h.session.End())
	assert.IsType(t, Idle{}, h.session.State())
	assert.IsType(t, WeatherIdle{}, h.session.Weather())

	_, err = h.session.Tick(context.Background())
	assert.ErrorIs(t, err, ErrNoJourney)
	assert.ErrorIs(t, h.session.End(), ErrNoJourney)

	assert.Equal(t, []ctdf.EventType{ctdf.EventTypeJourneyStarted, ctdf.EventTypeJourneyEnded}, h.events.types())
}

func TestEndFromCompleted(t *testing.T) {
	h := newHarness(t)

	_, err := h.session.Start(context.Background(), testDeparture(), ctdf.TravelDirectionToB)
	require.NoError(t, err)

	h.clock.Set("09:00")
	_, err = h.session.Tick(context.Background())
	require.NoError(t, err)
	require.IsType(t, Completed{}, h.session.State())

	require.NoError(t, h.session.End())
	assert.IsType(t, Idle{}, h.session.State())
}

func TestWeatherAfterEndIsDiscarded(t *testing.T) {
	h := newHarness(t)
	h.weather.hold = "08:48"
	h.weather.release = make(chan struct{})

	_, err := h.session.Start(context.Background(), testDeparture(), ctdf.TravelDirectionToB)
	require.NoError(t, err)
	assert.IsType(t, WeatherLoading{}, h.session.Weather())

	require.NoError(t, h.session.End())
	close(h.weather.release)
	h.session.WaitForLookups()

	assert.IsType(t, WeatherIdle{}, h.session.Weather())
	assert.IsType(t, Idle{}, h.session.State())
}

func TestWeatherForReplacedJourneyIsDiscarded(t *testing.T) {
	h := newHarness(t)
	h.weather.hold = "08:48"
	h.weather.release = make(chan struct{})

	first, err := h.session.Start(context.Background(), testDeparture(), ctdf.TravelDirectionToB)
	require.NoError(t, err)

	h.weather.mutex.Lock()
	h.weather.err = errors.New("forecast down")
	h.weather.mutex.Unlock()

	second := testDeparture()
	second.ServiceID = "svc-2"
	second.CallingPoints[2].EstimatedTime = strPtr("08:50")

	replacement, err := h.session.Start(context.Background(), second, ctdf.TravelDirectionToB)
	require.NoError(t, err)
	assert.NotEqual(t, first.JourneyID, replacement.JourneyID)

	close(h.weather.release)
	h.session.WaitForLookups()

	weatherError, ok := h.session.Weather().(WeatherError)
	require.True(t, ok)
	assert.Equal(t, "forecast down", weatherError.Message)
	assert.Equal(t, "svc-2", JourneyOf(h.session.State()).ServiceID)

	assert.Equal(t, []ctdf.EventType{ctdf.EventTypeJourneyStarted, ctdf.EventTypeJourneyStarted}, h.events.types())
}

func TestSupersededWeatherLookupIsDiscarded(t *testing.T) {
	h := newHarness(t)

	_, err := h.session.Start(context.Background(), testDeparture(), ctdf.TravelDirectionToB)
	require.NoError(t, err)
	h.session.WaitForLookups()

	h.weather.hold = "08:55"
	h.weather.release = make(chan struct{})

	h.session.mutex.Lock()
	generation := h.session.generation
	h.session.requestWeatherLocked(generation, "08:55")
	h.session.mutex.Unlock()

	h.weather.mutex.Lock()
	h.weather.err = errors.New("late answer")
	h.weather.mutex.Unlock()

	h.session.mutex.Lock()
	h.session.requestWeatherLocked(generation, "08:57")
	h.session.mutex.Unlock()

	close(h.weather.release)
	h.session.WaitForLookups()

	// The 08:57 lookup finished with an error, the older 08:55 one must not overwrite it
	assert.IsType(t, WeatherError{}, h.session.Weather())
}

func TestWeatherUsesTimetableWhenEstimateIsStatus(t *testing.T) {
	h := newHarness(t)

	departure := testDeparture()
	departure.CallingPoints[2].EstimatedTime = strPtr("On time")

	_, err := h.session.Start(context.Background(), departure, ctdf.TravelDirectionToB)
	require.NoError(t, err)
	h.session.WaitForLookups()

	assert.Equal(t, []string{"08:45"}, h.weather.arrivalTimes())
}

func TestNoWeatherWithoutArrivalTime(t *testing.T) {
	h := newHarness(t)

	departure := testDeparture()
	departure.CallingPoints[2].Crs = "ZZZ"

	_, err := h.session.Start(context.Background(), departure, ctdf.TravelDirectionToB)
	require.NoError(t, err)
	h.session.WaitForLookups()

	assert.IsType(t, WeatherIdle{}, h.session.Weather())
	assert.Empty(t, h.weather.arrivalTimes())
}

func TestSettingsFollowedDuringJourney(t *testing.T) {
	h := newHarness(t)

	_, err := h.session.Start(context.Background(), testDeparture(), ctdf.TravelDirectionToB)
	require.NoError(t, err)
	assert.True(t, h.session.Settings().TwoMinuteAlertEnabled)

	require.NoError(t, h.store.SetTwoMinuteAlertEnabled(context.Background(), false))
	assert.Eventually(t, func() bool {
		return !h.session.Settings().TwoMinuteAlertEnabled
	}, 2*time.Second, 5*time.Millisecond)

	h.clock.Set("08:46")
	_, err = h.session.Tick(context.Background())
	require.NoError(t, err)

	spoken, vibrated := h.sink.Deliveries()
	assert.Zero(t, spoken+vibrated)
	assert.Contains(t, h.events.types(), ctdf.EventTypeArrivalAlertTriggered)
}

func TestTickerRunsUntilArrival(t *testing.T) {
	h := newHarness(t)
	h.session.Route.TickInterval = 5 * time.Millisecond

	_, err := h.session.Start(context.Background(), testDeparture(), ctdf.TravelDirectionToB)
	require.NoError(t, err)

	h.clock.Set("08:50")

	assert.Eventually(t, func() bool {
		_, completed := h.session.State().(Completed)
		return completed
	}, 2*time.Second, 5*time.Millisecond)

	select {
	case <-h.session.Updates():
	default:
		t.Fatal("expected an update signal")
	}
}
