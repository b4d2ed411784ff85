package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/util"
)

func strPtr(s string) *string {
	return &s
}

func clock(t *testing.T, s string) int {
	t.Helper()

	minutes, ok := util.ParseClock(s)
	require.True(t, ok, s)

	return minutes
}

func testJourney(callingPoints ...ctdf.CallingPoint) *ctdf.ActiveJourney {
	return &ctdf.ActiveJourney{
		JourneyID:       "journey",
		ServiceID:       "svc",
		CallingPoints:   callingPoints,
		Direction:       ctdf.TravelDirectionToB,
		OriginCrs:       "LES",
		OriginName:      "Leigh-on-Sea",
		DestinationCrs:  "FST",
		DestinationName: "Fenchurch Street",
	}
}

func commuteJourney() *ctdf.ActiveJourney {
	return testJourney(
		ctdf.CallingPoint{LocationName: "Chalkwell", Crs: "CHW", ScheduledTime: strPtr("08:03")},
		ctdf.CallingPoint{LocationName: "Benfleet", Crs: "BEF", ScheduledTime: strPtr("08:10"), EstimatedTime: strPtr("08:12")},
		ctdf.CallingPoint{LocationName: "Basildon", Crs: "BSO", ScheduledTime: strPtr("08:20")},
		ctdf.CallingPoint{LocationName: "Upminster", Crs: "UPM", ScheduledTime: strPtr("08:35")},
		ctdf.CallingPoint{LocationName: "London Fenchurch Street", Crs: "FST", ScheduledTime: strPtr("08:52"), EstimatedTime: strPtr("08:55")},
		ctdf.CallingPoint{LocationName: "Beyond", Crs: "BYD", ScheduledTime: strPtr("09:10")},
	)
}

func TestCalculatePassedIntermediateStop(t *testing.T) {
	journey := testJourney(
		ctdf.CallingPoint{LocationName: "A", Crs: "AAA", ActualTime: strPtr("08:00"), ScheduledTime: strPtr("08:00")},
		ctdf.CallingPoint{LocationName: "B", Crs: "BBB", EstimatedTime: strPtr("08:10")},
		ctdf.CallingPoint{LocationName: "C", Crs: "FST", ScheduledTime: strPtr("08:20")},
	)

	progress := Calculate(journey, clock(t, "08:15"))

	assert.Equal(t, 2, progress.CurrentStopIndex)
	assert.Equal(t, 3, progress.TotalStops)
	assert.Equal(t, 0, progress.StopsRemaining)
	require.NotNil(t, progress.MinutesToArrival)
	assert.Equal(t, 5, *progress.MinutesToArrival)
	assert.False(t, progress.HasArrived)
	assert.Equal(t, "C", *progress.NextStopName)
	assert.Equal(t, "B", *progress.PreviousStopName)
}

func TestCalculateArrivedOnActualTime(t *testing.T) {
	journey := testJourney(
		ctdf.CallingPoint{LocationName: "A", Crs: "AAA", ScheduledTime: strPtr("08:00")},
		ctdf.CallingPoint{LocationName: "C", Crs: "FST", ScheduledTime: strPtr("08:20"), EstimatedTime: strPtr("08:40"), ActualTime: strPtr("08:19")},
	)

	progress := Calculate(journey, clock(t, "07:00"))

	assert.True(t, progress.HasArrived)
	require.NotNil(t, progress.MinutesToArrival)
	assert.Equal(t, 100, *progress.MinutesToArrival)
	assert.Equal(t, 2, progress.CurrentStopIndex)
	assert.Equal(t, 0, progress.StopsRemaining)
}

func TestCalculateArrivalFields(t *testing.T) {
	progress := Calculate(commuteJourney(), clock(t, "08:15"))

	assert.Equal(t, 2, progress.CurrentStopIndex)
	assert.Equal(t, 5, progress.TotalStops)
	assert.Equal(t, 2, progress.StopsRemaining)
	assert.Equal(t, "08:55", *progress.EstimatedArrivalTime)
	assert.Equal(t, "08:52", *progress.ScheduledArrivalTime)
	assert.Equal(t, 3, progress.DelayMinutes)
	assert.True(t, progress.IsDelayed)
	assert.Equal(t, 40, *progress.MinutesToArrival)
	assert.Equal(t, "Upminster", *progress.NextStopName)
	assert.Equal(t, "Benfleet", *progress.PreviousStopName)
}

func TestCalculateSentinelArrival(t *testing.T) {
	journey := testJourney(
		ctdf.CallingPoint{LocationName: "A", Crs: "AAA", ScheduledTime: strPtr("08:00"), EstimatedTime: strPtr("On time")},
		ctdf.CallingPoint{LocationName: "C", Crs: "FST", ScheduledTime: strPtr("08:20"), EstimatedTime: strPtr("On time")},
	)

	progress := Calculate(journey, clock(t, "08:10"))

	assert.Nil(t, progress.MinutesToArrival)
	assert.Equal(t, "On time", *progress.EstimatedArrivalTime)
	assert.Equal(t, 0, progress.DelayMinutes)
	assert.False(t, progress.IsDelayed)
	assert.False(t, progress.HasArrived)
	assert.Equal(t, 0, progress.CurrentStopIndex)
	assert.Equal(t, "Leigh-on-Sea", *progress.PreviousStopName)
}

func TestCalculateDestinationMissing(t *testing.T) {
	journey := testJourney(
		ctdf.CallingPoint{LocationName: "A", Crs: "AAA", ScheduledTime: strPtr("08:00")},
		ctdf.CallingPoint{LocationName: "B", Crs: "BBB", ScheduledTime: strPtr("08:10")},
	)

	progress := Calculate(journey, clock(t, "09:00"))

	assert.Equal(t, ctdf.JourneyProgress{
		CurrentStopIndex: 0,
		TotalStops:       2,
		StopsRemaining:   2,
	}, progress)
}

func TestCalculateSingleStop(t *testing.T) {
	journey := testJourney(
		ctdf.CallingPoint{LocationName: "C", Crs: "FST", ScheduledTime: strPtr("08:20")},
	)

	progress := Calculate(journey, clock(t, "08:00"))

	assert.Equal(t, 1, progress.TotalStops)
	assert.Equal(t, 0, progress.CurrentStopIndex)
	assert.Equal(t, "C", *progress.NextStopName)
	assert.Equal(t, 1.0, Fraction(progress))

	arrived := Calculate(journey, clock(t, "08:20"))
	assert.True(t, arrived.HasArrived)
	assert.Equal(t, 0, *arrived.MinutesToArrival)
}

func TestCalculateIsPure(t *testing.T) {
	journey := commuteJourney()
	now := clock(t, "08:30")

	first := Calculate(journey, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Calculate(journey, now))
	}
}

func TestCalculateInvariants(t *testing.T) {
	journey := commuteJourney()
	destinationIndex := 4

	for now := clock(t, "07:30"); now <= clock(t, "09:30"); now++ {
		progress := Calculate(journey, now)

		assert.Equal(t, destinationIndex+1, progress.TotalStops)
		assert.Equal(t, max(0, destinationIndex-progress.CurrentStopIndex), progress.StopsRemaining)
		if progress.MinutesToArrival != nil {
			assert.GreaterOrEqual(t, *progress.MinutesToArrival, 0)
		}
	}
}

func TestCalculateMonotonic(t *testing.T) {
	journey := commuteJourney()

	previous := 0
	for now := clock(t, "07:30"); now <= clock(t, "09:30"); now++ {
		progress := Calculate(journey, now)

		assert.GreaterOrEqual(t, progress.CurrentStopIndex, previous, util.FormatClock(now))
		previous = progress.CurrentStopIndex
	}
}

func TestCalculateAtBoardingTime(t *testing.T) {
	departure := ctdf.TrainDeparture{
		ServiceID:          "svc",
		ScheduledDeparture: "08:00",
		EstimatedDeparture: "On time",
		CallingPoints:      commuteJourney().CallingPoints,
	}

	journey := testJourney(departure.CallingPoints...)
	progress := Calculate(journey, clock(t, departure.ScheduledDeparture))

	assert.Equal(t, 0, progress.CurrentStopIndex)
	assert.Equal(t, 0.0, Fraction(progress))
}

func TestFraction(t *testing.T) {
	assert.Equal(t, 0.5, Fraction(ctdf.JourneyProgress{CurrentStopIndex: 2, TotalStops: 5}))
	assert.Equal(t, 1.0, Fraction(ctdf.JourneyProgress{CurrentStopIndex: 6, TotalStops: 5}))
	assert.Equal(t, 1.0, Fraction(ctdf.JourneyProgress{CurrentStopIndex: 1, TotalStops: 5, HasArrived: true}))
	assert.Equal(t, 1.0, Fraction(ctdf.JourneyProgress{TotalStops: 0}))
}
