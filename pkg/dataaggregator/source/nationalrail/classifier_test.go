package nationalrail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/railcommute/pkg/config"
	"github.com/travigo/railcommute/pkg/ctdf"
)

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func callingPoint(crs string, name string, scheduled string) ctdf.CallingPoint {
	return ctdf.CallingPoint{Crs: crs, LocationName: name, ScheduledTime: strPtr(scheduled)}
}

func service(id string, std string, etd string, callingPoints ...ctdf.CallingPoint) trainService {
	return trainService{
		ServiceID:          strPtr(id),
		ScheduledDeparture: strPtr(std),
		EstimatedDeparture: strPtr(etd),
		SubsequentCallingPoints: []callingPointList{
			{CallingPoints: callingPoints},
		},
	}
}

func testClassifier() Classifier {
	return Classifier{Route: config.DefaultRoute()}
}

func TestClassifyStatus(t *testing.T) {
	classifier := testClassifier()

	tests := []struct {
		name      string
		scheduled string
		estimated *string
		cancelled bool
		status    ctdf.TrainStatus
		delay     int
	}{
		{name: "on time word", scheduled: "08:00", estimated: strPtr("On time"), status: ctdf.TrainStatusOnTime, delay: 0},
		{name: "delayed word", scheduled: "08:00", estimated: strPtr("Delayed"), status: ctdf.TrainStatusDelayed, delay: 0},
		{name: "later clock time", scheduled: "08:00", estimated: strPtr("08:05"), status: ctdf.TrainStatusDelayed, delay: 5},
		{name: "same clock time", scheduled: "08:00", estimated: strPtr("08:00"), status: ctdf.TrainStatusOnTime, delay: 0},
		{name: "earlier clock time", scheduled: "08:00", estimated: strPtr("07:58"), status: ctdf.TrainStatusDelayed, delay: 0},
		{name: "cancelled wins", scheduled: "08:00", estimated: strPtr("Cancelled"), cancelled: true, status: ctdf.TrainStatusCancelled, delay: 0},
		{name: "missing estimate", scheduled: "08:00", estimated: nil, status: ctdf.TrainStatusOnTime, delay: 0},
		{name: "unknown word", scheduled: "08:00", estimated: strPtr("Starts here"), status: ctdf.TrainStatusOnTime, delay: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			record := service("svc", test.scheduled, "", callingPoint("FST", "London Fenchurch Street", "08:50"))
			record.EstimatedDeparture = test.estimated
			record.IsCancelled = boolPtr(test.cancelled)

			departure, ok := classifier.Classify(record, ctdf.TravelDirectionToB)
			require.True(t, ok)

			assert.Equal(t, test.status, departure.Status)
			assert.Equal(t, test.delay, departure.DelayMinutes)
			assert.GreaterOrEqual(t, departure.DelayMinutes, 0)
			assert.Equal(t, test.cancelled, departure.IsCancelled)
		})
	}
}

func TestClassifyMissingEstimateIsUnknown(t *testing.T) {
	record := service("svc", "08:00", "", callingPoint("FST", "London Fenchurch Street", "08:50"))
	record.EstimatedDeparture = nil

	departure, ok := testClassifier().Classify(record, ctdf.TravelDirectionToB)
	require.True(t, ok)

	assert.Equal(t, "Unknown", departure.EstimatedDeparture)
	assert.Equal(t, "-", departure.Platform)
}

func TestClassifyDropsIncompleteRecords(t *testing.T) {
	classifier := testClassifier()

	noID := service("svc", "08:00", "On time")
	noID.ServiceID = nil
	_, ok := classifier.Classify(noID, ctdf.TravelDirectionToB)
	assert.False(t, ok)

	noSchedule := service("svc", "08:00", "On time")
	noSchedule.ScheduledDeparture = nil
	_, ok = classifier.Classify(noSchedule, ctdf.TravelDirectionToB)
	assert.False(t, ok)
}

func TestClassifyDestinationAndJourneyTime(t *testing.T) {
	classifier := testClassifier()

	record := service("svc", "08:00", "On time",
		callingPoint("CHW", "Chalkwell", "08:03"),
		callingPoint("BEF", "Benfleet", "08:10"),
		callingPoint("FST", "London Fenchurch Street", "08:52"),
	)
	record.Platform = strPtr("2")

	departure, ok := classifier.Classify(record, ctdf.TravelDirectionToB)
	require.True(t, ok)

	assert.Equal(t, "Fenchurch Street", departure.DestinationName)
	assert.Equal(t, "2", departure.Platform)
	require.NotNil(t, departure.JourneyTimeMinutes)
	assert.Equal(t, 52, *departure.JourneyTimeMinutes)
	assert.Len(t, departure.CallingPoints, 3)

	toA, ok := classifier.Classify(record, ctdf.TravelDirectionToA)
	require.True(t, ok)
	assert.Equal(t, "Leigh-on-Sea", toA.DestinationName)
	assert.Nil(t, toA.JourneyTimeMinutes)
}

func TestClassifyJourneyTimeWrapsMidnight(t *testing.T) {
	record := service("svc", "23:50", "On time",
		callingPoint("LES", "Leigh-on-Sea", "00:40"),
	)

	departure, ok := testClassifier().Classify(record, ctdf.TravelDirectionToA)
	require.True(t, ok)

	require.NotNil(t, departure.JourneyTimeMinutes)
	assert.Equal(t, 50, *departure.JourneyTimeMinutes)
}

func TestDeparturesFiltersExcludedAndCancelled(t *testing.T) {
	services := []trainService{
		service("direct", "08:00", "08:05",
			callingPoint("BEF", "Benfleet", "08:10"),
			callingPoint("FST", "London Fenchurch Street", "08:52"),
		),
		service("grays", "08:04", "On time",
			callingPoint("GRY", "Grays", "08:30"),
			callingPoint("FST", "London Fenchurch Street", "09:05"),
		),
		service("cancelled", "08:10", "Cancelled",
			callingPoint("FST", "London Fenchurch Street", "09:00"),
		),
	}
	services[2].IsCancelled = boolPtr(true)

	departures := testClassifier().Departures(services, ctdf.TravelDirectionToB)

	require.Len(t, departures, 1)
	assert.Equal(t, "direct", departures[0].ServiceID)
	assert.Equal(t, ctdf.TrainStatusDelayed, departures[0].Status)
	assert.Equal(t, 5, departures[0].DelayMinutes)
	for _, departure := range departures {
		for _, point := range departure.CallingPoints {
			assert.NotEqual(t, "GRY", point.Crs)
		}
	}
}

func TestDisruptionSeverity(t *testing.T) {
	zero, one, two, three := 0, 1, 2, 3

	assert.Equal(t, ctdf.DisruptionSeverityMinor, disruptionSeverity(&zero))
	assert.Equal(t, ctdf.DisruptionSeverityMinor, disruptionSeverity(&one))
	assert.Equal(t, ctdf.DisruptionSeverityMajor, disruptionSeverity(&two))
	assert.Equal(t, ctdf.DisruptionSeveritySevere, disruptionSeverity(&three))
	assert.Equal(t, ctdf.DisruptionSeveritySevere, disruptionSeverity(nil))
}

func TestMapDisruptionsStripsMarkup(t *testing.T) {
	one := 1

	disruptions := mapDisruptions([]nrccMessage{
		{Severity: &one, XhtmlMessage: strPtr("<p>Disruption between <a href=\"x\">Upminster</a> and Barking.</p>")},
		{Severity: &one, XhtmlMessage: strPtr("<p></p>")},
		{Severity: &one},
	})

	require.Len(t, disruptions, 1)
	assert.Equal(t, "Disruption between Upminster and Barking.", disruptions[0].Message)
	assert.Equal(t, ctdf.DisruptionSeverityMinor, disruptions[0].Severity)
}
