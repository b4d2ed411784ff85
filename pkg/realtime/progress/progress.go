package progress

import (
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/util"
	"golang.org/x/exp/slices"
)

// Calculate works out where the journey is at nowMinutes (minutes since midnight).
// It only reads its arguments so the same inputs always give the same progress.
// Times are not wrapped across midnight.
func Calculate(journey *ctdf.ActiveJourney, nowMinutes int) ctdf.JourneyProgress {
	callingPoints := journey.CallingPoints

	destinationIndex := slices.IndexFunc(callingPoints, func(callingPoint ctdf.CallingPoint) bool {
		return callingPoint.Crs == journey.DestinationCrs
	})
	if destinationIndex == -1 {
		return defaultProgress(len(callingPoints))
	}

	currentStopIndex := currentStop(callingPoints, destinationIndex, nowMinutes)

	destination := callingPoints[destinationIndex]
	scheduledArrival := destination.ScheduledTime
	estimatedArrival := firstTime(destination.EstimatedTime, destination.ActualTime, scheduledArrival)

	minutesToArrival := minutesUntil(estimatedArrival, nowMinutes)
	delayMinutes := arrivalDelay(scheduledArrival, estimatedArrival)

	nextStopName := callingPoints[min(currentStopIndex+1, destinationIndex)].LocationName

	previousStopName := journey.OriginName
	if currentStopIndex > 0 {
		previousStopName = callingPoints[currentStopIndex-1].LocationName
	}

	return ctdf.JourneyProgress{
		CurrentStopIndex:     currentStopIndex,
		TotalStops:           destinationIndex + 1,
		StopsRemaining:       max(0, destinationIndex-currentStopIndex),
		MinutesToArrival:     minutesToArrival,
		EstimatedArrivalTime: estimatedArrival,
		ScheduledArrivalTime: scheduledArrival,
		DelayMinutes:         delayMinutes,
		IsDelayed:            delayMinutes > 0,
		NextStopName:         &nextStopName,
		PreviousStopName:     &previousStopName,
		HasArrived:           destination.ActualTime != nil || (minutesToArrival != nil && *minutesToArrival <= 0),
	}
}

// Fraction is how far along the journey is, from 0 to 1. A single stop journey has
// nothing left to travel so it is always complete.
func Fraction(p ctdf.JourneyProgress) float64 {
	if p.HasArrived || p.TotalStops <= 1 {
		return 1
	}

	fraction := float64(p.CurrentStopIndex) / float64(p.TotalStops-1)

	return min(1, max(0, fraction))
}

// currentStop scans back from the destination for the furthest calling point already
// passed, either with a recorded departure or an expected time before now
func currentStop(callingPoints []ctdf.CallingPoint, destinationIndex int, nowMinutes int) int {
	for i := destinationIndex; i >= 0; i-- {
		callingPoint := callingPoints[i]

		if callingPoint.ActualTime != nil {
			return i + 1
		}

		if pointMinutes, ok := util.ParseClockPtr(callingPoint.ExpectedTime()); ok && pointMinutes < nowMinutes {
			return i + 1
		}
	}

	return 0
}

func minutesUntil(arrival *string, nowMinutes int) *int {
	if arrival == nil || util.IsSentinelTime(*arrival) {
		return nil
	}

	arrivalMinutes, ok := util.ParseClock(*arrival)
	if !ok {
		return nil
	}

	minutes := max(0, arrivalMinutes-nowMinutes)

	return &minutes
}

func arrivalDelay(scheduled *string, estimated *string) int {
	if scheduled == nil || estimated == nil {
		return 0
	}

	scheduledMinutes, ok := util.ParseClock(*scheduled)
	if !ok {
		return 0
	}
	estimatedMinutes, ok := util.ParseClock(*estimated)
	if !ok {
		return 0
	}

	return max(0, estimatedMinutes-scheduledMinutes)
}

func firstTime(times ...*string) *string {
	for _, t := range times {
		if t != nil {
			return t
		}
	}

	return nil
}

func defaultProgress(totalStops int) ctdf.JourneyProgress {
	return ctdf.JourneyProgress{
		CurrentStopIndex: 0,
		TotalStops:       totalStops,
		StopsRemaining:   totalStops,
	}
}
