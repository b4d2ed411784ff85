package nationalrail

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/config"
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/util"
	"golang.org/x/exp/slices"
)

const (
	unknownEstimate = "Unknown"
	unknownPlatform = "-"
)

var boardTimeRegex = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Classifier turns raw board services into TrainDepartures for one direction of the route
type Classifier struct {
	Route *config.Route
}

// Departures drops cancelled services and those running via an excluded station, then
// maps what's left. Services that can't be mapped are dropped as well.
func (c Classifier) Departures(services []trainService, direction ctdf.TravelDirection) []ctdf.TrainDeparture {
	util.InPlaceFilter(&services, func(service trainService) bool {
		if c.isExcludedRoute(service) {
			log.Debug().Str("service", stringOr(service.ServiceID, "")).Msg("Dropping service on excluded route")
			return false
		}

		return !(service.IsCancelled != nil && *service.IsCancelled)
	})

	departures := []ctdf.TrainDeparture{}
	for _, service := range services {
		if departure, ok := c.Classify(service, direction); ok {
			departures = append(departures, *departure)
		}
	}

	return departures
}

// Classify maps a single service. Records without a service id or scheduled departure give false.
func (c Classifier) Classify(service trainService, direction ctdf.TravelDirection) (*ctdf.TrainDeparture, bool) {
	if service.ServiceID == nil || *service.ServiceID == "" {
		return nil, false
	}
	if service.ScheduledDeparture == nil || *service.ScheduledDeparture == "" {
		return nil, false
	}

	scheduled := *service.ScheduledDeparture
	estimated := stringOr(service.EstimatedDeparture, unknownEstimate)
	isCancelled := service.IsCancelled != nil && *service.IsCancelled

	_, destination := c.Route.Endpoints(direction)

	return &ctdf.TrainDeparture{
		ServiceID:          *service.ServiceID,
		ScheduledDeparture: scheduled,
		EstimatedDeparture: estimated,
		Platform:           stringOr(service.Platform, unknownPlatform),
		DestinationName:    destination.Name,
		JourneyTimeMinutes: c.journeyTime(service, destination.Crs),
		Status:             departureStatus(isCancelled, scheduled, estimated),
		DelayMinutes:       departureDelay(scheduled, estimated),
		IsCancelled:        isCancelled,
		CallingPoints:      service.forwardCallingPoints(),
	}, true
}

func (c Classifier) isExcludedRoute(service trainService) bool {
	return slices.ContainsFunc(service.forwardCallingPoints(), func(callingPoint ctdf.CallingPoint) bool {
		return util.ContainsString(c.Route.ExcludedCrs, callingPoint.Crs)
	})
}

// journeyTime is the scheduled minutes from departure to the target station, wrapping
// past midnight. nil when the target isn't one of the forward calling points.
func (c Classifier) journeyTime(service trainService, targetCrs string) *int {
	callingPoints := service.forwardCallingPoints()

	index := slices.IndexFunc(callingPoints, func(callingPoint ctdf.CallingPoint) bool {
		return callingPoint.Crs == targetCrs
	})
	if index == -1 {
		return nil
	}

	departureMinutes, ok := util.ParseClockPtr(service.ScheduledDeparture)
	if !ok {
		return nil
	}
	arrivalMinutes, ok := util.ParseClockPtr(callingPoints[index].ScheduledTime)
	if !ok {
		return nil
	}

	journeyMinutes := arrivalMinutes - departureMinutes
	if arrivalMinutes < departureMinutes {
		journeyMinutes += util.MinutesPerDay
	}

	return &journeyMinutes
}

func departureStatus(isCancelled bool, scheduled string, estimated string) ctdf.TrainStatus {
	switch {
	case isCancelled:
		return ctdf.TrainStatusCancelled
	case strings.EqualFold(estimated, util.SentinelOnTime):
		return ctdf.TrainStatusOnTime
	case strings.EqualFold(estimated, util.SentinelDelayed):
		return ctdf.TrainStatusDelayed
	case boardTimeRegex.MatchString(estimated):
		if estimated != scheduled {
			return ctdf.TrainStatusDelayed
		}
		return ctdf.TrainStatusOnTime
	default:
		return ctdf.TrainStatusOnTime
	}
}

// departureDelay never goes negative; sentinels and unparseable estimates count as no delay
func departureDelay(scheduled string, estimated string) int {
	scheduledMinutes, ok := util.ParseClock(scheduled)
	if !ok {
		return 0
	}
	estimatedMinutes, ok := util.ParseClock(estimated)
	if !ok {
		return 0
	}

	return max(0, estimatedMinutes-scheduledMinutes)
}
