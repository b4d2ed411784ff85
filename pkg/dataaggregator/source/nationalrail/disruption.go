package nationalrail

import (
	"github.com/travigo/railcommute/pkg/ctdf"
	"github.com/travigo/railcommute/pkg/util"
)

func mapDisruptions(messages []nrccMessage) []ctdf.Disruption {
	disruptions := []ctdf.Disruption{}

	for _, message := range messages {
		if message.XhtmlMessage == nil {
			continue
		}

		text := util.StripTags(*message.XhtmlMessage)
		if text == "" {
			continue
		}

		disruptions = append(disruptions, ctdf.Disruption{
			Message:  text,
			Severity: disruptionSeverity(message.Severity),
		})
	}

	return disruptions
}

func disruptionSeverity(severity *int) ctdf.DisruptionSeverity {
	if severity == nil {
		return ctdf.DisruptionSeveritySevere
	}

	switch *severity {
	case 0, 1:
		return ctdf.DisruptionSeverityMinor
	case 2:
		return ctdf.DisruptionSeverityMajor
	default:
		return ctdf.DisruptionSeveritySevere
	}
}
