package preferences

import (
	"context"

	"github.com/travigo/railcommute/pkg/ctdf"
)

// Store keeps the travellers alert settings. Subscribe gives the current settings
// straight away and then every change until the returned func is called.
type Store interface {
	Get(ctx context.Context) (ctdf.JourneyAlertSettings, error)
	SetAlertPreference(ctx context.Context, preference ctdf.AlertPreference) error
	SetTwoMinuteAlertEnabled(ctx context.Context, enabled bool) error
	Subscribe(ctx context.Context) (<-chan ctdf.JourneyAlertSettings, func())
}

// offer replaces whatever is waiting in a one slot channel so a slow reader only
// ever sees the latest settings
func offer(ch chan ctdf.JourneyAlertSettings, settings ctdf.JourneyAlertSettings) {
	for {
		select {
		case ch <- settings:
			return
		default:
		}

		select {
		case <-ch:
		default:
		}
	}
}
