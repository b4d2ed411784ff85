package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railcommute/pkg/ctdf"
)

// AlertThresholdMinutes is how close to arrival the alert goes off
const AlertThresholdMinutes = 2

const ArrivalMessage = "Arriving in 2 minutes. Please prepare to leave the train."

// ArrivalVibrationPattern alternates off and on durations, starting with an off period
var ArrivalVibrationPattern = []time.Duration{
	0,
	500 * time.Millisecond,
	200 * time.Millisecond,
	500 * time.Millisecond,
	200 * time.Millisecond,
	500 * time.Millisecond,
}

type Action string

const (
	ActionNone       Action = "none"
	ActionSuppressed Action = "suppressed"
	ActionVoice      Action = "voice"
	ActionVibrate    Action = "vibrate"
)

// Policy decides whether a journey's progress warrants the arrival alert and delivers it.
// It alerts at most once between calls to Reset.
type Policy struct {
	Sink  Sink
	Audio AudioOutput

	mutex   sync.Mutex
	alerted bool
}

func NewPolicy(sink Sink, audio AudioOutput) *Policy {
	return &Policy{
		Sink:  sink,
		Audio: audio,
	}
}

// Reset arms the policy for a new journey
func (p *Policy) Reset() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.alerted = false
}

func (p *Policy) Alerted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.alerted
}

// Evaluate fires the alert the first time minutes to arrival falls in (0, 2].
// A disabled alert still counts as fired for this journey. Delivery never fails:
// speech falls back to vibration and vibration failures are only logged.
func (p *Policy) Evaluate(ctx context.Context, progress ctdf.JourneyProgress, settings ctdf.JourneyAlertSettings) Action {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.alerted || progress.MinutesToArrival == nil {
		return ActionNone
	}

	minutesToArrival := *progress.MinutesToArrival
	if minutesToArrival <= 0 || minutesToArrival > AlertThresholdMinutes {
		return ActionNone
	}

	p.alerted = true

	if !settings.TwoMinuteAlertEnabled {
		log.Debug().Msg("Arrival alert disabled by preference")
		return ActionSuppressed
	}

	if settings.AlertPreference == ctdf.AlertPreferenceAudioIfBluetooth && p.wirelessAudioConnected(ctx) {
		if err := p.Sink.Speak(ctx, ArrivalMessage); err != nil {
			log.Warn().Err(err).Msg("Speech unavailable, falling back to vibration")
		} else {
			return ActionVoice
		}
	}

	if err := p.Sink.Vibrate(ctx, ArrivalVibrationPattern); err != nil {
		log.Error().Err(err).Msg("Failed to vibrate for arrival alert")
	}

	return ActionVibrate
}

func (p *Policy) wirelessAudioConnected(ctx context.Context) bool {
	if p.Audio == nil {
		return false
	}

	return p.Audio.WirelessAudioConnected(ctx)
}
