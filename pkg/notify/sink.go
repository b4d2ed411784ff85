package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Sink is something that can present an alert to the traveller
type Sink interface {
	Speak(ctx context.Context, text string) error
	Vibrate(ctx context.Context, pattern []time.Duration) error
}

type AudioOutput interface {
	WirelessAudioConnected(ctx context.Context) bool
}

var ErrSpeechUnavailable = errors.New("speech unavailable")

// LogSink writes alerts to the log. Speech is only available when Voice is set, so
// terminal tracking exercises the vibration fallback by default.
type LogSink struct {
	Voice bool
}

func (s LogSink) Speak(_ context.Context, text string) error {
	if !s.Voice {
		return ErrSpeechUnavailable
	}

	log.Info().Str("kind", "speak").Msg(text)

	return nil
}

func (s LogSink) Vibrate(_ context.Context, pattern []time.Duration) error {
	log.Info().Str("kind", "vibrate").Str("pattern", FormatPattern(pattern)).Msg("Bzzz")

	return nil
}

// Sinks delivers to every sink, failing only if all of them fail
type Sinks []Sink

func (s Sinks) Speak(ctx context.Context, text string) error {
	return s.each(func(sink Sink) error { return sink.Speak(ctx, text) })
}

func (s Sinks) Vibrate(ctx context.Context, pattern []time.Duration) error {
	return s.each(func(sink Sink) error { return sink.Vibrate(ctx, pattern) })
}

func (s Sinks) each(deliver func(Sink) error) error {
	if len(s) == 0 {
		return errors.New("no notification sinks")
	}

	var errs []error
	for _, sink := range s {
		if err := deliver(sink); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == len(s) {
		return errors.Join(errs...)
	}

	return nil
}

// DeviceAudio is the last reported audio output state of the travellers device
type DeviceAudio struct {
	connected atomic.Bool
}

func (d *DeviceAudio) SetWirelessAudioConnected(connected bool) {
	d.connected.Store(connected)
}

func (d *DeviceAudio) WirelessAudioConnected(_ context.Context) bool {
	return d.connected.Load()
}

// RecordingSink keeps everything delivered to it, and can be told to fail
type RecordingSink struct {
	FailSpeak   bool
	FailVibrate bool

	mutex    sync.Mutex
	Spoken   []string
	Vibrated [][]time.Duration
}

func (s *RecordingSink) Speak(_ context.Context, text string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.FailSpeak {
		return ErrSpeechUnavailable
	}
	s.Spoken = append(s.Spoken, text)

	return nil
}

func (s *RecordingSink) Vibrate(_ context.Context, pattern []time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.FailVibrate {
		return errors.New("no vibrator")
	}
	s.Vibrated = append(s.Vibrated, pattern)

	return nil
}

func (s *RecordingSink) Deliveries() (spoken int, vibrated int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.Spoken), len(s.Vibrated)
}

// FormatPattern renders a vibration pattern as comma separated milliseconds
func FormatPattern(pattern []time.Duration) string {
	parts := make([]string, len(pattern))
	for i, duration := range pattern {
		parts[i] = fmt.Sprint(duration.Milliseconds())
	}

	return strings.Join(parts, ",")
}
