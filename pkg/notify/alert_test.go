package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/railcommute/pkg/ctdf"
)

func progressWithMinutes(minutes *int) ctdf.JourneyProgress {
	return ctdf.JourneyProgress{MinutesToArrival: minutes}
}

func minutes(m int) *int {
	return &m
}

func connectedAudio(connected bool) *DeviceAudio {
	audio := &DeviceAudio{}
	audio.SetWirelessAudioConnected(connected)

	return audio
}

func TestPolicyFiresOnceAsArrivalApproaches(t *testing.T) {
	sink := &RecordingSink{}
	policy := NewPolicy(sink, connectedAudio(false))
	settings := ctdf.DefaultJourneyAlertSettings()

	var actions []Action
	for _, m := range []int{5, 4, 3, 2, 1, 0} {
		actions = append(actions, policy.Evaluate(context.Background(), progressWithMinutes(minutes(m)), settings))
	}

	assert.Equal(t, []Action{ActionNone, ActionNone, ActionNone, ActionVibrate, ActionNone, ActionNone}, actions)

	spoken, vibrated := sink.Deliveries()
	assert.Equal(t, 0, spoken)
	assert.Equal(t, 1, vibrated)
	assert.Equal(t, ArrivalVibrationPattern, sink.Vibrated[0])
	assert.True(t, policy.Alerted())
}

func TestPolicyWindow(t *testing.T) {
	settings := ctdf.DefaultJourneyAlertSettings()

	for _, test := range []struct {
		minutes *int
		action  Action
	}{
		{minutes: nil, action: ActionNone},
		{minutes: minutes(0), action: ActionNone},
		{minutes: minutes(3), action: ActionNone},
		{minutes: minutes(2), action: ActionVibrate},
		{minutes: minutes(1), action: ActionVibrate},
	} {
		policy := NewPolicy(&RecordingSink{}, nil)
		assert.Equal(t, test.action, policy.Evaluate(context.Background(), progressWithMinutes(test.minutes), settings))
	}
}

func TestPolicyVoiceNeedsWirelessAudio(t *testing.T) {
	sink := &RecordingSink{}
	policy := NewPolicy(sink, connectedAudio(true))

	action := policy.Evaluate(context.Background(), progressWithMinutes(minutes(2)), ctdf.DefaultJourneyAlertSettings())

	assert.Equal(t, ActionVoice, action)
	assert.Equal(t, []string{ArrivalMessage}, sink.Spoken)
	assert.Empty(t, sink.Vibrated)
}

func TestPolicySilentPreferenceAlwaysVibrates(t *testing.T) {
	sink := &RecordingSink{}
	policy := NewPolicy(sink, connectedAudio(true))

	action := policy.Evaluate(context.Background(), progressWithMinutes(minutes(1)), ctdf.JourneyAlertSettings{
		TwoMinuteAlertEnabled: true,
		AlertPreference:       ctdf.AlertPreferenceSilentVibrate,
	})

	assert.Equal(t, ActionVibrate, action)
	assert.Empty(t, sink.Spoken)
	assert.Len(t, sink.Vibrated, 1)
}

func TestPolicySpeechFailureFallsBackToVibration(t *testing.T) {
	sink := &RecordingSink{FailSpeak: true}
	policy := NewPolicy(sink, connectedAudio(true))

	action := policy.Evaluate(context.Background(), progressWithMinutes(minutes(2)), ctdf.DefaultJourneyAlertSettings())

	assert.Equal(t, ActionVibrate, action)
	assert.Len(t, sink.Vibrated, 1)
}

func TestPolicyVibrationFailureIsSwallowed(t *testing.T) {
	sink := &RecordingSink{FailSpeak: true, FailVibrate: true}
	policy := NewPolicy(sink, connectedAudio(true))

	assert.NotPanics(t, func() {
		action := policy.Evaluate(context.Background(), progressWithMinutes(minutes(2)), ctdf.DefaultJourneyAlertSettings())
		assert.Equal(t, ActionVibrate, action)
	})
	assert.True(t, policy.Alerted())
}

func TestPolicyDisabledStillMarksAlerted(t *testing.T) {
	sink := &RecordingSink{}
	policy := NewPolicy(sink, nil)

	disabled := ctdf.JourneyAlertSettings{TwoMinuteAlertEnabled: false, AlertPreference: ctdf.AlertPreferenceAudioIfBluetooth}
	assert.Equal(t, ActionSuppressed, policy.Evaluate(context.Background(), progressWithMinutes(minutes(2)), disabled))

	// Re-enabling later in the same journey does not fire
	assert.Equal(t, ActionNone, policy.Evaluate(context.Background(), progressWithMinutes(minutes(1)), ctdf.DefaultJourneyAlertSettings()))

	spoken, vibrated := sink.Deliveries()
	assert.Zero(t, spoken+vibrated)
}

func TestPolicyReset(t *testing.T) {
	sink := &RecordingSink{}
	policy := NewPolicy(sink, nil)
	settings := ctdf.DefaultJourneyAlertSettings()

	assert.Equal(t, ActionVibrate, policy.Evaluate(context.Background(), progressWithMinutes(minutes(2)), settings))
	policy.Reset()
	assert.False(t, policy.Alerted())
	assert.Equal(t, ActionVibrate, policy.Evaluate(context.Background(), progressWithMinutes(minutes(2)), settings))

	_, vibrated := sink.Deliveries()
	assert.Equal(t, 2, vibrated)
}
