package ctdf

type AlertPreference string

const (
	// AlertPreferenceAudioIfBluetooth speaks the alert when wireless audio is connected, otherwise vibrates
	AlertPreferenceAudioIfBluetooth AlertPreference = "AUDIO_IF_BLUETOOTH"
	AlertPreferenceSilentVibrate    AlertPreference = "SILENT_VIBRATE"
)

// ParseAlertPreference falls back to the default for anything it doesn't recognise
func ParseAlertPreference(s string) AlertPreference {
	switch AlertPreference(s) {
	case AlertPreferenceSilentVibrate:
		return AlertPreferenceSilentVibrate
	default:
		return AlertPreferenceAudioIfBluetooth
	}
}

func (p AlertPreference) Valid() bool {
	return p == AlertPreferenceAudioIfBluetooth || p == AlertPreferenceSilentVibrate
}

type JourneyAlertSettings struct {
	TwoMinuteAlertEnabled bool            `json:"twoMinuteAlertEnabled" groups:"basic,detailed"`
	AlertPreference       AlertPreference `json:"alertPreference" groups:"basic,detailed"`
}

func DefaultJourneyAlertSettings() JourneyAlertSettings {
	return JourneyAlertSettings{
		TwoMinuteAlertEnabled: true,
		AlertPreference:       AlertPreferenceAudioIfBluetooth,
	}
}
