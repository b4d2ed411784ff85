package util

import (
	"strings"
	"time"
)

const (
	ClockFormat = "15:04"

	SentinelOnTime  = "On time"
	SentinelDelayed = "Delayed"

	MinutesPerDay = 24 * 60
)

// IsSentinelTime reports whether the feed returned a status word where a clock time was expected
func IsSentinelTime(s string) bool {
	trimmed := strings.TrimSpace(s)

	return strings.EqualFold(trimmed, SentinelOnTime) || strings.EqualFold(trimmed, SentinelDelayed)
}

// ParseClock converts a strict H:MM or HH:MM string into minutes since midnight.
// Sentinel strings and anything else that isn't a clock time give false.
func ParseClock(s string) (int, bool) {
	if s == "" || IsSentinelTime(s) {
		return 0, false
	}

	if len(s) < 4 || len(s) > 5 || s[len(s)-3] != ':' {
		return 0, false
	}

	parsed, err := time.Parse(ClockFormat, s)
	if err != nil {
		return 0, false
	}

	return parsed.Hour()*60 + parsed.Minute(), true
}

// ParseClockPtr is ParseClock for optional feed fields
func ParseClockPtr(s *string) (int, bool) {
	if s == nil {
		return 0, false
	}

	return ParseClock(*s)
}

func ClockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FormatClock turns minutes since midnight back into HH:MM, wrapping at midnight
func FormatClock(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay

	return time.Date(0, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format(ClockFormat)
}
