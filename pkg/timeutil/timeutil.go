package timeutil

import (
	"fmt"
	"time"
)

// ToEpochMillis converts t to milliseconds since the Unix epoch.
func ToEpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromEpochMillis converts milliseconds since the Unix epoch to a UTC time.
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// AgeMillis returns how many milliseconds have passed between stampMillis and now.
// The result is negative when stampMillis lies in the future.
func AgeMillis(now time.Time, stampMillis int64) int64 {
	return ToEpochMillis(now) - stampMillis
}

// HumanizeDuration renders d as a short "1d 2h", "3h 4m" or "5m 6s" string.
// Negative durations are prefixed with "-".
func HumanizeDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	days := int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int64(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	seconds := int64(d / time.Second)

	switch {
	case days > 0:
		return fmt.Sprintf("%s%dd %dh", sign, days, hours)
	case hours > 0:
		return fmt.Sprintf("%s%dh %dm", sign, hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%s%dm %ds", sign, minutes, seconds)
	default:
		return fmt.Sprintf("%s%ds", sign, seconds)
	}
}
