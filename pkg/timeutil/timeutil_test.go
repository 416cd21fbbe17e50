package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEpochMillisRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
	}{
		{name: "epoch", ms: 0},
		{name: "one million", ms: 1_000_000},
		{name: "recent instant", ms: 1_760_000_000_123},
		{name: "before epoch", ms: -5_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ms, ToEpochMillis(FromEpochMillis(tt.ms)))
		})
	}
}

func TestFromEpochMillisIsUTC(t *testing.T) {
	got := FromEpochMillis(1_000_000)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, time.Date(1970, 1, 1, 0, 16, 40, 0, time.UTC), got)
}

func TestAgeMillis(t *testing.T) {
	now := FromEpochMillis(50_000)

	assert.Equal(t, int64(40_000), AgeMillis(now, 10_000))
	assert.Equal(t, int64(0), AgeMillis(now, 50_000))
	assert.Equal(t, int64(-1_000), AgeMillis(now, 51_000))
}

func TestFixedClock(t *testing.T) {
	instant := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	clock := FixedClock(instant)

	assert.Equal(t, instant, clock())
	assert.Equal(t, instant, clock(), "a fixed clock never advances")
	assert.Equal(t, int64(1_000_000), ToEpochMillis(FixedClockMillis(1_000_000)()))
}

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "zero", d: 0, want: "0s"},
		{name: "seconds", d: 42 * time.Second, want: "42s"},
		{name: "minutes", d: 3*time.Minute + 4*time.Second, want: "3m 4s"},
		{name: "hours", d: 12*time.Hour + 30*time.Minute, want: "12h 30m"},
		{name: "days", d: 49 * time.Hour, want: "2d 1h"},
		{name: "negative", d: -90 * time.Second, want: "-1m 30s"},
		{name: "sub-second truncates", d: 900 * time.Millisecond, want: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanizeDuration(tt.d))
		})
	}
}
