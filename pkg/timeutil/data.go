package timeutil

import "time"

// NowFunc supplies the current instant.
// Production code passes time.Now; tests pass a fixed clock.
type NowFunc func() time.Time

// FixedClock returns a NowFunc that always reports t.
func FixedClock(t time.Time) NowFunc {
	return func() time.Time { return t }
}

// FixedClockMillis returns a NowFunc that always reports the given epoch milliseconds.
func FixedClockMillis(ms int64) NowFunc {
	return FixedClock(FromEpochMillis(ms))
}
