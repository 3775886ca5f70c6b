// Package clock provides the wall clock used to timestamp and validate
// blocks.
package clock

import "time"

// Clock returns the current time in milliseconds since the unix epoch.
type Clock func() uint64

// NowMS returns the current time in milliseconds since the unix epoch.
func NowMS() uint64 {
	return uint64(time.Now().UTC().UnixMilli())
}

// Fixed returns a clock that always reports the specified time.
func Fixed(ms uint64) Clock {
	return func() uint64 {
		return ms
	}
}

// Offset returns a clock that runs the specified duration ahead of, or
// behind, the wall clock.
func Offset(d time.Duration) Clock {
	return func() uint64 {
		return uint64(time.Now().UTC().Add(d).UnixMilli())
	}
}
