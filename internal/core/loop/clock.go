package loop

import "time"

// Clock reports the current time in milliseconds since an arbitrary epoch.
// Successive readings must be non-decreasing.
type Clock interface {
	Now() float64
}

// SystemClock measures milliseconds since it was created, on the monotonic clock.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() float64 {
	return float64(time.Since(c.start)) / float64(time.Millisecond)
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() float64

func (f ClockFunc) Now() float64 { return f() }
