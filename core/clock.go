package core

import "time"

// Clock is a monotonic microsecond counter
type Clock interface {
	Micros() uint64
}

// SystemClock reads the system time that the target feeds with SetTime
type SystemClock struct{}

// Micros returns GetTime()
func (SystemClock) Micros() uint64 {
	return GetTime()
}

// MonotonicClock counts microseconds since its creation using the Go
// runtime's monotonic clock. Used by hosted builds.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock creates a clock starting at zero
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Micros returns the elapsed microseconds
func (c *MonotonicClock) Micros() uint64 {
	return uint64(time.Since(c.start) / time.Microsecond)
}

// ManualClock only moves when told to
type ManualClock struct {
	now uint64
}

// NewManualClock creates a clock at the given time
func NewManualClock(start uint64) *ManualClock {
	return &ManualClock{now: start}
}

// Micros returns the current manual time
func (c *ManualClock) Micros() uint64 {
	return c.now
}

// Set jumps to an absolute time. Moving backwards is ignored.
func (c *ManualClock) Set(us uint64) {
	if us > c.now {
		c.now = us
	}
}

// Advance moves the clock forward by us microseconds
func (c *ManualClock) Advance(us uint64) {
	c.now += us
}
