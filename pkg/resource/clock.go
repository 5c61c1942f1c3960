package resource

import "time"

// Clock reports a monotonic timestamp in milliseconds. The pool records it
// when a slot's reference count drops to zero.
type Clock interface {
	Now() uint64
}

type monotonicClock struct {
	start time.Time
}

// NewClock returns a Clock counting milliseconds since its creation.
func NewClock() Clock {
	return monotonicClock{start: time.Now()}
}

func (c monotonicClock) Now() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	now uint64
}

// NewManualClock returns a ManualClock reading start.
func NewManualClock(start uint64) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current reading.
func (c *ManualClock) Now() uint64 {
	return c.now
}

// Set moves the clock to t.
func (c *ManualClock) Set(t uint64) {
	c.now = t
}

// Advance moves the clock forward by d milliseconds.
func (c *ManualClock) Advance(d uint64) {
	c.now += d
}
