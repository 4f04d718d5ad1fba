package engine

import "time"

// Clock supplies the current time to a session.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock only moves when told to. The zero value starts at the Unix epoch.
type ManualClock struct {
	now time.Time
}

// NewManualClock creates a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	if c.now.IsZero() {
		c.now = time.Unix(0, 0)
	}
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.Now().Add(d)
}
