package inttest

import (
	"sync"
	"time"
)

// Clock is a time source controlled by the test. It is safe for concurrent use.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock set to now in UTC.
func NewClock(now time.Time) *Clock {
	return &Clock{current: now.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set moves the clock to t, backwards or forwards.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t.UTC()
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}
