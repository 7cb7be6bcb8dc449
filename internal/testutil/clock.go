package testutil

import (
	"sync"
	"time"
)

// ObservationEpoch is the instant FixedClock reports: 2024-01-15 10:30:00 UTC.
var ObservationEpoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// StubClock reports ObservationEpoch, moved forward by step after every read.
// Safe for concurrent use.
type StubClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// FixedClock returns a StubClock that never moves.
func FixedClock() *StubClock {
	return &StubClock{now: ObservationEpoch}
}

// SteppingClock returns a StubClock that advances by step on each Now call,
// so consecutive operations get distinct timestamps.
func SteppingClock(step time.Duration) *StubClock {
	return &StubClock{now: ObservationEpoch, step: step}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}
