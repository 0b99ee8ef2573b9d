package testutil

import (
	"sync"
	"time"
)

// StubClock hands out start, start+step, start+2*step, ... on successive
// calls to Now. Safe for concurrent use.
type StubClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

func NewStubClock(start time.Time, step time.Duration) *StubClock {
	return &StubClock{next: start, step: step}
}

// FixedClock is stopped at 2020-05-05 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2020, 5, 5, 10, 30, 0, 0, time.UTC), 0)
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}
