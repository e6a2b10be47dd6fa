// Package clock supplies the timestamps stamped on readings and used for uptime.
package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	CLOCK_SYSTEM = "system"
	CLOCK_TICK   = "tick"
)

type (
	// Clock returns the current time in whole seconds. Now has no side effects;
	// Stamp returns the time for a new reading.
	Clock interface {
		Now() uint32
		Stamp() uint32
	}

	SystemClock struct{}

	// TickClock counts readings, for boards without a wall clock. Only Stamp
	// advances it.
	TickClock struct {
		counter atomic.Uint32
	}

	ManualClock struct {
		mu  sync.Mutex
		now uint32
	}
)

// New returns the clock for the given kind, defaulting to the system clock.
func New(kind string) Clock {
	switch kind {
	case CLOCK_TICK:
		return &TickClock{}
	default:
		return SystemClock{}
	}
}

func (SystemClock) Now() uint32 {
	return uint32(time.Now().Unix())
}

func (c SystemClock) Stamp() uint32 {
	return c.Now()
}

func (c *TickClock) Now() uint32 {
	return c.counter.Load()
}

func (c *TickClock) Stamp() uint32 {
	return c.counter.Add(1)
}

func NewManualClock(start uint32) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *ManualClock) Stamp() uint32 {
	return c.Now()
}

func (c *ManualClock) Set(now uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

func (c *ManualClock) Advance(seconds uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now += seconds
}
