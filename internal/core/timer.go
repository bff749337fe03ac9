package core

import (
	"sync"
	"time"
)

// Clock abstracts wall time so frame stepping and timers can be driven by tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock starts a manual clock at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// MaxFrameGap caps a single frame delta. Window drags and suspended laptops
// would otherwise make every animation leap forward at once.
const MaxFrameGap = 250 * time.Millisecond

// FrameStep turns successive clock readings into per-frame deltas.
type FrameStep struct {
	clock Clock
	last  time.Time
}

// NewFrameStep constructs a FrameStep reading from clock. A nil clock uses the
// system clock.
func NewFrameStep(clock Clock) *FrameStep {
	if clock == nil {
		clock = SystemClock{}
	}
	return &FrameStep{clock: clock}
}

// Next returns the time elapsed since the previous call, clamped to
// MaxFrameGap. The first call returns zero.
func (f *FrameStep) Next() time.Duration {
	now := f.clock.Now()
	if f.last.IsZero() {
		f.last = now
		return 0
	}
	delta := now.Sub(f.last)
	f.last = now
	if delta < 0 {
		return 0
	}
	if delta > MaxFrameGap {
		return MaxFrameGap
	}
	return delta
}
