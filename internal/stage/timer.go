package stage

import (
	"time"

	"winter-stage/internal/core"
)

type pendingCall struct {
	at        time.Time
	fn        func()
	cancelled bool
}

// FrameTimer schedules callbacks that fire from Poll, which the owner calls
// once per frame. Callbacks therefore run on the same goroutine as every
// other state mutation.
type FrameTimer struct {
	clock   core.Clock
	pending []*pendingCall
}

// NewFrameTimer returns a timer reading from clock.
func NewFrameTimer(clock core.Clock) *FrameTimer {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &FrameTimer{clock: clock}
}

// AfterFunc arranges for fn to run on the first Poll at least d from now.
// The returned function cancels the call; cancelling twice is harmless.
func (t *FrameTimer) AfterFunc(d time.Duration, fn func()) (cancel func()) {
	c := &pendingCall{at: t.clock.Now().Add(d), fn: fn}
	t.pending = append(t.pending, c)
	return func() { c.cancelled = true }
}

// Poll runs every due, uncancelled callback in scheduling order.
func (t *FrameTimer) Poll() {
	if len(t.pending) == 0 {
		return
	}
	now := t.clock.Now()
	var due []*pendingCall
	kept := t.pending[:0]
	for _, c := range t.pending {
		switch {
		case c.cancelled:
		case !now.Before(c.at):
			due = append(due, c)
		default:
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(t.pending); i++ {
		t.pending[i] = nil
	}
	t.pending = kept
	for _, c := range due {
		if !c.cancelled {
			c.fn()
		}
	}
}

// Pending returns the number of scheduled calls not yet fired or dropped.
func (t *FrameTimer) Pending() int {
	n := 0
	for _, c := range t.pending {
		if !c.cancelled {
			n++
		}
	}
	return n
}

// Stop cancels every pending call.
func (t *FrameTimer) Stop() {
	for _, c := range t.pending {
		c.cancelled = true
	}
	t.pending = nil
}
