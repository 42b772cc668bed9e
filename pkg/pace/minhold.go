package pace

import (
	"sync"
	"time"
)

// DefaultMinVisible is the floor a transient state stays visible, measured
// from when it was first observed.
const DefaultMinVisible = 500 * time.Millisecond

// MinHold enforces the minimum-visible-duration contract for one transient
// state. Construct it when the state first appears; call Complete when the
// underlying signal says the state is over. The callback fires immediately
// if the floor has already elapsed, otherwise after the remaining floor
// time. A zero floor (non-animated replay) collapses the hold entirely.
type MinHold struct {
	sched Scheduler
	floor time.Duration
	start time.Time

	mu     sync.Mutex
	timer  Timer
	fired  bool
	closed bool
}

// NewMinHold starts the visibility clock now.
func NewMinHold(sched Scheduler, floor time.Duration) *MinHold {
	return &MinHold{sched: sched, floor: floor, start: sched.Now()}
}

// Complete requests the state's completion callback. At most one callback
// ever fires per hold, no matter how many times Complete is called.
func (h *MinHold) Complete(fn func()) {
	h.mu.Lock()
	if h.fired || h.closed || h.timer != nil {
		h.mu.Unlock()
		return
	}
	remaining := h.floor - h.sched.Now().Sub(h.start)
	if remaining <= 0 {
		h.fired = true
		h.mu.Unlock()
		fn()
		return
	}
	h.timer = h.sched.AfterFunc(remaining, func() {
		h.mu.Lock()
		if h.closed || h.fired {
			h.mu.Unlock()
			return
		}
		h.fired = true
		h.timer = nil
		h.mu.Unlock()
		fn()
	})
	h.mu.Unlock()
}

// Close cancels any pending completion; required on teardown so no callback
// mutates state after disposal.
func (h *MinHold) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}
