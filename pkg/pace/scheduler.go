// Package pace owns the presentation-side timing contracts: typewriter
// reveal of replaced text and the minimum-visible-duration floor on
// transient states. Every timer is an owned resource with an explicit
// cancel path; teardown never leaves a callback pending.
package pace

import (
	"sort"
	"sync"
	"time"
)

// Timer is one scheduled callback. Stop cancels it if it has not fired and
// reports whether the cancellation won.
type Timer interface {
	Stop() bool
}

// Scheduler schedules callbacks and reads the clock. The wall-clock
// implementation wraps time.AfterFunc; tests use ManualScheduler to step
// time deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
	Now() time.Time
}

type wallClock struct{}

// WallClock returns the real-time scheduler.
func WallClock() Scheduler { return wallClock{} }

func (wallClock) AfterFunc(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }
func (wallClock) Now() time.Time                             { return time.Now() }

// ManualScheduler is a deterministic scheduler for tests: callbacks fire
// only when Advance moves the virtual clock past their deadline, on the
// caller's goroutine.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int
	pending []*manualTimer
}

type manualTimer struct {
	sched   *ManualScheduler
	id      int
	at      time.Time
	fn      func()
	stopped bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{now: time.Unix(0, 0)}
}

func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{sched: m, id: m.nextID, at: m.now.Add(d), fn: fn}
	m.nextID++
	m.pending = append(m.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	for i, p := range t.sched.pending {
		if p == t {
			t.sched.pending = append(t.sched.pending[:i], t.sched.pending[i+1:]...)
			break
		}
	}
	return true
}

// Advance moves the clock forward, firing due callbacks in deadline order.
// Callbacks may schedule further timers; those fire too if they fall within
// the advanced window.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		sort.Slice(m.pending, func(i, j int) bool {
			if !m.pending[i].at.Equal(m.pending[j].at) {
				return m.pending[i].at.Before(m.pending[j].at)
			}
			return m.pending[i].id < m.pending[j].id
		})
		var next *manualTimer
		if len(m.pending) > 0 && !m.pending[0].at.After(target) {
			next = m.pending[0]
			m.pending = m.pending[1:]
			next.stopped = true
			m.now = next.at
		}
		m.mu.Unlock()

		if next == nil {
			break
		}
		next.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// PendingCount reports outstanding timers; tests use it to assert teardown
// cancelled everything.
func (m *ManualScheduler) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
