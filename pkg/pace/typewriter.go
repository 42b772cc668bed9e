package pace

import (
	"sync"
	"time"
)

// Typewriter animates text replacement: the displayed value is deleted back
// to empty one character per tick, then the new value is typed forward at
// the same per-character delay. A replacement arriving mid-animation
// abandons the in-flight cycle and starts a fresh delete/type toward the new
// target. OnSettle fires exactly once per settled target value.
//
// Each Typewriter owns its own timer and text buffer; concurrent animations
// on different fields are independent Typewriter instances.
type Typewriter struct {
	sched Scheduler
	delay time.Duration

	// OnTick observes each displayed intermediate value; optional.
	OnTick func(text string)
	// OnSettle observes the final value once the animation lands; optional.
	OnSettle func(text string)

	mu      sync.Mutex
	current string
	target  string
	// deleting marks the erase half of a replacement cycle; typing resumes
	// only once the displayed text is emptied.
	deleting bool
	timer    Timer
	gen      int
	closed   bool
}

// NewTypewriter builds a typewriter with the given per-character delay.
// A non-positive delay settles every Set immediately with no ticks.
func NewTypewriter(sched Scheduler, delay time.Duration) *Typewriter {
	return &Typewriter{sched: sched, delay: delay}
}

// Text returns the currently displayed value.
func (t *Typewriter) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Set replaces the target text, abandoning any in-flight animation.
func (t *Typewriter) Set(text string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.gen++
	gen := t.gen
	t.target = text
	t.cancelTimerLocked()

	if t.delay <= 0 {
		t.current = text
		settle := t.OnSettle
		t.mu.Unlock()
		if settle != nil {
			settle(text)
		}
		return
	}
	if t.current == text {
		t.deleting = false
		settle := t.OnSettle
		t.mu.Unlock()
		if settle != nil {
			settle(text)
		}
		return
	}
	t.deleting = t.current != ""
	t.scheduleLocked(gen)
	t.mu.Unlock()
}

// Close tears the animator down, cancelling any pending tick. No callback
// fires after Close returns.
func (t *Typewriter) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.cancelTimerLocked()
}

func (t *Typewriter) cancelTimerLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Typewriter) scheduleLocked(gen int) {
	t.timer = t.sched.AfterFunc(t.delay, func() { t.tick(gen) })
}

// tick is one suspension point: one character is removed or added, then the
// next tick is scheduled. A stale generation means the animation was
// abandoned by a newer Set.
func (t *Typewriter) tick(gen int) {
	t.mu.Lock()
	if t.closed || gen != t.gen {
		t.mu.Unlock()
		return
	}

	switch {
	case t.deleting && len(t.current) > 0:
		t.current = t.current[:len(t.current)-1]
		if len(t.current) == 0 {
			t.deleting = false
		}
	case len(t.current) < len(t.target):
		t.current = t.target[:len(t.current)+1]
	}

	display := t.current
	settled := !t.deleting && t.current == t.target
	tickFn := t.OnTick
	settleFn := t.OnSettle
	if settled {
		t.timer = nil
	} else {
		t.scheduleLocked(gen)
	}
	t.mu.Unlock()

	if tickFn != nil {
		tickFn(display)
	}
	if settled && settleFn != nil {
		settleFn(display)
	}
}
