package testfixtures

import (
	"sync"
	"time"
)

// FakeTimer is an armed timer recorded by a FakeScheduler. It never fires on
// its own; tests trigger it through the scheduler. Its Stop method matches
// the handle returned by time.AfterFunc, so it slots in wherever production
// code accepts one.
type FakeTimer struct {
	Duration time.Duration

	mu      sync.Mutex
	fn      func()
	stopped bool
	fired   bool
}

// Stop cancels the timer. It reports whether the timer had neither fired nor
// been stopped before.
func (t *FakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// fire runs the callback unless the timer was stopped. Reports whether the
// callback ran.
func (t *FakeTimer) fire() bool {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	fn := t.fn
	t.mu.Unlock()

	fn()
	return true
}

// FakeScheduler records timers armed through NewTimer so tests can inspect
// and fire them deterministically.
type FakeScheduler struct {
	mu     sync.Mutex
	timers []*FakeTimer
}

// NewFakeScheduler constructs an empty scheduler.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

// NewTimer records and returns an armed timer.
func (s *FakeScheduler) NewTimer(d time.Duration, fn func()) *FakeTimer {
	timer := &FakeTimer{Duration: d, fn: fn}
	s.mu.Lock()
	s.timers = append(s.timers, timer)
	s.mu.Unlock()
	return timer
}

// Armed returns the timers that have neither fired nor been stopped, in
// arming order.
func (s *FakeScheduler) Armed() []*FakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]*FakeTimer, 0, 1)
	for _, timer := range s.timers {
		timer.mu.Lock()
		live := !timer.stopped && !timer.fired
		timer.mu.Unlock()
		if live {
			pending = append(pending, timer)
		}
	}
	return pending
}

// Fire triggers the oldest pending timer. It reports whether a callback ran.
func (s *FakeScheduler) Fire() bool {
	for _, timer := range s.Armed() {
		if timer.fire() {
			return true
		}
	}
	return false
}
