// Package timing abstracts deferred execution so the highlight bounce timer
// and the focus step pipeline can be driven deterministically in tests.
package timing

import (
	"sync"
	"time"
)

// Scheduler schedules a function to run after a delay. The returned cancel
// function stops the callback if it has not fired yet.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Real schedules on the runtime timer wheel.
type Real struct{}

// AfterFunc implements Scheduler using time.AfterFunc.
func (Real) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Manual is a test scheduler: callbacks are captured and fired explicitly.
type Manual struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

// NewManual creates an empty manual scheduler.
func NewManual() *Manual {
	return &Manual{}
}

// AfterFunc captures the callback without running it.
func (m *Manual) AfterFunc(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{delay: d, fn: fn}
	m.pending = append(m.pending, t)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.cancelled = true
	}
}

// Pending returns the number of captured, unfired callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// FireNext runs the oldest captured callback. Returns false when none remain.
// Cancelled callbacks are skipped.
func (m *Manual) FireNext() bool {
	for {
		m.mu.Lock()
		if len(m.pending) == 0 {
			m.mu.Unlock()
			return false
		}
		t := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()

		if t.cancelled {
			continue
		}
		t.fn()
		return true
	}
}

// FireAll runs captured callbacks, including any scheduled by the callbacks
// themselves, until none remain.
func (m *Manual) FireAll() {
	for m.FireNext() {
	}
}

// Immediate runs every callback synchronously at schedule time. Useful when a
// test only cares about the end state of a timer chain.
type Immediate struct{}

// AfterFunc implements Scheduler by invoking fn inline.
func (Immediate) AfterFunc(d time.Duration, fn func()) func() {
	fn()
	return func() {}
}
