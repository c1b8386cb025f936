// Package clock abstracts wall time and timer scheduling so the storefront
// state machines can run against the real clock in production and against
// a manually advanced clock in tests.
package clock

import (
	"sync"
	"time"
)

// Timer is a scheduled callback. Stop is idempotent and never blocks.
type Timer interface {
	Stop()
}

// Scheduler hands out one-shot and periodic timers.
//
// Callbacks may run on a different goroutine than the caller, so every
// owner of a timer must serialize its callbacks itself.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) Timer
}

// Real schedules on the process clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

func (Real) Every(d time.Duration, f func()) Timer {
	ticker := time.NewTicker(d)
	t := &realTicker{ticker: ticker, done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-ticker.C:
				f()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Stop() { r.t.Stop() }

type realTicker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (r *realTicker) Stop() {
	r.once.Do(func() {
		r.ticker.Stop()
		close(r.done)
	})
}

// Slot holds at most one timer for a role. Set stops the previous timer
// before it is replaced.
type Slot struct {
	t Timer
}

func (s *Slot) Set(t Timer) {
	s.Clear()
	s.t = t
}

func (s *Slot) Clear() {
	if s.t != nil {
		s.t.Stop()
		s.t = nil
	}
}

func (s *Slot) Active() bool { return s.t != nil }
