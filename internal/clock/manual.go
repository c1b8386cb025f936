package clock

import (
	"sync"
	"time"
)

// Manual is a Scheduler whose time only moves when Advance is called.
//
// Due callbacks run synchronously inside Advance, in deadline order, with
// ties broken by scheduling order. Callbacks may schedule or stop timers.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     int64
	pending []*manualTimer
}

type manualTimer struct {
	m     *Manual
	at    time.Time
	every time.Duration
	seq   int64
	fn    func()
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	return m.schedule(d, 0, f)
}

func (m *Manual) Every(d time.Duration, f func()) Timer {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.schedule(d, d, f)
}

func (m *Manual) schedule(d time.Duration, every time.Duration, f func()) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, at: m.now.Add(d), every: every, seq: m.seq, fn: f}
	m.pending = append(m.pending, t)
	return t
}

func (t *manualTimer) Stop() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.m.remove(t)
}

func (m *Manual) remove(t *manualTimer) {
	for i, p := range m.pending {
		if p == t {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward by d, firing every callback that falls
// due on the way.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.earliestDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		if next.at.After(m.now) {
			m.now = next.at
		}
		if next.every > 0 {
			m.seq++
			next.at = next.at.Add(next.every)
			if !next.at.After(m.now) {
				// ticks missed across a Set jump are dropped, as time.Ticker does
				next.at = m.now.Add(next.every)
			}
			next.seq = m.seq
		} else {
			m.remove(next)
		}
		fn := next.fn
		m.mu.Unlock()

		fn()
	}
}

// Set jumps the clock to t without firing anything. Used to simulate
// wall-clock jumps between ticks.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Pending reports how many timers are scheduled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *Manual) earliestDue(target time.Time) *manualTimer {
	var best *manualTimer
	for _, p := range m.pending {
		if p.at.After(target) {
			continue
		}
		if best == nil || p.at.Before(best.at) || (p.at.Equal(best.at) && p.seq < best.seq) {
			best = p
		}
	}
	return best
}
