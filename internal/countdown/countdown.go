// Package countdown renders the time left on the running campaign and
// retires the campaign once its end date passes.
package countdown

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/clock"
	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

// OfferEnded is displayed once the tracked campaign has expired.
const OfferEnded = "انتهى العرض"

const DefaultPeriod = time.Second

type State int

const (
	Idle State = iota
	Ticking
)

func (s State) String() string {
	if s == Ticking {
		return "ticking"
	}
	return "idle"
}

// Source is the slice of the catalog the countdown needs.
type Source interface {
	Campaigns() []domain.Campaign
	ExpireCampaign(ctx context.Context, id string) bool
}

type run struct {
	id  string
	end time.Time
}

type Timer struct {
	src    Source
	sched  clock.Scheduler
	period time.Duration
	log    logrus.FieldLogger

	mu        sync.Mutex
	state     State
	current   run
	display   string
	gen       uint64
	tick      clock.Slot
	expired   map[run]bool
	listeners []func(string)
}

func New(src Source, sched clock.Scheduler, period time.Duration, logger logrus.FieldLogger) *Timer {
	if period <= 0 {
		period = DefaultPeriod
	}
	if logger == nil {
		logger = logrus.StandardLogger().WithField("component", "countdown")
	}
	return &Timer{
		src:     src,
		sched:   sched,
		period:  period,
		log:     logger,
		expired: make(map[run]bool),
	}
}

// Format renders d as HH:MM:SS. The hour field counts total hours and
// grows past two digits for long campaigns. Negative input renders as zero.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// running picks the campaign the countdown tracks: the first enabled
// campaign carrying an end date. Its end may already be in the past, in
// which case the first evaluation expires it.
func running(campaigns []domain.Campaign) (run, bool) {
	for _, c := range campaigns {
		if c.Enabled && c.OfferEndDate != nil {
			return run{id: c.ID, end: *c.OfferEndDate}, true
		}
	}
	return run{}, false
}

// Sync re-reads the catalog and moves between Idle and Ticking. A change of
// tracked campaign stops the outstanding tick before a new one starts.
func (t *Timer) Sync() {
	t.mu.Lock()
	next, ok := running(t.src.Campaigns())
	if ok && t.expired[next] {
		ok = false
	}

	if !ok {
		changed := false
		if t.state == Ticking {
			t.tick.Clear()
			t.gen++
			t.state = Idle
			t.display = ""
			changed = true
		}
		t.mu.Unlock()
		if changed {
			t.emit("")
		}
		return
	}

	if t.state == Ticking && t.current == next {
		t.mu.Unlock()
		return
	}

	t.tick.Clear()
	t.gen++
	gen := t.gen
	t.current = next
	t.state = Ticking
	t.tick.Set(t.sched.Every(t.period, func() { t.onTick(gen) }))
	t.mu.Unlock()

	t.onTick(gen)
}

func (t *Timer) onTick(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.state != Ticking {
		t.mu.Unlock()
		return
	}

	c := find(t.src.Campaigns(), t.current.id)
	if c == nil || !c.Enabled || c.OfferEndDate == nil || !c.OfferEndDate.Equal(t.current.end) {
		t.mu.Unlock()
		t.Sync()
		return
	}

	remaining := c.OfferEndDate.Sub(t.sched.Now())
	if remaining >= 0 {
		t.display = Format(remaining)
		display := t.display
		t.mu.Unlock()
		t.emit(display)
		return
	}

	t.tick.Clear()
	t.gen++
	t.state = Idle
	t.display = OfferEnded
	writeBack := !t.expired[t.current]
	t.expired[t.current] = true
	id := t.current.id
	t.mu.Unlock()

	t.emit(OfferEnded)
	if writeBack {
		t.expire(id)
	}
}

// expire is the single write-back from the countdown into the catalog. It
// runs without the timer lock held since the catalog notifies synchronously.
func (t *Timer) expire(id string) {
	if !t.src.ExpireCampaign(context.Background(), id) {
		t.log.WithField("campaign", id).Warn("expiry write-back was not applied")
	}
}

// Stop cancels the tick and returns to Idle.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tick.Clear()
	t.gen++
	t.state = Idle
}

func (t *Timer) Remaining() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.display
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// CampaignID returns the tracked campaign while ticking.
func (t *Timer) CampaignID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Ticking {
		return ""
	}
	return t.current.id
}

// OnChange registers fn to receive every new display string.
func (t *Timer) OnChange(fn func(display string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

func (t *Timer) emit(display string) {
	t.mu.Lock()
	fns := slices.Clone(t.listeners)
	t.mu.Unlock()
	for _, fn := range fns {
		fn(display)
	}
}

func find(campaigns []domain.Campaign, id string) *domain.Campaign {
	for i := range campaigns {
		if campaigns[i].ID == id {
			return &campaigns[i]
		}
	}
	return nil
}
