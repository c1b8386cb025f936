package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManual_AfterFuncFiresOnce(t *testing.T) {
	m := NewManual(epoch)
	fired := 0
	m.AfterFunc(3*time.Second, func() { fired++ })

	m.Advance(2 * time.Second)
	assert.Equal(t, 0, fired)

	m.Advance(time.Second)
	assert.Equal(t, 1, fired)

	m.Advance(time.Hour)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_EveryRepeatsUntilStopped(t *testing.T) {
	m := NewManual(epoch)
	ticks := 0
	timer := m.Every(50*time.Millisecond, func() { ticks++ })

	m.Advance(time.Second)
	assert.Equal(t, 20, ticks)

	timer.Stop()
	timer.Stop()
	m.Advance(time.Second)
	assert.Equal(t, 20, ticks)
	assert.Equal(t, 0, m.Pending())
}

func TestManual_OrderAndNowInsideCallback(t *testing.T) {
	m := NewManual(epoch)
	var order []string
	var seenAt time.Time
	m.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	m.AfterFunc(time.Second, func() {
		order = append(order, "a")
		seenAt = m.Now()
	})
	m.AfterFunc(2*time.Second, func() { order = append(order, "c") })

	m.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, epoch.Add(time.Second), seenAt)
	assert.Equal(t, epoch.Add(5*time.Second), m.Now())
}

func TestManual_CallbackCanStopItself(t *testing.T) {
	m := NewManual(epoch)
	ticks := 0
	var timer Timer
	timer = m.Every(time.Second, func() {
		ticks++
		if ticks == 3 {
			timer.Stop()
		}
	})

	m.Advance(10 * time.Second)
	assert.Equal(t, 3, ticks)
}

func TestManual_CallbackCanScheduleWithinWindow(t *testing.T) {
	m := NewManual(epoch)
	fired := false
	m.AfterFunc(time.Second, func() {
		m.AfterFunc(time.Second, func() { fired = true })
	})

	m.Advance(2 * time.Second)
	assert.True(t, fired)
}

func TestSlot_SetStopsPrevious(t *testing.T) {
	m := NewManual(epoch)
	var slot Slot
	first, second := 0, 0

	slot.Set(m.Every(time.Second, func() { first++ }))
	slot.Set(m.Every(time.Second, func() { second++ }))
	m.Advance(3 * time.Second)

	assert.Equal(t, 0, first)
	assert.Equal(t, 3, second)
	assert.Equal(t, 1, m.Pending())

	slot.Clear()
	assert.False(t, slot.Active())
	assert.Equal(t, 0, m.Pending())
}
