package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_ReturnsWallClock(t *testing.T) {
	before := time.Now()
	got := New().Now()
	assert.False(t, got.Before(before))
}

func TestMock_SetNowAndAdvance(t *testing.T) {
	m := NewMock()
	at := time.UnixMilli(1_700_000_000_000)

	m.SetNow(at)
	assert.Equal(t, at, m.Now())
	assert.Equal(t, int64(1_700_000_000_000), UnixMilli(m))

	m.Advance(1500 * time.Millisecond)
	assert.Equal(t, int64(1_700_000_001_500), UnixMilli(m))
}

func TestMock_AfterFunc(t *testing.T) {
	m := NewMock()
	var fired []string

	m.AfterFunc(2*time.Second, func() { fired = append(fired, "late") })
	m.AfterFunc(time.Second, func() { fired = append(fired, "early") })
	stopped := m.AfterFunc(time.Second, func() { fired = append(fired, "stopped") })
	assert.Equal(t, 3, m.PendingTimers())

	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop(), "second stop is a no-op")

	m.Advance(999 * time.Millisecond)
	assert.Empty(t, fired)

	m.Advance(5 * time.Second)
	assert.Equal(t, []string{"early", "late"}, fired)
	assert.Zero(t, m.PendingTimers())
}

func TestMock_SetNowFiresDueTimers(t *testing.T) {
	m := NewMock()
	done := false
	timer := m.AfterFunc(time.Hour, func() { done = true })

	m.SetNow(m.Now().Add(time.Hour))
	assert.True(t, done)
	assert.False(t, timer.Stop(), "fired timer is no longer armed")
}

func TestNew_AfterFunc(t *testing.T) {
	done := make(chan struct{})
	New().AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}
