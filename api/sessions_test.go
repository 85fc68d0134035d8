package api

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// movableClock is a clock tests can advance.
type movableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry() (*SessionRegistry, *movableClock) {
	clock := &movableClock{now: testNow}
	return NewSessionRegistry(clock.Now, slog.New(slog.NewTextHandler(io.Discard, nil))), clock
}

func TestSessionRegistry_GetReusesSession(t *testing.T) {
	reg, _ := newTestRegistry()

	a := reg.get("emp-1")
	b := reg.get("emp-1")
	c := reg.get("emp-2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, reg.Len())
}

func TestSessionRegistry_EvictIdle(t *testing.T) {
	// GIVEN: Two sessions, one touched after 20 minutes
	// WHEN: Evicting with a 30 minute TTL at the 35 minute mark
	// THEN: Only the untouched session goes

	reg, clock := newTestRegistry()
	reg.get("idle")
	active := reg.get("active")

	clock.Advance(20 * time.Minute)
	active.mu.Lock()
	active.session.Touch()
	active.mu.Unlock()
	clock.Advance(15 * time.Minute)

	evicted := reg.EvictIdle(30 * time.Minute)

	assert.Equal(t, []string{"idle"}, evicted)
	_, ok := reg.lookup("idle")
	assert.False(t, ok)
	_, ok = reg.lookup("active")
	assert.True(t, ok)
}

func TestSessionRegistry_Reset(t *testing.T) {
	reg, _ := newTestRegistry()
	reg.get("emp-1")

	reg.Reset()

	assert.Equal(t, 0, reg.Len())
}

func TestSessionReaper_Sweep(t *testing.T) {
	reg, clock := newTestRegistry()
	reg.get("emp-1")
	reaper := NewSessionReaper(reg, time.Minute, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, 0, reaper.Sweep())

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, reaper.Sweep())
	assert.Equal(t, 0, reg.Len())
}

func TestSessionReaper_StartSweepsImmediately(t *testing.T) {
	reg, clock := newTestRegistry()
	reg.get("emp-1")
	clock.Advance(time.Hour)

	reaper := NewSessionReaper(reg, time.Minute, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	reaper.Start()
	reaper.Start()
	defer reaper.Stop()

	require.Eventually(t, func() bool { return reg.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSessionReaper_StopIsIdempotent(t *testing.T) {
	reg, _ := newTestRegistry()
	reaper := NewSessionReaper(reg, time.Minute, time.Hour, nil)

	reaper.Stop()
	reaper.Start()
	reaper.Stop()
	reaper.Stop()
}
