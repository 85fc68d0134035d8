/*
reaper.go - Idle calendar session eviction

PURPOSE:
  Calendar sessions live in memory for as long as the user keeps the screen
  open. The reaper periodically drops sessions that have been idle longer
  than the configured TTL.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Sweeps immediately on start, then on every tick
  - An evicted employee simply gets a fresh session on the next request

USAGE:
  reaper := NewSessionReaper(handler.Sessions, 30*time.Minute, time.Minute, logger)
  reaper.Start()
  // ... later
  reaper.Stop()

SEE ALSO:
  - sessions.go: SessionRegistry.EvictIdle
*/
package api

import (
	"log/slog"
	"sync"
	"time"
)

// SessionReaper evicts idle sessions on a ticker.
type SessionReaper struct {
	Sessions      *SessionRegistry
	TTL           time.Duration
	CheckInterval time.Duration
	Logger        *slog.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewSessionReaper(sessions *SessionRegistry, ttl, interval time.Duration, logger *slog.Logger) *SessionReaper {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionReaper{
		Sessions:      sessions,
		TTL:           ttl,
		CheckInterval: interval,
		Logger:        logger,
	}
}

// Start begins sweeping. Calling Start twice is a no-op.
func (sr *SessionReaper) Start() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.ticker != nil {
		return
	}
	sr.ticker = time.NewTicker(sr.CheckInterval)
	sr.stop = make(chan struct{})
	sr.wg.Add(1)

	go sr.run(sr.ticker, sr.stop)

	sr.Logger.Info("session reaper started",
		slog.Duration("ttl", sr.TTL),
		slog.Duration("interval", sr.CheckInterval))
}

// Stop stops the reaper and waits for the current sweep.
func (sr *SessionReaper) Stop() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.ticker == nil {
		return
	}
	sr.ticker.Stop()
	close(sr.stop)
	sr.wg.Wait()
	sr.ticker = nil
	sr.Logger.Info("session reaper stopped")
}

func (sr *SessionReaper) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer sr.wg.Done()

	sr.Sweep()

	for {
		select {
		case <-ticker.C:
			sr.Sweep()
		case <-stop:
			return
		}
	}
}

// Sweep runs one eviction pass and returns the number of sessions dropped.
func (sr *SessionReaper) Sweep() int {
	evicted := sr.Sessions.EvictIdle(sr.TTL)
	if len(evicted) > 0 {
		sr.Logger.Info("idle sessions evicted",
			slog.Int("count", len(evicted)),
			slog.Any("employee_ids", evicted))
	}
	return len(evicted)
}
