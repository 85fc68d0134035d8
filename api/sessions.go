package api

import (
	"log/slog"
	"sync"
	"time"

	"github.com/warp/leave-calendar/calendar"
)

// =============================================================================
// SESSION REGISTRY - One calendar session per employee
// =============================================================================

// sessionEntry serialises events for one session. Handlers hold mu only
// while touching session state, never across a store call.
type sessionEntry struct {
	mu      sync.Mutex
	session *calendar.Session
}

// SessionRegistry owns the live calendar sessions.
type SessionRegistry struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	clock   calendar.Clock
	logger  *slog.Logger
}

func NewSessionRegistry(clock calendar.Clock, logger *slog.Logger) *SessionRegistry {
	if clock == nil {
		clock = calendar.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRegistry{
		entries: make(map[string]*sessionEntry),
		clock:   clock,
		logger:  logger,
	}
}

// get returns the employee's session, opening one on the current month if
// needed. The returned entry is not locked.
func (r *SessionRegistry) get(employeeID string) *sessionEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[employeeID]
	if !ok {
		e = &sessionEntry{session: calendar.NewSession(employeeID, r.clock, r.hooks(employeeID))}
		r.entries[employeeID] = e
		r.logger.Debug("calendar session opened", slog.String("employee_id", employeeID))
	}
	return e
}

// lookup returns the session without creating one.
func (r *SessionRegistry) lookup(employeeID string) (*sessionEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[employeeID]
	return e, ok
}

// Len is the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Reset drops every session.
func (r *SessionRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*sessionEntry)
}

// EvictIdle drops sessions untouched for at least ttl and returns their
// employee IDs.
func (r *SessionRegistry) EvictIdle(ttl time.Duration) []string {
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, e := range r.entries {
		e.mu.Lock()
		idle := e.session.IdleFor(now)
		e.mu.Unlock()
		if idle >= ttl {
			delete(r.entries, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// hooks log the view callbacks.
func (r *SessionRegistry) hooks(employeeID string) calendar.SessionHooks {
	log := r.logger.With(slog.String("employee_id", employeeID))
	return calendar.SessionHooks{
		OnDateClick: func(d calendar.Date, status calendar.Status) {
			log.Debug("date toggled", slog.String("date", d.String()), slog.String("status", string(status)))
		},
		OnClearSelection: func() {
			log.Debug("selection cleared")
		},
		OnApplyLeaveClick: func(dates []calendar.Date) {
			log.Debug("leave form opened", slog.Int("dates", len(dates)))
		},
		OnApplyCompOffClick: func(dates []calendar.Date) {
			log.Debug("comp-off form opened", slog.Int("dates", len(dates)))
		},
	}
}
