/*
session.go - The calendar view: owner of all mutable state

PURPOSE:
  A Session is one user's calendar screen. It owns the displayed month, the
  read-model snapshot, the selection and the open request draft, and applies
  every event to them in order. Grid, summary and projection are derived on
  each call.

ASYNC RESULTS:
  Fetches and submits are the only slow operations. They are split in two:

    ticket := s.BeginFetch(month)          // under the owner's lock
    data, err := FetchMonth(ctx, rm, ...)  // no lock, no session state
    err = s.ApplyFetch(ticket, data)       // under the owner's lock

  Each Begin* bumps a generation counter. A result whose ticket is no longer
  current returns ErrStaleResult and changes nothing, so a slow response can
  never resurrect state the user already moved past.

  A failed fetch goes through FailFetch: the displayed month falls back to
  the last month actually loaded and a dismissible error notice is set.

SUBMIT OUTCOMES:
  success  selection cleared, draft discarded, success notice
  failure  draft kept intact, dismissible error notice, SubmitError returned
  stale    ignored (the form was closed or reopened meanwhile)

  Only one submit runs at a time; BeginSubmit returns ErrSubmitInFlight
  until the running one completes or the form is closed.

SEE ALSO:
  - selection.go: Transition table
  - request.go: Drafts
  - collaborator.go: FetchMonth and the Store interfaces
*/
package calendar

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// NOTICES AND HOOKS
// =============================================================================

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a dismissible message for the user.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// SessionHooks are the callbacks exposed to the hosting view.
type SessionHooks struct {
	OnDateClick         func(date Date, status Status)
	OnClearSelection    func()
	OnApplyLeaveClick   func(dates []Date)
	OnApplyCompOffClick func(dates []Date)
}

// FetchTicket identifies one month fetch.
type FetchTicket struct {
	gen   uint64
	Month MonthRef
}

// SubmitTicket carries a built request to the collaborator.
type SubmitTicket struct {
	gen     uint64
	Kind    RequestKind
	Leave   LeaveRequest
	CompOff CompOffRequest
}

// =============================================================================
// SESSION
// =============================================================================

// Session is not safe for concurrent use. The owner serialises events, the
// way a UI thread would.
type Session struct {
	EmployeeID string

	clock     Clock
	hooks     SessionHooks
	month     MonthRef
	data      MonthData
	loaded    bool
	selection *SelectionController

	leaveDraft   *LeaveDraft
	compOffDraft *CompOffDraft
	notice       *Notice

	fetchGen   uint64
	submitGen  uint64
	submitting bool
	lastActive time.Time
}

// NewSession opens a session on the current month.
func NewSession(employeeID string, clock Clock, hooks SessionHooks) *Session {
	if clock == nil {
		clock = SystemClock
	}
	s := &Session{
		EmployeeID: employeeID,
		clock:      clock,
		hooks:      hooks,
		month:      CurrentMonth(clock),
		lastActive: clock(),
	}
	s.selection = NewSelectionController(clock, SelectionHooks{
		OnDateClick:      hooks.OnDateClick,
		OnClearSelection: hooks.OnClearSelection,
	})
	return s
}

// Touch records activity for idle eviction.
func (s *Session) Touch() { s.lastActive = s.clock() }

// IdleFor is how long the session has been untouched as of now.
func (s *Session) IdleFor(now time.Time) time.Duration { return now.Sub(s.lastActive) }

// =============================================================================
// READ MODEL
// =============================================================================

func (s *Session) Month() MonthRef { return s.month }
func (s *Session) View() MonthView { return s.data.View }
func (s *Session) Balance() *LeaveBalance { return s.data.Balance }
func (s *Session) Holidays() []Holiday { return s.data.Holidays }
func (s *Session) Loaded() bool { return s.loaded }
func (s *Session) Selection() Selection { return s.selection.State() }
func (s *Session) Notice() *Notice { return s.notice }
func (s *Session) LeaveDraft() *LeaveDraft { return s.leaveDraft }
func (s *Session) CompOffDraft() *CompOffDraft { return s.compOffDraft }

// BeginFetch switches the displayed month and supersedes any fetch in flight.
func (s *Session) BeginFetch(month MonthRef) FetchTicket {
	s.fetchGen++
	s.month = month
	return FetchTicket{gen: s.fetchGen, Month: month}
}

// Navigate moves delta months (rolling over years) and begins its fetch.
func (s *Session) Navigate(delta int) FetchTicket {
	return s.BeginFetch(s.month.Add(delta))
}

// Refetch begins a fetch of the displayed month.
func (s *Session) Refetch() FetchTicket { return s.BeginFetch(s.month) }

// ApplyFetch replaces the snapshot wholesale if ticket is still current.
func (s *Session) ApplyFetch(ticket FetchTicket, data MonthData) error {
	if ticket.gen != s.fetchGen {
		return ErrStaleResult
	}
	s.data = data
	s.loaded = true
	return nil
}

// FailFetch records the read model's failure for ticket. The displayed
// month reverts to the last one loaded so its data is not shown under
// another month's label.
func (s *Session) FailFetch(ticket FetchTicket, fetchErr error) error {
	if ticket.gen != s.fetchGen {
		return ErrStaleResult
	}
	if s.loaded {
		s.month = s.data.View.Ref()
	}
	fe := &FetchError{Month: ticket.Month, Err: fetchErr}
	s.notice = &Notice{Kind: NoticeError, Message: fe.Error()}
	return fe
}

// Load is the synchronous fetch for callers without a lock to release.
func (s *Session) Load(ctx context.Context, rm ReadModel, month MonthRef) error {
	ticket := s.BeginFetch(month)
	data, err := FetchMonth(ctx, rm, s.EmployeeID, ticket)
	if err != nil {
		return s.FailFetch(ticket, err)
	}
	return s.ApplyFetch(ticket, data)
}

// =============================================================================
// DERIVED VIEWS
// =============================================================================

// Grid lays out the displayed month with holiday names attached.
func (s *Session) Grid() []Cell {
	return AnnotateHolidays(BuildGrid(s.month, s.monthDays()), s.data.Holidays)
}

// Summary counts the displayed month.
func (s *Session) Summary() Summary { return Summarize(s.monthDays()) }

// Projection projects the balance after the current multi-selection.
func (s *Session) Projection() Projection {
	return ProjectCount(s.data.Balance, s.selection.State().Len())
}

// ProjectDays projects the balance after an externally supplied day count.
func (s *Session) ProjectDays(days decimal.Decimal) Projection {
	return Project(s.data.Balance, days)
}

// monthDays is the snapshot restricted to the displayed month; a snapshot
// of another month contributes nothing while its replacement loads.
func (s *Session) monthDays() []AttendanceDay {
	if s.data.View.Ref() != s.month {
		return nil
	}
	return s.data.View.Days
}

// =============================================================================
// SELECTION
// =============================================================================

// ClickDay applies a click on a date of the displayed month.
func (s *Session) ClickDay(d Date) (Selection, error) {
	if !d.Valid() {
		return s.selection.State(), ErrInvalidDate
	}
	if !d.In(s.month) {
		return s.selection.State(), ErrDayOutsideMonth
	}
	day := NoDataDay(d)
	if s.data.View.Ref() == s.month {
		day = s.data.View.Lookup(d)
	}
	return s.selection.HandleDateClick(day), nil
}

// ClearSelection forces Empty.
func (s *Session) ClearSelection() { s.selection.ClearSelection() }

// =============================================================================
// REQUEST DRAFTS
// =============================================================================

// OpenLeaveRequest seeds a fresh leave draft from the current multi-select.
// Any other open draft is discarded.
func (s *Session) OpenLeaveRequest() *LeaveDraft {
	dates := s.selection.State().Dates()
	s.closeDrafts()
	s.leaveDraft = NewLeaveDraft(dates, s.data.Balance)
	if s.hooks.OnApplyLeaveClick != nil {
		s.hooks.OnApplyLeaveClick(dates)
	}
	return s.leaveDraft
}

// OpenCompOffRequest seeds a fresh comp-off draft from the current multi-select.
func (s *Session) OpenCompOffRequest() *CompOffDraft {
	dates := s.selection.State().Dates()
	s.closeDrafts()
	s.compOffDraft = NewCompOffDraft(dates)
	if s.hooks.OnApplyCompOffClick != nil {
		s.hooks.OnApplyCompOffClick(dates)
	}
	return s.compOffDraft
}

// CloseRequest discards the open draft. A submit still in flight becomes stale.
func (s *Session) CloseRequest() { s.closeDrafts() }

func (s *Session) closeDrafts() {
	s.leaveDraft = nil
	s.compOffDraft = nil
	s.submitGen++
	s.submitting = false
}

// Submitting reports whether a submit ticket is out.
func (s *Session) Submitting() bool { return s.submitting }

// DismissNotice clears the last notice.
func (s *Session) DismissNotice() { s.notice = nil }

// =============================================================================
// SUBMIT
// =============================================================================

// BeginSubmit validates the open draft and builds its write request.
func (s *Session) BeginSubmit() (SubmitTicket, error) {
	if s.submitting {
		return SubmitTicket{}, ErrSubmitInFlight
	}
	switch {
	case s.leaveDraft != nil:
		req, err := s.leaveDraft.Build()
		if err != nil {
			return SubmitTicket{}, err
		}
		s.submitGen++
		s.submitting = true
		return SubmitTicket{gen: s.submitGen, Kind: KindLeave, Leave: req}, nil
	case s.compOffDraft != nil:
		req, err := s.compOffDraft.Build()
		if err != nil {
			return SubmitTicket{}, err
		}
		s.submitGen++
		s.submitting = true
		return SubmitTicket{gen: s.submitGen, Kind: KindCompOff, CompOff: req}, nil
	}
	return SubmitTicket{}, ErrNoDraft
}

// Send hands the ticket's request to the writer. It touches no session state.
func (t SubmitTicket) Send(ctx context.Context, w RequestWriter, employeeID string) error {
	if t.Kind == KindCompOff {
		return w.SubmitCompOffRequest(ctx, employeeID, t.CompOff)
	}
	return w.SubmitLeaveRequest(ctx, employeeID, t.Leave)
}

// CompleteSubmit applies the collaborator's answer for ticket.
func (s *Session) CompleteSubmit(ticket SubmitTicket, sendErr error) error {
	if ticket.gen != s.submitGen {
		return ErrStaleResult
	}
	s.submitting = false
	if sendErr != nil {
		se := &SubmitError{Kind: ticket.Kind, Message: sendErr.Error(), Err: sendErr}
		s.notice = &Notice{Kind: NoticeError, Message: se.Error()}
		return se
	}
	s.closeDrafts()
	s.selection.ClearSelection()
	s.notice = &Notice{Kind: NoticeSuccess, Message: submittedMessage(ticket.Kind)}
	return nil
}

// Submit is the synchronous submit for callers without a lock to release.
func (s *Session) Submit(ctx context.Context, w RequestWriter) error {
	ticket, err := s.BeginSubmit()
	if err != nil {
		return err
	}
	return s.CompleteSubmit(ticket, ticket.Send(ctx, w, s.EmployeeID))
}

func submittedMessage(kind RequestKind) string {
	if kind == KindCompOff {
		return "Comp-off request submitted"
	}
	return "Leave request submitted"
}
