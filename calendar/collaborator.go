/*
collaborator.go - Interface to the external persistence collaborator

PURPOSE:
  The calendar core owns no storage. It reads a snapshot (the read model)
  and hands write requests back. Any store that satisfies these interfaces
  can sit behind the core.

KEY INTERFACES:
  ReadModel:     month attendance, leave balance, leave history, holidays
  RequestWriter: leave and comp-off submissions
  Store:         both

CONTRACT:
  - FetchLeaveBalance returns (nil, nil) when no balance is on record. The
    core treats that as "unavailable" and displays N/A.
  - FetchMonthAttendance returns a sparse MonthView; absent days are not an
    error.
  - Submit* returning an error means nothing was persisted; the draft is
    kept for retry.

IMPLEMENTATIONS:
  - calendar/store/memory.go: In-memory, for tests and dev
  - store/sqlite/sqlite.go: SQLite
*/
package calendar

import "context"

// ReadModel is the read side of the collaborator.
type ReadModel interface {
	FetchMonthAttendance(ctx context.Context, employeeID string, month MonthRef) (MonthView, error)
	FetchLeaveBalance(ctx context.Context, employeeID string) (*LeaveBalance, error)
	FetchLeaveHistory(ctx context.Context, employeeID string) ([]LeaveRecord, error)
	FetchHolidays(ctx context.Context, year int) ([]Holiday, error)
}

// RequestWriter is the write side of the collaborator.
type RequestWriter interface {
	SubmitLeaveRequest(ctx context.Context, employeeID string, req LeaveRequest) error
	SubmitCompOffRequest(ctx context.Context, employeeID string, req CompOffRequest) error
}

// Store is the full collaborator.
type Store interface {
	ReadModel
	RequestWriter
}

// MonthData is everything one month fetch returns.
type MonthData struct {
	View     MonthView
	Balance  *LeaveBalance
	Holidays []Holiday
}

// FetchMonth loads the read model for ticket. It touches no session state,
// so callers may run it without holding the session.
func FetchMonth(ctx context.Context, rm ReadModel, employeeID string, ticket FetchTicket) (MonthData, error) {
	view, err := rm.FetchMonthAttendance(ctx, employeeID, ticket.Month)
	if err != nil {
		return MonthData{}, err
	}
	view.Year, view.Month = ticket.Month.Year, ticket.Month.Month

	balance, err := rm.FetchLeaveBalance(ctx, employeeID)
	if err != nil {
		return MonthData{}, err
	}
	if balance != nil {
		b := balance.Normalize()
		balance = &b
	}

	holidays, err := rm.FetchHolidays(ctx, ticket.Month.Year)
	if err != nil {
		return MonthData{}, err
	}
	return MonthData{View: view, Balance: balance, Holidays: holidays}, nil
}
