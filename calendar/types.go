/*
Package calendar provides the attendance and leave calendar core.

PURPOSE:
  Renders a month calendar from per-day attendance records, lets a user
  multi-select future dates for leave or comp-off requests while inspecting
  past dates in a detail view, and projects the leave balance after the
  pending selection. Everything here is pure: the read model arrives from an
  external collaborator and write requests are handed back to it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Status: Fixed attendance status vocabulary (Present, Late, ...)
  - AttendanceDay: One immutable per-day record
  - MonthView: The read-model snapshot for one month, replaced wholesale
  - LeaveBalance: Supplied balance components (decimal, half-day aware)
  - Holiday, LeaveRecord: Secondary read-model rows

DESIGN PRINCIPLES:
  1. Derived views: grid, summary and projection are recomputed from inputs,
     never patched in place
  2. Tagged selection: Empty | MultiSelect | DetailView, never two at once
  3. Copy-in drafts: request builders copy the selection when opened
  4. Precision: decimal.Decimal for balances and half-day totals

SEE ALSO:
  - grid.go: CalendarGridBuilder
  - selection.go: DateSelectionController
  - summary.go: SummaryAggregator
  - projection.go: BalanceProjector
  - request.go: Leave and comp-off request builders
  - session.go: The view that owns all mutable state
*/
package calendar

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS - Fixed attendance vocabulary
// =============================================================================

type Status string

const (
	StatusPresent     Status = "Present"
	StatusLate        Status = "Late"
	StatusOnLeave     Status = "On Leave"
	StatusHalfDay     Status = "Half Day"
	StatusAbsent      Status = "Absent"
	StatusMissedPunch Status = "Missed Punch"
	StatusHoliday     Status = "Holiday"
	StatusWeekend     Status = "Weekend"
	StatusNoData      Status = "No Data"
)

// AllStatuses lists the vocabulary in display order.
var AllStatuses = []Status{
	StatusPresent, StatusLate, StatusOnLeave, StatusHalfDay, StatusAbsent,
	StatusMissedPunch, StatusHoliday, StatusWeekend, StatusNoData,
}

// ParseStatus accepts only the fixed vocabulary.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// =============================================================================
// ATTENDANCE DAY
// =============================================================================

// AttendanceDay is one day of attendance as supplied by the read model.
// Status is never derived from the punch times.
type AttendanceDay struct {
	Date       Date
	Status     Status
	CheckIn    *time.Time
	CheckOut   *time.Time
	TotalHours *time.Duration
}

// NoDataDay is the default for a date with no record.
func NoDataDay(d Date) AttendanceDay {
	return AttendanceDay{Date: d, Status: StatusNoData}
}

// =============================================================================
// MONTH VIEW
// =============================================================================

// MonthView is the read-model snapshot for one month. Days is sparse.
type MonthView struct {
	Year  int
	Month time.Month
	Days  []AttendanceDay
}

func (v MonthView) Ref() MonthRef { return MonthRef{Year: v.Year, Month: v.Month} }

// ByDay indexes the records by day-of-month. Records dated outside the
// view's month are skipped so they cannot shadow a day number.
func (v MonthView) ByDay() map[int]AttendanceDay {
	ref := v.Ref()
	out := make(map[int]AttendanceDay, len(v.Days))
	for _, d := range v.Days {
		if d.Date.In(ref) {
			out[d.Date.Day] = d
		}
	}
	return out
}

// Lookup returns the record for date, or a No Data day.
func (v MonthView) Lookup(d Date) AttendanceDay {
	if day, ok := v.ByDay()[d.Day]; ok && d.In(v.Ref()) {
		return day
	}
	return NoDataDay(d)
}

// =============================================================================
// LEAVE BALANCE
// =============================================================================

// LeaveBalance holds the balance components. NewLeaveBalance is computed by
// the collaborator; this package only projects it forward.
type LeaveBalance struct {
	LeaveCarriedForward   decimal.Decimal
	EarnedLeave           decimal.Decimal
	CompOffCarriedForward decimal.Decimal
	CompOffEarned         decimal.Decimal
	LeavesTaken           decimal.Decimal // non-negative magnitude, shown as a deduction
	NewLeaveBalance       decimal.Decimal
}

// Normalize stores LeavesTaken as a magnitude.
func (b LeaveBalance) Normalize() LeaveBalance {
	b.LeavesTaken = b.LeavesTaken.Abs()
	return b
}

// Credits is the sum of the four credit components, for display only.
func (b LeaveBalance) Credits() decimal.Decimal {
	return b.LeaveCarriedForward.Add(b.EarnedLeave).Add(b.CompOffCarriedForward).Add(b.CompOffEarned)
}

// =============================================================================
// HOLIDAYS AND LEAVE HISTORY
// =============================================================================

type Holiday struct {
	Name string
	Date Date
}

type LeaveStatus string

const (
	LeaveApproved LeaveStatus = "Approved"
	LeavePending  LeaveStatus = "Pending"
	LeaveRejected LeaveStatus = "Rejected"
)

// LeaveRecord is one row of the leave history tab.
type LeaveRecord struct {
	ID        string
	LeaveType string
	StartDate Date
	EndDate   Date
	Reason    string
	Status    LeaveStatus

	// RequestedDays is the sum of the shifts actually requested. Zero when
	// the row did not come from a submission; Requested falls back to Days.
	RequestedDays decimal.Decimal
}

// Days is the inclusive calendar span of the record.
func (r LeaveRecord) Days() int {
	if !r.StartDate.Valid() || !r.EndDate.Valid() || r.EndDate.Before(r.StartDate) {
		return 0
	}
	return int(r.EndDate.Time().Sub(r.StartDate.Time()).Hours()/24) + 1
}

// Requested is the number of leave days the record consumes: the requested
// shifts when known, else the calendar span.
func (r LeaveRecord) Requested() decimal.Decimal {
	if r.RequestedDays.IsPositive() {
		return r.RequestedDays
	}
	return decimal.NewFromInt(int64(r.Days()))
}

// PendingDays sums the requested days of every Pending record. Used as the
// default projected-days count of the leave history tab.
func PendingDays(history []LeaveRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range history {
		if r.Status == LeavePending {
			total = total.Add(r.Requested())
		}
	}
	return total
}
