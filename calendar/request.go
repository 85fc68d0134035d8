/*
request.go - Leave and comp-off request builders

PURPOSE:
  Turn the multi-selected future dates into a structured write request.
  A draft is seeded once when its form opens (copy-in), so later calendar
  clicks never leak into an open form.

VARIANTS:
  LeaveDraft:
    Each date carries a shift type (FULL_DAY by default, HALF_DAY allowed).
    RequestedDays = sum(HALF_DAY ? 0.5 : 1). When RequestedDays exceeds the
    balance the draft raises a non-blocking warning (LOP).

  CompOffDraft:
    Every date is FULL_DAY. Only a description is collected. Comp-off accrues
    balance rather than consuming it, so there is no balance check.

SUBMIT GUARD:
  CanSubmit() is false iff the free text is empty/whitespace or there are no
  dates. Validate() additionally rejects invalid dates, which are still
  rendered as "Invalid Date" in the form.

EXAMPLE:
  draft := NewLeaveDraft(selection.Dates(), balance)
  draft.SetShift(NewDate(2025, time.March, 12), HalfDay)
  draft.SetReason("family event")
  req, err := draft.Build()

SEE ALSO:
  - session.go: Opens, submits and discards drafts
  - projection.go: Balance projection used by the warning
*/
package calendar

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SHIFT TYPE
// =============================================================================

type ShiftType string

const (
	FullDay ShiftType = "FULL_DAY"
	HalfDay ShiftType = "HALF_DAY"
)

// Value is the fraction of a day the shift consumes.
func (s ShiftType) Value() decimal.Decimal {
	if s == HalfDay {
		return decimal.NewFromFloat(0.5)
	}
	return decimal.NewFromInt(1)
}

func ParseShiftType(s string) (ShiftType, bool) {
	switch ShiftType(strings.ToUpper(strings.TrimSpace(s))) {
	case FullDay:
		return FullDay, true
	case HalfDay:
		return HalfDay, true
	}
	return "", false
}

// DateShift is one requested date.
type DateShift struct {
	Date  Date
	Shift ShiftType
}

// =============================================================================
// REQUESTS - What the persistence collaborator receives
// =============================================================================

type RequestKind string

const (
	KindLeave   RequestKind = "leave"
	KindCompOff RequestKind = "comp_off"
)

// LeaveRequest is the leave write request.
type LeaveRequest struct {
	Dates  []DateShift
	Reason string
}

// Days is the requested-days value.
func (r LeaveRequest) Days() decimal.Decimal { return sumShifts(r.Dates) }

// CompOffRequest is the comp-off write request. Every shift is FULL_DAY.
type CompOffRequest struct {
	Dates       []DateShift
	Description string
}

func (r CompOffRequest) Days() decimal.Decimal { return sumShifts(r.Dates) }

func sumShifts(entries []DateShift) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Shift.Value())
	}
	return total
}

// seedEntries copies dates into FULL_DAY entries, deduplicated and ascending.
// Invalid dates are kept (sorted last) so the form can show them.
func seedEntries(dates []Date) []DateShift {
	seen := make(map[Date]bool, len(dates))
	entries := make([]DateShift, 0, len(dates))
	for _, d := range dates {
		if d.Valid() && seen[d] {
			continue
		}
		seen[d] = true
		entries = append(entries, DateShift{Date: d, Shift: FullDay})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Date, entries[j].Date
		if a.Valid() != b.Valid() {
			return a.Valid()
		}
		return a.Before(b)
	})
	return entries
}

func copyEntries(entries []DateShift) []DateShift {
	out := make([]DateShift, len(entries))
	copy(out, entries)
	return out
}

func validateEntries(v *ValidationError, entries []DateShift) {
	if len(entries) == 0 {
		v.add("dates", "at least one date is required")
	}
	for _, e := range entries {
		if !e.Date.Valid() {
			v.add("dates", "contains an Invalid Date")
			return
		}
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// =============================================================================
// LEAVE DRAFT
// =============================================================================

// LeaveDraft is the stateful leave form.
type LeaveDraft struct {
	entries []DateShift
	reason  string
	balance *LeaveBalance
}

// NewLeaveDraft seeds one FULL_DAY entry per date. balance may be nil when
// the balance is unavailable.
func NewLeaveDraft(dates []Date, balance *LeaveBalance) *LeaveDraft {
	var b *LeaveBalance
	if balance != nil {
		cp := *balance
		b = &cp
	}
	return &LeaveDraft{entries: seedEntries(dates), balance: b}
}

func (d *LeaveDraft) Entries() []DateShift { return copyEntries(d.entries) }
func (d *LeaveDraft) Reason() string { return d.reason }
func (d *LeaveDraft) SetReason(r string) { d.reason = r }

// SetShift changes the shift type of one seeded date.
func (d *LeaveDraft) SetShift(date Date, shift ShiftType) error {
	if shift != FullDay && shift != HalfDay {
		return &ValidationError{Issues: []FieldIssue{{Field: "shift_type", Reason: "must be FULL_DAY or HALF_DAY"}}}
	}
	for i := range d.entries {
		if d.entries[i].Date == date {
			d.entries[i].Shift = shift
			return nil
		}
	}
	return ErrDateNotInDraft
}

// RequestedDays is recomputed from the entries on every call.
func (d *LeaveDraft) RequestedDays() decimal.Decimal { return sumShifts(d.entries) }

// Projection projects the balance after this draft.
func (d *LeaveDraft) Projection() Projection { return Project(d.balance, d.RequestedDays()) }

// Warning is the non-blocking balance-exceedance flag.
func (d *LeaveDraft) Warning() bool { return d.Projection().LOP }

// CanSubmit is false iff the reason is blank or there are no dates.
func (d *LeaveDraft) CanSubmit() bool { return !blank(d.reason) && len(d.entries) > 0 }

// Validate lists every blocking issue.
func (d *LeaveDraft) Validate() error {
	v := &ValidationError{}
	validateEntries(v, d.entries)
	if blank(d.reason) {
		v.add("reason", "is required")
	}
	return v.orNil()
}

// Build validates and emits the write request. The warning does not block.
func (d *LeaveDraft) Build() (LeaveRequest, error) {
	if err := d.Validate(); err != nil {
		return LeaveRequest{}, err
	}
	return LeaveRequest{Dates: copyEntries(d.entries), Reason: strings.TrimSpace(d.reason)}, nil
}

// =============================================================================
// COMP-OFF DRAFT
// =============================================================================

// CompOffDraft is the stateful comp-off form.
type CompOffDraft struct {
	entries     []DateShift
	description string
}

func NewCompOffDraft(dates []Date) *CompOffDraft {
	return &CompOffDraft{entries: seedEntries(dates)}
}

func (d *CompOffDraft) Entries() []DateShift { return copyEntries(d.entries) }
func (d *CompOffDraft) Description() string { return d.description }
func (d *CompOffDraft) SetDescription(s string) { d.description = s }

func (d *CompOffDraft) RequestedDays() decimal.Decimal { return sumShifts(d.entries) }

// CanSubmit is false iff the description is blank or there are no dates.
func (d *CompOffDraft) CanSubmit() bool { return !blank(d.description) && len(d.entries) > 0 }

func (d *CompOffDraft) Validate() error {
	v := &ValidationError{}
	validateEntries(v, d.entries)
	if blank(d.description) {
		v.add("description", "is required")
	}
	return v.orNil()
}

func (d *CompOffDraft) Build() (CompOffRequest, error) {
	if err := d.Validate(); err != nil {
		return CompOffRequest{}, err
	}
	return CompOffRequest{Dates: copyEntries(d.entries), Description: strings.TrimSpace(d.description)}, nil
}
