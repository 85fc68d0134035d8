/*
projection.go - Post-request balance projection

PURPOSE:
  Answers "what will my leave balance be if this goes through?". Both the
  calendar tab (live multi-select count) and the leave history tab
  (externally supplied projected-days count) call the same Project function.

RULES:
  Projected = NewLeaveBalance - Requested
  - No clamping at zero. A negative projection is the LOP (leave without
    pay) case and is flagged, never refused.
  - A missing balance is "unavailable": Display() is "N/A" and LOP is off.

DISPLAY:
  Rounded to two decimals, trailing zeros trimmed:
    7.00 -> "7"     2.50 -> "2.5"     -3 -> "-3"     1.333 -> "1.33"

SEE ALSO:
  - request.go: LeaveDraft.Warning() uses the same comparison
*/
package calendar

import "github.com/shopspring/decimal"

// Projection is the result of projecting a balance forward.
type Projection struct {
	Available bool
	Current   decimal.Decimal
	Requested decimal.Decimal
	Projected decimal.Decimal

	// LOP is set when Requested exceeds Current.
	LOP bool
	// LOPDays is the shortfall when LOP is set.
	LOPDays decimal.Decimal
}

// Project subtracts requested days from the supplied balance.
func Project(balance *LeaveBalance, requested decimal.Decimal) Projection {
	if balance == nil {
		return Projection{Requested: requested}
	}
	current := balance.NewLeaveBalance
	projected := current.Sub(requested)

	p := Projection{
		Available: true,
		Current:   current,
		Requested: requested,
		Projected: projected,
	}
	if projected.IsNegative() {
		p.LOP = true
		p.LOPDays = projected.Neg()
	}
	return p
}

// ProjectCount is Project for a whole number of full days.
func ProjectCount(balance *LeaveBalance, days int) Projection {
	return Project(balance, decimal.NewFromInt(int64(days)))
}

// Display renders the projected balance for the UI.
func (p Projection) Display() string {
	if !p.Available {
		return "N/A"
	}
	return FormatDays(p.Projected)
}

// FormatDays rounds to two decimals and trims trailing zeros.
func FormatDays(d decimal.Decimal) string {
	return d.Round(2).String()
}
