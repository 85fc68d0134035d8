/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  attendance, balances, holidays and leave history for one demo employee.
  All dates are relative to the handler clock's current month, so a
  scenario always shows a populated "today".

AVAILABLE SCENARIOS:
  empty-month:    Balance only, no attendance recorded yet
  regular-month:  Mixed statuses up to yesterday, a holiday, leave history
  low-balance:    Almost no leave left; any request projects LOP

HOW SCENARIOS WORK:
  1. Reset database (clear all data) and drop live sessions
  2. Save balance, attendance days, holidays and history rows
  3. Remember the loaded scenario for GET /api/scenarios/current

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "regular-month"}

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler context
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-calendar/calendar"
)

// DemoEmployeeID is the employee every scenario seeds.
const DemoEmployeeID = "emp-demo"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty-month",
		Name:        "Empty Month",
		Description: "Fresh balance, nothing punched yet this month",
		EmployeeID:  DemoEmployeeID,
	},
	{
		ID:          "regular-month",
		Name:        "Regular Month",
		Description: "Mixed attendance up to yesterday with a holiday and leave history",
		EmployeeID:  DemoEmployeeID,
	},
	{
		ID:          "low-balance",
		Name:        "Low Balance",
		Description: "One day of leave left and a pending request; new requests go LOP",
		EmployeeID:  DemoEmployeeID,
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "empty-month":
		load = h.loadEmptyMonthScenario
	case "regular-month":
		load = h.loadRegularMonthScenario
	case "low-balance":
		load = h.loadLowBalanceScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("scenario %q", req.ScenarioID))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := load(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	h.currentScenario = req.ScenarioID

	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID, "employee_id": DemoEmployeeID})
}

// ResetDatabase clears all data and live sessions.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// reset must be called with h.mu held.
func (h *Handler) reset(ctx context.Context) error {
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	h.Sessions.Reset()
	h.currentScenario = ""
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadEmptyMonthScenario(ctx context.Context) error {
	return h.Store.SaveLeaveBalance(ctx, DemoEmployeeID, calendar.LeaveBalance{
		LeaveCarriedForward:   decimal.NewFromInt(2),
		EarnedLeave:           decimal.NewFromInt(3),
		CompOffCarriedForward: decimal.NewFromInt(1),
		LeavesTaken:           decimal.NewFromInt(1),
		NewLeaveBalance:       decimal.NewFromInt(5),
	})
}

func (h *Handler) loadRegularMonthScenario(ctx context.Context) error {
	today := h.today()
	month := today.MonthRef()

	if err := h.Store.SaveLeaveBalance(ctx, DemoEmployeeID, calendar.LeaveBalance{
		LeaveCarriedForward: decimal.NewFromInt(4),
		EarnedLeave:         decimal.RequireFromString("6.5"),
		CompOffEarned:       decimal.NewFromInt(1),
		LeavesTaken:         decimal.RequireFromString("2.5"),
		NewLeaveBalance:     decimal.NewFromInt(8),
	}); err != nil {
		return err
	}

	holiday := month.First().AddDays(13)
	if err := h.Store.SaveHoliday(ctx, calendar.Holiday{Name: "Founders Day", Date: holiday}); err != nil {
		return err
	}

	for d := month.First(); d.Before(today); d = d.AddDays(1) {
		day := regularDay(d, holiday)
		if err := h.Store.SaveAttendanceDay(ctx, DemoEmployeeID, day); err != nil {
			return err
		}
	}

	lastMonth := month.Add(-1).First()
	records := []calendar.LeaveRecord{
		{LeaveType: "Leave", StartDate: lastMonth.AddDays(9), EndDate: lastMonth.AddDays(10), Reason: "Family visit", Status: calendar.LeaveApproved},
		{LeaveType: "Leave", StartDate: lastMonth.AddDays(20), EndDate: lastMonth.AddDays(20), Reason: "Errand", Status: calendar.LeaveRejected},
		{LeaveType: "Leave", StartDate: today.AddDays(7), EndDate: today.AddDays(8), Reason: "Trip", Status: calendar.LeavePending},
	}
	for _, rec := range records {
		if err := h.Store.SaveLeaveRecord(ctx, DemoEmployeeID, rec); err != nil {
			return err
		}
	}
	return nil
}

// regularDay gives each past day of the regular-month scenario a status.
func regularDay(d, holiday calendar.Date) calendar.AttendanceDay {
	switch {
	case d.Weekday() == time.Saturday || d.Weekday() == time.Sunday:
		return calendar.AttendanceDay{Date: d, Status: calendar.StatusWeekend}
	case d == holiday:
		return calendar.AttendanceDay{Date: d, Status: calendar.StatusHoliday}
	case d.Day%11 == 0:
		return calendar.AttendanceDay{Date: d, Status: calendar.StatusAbsent}
	case d.Day%7 == 0:
		in := d.Time().Add(9 * time.Hour)
		return calendar.AttendanceDay{Date: d, Status: calendar.StatusMissedPunch, CheckIn: &in}
	}

	start := 9 * time.Hour
	status := calendar.StatusPresent
	if d.Day%5 == 0 {
		start += 40 * time.Minute
		status = calendar.StatusLate
	}
	in := d.Time().Add(start)
	out := d.Time().Add(18 * time.Hour)
	total := out.Sub(in)
	return calendar.AttendanceDay{Date: d, Status: status, CheckIn: &in, CheckOut: &out, TotalHours: &total}
}

func (h *Handler) loadLowBalanceScenario(ctx context.Context) error {
	today := h.today()

	if err := h.Store.SaveLeaveBalance(ctx, DemoEmployeeID, calendar.LeaveBalance{
		EarnedLeave:     decimal.NewFromInt(6),
		LeavesTaken:     decimal.NewFromInt(5),
		NewLeaveBalance: decimal.NewFromInt(1),
	}); err != nil {
		return err
	}

	for d := today.MonthRef().First(); d.Before(today); d = d.AddDays(1) {
		status := calendar.StatusPresent
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			status = calendar.StatusWeekend
		}
		if err := h.Store.SaveAttendanceDay(ctx, DemoEmployeeID, calendar.AttendanceDay{Date: d, Status: status}); err != nil {
			return err
		}
	}

	return h.Store.SaveLeaveRecord(ctx, DemoEmployeeID, calendar.LeaveRecord{
		LeaveType: "Leave",
		StartDate: today.AddDays(3),
		EndDate:   today.AddDays(3),
		Reason:    "Doctor appointment",
		Status:    calendar.LeavePending,
	})
}
