/*
handlers_test.go - HTTP tests for the calendar API

Tests for:
- Calendar load, navigation, clicks and notices
- Leave and comp-off draft lifecycle, including submit failures
- Balance, leave history, attendance and holiday endpoints
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-calendar/calendar"
	"github.com/warp/leave-calendar/calendar/store"
	"github.com/warp/leave-calendar/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const emp = "emp-1"

// Saturday 15 March 2025, mid-afternoon.
var testNow = time.Date(2025, time.March, 15, 15, 30, 0, 0, time.UTC)

type testServer struct {
	h      *Handler
	store  *sqlite.Store
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(st, logger, func() time.Time { return testNow })
	return &testServer{h: h, store: st, router: NewRouter(h, []string{"http://localhost:5173"})}
}

// seed gives emp a balance of 5, two punched March days and a holiday.
func (ts *testServer) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, ts.store.SaveLeaveBalance(ctx, emp, calendar.LeaveBalance{
		EarnedLeave:     decimal.NewFromInt(6),
		LeavesTaken:     decimal.NewFromInt(1),
		NewLeaveBalance: decimal.NewFromInt(5),
	}))
	require.NoError(t, ts.store.SaveAttendanceDay(ctx, emp, calendar.AttendanceDay{
		Date: calendar.NewDate(2025, time.March, 3), Status: calendar.StatusPresent,
	}))
	require.NoError(t, ts.store.SaveAttendanceDay(ctx, emp, calendar.AttendanceDay{
		Date: calendar.NewDate(2025, time.March, 4), Status: calendar.StatusLate,
	}))
	require.NoError(t, ts.store.SaveHoliday(ctx, calendar.Holiday{
		Name: "Holi", Date: calendar.NewDate(2025, time.March, 14),
	}))
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (ts *testServer) click(t *testing.T, dates ...string) CalendarDTO {
	t.Helper()
	var cal CalendarDTO
	for _, d := range dates {
		rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/calendar/click", ClickRequest{Date: d})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		cal = decode[CalendarDTO](t, rec)
	}
	return cal
}

// =============================================================================
// CALENDAR
// =============================================================================

func TestGetCalendar_CurrentMonth(t *testing.T) {
	// GIVEN: Two punched days and a holiday in March
	// WHEN: Loading the calendar with no month given
	// THEN: March renders with 6 leading blanks, the records, and the holiday

	ts := newTestServer(t)
	ts.seed(t)

	rec := ts.do(t, http.MethodGet, "/api/employees/"+emp+"/calendar", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cal := decode[CalendarDTO](t, rec)

	assert.True(t, cal.Loaded)
	assert.Equal(t, 2025, cal.Year)
	assert.Equal(t, 3, cal.Month)
	assert.Equal(t, "March 2025", cal.MonthLabel)
	assert.Equal(t, "2025-03-15", cal.Today)
	require.Len(t, cal.Cells, 37)
	for _, c := range cal.Cells[:6] {
		assert.True(t, c.Blank)
	}

	mar3 := cal.Cells[6+2]
	require.NotNil(t, mar3.Day)
	assert.Equal(t, "Present", mar3.Day.Status)
	assert.Equal(t, "Holi", cal.Cells[6+13].Holiday)
	assert.Equal(t, "No Data", cal.Cells[6+19].Day.Status)
	assert.True(t, cal.Cells[6+19].Future)

	counts := map[string]int{}
	for _, card := range cal.Summary {
		counts[card.Status] = card.Count
	}
	assert.Equal(t, 1, counts["Present"])
	assert.Equal(t, 1, counts["Late"])

	require.NotNil(t, cal.Balance)
	assert.Equal(t, 5.0, cal.Balance.NewLeaveBalance)
	assert.Equal(t, "5", cal.Projection.Display)
	assert.Equal(t, "empty", cal.Selection.Kind)
}

func TestGetCalendar_ExplicitMonth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/employees/"+emp+"/calendar?year=2024&month=9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[CalendarDTO](t, rec)

	assert.Equal(t, 2024, cal.Year)
	assert.Equal(t, 9, cal.Month)
	assert.Len(t, cal.Cells, 30, "September 2024 starts on a Sunday")
	assert.Nil(t, cal.Balance)
	assert.Equal(t, "N/A", cal.Projection.Display)
}

func TestGetCalendar_InvalidMonth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/employees/"+emp+"/calendar?year=2025&month=13", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNavigate_RollsOverYear(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/calendar/navigate", NavigateRequest{Delta: -3})
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[CalendarDTO](t, rec)
	assert.Equal(t, 2024, cal.Year)
	assert.Equal(t, 12, cal.Month)

	rec = ts.do(t, http.MethodPost, "/api/employees/"+emp+"/calendar/navigate", NavigateRequest{Delta: 1})
	cal = decode[CalendarDTO](t, rec)
	assert.Equal(t, 2025, cal.Year)
	assert.Equal(t, 1, cal.Month)
}

func TestNavigate_FetchFailureKeepsMonth(t *testing.T) {
	// GIVEN: March is on screen and the read side then goes down
	// WHEN: Navigating to April
	// THEN: 502 fetch_failed; the session still shows March with its data
	//       and carries an error notice

	ts := newTestServer(t)
	reader := store.NewMemory()
	reader.PutDays(emp, calendar.AttendanceDay{Date: calendar.NewDate(2025, time.March, 3), Status: calendar.StatusPresent})
	ts.h.Reader = reader

	rec := ts.do(t, http.MethodGet, "/api/employees/"+emp+"/calendar", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	reader.FetchErr = errors.New("attendance service unavailable")
	rec = ts.do(t, http.MethodPost, "/api/employees/"+emp+"/calendar/navigate", NavigateRequest{Delta: 1})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "fetch_failed", decode[ErrorResponse](t, rec).Code)

	cal := decode[CalendarDTO](t, ts.do(t, http.MethodPost, "/api/employees/"+emp+"/calendar/clear", nil))
	assert.Equal(t, 3, cal.Month)
	assert.True(t, cal.Loaded)
	require.NotNil(t, cal.Cells[6+2].Day)
	assert.Equal(t, "Present", cal.Cells[6+2].Day.Status)
	require.NotNil(t, cal.Notice)
	assert.Equal(t, "error", cal.Notice.Kind)
}

func TestClickDate_FutureDatesAccumulate(t *testing.T) {
	// GIVEN: A loaded March with a balance of 5
	// WHEN: Clicking two future dates out of order
	// THEN: Both are selected, sorted, and the projection drops by 2

	ts := newTestServer(t)
	ts.seed(t)

	cal := ts.click(t, "2025-03-21", "2025-03-20")

	assert.Equal(t, "multi_select", cal.Selection.Kind)
	assert.Equal(t, []string{"2025-03-20", "2025-03-21"}, cal.Selection.Dates)
	assert.True(t, cal.Cells[6+19].Selected)
	assert.Equal(t, "3", cal.Projection.Display)
}

func TestClickDate_PastDateShowsDetail(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)
	ts.click(t, "2025-03-20")

	cal := ts.click(t, "2025-03-04")

	assert.Equal(t, "detail_view", cal.Selection.Kind)
	assert.Empty(t, cal.Selection.Dates)
	require.NotNil(t, cal.Selection.Detail)
	assert.Equal(t, "Late", cal.Selection.Detail.Status)
}

func TestClickDate_Rejected(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	tests := []struct {
		name string
		date string
	}{
		{"malformed", "20-03-2025"},
		{"outside displayed month", "2025-04-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/calendar/click", ClickRequest{Date: tt.date})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestClearSelection(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)
	ts.click(t, "2025-03-20")

	rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/calendar/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cal := decode[CalendarDTO](t, rec)
	assert.Equal(t, "empty", cal.Selection.Kind)
	assert.Equal(t, "5", cal.Projection.Display)
}

// =============================================================================
// LEAVE DRAFTS
// =============================================================================

func TestLeaveDraft_FullLifecycle(t *testing.T) {
	// GIVEN: Two future dates selected with a balance of 5
	// WHEN: Opening the form, marking one date half-day, and submitting
	// THEN: The request is stored, history shows it Pending, and the
	//       calendar comes back with a success notice and no selection

	ts := newTestServer(t)
	ts.seed(t)
	ts.click(t, "2025-03-20", "2025-03-21")

	rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	draft := decode[LeaveDraftDTO](t, rec)
	require.Len(t, draft.Dates, 2)
	assert.Equal(t, "FULL_DAY", draft.Dates[0].ShiftType)
	assert.False(t, draft.CanSubmit)

	reason := "family event"
	rec = ts.do(t, http.MethodPut, "/api/employees/"+emp+"/leave-requests/draft", UpdateLeaveDraftRequest{
		Reason: &reason,
		Shifts: []DateShiftDTO{{Date: "2025-03-21", ShiftType: "half_day"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	draft = decode[LeaveDraftDTO](t, rec)
	assert.Equal(t, 1.5, draft.RequestedDays)
	assert.Equal(t, "3.5", draft.Projection.Display)
	assert.True(t, draft.CanSubmit)
	assert.False(t, draft.Warning)

	rec = ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[SubmitResponse](t, rec)
	assert.Equal(t, "submitted", resp.Status)
	require.NotNil(t, resp.Calendar.Notice)
	assert.Equal(t, "success", resp.Calendar.Notice.Kind)
	assert.Equal(t, "empty", resp.Calendar.Selection.Kind)
	assert.Empty(t, resp.Calendar.OpenRequest)

	rec = ts.do(t, http.MethodGet, "/api/employees/"+emp+"/requests", nil)
	reqs := decode[[]SubmittedRequestDTO](t, rec)
	require.Len(t, reqs, 1)
	assert.Equal(t, "leave", reqs[0].Kind)
	assert.Equal(t, 1.5, reqs[0].Days)

	rec = ts.do(t, http.MethodGet, "/api/employees/"+emp+"/leave-history", nil)
	history := decode[LeaveHistoryResponse](t, rec)
	require.Len(t, history.Records, 1)
	assert.Equal(t, "Pending", history.Records[0].Status)
	assert.Equal(t, 1.5, history.Records[0].RequestedDays)
	assert.Equal(t, 1.5, history.ProjectedDays)
	assert.Equal(t, "3.5", history.Projection.Display)

	rec = ts.do(t, http.MethodDelete, "/api/employees/"+emp+"/calendar/notice", nil)
	assert.Nil(t, decode[CalendarDTO](t, rec).Notice)
}

func TestLeaveDraft_LOPWarningStillSubmits(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)
	ts.click(t, "2025-03-17", "2025-03-18", "2025-03-19", "2025-03-20", "2025-03-21", "2025-03-24")
	ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft", nil)

	reason := "long trip"
	rec := ts.do(t, http.MethodPut, "/api/employees/"+emp+"/leave-requests/draft", UpdateLeaveDraftRequest{Reason: &reason})
	draft := decode[LeaveDraftDTO](t, rec)
	assert.True(t, draft.Warning)
	assert.Equal(t, "-1", draft.Projection.Display)
	assert.Equal(t, 1.0, draft.Projection.LOPDays)

	rec = ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft/submit", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLeaveDraft_BlankReasonRejected(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)
	ts.click(t, "2025-03-20")
	ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft", nil)

	rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft/submit", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", resp.Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/employees/"+emp+"/leave-requests/draft", nil).Code)
}

func TestLeaveDraft_SubmitFailureKeepsDraft(t *testing.T) {
	// GIVEN: A ready leave form and a writer that rejects everything
	// WHEN: Submitting
	// THEN: 502, the form and selection survive, and an error notice shows

	ts := newTestServer(t)
	ts.seed(t)
	failing := store.NewMemory()
	failing.SubmitErr = errors.New("leave service unavailable")
	ts.h.Writer = failing

	ts.click(t, "2025-03-20")
	ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft", nil)
	reason := "trip"
	ts.do(t, http.MethodPut, "/api/employees/"+emp+"/leave-requests/draft", UpdateLeaveDraftRequest{Reason: &reason})

	rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft/submit", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "submit_failed", decode[ErrorResponse](t, rec).Code)

	rec = ts.do(t, http.MethodGet, "/api/employees/"+emp+"/leave-requests/draft", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trip", decode[LeaveDraftDTO](t, rec).Reason)

	cal := decode[CalendarDTO](t, ts.do(t, http.MethodPost, "/api/employees/"+emp+"/calendar/clear", nil))
	require.NotNil(t, cal.Notice)
	assert.Equal(t, "error", cal.Notice.Kind)

	reqs, err := ts.store.ListRequests(context.Background(), emp)
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestLeaveDraft_ConcurrentSubmitRejected(t *testing.T) {
	// GIVEN: A submit for the open form has begun and not yet completed
	// WHEN: A second submit request arrives
	// THEN: 409 submit_in_flight and nothing extra is stored; once the form
	//       is closed and reopened a submit goes through exactly once

	ts := newTestServer(t)
	ts.seed(t)
	ts.click(t, "2025-03-20")
	ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft", nil)
	reason := "trip"
	ts.do(t, http.MethodPut, "/api/employees/"+emp+"/leave-requests/draft", UpdateLeaveDraftRequest{Reason: &reason})

	e := ts.h.Sessions.get(emp)
	e.mu.Lock()
	_, err := e.session.BeginSubmit()
	e.mu.Unlock()
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft/submit", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "submit_in_flight", decode[ErrorResponse](t, rec).Code)

	reqs, err := ts.store.ListRequests(context.Background(), emp)
	require.NoError(t, err)
	assert.Empty(t, reqs)

	rec = ts.do(t, http.MethodDelete, "/api/employees/"+emp+"/leave-requests/draft", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft", nil)
	ts.do(t, http.MethodPut, "/api/employees/"+emp+"/leave-requests/draft", UpdateLeaveDraftRequest{Reason: &reason})

	rec = ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reqs, err = ts.store.ListRequests(context.Background(), emp)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}

func TestLeaveDraft_ShiftForUnknownDate(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)
	ts.click(t, "2025-03-20")
	ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft", nil)

	tests := []struct {
		name  string
		shift DateShiftDTO
	}{
		{"date not in form", DateShiftDTO{Date: "2025-03-25", ShiftType: "FULL_DAY"}},
		{"unknown shift", DateShiftDTO{Date: "2025-03-20", ShiftType: "NIGHT"}},
		{"malformed date", DateShiftDTO{Date: "tomorrow", ShiftType: "FULL_DAY"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPut, "/api/employees/"+emp+"/leave-requests/draft", UpdateLeaveDraftRequest{
				Shifts: []DateShiftDTO{tt.shift},
			})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLeaveDraft_NoneOpen(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/employees/"+emp+"/leave-requests/draft", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/employees/"+emp+"/leave-requests/draft", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft/submit", nil).Code)
}

func TestLeaveDraft_Close(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)
	ts.click(t, "2025-03-20")
	ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft", nil)

	rec := ts.do(t, http.MethodDelete, "/api/employees/"+emp+"/leave-requests/draft", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/employees/"+emp+"/leave-requests/draft", nil).Code)
}

// =============================================================================
// COMP-OFF DRAFTS
// =============================================================================

func TestCompOffDraft_Submit(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)
	ts.click(t, "2025-03-22")

	rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/comp-off-requests/draft", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	desc := "release weekend"
	rec = ts.do(t, http.MethodPut, "/api/employees/"+emp+"/comp-off-requests/draft", UpdateCompOffDraftRequest{Description: &desc})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[CompOffDraftDTO](t, rec).CanSubmit)

	rec = ts.do(t, http.MethodPost, "/api/employees/"+emp+"/comp-off-requests/draft/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	reqs, err := ts.store.ListRequests(context.Background(), emp)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, calendar.KindCompOff, reqs[0].Kind)
}

func TestCompOffDraft_ReplacesLeaveDraft(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)
	ts.click(t, "2025-03-20")
	ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-requests/draft", nil)

	ts.do(t, http.MethodPost, "/api/employees/"+emp+"/comp-off-requests/draft", nil)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/employees/"+emp+"/leave-requests/draft", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/employees/"+emp+"/leave-requests/draft", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/employees/"+emp+"/comp-off-requests/draft", nil).Code)
}

// =============================================================================
// BALANCE AND HISTORY
// =============================================================================

func TestGetBalance_Projection(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	rec := ts.do(t, http.MethodGet, "/api/employees/"+emp+"/balance?days=6.5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[BalanceResponse](t, rec)

	require.NotNil(t, resp.Balance)
	assert.Equal(t, 6.0, resp.Balance.Credits)
	assert.Equal(t, "-1.5", resp.Projection.Display)
	assert.True(t, resp.Projection.LOP)
}

func TestGetBalance_MissingIsNA(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/employees/nobody/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[BalanceResponse](t, rec)

	assert.Nil(t, resp.Balance)
	assert.False(t, resp.Projection.Available)
	assert.Equal(t, "N/A", resp.Projection.Display)
}

func TestGetBalance_NegativeDaysRejected(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/employees/"+emp+"/balance?days=-2", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutBalance_NormalizesTaken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/employees/"+emp+"/balance", map[string]any{
		"earned_leave":      "4.5",
		"leaves_taken":      -1.5,
		"new_leave_balance": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	b, err := ts.store.FetchLeaveBalance(context.Background(), emp)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "1.5", b.LeavesTaken.String())
}

func TestLeaveHistory_ProjectedDaysOverride(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-history", LeaveRecordRequest{
		LeaveType: "Leave", StartDate: "2025-02-10", EndDate: "2025-02-11", Status: "Approved",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[LeaveRecordDTO](t, rec).Days)

	rec = ts.do(t, http.MethodGet, "/api/employees/"+emp+"/leave-history?projected_days=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[LeaveHistoryResponse](t, rec)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "3", resp.Projection.Display)

	rec = ts.do(t, http.MethodGet, "/api/employees/"+emp+"/leave-history?projected_days=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaveHistory_PendingUsesRequestedDays(t *testing.T) {
	// GIVEN: A pending record spanning Mon-Fri that only requested 1.5 days
	// WHEN: Reading history
	// THEN: The pending total is 1.5 and the balance of 5 projects to 3.5

	ts := newTestServer(t)
	ts.seed(t)
	requested := decimal.RequireFromString("1.5")

	rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-history", LeaveRecordRequest{
		LeaveType: "Leave", StartDate: "2025-03-24", EndDate: "2025-03-28", Status: "Pending",
		RequestedDays: &requested,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dto := decode[LeaveRecordDTO](t, rec)
	assert.Equal(t, 5, dto.Days)
	assert.Equal(t, 1.5, dto.RequestedDays)

	resp := decode[LeaveHistoryResponse](t, ts.do(t, http.MethodGet, "/api/employees/"+emp+"/leave-history", nil))
	assert.Equal(t, 1.5, resp.ProjectedDays)
	assert.Equal(t, "3.5", resp.Projection.Display)

	zero := decimal.Zero
	rec = ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-history", LeaveRecordRequest{
		LeaveType: "Leave", StartDate: "2025-03-24", EndDate: "2025-03-28", Status: "Pending",
		RequestedDays: &zero,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLeaveRecord_Invalid(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/employees/"+emp+"/leave-history", LeaveRecordRequest{
		LeaveType: "Leave", StartDate: "2025-02-11", EndDate: "2025-02-10", Status: "Maybe",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", resp.Code)
	assert.Len(t, resp.Details, 2)
}

// =============================================================================
// ATTENDANCE AND HOLIDAYS
// =============================================================================

func TestPutAttendanceDay(t *testing.T) {
	ts := newTestServer(t)
	in := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	out := time.Date(2025, time.March, 10, 17, 30, 0, 0, time.UTC)
	hours := 8.5

	rec := ts.do(t, http.MethodPut, "/api/employees/"+emp+"/attendance/2025-03-10", AttendanceDayRequest{
		Status: "Half Day", CheckIn: &in, CheckOut: &out, TotalHours: &hours,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cal := decode[CalendarDTO](t, ts.do(t, http.MethodGet, "/api/employees/"+emp+"/calendar", nil))
	day := cal.Cells[6+9].Day
	require.NotNil(t, day)
	assert.Equal(t, "Half Day", day.Status)
	require.NotNil(t, day.TotalHours)
	assert.Equal(t, 8.5, *day.TotalHours)
}

func TestPutAttendanceDay_Rejected(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/employees/"+emp+"/attendance/2025-03-10", AttendanceDayRequest{Status: "Sleeping"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/employees/"+emp+"/attendance/2025-02-30", AttendanceDayRequest{Status: "Present"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHolidays_CreateAndList(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/holidays", HolidayDTO{Name: "Diwali", Date: "2025-10-20"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ts.do(t, http.MethodPost, "/api/holidays", HolidayDTO{Name: "New Year", Date: "2026-01-01"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/holidays", nil)
	holidays := decode[[]HolidayDTO](t, rec)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Diwali", holidays[0].Name)

	rec = ts.do(t, http.MethodGet, "/api/holidays?year=2026", nil)
	assert.Len(t, decode[[]HolidayDTO](t, rec), 1)

	rec = ts.do(t, http.MethodPost, "/api/holidays", HolidayDTO{Name: " ", Date: "2025-10-20"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
