/*
handlers.go - HTTP API handlers for the attendance and leave calendar

PURPOSE:
  Exposes the calendar core via REST API. Each employee has one live
  calendar session; handlers translate HTTP calls into session events and
  render the resulting view.

ENDPOINTS:
  Calendar:
    GET    /api/employees/{id}/calendar?year=&month=  Load a month
    POST   /api/employees/{id}/calendar/navigate      Previous/next month
    POST   /api/employees/{id}/calendar/click         Click a date
    POST   /api/employees/{id}/calendar/clear         Clear the selection
    DELETE /api/employees/{id}/calendar/notice        Dismiss the notice

  Requests:
    POST   /api/employees/{id}/leave-requests/draft         Open leave form
    GET    /api/employees/{id}/leave-requests/draft         Current leave form
    PUT    /api/employees/{id}/leave-requests/draft         Edit shifts/reason
    DELETE /api/employees/{id}/leave-requests/draft         Close leave form
    POST   /api/employees/{id}/leave-requests/draft/submit  Submit
    (same five under /comp-off-requests/draft)
    GET    /api/employees/{id}/requests                     Submitted requests

  Read model:
    GET    /api/employees/{id}/balance?days=          Balance + projection
    PUT    /api/employees/{id}/balance                Replace balance
    GET    /api/employees/{id}/leave-history?projected_days=
    POST   /api/employees/{id}/leave-history          Add history row
    PUT    /api/employees/{id}/attendance/{date}      Upsert attendance day
    GET    /api/holidays?year=                        List holidays
    POST   /api/holidays                              Create holiday

REQUEST FLOW (fetch and submit):
  1. Lock session, Begin* (bumps generation), unlock
  2. Call the store with no lock held
  3. Lock session, Apply* / Complete* (stale results rejected), render

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (issues in details)
  - 404: No open draft, missing record
  - 409: Stale result (the view moved on meanwhile), submit already running
  - 502: The store rejected a submission (draft kept) or a month fetch
         failed (previous month kept, error notice set)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - sessions.go: Session registry
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-calendar/calendar"
	"github.com/warp/leave-calendar/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Sessions *SessionRegistry
	Logger   *slog.Logger
	Clock    calendar.Clock

	// Reader serves month fetches. Defaults to Store.
	Reader calendar.ReadModel
	// Writer receives submissions. Defaults to Store.
	Writer calendar.RequestWriter

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, logger *slog.Logger, clock calendar.Clock) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = calendar.SystemClock
	}
	return &Handler{
		Store:    store,
		Sessions: NewSessionRegistry(clock, logger),
		Logger:   logger,
		Clock:    clock,
		Reader:   store,
		Writer:   store,
	}
}

func (h *Handler) today() calendar.Date { return calendar.Today(h.Clock) }

// =============================================================================
// SESSION PLUMBING
// =============================================================================

// fetch runs one month fetch for e without holding its lock across the store call.
func (h *Handler) fetch(ctx context.Context, e *sessionEntry, begin func(*calendar.Session) calendar.FetchTicket) error {
	e.mu.Lock()
	e.session.Touch()
	ticket := begin(e.session)
	employeeID := e.session.EmployeeID
	e.mu.Unlock()

	data, err := calendar.FetchMonth(ctx, h.Reader, employeeID, ticket)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		return e.session.FailFetch(ticket, err)
	}
	return e.session.ApplyFetch(ticket, data)
}

// update applies fn to the session under its lock and renders the view.
func (h *Handler) update(e *sessionEntry, fn func(*calendar.Session) error) (CalendarDTO, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.Touch()
	if err := fn(e.session); err != nil {
		return CalendarDTO{}, err
	}
	return toCalendarDTO(e.session, h.today()), nil
}

// loaded returns the employee's session, fetching the current month first
// if it was just opened.
func (h *Handler) loaded(ctx context.Context, employeeID string) (*sessionEntry, error) {
	e := h.Sessions.get(employeeID)
	e.mu.Lock()
	isLoaded := e.session.Loaded()
	e.mu.Unlock()

	if isLoaded {
		return e, nil
	}
	err := h.fetch(ctx, e, (*calendar.Session).Refetch)
	if errors.Is(err, calendar.ErrStaleResult) {
		err = nil
	}
	return e, err
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetCalendar loads a month (the displayed one by default) and renders it.
// GET /api/employees/{id}/calendar?year=2025&month=3
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	e := h.Sessions.get(chi.URLParam(r, "id"))

	begin := (*calendar.Session).Refetch
	q := r.URL.Query()
	if q.Get("year") != "" || q.Get("month") != "" {
		month, err := parseMonth(q.Get("year"), q.Get("month"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month", err)
			return
		}
		begin = func(s *calendar.Session) calendar.FetchTicket { return s.BeginFetch(month) }
	}

	if err := h.fetch(r.Context(), e, begin); err != nil {
		h.writeDomainError(w, "Failed to load calendar", err)
		return
	}

	dto, _ := h.update(e, func(*calendar.Session) error { return nil })
	writeJSON(w, http.StatusOK, dto)
}

// Navigate moves the displayed month by delta and loads it.
// POST /api/employees/{id}/calendar/navigate {"delta": -1}
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	e := h.Sessions.get(chi.URLParam(r, "id"))
	begin := func(s *calendar.Session) calendar.FetchTicket { return s.Navigate(req.Delta) }
	if err := h.fetch(r.Context(), e, begin); err != nil {
		h.writeDomainError(w, "Failed to load calendar", err)
		return
	}

	dto, _ := h.update(e, func(*calendar.Session) error { return nil })
	writeJSON(w, http.StatusOK, dto)
}

// ClickDate applies a click on a date of the displayed month.
// POST /api/employees/{id}/calendar/click {"date": "2025-03-20"}
func (h *Handler) ClickDate(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		h.writeDomainError(w, "Invalid date", err)
		return
	}

	e, err := h.loaded(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, "Failed to load calendar", err)
		return
	}

	dto, err := h.update(e, func(s *calendar.Session) error {
		_, err := s.ClickDay(date)
		return err
	})
	if err != nil {
		h.writeDomainError(w, "Click rejected", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// ClearSelection empties the selection.
// POST /api/employees/{id}/calendar/clear
func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	e := h.Sessions.get(chi.URLParam(r, "id"))
	dto, _ := h.update(e, func(s *calendar.Session) error {
		s.ClearSelection()
		return nil
	})
	writeJSON(w, http.StatusOK, dto)
}

// DismissNotice clears the last success or error notice.
// DELETE /api/employees/{id}/calendar/notice
func (h *Handler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	e := h.Sessions.get(chi.URLParam(r, "id"))
	dto, _ := h.update(e, func(s *calendar.Session) error {
		s.DismissNotice()
		return nil
	})
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// LEAVE DRAFT HANDLERS
// =============================================================================

// OpenLeaveDraft seeds a leave form from the current multi-selection.
// POST /api/employees/{id}/leave-requests/draft
func (h *Handler) OpenLeaveDraft(w http.ResponseWriter, r *http.Request) {
	e := h.Sessions.get(chi.URLParam(r, "id"))

	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Touch()
	writeJSON(w, http.StatusCreated, toLeaveDraftDTO(e.session.OpenLeaveRequest()))
}

// GetLeaveDraft returns the open leave form.
// GET /api/employees/{id}/leave-requests/draft
func (h *Handler) GetLeaveDraft(w http.ResponseWriter, r *http.Request) {
	e := h.Sessions.get(chi.URLParam(r, "id"))

	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.session.LeaveDraft()
	if d == nil {
		h.writeDomainError(w, "No leave request open", calendar.ErrNoDraft)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDraftDTO(d))
}

// UpdateLeaveDraft edits shift types and the reason. All shifts are checked
// before any is applied.
// PUT /api/employees/{id}/leave-requests/draft
func (h *Handler) UpdateLeaveDraft(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeaveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	e := h.Sessions.get(chi.URLParam(r, "id"))
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Touch()

	d := e.session.LeaveDraft()
	if d == nil {
		h.writeDomainError(w, "No leave request open", calendar.ErrNoDraft)
		return
	}

	shifts, err := parseShifts(req.Shifts, d.Entries())
	if err != nil {
		h.writeDomainError(w, "Invalid shifts", err)
		return
	}
	for _, s := range shifts {
		if err := d.SetShift(s.Date, s.Shift); err != nil {
			h.writeDomainError(w, "Invalid shifts", err)
			return
		}
	}
	if req.Reason != nil {
		d.SetReason(*req.Reason)
	}
	writeJSON(w, http.StatusOK, toLeaveDraftDTO(d))
}

// CloseLeaveDraft discards the leave form.
// DELETE /api/employees/{id}/leave-requests/draft
func (h *Handler) CloseLeaveDraft(w http.ResponseWriter, r *http.Request) {
	h.closeDraft(w, r, calendar.KindLeave)
}

// SubmitLeaveDraft submits the leave form.
// POST /api/employees/{id}/leave-requests/draft/submit
func (h *Handler) SubmitLeaveDraft(w http.ResponseWriter, r *http.Request) {
	h.submitDraft(w, r, calendar.KindLeave)
}

// =============================================================================
// COMP-OFF DRAFT HANDLERS
// =============================================================================

// OpenCompOffDraft seeds a comp-off form from the current multi-selection.
// POST /api/employees/{id}/comp-off-requests/draft
func (h *Handler) OpenCompOffDraft(w http.ResponseWriter, r *http.Request) {
	e := h.Sessions.get(chi.URLParam(r, "id"))

	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Touch()
	writeJSON(w, http.StatusCreated, toCompOffDraftDTO(e.session.OpenCompOffRequest()))
}

// GetCompOffDraft returns the open comp-off form.
// GET /api/employees/{id}/comp-off-requests/draft
func (h *Handler) GetCompOffDraft(w http.ResponseWriter, r *http.Request) {
	e := h.Sessions.get(chi.URLParam(r, "id"))

	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.session.CompOffDraft()
	if d == nil {
		h.writeDomainError(w, "No comp-off request open", calendar.ErrNoDraft)
		return
	}
	writeJSON(w, http.StatusOK, toCompOffDraftDTO(d))
}

// UpdateCompOffDraft edits the comp-off description.
// PUT /api/employees/{id}/comp-off-requests/draft
func (h *Handler) UpdateCompOffDraft(w http.ResponseWriter, r *http.Request) {
	var req UpdateCompOffDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	e := h.Sessions.get(chi.URLParam(r, "id"))
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Touch()

	d := e.session.CompOffDraft()
	if d == nil {
		h.writeDomainError(w, "No comp-off request open", calendar.ErrNoDraft)
		return
	}
	if req.Description != nil {
		d.SetDescription(*req.Description)
	}
	writeJSON(w, http.StatusOK, toCompOffDraftDTO(d))
}

// CloseCompOffDraft discards the comp-off form.
// DELETE /api/employees/{id}/comp-off-requests/draft
func (h *Handler) CloseCompOffDraft(w http.ResponseWriter, r *http.Request) {
	h.closeDraft(w, r, calendar.KindCompOff)
}

// SubmitCompOffDraft submits the comp-off form.
// POST /api/employees/{id}/comp-off-requests/draft/submit
func (h *Handler) SubmitCompOffDraft(w http.ResponseWriter, r *http.Request) {
	h.submitDraft(w, r, calendar.KindCompOff)
}

// =============================================================================
// SHARED DRAFT FLOW
// =============================================================================

func hasDraft(s *calendar.Session, kind calendar.RequestKind) bool {
	if kind == calendar.KindCompOff {
		return s.CompOffDraft() != nil
	}
	return s.LeaveDraft() != nil
}

func (h *Handler) closeDraft(w http.ResponseWriter, r *http.Request, kind calendar.RequestKind) {
	e := h.Sessions.get(chi.URLParam(r, "id"))

	e.mu.Lock()
	defer e.mu.Unlock()
	if !hasDraft(e.session, kind) {
		h.writeDomainError(w, "No request open", calendar.ErrNoDraft)
		return
	}
	e.session.CloseRequest()
	w.WriteHeader(http.StatusNoContent)
}

// submitDraft validates, sends and completes the open draft of kind. On
// success the month is reloaded so the view reflects the store.
func (h *Handler) submitDraft(w http.ResponseWriter, r *http.Request, kind calendar.RequestKind) {
	ctx := r.Context()
	employeeID := chi.URLParam(r, "id")
	e := h.Sessions.get(employeeID)

	e.mu.Lock()
	e.session.Touch()
	if !hasDraft(e.session, kind) {
		e.mu.Unlock()
		h.writeDomainError(w, "No request open", calendar.ErrNoDraft)
		return
	}
	ticket, err := e.session.BeginSubmit()
	e.mu.Unlock()
	if err != nil {
		h.writeDomainError(w, "Request is not ready to submit", err)
		return
	}

	sendErr := ticket.Send(ctx, h.Writer, employeeID)

	e.mu.Lock()
	err = e.session.CompleteSubmit(ticket, sendErr)
	e.mu.Unlock()
	if err != nil {
		if sendErr != nil {
			h.Logger.Warn("request submission failed",
				slog.String("employee_id", employeeID),
				slog.String("kind", string(kind)),
				slog.Any("error", sendErr))
		}
		h.writeDomainError(w, "Request submission failed", err)
		return
	}

	h.Logger.Info("request submitted",
		slog.String("employee_id", employeeID),
		slog.String("kind", string(kind)),
		slog.Int("dates", len(ticket.Leave.Dates)+len(ticket.CompOff.Dates)))

	if err := h.fetch(ctx, e, (*calendar.Session).Refetch); err != nil && !errors.Is(err, calendar.ErrStaleResult) {
		h.Logger.Warn("reload after submit failed", slog.String("employee_id", employeeID), slog.Any("error", err))
	}

	dto, _ := h.update(e, func(*calendar.Session) error { return nil })
	writeJSON(w, http.StatusOK, SubmitResponse{Status: "submitted", Calendar: dto})
}

// ListRequests returns the employee's submitted requests.
// GET /api/employees/{id}/requests
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Store.ListRequests(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toSubmittedRequestDTOs(reqs))
}

// =============================================================================
// BALANCE AND HISTORY HANDLERS
// =============================================================================

// GetBalance returns the balance and its projection after ?days= (default 0).
// GET /api/employees/{id}/balance?days=2.5
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	days := decimal.Zero
	if raw := r.URL.Query().Get("days"); raw != "" {
		d, err := parseDays(raw)
		if err != nil {
			h.writeDomainError(w, "Invalid days", err)
			return
		}
		days = d
	}

	balance, err := h.fetchBalance(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load balance", err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{
		EmployeeID: employeeID,
		Balance:    toBalanceDTO(balance),
		Projection: toProjectionDTO(calendar.Project(balance, days)),
	})
}

// PutBalance replaces the employee's balance.
// PUT /api/employees/{id}/balance
func (h *Handler) PutBalance(w http.ResponseWriter, r *http.Request) {
	var req BalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	b := calendar.LeaveBalance{
		LeaveCarriedForward:   req.LeaveCarriedForward,
		EarnedLeave:           req.EarnedLeave,
		CompOffCarriedForward: req.CompOffCarriedForward,
		CompOffEarned:         req.CompOffEarned,
		LeavesTaken:           req.LeavesTaken,
		NewLeaveBalance:       req.NewLeaveBalance,
	}.Normalize()

	if err := h.Store.SaveLeaveBalance(r.Context(), chi.URLParam(r, "id"), b); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(&b))
}

// GetLeaveHistory returns the history tab. The projection uses
// ?projected_days= when given, else the requested days of Pending records.
// GET /api/employees/{id}/leave-history?projected_days=3
func (h *Handler) GetLeaveHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := chi.URLParam(r, "id")

	records, err := h.Store.FetchLeaveHistory(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leave history", err)
		return
	}

	days := calendar.PendingDays(records)
	if raw := r.URL.Query().Get("projected_days"); raw != "" {
		d, err := parseDays(raw)
		if err != nil {
			h.writeDomainError(w, "Invalid projected_days", err)
			return
		}
		days = d
	}

	balance, err := h.fetchBalance(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load balance", err)
		return
	}

	writeJSON(w, http.StatusOK, LeaveHistoryResponse{
		Records:       toLeaveRecordDTOs(records),
		ProjectedDays: days.InexactFloat64(),
		Projection:    toProjectionDTO(calendar.Project(balance, days)),
	})
}

// CreateLeaveRecord adds or replaces a leave history row.
// POST /api/employees/{id}/leave-history
func (h *Handler) CreateLeaveRecord(w http.ResponseWriter, r *http.Request) {
	var req LeaveRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := parseLeaveRecord(req)
	if err != nil {
		h.writeDomainError(w, "Invalid leave record", err)
		return
	}
	if err := h.Store.SaveLeaveRecord(r.Context(), chi.URLParam(r, "id"), record); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save leave record", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRecordDTOs([]calendar.LeaveRecord{record})[0])
}

func (h *Handler) fetchBalance(ctx context.Context, employeeID string) (*calendar.LeaveBalance, error) {
	balance, err := h.Store.FetchLeaveBalance(ctx, employeeID)
	if err != nil || balance == nil {
		return nil, err
	}
	b := balance.Normalize()
	return &b, nil
}

// =============================================================================
// ATTENDANCE AND HOLIDAY HANDLERS
// =============================================================================

// PutAttendanceDay upserts one attendance record.
// PUT /api/employees/{id}/attendance/{date}
func (h *Handler) PutAttendanceDay(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		h.writeDomainError(w, "Invalid date", err)
		return
	}

	var req AttendanceDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status, err := calendar.ParseStatus(req.Status)
	if err != nil {
		h.writeDomainError(w, fmt.Sprintf("Unknown status %q", req.Status), err)
		return
	}

	day := calendar.AttendanceDay{Date: date, Status: status, CheckIn: req.CheckIn, CheckOut: req.CheckOut}
	if req.TotalHours != nil {
		if *req.TotalHours < 0 {
			writeError(w, http.StatusBadRequest, "total_hours must not be negative", nil)
			return
		}
		d := time.Duration(*req.TotalHours * float64(time.Hour))
		day.TotalHours = &d
	}

	if err := h.Store.SaveAttendanceDay(r.Context(), chi.URLParam(r, "id"), day); err != nil {
		h.writeDomainError(w, "Failed to save attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(day))
}

// ListHolidays returns the holidays of ?year= (default: this year).
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := h.today().Year
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = y
	}

	holidays, err := h.Store.FetchHolidays(r.Context(), year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTOs(holidays))
}

// CreateHoliday adds a holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		h.writeDomainError(w, "Invalid date", err)
		return
	}

	holiday := calendar.Holiday{Name: strings.TrimSpace(req.Name), Date: date}
	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTOs([]calendar.Holiday{holiday})[0])
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps calendar errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	var verr *calendar.ValidationError
	var serr *calendar.SubmitError
	var ferr *calendar.FetchError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: "validation_failed", Details: verr.Issues})
	case errors.As(err, &serr):
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: message, Code: "submit_failed", Details: serr.Message})
	case errors.As(err, &ferr):
		h.Logger.Warn(message, slog.String("month", ferr.Month.String()), slog.Any("error", ferr.Err))
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: message, Code: "fetch_failed", Details: err.Error()})
	case errors.Is(err, calendar.ErrStaleResult):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: message, Code: "stale_result", Details: err.Error()})
	case errors.Is(err, calendar.ErrSubmitInFlight):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: message, Code: "submit_in_flight", Details: err.Error()})
	case errors.Is(err, calendar.ErrNoDraft):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: message, Code: "no_draft", Details: err.Error()})
	case calendar.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: message, Code: "not_found", Details: err.Error()})
	case calendar.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: "invalid_input", Details: err.Error()})
	default:
		h.Logger.Error(message, slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func parseMonth(rawYear, rawMonth string) (calendar.MonthRef, error) {
	year, err := strconv.Atoi(rawYear)
	if err != nil {
		return calendar.MonthRef{}, fmt.Errorf("invalid year %q", rawYear)
	}
	month, err := strconv.Atoi(rawMonth)
	if err != nil || month < 1 || month > 12 {
		return calendar.MonthRef{}, fmt.Errorf("invalid month %q", rawMonth)
	}
	return calendar.MonthRef{Year: year, Month: time.Month(month)}, nil
}

// parseDays accepts a non-negative decimal day count.
func parseDays(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero, &calendar.ValidationError{Issues: []calendar.FieldIssue{
			{Field: "days", Reason: "must be a non-negative number"},
		}}
	}
	return d, nil
}

// parseShifts resolves every shift edit against the draft's dates before
// anything is applied.
func parseShifts(in []DateShiftDTO, entries []calendar.DateShift) ([]calendar.DateShift, error) {
	seeded := make(map[calendar.Date]bool, len(entries))
	for _, e := range entries {
		seeded[e.Date] = true
	}

	out := make([]calendar.DateShift, 0, len(in))
	for _, s := range in {
		date, err := calendar.ParseDate(s.Date)
		if err != nil {
			return nil, err
		}
		if !seeded[date] {
			return nil, fmt.Errorf("%s: %w", date, calendar.ErrDateNotInDraft)
		}
		shift, ok := calendar.ParseShiftType(s.ShiftType)
		if !ok {
			return nil, &calendar.ValidationError{Issues: []calendar.FieldIssue{
				{Field: "shift_type", Reason: "must be FULL_DAY or HALF_DAY"},
			}}
		}
		out = append(out, calendar.DateShift{Date: date, Shift: shift})
	}
	return out, nil
}

func parseLeaveRecord(req LeaveRecordRequest) (calendar.LeaveRecord, error) {
	verr := &calendar.ValidationError{}
	start, startErr := calendar.ParseDate(req.StartDate)
	end, endErr := calendar.ParseDate(req.EndDate)
	if startErr != nil {
		verr.Issues = append(verr.Issues, calendar.FieldIssue{Field: "start_date", Reason: "invalid date"})
	}
	if endErr != nil {
		verr.Issues = append(verr.Issues, calendar.FieldIssue{Field: "end_date", Reason: "invalid date"})
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		verr.Issues = append(verr.Issues, calendar.FieldIssue{Field: "end_date", Reason: "must not be before start_date"})
	}
	if req.RequestedDays != nil && !req.RequestedDays.IsPositive() {
		verr.Issues = append(verr.Issues, calendar.FieldIssue{Field: "requested_days", Reason: "must be positive"})
	}
	if strings.TrimSpace(req.LeaveType) == "" {
		verr.Issues = append(verr.Issues, calendar.FieldIssue{Field: "leave_type", Reason: "is required"})
	}
	status := calendar.LeaveStatus(req.Status)
	switch status {
	case calendar.LeaveApproved, calendar.LeavePending, calendar.LeaveRejected:
	default:
		verr.Issues = append(verr.Issues, calendar.FieldIssue{Field: "status", Reason: "must be Approved, Pending or Rejected"})
	}
	if len(verr.Issues) > 0 {
		return calendar.LeaveRecord{}, verr
	}

	record := calendar.LeaveRecord{
		ID:        req.ID,
		LeaveType: strings.TrimSpace(req.LeaveType),
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		Status:    status,
	}
	if req.RequestedDays != nil {
		record.RequestedDays = *req.RequestedDays
	}
	return record, nil
}
