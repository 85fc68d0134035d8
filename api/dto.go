/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the calendar core from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

NUMBERS:
  Day counts leave the core as decimal.Decimal and are sent as JSON
  numbers. Each projection also carries a Display string ("7", "2.5",
  "N/A") so clients never format balances themselves. Request bodies that
  carry balances decode straight into decimal.Decimal.

TYPES:
  Calendar:
    CalendarDTO, CellDTO, DayDTO, SummaryCardDTO, SelectionDTO

  Balance:
    BalanceDTO, ProjectionDTO

  Drafts:
    LeaveDraftDTO, CompOffDraftDTO, DateShiftDTO

  History:
    LeaveRecordDTO, LeaveHistoryResponse

VALIDATION:
  Validation is done in handlers and the calendar core, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-calendar/calendar"
	"github.com/warp/leave-calendar/store/sqlite"
)

// =============================================================================
// CALENDAR VIEW
// =============================================================================

// CalendarDTO is the full calendar screen for one employee.
type CalendarDTO struct {
	EmployeeID  string           `json:"employee_id"`
	Year        int              `json:"year"`
	Month       int              `json:"month"`
	MonthLabel  string           `json:"month_label"`
	Today       string           `json:"today"`
	Loaded      bool             `json:"loaded"`
	Cells       []CellDTO        `json:"cells"`
	Summary     []SummaryCardDTO `json:"summary"`
	Selection   SelectionDTO     `json:"selection"`
	Balance     *BalanceDTO      `json:"balance"`
	Projection  ProjectionDTO    `json:"projection"`
	Notice      *NoticeDTO       `json:"notice,omitempty"`
	OpenRequest string           `json:"open_request,omitempty"` // leave | comp_off
}

// CellDTO is one grid position. Blank cells carry nothing else.
type CellDTO struct {
	Blank    bool    `json:"blank"`
	Day      *DayDTO `json:"day,omitempty"`
	Holiday  string  `json:"holiday,omitempty"`
	Selected bool    `json:"selected,omitempty"`
	Future   bool    `json:"future,omitempty"`
}

// DayDTO is one attendance record.
type DayDTO struct {
	Date       string   `json:"date"`
	Day        int      `json:"day"`
	Status     string   `json:"status"`
	CheckIn    *string  `json:"check_in,omitempty"`
	CheckOut   *string  `json:"check_out,omitempty"`
	TotalHours *float64 `json:"total_hours,omitempty"`
}

type SummaryCardDTO struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// SelectionDTO mirrors the tagged selection: kind is empty, multi_select or
// detail_view.
type SelectionDTO struct {
	Kind   string   `json:"kind"`
	Dates  []string `json:"dates"`
	Detail *DayDTO  `json:"detail,omitempty"`
}

type NoticeDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// =============================================================================
// BALANCE
// =============================================================================

// BalanceDTO is the balance card.
type BalanceDTO struct {
	LeaveCarriedForward   float64 `json:"leave_carried_forward"`
	EarnedLeave           float64 `json:"earned_leave"`
	CompOffCarriedForward float64 `json:"comp_off_carried_forward"`
	CompOffEarned         float64 `json:"comp_off_earned"`
	LeavesTaken           float64 `json:"leaves_taken"`
	Credits               float64 `json:"credits"`
	NewLeaveBalance       float64 `json:"new_leave_balance"`
}

// ProjectionDTO is the projected balance after a number of requested days.
type ProjectionDTO struct {
	Available bool     `json:"available"`
	Current   *float64 `json:"current"`
	Requested float64  `json:"requested"`
	Projected *float64 `json:"projected"`
	Display   string   `json:"display"`
	LOP       bool     `json:"lop"`
	LOPDays   float64  `json:"lop_days,omitempty"`
}

// BalanceResponse is the balance card with an optional projection.
type BalanceResponse struct {
	EmployeeID string        `json:"employee_id"`
	Balance    *BalanceDTO   `json:"balance"`
	Projection ProjectionDTO `json:"projection"`
}

// =============================================================================
// REQUEST DRAFTS
// =============================================================================

type DateShiftDTO struct {
	Date      string `json:"date"`
	ShiftType string `json:"shift_type"`
}

// LeaveDraftDTO is the open leave form.
type LeaveDraftDTO struct {
	Dates         []DateShiftDTO `json:"dates"`
	Reason        string         `json:"reason"`
	RequestedDays float64        `json:"requested_days"`
	Projection    ProjectionDTO  `json:"projection"`
	Warning       bool           `json:"warning"`
	CanSubmit     bool           `json:"can_submit"`
}

// CompOffDraftDTO is the open comp-off form.
type CompOffDraftDTO struct {
	Dates         []DateShiftDTO `json:"dates"`
	Description   string         `json:"description"`
	RequestedDays float64        `json:"requested_days"`
	CanSubmit     bool           `json:"can_submit"`
}

// UpdateLeaveDraftRequest edits the open leave form. Nil fields are left alone.
type UpdateLeaveDraftRequest struct {
	Reason *string        `json:"reason,omitempty"`
	Shifts []DateShiftDTO `json:"shifts,omitempty"`
}

type UpdateCompOffDraftRequest struct {
	Description *string `json:"description,omitempty"`
}

// SubmitResponse is returned after a successful submission.
type SubmitResponse struct {
	Status   string      `json:"status"`
	Calendar CalendarDTO `json:"calendar"`
}

// SubmittedRequestDTO is a stored leave or comp-off request.
type SubmittedRequestDTO struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Text      string         `json:"text"`
	Dates     []DateShiftDTO `json:"dates"`
	Days      float64        `json:"days"`
	CreatedAt string         `json:"created_at"`
}

// =============================================================================
// CALENDAR INPUTS
// =============================================================================

type NavigateRequest struct {
	Delta int `json:"delta"`
}

type ClickRequest struct {
	Date string `json:"date"`
}

// =============================================================================
// HISTORY AND HOLIDAYS
// =============================================================================

type LeaveRecordDTO struct {
	ID            string  `json:"id"`
	LeaveType     string  `json:"leave_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Days          int     `json:"days"`
	RequestedDays float64 `json:"requested_days"`
	Reason        string  `json:"reason,omitempty"`
	Status        string  `json:"status"`
}

// LeaveHistoryResponse is the leave history tab.
type LeaveHistoryResponse struct {
	Records       []LeaveRecordDTO `json:"records"`
	ProjectedDays float64          `json:"projected_days"`
	Projection    ProjectionDTO    `json:"projection"`
}

type HolidayDTO struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// =============================================================================
// READ-MODEL WRITES
// =============================================================================

// AttendanceDayRequest upserts one attendance day.
type AttendanceDayRequest struct {
	Status     string     `json:"status"`
	CheckIn    *time.Time `json:"check_in,omitempty"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
	TotalHours *float64   `json:"total_hours,omitempty"`
}

// BalanceRequest replaces the employee's balance. Values may be JSON
// numbers or strings.
type BalanceRequest struct {
	LeaveCarriedForward   decimal.Decimal `json:"leave_carried_forward"`
	EarnedLeave           decimal.Decimal `json:"earned_leave"`
	CompOffCarriedForward decimal.Decimal `json:"comp_off_carried_forward"`
	CompOffEarned         decimal.Decimal `json:"comp_off_earned"`
	LeavesTaken           decimal.Decimal `json:"leaves_taken"`
	NewLeaveBalance       decimal.Decimal `json:"new_leave_balance"`
}

// LeaveRecordRequest adds a history row. RequestedDays defaults to the
// calendar span.
type LeaveRecordRequest struct {
	ID            string           `json:"id,omitempty"`
	LeaveType     string           `json:"leave_type"`
	StartDate     string           `json:"start_date"`
	EndDate       string           `json:"end_date"`
	RequestedDays *decimal.Decimal `json:"requested_days,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Status        string           `json:"status"`
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	EmployeeID  string `json:"employee_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toDayDTO(d calendar.AttendanceDay) *DayDTO {
	dto := &DayDTO{
		Date:   d.Date.String(),
		Day:    d.Date.Day,
		Status: string(d.Status),
	}
	if d.CheckIn != nil {
		s := d.CheckIn.Format(time.RFC3339)
		dto.CheckIn = &s
	}
	if d.CheckOut != nil {
		s := d.CheckOut.Format(time.RFC3339)
		dto.CheckOut = &s
	}
	if d.TotalHours != nil {
		h := decimal.NewFromFloat(d.TotalHours.Hours()).Round(2).InexactFloat64()
		dto.TotalHours = &h
	}
	return dto
}

func toBalanceDTO(b *calendar.LeaveBalance) *BalanceDTO {
	if b == nil {
		return nil
	}
	return &BalanceDTO{
		LeaveCarriedForward:   b.LeaveCarriedForward.InexactFloat64(),
		EarnedLeave:           b.EarnedLeave.InexactFloat64(),
		CompOffCarriedForward: b.CompOffCarriedForward.InexactFloat64(),
		CompOffEarned:         b.CompOffEarned.InexactFloat64(),
		LeavesTaken:           b.LeavesTaken.InexactFloat64(),
		Credits:               b.Credits().InexactFloat64(),
		NewLeaveBalance:       b.NewLeaveBalance.InexactFloat64(),
	}
}

func toProjectionDTO(p calendar.Projection) ProjectionDTO {
	dto := ProjectionDTO{
		Available: p.Available,
		Requested: p.Requested.InexactFloat64(),
		Display:   p.Display(),
		LOP:       p.LOP,
	}
	if p.Available {
		current := p.Current.InexactFloat64()
		projected := p.Projected.Round(2).InexactFloat64()
		dto.Current, dto.Projected = &current, &projected
	}
	if p.LOP {
		dto.LOPDays = p.LOPDays.InexactFloat64()
	}
	return dto
}

func toDateShiftDTOs(entries []calendar.DateShift) []DateShiftDTO {
	out := make([]DateShiftDTO, len(entries))
	for i, e := range entries {
		out[i] = DateShiftDTO{Date: e.Date.String(), ShiftType: string(e.Shift)}
	}
	return out
}

func toLeaveDraftDTO(d *calendar.LeaveDraft) LeaveDraftDTO {
	return LeaveDraftDTO{
		Dates:         toDateShiftDTOs(d.Entries()),
		Reason:        d.Reason(),
		RequestedDays: d.RequestedDays().InexactFloat64(),
		Projection:    toProjectionDTO(d.Projection()),
		Warning:       d.Warning(),
		CanSubmit:     d.CanSubmit(),
	}
}

func toCompOffDraftDTO(d *calendar.CompOffDraft) CompOffDraftDTO {
	return CompOffDraftDTO{
		Dates:         toDateShiftDTOs(d.Entries()),
		Description:   d.Description(),
		RequestedDays: d.RequestedDays().InexactFloat64(),
		CanSubmit:     d.CanSubmit(),
	}
}

func toLeaveRecordDTOs(records []calendar.LeaveRecord) []LeaveRecordDTO {
	out := make([]LeaveRecordDTO, len(records))
	for i, r := range records {
		out[i] = LeaveRecordDTO{
			ID:            r.ID,
			LeaveType:     r.LeaveType,
			StartDate:     r.StartDate.String(),
			EndDate:       r.EndDate.String(),
			Days:          r.Days(),
			RequestedDays: r.Requested().InexactFloat64(),
			Reason:        r.Reason,
			Status:        string(r.Status),
		}
	}
	return out
}

func toHolidayDTOs(holidays []calendar.Holiday) []HolidayDTO {
	out := make([]HolidayDTO, len(holidays))
	for i, h := range holidays {
		out[i] = HolidayDTO{Name: h.Name, Date: h.Date.String()}
	}
	return out
}

func toSubmittedRequestDTOs(reqs []sqlite.SubmittedRequest) []SubmittedRequestDTO {
	out := make([]SubmittedRequestDTO, len(reqs))
	for i, r := range reqs {
		out[i] = SubmittedRequestDTO{
			ID:        r.ID,
			Kind:      string(r.Kind),
			Text:      r.Text,
			Dates:     toDateShiftDTOs(r.Dates),
			Days:      calendar.LeaveRequest{Dates: r.Dates}.Days().InexactFloat64(),
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}

// toCalendarDTO renders the session. The caller holds the session lock.
func toCalendarDTO(s *calendar.Session, today calendar.Date) CalendarDTO {
	month := s.Month()
	sel := s.Selection()

	cells := s.Grid()
	cellDTOs := make([]CellDTO, len(cells))
	for i, c := range cells {
		if c.Blank {
			cellDTOs[i] = CellDTO{Blank: true}
			continue
		}
		cellDTOs[i] = CellDTO{
			Day:      toDayDTO(c.Day),
			Holiday:  c.Holiday,
			Selected: sel.Contains(c.Day.Date),
			Future:   c.Day.Date.After(today),
		}
	}

	cards := s.Summary().Ordered()
	summary := make([]SummaryCardDTO, len(cards))
	for i, c := range cards {
		summary[i] = SummaryCardDTO{Status: string(c.Status), Count: c.Count}
	}

	selDTO := SelectionDTO{Kind: sel.Kind().String(), Dates: []string{}}
	for _, d := range sel.Dates() {
		selDTO.Dates = append(selDTO.Dates, d.String())
	}
	if detail, ok := sel.Detail(); ok {
		selDTO.Detail = toDayDTO(detail)
	}

	dto := CalendarDTO{
		EmployeeID: s.EmployeeID,
		Year:       month.Year,
		Month:      int(month.Month),
		MonthLabel: month.First().Time().Format("January 2006"),
		Today:      today.String(),
		Loaded:     s.Loaded(),
		Cells:      cellDTOs,
		Summary:    summary,
		Selection:  selDTO,
		Balance:    toBalanceDTO(s.Balance()),
		Projection: toProjectionDTO(s.Projection()),
	}
	if n := s.Notice(); n != nil {
		dto.Notice = &NoticeDTO{Kind: string(n.Kind), Message: n.Message}
	}
	switch {
	case s.LeaveDraft() != nil:
		dto.OpenRequest = string(calendar.KindLeave)
	case s.CompOffDraft() != nil:
		dto.OpenRequest = string(calendar.KindCompOff)
	}
	return dto
}
