// Package store provides in-memory calendar.Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/warp/leave-calendar/calendar"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	attendance map[key]map[calendar.Date]calendar.AttendanceDay
	balances   map[string]calendar.LeaveBalance
	history    map[string][]calendar.LeaveRecord
	holidays   []calendar.Holiday
	leaves     map[string][]calendar.LeaveRequest
	compOffs   map[string][]calendar.CompOffRequest

	// SubmitErr, when set, is returned by every submit and nothing is stored.
	SubmitErr error
	// FetchErr, when set, is returned by every read.
	FetchErr error
}

type key struct {
	EmployeeID string
	Month      calendar.MonthRef
}

var _ calendar.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		attendance: make(map[key]map[calendar.Date]calendar.AttendanceDay),
		balances:   make(map[string]calendar.LeaveBalance),
		history:    make(map[string][]calendar.LeaveRecord),
		leaves:     make(map[string][]calendar.LeaveRequest),
		compOffs:   make(map[string][]calendar.CompOffRequest),
	}
}

// =============================================================================
// SEEDING
// =============================================================================

// PutDays upserts attendance records.
func (m *Memory) PutDays(employeeID string, days ...calendar.AttendanceDay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range days {
		k := key{EmployeeID: employeeID, Month: d.Date.MonthRef()}
		if m.attendance[k] == nil {
			m.attendance[k] = make(map[calendar.Date]calendar.AttendanceDay)
		}
		m.attendance[k][d.Date] = d
	}
}

func (m *Memory) PutBalance(employeeID string, b calendar.LeaveBalance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[employeeID] = b
}

func (m *Memory) PutHoliday(h calendar.Holiday) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays = append(m.holidays, h)
}

func (m *Memory) PutLeaveRecord(employeeID string, r calendar.LeaveRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[employeeID] = append(m.history[employeeID], r)
}

// =============================================================================
// READ MODEL
// =============================================================================

func (m *Memory) FetchMonthAttendance(_ context.Context, employeeID string, month calendar.MonthRef) (calendar.MonthView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FetchErr != nil {
		return calendar.MonthView{}, m.FetchErr
	}

	byDate := m.attendance[key{EmployeeID: employeeID, Month: month}]
	days := make([]calendar.AttendanceDay, 0, len(byDate))
	for _, d := range byDate {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return calendar.MonthView{Year: month.Year, Month: month.Month, Days: days}, nil
}

func (m *Memory) FetchLeaveBalance(_ context.Context, employeeID string) (*calendar.LeaveBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}

	b, ok := m.balances[employeeID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *Memory) FetchLeaveHistory(_ context.Context, employeeID string) ([]calendar.LeaveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}

	out := make([]calendar.LeaveRecord, len(m.history[employeeID]))
	copy(out, m.history[employeeID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *Memory) FetchHolidays(_ context.Context, year int) ([]calendar.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FetchErr != nil {
		return nil, m.FetchErr
	}

	var out []calendar.Holiday
	for _, h := range m.holidays {
		if h.Date.Year == year {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// =============================================================================
// REQUEST WRITER
// =============================================================================

// SubmitLeaveRequest stores the request and records it as Pending history.
func (m *Memory) SubmitLeaveRequest(_ context.Context, employeeID string, req calendar.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SubmitErr != nil {
		return m.SubmitErr
	}
	if len(req.Dates) == 0 {
		return fmt.Errorf("leave request has no dates")
	}
	m.leaves[employeeID] = append(m.leaves[employeeID], req)
	m.history[employeeID] = append(m.history[employeeID], calendar.LeaveRecord{
		ID:            uuid.NewString(),
		LeaveType:     "Leave",
		StartDate:     req.Dates[0].Date,
		EndDate:       req.Dates[len(req.Dates)-1].Date,
		Reason:        req.Reason,
		Status:        calendar.LeavePending,
		RequestedDays: req.Days(),
	})
	return nil
}

func (m *Memory) SubmitCompOffRequest(_ context.Context, employeeID string, req calendar.CompOffRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SubmitErr != nil {
		return m.SubmitErr
	}
	if len(req.Dates) == 0 {
		return fmt.Errorf("comp-off request has no dates")
	}
	m.compOffs[employeeID] = append(m.compOffs[employeeID], req)
	return nil
}

// LeaveRequests returns what was submitted for employeeID.
func (m *Memory) LeaveRequests(employeeID string) []calendar.LeaveRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]calendar.LeaveRequest(nil), m.leaves[employeeID]...)
}

func (m *Memory) CompOffRequests(employeeID string) []calendar.CompOffRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]calendar.CompOffRequest(nil), m.compOffs[employeeID]...)
}
