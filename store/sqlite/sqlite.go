/*
Package sqlite provides a SQLite-backed implementation of the calendar collaborator.

PURPOSE:
  Implements calendar.Store (read model + request writer) using SQLite, plus
  the upserts the service uses to populate the read model. In production the
  same patterns apply to PostgreSQL with minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  calendar.ReadModel:     attendance, balance, leave history, holidays
  calendar.RequestWriter: leave and comp-off submissions

KEY TABLES:
  attendance_days:       One row per employee per date (sparse)
  leave_balances:        One row per employee, decimal components as TEXT
  holidays:              Company-wide holidays
  leave_history:         Rows of the leave history tab
  leave_requests:        Submitted leave requests
  leave_request_days:    Dates and shift types of each leave request
  comp_off_requests:     Submitted comp-off requests
  comp_off_request_days: Dates of each comp-off request

SUBMISSION:
  A leave submission writes the request, its days and a Pending
  leave_history row in one database transaction. Nothing is persisted when
  any insert fails.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/calendar.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - calendar/collaborator.go: Interface definitions
  - calendar/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-calendar/calendar"
)

// Store implements calendar.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ calendar.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every pooled connection to ":memory:" would be a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Attendance (sparse: absent rows render as No Data)
	CREATE TABLE IF NOT EXISTS attendance_days (
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		check_in TEXT,
		check_out TEXT,
		total_minutes INTEGER,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, date)
	);

	-- Balance components are decimal strings (half days)
	CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id TEXT PRIMARY KEY,
		leave_carried_forward TEXT NOT NULL,
		earned_leave TEXT NOT NULL,
		comp_off_carried_forward TEXT NOT NULL,
		comp_off_earned TEXT NOT NULL,
		leaves_taken TEXT NOT NULL,
		new_leave_balance TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(date, name);

	CREATE TABLE IF NOT EXISTS leave_history (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL,
		requested_days TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_history_employee
		ON leave_history(employee_id, start_date DESC);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		requested_days TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leave_request_days (
		request_id TEXT NOT NULL REFERENCES leave_requests(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		shift_type TEXT NOT NULL,
		PRIMARY KEY (request_id, date)
	);

	CREATE TABLE IF NOT EXISTS comp_off_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		description TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS comp_off_request_days (
		request_id TEXT NOT NULL REFERENCES comp_off_requests(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		shift_type TEXT NOT NULL,
		PRIMARY KEY (request_id, date)
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_comp_off_requests_employee
		ON comp_off_requests(employee_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// READ MODEL (calendar.ReadModel interface)
// =============================================================================

// FetchMonthAttendance returns the stored days of one month, ascending.
func (s *Store) FetchMonthAttendance(ctx context.Context, employeeID string, month calendar.MonthRef) (calendar.MonthView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT date, status, check_in, check_out, total_minutes
		FROM attendance_days
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	view := calendar.MonthView{Year: month.Year, Month: month.Month}
	rows, err := s.db.QueryContext(ctx, query, employeeID, month.First().String(), month.Last().String())
	if err != nil {
		return view, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			dateStr, status   string
			checkIn, checkOut sql.NullString
			totalMinutes      sql.NullInt64
		)
		if err := rows.Scan(&dateStr, &status, &checkIn, &checkOut, &totalMinutes); err != nil {
			return view, err
		}

		day := calendar.AttendanceDay{
			Date:   calendar.ParseDateLenient(dateStr),
			Status: calendar.Status(status),
		}
		if day.CheckIn, err = parseTime(checkIn); err != nil {
			return view, fmt.Errorf("corrupt check_in on %s: %w", dateStr, err)
		}
		if day.CheckOut, err = parseTime(checkOut); err != nil {
			return view, fmt.Errorf("corrupt check_out on %s: %w", dateStr, err)
		}
		if totalMinutes.Valid {
			d := time.Duration(totalMinutes.Int64) * time.Minute
			day.TotalHours = &d
		}
		view.Days = append(view.Days, day)
	}
	return view, rows.Err()
}

// FetchLeaveBalance returns nil, nil when no balance is on record.
func (s *Store) FetchLeaveBalance(ctx context.Context, employeeID string) (*calendar.LeaveBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lcf, el, ccf, ce, taken, newBal string
	err := s.db.QueryRowContext(ctx, `
		SELECT leave_carried_forward, earned_leave, comp_off_carried_forward,
		       comp_off_earned, leaves_taken, new_leave_balance
		FROM leave_balances WHERE employee_id = ?`,
		employeeID,
	).Scan(&lcf, &el, &ccf, &ce, &taken, &newBal)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var b calendar.LeaveBalance
	for _, f := range []struct {
		dst    *decimal.Decimal
		column string
		raw    string
	}{
		{&b.LeaveCarriedForward, "leave_carried_forward", lcf},
		{&b.EarnedLeave, "earned_leave", el},
		{&b.CompOffCarriedForward, "comp_off_carried_forward", ccf},
		{&b.CompOffEarned, "comp_off_earned", ce},
		{&b.LeavesTaken, "leaves_taken", taken},
		{&b.NewLeaveBalance, "new_leave_balance", newBal},
	} {
		d, err := parseDecimal(f.raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt leave_balances.%s for %s: %w", f.column, employeeID, err)
		}
		*f.dst = d
	}
	return &b, nil
}

// FetchLeaveHistory returns the employee's history, newest first.
func (s *Store) FetchLeaveHistory(ctx context.Context, employeeID string) ([]calendar.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, leave_type, start_date, end_date, reason, status, requested_days
		FROM leave_history
		WHERE employee_id = ?
		ORDER BY start_date DESC, created_at DESC`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave history: %w", err)
	}
	defer rows.Close()

	var records []calendar.LeaveRecord
	for rows.Next() {
		var r calendar.LeaveRecord
		var start, end, status string
		var reason, requested sql.NullString
		if err := rows.Scan(&r.ID, &r.LeaveType, &start, &end, &reason, &status, &requested); err != nil {
			return nil, err
		}
		if requested.Valid {
			d, err := parseDecimal(requested.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt leave_history.requested_days for %s: %w", r.ID, err)
			}
			r.RequestedDays = d
		}
		r.StartDate = calendar.ParseDateLenient(start)
		r.EndDate = calendar.ParseDateLenient(end)
		r.Reason = reason.String
		r.Status = calendar.LeaveStatus(status)
		records = append(records, r)
	}
	return records, rows.Err()
}

// FetchHolidays returns the holidays of one year, ascending.
func (s *Store) FetchHolidays(ctx context.Context, year int) ([]calendar.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, name FROM holidays
		WHERE strftime('%Y', date) = ?
		ORDER BY date ASC`,
		fmt.Sprintf("%04d", year),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		var dateStr string
		if err := rows.Scan(&dateStr, &h.Name); err != nil {
			return nil, err
		}
		h.Date = calendar.ParseDateLenient(dateStr)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// REQUEST WRITER (calendar.RequestWriter interface)
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SubmitLeaveRequest stores the request with its days and a Pending history
// row, atomically.
func (s *Store) SubmitLeaveRequest(ctx context.Context, employeeID string, req calendar.LeaveRequest) error {
	if err := checkDates(req.Dates); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		id := uuid.NewString()
		now := time.Now().UTC().Format(time.RFC3339)

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO leave_requests (id, employee_id, reason, requested_days, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			id, employeeID, req.Reason, req.Days().String(), now,
		); err != nil {
			return fmt.Errorf("failed to insert leave request: %w", err)
		}
		if err := insertDays(ctx, tx, "leave_request_days", id, req.Dates); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO leave_history (id, employee_id, leave_type, start_date, end_date, reason, status, requested_days, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, employeeID, "Leave",
			req.Dates[0].Date.String(), req.Dates[len(req.Dates)-1].Date.String(),
			req.Reason, string(calendar.LeavePending), req.Days().String(), now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert leave history: %w", err)
		}
		return nil
	})
}

// SubmitCompOffRequest stores the request with its days, atomically.
func (s *Store) SubmitCompOffRequest(ctx context.Context, employeeID string, req calendar.CompOffRequest) error {
	if err := checkDates(req.Dates); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		id := uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO comp_off_requests (id, employee_id, description, created_at)
			VALUES (?, ?, ?, ?)`,
			id, employeeID, req.Description, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("failed to insert comp-off request: %w", err)
		}
		return insertDays(ctx, tx, "comp_off_request_days", id, req.Dates)
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func insertDays(ctx context.Context, db execer, table, requestID string, dates []calendar.DateShift) error {
	query := "INSERT INTO " + table + " (request_id, date, shift_type) VALUES (?, ?, ?)"
	for _, d := range dates {
		if _, err := db.ExecContext(ctx, query, requestID, d.Date.String(), string(d.Shift)); err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("duplicate date %s in request: %w", d.Date, calendar.ErrValidation)
			}
			return fmt.Errorf("failed to insert request day: %w", err)
		}
	}
	return nil
}

func checkDates(dates []calendar.DateShift) error {
	if len(dates) == 0 {
		return fmt.Errorf("request has no dates: %w", calendar.ErrValidation)
	}
	for _, d := range dates {
		if !d.Date.Valid() {
			return fmt.Errorf("request contains an Invalid Date: %w", calendar.ErrValidation)
		}
	}
	return nil
}

// =============================================================================
// SUBMITTED REQUESTS (admin view)
// =============================================================================

// SubmittedRequest is a stored leave or comp-off request.
type SubmittedRequest struct {
	ID         string
	EmployeeID string
	Kind       calendar.RequestKind
	Text       string // reason or description
	Dates      []calendar.DateShift
	CreatedAt  time.Time
}

// ListRequests returns every submitted request of an employee, oldest first.
func (s *Store) ListRequests(ctx context.Context, employeeID string) ([]SubmittedRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT r.id, 'leave', r.reason, r.created_at, d.date, d.shift_type
		FROM leave_requests r JOIN leave_request_days d ON d.request_id = r.id
		WHERE r.employee_id = ?
		UNION ALL
		SELECT r.id, 'comp_off', r.description, r.created_at, d.date, d.shift_type
		FROM comp_off_requests r JOIN comp_off_request_days d ON d.request_id = r.id
		WHERE r.employee_id = ?
		ORDER BY 4 ASC, 1 ASC, 5 ASC
	`

	rows, err := s.db.QueryContext(ctx, query, employeeID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var out []SubmittedRequest
	for rows.Next() {
		var id, kind, text, createdAt, dateStr, shift string
		if err := rows.Scan(&id, &kind, &text, &createdAt, &dateStr, &shift); err != nil {
			return nil, err
		}
		entry := calendar.DateShift{Date: calendar.ParseDateLenient(dateStr), Shift: calendar.ShiftType(shift)}
		if n := len(out); n > 0 && out[n-1].ID == id {
			out[n-1].Dates = append(out[n-1].Dates, entry)
			continue
		}
		created, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt created_at on request %s: %w", id, err)
		}
		out = append(out, SubmittedRequest{
			ID:         id,
			EmployeeID: employeeID,
			Kind:       calendar.RequestKind(kind),
			Text:       text,
			Dates:      []calendar.DateShift{entry},
			CreatedAt:  created,
		})
	}
	return out, rows.Err()
}

// =============================================================================
// READ-MODEL WRITES - Populate the collaborator's side
// =============================================================================

// SaveAttendanceDay upserts one day.
func (s *Store) SaveAttendanceDay(ctx context.Context, employeeID string, day calendar.AttendanceDay) error {
	if !day.Date.Valid() {
		return calendar.ErrInvalidDate
	}
	if _, err := calendar.ParseStatus(string(day.Status)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var minutes sql.NullInt64
	if day.TotalHours != nil {
		minutes = sql.NullInt64{Int64: int64(*day.TotalHours / time.Minute), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_days (employee_id, date, status, check_in, check_out, total_minutes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			status = excluded.status,
			check_in = excluded.check_in,
			check_out = excluded.check_out,
			total_minutes = excluded.total_minutes,
			updated_at = excluded.updated_at`,
		employeeID, day.Date.String(), string(day.Status),
		formatTime(day.CheckIn), formatTime(day.CheckOut), minutes,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// SaveLeaveBalance upserts the employee's balance.
func (s *Store) SaveLeaveBalance(ctx context.Context, employeeID string, b calendar.LeaveBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_balances (employee_id, leave_carried_forward, earned_leave,
			comp_off_carried_forward, comp_off_earned, leaves_taken, new_leave_balance, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			leave_carried_forward = excluded.leave_carried_forward,
			earned_leave = excluded.earned_leave,
			comp_off_carried_forward = excluded.comp_off_carried_forward,
			comp_off_earned = excluded.comp_off_earned,
			leaves_taken = excluded.leaves_taken,
			new_leave_balance = excluded.new_leave_balance,
			updated_at = excluded.updated_at`,
		employeeID,
		b.LeaveCarriedForward.String(), b.EarnedLeave.String(),
		b.CompOffCarriedForward.String(), b.CompOffEarned.String(),
		b.LeavesTaken.String(), b.NewLeaveBalance.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// SaveHoliday inserts a holiday; saving the same date and name twice is a no-op.
func (s *Store) SaveHoliday(ctx context.Context, h calendar.Holiday) error {
	if !h.Date.Valid() {
		return calendar.ErrInvalidDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date, name) DO NOTHING`,
		uuid.NewString(), h.Date.String(), h.Name, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// SaveLeaveRecord upserts one leave history row.
func (s *Store) SaveLeaveRecord(ctx context.Context, employeeID string, r calendar.LeaveRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_history (id, employee_id, leave_type, start_date, end_date, reason, status, requested_days, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			leave_type = excluded.leave_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			reason = excluded.reason,
			status = excluded.status,
			requested_days = excluded.requested_days`,
		r.ID, employeeID, r.LeaveType, r.StartDate.String(), r.EndDate.String(),
		nullString(r.Reason), string(r.Status), nullDecimal(r.RequestedDays),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"leave_request_days", "leave_requests",
		"comp_off_request_days", "comp_off_requests",
		"leave_history", "leave_balances", "attendance_days", "holidays",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDecimal(d decimal.Decimal) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

func formatTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY"))
}
