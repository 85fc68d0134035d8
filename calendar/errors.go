/*
errors.go - Error types for the calendar core

PURPOSE:
  All error types in one place. The HTTP layer maps them to status codes;
  the session uses them to decide whether a draft survives.

ERROR CATEGORIES:
  1. Validation errors - required field empty, bad shift type, invalid date.
     Caught locally, submission refused.
  2. Stale results     - a fetch or submit completed after the view moved on.
     Ignored; nothing is mutated.
  3. Submit failures   - the persistence collaborator rejected or failed the
     write. The draft is kept so the user can retry.

The balance-exceedance warning is NOT an error. See projection.go.

SEE ALSO:
  - request.go: Produces ValidationError
  - session.go: Produces SubmitError and ErrStaleResult
*/
package calendar

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidDate is returned when a date value cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidStatus is returned for a status outside the fixed vocabulary.
	ErrInvalidStatus = errors.New("invalid attendance status")

	// ErrStaleResult is returned when an async result arrives for a fetch or
	// submit that has since been superseded.
	ErrStaleResult = errors.New("stale result ignored")

	// ErrDayOutsideMonth is returned when a click targets a date that is not
	// in the displayed month.
	ErrDayOutsideMonth = errors.New("date outside displayed month")

	// ErrNoDraft is returned when a draft operation runs with no request open.
	ErrNoDraft = errors.New("no request draft open")

	// ErrDateNotInDraft is returned when a shift is set for a date the draft
	// was not seeded with.
	ErrDateNotInDraft = errors.New("date not in draft")

	// ErrSubmitFailed is wrapped by every SubmitError.
	ErrSubmitFailed = errors.New("request submission failed")

	// ErrSubmitInFlight is returned when a submit starts while another for
	// the same draft has not completed.
	ErrSubmitInFlight = errors.New("submission already in progress")

	// ErrFetchFailed is wrapped by every FetchError.
	ErrFetchFailed = errors.New("month fetch failed")

	// ErrNotFound is returned by collaborators for missing records.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldIssue is one problem with one input field.
type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every issue found in a draft.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.Field + ": " + issue.Reason
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) add(field, reason string) {
	e.Issues = append(e.Issues, FieldIssue{Field: field, Reason: reason})
}

// orNil returns nil when no issue was recorded.
func (e *ValidationError) orNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}

// InvalidDateError records the raw input that failed to parse.
type InvalidDateError struct {
	Input string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q", e.Input)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// SubmitError wraps a persistence failure. Message is what the user sees.
type SubmitError struct {
	Kind    RequestKind
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("%s request failed: %s", e.Kind, e.Message)
}

func (e *SubmitError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSubmitFailed}
	}
	return []error{ErrSubmitFailed, e.Err}
}

// FetchError wraps a read-model failure for one month.
type FetchError struct {
	Month MonthRef
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not load %s: %v", e.Month, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrDateNotInDraft) ||
		errors.Is(err, ErrDayOutsideMonth) ||
		errors.Is(err, ErrNoDraft)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
