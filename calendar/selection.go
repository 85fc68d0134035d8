/*
selection.go - Date selection state machine

PURPOSE:
  Governs which dates are "active" on the calendar. Future dates are
  multi-selected to build a leave or comp-off request; a past (or today's)
  date is opened alone in a detail view. The two modes are mutually
  exclusive.

STATES:
  Empty        nothing selected
  MultiSelect  one or more strictly-future dates (a set)
  DetailView   exactly one past-or-today day under inspection

TRANSITIONS (HandleDateClick):
  ┌──────────────┬───────────────────────┬─────────────────────────────────┐
  │ clicked date │ from Empty/Detail     │ from MultiSelect                │
  ├──────────────┼───────────────────────┼─────────────────────────────────┤
  │ <= today     │ DetailView(day)       │ DetailView(day) + clear hook    │
  │ > today      │ MultiSelect{date}     │ toggle date (Empty if last out) │
  └──────────────┴───────────────────────┴─────────────────────────────────┘
  ClearSelection always goes to Empty.

Selection values are immutable. Every transition builds a new value, so a
draft seeded from a Selection never sees later clicks.

SEE ALSO:
  - session.go: Owns the controller
  - request.go: Seeds drafts from Selection.Dates()
*/
package calendar

import "sort"

// =============================================================================
// SELECTION - Tagged variant
// =============================================================================

type SelectionKind int

const (
	SelectionEmpty SelectionKind = iota
	SelectionMulti
	SelectionDetail
)

func (k SelectionKind) String() string {
	switch k {
	case SelectionMulti:
		return "multi_select"
	case SelectionDetail:
		return "detail_view"
	default:
		return "empty"
	}
}

// Selection is exactly one of Empty, MultiSelect(dates) or DetailView(day).
type Selection struct {
	kind   SelectionKind
	dates  map[Date]struct{}
	detail AttendanceDay
}

// EmptySelection is the Empty variant.
func EmptySelection() Selection { return Selection{kind: SelectionEmpty} }

// MultiSelect builds the MultiSelect variant. Duplicates collapse; no dates
// yields Empty.
func MultiSelect(dates ...Date) Selection {
	if len(dates) == 0 {
		return EmptySelection()
	}
	set := make(map[Date]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return Selection{kind: SelectionMulti, dates: set}
}

// DetailView builds the DetailView variant.
func DetailView(day AttendanceDay) Selection {
	return Selection{kind: SelectionDetail, detail: day}
}

func (s Selection) Kind() SelectionKind { return s.kind }
func (s Selection) IsEmpty() bool { return s.kind == SelectionEmpty }

// Len is the number of multi-selected dates (0 outside MultiSelect).
func (s Selection) Len() int { return len(s.dates) }

// Contains reports whether d is multi-selected.
func (s Selection) Contains(d Date) bool {
	_, ok := s.dates[d]
	return ok
}

// Dates returns a fresh ascending slice of the multi-selected dates.
func (s Selection) Dates() []Date {
	out := make([]Date, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Detail returns the inspected day when in DetailView.
func (s Selection) Detail() (AttendanceDay, bool) {
	return s.detail, s.kind == SelectionDetail
}

// toggle returns a copy with d added or removed.
func (s Selection) toggle(d Date) Selection {
	dates := make([]Date, 0, len(s.dates)+1)
	for existing := range s.dates {
		if existing != d {
			dates = append(dates, existing)
		}
	}
	if !s.Contains(d) {
		dates = append(dates, d)
	}
	return MultiSelect(dates...)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// SelectionHooks are the callbacks exposed to the hosting view. Either may
// be nil.
type SelectionHooks struct {
	// OnDateClick fires for every future-date toggle.
	OnDateClick func(date Date, status Status)

	// OnClearSelection fires when an active MultiSelect is cleared.
	OnClearSelection func()
}

// SelectionController runs the transition table. It is not safe for
// concurrent use; its owner serialises events.
type SelectionController struct {
	clock Clock
	state Selection
	hooks SelectionHooks
}

func NewSelectionController(clock Clock, hooks SelectionHooks) *SelectionController {
	if clock == nil {
		clock = SystemClock
	}
	return &SelectionController{clock: clock, state: EmptySelection(), hooks: hooks}
}

// State returns the current selection.
func (c *SelectionController) State() Selection { return c.state }

// HandleDateClick applies one click and returns the new state.
func (c *SelectionController) HandleDateClick(day AttendanceDay) Selection {
	today := Today(c.clock)

	if !day.Date.After(today) {
		wasMulti := c.state.kind == SelectionMulti
		c.state = DetailView(day)
		if wasMulti && c.hooks.OnClearSelection != nil {
			c.hooks.OnClearSelection()
		}
		return c.state
	}

	if c.state.kind == SelectionMulti {
		c.state = c.state.toggle(day.Date)
	} else {
		c.state = MultiSelect(day.Date)
	}
	if c.hooks.OnDateClick != nil {
		c.hooks.OnDateClick(day.Date, day.Status)
	}
	return c.state
}

// ClearSelection forces Empty.
func (c *SelectionController) ClearSelection() {
	wasMulti := c.state.kind == SelectionMulti
	c.state = EmptySelection()
	if wasMulti && c.hooks.OnClearSelection != nil {
		c.hooks.OnClearSelection()
	}
}
