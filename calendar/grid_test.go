package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-calendar/calendar"
)

var march2025 = calendar.MonthRef{Year: 2025, Month: time.March}

// =============================================================================
// GRID LAYOUT
// =============================================================================

func TestBuildGrid_EmptyMarch2025(t *testing.T) {
	// GIVEN: March 2025 (starts on a Saturday) with no attendance records
	// WHEN: Building the grid
	// THEN: 6 leading blanks then 31 No Data cells

	cells := calendar.BuildGrid(march2025, nil)

	require.Len(t, cells, 6+31)
	assert.Equal(t, 6, calendar.LeadingBlanks(cells))
	for i, c := range cells[6:] {
		assert.False(t, c.Blank)
		assert.Equal(t, i+1, c.Day.Date.Day)
		assert.Equal(t, calendar.StatusNoData, c.Day.Status)
	}
}

func TestBuildGrid_LeadingBlanksMatchWeekday(t *testing.T) {
	cases := []struct {
		month  calendar.MonthRef
		blanks int
	}{
		{calendar.MonthRef{Year: 2024, Month: time.September}, 0}, // Sunday
		{calendar.MonthRef{Year: 2025, Month: time.February}, 6},  // Saturday
		{calendar.MonthRef{Year: 2025, Month: time.April}, 2},     // Tuesday
	}
	for _, tc := range cases {
		t.Run(tc.month.String(), func(t *testing.T) {
			cells := calendar.BuildGrid(tc.month, nil)
			assert.Equal(t, tc.blanks, calendar.LeadingBlanks(cells))
			assert.Len(t, cells, tc.blanks+tc.month.Days())
		})
	}
}

func TestBuildGrid_SparseRecordsKeepSuppliedStatus(t *testing.T) {
	// GIVEN: Two supplied records, one of them outside the month
	// WHEN: Building the grid
	// THEN: The in-month record lands on its day, the other is ignored

	days := []calendar.AttendanceDay{
		{Date: date(2025, time.March, 3), Status: calendar.StatusLate},
		{Date: date(2025, time.April, 4), Status: calendar.StatusAbsent},
	}

	cells := calendar.BuildGrid(march2025, days)

	assert.Equal(t, calendar.StatusLate, cells[6+2].Day.Status)
	assert.Equal(t, calendar.StatusNoData, cells[6+3].Day.Status)
	assert.Len(t, days, 2, "input must not be modified")
}

func TestAnnotateHolidays_AttachesNamesOnly(t *testing.T) {
	cells := calendar.BuildGrid(march2025, []calendar.AttendanceDay{
		{Date: date(2025, time.March, 14), Status: calendar.StatusPresent},
	})

	annotated := calendar.AnnotateHolidays(cells, []calendar.Holiday{
		{Name: "Holi", Date: date(2025, time.March, 14)},
	})

	assert.Equal(t, "Holi", annotated[6+13].Holiday)
	assert.Equal(t, calendar.StatusPresent, annotated[6+13].Day.Status)
	assert.Empty(t, cells[6+13].Holiday, "original cells untouched")
}
