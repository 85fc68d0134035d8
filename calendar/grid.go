package calendar

// =============================================================================
// CALENDAR GRID - Month layout with leading blanks
// =============================================================================

// Cell is one grid position. Blank cells pad the first week.
type Cell struct {
	Blank   bool
	Day     AttendanceDay
	Holiday string
}

// BuildGrid lays out month as weekday(day 1) blank cells followed by one
// cell per day. Weeks start on Sunday (index 0). Days missing from the
// sparse input render as No Data. days is not modified.
func BuildGrid(month MonthRef, days []AttendanceDay) []Cell {
	lookup := MonthView{Year: month.Year, Month: month.Month, Days: days}.ByDay()

	offset := int(month.First().Weekday())
	total := month.Days()

	cells := make([]Cell, 0, offset+total)
	for i := 0; i < offset; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for d := 1; d <= total; d++ {
		day, ok := lookup[d]
		if !ok {
			day = NoDataDay(Date{Year: month.Year, Month: month.Month, Day: d})
		}
		cells = append(cells, Cell{Day: day})
	}
	return cells
}

// AnnotateHolidays returns a copy of cells with holiday names attached.
// Statuses are left as supplied.
func AnnotateHolidays(cells []Cell, holidays []Holiday) []Cell {
	names := make(map[Date]string, len(holidays))
	for _, h := range holidays {
		names[h.Date] = h.Name
	}
	out := make([]Cell, len(cells))
	for i, c := range cells {
		if !c.Blank {
			c.Holiday = names[c.Day.Date]
		}
		out[i] = c
	}
	return out
}

// LeadingBlanks counts the padding cells at the start of a grid.
func LeadingBlanks(cells []Cell) int {
	n := 0
	for _, c := range cells {
		if !c.Blank {
			break
		}
		n++
	}
	return n
}
