package calendar

// SummaryStatuses are the statuses that get a summary card, in display order.
// Holiday, Weekend and No Data are not counted.
var SummaryStatuses = []Status{
	StatusPresent, StatusLate, StatusOnLeave, StatusHalfDay, StatusAbsent, StatusMissedPunch,
}

// Summary maps each summary status to its count in the month.
type Summary map[Status]int

// Summarize counts the days in one pass. Every summary status is present,
// zero when it does not occur.
func Summarize(days []AttendanceDay) Summary {
	s := make(Summary, len(SummaryStatuses))
	for _, st := range SummaryStatuses {
		s[st] = 0
	}
	for _, d := range days {
		if _, counted := s[d.Status]; counted {
			s[d.Status]++
		}
	}
	return s
}

// SummaryCard is one entry of the ordered summary.
type SummaryCard struct {
	Status Status
	Count  int
}

// Ordered returns the cards in display order.
func (s Summary) Ordered() []SummaryCard {
	out := make([]SummaryCard, len(SummaryStatuses))
	for i, st := range SummaryStatuses {
		out[i] = SummaryCard{Status: st, Count: s[st]}
	}
	return out
}

// Total is the number of counted days.
func (s Summary) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}
