package domain

import (
	"fmt"
	"time"
)

// RecurrencePattern describes when a checklist template recurs.
// Only the selector set matching Frequency is consulted.
type RecurrencePattern struct {
	Frequency    Frequency
	WeeklyDays   []time.Weekday
	MonthlyDates []int
	Start        time.Time
	End          time.Time
}

// Validate checks the range and the selector set of the active frequency.
func (p RecurrencePattern) Validate() error {
	if Day(p.Start).After(Day(p.End)) {
		return &InvalidRangeError{Start: p.Start, End: p.End}
	}

	switch p.Frequency {
	case FrequencyDaily:
		return nil
	case FrequencyWeekly:
		if len(p.WeeklyDays) == 0 {
			return &InvalidPatternError{Frequency: p.Frequency, Reason: "weekly days are required"}
		}
		for _, d := range p.WeeklyDays {
			if d < time.Sunday || d > time.Saturday {
				return &InvalidPatternError{Frequency: p.Frequency, Reason: fmt.Sprintf("weekday %d outside 0..6", d)}
			}
		}
		return nil
	case FrequencyMonthly:
		if len(p.MonthlyDates) == 0 {
			return &InvalidPatternError{Frequency: p.Frequency, Reason: "monthly dates are required"}
		}
		for _, d := range p.MonthlyDates {
			if d < 1 || d > 31 {
				return &InvalidPatternError{Frequency: p.Frequency, Reason: fmt.Sprintf("day of month %d outside 1..31", d)}
			}
		}
		return nil
	default:
		return &InvalidPatternError{Frequency: p.Frequency, Reason: "unknown frequency"}
	}
}
