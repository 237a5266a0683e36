package scheduler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/robfig/cron/v3"
)

// ExpandRecurrence returns every occurrence date of the pattern, ascending and
// without duplicates, all within [Start, End] inclusive.
//
// Daily and weekly cadences are walked as a midnight cron schedule. Monthly
// dates are built by calendar arithmetic because a cron day-of-month field
// silently skips months that are too short; policy.MonthlyOverflow decides
// between clamping to the month's last day and skipping.
func ExpandRecurrence(p domain.RecurrencePattern, policy Policy) ([]time.Time, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start, end := domain.Day(p.Start), domain.Day(p.End)

	switch p.Frequency {
	case domain.FrequencyDaily, domain.FrequencyWeekly:
		spec := cronSpec(p)
		sched, err := cron.ParseStandard(spec)
		if err != nil {
			return nil, fmt.Errorf("compiling %s cadence %q: %w", p.Frequency, spec, err)
		}
		return walkSchedule(sched, start, end), nil
	default:
		return expandMonthly(uniqueInts(p.MonthlyDates), start, end, policy.overflow()), nil
	}
}

// cronSpec renders a daily or weekly pattern as a standard five-field cron
// expression firing at midnight.
func cronSpec(p domain.RecurrencePattern) string {
	if p.Frequency == domain.FrequencyDaily {
		return "0 0 * * *"
	}
	days := make([]int, 0, len(p.WeeklyDays))
	for _, d := range p.WeeklyDays {
		days = append(days, int(d))
	}
	days = uniqueInts(days)
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return "0 0 * * " + strings.Join(parts, ",")
}

func walkSchedule(sched cron.Schedule, start, end time.Time) []time.Time {
	var out []time.Time
	for t := sched.Next(start.Add(-time.Second)); !t.IsZero() && !t.After(end); t = sched.Next(t) {
		out = append(out, domain.Day(t))
	}
	return out
}

func expandMonthly(days []int, start, end time.Time, overflow MonthlyOverflow) []time.Time {
	var out []time.Time
	year, month := start.Year(), start.Month()
	for {
		first := domain.Date(year, month, 1)
		if first.After(end) {
			break
		}
		dim := domain.DaysInMonth(year, month)
		for _, d := range days {
			if d > dim {
				if overflow == OverflowSkip {
					continue
				}
				d = dim
			}
			date := domain.Date(year, month, d)
			if date.Before(start) || date.After(end) {
				continue
			}
			// Clamping maps several selectors onto the last day; days is
			// sorted so any repeat is adjacent.
			if n := len(out); n > 0 && out[n-1].Equal(date) {
				continue
			}
			out = append(out, date)
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return out
}

func uniqueInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
