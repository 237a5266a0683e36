package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

// DescribePattern summarizes a recurrence pattern, e.g. "weekly Mon,Thu".
func DescribePattern(p domain.RecurrencePattern) string {
	switch p.Frequency {
	case domain.FrequencyWeekly:
		days := make([]string, 0, len(p.WeeklyDays))
		for _, d := range p.WeeklyDays {
			days = append(days, d.String()[:3])
		}
		return "weekly " + strings.Join(days, ",")
	case domain.FrequencyMonthly:
		dates := make([]string, 0, len(p.MonthlyDates))
		for _, d := range p.MonthlyDates {
			dates = append(dates, strconv.Itoa(d))
		}
		return "monthly on " + strings.Join(dates, ",")
	default:
		return string(p.Frequency)
	}
}

func FormatChecklistTemplates(templates []*domain.ChecklistTemplate) string {
	rows := make([][]string, 0, len(templates))
	for _, t := range templates {
		rows = append(rows, []string{
			ShortID(t.ID),
			Bold(t.Name),
			t.AssignedTo,
			DescribePattern(t.Pattern),
			fmt.Sprintf("%s → %s", t.Pattern.Start.Format(domain.DateLayout), t.Pattern.End.Format(domain.DateLayout)),
			strconv.Itoa(len(t.Items)),
		})
	}
	return RenderTable([]string{"ID", "NAME", "ASSIGNEE", "RECURS", "RANGE", "ITEMS"}, rows)
}

// FormatOccurrences lists occurrences with their check progress.
func FormatOccurrences(occs []*domain.ChecklistOccurrence, today time.Time) string {
	rows := make([][]string, 0, len(occs))
	for _, o := range occs {
		checked := 0
		for _, it := range o.Items {
			if it.Checked {
				checked++
			}
		}
		due := o.DueDate.Format(domain.DateLayout)
		if o.Status != domain.OccurrenceCompleted {
			due = DueStyled(o.DueDate, today)
		}
		rows = append(rows, []string{
			ShortID(o.ID),
			due,
			o.AssignedTo,
			fmt.Sprintf("%d/%d", checked, len(o.Items)),
			OccurrenceStatus(o.Status),
		})
	}
	return RenderTable([]string{"ID", "DUE", "ASSIGNEE", "CHECKED", "STATUS"}, rows)
}

// FormatOccurrence renders one occurrence with its items.
func FormatOccurrence(o *domain.ChecklistOccurrence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n", Bold(o.DueDate.Format(domain.DateLayout)), Dim(ShortID(o.ID)), OccurrenceStatus(o.Status))
	for _, it := range o.Items {
		box := "[ ]"
		if it.Checked {
			box = StyleGreen.Render("[x]")
		}
		fmt.Fprintf(&b, "  %d %s %s", it.Position, box, it.Label)
		if it.Description != "" {
			b.WriteString(Dim("  " + it.Description))
		}
		b.WriteString("\n")
	}
	return b.String()
}
