package formatter

import (
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

// ShortID returns the first eight characters of an ID, which is enough to
// address it from the command line.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// DateOrDash formats an optional civil date.
func DateOrDash(t *time.Time) string {
	if t == nil {
		return Dim("—")
	}
	return t.Format(domain.DateLayout)
}

// DueStyled colors an open due date by urgency relative to today: red when
// overdue or due within two days, yellow within a week.
func DueStyled(due time.Time, today time.Time) string {
	text := due.Format(domain.DateLayout)
	days := domain.DaysBetween(today, due)
	switch {
	case days <= 2:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// Percent renders a rate in [0, 1] as a whole percentage.
func Percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}
