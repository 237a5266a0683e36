package formatter

import (
	"strconv"

	"github.com/alexanderramin/opsched/internal/scheduler"
)

// KindStats pairs a label with its on-time counts for FormatOnTime.
type KindStats struct {
	Kind  string
	Stats scheduler.OnTimeStats
}

// FormatOnTime renders per-kind on-time counts followed by the total row.
func FormatOnTime(assignee string, kinds []KindStats, total scheduler.OnTimeStats) string {
	rows := make([][]string, 0, len(kinds)+1)
	for _, k := range kinds {
		rows = append(rows, statsRow(k.Kind, k.Stats))
	}
	rows = append(rows, statsRow(Bold("total"), total))
	return Header("on-time for "+assignee) + "\n" +
		RenderTable([]string{"KIND", "ON TIME", "LATE", "EXCUSED", "OPEN", "RATE"}, rows)
}

func statsRow(label string, s scheduler.OnTimeStats) []string {
	rate := Dim("n/a")
	if s.Denominator() > 0 {
		rate = rateStyled(s.Rate())
	}
	return []string{
		label,
		strconv.Itoa(s.OnTime),
		strconv.Itoa(s.Late),
		strconv.Itoa(s.Excused),
		strconv.Itoa(s.Open),
		rate,
	}
}

func rateStyled(rate float64) string {
	text := Percent(rate)
	switch {
	case rate >= 0.9:
		return StyleGreen.Render(text)
	case rate >= 0.7:
		return StyleYellow.Render(text)
	default:
		return StyleRed.Render(text)
	}
}
