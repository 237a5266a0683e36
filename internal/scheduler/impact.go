package scheduler

import (
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

// Outcome is one scored item: a workflow step, a task, or a checklist
// occurrence.
type Outcome struct {
	ItemID      string
	DueDate     *time.Time
	CompletedAt *time.Time
	Excused     bool
}

// OnTimeStats is the on-time completion statistic for a set of outcomes.
// Excused and open items are reported but never enter the rate.
type OnTimeStats struct {
	OnTime  int
	Late    int
	Excused int
	Open    int
}

// Denominator is the number of items the rate is computed over.
func (s OnTimeStats) Denominator() int {
	return s.OnTime + s.Late
}

// Rate returns the on-time fraction in [0, 1], or 0 when nothing is counted.
func (s OnTimeStats) Rate() float64 {
	if s.Denominator() == 0 {
		return 0
	}
	return float64(s.OnTime) / float64(s.Denominator())
}

// ScoreOnTime counts each outcome. An item is on time when it completed on or
// before its due day, compared against whatever due date it carries now, so
// an approved date change is scored against the new date.
func ScoreOnTime(outcomes []Outcome) OnTimeStats {
	var s OnTimeStats
	for _, o := range outcomes {
		switch {
		case o.Excused:
			s.Excused++
		case o.CompletedAt == nil || o.DueDate == nil:
			s.Open++
		case domain.Day(*o.CompletedAt).After(domain.Day(*o.DueDate)):
			s.Late++
		default:
			s.OnTime++
		}
	}
	return s
}

// Excused reports whether an item's objection history removes it from
// scoring. The most recently approved date change decides; other objection
// types never excuse. history is oldest first, so on equal response times
// the later entry wins.
func Excused(history []*domain.Objection) bool {
	var latest *domain.Objection
	for _, o := range history {
		if o.Status != domain.ObjectionApproved || o.Type != domain.ObjectionDateChange || o.RespondedAt == nil {
			continue
		}
		if latest == nil || !o.RespondedAt.Before(*latest.RespondedAt) {
			latest = o
		}
	}
	return latest != nil && latest.Excuses()
}
