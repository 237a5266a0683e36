package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(domain.DateLayout)
	}
	return out
}

func TestExpandRecurrence_Daily(t *testing.T) {
	p := domain.RecurrencePattern{
		Frequency: domain.FrequencyDaily,
		Start:     day("2024-01-01"),
		End:       day("2024-01-05"),
	}
	dates, err := ExpandRecurrence(p, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}, formatDates(dates))
}

func TestExpandRecurrence_WeeklyMonWedFri(t *testing.T) {
	p := domain.RecurrencePattern{
		Frequency:  domain.FrequencyWeekly,
		WeeklyDays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Start:      day("2024-01-01"),
		End:        day("2024-01-28"),
	}
	dates, err := ExpandRecurrence(p, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, dates, 12)

	for i, d := range dates {
		wd := d.Weekday()
		assert.Contains(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, wd, "date %s", d)
		if i > 0 {
			assert.True(t, d.After(dates[i-1]), "dates must be strictly ascending")
		}
	}
	assert.Equal(t, "2024-01-01", dates[0].Format(domain.DateLayout))
	assert.Equal(t, "2024-01-26", dates[11].Format(domain.DateLayout))
}

func TestExpandRecurrence_WeeklyDuplicateSelectors(t *testing.T) {
	p := domain.RecurrencePattern{
		Frequency:  domain.FrequencyWeekly,
		WeeklyDays: []time.Weekday{time.Sunday, time.Sunday},
		Start:      day("2024-01-01"),
		End:        day("2024-01-14"),
	}
	dates, err := ExpandRecurrence(p, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-07", "2024-01-14"}, formatDates(dates))
}

func TestExpandRecurrence_MonthlyClampsToLastDay(t *testing.T) {
	p := domain.RecurrencePattern{
		Frequency:    domain.FrequencyMonthly,
		MonthlyDates: []int{31},
		Start:        day("2024-02-01"),
		End:          day("2024-02-29"),
	}
	dates, err := ExpandRecurrence(p, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-29"}, formatDates(dates))
}

func TestExpandRecurrence_MonthlySkipPolicy(t *testing.T) {
	p := domain.RecurrencePattern{
		Frequency:    domain.FrequencyMonthly,
		MonthlyDates: []int{31},
		Start:        day("2024-01-01"),
		End:          day("2024-04-30"),
	}
	dates, err := ExpandRecurrence(p, Policy{MonthlyOverflow: OverflowSkip})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-31", "2024-03-31"}, formatDates(dates))
}

func TestExpandRecurrence_MonthlyClampDedupes(t *testing.T) {
	// 30 and 31 both land on April 30 when clamped.
	p := domain.RecurrencePattern{
		Frequency:    domain.FrequencyMonthly,
		MonthlyDates: []int{31, 30, 15},
		Start:        day("2024-04-01"),
		End:          day("2024-05-31"),
	}
	dates, err := ExpandRecurrence(p, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04-15", "2024-04-30", "2024-05-15", "2024-05-30", "2024-05-31"}, formatDates(dates))
}

func TestExpandRecurrence_MonthlyRespectsPartialMonths(t *testing.T) {
	p := domain.RecurrencePattern{
		Frequency:    domain.FrequencyMonthly,
		MonthlyDates: []int{1, 20},
		Start:        day("2023-12-10"),
		End:          day("2024-01-10"),
	}
	dates, err := ExpandRecurrence(p, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-12-20", "2024-01-01"}, formatDates(dates))
}

func TestExpandRecurrence_IgnoresTimeOfDay(t *testing.T) {
	p := domain.RecurrencePattern{
		Frequency: domain.FrequencyDaily,
		Start:     time.Date(2024, 1, 1, 18, 45, 0, 0, time.UTC),
		End:       time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC),
	}
	dates, err := ExpandRecurrence(p, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, formatDates(dates))
}

func TestExpandRecurrence_Errors(t *testing.T) {
	_, err := ExpandRecurrence(domain.RecurrencePattern{
		Frequency: domain.FrequencyDaily,
		Start:     day("2024-02-01"),
		End:       day("2024-01-01"),
	}, DefaultPolicy())
	assert.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = ExpandRecurrence(domain.RecurrencePattern{
		Frequency: domain.FrequencyWeekly,
		Start:     day("2024-01-01"),
		End:       day("2024-01-31"),
	}, DefaultPolicy())
	assert.ErrorIs(t, err, domain.ErrInvalidPattern)

	_, err = ExpandRecurrence(domain.RecurrencePattern{
		Frequency: domain.FrequencyMonthly,
		Start:     day("2024-01-01"),
		End:       day("2024-01-31"),
	}, DefaultPolicy())
	assert.ErrorIs(t, err, domain.ErrInvalidPattern)
}

func TestExpandRecurrence_Deterministic(t *testing.T) {
	p := domain.RecurrencePattern{
		Frequency:    domain.FrequencyMonthly,
		MonthlyDates: []int{5, 29},
		Start:        day("2023-01-01"),
		End:          day("2024-12-31"),
	}
	first, err := ExpandRecurrence(p, DefaultPolicy())
	require.NoError(t, err)
	second, err := ExpandRecurrence(p, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 48)
}

func TestMaterializeTemplate(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	tmpl := &domain.ChecklistTemplate{
		ID:         "tmpl-1",
		AssignedTo: "dana",
		Pattern: domain.RecurrencePattern{
			Frequency: domain.FrequencyDaily,
			Start:     day("2024-01-01"),
			End:       day("2024-01-03"),
		},
		Items: []domain.ChecklistItemSpec{
			{Label: "Unlock", Description: "front door"},
			{Label: "Lights"},
		},
	}

	occs, err := MaterializeTemplate(tmpl, DefaultPolicy(), now)
	require.NoError(t, err)
	require.Len(t, occs, 3)

	ids := map[string]bool{}
	for i, occ := range occs {
		assert.Equal(t, "tmpl-1", occ.TemplateID)
		assert.Equal(t, "dana", occ.AssignedTo)
		assert.Equal(t, domain.OccurrencePending, occ.Status)
		assert.Equal(t, day("2024-01-01").AddDate(0, 0, i), occ.DueDate)
		require.Len(t, occ.Items, 2)
		assert.Equal(t, "Unlock", occ.Items[0].Label)
		assert.Equal(t, "Lights", occ.Items[1].Label)
		for _, it := range occ.Items {
			assert.False(t, it.Checked)
			assert.Nil(t, it.CheckedAt)
		}
		ids[occ.ID] = true
	}
	assert.Len(t, ids, 3, "each occurrence gets its own ID")

	// Item state is independent per occurrence.
	require.NoError(t, occs[0].CheckItem(0, now))
	assert.False(t, occs[1].Items[0].Checked)
}
