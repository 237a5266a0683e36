package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/scheduler"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func dayPtr(s string) *time.Time {
	d := day(s)
	return &d
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"A", "LONG HEADER"}, [][]string{
		{"wide cell", "x"},
		{StyleRed.Render("red"), "y"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)

	col := strings.Index(lines[0], "LONG HEADER")
	assert.Equal(t, col, strings.Index(lines[2], "x"))
	assert.Equal(t, lipgloss.Width(lines[2]), lipgloss.Width(lines[3]))

	assert.Empty(t, RenderTable(nil, nil))
}

func TestFormatSteps_ShowsStateAndOverride(t *testing.T) {
	steps := []domain.WorkflowStep{
		{ID: "aaaaaaaa-1111", StepIndex: 0, What: "Quote", Who: "kim", Duration: domain.Fixed(2),
			PlannedDueDate: dayPtr("2024-03-03"), ActualCompletionDate: dayPtr("2024-03-03")},
		{ID: "bbbbbbbb-2222", StepIndex: 1, What: "Approve", Who: "lee", Duration: domain.Dependent(3),
			PlannedDueDate: dayPtr("2024-03-09"), DueOverridden: true},
		{ID: "cccccccc-3333", StepIndex: 2, What: "Deliver", Who: "kim", Duration: domain.AskOnCompletion()},
		{ID: "dddddddd-4444", StepIndex: 3, What: "Install", Who: "kim", Duration: domain.Fixed(1), IsOnHold: true},
	}
	out := FormatSteps(steps, day("2024-03-04"))

	assert.Contains(t, out, "aaaaaaaa")
	assert.NotContains(t, out, "aaaaaaaa-1111")
	assert.Contains(t, out, "✔ done")
	assert.Contains(t, out, "2024-03-09 *")
	assert.Contains(t, out, "ask_on_completion")
	assert.Contains(t, out, "awaiting date")
	assert.Contains(t, out, "on hold")
}

func TestFormatProjectList(t *testing.T) {
	p := &domain.Project{ID: "12345678-aaaa", Name: "Office move", StartDate: day("2024-03-01"), Version: 3,
		Steps: []domain.WorkflowStep{{ActualCompletionDate: dayPtr("2024-03-02")}, {}}}
	out := FormatProjectList([]*domain.Project{p})
	assert.Contains(t, out, "12345678")
	assert.Contains(t, out, "Office move")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "v3")
}

func TestDescribePattern(t *testing.T) {
	assert.Equal(t, "daily", DescribePattern(domain.RecurrencePattern{Frequency: domain.FrequencyDaily}))
	assert.Equal(t, "weekly Mon,Thu", DescribePattern(domain.RecurrencePattern{
		Frequency: domain.FrequencyWeekly, WeeklyDays: []time.Weekday{time.Monday, time.Thursday}}))
	assert.Equal(t, "monthly on 1,31", DescribePattern(domain.RecurrencePattern{
		Frequency: domain.FrequencyMonthly, MonthlyDates: []int{1, 31}}))
}

func TestFormatOccurrence_ListsItems(t *testing.T) {
	o := &domain.ChecklistOccurrence{ID: "occ-1", DueDate: day("2024-03-04"), Status: domain.OccurrencePending,
		Items: []domain.OccurrenceItem{
			{Position: 0, Label: "Lock doors", Checked: true},
			{Position: 1, Label: "Alarm", Description: "Code on card"},
		}}
	out := FormatOccurrence(o)
	assert.Contains(t, out, "0 [x] Lock doors")
	assert.Contains(t, out, "1 [ ] Alarm")
	assert.Contains(t, out, "Code on card")
}

func TestFormatObjection_ScoringImpact(t *testing.T) {
	extra := 3
	impact := false
	o := &domain.Objection{
		ID: "objection-1", TargetID: "step-1", TargetKind: domain.TargetStep, Type: domain.ObjectionDateChange,
		RequestedDate: dayPtr("2024-03-12"), ExtraDaysRequested: &extra, RequestedBy: "sam",
		RequestedAt: day("2024-03-04"), Status: domain.ObjectionApproved, RespondedBy: "lee",
		RespondedAt: dayPtr("2024-03-05"), ImpactScoring: &impact,
	}
	out := FormatObjection(o)
	assert.Contains(t, out, "2024-03-12 (+3d)")
	assert.Contains(t, out, "excused from on-time score")
	assert.Contains(t, out, "lee")

	impact = true
	assert.Contains(t, FormatObjection(o), "counts toward on-time score")
}

func TestFormatOnTime(t *testing.T) {
	out := FormatOnTime("kim", []KindStats{
		{Kind: "tasks", Stats: scheduler.OnTimeStats{OnTime: 3, Late: 1}},
		{Kind: "steps"},
	}, scheduler.OnTimeStats{OnTime: 3, Late: 1, Open: 2})

	assert.Contains(t, out, "ON-TIME FOR KIM")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "n/a")
}

func TestDueStyled_TextUnchanged(t *testing.T) {
	today := day("2024-03-04")
	for _, d := range []string{"2024-03-01", "2024-03-08", "2024-04-30"} {
		assert.Contains(t, DueStyled(day(d), today), d)
	}
	assert.Equal(t, "abcdefgh", ShortID("abcdefgh-ijkl"))
	assert.Equal(t, "abc", ShortID("abc"))
}
