package testutil

import (
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/scheduler"
	"github.com/google/uuid"
)

// Now is the fixed clock used by fixtures: Monday 2024-03-04 09:00 UTC.
var Now = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

// Day parses a YYYY-MM-DD literal and panics on malformed input.
func Day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Checklist template options
type ChecklistOption func(*domain.ChecklistTemplate)

func WithWeeklyDays(days ...time.Weekday) ChecklistOption {
	return func(t *domain.ChecklistTemplate) {
		t.Pattern.Frequency = domain.FrequencyWeekly
		t.Pattern.WeeklyDays = days
	}
}

func WithMonthlyDates(dates ...int) ChecklistOption {
	return func(t *domain.ChecklistTemplate) {
		t.Pattern.Frequency = domain.FrequencyMonthly
		t.Pattern.MonthlyDates = dates
	}
}

func WithRange(start, end string) ChecklistOption {
	return func(t *domain.ChecklistTemplate) {
		t.Pattern.Start = Day(start)
		t.Pattern.End = Day(end)
	}
}

func WithItems(labels ...string) ChecklistOption {
	return func(t *domain.ChecklistTemplate) {
		t.Items = make([]domain.ChecklistItemSpec, len(labels))
		for i, l := range labels {
			t.Items[i] = domain.ChecklistItemSpec{Label: l}
		}
	}
}

// NewTestChecklistTemplate returns a daily template for the first week of
// March 2024 with two items.
func NewTestChecklistTemplate(name, assignee string, opts ...ChecklistOption) *domain.ChecklistTemplate {
	t := &domain.ChecklistTemplate{
		ID:         uuid.New().String(),
		Name:       name,
		AssignedTo: assignee,
		Pattern: domain.RecurrencePattern{
			Frequency: domain.FrequencyDaily,
			Start:     Day("2024-03-04"),
			End:       Day("2024-03-08"),
		},
		Items: []domain.ChecklistItemSpec{
			{Label: "Unlock doors"},
			{Label: "Count till", Description: "Record opening float"},
		},
		CreatedAt: Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTestWorkflowTemplate builds a template with one step per duration,
// assigned round-robin to the given people (or "ops" when none are given).
func NewTestWorkflowTemplate(name string, durations []domain.DurationSpec, who ...string) *domain.WorkflowTemplate {
	if len(who) == 0 {
		who = []string{"ops"}
	}
	t := &domain.WorkflowTemplate{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: Now,
	}
	for i, d := range durations {
		t.Steps = append(t.Steps, domain.StepSpec{
			What:     fmt.Sprintf("Step %d", i),
			Who:      who[i%len(who)],
			How:      "as documented",
			Duration: d,
		})
	}
	return t
}

// Task options
type TaskOption func(*domain.Task)

func WithTaskCompleted(day string) TaskOption {
	return func(t *domain.Task) {
		d := Day(day)
		t.CompletedAt = &d
	}
}

func WithTaskOnHold() TaskOption {
	return func(t *domain.Task) {
		t.IsOnHold = true
	}
}

func NewTestTask(title, assignee, due string, opts ...TaskOption) *domain.Task {
	t := &domain.Task{
		ID:         uuid.New().String(),
		Title:      title,
		AssignedTo: assignee,
		DueDate:    Day(due),
		CreatedAt:  Now,
		UpdatedAt:  Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Objection options
type ObjectionOption func(*domain.Objection)

func WithRequestedDate(day string) ObjectionOption {
	return func(o *domain.Objection) {
		d := Day(day)
		o.RequestedDate = &d
	}
}

func WithObjectionType(t domain.ObjectionType) ObjectionOption {
	return func(o *domain.Objection) {
		o.Type = t
	}
}

func WithTargetKind(k domain.TargetKind) ObjectionOption {
	return func(o *domain.Objection) {
		o.TargetKind = k
	}
}

// NewTestObjection returns a pending hold objection on a task.
func NewTestObjection(targetID string, opts ...ObjectionOption) *domain.Objection {
	o := &domain.Objection{
		ID:          uuid.New().String(),
		TargetID:    targetID,
		TargetKind:  domain.TargetTask,
		Type:        domain.ObjectionHold,
		Remarks:     "waiting on supplier",
		RequestedBy: "sam",
		RequestedAt: Now,
		Status:      domain.ObjectionPending,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewTestProject starts a planned project from tmpl.
func NewTestProject(tmpl *domain.WorkflowTemplate, start string) *domain.Project {
	p, err := scheduler.StartProject(tmpl, tmpl.Name+" project", Day(start), Now)
	if err != nil {
		panic(err)
	}
	return p
}

// NewTestOccurrence materializes one unchecked occurrence of tmpl due on due.
func NewTestOccurrence(tmpl *domain.ChecklistTemplate, due time.Time) domain.ChecklistOccurrence {
	return scheduler.MaterializeOccurrence(tmpl.ID, tmpl.AssignedTo, due, tmpl.Items, Now)
}
