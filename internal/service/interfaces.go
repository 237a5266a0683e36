package service

import (
	"context"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/scheduler"
)

type ChecklistService interface {
	// CreateTemplate validates the recurrence pattern, stores the template and
	// materializes one occurrence per recurrence date.
	CreateTemplate(ctx context.Context, t *domain.ChecklistTemplate) ([]domain.ChecklistOccurrence, error)
	GetTemplate(ctx context.Context, id string) (*domain.ChecklistTemplate, error)
	ListTemplates(ctx context.Context) ([]*domain.ChecklistTemplate, error)
	ListOccurrences(ctx context.Context, templateID string) ([]*domain.ChecklistOccurrence, error)
	GetOccurrence(ctx context.Context, id string) (*domain.ChecklistOccurrence, error)
	ListAssigned(ctx context.Context, assignee string, from, to *time.Time) ([]*domain.ChecklistOccurrence, error)
	CheckItem(ctx context.Context, occurrenceID string, position int) (*domain.ChecklistOccurrence, error)
	UncheckItem(ctx context.Context, occurrenceID string, position int) (*domain.ChecklistOccurrence, error)
}

type WorkflowService interface {
	CreateTemplate(ctx context.Context, t *domain.WorkflowTemplate) error
	GetTemplate(ctx context.Context, id string) (*domain.WorkflowTemplate, error)
	ListTemplates(ctx context.Context) ([]*domain.WorkflowTemplate, error)
}

// StepChange is the outcome of a change to a project's step chain: the
// project as persisted and the steps whose schedule moved.
type StepChange struct {
	Project *domain.Project
	Changed []domain.WorkflowStep
}

type ProjectService interface {
	StartProject(ctx context.Context, templateID, name string, start time.Time) (*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	CompleteStep(ctx context.Context, stepID string, at time.Time) (*StepChange, error)
	SupplyDueDate(ctx context.Context, stepID string, due time.Time) (*StepChange, error)
	ResumeStep(ctx context.Context, stepID string) (*StepChange, error)
}

type TaskService interface {
	Create(ctx context.Context, t *domain.Task) error
	// CreateBatch stores all tasks in one transaction or none of them.
	CreateBatch(ctx context.Context, tasks []*domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, assignee string) ([]*domain.Task, error)
	Complete(ctx context.Context, id string, at time.Time) (*domain.Task, error)
	// Resume clears an approved hold so the task can be completed.
	Resume(ctx context.Context, id string) (*domain.Task, error)
}

// Resolution is the outcome of responding to an objection. Exactly one of
// Project and Task is set, matching the objection's target kind.
type Resolution struct {
	Objection    *domain.Objection
	Project      *domain.Project
	Task         *domain.Task
	ChangedSteps []domain.WorkflowStep
}

type ObjectionService interface {
	Raise(ctx context.Context, req scheduler.RaiseRequest) (*domain.Objection, error)
	Respond(ctx context.Context, objectionID string, resp scheduler.RespondRequest) (*Resolution, error)
	GetByID(ctx context.Context, id string) (*domain.Objection, error)
	ListByTarget(ctx context.Context, targetID string) ([]*domain.Objection, error)
	// ListPending returns every objection still awaiting a response, oldest
	// first.
	ListPending(ctx context.Context) ([]*domain.Objection, error)
}

// AssigneeScore breaks an assignee's on-time statistic down by item kind.
type AssigneeScore struct {
	Assignee   string
	Steps      scheduler.OnTimeStats
	Tasks      scheduler.OnTimeStats
	Checklists scheduler.OnTimeStats
	Total      scheduler.OnTimeStats
}

type ScoringService interface {
	OnTime(ctx context.Context, assignee string) (*AssigneeScore, error)
}
