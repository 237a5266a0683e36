package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

type ChecklistTemplateRepo interface {
	Create(ctx context.Context, t *domain.ChecklistTemplate) error
	GetByID(ctx context.Context, id string) (*domain.ChecklistTemplate, error)
	List(ctx context.Context) ([]*domain.ChecklistTemplate, error)
}

type OccurrenceRepo interface {
	CreateBatch(ctx context.Context, occs []domain.ChecklistOccurrence) error
	GetByID(ctx context.Context, id string) (*domain.ChecklistOccurrence, error)
	ListByTemplate(ctx context.Context, templateID string) ([]*domain.ChecklistOccurrence, error)
	// ListByAssignee returns the assignee's occurrences due within [from, to];
	// a nil bound is open.
	ListByAssignee(ctx context.Context, assignee string, from, to *time.Time) ([]*domain.ChecklistOccurrence, error)
	UpdateItems(ctx context.Context, o *domain.ChecklistOccurrence) error
}

type WorkflowTemplateRepo interface {
	Create(ctx context.Context, t *domain.WorkflowTemplate) error
	GetByID(ctx context.Context, id string) (*domain.WorkflowTemplate, error)
	List(ctx context.Context) ([]*domain.WorkflowTemplate, error)
}

type ProjectRepo interface {
	// Create inserts the project and its whole step chain.
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByStepID(ctx context.Context, stepID string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	// SaveSteps persists the schedule fields of every step if the stored
	// version still equals p.Version, then bumps it. A mismatch returns
	// ErrStaleVersion and writes nothing.
	SaveSteps(ctx context.Context, p *domain.Project) error
	ListStepsByAssignee(ctx context.Context, who string) ([]domain.WorkflowStep, error)
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, assignee string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
}

type ObjectionRepo interface {
	// Create inserts a pending objection. A second pending objection for the
	// same target is rejected with a *domain.ConflictError.
	Create(ctx context.Context, o *domain.Objection) error
	GetByID(ctx context.Context, id string) (*domain.Objection, error)
	// GetPendingByTarget returns nil without error when the target has no
	// pending objection.
	GetPendingByTarget(ctx context.Context, targetID string) (*domain.Objection, error)
	ListByTarget(ctx context.Context, targetID string) ([]*domain.Objection, error)
	ListPending(ctx context.Context) ([]*domain.Objection, error)
	// Respond stores the response fields only while the row is still
	// pending; otherwise it returns a *domain.ConflictError.
	Respond(ctx context.Context, o *domain.Objection) error
}
