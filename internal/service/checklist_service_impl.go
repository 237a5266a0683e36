package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/repository"
	"github.com/alexanderramin/opsched/internal/scheduler"
	"github.com/google/uuid"
)

type checklistService struct {
	templates   repository.ChecklistTemplateRepo
	occurrences repository.OccurrenceRepo
	uow         db.UnitOfWork
	sched       Scheduling
	observer    UseCaseObserver
	now         func() time.Time
}

func NewChecklistService(
	templates repository.ChecklistTemplateRepo,
	occurrences repository.OccurrenceRepo,
	uow db.UnitOfWork,
	sched Scheduling,
	observers ...UseCaseObserver,
) ChecklistService {
	return &checklistService{
		templates:   templates,
		occurrences: occurrences,
		uow:         uow,
		sched:       sched,
		observer:    useCaseObserverOrNoop(observers),
		now:         utcNow,
	}
}

func (s *checklistService) CreateTemplate(ctx context.Context, t *domain.ChecklistTemplate) (occs []domain.ChecklistOccurrence, err error) {
	startedAt := time.Now()
	fields := map[string]any{"name": t.Name, "frequency": string(t.Pattern.Frequency)}
	defer observe(ctx, s.observer, "create-checklist", startedAt, fields, &err)

	if strings.TrimSpace(t.Name) == "" {
		return nil, fmt.Errorf("checklist template name is required")
	}
	if strings.TrimSpace(t.AssignedTo) == "" {
		return nil, fmt.Errorf("checklist template %q needs an assignee", t.Name)
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := s.now()
	t.CreatedAt = now
	t.Pattern.Start = domain.Day(t.Pattern.Start)
	t.Pattern.End = domain.Day(t.Pattern.End)

	occs, err = scheduler.MaterializeTemplate(t, s.sched.Policy, now)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteChecklistTemplateRepo(tx).Create(ctx, t); err != nil {
			return err
		}
		return repository.NewSQLiteOccurrenceRepo(tx).CreateBatch(ctx, occs)
	})
	if err != nil {
		return nil, err
	}
	fields["template_id"] = t.ID
	fields["occurrences"] = len(occs)
	return occs, nil
}

func (s *checklistService) GetTemplate(ctx context.Context, id string) (*domain.ChecklistTemplate, error) {
	return s.templates.GetByID(ctx, id)
}

func (s *checklistService) ListTemplates(ctx context.Context) ([]*domain.ChecklistTemplate, error) {
	return s.templates.List(ctx)
}

func (s *checklistService) ListOccurrences(ctx context.Context, templateID string) ([]*domain.ChecklistOccurrence, error) {
	return s.occurrences.ListByTemplate(ctx, templateID)
}

func (s *checklistService) GetOccurrence(ctx context.Context, id string) (*domain.ChecklistOccurrence, error) {
	return s.occurrences.GetByID(ctx, id)
}

func (s *checklistService) ListAssigned(ctx context.Context, assignee string, from, to *time.Time) ([]*domain.ChecklistOccurrence, error) {
	return s.occurrences.ListByAssignee(ctx, assignee, from, to)
}

func (s *checklistService) CheckItem(ctx context.Context, occurrenceID string, position int) (*domain.ChecklistOccurrence, error) {
	return s.updateItem(ctx, occurrenceID, func(o *domain.ChecklistOccurrence, now time.Time) error {
		return o.CheckItem(position, now)
	})
}

func (s *checklistService) UncheckItem(ctx context.Context, occurrenceID string, position int) (*domain.ChecklistOccurrence, error) {
	return s.updateItem(ctx, occurrenceID, func(o *domain.ChecklistOccurrence, now time.Time) error {
		return o.UncheckItem(position, now)
	})
}

func (s *checklistService) updateItem(ctx context.Context, occurrenceID string, fn func(o *domain.ChecklistOccurrence, now time.Time) error) (*domain.ChecklistOccurrence, error) {
	var out *domain.ChecklistOccurrence
	now := s.now()
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		occurrences := repository.NewSQLiteOccurrenceRepo(tx)
		o, err := occurrences.GetByID(ctx, occurrenceID)
		if err != nil {
			return err
		}
		if err := fn(o, now); err != nil {
			return err
		}
		if err := occurrences.UpdateItems(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
