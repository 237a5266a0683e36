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
)

type projectService struct {
	projects  repository.ProjectRepo
	templates repository.WorkflowTemplateRepo
	uow       db.UnitOfWork
	sched     Scheduling
	observer  UseCaseObserver
	now       func() time.Time
}

func NewProjectService(
	projects repository.ProjectRepo,
	templates repository.WorkflowTemplateRepo,
	uow db.UnitOfWork,
	sched Scheduling,
	observers ...UseCaseObserver,
) ProjectService {
	return &projectService{
		projects:  projects,
		templates: templates,
		uow:       uow,
		sched:     sched,
		observer:  useCaseObserverOrNoop(observers),
		now:       utcNow,
	}
}

func (s *projectService) StartProject(ctx context.Context, templateID, name string, start time.Time) (p *domain.Project, err error) {
	startedAt := time.Now()
	fields := map[string]any{"template": templateID}
	defer observe(ctx, s.observer, "start-project", startedAt, fields, &err)

	tmpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = tmpl.Name
	}
	p, err = scheduler.StartProject(tmpl, name, start, s.now())
	if err != nil {
		return nil, fmt.Errorf("starting project from %s: %w", tmpl.Name, err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteProjectRepo(tx).Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	fields["project_id"] = p.ID
	fields["step_count"] = len(p.Steps)
	return p, nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) List(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}

func (s *projectService) CompleteStep(ctx context.Context, stepID string, at time.Time) (change *StepChange, err error) {
	startedAt := time.Now()
	fields := map[string]any{"step_id": stepID}
	defer observe(ctx, s.observer, "complete-step", startedAt, fields, &err)

	change, err = s.mutateStep(ctx, stepID, func(p *domain.Project, pos int) ([]domain.WorkflowStep, []int, error) {
		return scheduler.CompleteStep(p.StartDate, p.Steps, pos, at, s.sched.Policy)
	})
	if change != nil {
		fields["changed"] = len(change.Changed)
	}
	return change, err
}

func (s *projectService) SupplyDueDate(ctx context.Context, stepID string, due time.Time) (change *StepChange, err error) {
	startedAt := time.Now()
	fields := map[string]any{"step_id": stepID, "due": due.Format(domain.DateLayout)}
	defer observe(ctx, s.observer, "supply-due-date", startedAt, fields, &err)

	return s.mutateStep(ctx, stepID, func(p *domain.Project, pos int) ([]domain.WorkflowStep, []int, error) {
		return scheduler.SupplyDueDate(p.StartDate, p.Steps, pos, due, s.sched.Policy)
	})
}

func (s *projectService) ResumeStep(ctx context.Context, stepID string) (change *StepChange, err error) {
	startedAt := time.Now()
	fields := map[string]any{"step_id": stepID}
	defer observe(ctx, s.observer, "resume-step", startedAt, fields, &err)

	now := s.now()
	return s.mutateStep(ctx, stepID, func(p *domain.Project, pos int) ([]domain.WorkflowStep, []int, error) {
		return scheduler.ResumeChain(p.StartDate, p.Steps, pos, now, s.sched.Policy)
	})
}

func (s *projectService) mutateStep(ctx context.Context, stepID string, fn func(p *domain.Project, pos int) ([]domain.WorkflowStep, []int, error)) (*StepChange, error) {
	projectID, err := projectOfStep(ctx, s.projects, stepID)
	if err != nil {
		return nil, err
	}
	return updateChain(ctx, s.uow, s.sched, projectID, s.now(), func(_ context.Context, _ db.DBTX, p *domain.Project) ([]domain.WorkflowStep, []int, error) {
		pos, err := p.StepPosition(stepID)
		if err != nil {
			return nil, nil, err
		}
		return fn(p, pos)
	})
}
