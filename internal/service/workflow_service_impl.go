package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/repository"
	"github.com/google/uuid"
)

type workflowService struct {
	templates repository.WorkflowTemplateRepo
	uow       db.UnitOfWork
	now       func() time.Time
}

func NewWorkflowService(templates repository.WorkflowTemplateRepo, uow db.UnitOfWork) WorkflowService {
	return &workflowService{templates: templates, uow: uow, now: utcNow}
}

func (s *workflowService) CreateTemplate(ctx context.Context, t *domain.WorkflowTemplate) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("workflow template name is required")
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("workflow template %q has no steps", t.Name)
	}
	for i, step := range t.Steps {
		if strings.TrimSpace(step.What) == "" {
			return fmt.Errorf("workflow template %q step %d: what is required", t.Name, i)
		}
		if err := step.Duration.Validate(); err != nil {
			return fmt.Errorf("workflow template %q step %d: %w", t.Name, i, err)
		}
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.CreatedAt = s.now()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteWorkflowTemplateRepo(tx).Create(ctx, t)
	})
}

func (s *workflowService) GetTemplate(ctx context.Context, id string) (*domain.WorkflowTemplate, error) {
	return s.templates.GetByID(ctx, id)
}

func (s *workflowService) ListTemplates(ctx context.Context) ([]*domain.WorkflowTemplate, error) {
	return s.templates.List(ctx)
}
