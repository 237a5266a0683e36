package scheduler

import (
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/google/uuid"
)

// StartProject instantiates a workflow template as a new project and plans
// its step chain from start.
func StartProject(tmpl *domain.WorkflowTemplate, name string, start, now time.Time) (*domain.Project, error) {
	if len(tmpl.Steps) == 0 {
		return nil, fmt.Errorf("workflow template %s has no steps", tmpl.ID)
	}
	p := &domain.Project{
		ID:         uuid.New().String(),
		TemplateID: tmpl.ID,
		Name:       name,
		StartDate:  domain.Day(start),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	steps := make([]domain.WorkflowStep, len(tmpl.Steps))
	for i, spec := range tmpl.Steps {
		if err := spec.Duration.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps[i] = domain.WorkflowStep{
			ID:        uuid.New().String(),
			ProjectID: p.ID,
			StepIndex: i,
			What:      spec.What,
			Who:       spec.Who,
			How:       spec.How,
			Duration:  spec.Duration,
		}
	}

	planned, err := PlanChain(p.StartDate, steps)
	if err != nil {
		return nil, err
	}
	p.Steps = planned
	return p, nil
}
