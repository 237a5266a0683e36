package domain

import (
	"fmt"
	"time"
)

// Project is one instantiation of a workflow template's step chain. Steps are
// never reordered or resized after creation. Version is the optimistic
// concurrency counter bumped on every persisted change.
type Project struct {
	ID         string
	TemplateID string
	Name       string
	StartDate  time.Time
	Version    int
	Steps      []WorkflowStep
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StepPosition returns the slice position of the step with the given ID.
func (p *Project) StepPosition(stepID string) (int, error) {
	for i := range p.Steps {
		if p.Steps[i].ID == stepID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("step %s not found in project %s", stepID, p.ID)
}

// StepAt returns the step at the given StepIndex.
func (p *Project) StepAt(stepIndex int) (*WorkflowStep, int, error) {
	for i := range p.Steps {
		if p.Steps[i].StepIndex == stepIndex {
			return &p.Steps[i], i, nil
		}
	}
	return nil, -1, fmt.Errorf("project %s has no step %d", p.ID, stepIndex)
}

// CloneSteps returns a deep copy of the step chain.
func (p *Project) CloneSteps() []WorkflowStep {
	return CloneSteps(p.Steps)
}

// CloneSteps deep-copies a step slice, including the date pointers.
func CloneSteps(steps []WorkflowStep) []WorkflowStep {
	out := make([]WorkflowStep, len(steps))
	for i, s := range steps {
		if s.PlannedDueDate != nil {
			s.PlannedDueDate = timePtr(*s.PlannedDueDate)
		}
		if s.ActualCompletionDate != nil {
			s.ActualCompletionDate = timePtr(*s.ActualCompletionDate)
		}
		out[i] = s
	}
	return out
}
