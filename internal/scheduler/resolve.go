package scheduler

import (
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

// ResolveStep applies a responded objection to the project's step chain and
// returns the new chain plus the positions that changed. A rejected
// objection leaves the chain untouched.
func ResolveStep(p *domain.Project, o *domain.Objection, policy Policy) ([]domain.WorkflowStep, []int, error) {
	if err := checkResolvable(o); err != nil {
		return nil, nil, err
	}
	if o.Status == domain.ObjectionRejected {
		return p.CloneSteps(), nil, nil
	}
	pos, err := p.StepPosition(o.TargetID)
	if err != nil {
		return nil, nil, err
	}
	if err := checkOrder(p.Steps); err != nil {
		return nil, nil, err
	}

	out := p.CloneSteps()
	s := &out[pos]
	switch o.Type {
	case domain.ObjectionDateChange:
		if o.RequestedDate == nil {
			return nil, nil, fmt.Errorf("%w: date_change without requested date", ErrInvalidObjection)
		}
		d := domain.Day(*o.RequestedDate)
		if s.IsCompleted() {
			s.ActualCompletionDate = &d
		}
		// The approved date is also the date the step is scored against.
		s.PlannedDueDate = &d
		s.DueOverridden = true
		propagate(p.StartDate, out, pos, policy)
	case domain.ObjectionHold:
		s.IsOnHold = true
	case domain.ObjectionTerminate:
		// Termination ends any hold on the step itself.
		s.IsTerminated = true
		s.IsOnHold = false
		propagate(p.StartDate, out, pos, policy)
	}
	return out, changedPositions(p.Steps, out), nil
}

// ResolveTask applies a responded objection to a standalone task. It reports
// whether the task changed.
func ResolveTask(t *domain.Task, o *domain.Objection, now time.Time) (*domain.Task, bool, error) {
	if err := checkResolvable(o); err != nil {
		return nil, false, err
	}
	out := *t
	if o.Status == domain.ObjectionRejected {
		return &out, false, nil
	}
	switch o.Type {
	case domain.ObjectionDateChange:
		if o.RequestedDate == nil {
			return nil, false, fmt.Errorf("%w: date_change without requested date", ErrInvalidObjection)
		}
		out.DueDate = domain.Day(*o.RequestedDate)
	case domain.ObjectionHold:
		out.IsOnHold = true
	case domain.ObjectionTerminate:
		out.IsTerminated = true
		out.IsOnHold = false
	}
	out.UpdatedAt = now
	return &out, true, nil
}

func checkResolvable(o *domain.Objection) error {
	switch o.Status {
	case domain.ObjectionApproved, domain.ObjectionRejected:
		return nil
	default:
		return fmt.Errorf("%w: objection %s has not been responded to", ErrInvalidObjection, o.ID)
	}
}
