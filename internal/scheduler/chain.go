package scheduler

import (
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

// PlanChain computes every step's planned due date from left to right and
// returns the planned copy; the input slice is not modified.
//
// A held step suspends planning for itself and everything after it. A
// terminated step keeps its last planned date. Overridden and
// AskOnCompletion dates are kept as they are.
func PlanChain(start time.Time, steps []domain.WorkflowStep) ([]domain.WorkflowStep, error) {
	if err := checkOrder(steps); err != nil {
		return nil, err
	}
	out := domain.CloneSteps(steps)
	for i := range out {
		if out[i].IsOnHold {
			break
		}
		planStep(start, out, i)
	}
	return out, nil
}

// Propagate recomputes the steps after position from, which just had one of
// its dates changed. It returns the new chain and the positions whose dates
// or flags differ from the input.
func Propagate(start time.Time, steps []domain.WorkflowStep, from int, policy Policy) ([]domain.WorkflowStep, []int, error) {
	if err := checkOrder(steps); err != nil {
		return nil, nil, err
	}
	out := domain.CloneSteps(steps)
	propagate(start, out, from, policy)
	return out, changedPositions(steps, out), nil
}

// CompleteStep records the actual completion of the step at pos and
// propagates the change downstream.
func CompleteStep(start time.Time, steps []domain.WorkflowStep, pos int, at time.Time, policy Policy) ([]domain.WorkflowStep, []int, error) {
	if err := checkPosition(steps, pos); err != nil {
		return nil, nil, err
	}
	out := domain.CloneSteps(steps)
	if err := out[pos].Complete(at); err != nil {
		return nil, nil, err
	}
	propagate(start, out, pos, policy)
	return out, changedPositions(steps, out), nil
}

// SupplyDueDate sets the date of an AskOnCompletion step once its
// predecessor has completed, then propagates downstream.
func SupplyDueDate(start time.Time, steps []domain.WorkflowStep, pos int, due time.Time, policy Policy) ([]domain.WorkflowStep, []int, error) {
	if err := checkPosition(steps, pos); err != nil {
		return nil, nil, err
	}
	s := steps[pos]
	if s.Duration.Kind != domain.DurationAskOnCompletion {
		return nil, nil, &domain.ConflictError{TargetID: s.ID, Reason: "due date is computed, not supplied"}
	}
	if !s.IsActive() {
		return nil, nil, &domain.ConflictError{TargetID: s.ID, Reason: "step is on hold or terminated"}
	}
	if pos > 0 && !steps[pos-1].IsCompleted() {
		return nil, nil, &domain.ConflictError{TargetID: s.ID, Reason: "predecessor has not completed"}
	}
	out := domain.CloneSteps(steps)
	d := domain.Day(due)
	out[pos].PlannedDueDate = &d
	next, _, err := Propagate(start, out, pos, policy)
	if err != nil {
		return nil, nil, err
	}
	return next, changedPositions(steps, next), nil
}

// ResumeChain clears the hold on the step at pos, re-anchors it on now and
// propagates downstream.
func ResumeChain(start time.Time, steps []domain.WorkflowStep, pos int, now time.Time, policy Policy) ([]domain.WorkflowStep, []int, error) {
	if err := checkPosition(steps, pos); err != nil {
		return nil, nil, err
	}
	if !steps[pos].IsOnHold {
		return nil, nil, &domain.ConflictError{TargetID: steps[pos].ID, Reason: "step is not on hold"}
	}
	out := domain.CloneSteps(steps)
	s := &out[pos]
	s.IsOnHold = false
	if !s.IsCompleted() && s.Duration.Kind != domain.DurationAskOnCompletion {
		d := domain.AddDays(now, s.Duration.OffsetDays)
		s.PlannedDueDate = &d
		s.DueOverridden = false
	}
	next, _, err := Propagate(start, out, pos, policy)
	if err != nil {
		return nil, nil, err
	}
	return next, changedPositions(steps, next), nil
}

// propagate recomputes downstream of from. Nothing moves while from or any
// step before it is on hold; the walk resumes through ResumeChain.
func propagate(start time.Time, steps []domain.WorkflowStep, from int, policy Policy) {
	if heldThrough(steps, from) {
		return
	}
	for i := from + 1; i < len(steps); i++ {
		s := &steps[i]
		if s.IsOnHold {
			return
		}
		if policy.propagation() == PropagateFull {
			planStep(start, steps, i)
			continue
		}

		// A dated Fixed step or an undated AskOnCompletion step absorbs the
		// change. Undated Fixed steps are seeded once their anchor is known.
		switch s.Duration.Kind {
		case domain.DurationFixed:
			if s.PlannedDueDate != nil || s.IsTerminated || s.DueOverridden {
				return
			}
			planStep(start, steps, i)
			return
		case domain.DurationAskOnCompletion:
			if s.PlannedDueDate == nil {
				return
			}
		default:
			planStep(start, steps, i)
		}
	}
}

func heldThrough(steps []domain.WorkflowStep, pos int) bool {
	for i := 0; i <= pos && i < len(steps); i++ {
		if steps[i].IsOnHold {
			return true
		}
	}
	return false
}

// planStep derives the planned due date of the step at position i from its
// predecessor. Steps it must not touch are left unchanged.
func planStep(start time.Time, steps []domain.WorkflowStep, i int) {
	s := &steps[i]
	if s.IsTerminated || s.DueOverridden || s.Duration.Kind == domain.DurationAskOnCompletion {
		return
	}

	var pred *domain.WorkflowStep
	if i > 0 {
		pred = &steps[i-1]
	}

	if pred != nil && pred.IsTerminated && s.Duration.Kind == domain.DurationDependent {
		// Treated as satisfied: keep the current date, seeding it from the
		// terminated step's last planned date when there is none.
		if s.PlannedDueDate == nil && pred.PlannedDueDate != nil {
			d := domain.AddDays(*pred.PlannedDueDate, s.Duration.OffsetDays)
			s.PlannedDueDate = &d
		}
		return
	}

	anchor := anchorFor(start, pred, s.Duration.Kind)
	if anchor == nil {
		return
	}
	d := domain.AddDays(*anchor, s.Duration.OffsetDays)
	s.PlannedDueDate = &d
}

func anchorFor(start time.Time, pred *domain.WorkflowStep, kind domain.DurationKind) *time.Time {
	if pred == nil {
		d := domain.Day(start)
		return &d
	}
	if kind == domain.DurationDependent {
		if pred.ActualCompletionDate != nil {
			return pred.ActualCompletionDate
		}
		return pred.PlannedDueDate
	}
	if pred.PlannedDueDate != nil {
		return pred.PlannedDueDate
	}
	return pred.ActualCompletionDate
}

func checkOrder(steps []domain.WorkflowStep) error {
	for i := 1; i < len(steps); i++ {
		if steps[i].StepIndex <= steps[i-1].StepIndex {
			return &domain.CyclicDependencyError{
				Position:  i,
				StepIndex: steps[i].StepIndex,
				Previous:  steps[i-1].StepIndex,
			}
		}
	}
	return nil
}

func checkPosition(steps []domain.WorkflowStep, pos int) error {
	if pos < 0 || pos >= len(steps) {
		return &domain.ConflictError{Reason: "step position out of range"}
	}
	return checkOrder(steps)
}

func changedPositions(before, after []domain.WorkflowStep) []int {
	var out []int
	for i := range after {
		if i >= len(before) || !before[i].SameSchedule(after[i]) {
			out = append(out, i)
		}
	}
	return out
}
