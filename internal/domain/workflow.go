package domain

import (
	"fmt"
	"time"
)

// DurationSpec says how a step's due date is derived from its anchor.
// OffsetDays is ignored for AskOnCompletion.
type DurationSpec struct {
	Kind       DurationKind
	OffsetDays int
}

// Fixed anchors on the predecessor's planned date, so upstream lateness does
// not move the step.
func Fixed(days int) DurationSpec {
	return DurationSpec{Kind: DurationFixed, OffsetDays: days}
}

// Dependent anchors on the predecessor's actual completion once known.
func Dependent(days int) DurationSpec {
	return DurationSpec{Kind: DurationDependent, OffsetDays: days}
}

// AskOnCompletion leaves the date to the assignee once the predecessor completes.
func AskOnCompletion() DurationSpec {
	return DurationSpec{Kind: DurationAskOnCompletion}
}

func (d DurationSpec) Validate() error {
	if !ValidDurationKinds[string(d.Kind)] {
		return fmt.Errorf("unknown duration kind %q", d.Kind)
	}
	if d.OffsetDays < 0 {
		return fmt.Errorf("duration offset must be >= 0, got %d", d.OffsetDays)
	}
	return nil
}

func (d DurationSpec) String() string {
	if d.Kind == DurationAskOnCompletion {
		return string(d.Kind)
	}
	return fmt.Sprintf("%s+%dd", d.Kind, d.OffsetDays)
}

// StepSpec is one step of a workflow template before instantiation.
type StepSpec struct {
	What     string
	Who      string
	How      string
	Duration DurationSpec
}

type WorkflowTemplate struct {
	ID        string
	Name      string
	Steps     []StepSpec
	CreatedAt time.Time
}

// WorkflowStep is one node of a project's step chain.
type WorkflowStep struct {
	ID                   string
	ProjectID            string
	StepIndex            int
	What                 string
	Who                  string
	How                  string
	Duration             DurationSpec
	PlannedDueDate       *time.Time
	ActualCompletionDate *time.Time
	IsOnHold             bool
	IsTerminated         bool

	// DueOverridden is set when an approved objection or an explicit supply
	// fixed PlannedDueDate; planner passes keep such dates.
	DueOverridden bool
}

func (s *WorkflowStep) IsCompleted() bool {
	return s.ActualCompletionDate != nil
}

// IsActive reports whether the step still takes part in scheduling.
func (s *WorkflowStep) IsActive() bool {
	return !s.IsOnHold && !s.IsTerminated
}

// Complete records the actual completion date.
func (s *WorkflowStep) Complete(at time.Time) error {
	if s.IsTerminated {
		return &ConflictError{TargetID: s.ID, Reason: "step is terminated"}
	}
	if s.IsOnHold {
		return &ConflictError{TargetID: s.ID, Reason: "step is on hold"}
	}
	s.ActualCompletionDate = timePtr(Day(at))
	return nil
}

// SameSchedule reports whether two snapshots of a step carry the same dates
// and flags.
func (s WorkflowStep) SameSchedule(other WorkflowStep) bool {
	return sameDate(s.PlannedDueDate, other.PlannedDueDate) &&
		sameDate(s.ActualCompletionDate, other.ActualCompletionDate) &&
		s.IsOnHold == other.IsOnHold &&
		s.IsTerminated == other.IsTerminated &&
		s.DueOverridden == other.DueOverridden
}
