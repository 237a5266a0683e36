package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRange matches every *InvalidRangeError.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrInvalidPattern matches every *InvalidPatternError.
	ErrInvalidPattern = errors.New("invalid recurrence pattern")

	// ErrCyclicDependency matches every *CyclicDependencyError.
	ErrCyclicDependency = errors.New("step chain is not a total order")

	// ErrConflict matches every *ConflictError.
	ErrConflict = errors.New("conflict")
)

// InvalidRangeError reports a recurrence range whose start is after its end.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format(DateLayout), e.End.Format(DateLayout))
}

func (e *InvalidRangeError) Is(target error) bool { return target == ErrInvalidRange }

// InvalidPatternError reports a recurrence pattern whose active selector set
// is empty or holds values outside the allowed domain.
type InvalidPatternError struct {
	Frequency Frequency
	Reason    string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid %s pattern: %s", e.Frequency, e.Reason)
}

func (e *InvalidPatternError) Is(target error) bool { return target == ErrInvalidPattern }

// CyclicDependencyError reports a step chain whose indices do not form a
// strictly increasing sequence.
type CyclicDependencyError struct {
	Position  int
	StepIndex int
	Previous  int
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("step at position %d has index %d, not after previous index %d",
		e.Position, e.StepIndex, e.Previous)
}

func (e *CyclicDependencyError) Is(target error) bool { return target == ErrCyclicDependency }

// ConflictError reports an operation rejected because of the current state
// of an objection or its target.
type ConflictError struct {
	TargetID string
	Reason   string
}

func (e *ConflictError) Error() string {
	if e.TargetID == "" {
		return "conflict: " + e.Reason
	}
	return fmt.Sprintf("conflict on %s: %s", e.TargetID, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
