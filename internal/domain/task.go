package domain

import "time"

// Task is a standalone assigned item with its own due date. It can be the
// target of an objection like a workflow step.
type Task struct {
	ID           string
	Title        string
	AssignedTo   string
	DueDate      time.Time
	CompletedAt  *time.Time
	IsOnHold     bool
	IsTerminated bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *Task) Complete(at time.Time) error {
	if t.IsTerminated {
		return &ConflictError{TargetID: t.ID, Reason: "task is terminated"}
	}
	if t.IsOnHold {
		return &ConflictError{TargetID: t.ID, Reason: "task is on hold"}
	}
	if t.CompletedAt == nil {
		t.CompletedAt = timePtr(Day(at))
	}
	t.UpdatedAt = at
	return nil
}

// Resume clears an approved hold. The due date is kept.
func (t *Task) Resume(now time.Time) error {
	if t.IsTerminated {
		return &ConflictError{TargetID: t.ID, Reason: "task is terminated"}
	}
	if !t.IsOnHold {
		return &ConflictError{TargetID: t.ID, Reason: "task is not on hold"}
	}
	t.IsOnHold = false
	t.UpdatedAt = now
	return nil
}
