package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/google/uuid"
)

// ErrInvalidObjection reports a malformed objection request or response.
var ErrInvalidObjection = errors.New("invalid objection")

// ObjectionTarget is the scheduling state of the item an objection is
// raised against.
type ObjectionTarget struct {
	ID         string
	Kind       domain.TargetKind
	DueDate    *time.Time
	Completed  bool
	OnHold     bool
	Terminated bool
}

// StepTarget describes a workflow step as an objection target.
func StepTarget(s *domain.WorkflowStep) ObjectionTarget {
	due := s.PlannedDueDate
	if s.ActualCompletionDate != nil {
		due = s.ActualCompletionDate
	}
	return ObjectionTarget{
		ID:         s.ID,
		Kind:       domain.TargetStep,
		DueDate:    due,
		Completed:  s.IsCompleted(),
		OnHold:     s.IsOnHold,
		Terminated: s.IsTerminated,
	}
}

// TaskTarget describes a standalone task as an objection target.
func TaskTarget(t *domain.Task) ObjectionTarget {
	due := t.DueDate
	return ObjectionTarget{
		ID:         t.ID,
		Kind:       domain.TargetTask,
		DueDate:    &due,
		Completed:  t.CompletedAt != nil,
		OnHold:     t.IsOnHold,
		Terminated: t.IsTerminated,
	}
}

type RaiseRequest struct {
	TargetID      string
	Type          domain.ObjectionType
	RequestedDate *time.Time
	Remarks       string
	RequestedBy   string
}

type RespondRequest struct {
	Status          domain.ObjectionStatus
	RespondedBy     string
	ApprovalRemarks string
	ImpactScoring   *bool
}

// RaiseObjection validates a new objection against its target and the
// target's current pending objection (nil when there is none) and returns the
// pending record to persist.
func RaiseObjection(req RaiseRequest, target ObjectionTarget, pending *domain.Objection, now time.Time) (*domain.Objection, error) {
	if !domain.ValidObjectionTypes[string(req.Type)] {
		return nil, fmt.Errorf("%w: type %q must be one of date_change, hold, terminate", ErrInvalidObjection, req.Type)
	}
	if req.RequestedBy == "" {
		return nil, fmt.Errorf("%w: requested by is required", ErrInvalidObjection)
	}
	if pending != nil && pending.IsPending() {
		return nil, &domain.ConflictError{TargetID: target.ID, Reason: fmt.Sprintf("objection %s is already pending", pending.ID)}
	}
	if target.Terminated {
		return nil, &domain.ConflictError{TargetID: target.ID, Reason: "target is terminated"}
	}

	o := &domain.Objection{
		ID:          uuid.New().String(),
		TargetID:    target.ID,
		TargetKind:  target.Kind,
		Type:        req.Type,
		Remarks:     req.Remarks,
		RequestedBy: req.RequestedBy,
		RequestedAt: now,
		Status:      domain.ObjectionPending,
	}

	switch req.Type {
	case domain.ObjectionDateChange:
		if req.RequestedDate == nil {
			return nil, fmt.Errorf("%w: date_change requires a requested date", ErrInvalidObjection)
		}
		if target.OnHold {
			return nil, &domain.ConflictError{TargetID: target.ID, Reason: "target is on hold; resume it before changing its date"}
		}
		d := domain.Day(*req.RequestedDate)
		o.RequestedDate = &d
		if target.DueDate != nil {
			extra := domain.DaysBetween(*target.DueDate, d)
			o.ExtraDaysRequested = &extra
		}
	case domain.ObjectionHold:
		if target.OnHold {
			return nil, &domain.ConflictError{TargetID: target.ID, Reason: "target is already on hold"}
		}
		if target.Completed {
			return nil, &domain.ConflictError{TargetID: target.ID, Reason: "target is already completed"}
		}
	case domain.ObjectionTerminate:
		if target.Completed {
			return nil, &domain.ConflictError{TargetID: target.ID, Reason: "target is already completed"}
		}
	}
	return o, nil
}

// RespondObjection moves a pending objection to its terminal state and
// returns the updated copy. The input is not modified. ImpactScoring is only
// recorded for an approved date change and defaults to true there.
func RespondObjection(o *domain.Objection, resp RespondRequest, now time.Time) (*domain.Objection, error) {
	if !o.IsPending() {
		return nil, &domain.ConflictError{TargetID: o.TargetID, Reason: fmt.Sprintf("objection %s is already %s", o.ID, o.Status)}
	}
	if resp.Status != domain.ObjectionApproved && resp.Status != domain.ObjectionRejected {
		return nil, fmt.Errorf("%w: response status %q must be approved or rejected", ErrInvalidObjection, resp.Status)
	}
	if resp.RespondedBy == "" {
		return nil, fmt.Errorf("%w: responded by is required", ErrInvalidObjection)
	}

	out := *o
	out.Status = resp.Status
	out.RespondedBy = resp.RespondedBy
	out.ApprovalRemarks = resp.ApprovalRemarks
	out.RespondedAt = &now
	out.ImpactScoring = nil
	if resp.Status == domain.ObjectionApproved && o.Type == domain.ObjectionDateChange {
		v := resp.ImpactScoring == nil || *resp.ImpactScoring
		out.ImpactScoring = &v
	}
	return &out, nil
}
