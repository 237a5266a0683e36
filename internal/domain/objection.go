package domain

import "time"

// Objection is a request to change a scheduled item's due date, hold it, or
// terminate it. Once responded to it is never modified again.
type Objection struct {
	ID                 string
	TargetID           string
	TargetKind         TargetKind
	Type               ObjectionType
	RequestedDate      *time.Time
	ExtraDaysRequested *int
	Remarks            string
	RequestedBy        string
	RequestedAt        time.Time

	Status          ObjectionStatus
	RespondedBy     string
	RespondedAt     *time.Time
	ApprovalRemarks string
	ImpactScoring   *bool
}

func (o *Objection) IsPending() bool {
	return o.Status == ObjectionPending
}

// Excuses reports whether this objection removes its target from on-time
// scoring: an approved date change explicitly marked as not impacting. An
// unset ImpactScoring counts as impacting.
func (o *Objection) Excuses() bool {
	return o.Status == ObjectionApproved &&
		o.Type == ObjectionDateChange &&
		o.ImpactScoring != nil && !*o.ImpactScoring
}
