package domain

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// ValidFrequencies is the canonical set of accepted frequency strings.
var ValidFrequencies = map[string]bool{
	"daily": true, "weekly": true, "monthly": true,
}

type OccurrenceStatus string

const (
	OccurrencePending   OccurrenceStatus = "pending"
	OccurrenceCompleted OccurrenceStatus = "completed"
)

type DurationKind string

const (
	DurationFixed           DurationKind = "fixed"
	DurationDependent       DurationKind = "dependent"
	DurationAskOnCompletion DurationKind = "ask_on_completion"
)

// ValidDurationKinds is the canonical set of accepted duration kind strings.
var ValidDurationKinds = map[string]bool{
	"fixed": true, "dependent": true, "ask_on_completion": true,
}

type ObjectionType string

const (
	ObjectionDateChange ObjectionType = "date_change"
	ObjectionHold       ObjectionType = "hold"
	ObjectionTerminate  ObjectionType = "terminate"
)

// ValidObjectionTypes is the canonical set of accepted objection type strings.
var ValidObjectionTypes = map[string]bool{
	"date_change": true, "hold": true, "terminate": true,
}

type ObjectionStatus string

const (
	ObjectionPending  ObjectionStatus = "pending"
	ObjectionApproved ObjectionStatus = "approved"
	ObjectionRejected ObjectionStatus = "rejected"
)

type TargetKind string

const (
	TargetStep TargetKind = "step"
	TargetTask TargetKind = "task"
)
