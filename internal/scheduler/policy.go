package scheduler

import "fmt"

// MonthlyOverflow decides what happens to a monthly selector that exceeds
// the length of a month (e.g. 31 in February).
type MonthlyOverflow string

const (
	// OverflowClamp moves the occurrence to the last day of the month.
	OverflowClamp MonthlyOverflow = "clamp"
	// OverflowSkip drops the occurrence for that month.
	OverflowSkip MonthlyOverflow = "skip"
)

// Propagation decides how far a changed date travels down the step chain.
type Propagation string

const (
	// PropagateUntilFixed recomputes Dependent successors and stops at the
	// first Fixed or unset AskOnCompletion step.
	PropagateUntilFixed Propagation = "until_fixed"
	// PropagateFull recomputes every downstream step.
	PropagateFull Propagation = "full"
)

// Policy bundles the scheduling policy choices. The zero value behaves like
// DefaultPolicy.
type Policy struct {
	MonthlyOverflow MonthlyOverflow
	Propagation     Propagation
}

func DefaultPolicy() Policy {
	return Policy{
		MonthlyOverflow: OverflowClamp,
		Propagation:     PropagateUntilFixed,
	}
}

// Validate rejects unknown policy values. Empty values are allowed and mean
// the default.
func (p Policy) Validate() error {
	switch p.MonthlyOverflow {
	case "", OverflowClamp, OverflowSkip:
	default:
		return fmt.Errorf("unknown monthly overflow policy %q", p.MonthlyOverflow)
	}
	switch p.Propagation {
	case "", PropagateUntilFixed, PropagateFull:
	default:
		return fmt.Errorf("unknown propagation policy %q", p.Propagation)
	}
	return nil
}

func (p Policy) overflow() MonthlyOverflow {
	if p.MonthlyOverflow == "" {
		return OverflowClamp
	}
	return p.MonthlyOverflow
}

func (p Policy) propagation() Propagation {
	if p.Propagation == "" {
		return PropagateUntilFixed
	}
	return p.Propagation
}
