package scheduler

import (
	"math/rand"
	"testing"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomChain(rng *rand.Rand) []domain.WorkflowStep {
	n := rng.Intn(8) + 1
	specs := make([]domain.DurationSpec, n)
	for i := range specs {
		switch rng.Intn(5) {
		case 0:
			specs[i] = domain.AskOnCompletion()
		case 1, 2:
			specs[i] = domain.Fixed(rng.Intn(10))
		default:
			specs[i] = domain.Dependent(rng.Intn(10))
		}
	}
	steps := newChain(specs...)
	for i := range steps {
		if rng.Intn(6) == 0 {
			d := day("2024-03-01").AddDate(0, 0, rng.Intn(40))
			steps[i].ActualCompletionDate = &d
		}
		if rng.Intn(10) == 0 {
			steps[i].IsOnHold = true
		}
		if rng.Intn(10) == 0 {
			d := day("2024-03-01").AddDate(0, 0, rng.Intn(40))
			steps[i].PlannedDueDate = &d
			steps[i].IsTerminated = true
		}
	}
	return steps
}

// TestPlanChain_Invariants_Idempotent property-tests that replanning an
// unchanged chain never moves a date.
func TestPlanChain_Invariants_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	start := day("2024-03-01")

	for trial := 0; trial < 300; trial++ {
		steps := randomChain(rng)
		first, err := PlanChain(start, steps)
		require.NoError(t, err)
		second, err := PlanChain(start, first)
		require.NoError(t, err)
		assert.Equal(t, planned(first), planned(second), "trial %d", trial)
	}
}

// TestPlanChain_Invariants_FixedOffsets checks that every planned Fixed step
// sits exactly its offset after its predecessor's planned date.
func TestPlanChain_Invariants_FixedOffsets(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	start := day("2024-03-01")

	for trial := 0; trial < 300; trial++ {
		steps, err := PlanChain(start, randomChain(rng))
		require.NoError(t, err)

		for i, s := range steps {
			if s.IsOnHold {
				break
			}
			if s.Duration.Kind != domain.DurationFixed || s.IsTerminated || s.PlannedDueDate == nil {
				continue
			}
			if i == 0 {
				assert.Equal(t, domain.AddDays(start, s.Duration.OffsetDays), *s.PlannedDueDate, "trial %d", trial)
				continue
			}
			pred := steps[i-1]
			if pred.PlannedDueDate == nil {
				continue
			}
			assert.Equal(t, domain.AddDays(*pred.PlannedDueDate, s.Duration.OffsetDays), *s.PlannedDueDate,
				"trial %d step %d", trial, i)
		}
	}
}

// TestPropagate_Invariants_NeverTouchesUpstream checks that propagation from
// position k leaves positions <= k untouched.
func TestPropagate_Invariants_NeverTouchesUpstream(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := day("2024-03-01")

	for trial := 0; trial < 300; trial++ {
		steps, err := PlanChain(start, randomChain(rng))
		require.NoError(t, err)
		from := rng.Intn(len(steps))
		for _, policy := range []Policy{{Propagation: PropagateUntilFixed}, {Propagation: PropagateFull}} {
			out, changed, err := Propagate(start, steps, from, policy)
			require.NoError(t, err)
			for i := 0; i <= from; i++ {
				assert.True(t, steps[i].SameSchedule(out[i]), "trial %d pos %d", trial, i)
			}
			for _, pos := range changed {
				assert.Greater(t, pos, from, "trial %d", trial)
			}
		}
	}
}
