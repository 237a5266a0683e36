package scheduler

import (
	"testing"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ledgerNow = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

func dateChange(target string, requested time.Time) RaiseRequest {
	return RaiseRequest{
		TargetID:      target,
		Type:          domain.ObjectionDateChange,
		RequestedDate: &requested,
		Remarks:       "supplier delay",
		RequestedBy:   "sam",
	}
}

func TestRaiseObjection_DateChangeDerivesExtraDays(t *testing.T) {
	due := day("2024-03-06")
	target := ObjectionTarget{ID: "step-1", Kind: domain.TargetStep, DueDate: &due}

	o, err := RaiseObjection(dateChange("step-1", day("2024-03-10")), target, nil, ledgerNow)
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, domain.ObjectionPending, o.Status)
	assert.Equal(t, domain.TargetStep, o.TargetKind)
	assert.Equal(t, ledgerNow, o.RequestedAt)
	require.NotNil(t, o.ExtraDaysRequested)
	assert.Equal(t, 4, *o.ExtraDaysRequested)
	assert.Nil(t, o.ImpactScoring)
}

func TestRaiseObjection_DateChangeRequiresDate(t *testing.T) {
	req := RaiseRequest{TargetID: "t", Type: domain.ObjectionDateChange, RequestedBy: "sam"}
	_, err := RaiseObjection(req, ObjectionTarget{ID: "t"}, nil, ledgerNow)
	assert.ErrorIs(t, err, ErrInvalidObjection)
}

func TestRaiseObjection_RequiresType(t *testing.T) {
	req := RaiseRequest{TargetID: "t", RequestedBy: "sam"}
	_, err := RaiseObjection(req, ObjectionTarget{ID: "t"}, nil, ledgerNow)
	assert.ErrorIs(t, err, ErrInvalidObjection)
}

func TestRaiseObjection_SinglePendingPerTarget(t *testing.T) {
	due := day("2024-03-06")
	target := ObjectionTarget{ID: "step-1", DueDate: &due}

	first, err := RaiseObjection(dateChange("step-1", day("2024-03-08")), target, nil, ledgerNow)
	require.NoError(t, err)

	_, err = RaiseObjection(dateChange("step-1", day("2024-03-09")), target, first, ledgerNow)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "step-1", conflict.TargetID)

	resolved, err := RespondObjection(first, RespondRequest{Status: domain.ObjectionRejected, RespondedBy: "lee"}, ledgerNow)
	require.NoError(t, err)

	second, err := RaiseObjection(dateChange("step-1", day("2024-03-09")), target, resolved, ledgerNow)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRaiseObjection_TargetStateConflicts(t *testing.T) {
	hold := RaiseRequest{TargetID: "x", Type: domain.ObjectionHold, RequestedBy: "sam"}
	terminate := RaiseRequest{TargetID: "x", Type: domain.ObjectionTerminate, RequestedBy: "sam"}

	_, err := RaiseObjection(hold, ObjectionTarget{ID: "x", OnHold: true}, nil, ledgerNow)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = RaiseObjection(hold, ObjectionTarget{ID: "x", Completed: true}, nil, ledgerNow)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = RaiseObjection(terminate, ObjectionTarget{ID: "x", Completed: true}, nil, ledgerNow)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = RaiseObjection(dateChange("x", day("2024-04-01")), ObjectionTarget{ID: "x", Terminated: true}, nil, ledgerNow)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = RaiseObjection(dateChange("x", day("2024-04-01")), ObjectionTarget{ID: "x", OnHold: true}, nil, ledgerNow)
	assert.ErrorIs(t, err, domain.ErrConflict, "held targets are resumed before their date moves")

	// A completed item may still have its completion date contested.
	done := day("2024-03-01")
	_, err = RaiseObjection(dateChange("x", day("2024-03-02")), ObjectionTarget{ID: "x", Completed: true, DueDate: &done}, nil, ledgerNow)
	assert.NoError(t, err)
}

func TestRespondObjection_ImpactDefaultsToTrue(t *testing.T) {
	due := day("2024-03-06")
	o, err := RaiseObjection(dateChange("s", day("2024-03-08")), ObjectionTarget{ID: "s", DueDate: &due}, nil, ledgerNow)
	require.NoError(t, err)

	approved, err := RespondObjection(o, RespondRequest{Status: domain.ObjectionApproved, RespondedBy: "lee", ApprovalRemarks: "ok"}, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, domain.ObjectionApproved, approved.Status)
	assert.Equal(t, "lee", approved.RespondedBy)
	assert.Equal(t, "ok", approved.ApprovalRemarks)
	require.NotNil(t, approved.ImpactScoring)
	assert.True(t, *approved.ImpactScoring)
	assert.True(t, o.IsPending(), "input objection is not modified")
}

func TestRespondObjection_ExplicitNoImpact(t *testing.T) {
	o := &domain.Objection{ID: "o1", TargetID: "s", Type: domain.ObjectionDateChange, Status: domain.ObjectionPending}
	no := false
	approved, err := RespondObjection(o, RespondRequest{Status: domain.ObjectionApproved, RespondedBy: "lee", ImpactScoring: &no}, ledgerNow)
	require.NoError(t, err)
	assert.True(t, approved.Excuses())
}

func TestRespondObjection_ImpactOnlyForApprovedDateChange(t *testing.T) {
	no := false
	tests := []struct {
		name   string
		typ    domain.ObjectionType
		status domain.ObjectionStatus
	}{
		{"rejected date change", domain.ObjectionDateChange, domain.ObjectionRejected},
		{"approved hold", domain.ObjectionHold, domain.ObjectionApproved},
		{"approved terminate", domain.ObjectionTerminate, domain.ObjectionApproved},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := &domain.Objection{ID: "o1", TargetID: "s", Type: tc.typ, Status: domain.ObjectionPending}
			out, err := RespondObjection(o, RespondRequest{Status: tc.status, RespondedBy: "lee", ImpactScoring: &no}, ledgerNow)
			require.NoError(t, err)
			assert.Nil(t, out.ImpactScoring)
		})
	}
}

func TestRespondObjection_OnlyOnce(t *testing.T) {
	o := &domain.Objection{ID: "o1", TargetID: "s", Type: domain.ObjectionHold, Status: domain.ObjectionPending}
	approved, err := RespondObjection(o, RespondRequest{Status: domain.ObjectionApproved, RespondedBy: "lee"}, ledgerNow)
	require.NoError(t, err)
	assert.Nil(t, approved.ImpactScoring, "impact only defaults for date changes")

	_, err = RespondObjection(approved, RespondRequest{Status: domain.ObjectionRejected, RespondedBy: "kim"}, ledgerNow.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.ObjectionApproved, approved.Status)
	assert.Equal(t, "lee", approved.RespondedBy)
}

func TestRespondObjection_InvalidStatus(t *testing.T) {
	o := &domain.Objection{ID: "o1", Status: domain.ObjectionPending}
	_, err := RespondObjection(o, RespondRequest{Status: domain.ObjectionPending, RespondedBy: "lee"}, ledgerNow)
	assert.ErrorIs(t, err, ErrInvalidObjection)

	_, err = RespondObjection(o, RespondRequest{Status: domain.ObjectionApproved}, ledgerNow)
	assert.ErrorIs(t, err, ErrInvalidObjection)
}
