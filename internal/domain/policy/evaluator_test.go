package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotient-crm/approval-engine/internal/domain/approval"
)

func TestEvaluate_WithinSubmitterAuthority(t *testing.T) {
	dec := Evaluate(8, 10, Thresholds{ManagerCeiling: 20})

	assert.False(t, dec.RequiresApproval)
}

func TestEvaluate_AtSubmitterCapBoundary(t *testing.T) {
	// A discount exactly at the submitter's own cap needs no approval
	dec := Evaluate(10, 10, Thresholds{ManagerCeiling: 20})

	assert.False(t, dec.RequiresApproval)
}

func TestEvaluate_ManagerLevel(t *testing.T) {
	// Discount 12%, submitter cap 10%, manager ceiling 20%
	dec := Evaluate(12, 10, Thresholds{ManagerCeiling: 20})

	require.True(t, dec.RequiresApproval)
	assert.Equal(t, approval.LevelManager, dec.Level)
	assert.Equal(t, 10.0, dec.Threshold)
	assert.False(t, dec.EscalatedToAdmin)
}

func TestEvaluate_AtManagerCeilingBoundary(t *testing.T) {
	// Exactly at the manager ceiling still routes to manager, not admin
	dec := Evaluate(20, 10, Thresholds{ManagerCeiling: 20})

	require.True(t, dec.RequiresApproval)
	assert.Equal(t, approval.LevelManager, dec.Level)
}

func TestEvaluate_AdminLevel(t *testing.T) {
	// Discount 35%, manager ceiling 20%: routes straight to admin with
	// the escalation flag pre-set
	dec := Evaluate(35, 10, Thresholds{ManagerCeiling: 20})

	require.True(t, dec.RequiresApproval)
	assert.Equal(t, approval.LevelAdmin, dec.Level)
	assert.Equal(t, 20.0, dec.Threshold)
	assert.True(t, dec.EscalatedToAdmin)
}

func TestEvaluate_ZeroCapSubmitter(t *testing.T) {
	// A submitter with no discount authority needs approval for anything
	dec := Evaluate(1, 0, Thresholds{ManagerCeiling: 20})

	require.True(t, dec.RequiresApproval)
	assert.Equal(t, approval.LevelManager, dec.Level)
	assert.Equal(t, 0.0, dec.Threshold)
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	first := Evaluate(17.5, 10, Thresholds{ManagerCeiling: 20})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(17.5, 10, Thresholds{ManagerCeiling: 20}))
	}
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		t       Thresholds
		wantErr bool
	}{
		{"valid", Thresholds{ManagerCeiling: 20}, false},
		{"zero", Thresholds{ManagerCeiling: 0}, true},
		{"negative", Thresholds{ManagerCeiling: -5}, true},
		{"above 100", Thresholds{ManagerCeiling: 150}, true},
		{"exactly 100", Thresholds{ManagerCeiling: 100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.t.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
