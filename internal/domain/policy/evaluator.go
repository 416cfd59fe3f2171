// Package policy decides whether a proposed discount needs approval and at
// which level. Evaluation is pure: no state, no I/O, so policy changes take
// effect for new submissions without touching open requests.
package policy

import (
	"fmt"

	"github.com/quotient-crm/approval-engine/internal/domain/approval"
)

// Thresholds holds the configured policy ceilings
type Thresholds struct {
	// ManagerCeiling is the highest discount a first-line (manager)
	// approver may authorize. Anything above routes straight to admin.
	ManagerCeiling float64
}

// Validate checks the thresholds are usable
func (t Thresholds) Validate() error {
	if t.ManagerCeiling <= 0 || t.ManagerCeiling > 100 {
		return fmt.Errorf("manager ceiling must be within (0, 100], got %.2f", t.ManagerCeiling)
	}
	return nil
}

// Decision is the outcome of evaluating a proposed discount
type Decision struct {
	// RequiresApproval is false when the discount is within the
	// submitter's own authority; no request is created in that case.
	RequiresApproval bool

	// Level is the approval tier required, fixed at request creation
	Level approval.Level

	// Threshold is the policy boundary the discount exceeded, snapshot
	// onto the request
	Threshold float64

	// EscalatedToAdmin is pre-set when the discount exceeds even the
	// manager ceiling: "escalated" means "requires admin", not
	// necessarily "was bounced from a manager"
	EscalatedToAdmin bool
}

// Evaluate decides whether a discount requires approval given the
// submitter's own discount cap.
func Evaluate(discountPct, submitterCap float64, t Thresholds) Decision {
	if discountPct <= submitterCap {
		return Decision{RequiresApproval: false}
	}

	if discountPct <= t.ManagerCeiling {
		return Decision{
			RequiresApproval: true,
			Level:            approval.LevelManager,
			Threshold:        submitterCap,
		}
	}

	return Decision{
		RequiresApproval: true,
		Level:            approval.LevelAdmin,
		Threshold:        t.ManagerCeiling,
		EscalatedToAdmin: true,
	}
}
