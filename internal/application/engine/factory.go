package engine

import (
	"context"

	"github.com/quotient-crm/approval-engine/internal/domain/approval"
	domainwf "github.com/quotient-crm/approval-engine/internal/domain/workflow"
)

// BuildApprovalStateMachine creates a state machine configured for the
// discount approval lifecycle of a single request. Escalation is a guarded
// self-transition on PENDING: only a manager-level request that has not
// already been escalated may escalate, and escalation never reverses.
func BuildApprovalStateMachine(req *approval.Request) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StateNoRequest).
		Permit(domainwf.TriggerSubmit, domainwf.StatePending)

	builder.Configure(domainwf.StatePending).
		Permit(domainwf.TriggerApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		PermitIf(domainwf.TriggerEscalate, domainwf.StatePending, func(ctx context.Context) bool {
			return req.Level == approval.LevelManager && !req.EscalatedToAdmin
		})

	// APPROVED and REJECTED are terminal, no outgoing transitions

	return builder.Build(stateOf(req))
}

// stateOf maps a request's stored status to its workflow state
func stateOf(req *approval.Request) domainwf.State {
	switch req.Status {
	case approval.StatusPending:
		return domainwf.StatePending
	case approval.StatusApproved:
		return domainwf.StateApproved
	case approval.StatusRejected:
		return domainwf.StateRejected
	default:
		return domainwf.StateNoRequest
	}
}
