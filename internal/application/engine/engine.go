// Package engine implements the discount approval workflow: submission
// routing, decision validation, escalation, and quotation locking.
package engine

import (
	"context"

	"github.com/quotient-crm/approval-engine/internal/domain/approval"
)

// SubmitInput carries a discount submission into the engine
type SubmitInput struct {
	QuotationID string
	SubmitterID string
	DiscountPct float64
	Reason      string
}

// SubmitResult is the outcome of a submission. When RequiresApproval is
// false the discount was within the submitter's own authority and no
// request was created; the caller applies the discount directly.
type SubmitResult struct {
	RequiresApproval bool
	Request          *approval.Request
}

// Engine is the approval workflow state machine facade. Every operation is
// a single atomic step; a caller that times out must re-query state rather
// than assume failure.
type Engine interface {
	// Submit evaluates policy for a proposed discount and, when approval
	// is required, atomically locks the quotation and creates the request.
	// Fails with approval.ErrRequestAlreadyOpen when a request is already
	// open for the quotation.
	Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error)

	// Approve decides a pending request positively: terminal status,
	// lock released, discount applied to the quotation.
	Approve(ctx context.Context, approvalID, approverID, comments string) (*approval.Request, error)

	// Reject decides a pending request negatively: terminal status,
	// lock released, discount not applied.
	Reject(ctx context.Context, approvalID, approverID, comments string) (*approval.Request, error)

	// Escalate re-targets a pending manager-level request to the admin
	// approver. The quotation lock is retained. Safe to call repeatedly:
	// an already-escalated or terminal request fails with
	// approval.ErrInvalidTransition, state unchanged.
	Escalate(ctx context.Context, approvalID, escalatorID string) (*approval.Request, error)

	// GetRequest retrieves a request by ID
	GetRequest(ctx context.Context, approvalID string) (*approval.Request, error)

	// PendingForQuotation returns the open request for a quotation, or
	// nil when the quotation is not under review
	PendingForQuotation(ctx context.Context, quotationID string) (*approval.Request, error)

	// ListRequests returns requests across quotations, newest first
	ListRequests(ctx context.Context, limit, offset int) ([]*approval.Request, error)

	// ListForQuotation returns the full approval history of a quotation
	ListForQuotation(ctx context.Context, quotationID string) ([]*approval.Request, error)
}
