package port

import (
	"context"

	"github.com/quotient-crm/approval-engine/internal/domain/approval"
)

// ApprovalRepository defines persistence operations for approval requests.
// It owns the single-pending-request-per-quotation invariant.
type ApprovalRepository interface {
	// Create persists a new request. Fails with
	// approval.ErrDuplicatePendingRequest if a pending request already
	// exists for the quotation; the guarantee is a store-level partial
	// uniqueness constraint, not a read-then-write check.
	Create(ctx context.Context, req *approval.Request) error

	// GetByID retrieves a request by its ID; approval.ErrNotFound if absent
	GetByID(ctx context.Context, id string) (*approval.Request, error)

	// FindPendingByQuotation returns the open request for a quotation, or
	// nil when none is open
	FindPendingByQuotation(ctx context.Context, quotationID string) (*approval.Request, error)

	// Transition applies mutate to the freshly read request and commits it
	// only if the stored status still equals from. The mutator sees current
	// row state, not the caller's snapshot, and may veto the transition by
	// returning an error. Fails with approval.ErrConcurrentModification when
	// another actor transitioned the request first, approval.ErrNotFound
	// when the request is unknown.
	Transition(ctx context.Context, id string, from approval.Status, mutate func(*approval.Request) error) (*approval.Request, error)

	// ListByQuotation returns all requests ever opened for a quotation,
	// newest first
	ListByQuotation(ctx context.Context, quotationID string) ([]*approval.Request, error)

	// List returns requests across quotations with pagination, newest first
	List(ctx context.Context, limit, offset int) ([]*approval.Request, error)
}

// QuotationRepository defines the engine's narrow access to quotations:
// reading, the two engine-owned lock fields, and discount application on
// approval. All other quotation mutation belongs to the quotation subsystem.
type QuotationRepository interface {
	// GetByID retrieves a quotation; approval.ErrNotFound if absent
	GetByID(ctx context.Context, id string) (*approval.Quotation, error)

	// AcquireApprovalLock sets is_pending_approval and pending_approval_id
	// as a compare-and-swap on the unlocked state. Fails with
	// approval.ErrAlreadyLocked when the quotation is already locked.
	AcquireApprovalLock(ctx context.Context, quotationID, approvalID string) error

	// ReleaseApprovalLock clears both lock fields
	ReleaseApprovalLock(ctx context.Context, quotationID string) error

	// ApplyDiscount writes the approved discount percentage onto the quotation
	ApplyDiscount(ctx context.Context, quotationID string, discountPct float64) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
