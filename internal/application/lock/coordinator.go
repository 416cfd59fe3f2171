// Package lock owns the quotation's pending-approval marker. The two lock
// fields on a quotation are written only through this coordinator, acting on
// behalf of the workflow engine.
package lock

import (
	"context"
	"fmt"

	"github.com/quotient-crm/approval-engine/internal/application/port"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Coordinator sets and clears the exclusive pending-approval marker on
// quotations. Acquire must run in the same transaction as request creation;
// Release runs exactly once, at the terminal transition.
type Coordinator struct {
	quotations port.QuotationRepository
	logger     Logger
}

// NewCoordinator creates a new lock coordinator
func NewCoordinator(quotations port.QuotationRepository, logger Logger) *Coordinator {
	return &Coordinator{
		quotations: quotations,
		logger:     logger,
	}
}

// Acquire marks the quotation as pending approval, pointing at the given
// request. Fails with approval.ErrAlreadyLocked when another request holds
// the lock. The underlying repository performs a compare-and-swap, so two
// racing submissions cannot both acquire.
func (c *Coordinator) Acquire(ctx context.Context, quotationID, approvalID string) error {
	if err := c.quotations.AcquireApprovalLock(ctx, quotationID, approvalID); err != nil {
		return fmt.Errorf("acquire approval lock on quotation %s: %w", quotationID, err)
	}

	c.logger.Info("Quotation locked for approval",
		"quotation_id", quotationID,
		"approval_id", approvalID,
	)
	return nil
}

// Release clears both lock fields. Escalation never releases; only a
// terminal decision does.
func (c *Coordinator) Release(ctx context.Context, quotationID string) error {
	if err := c.quotations.ReleaseApprovalLock(ctx, quotationID); err != nil {
		return fmt.Errorf("release approval lock on quotation %s: %w", quotationID, err)
	}

	c.logger.Info("Quotation lock released", "quotation_id", quotationID)
	return nil
}
