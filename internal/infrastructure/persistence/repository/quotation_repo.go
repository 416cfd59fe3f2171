package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/quotient-crm/approval-engine/internal/application/port"
	"github.com/quotient-crm/approval-engine/internal/domain/approval"
	"github.com/quotient-crm/approval-engine/internal/infrastructure/persistence/sqlite"
)

// QuotationRepository implements port.QuotationRepository over sqlite.
// Lock acquisition is a compare-and-swap UPDATE guarded on the unlocked
// state, so two racing submissions cannot both succeed.
type QuotationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQuotationRepository creates a new quotation repository
func NewQuotationRepository(db *sql.DB, logger *zap.Logger) port.QuotationRepository {
	return &QuotationRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a quotation by ID
func (r *QuotationRepository) GetByID(ctx context.Context, id string) (*approval.Quotation, error) {
	query := `
		SELECT id, client_name, total_amount, discount_pct,
			is_pending_approval, pending_approval_id,
			created_at, updated_at
		FROM quotations
		WHERE id = ?
	`

	var q approval.Quotation
	var pendingApprovalID sql.NullString

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&q.ID,
		&q.ClientName,
		&q.TotalAmount,
		&q.DiscountPct,
		&q.IsPendingApproval,
		&pendingApprovalID,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quotation %s: %w", id, approval.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get quotation", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if pendingApprovalID.Valid {
		q.PendingApprovalID = pendingApprovalID.String
	}

	return &q, nil
}

// AcquireApprovalLock marks the quotation pending approval iff it is not
// already. Zero affected rows on an existing quotation means the lock is held.
func (r *QuotationRepository) AcquireApprovalLock(ctx context.Context, quotationID, approvalID string) error {
	query := `
		UPDATE quotations SET
			is_pending_approval = 1,
			pending_approval_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_pending_approval = 0
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, approvalID, quotationID)
	if err != nil {
		r.logger.Error("Failed to acquire approval lock", zap.String("quotation_id", quotationID), zap.Error(err))
		return fmt.Errorf("failed to acquire approval lock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		exists, err := r.exists(ctx, quotationID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("quotation %s: %w", quotationID, approval.ErrNotFound)
		}
		return fmt.Errorf("quotation %s: %w", quotationID, approval.ErrAlreadyLocked)
	}

	return nil
}

// ReleaseApprovalLock clears both lock fields
func (r *QuotationRepository) ReleaseApprovalLock(ctx context.Context, quotationID string) error {
	query := `
		UPDATE quotations SET
			is_pending_approval = 0,
			pending_approval_id = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, quotationID)
	if err != nil {
		r.logger.Error("Failed to release approval lock", zap.String("quotation_id", quotationID), zap.Error(err))
		return fmt.Errorf("failed to release approval lock: %w", err)
	}

	return nil
}

// ApplyDiscount writes the approved discount percentage onto the quotation
func (r *QuotationRepository) ApplyDiscount(ctx context.Context, quotationID string, discountPct float64) error {
	query := `
		UPDATE quotations SET
			discount_pct = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, discountPct, quotationID)
	if err != nil {
		r.logger.Error("Failed to apply discount", zap.String("quotation_id", quotationID), zap.Error(err))
		return fmt.Errorf("failed to apply discount: %w", err)
	}

	return nil
}

func (r *QuotationRepository) exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.getExecutor(ctx).QueryRowContext(ctx, `SELECT COUNT(1) FROM quotations WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check quotation existence: %w", err)
	}
	return n > 0, nil
}

// getExecutor returns the ambient transaction if present, else the database
func (r *QuotationRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.QuotationRepository = (*QuotationRepository)(nil)
