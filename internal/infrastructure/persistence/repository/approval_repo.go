package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/quotient-crm/approval-engine/internal/application/port"
	"github.com/quotient-crm/approval-engine/internal/domain/approval"
	"github.com/quotient-crm/approval-engine/internal/infrastructure/persistence/sqlite"
)

// ApprovalRepository implements port.ApprovalRepository over sqlite.
//
// The single-pending-request invariant is enforced by a partial unique
// index on (quotation_id) where status = 'PENDING'; Create never does a
// read-then-write check.
type ApprovalRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *sql.DB, logger *zap.Logger) port.ApprovalRepository {
	return &ApprovalRepository{
		db:     db,
		logger: logger,
	}
}

const approvalColumns = `
	id, quotation_id, requested_by, approver, status,
	discount_pct, threshold, level, escalated_to_admin,
	reason, comments, requested_at, approved_at, rejected_at,
	created_at, updated_at
`

// Create persists a new approval request
func (r *ApprovalRepository) Create(ctx context.Context, req *approval.Request) error {
	query := `
		INSERT INTO approval_requests (
			id, quotation_id, requested_by, approver, status,
			discount_pct, threshold, level, escalated_to_admin,
			reason, comments, requested_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		req.ID,
		req.QuotationID,
		req.RequestedBy,
		req.Approver,
		req.Status.String(),
		req.DiscountPct,
		req.Threshold,
		req.Level.String(),
		req.EscalatedToAdmin,
		req.Reason,
		req.Comments,
		req.RequestedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("quotation %s: %w", req.QuotationID, approval.ErrDuplicatePendingRequest)
		}
		r.logger.Error("Failed to create approval request", zap.Error(err))
		return fmt.Errorf("failed to create approval request: %w", err)
	}

	return nil
}

// GetByID retrieves an approval request by ID
func (r *ApprovalRepository) GetByID(ctx context.Context, id string) (*approval.Request, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_requests WHERE id = ?`

	req, err := scanRequest(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("approval request %s: %w", id, approval.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get approval request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get approval request: %w", err)
	}

	return req, nil
}

// FindPendingByQuotation returns the open request for a quotation, or nil
func (r *ApprovalRepository) FindPendingByQuotation(ctx context.Context, quotationID string) (*approval.Request, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_requests WHERE quotation_id = ? AND status = ?`

	req, err := scanRequest(r.getExecutor(ctx).QueryRowContext(ctx, query, quotationID, approval.StatusPending.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find pending request", zap.String("quotation_id", quotationID), zap.Error(err))
		return nil, fmt.Errorf("failed to find pending request: %w", err)
	}

	return req, nil
}

// Transition applies mutate to the stored request and commits only if the
// stored status still equals from. The mutator runs against the row as read
// inside the ambient transaction and may veto by returning an error. The
// guarded UPDATE is the commit point; zero affected rows on an existing
// request means another actor won the race.
func (r *ApprovalRepository) Transition(ctx context.Context, id string, from approval.Status, mutate func(*approval.Request) error) (*approval.Request, error) {
	req, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := mutate(req); err != nil {
		return nil, err
	}
	req.UpdatedAt = time.Now()

	query := `
		UPDATE approval_requests SET
			approver = ?, status = ?, escalated_to_admin = ?,
			comments = ?, approved_at = ?, rejected_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		req.Approver,
		req.Status.String(),
		req.EscalatedToAdmin,
		req.Comments,
		nullableTime(req.ApprovedAt),
		nullableTime(req.RejectedAt),
		id,
		from.String(),
	)
	if err != nil {
		r.logger.Error("Failed to transition approval request", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to transition approval request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("approval request %s expected status %s: %w", id, from, approval.ErrConcurrentModification)
	}

	return req, nil
}

// ListByQuotation returns all requests for a quotation, newest first
func (r *ApprovalRepository) ListByQuotation(ctx context.Context, quotationID string) ([]*approval.Request, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_requests WHERE quotation_id = ? ORDER BY requested_at DESC`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, quotationID)
	if err != nil {
		r.logger.Error("Failed to list requests by quotation", zap.String("quotation_id", quotationID), zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// List returns requests across quotations with pagination, newest first
func (r *ApprovalRepository) List(ctx context.Context, limit, offset int) ([]*approval.Request, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_requests ORDER BY requested_at DESC LIMIT ? OFFSET ?`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// getExecutor returns the ambient transaction if present, else the database
func (r *ApprovalRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.db
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*approval.Request, error) {
	var req approval.Request
	var status, level string
	var approvedAt, rejectedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.QuotationID,
		&req.RequestedBy,
		&req.Approver,
		&status,
		&req.DiscountPct,
		&req.Threshold,
		&level,
		&req.EscalatedToAdmin,
		&req.Reason,
		&req.Comments,
		&req.RequestedAt,
		&approvedAt,
		&rejectedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = approval.Status(status)
	req.Level = approval.Level(level)
	if approvedAt.Valid {
		req.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		req.RejectedAt = &rejectedAt.Time
	}

	return &req, nil
}

func scanRequests(rows *sql.Rows) ([]*approval.Request, error) {
	var requests []*approval.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// isUniqueViolation reports whether err is a sqlite unique constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Verify interface compliance
var _ port.ApprovalRepository = (*ApprovalRepository)(nil)
