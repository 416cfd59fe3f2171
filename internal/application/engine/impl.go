package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quotient-crm/approval-engine/internal/application/dispatcher"
	"github.com/quotient-crm/approval-engine/internal/application/lock"
	"github.com/quotient-crm/approval-engine/internal/application/port"
	"github.com/quotient-crm/approval-engine/internal/domain/approval"
	"github.com/quotient-crm/approval-engine/internal/domain/event"
	"github.com/quotient-crm/approval-engine/internal/domain/policy"
	domainwf "github.com/quotient-crm/approval-engine/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	approvals  port.ApprovalRepository
	quotations port.QuotationRepository
	identity   port.IdentityDirectory
	locks      *lock.Coordinator
	txManager  port.TransactionManager
	thresholds policy.Thresholds
	dispatcher dispatcher.Dispatcher
	logger     Logger
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for emitting events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// WithLogger sets the engine logger
func WithLogger(l Logger) EngineOption {
	return func(e *engineImpl) {
		e.logger = l
	}
}

// NewEngine creates a new workflow engine
func NewEngine(
	approvals port.ApprovalRepository,
	quotations port.QuotationRepository,
	identity port.IdentityDirectory,
	locks *lock.Coordinator,
	txManager port.TransactionManager,
	thresholds policy.Thresholds,
	opts ...EngineOption,
) Engine {
	e := &engineImpl{
		approvals:  approvals,
		quotations: quotations,
		identity:   identity,
		locks:      locks,
		txManager:  txManager,
		thresholds: thresholds,
		logger:     noopLogger{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Submit evaluates policy and, when approval is required, atomically locks
// the quotation and creates the request.
func (e *engineImpl) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}

	if _, err := e.quotations.GetByID(ctx, in.QuotationID); err != nil {
		return nil, fmt.Errorf("quotation %s: %w", in.QuotationID, err)
	}

	auth, err := e.identity.ResolveAuthority(ctx, in.SubmitterID)
	if err != nil {
		return nil, fmt.Errorf("resolve submitter %s: %w", in.SubmitterID, err)
	}

	decision := policy.Evaluate(in.DiscountPct, auth.DiscountCap, e.thresholds)
	if !decision.RequiresApproval {
		e.logger.Info("Discount within submitter authority, no approval required",
			"quotation_id", in.QuotationID,
			"submitter_id", in.SubmitterID,
			"discount_pct", in.DiscountPct,
		)
		return &SubmitResult{RequiresApproval: false}, nil
	}

	approver, err := e.resolveApprover(ctx, decision.Level)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req := &approval.Request{
		ID:               uuid.NewString(),
		QuotationID:      in.QuotationID,
		RequestedBy:      in.SubmitterID,
		Approver:         approver,
		Status:           approval.StatusPending,
		DiscountPct:      in.DiscountPct,
		Threshold:        decision.Threshold,
		Level:            decision.Level,
		EscalatedToAdmin: decision.EscalatedToAdmin,
		Reason:           in.Reason,
		RequestedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Drive the lifecycle machine from the empty state; the store write
	// below is what makes the transition durable
	machine := BuildApprovalStateMachine(&approval.Request{Status: ""})
	if err := machine.Fire(ctx, domainwf.TriggerSubmit); err != nil {
		return nil, translateMachineErr(err)
	}

	// Lock acquisition and record creation are indivisible: either both
	// commit or neither does
	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := e.locks.Acquire(txCtx, in.QuotationID, req.ID); err != nil {
			return err
		}
		if err := e.approvals.Create(txCtx, req); err != nil {
			return fmt.Errorf("create approval request: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, approval.ErrAlreadyLocked) || errors.Is(err, approval.ErrDuplicatePendingRequest) {
			return nil, fmt.Errorf("%w: quotation %s", approval.ErrRequestAlreadyOpen, in.QuotationID)
		}
		e.logger.Error("Failed to submit approval request",
			"quotation_id", in.QuotationID,
			"error", err,
		)
		return nil, err
	}

	e.logger.Info("Approval request created",
		"approval_id", req.ID,
		"quotation_id", req.QuotationID,
		"level", req.Level,
		"escalated_to_admin", req.EscalatedToAdmin,
	)

	e.emit(ctx, event.New(event.TypeRequested, req.ID, req.QuotationID, in.SubmitterID, map[string]interface{}{
		"discount_pct":       req.DiscountPct,
		"threshold":          req.Threshold,
		"level":              req.Level.String(),
		"escalated_to_admin": req.EscalatedToAdmin,
		"approver":           req.Approver,
	}))

	return &SubmitResult{RequiresApproval: true, Request: req}, nil
}

// Approve decides a pending request positively
func (e *engineImpl) Approve(ctx context.Context, approvalID, approverID, comments string) (*approval.Request, error) {
	return e.decide(ctx, approvalID, approverID, comments, domainwf.TriggerApprove)
}

// Reject decides a pending request negatively
func (e *engineImpl) Reject(ctx context.Context, approvalID, approverID, comments string) (*approval.Request, error) {
	return e.decide(ctx, approvalID, approverID, comments, domainwf.TriggerReject)
}

// decide executes a terminal decision: optimistic transition, lock release,
// and, on approval, discount application, all in one transaction.
func (e *engineImpl) decide(ctx context.Context, approvalID, approverID, comments string, trigger domainwf.Trigger) (*approval.Request, error) {
	req, err := e.approvals.GetByID(ctx, approvalID)
	if err != nil {
		return nil, fmt.Errorf("approval %s: %w", approvalID, err)
	}

	machine := BuildApprovalStateMachine(req)
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, translateMachineErr(err)
	}

	auth, err := e.identity.ResolveAuthority(ctx, approverID)
	if err != nil {
		return nil, fmt.Errorf("resolve approver %s: %w", approverID, err)
	}
	if !auth.Role.CanDecide(req.EffectiveLevel()) {
		return nil, fmt.Errorf("%w: %s cannot decide %s-level request %s",
			approval.ErrUnauthorized, approverID, req.EffectiveLevel(), approvalID)
	}

	approved := trigger == domainwf.TriggerApprove
	var updated *approval.Request

	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		now := time.Now()
		updated, err = e.approvals.Transition(txCtx, approvalID, approval.StatusPending, func(r *approval.Request) error {
			// The snapshot check above can be stale: an escalation commits
			// without changing status, so the effective tier is re-validated
			// against the row as stored
			if !auth.Role.CanDecide(r.EffectiveLevel()) {
				return fmt.Errorf("%w: %s cannot decide %s-level request %s",
					approval.ErrUnauthorized, approverID, r.EffectiveLevel(), approvalID)
			}

			r.Approver = approverID
			r.Comments = comments
			if approved {
				r.Status = approval.StatusApproved
				r.ApprovedAt = &now
			} else {
				r.Status = approval.StatusRejected
				r.RejectedAt = &now
			}
			return nil
		})
		if err != nil {
			return err
		}

		if err := e.locks.Release(txCtx, req.QuotationID); err != nil {
			return err
		}

		if approved {
			if err := e.quotations.ApplyDiscount(txCtx, req.QuotationID, req.DiscountPct); err != nil {
				return fmt.Errorf("apply discount to quotation %s: %w", req.QuotationID, err)
			}
		}

		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, approval.ErrConcurrentModification):
			return nil, fmt.Errorf("%w: approval %s", approval.ErrAlreadyDecided, approvalID)
		case errors.Is(err, approval.ErrUnauthorized):
			return nil, err
		}
		e.logger.Error("Failed to decide approval request",
			"approval_id", approvalID,
			"trigger", trigger,
			"error", err,
		)
		return nil, err
	}

	e.logger.Info("Approval request decided",
		"approval_id", approvalID,
		"quotation_id", req.QuotationID,
		"status", updated.Status,
		"approver_id", approverID,
	)

	evtType := event.TypeRejected
	if approved {
		evtType = event.TypeApproved
	}
	e.emit(ctx, event.New(evtType, approvalID, req.QuotationID, approverID, map[string]interface{}{
		"discount_pct": req.DiscountPct,
		"comments":     comments,
	}))

	return updated, nil
}

// Escalate re-targets a pending manager-level request to the admin approver
func (e *engineImpl) Escalate(ctx context.Context, approvalID, escalatorID string) (*approval.Request, error) {
	req, err := e.approvals.GetByID(ctx, approvalID)
	if err != nil {
		return nil, fmt.Errorf("approval %s: %w", approvalID, err)
	}

	machine := BuildApprovalStateMachine(req)
	if err := machine.Fire(ctx, domainwf.TriggerEscalate); err != nil {
		return nil, translateMachineErr(err)
	}

	auth, err := e.identity.ResolveAuthority(ctx, escalatorID)
	if err != nil {
		return nil, fmt.Errorf("resolve escalator %s: %w", escalatorID, err)
	}
	if !auth.Role.CanDecide(approval.LevelManager) {
		return nil, fmt.Errorf("%w: %s cannot escalate request %s",
			approval.ErrUnauthorized, escalatorID, approvalID)
	}

	adminID, err := e.identity.ResolveAdminApprover(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve admin approver: %w", err)
	}

	previousApprover := req.Approver
	var updated *approval.Request

	// Escalation retains the quotation lock: the request stays PENDING,
	// only the required tier and assignee change
	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		updated, err = e.approvals.Transition(txCtx, approvalID, approval.StatusPending, func(r *approval.Request) error {
			// The machine guard ran on a snapshot; a concurrent escalation
			// leaves status PENDING, so the flag is re-checked on the row as
			// stored and set exactly once
			if r.EscalatedToAdmin {
				return fmt.Errorf("%w: approval %s is already escalated", approval.ErrInvalidTransition, approvalID)
			}

			r.EscalatedToAdmin = true
			r.Approver = adminID
			return nil
		})
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, approval.ErrConcurrentModification):
			return nil, fmt.Errorf("%w: approval %s", approval.ErrAlreadyDecided, approvalID)
		case errors.Is(err, approval.ErrInvalidTransition):
			return nil, err
		}
		e.logger.Error("Failed to escalate approval request",
			"approval_id", approvalID,
			"error", err,
		)
		return nil, err
	}

	e.logger.Info("Approval request escalated",
		"approval_id", approvalID,
		"quotation_id", req.QuotationID,
		"previous_approver", previousApprover,
		"new_approver", adminID,
	)

	e.emit(ctx, event.New(event.TypeEscalated, approvalID, req.QuotationID, escalatorID, map[string]interface{}{
		"previous_approver": previousApprover,
		"new_approver":      adminID,
	}))

	return updated, nil
}

// GetRequest retrieves a request by ID
func (e *engineImpl) GetRequest(ctx context.Context, approvalID string) (*approval.Request, error) {
	return e.approvals.GetByID(ctx, approvalID)
}

// PendingForQuotation returns the open request for a quotation, if any
func (e *engineImpl) PendingForQuotation(ctx context.Context, quotationID string) (*approval.Request, error) {
	return e.approvals.FindPendingByQuotation(ctx, quotationID)
}

// ListRequests returns requests across quotations with pagination
func (e *engineImpl) ListRequests(ctx context.Context, limit, offset int) ([]*approval.Request, error) {
	return e.approvals.List(ctx, limit, offset)
}

// ListForQuotation returns the full approval history of a quotation
func (e *engineImpl) ListForQuotation(ctx context.Context, quotationID string) ([]*approval.Request, error) {
	return e.approvals.ListByQuotation(ctx, quotationID)
}

// resolveApprover picks the initial assignee for a new request
func (e *engineImpl) resolveApprover(ctx context.Context, level approval.Level) (string, error) {
	switch level {
	case approval.LevelAdmin:
		id, err := e.identity.ResolveAdminApprover(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve admin approver: %w", err)
		}
		return id, nil
	default:
		id, err := e.identity.ResolveManagerApprover(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve manager approver: %w", err)
		}
		return id, nil
	}
}

// emit dispatches an event without blocking the operation
func (e *engineImpl) emit(ctx context.Context, evt *event.Event) {
	if e.dispatcher != nil {
		e.dispatcher.DispatchAsync(ctx, evt)
	}
}

func validateSubmit(in SubmitInput) error {
	if in.QuotationID == "" {
		return fmt.Errorf("quotation id is required")
	}
	if in.SubmitterID == "" {
		return fmt.Errorf("submitter id is required")
	}
	if in.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	if in.DiscountPct <= 0 || in.DiscountPct > 100 {
		return fmt.Errorf("discount percentage must be within (0, 100], got %.2f", in.DiscountPct)
	}
	return nil
}

// translateMachineErr maps state machine failures onto the engine's error
// taxonomy: a disallowed trigger and a failed guard both mean the operation
// is not valid for the request's current state.
func translateMachineErr(err error) error {
	if errors.Is(err, domainwf.ErrInvalidTransition) || errors.Is(err, domainwf.ErrGuardFailed) {
		return fmt.Errorf("%w: %v", approval.ErrInvalidTransition, err)
	}
	return err
}

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}
