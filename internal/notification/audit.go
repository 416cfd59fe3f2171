// Package notification holds the event consumers wired into the dispatcher:
// an audit trail writer and an optional outbound webhook. Both sit on the
// far side of the engine's fire-and-forget boundary.
package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/quotient-crm/approval-engine/internal/application/dispatcher"
	"github.com/quotient-crm/approval-engine/internal/domain/event"
)

// AuditLogger records every workflow transition as a structured log entry.
// It is the minimal audit-trail collaborator; storage and rendering of the
// trail belong to the reporting subsystem.
type AuditLogger struct {
	logger *zap.Logger
}

// NewAuditLogger creates an audit logger
func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// Handle implements dispatcher.Handler
func (a *AuditLogger) Handle(ctx context.Context, evt *event.Event) error {
	a.logger.Info("approval audit",
		zap.String("event_id", evt.ID),
		zap.String("event_type", evt.Type.String()),
		zap.String("approval_id", evt.ApprovalID),
		zap.String("quotation_id", evt.QuotationID),
		zap.String("actor_id", evt.ActorID),
		zap.Time("timestamp", evt.Timestamp),
		zap.Any("payload", evt.Payload),
	)
	return nil
}

// Register subscribes the audit logger to every workflow event type
func (a *AuditLogger) Register(d dispatcher.Dispatcher) {
	for _, t := range []event.Type{
		event.TypeRequested,
		event.TypeApproved,
		event.TypeRejected,
		event.TypeEscalated,
	} {
		d.SubscribeNamed(t, "audit-logger", a.Handle)
	}
}
