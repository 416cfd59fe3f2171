package port

import (
	"context"

	"github.com/quotient-crm/approval-engine/internal/domain/approval"
)

// Authority is an actor's decision power as resolved from the identity store
type Authority struct {
	Role        approval.Role
	DiscountCap float64
}

// IdentityDirectory resolves actors against the external identity store.
// The engine consumes it read-only; user and role management live elsewhere.
type IdentityDirectory interface {
	// ResolveAuthority returns the authority tier for a user;
	// approval.ErrNotFound for unknown users
	ResolveAuthority(ctx context.Context, userID string) (Authority, error)

	// ResolveManagerApprover returns the user ID a manager-level request
	// is assigned to at creation
	ResolveManagerApprover(ctx context.Context) (string, error)

	// ResolveAdminApprover returns the user ID admin-level and escalated
	// requests are assigned to
	ResolveAdminApprover(ctx context.Context) (string, error)
}
