// Package identity adapts the configured user roster to the engine's
// identity port. It stands in for the external identity store; user and
// role management are not this service's concern.
package identity

import (
	"context"
	"fmt"

	"github.com/quotient-crm/approval-engine/internal/application/port"
	"github.com/quotient-crm/approval-engine/internal/domain/approval"
)

// User is a roster entry with its authority tier
type User struct {
	ID          string
	Role        approval.Role
	DiscountCap float64
}

// Directory is a static, config-backed identity directory
type Directory struct {
	users           map[string]User
	managerApprover string
	adminApprover   string
}

// NewDirectory builds a directory from a user roster and the default
// assignees for manager and admin level requests
func NewDirectory(users []User, managerApprover, adminApprover string) (*Directory, error) {
	byID := make(map[string]User, len(users))
	for _, u := range users {
		if u.ID == "" {
			return nil, fmt.Errorf("user with empty id in roster")
		}
		if !u.Role.IsValid() {
			return nil, fmt.Errorf("user %s has invalid role %q", u.ID, u.Role)
		}
		if _, dup := byID[u.ID]; dup {
			return nil, fmt.Errorf("duplicate user %s in roster", u.ID)
		}
		byID[u.ID] = u
	}

	if _, ok := byID[managerApprover]; !ok {
		return nil, fmt.Errorf("manager approver %q not in roster", managerApprover)
	}
	if _, ok := byID[adminApprover]; !ok {
		return nil, fmt.Errorf("admin approver %q not in roster", adminApprover)
	}
	if role := byID[adminApprover].Role; role != approval.RoleAdmin {
		return nil, fmt.Errorf("admin approver %q has role %s, want %s", adminApprover, role, approval.RoleAdmin)
	}

	return &Directory{
		users:           byID,
		managerApprover: managerApprover,
		adminApprover:   adminApprover,
	}, nil
}

// ResolveAuthority returns the authority tier for a user
func (d *Directory) ResolveAuthority(ctx context.Context, userID string) (port.Authority, error) {
	u, ok := d.users[userID]
	if !ok {
		return port.Authority{}, fmt.Errorf("user %s: %w", userID, approval.ErrNotFound)
	}
	return port.Authority{
		Role:        u.Role,
		DiscountCap: u.DiscountCap,
	}, nil
}

// ResolveManagerApprover returns the default assignee for manager-level requests
func (d *Directory) ResolveManagerApprover(ctx context.Context) (string, error) {
	return d.managerApprover, nil
}

// ResolveAdminApprover returns the default assignee for admin-level and
// escalated requests
func (d *Directory) ResolveAdminApprover(ctx context.Context) (string, error) {
	return d.adminApprover, nil
}

// Verify interface compliance
var _ port.IdentityDirectory = (*Directory)(nil)
