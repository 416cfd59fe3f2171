package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/quotient-crm/approval-engine/internal/domain/approval"
)

func roster() []User {
	return []User{
		{ID: "u-rep", Role: approval.RoleRep, DiscountCap: 10},
		{ID: "u-manager", Role: approval.RoleManager, DiscountCap: 20},
		{ID: "u-admin", Role: approval.RoleAdmin, DiscountCap: 100},
	}
}

func TestNewDirectory(t *testing.T) {
	d, err := NewDirectory(roster(), "u-manager", "u-admin")
	if err != nil {
		t.Fatalf("NewDirectory() error = %v", err)
	}

	manager, err := d.ResolveManagerApprover(context.Background())
	if err != nil || manager != "u-manager" {
		t.Errorf("ResolveManagerApprover() = (%q, %v)", manager, err)
	}

	admin, err := d.ResolveAdminApprover(context.Background())
	if err != nil || admin != "u-admin" {
		t.Errorf("ResolveAdminApprover() = (%q, %v)", admin, err)
	}
}

func TestNewDirectory_Invalid(t *testing.T) {
	tests := []struct {
		name            string
		users           []User
		managerApprover string
		adminApprover   string
	}{
		{
			name:            "empty user id",
			users:           append(roster(), User{ID: "", Role: approval.RoleRep}),
			managerApprover: "u-manager",
			adminApprover:   "u-admin",
		},
		{
			name:            "invalid role",
			users:           append(roster(), User{ID: "u-x", Role: "intern"}),
			managerApprover: "u-manager",
			adminApprover:   "u-admin",
		},
		{
			name:            "duplicate user",
			users:           append(roster(), User{ID: "u-rep", Role: approval.RoleRep}),
			managerApprover: "u-manager",
			adminApprover:   "u-admin",
		},
		{
			name:            "manager approver not in roster",
			users:           roster(),
			managerApprover: "ghost",
			adminApprover:   "u-admin",
		},
		{
			name:            "admin approver not in roster",
			users:           roster(),
			managerApprover: "u-manager",
			adminApprover:   "ghost",
		},
		{
			name:            "admin approver lacks admin role",
			users:           roster(),
			managerApprover: "u-manager",
			adminApprover:   "u-manager",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDirectory(tt.users, tt.managerApprover, tt.adminApprover); err == nil {
				t.Error("NewDirectory() should fail")
			}
		})
	}
}

func TestResolveAuthority(t *testing.T) {
	d, err := NewDirectory(roster(), "u-manager", "u-admin")
	if err != nil {
		t.Fatalf("NewDirectory() error = %v", err)
	}

	auth, err := d.ResolveAuthority(context.Background(), "u-rep")
	if err != nil {
		t.Fatalf("ResolveAuthority() error = %v", err)
	}
	if auth.Role != approval.RoleRep || auth.DiscountCap != 10 {
		t.Errorf("ResolveAuthority() = %+v", auth)
	}

	_, err = d.ResolveAuthority(context.Background(), "ghost")
	if !errors.Is(err, approval.ErrNotFound) {
		t.Errorf("ResolveAuthority(ghost) error = %v, want ErrNotFound", err)
	}
}
