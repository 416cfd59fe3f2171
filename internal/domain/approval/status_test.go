package approval

import "testing"

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusPending, false},
		{StatusApproved, true},
		{StatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"pending", StatusPending, true},
		{"approved", StatusApproved, true},
		{"rejected", StatusRejected, true},
		{"invalid", Status("CANCELLED"), false},
		{"empty", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("Status.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRole_CanDecide(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		level    Level
		expected bool
	}{
		{"rep cannot decide manager level", RoleRep, LevelManager, false},
		{"rep cannot decide admin level", RoleRep, LevelAdmin, false},
		{"manager decides manager level", RoleManager, LevelManager, true},
		{"manager cannot decide admin level", RoleManager, LevelAdmin, false},
		{"admin decides manager level", RoleAdmin, LevelManager, true},
		{"admin decides admin level", RoleAdmin, LevelAdmin, true},
		{"unknown level", RoleAdmin, Level("SUPER"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.CanDecide(tt.level); got != tt.expected {
				t.Errorf("Role.CanDecide(%s, %s) = %v, want %v", tt.role, tt.level, got, tt.expected)
			}
		})
	}
}

func TestRequest_EffectiveLevel(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		expected Level
	}{
		{"manager level not escalated", Request{Level: LevelManager}, LevelManager},
		{"manager level escalated", Request{Level: LevelManager, EscalatedToAdmin: true}, LevelAdmin},
		{"admin level from creation", Request{Level: LevelAdmin, EscalatedToAdmin: true}, LevelAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.EffectiveLevel(); got != tt.expected {
				t.Errorf("Request.EffectiveLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRequest_IsOpen(t *testing.T) {
	pending := Request{Status: StatusPending}
	if !pending.IsOpen() {
		t.Error("pending request should be open")
	}

	approved := Request{Status: StatusApproved}
	if approved.IsOpen() {
		t.Error("approved request should not be open")
	}
}
