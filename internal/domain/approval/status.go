// Package approval holds the core entities and error taxonomy of the
// discount approval domain.
package approval

// Status represents the lifecycle status of an approval request
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var validStatuses = map[Status]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

var terminalStatuses = map[Status]bool{
	StatusApproved: true,
	StatusRejected: true,
}

// IsTerminal returns true if the status allows no further transitions
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a defined lifecycle status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Level represents the approval tier a request requires. It is fixed at
// creation; escalation changes the effective tier, never the level itself.
type Level string

const (
	LevelManager Level = "MANAGER"
	LevelAdmin   Level = "ADMIN"
)

var validLevels = map[Level]bool{
	LevelManager: true,
	LevelAdmin:   true,
}

// IsValid returns true if the level is a defined approval tier
func (l Level) IsValid() bool {
	return validLevels[l]
}

// String returns the string representation of the level
func (l Level) String() string {
	return string(l)
}

// Role represents a user's position in the approval hierarchy
type Role string

const (
	RoleRep     Role = "REP"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RoleRep:     true,
	RoleManager: true,
	RoleAdmin:   true,
}

// IsValid returns true if the role is a defined role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// CanDecide returns true if a holder of this role may approve, reject, or
// escalate a request at the given tier. Admins cover every tier; managers
// cover only the manager tier.
func (r Role) CanDecide(level Level) bool {
	switch level {
	case LevelManager:
		return r == RoleManager || r == RoleAdmin
	case LevelAdmin:
		return r == RoleAdmin
	default:
		return false
	}
}
