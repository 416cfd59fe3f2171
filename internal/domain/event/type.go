package event

// Type identifies the type of domain event
type Type string

const (
	TypeRequested Type = "approval.requested"
	TypeApproved  Type = "approval.approved"
	TypeRejected  Type = "approval.rejected"
	TypeEscalated Type = "approval.escalated"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeRequested, TypeApproved, TypeRejected, TypeEscalated:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the event marks the end of a request's lifecycle
func (t Type) IsTerminal() bool {
	return t == TypeApproved || t == TypeRejected
}
