package workflow

// Trigger represents an operation that can cause a state transition
type Trigger string

const (
	TriggerSubmit   Trigger = "SUBMIT"
	TriggerApprove  Trigger = "APPROVE"
	TriggerReject   Trigger = "REJECT"
	TriggerEscalate Trigger = "ESCALATE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
