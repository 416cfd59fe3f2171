package event

import (
	"time"

	"github.com/google/uuid"
)

// Event records a workflow state transition for external collaborators
// (notification dispatch, audit trail). Delivery semantics belong to the
// consumer; the engine fires and forgets.
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	ApprovalID    string                 `json:"approval_id"`
	QuotationID   string                 `json:"quotation_id"`
	ActorID       string                 `json:"actor_id"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// New creates a new domain event with auto-generated ID and timestamp
func New(eventType Type, approvalID, quotationID, actorID string, payload map[string]interface{}) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ApprovalID:    approvalID,
		QuotationID:   quotationID,
		ActorID:       actorID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: uuid.NewString(),
	}
}

// NewWithCorrelation creates an event linked to an existing correlation chain
func NewWithCorrelation(eventType Type, approvalID, quotationID, actorID string, payload map[string]interface{}, correlationID string) *Event {
	e := New(eventType, approvalID, quotationID, actorID, payload)
	e.CorrelationID = correlationID
	return e
}

// WithPayload returns a copy of the event with an added payload entry
func (e *Event) WithPayload(key string, value interface{}) *Event {
	newPayload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		newPayload[k] = v
	}
	newPayload[key] = value

	clone := *e
	clone.Payload = newPayload
	return &clone
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetPayloadFloat retrieves a float64 value from the payload
func (e *Event) GetPayloadFloat(key string) float64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int64:
			return float64(v)
		case int:
			return float64(v)
		}
	}
	return 0.0
}

// GetPayloadBool retrieves a bool value from the payload
func (e *Event) GetPayloadBool(key string) bool {
	if val, ok := e.Payload[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
