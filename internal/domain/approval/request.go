package approval

import "time"

// Request is a discount approval request. DiscountPct, Threshold, and Level
// are immutable snapshots taken at submission time; later policy changes do
// not affect open requests.
type Request struct {
	ID               string     `json:"id"`
	QuotationID      string     `json:"quotation_id"`
	RequestedBy      string     `json:"requested_by"`
	Approver         string     `json:"approver"`
	Status           Status     `json:"status"`
	DiscountPct      float64    `json:"discount_pct"`
	Threshold        float64    `json:"threshold"`
	Level            Level      `json:"level"`
	EscalatedToAdmin bool       `json:"escalated_to_admin"`
	Reason           string     `json:"reason"`
	Comments         string     `json:"comments,omitempty"`
	RequestedAt      time.Time  `json:"requested_at"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// EffectiveLevel returns the tier whose approvers may currently decide the
// request: the admin tier once escalated, the creation level otherwise.
func (r *Request) EffectiveLevel() Level {
	if r.EscalatedToAdmin {
		return LevelAdmin
	}
	return r.Level
}

// IsOpen returns true if the request still awaits a decision
func (r *Request) IsOpen() bool {
	return r.Status == StatusPending
}
