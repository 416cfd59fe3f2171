package approval

import "time"

// Quotation is the sales document an approval request acts on. Only the
// approval-relevant fields live here; the full quotation belongs to the CRM.
//
// IsPendingApproval and PendingApprovalID always change together: both are
// set when a request opens and both are cleared when it reaches a terminal
// status. Escalation leaves them untouched.
type Quotation struct {
	ID                string    `json:"id"`
	ClientName        string    `json:"client_name"`
	TotalAmount       float64   `json:"total_amount"`
	DiscountPct       float64   `json:"discount_pct"`
	IsPendingApproval bool      `json:"is_pending_approval"`
	PendingApprovalID string    `json:"pending_approval_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsLocked returns true if an open approval request holds the quotation
func (q *Quotation) IsLocked() bool {
	return q.IsPendingApproval
}
