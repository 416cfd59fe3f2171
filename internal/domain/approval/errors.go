package approval

import "errors"

// Sentinel errors forming the domain's error taxonomy. Callers match with
// errors.Is; the HTTP layer maps them onto response statuses.
var (
	// ErrNotFound indicates the referenced request or quotation does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePendingRequest indicates a pending request already exists
	// for the quotation. Raised by the store's uniqueness guarantee.
	ErrDuplicatePendingRequest = errors.New("pending approval request already exists")

	// ErrAlreadyLocked indicates the quotation's approval lock is held
	ErrAlreadyLocked = errors.New("quotation is locked for approval")

	// ErrRequestAlreadyOpen is the submission-level conflict surfaced to
	// callers when either the lock or the uniqueness guarantee trips
	ErrRequestAlreadyOpen = errors.New("approval request already open for quotation")

	// ErrUnauthorized indicates the actor's role does not cover the
	// request's effective tier
	ErrUnauthorized = errors.New("insufficient authority")

	// ErrInvalidTransition indicates the operation is not valid for the
	// request's current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrConcurrentModification indicates another actor changed the request
	// between read and commit
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrAlreadyDecided is the decision-level conflict surfaced when a
	// racing decision committed first
	ErrAlreadyDecided = errors.New("approval request already decided")
)
