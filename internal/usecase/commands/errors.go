package commands

import "homestay/internal/pkg/errs"

// Sentinel errors grouped by how callers should react. Handlers branch on
// these to pick a status code; nothing below the handler layer ever reaches a
// caller as an unstructured failure.
var (
	// Validation: user-correctable input, never retried automatically.
	ErrPropertyNotFound    = errs.New("property not found")
	ErrBookingNotFound     = errs.New("booking not found")
	ErrPaymentNotFound     = errs.New("payment not found")
	ErrDomainValidation    = errs.New("domain validation error")
	ErrInvalidRefundAmount = errs.New("invalid refund amount")

	// Conflict: retryable by choosing different input.
	ErrDateConflict            = errs.New("requested dates are unavailable")
	ErrDuplicatePaymentAttempt = errs.New("an active payment already exists for this booking")

	// Transient: the caller may retry with backoff; local state is untouched.
	ErrGatewayUnavailable      = errs.New("payment gateway is not available")
	ErrGatewayFailure          = errs.New("payment gateway call failed")
	ErrDatabaseOperationFailed = errs.New("database operation failed")

	// Integrity: an invalid state transition was attempted; indicates a bug
	// or a lost race, logged and rejected, never silently coerced.
	ErrInvalidStateTransition = errs.New("invalid state transition")

	// The gateway has not settled the intent yet; neither success nor failure
	// can be applied.
	ErrPaymentNotSettled = errs.New("payment is not settled yet")

	// Authorization boundary: the actor does not own the entity.
	ErrActorNotAllowed = errs.New("actor is not allowed to act on this entity")
)
