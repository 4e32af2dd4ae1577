package apperr

import "errors"

// Sentinel errors shared across the order/payment core. Services wrap these
// with fmt.Errorf("%w: ...") so callers can match with errors.Is while logs
// keep the detail.
var (
	// ErrValidation marks bad input. Never retried, surfaced to the caller.
	ErrValidation = errors.New("validation error")

	// ErrConflict marks a tripped concurrent-mutation guard. Benign: the
	// caller re-reads current state instead of retrying blindly.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks a missing order record.
	ErrNotFound = errors.New("order not found")

	// ErrUnknownTransaction marks a payment event whose transaction id is
	// attached to no order.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrGatewayUnavailable marks a transport-level provider failure
	// (network error, timeout, 5xx). Transient; the caller may retry.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayRejected marks a structured provider rejection. Permanent
	// for that attempt.
	ErrGatewayRejected = errors.New("payment gateway rejected request")

	// ErrDuplicateEvent marks a webhook delivery already seen within the
	// dedup window. Acknowledged, never retried.
	ErrDuplicateEvent = errors.New("duplicate event")

	// ErrAuthentication marks a webhook that failed the signature check.
	ErrAuthentication = errors.New("authentication failure")
)
