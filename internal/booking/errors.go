// Package booking implements the reservation lifecycle engine: window
// validation, conflict detection, payment reconciliation and the booking
// state machine. Handlers translate the sentinel errors defined here into
// HTTP responses; the engine itself knows nothing about transport.
package booking

import "errors"

// Sentinel errors returned by the engine and its Store implementations.
// Callers distinguish failure classes with errors.Is; messages carry extra
// detail via %w wrapping.
var (
	// ErrInvalidRequest signals a malformed or incomplete booking request
	// (missing date, zero duration, window crossing midnight). Never worth
	// retrying without fixing the input.
	ErrInvalidRequest = errors.New("invalid booking request")

	// ErrCourtNotFound is returned when the requested court does not exist
	// in the arena catalog.
	ErrCourtNotFound = errors.New("court not found")

	// ErrBookingNotFound is returned by lookups and cancellations when no
	// booking with the given id belongs to the caller.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrSlotConflict is the authoritative double-booking rejection: the
	// requested window overlaps an active booking on the same court and
	// date. Retrying with the same window will fail again.
	ErrSlotConflict = errors.New("court already booked for the requested time")

	// ErrPaymentNotFound is returned when the supplied authorization id is
	// unknown to the payment gateway.
	ErrPaymentNotFound = errors.New("payment authorization not found")

	// ErrPaymentMismatch is returned when the authorization exists but is
	// bound to a different court, user or amount than the request claims.
	ErrPaymentMismatch = errors.New("payment authorization mismatch")

	// ErrPaymentIncomplete is returned when the authorization has not
	// settled (its provider-side status is not succeeded).
	ErrPaymentIncomplete = errors.New("payment authorization not settled")

	// ErrInvalidTransition is returned when a status change is attempted on
	// a booking that is no longer active. Cancelled and completed are
	// terminal.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrStoreUnavailable wraps infrastructure failures from the store,
	// catalog or payment gateway. The only class where a caller-side retry
	// with backoff is reasonable.
	ErrStoreUnavailable = errors.New("booking store unavailable")
)
