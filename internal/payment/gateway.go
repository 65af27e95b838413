// Package payment gives the booking engine read access to externally
// created payment authorizations. The engine never initiates card
// processing; it only fetches an authorization by id and cross-checks the
// identifiers it was bound to.
package payment

import "errors"

// StatusSucceeded is the provider-side status of a settled authorization.
// Any other status (pending, requires_action, failed, ...) means the
// payment has not completed.
const StatusSucceeded = "succeeded"

// ErrAuthorizationNotFound is returned when the gateway has no record of
// the requested authorization id.
var ErrAuthorizationNotFound = errors.New("payment authorization not found")

// Authorization is the gateway's view of a payment: how much was
// authorized, whether it settled, and which court/user it was created for.
// The booking engine treats these fields as untrusted input until it has
// verified them against the incoming request.
type Authorization struct {
	ID          string
	AmountCents uint32
	Status      string
	CourtID     uint64
	UserID      uint64
}
