// Package store owns the authoritative reservation table and the
// lifecycle state machine.  These sentinel values let handlers map
// failure scenarios to HTTP responses without string matching.  All of
// them are recoverable and user-facing; an operation either fully
// commits a transition or leaves prior state untouched.
package store

import "errors"

// ErrNotFound is returned when a reservation, seat or appeal id does
// not exist.  Handlers should translate this into a 404 response.
var ErrNotFound = errors.New("not found")

// ErrInvalidState is returned when an illegal lifecycle transition is
// attempted.  The reservation is left untouched.  Handlers should
// translate this into a 409 response.
var ErrInvalidState = errors.New("invalid state")

// ErrSeatUnavailable is returned when the seat already has an active
// reservation, is under maintenance, or is being contended by a
// concurrent booking attempt.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrUserAlreadyActive is returned when the user already holds an
// active reservation; a user cannot hold two at once.
var ErrUserAlreadyActive = errors.New("user already has an active reservation")

// ErrWindowExpired is returned when a check-in is attempted outside the
// allowed window, or a return from away after the grace deadline.
var ErrWindowExpired = errors.New("check-in window expired")

// ErrProofInvalid is returned when the QR token or geofence check
// fails.
var ErrProofInvalid = errors.New("check-in proof invalid")

// ErrCreditTooLow is returned when the user's credit score is below the
// configured minimum required to reserve.
var ErrCreditTooLow = errors.New("credit score too low")

// ErrAuthorizationDenied is returned when the caller lacks the role
// required for the operation, or is not the reservation owner.
// Handlers should translate this into a 403 response.
var ErrAuthorizationDenied = errors.New("authorization denied")
