package domain

import "errors"

// Sentinel errors shared across services. Services wrap storage errors with
// context but always surface one of these for caller-visible outcomes.
var (
	// ErrNotFound is returned when an event, participant, user, or wishlist
	// item reference does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller is not allowed to perform the
	// operation (e.g. not the event's organizer).
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned when the request is structurally valid but
	// semantically wrong (e.g. a schedule timestamp in the past).
	ErrInvalidInput = errors.New("invalid input")
)
