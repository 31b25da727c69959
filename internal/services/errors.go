// Package services defines the business logic for outbox messages,
// follow-ups, and recalls. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrRowNotFound indicates the requested row is not present in the
	// current poll state.
	ErrRowNotFound = errors.New("row not found")

	// ErrMissingAppointmentID is returned when a write-back cannot be
	// addressed because the row carries no appointment identifier or any
	// other lookup key.
	ErrMissingAppointmentID = errors.New("row has no appointment id")

	// ErrInvalidStatus is returned when a requested status value is outside
	// the allowed set for the row's feed.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidTransition is returned when the requested status change is
	// not a legal move from the row's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidPhone is returned when a details edit supplies a phone
	// number that cannot form a WhatsApp link.
	ErrInvalidPhone = errors.New("invalid phone number")
)
