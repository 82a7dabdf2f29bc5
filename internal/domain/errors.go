package domain

import "errors"

// Sentinel errors for attendance operations. Every expected, locally
// recoverable outcome is one of these; anything else is an unexpected
// storage or infrastructure failure and is wrapped on the way up.
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrEventClosed          = errors.New("event is closed")
	ErrNotParticipating     = errors.New("not participating in this event")
	ErrCapacityExceeded     = errors.New("capacity exceeded")
	ErrNoChange             = errors.New("vote unchanged")
	ErrCapacityBelowCurrent = errors.New("capacity below current attendance")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrEmptyTitle           = errors.New("title must not be empty")
	ErrInvalidCapacity      = errors.New("capacity must be a positive integer")
	ErrInvalidGuestCount    = errors.New("guest count must be zero or greater")
	ErrNoPendingAction      = errors.New("no pending admin action")
)
