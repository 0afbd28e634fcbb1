package service

import (
	"errors"
	"fmt"
)

var (
	ErrFamilyNotFound   = errors.New("family not found")
	ErrGuardianNotFound = errors.New("guardian not found")
	ErrChildNotFound    = errors.New("child not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomInactive     = errors.New("room is not active")
	ErrRoomAgeMismatch  = errors.New("child does not fit the room's age band")
	ErrEventNotFound    = errors.New("event not found")
	ErrEventClosed      = errors.New("event is not open for check-in")
	ErrCheckinNotFound  = errors.New("check-in not found")
	ErrCheckinConflict  = errors.New("child is already checked in to this room")
	ErrPickupNotFound   = errors.New("pickup person not found")
	ErrNotAuthorized    = errors.New("guardian is not authorized for pickup")

	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Verification failure reasons
const (
	ReasonNotFound        = "not_found"
	ReasonExpired         = "expired"
	ReasonMismatch        = "mismatch"
	ReasonTooManyAttempts = "too_many_attempts"
)

// VerificationError reports a failed code validation with the reason the
// caller may surface to the kiosk.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed: %s", e.Reason)
}
