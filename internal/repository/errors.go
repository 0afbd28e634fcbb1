package repository

import "errors"

// Sentinel errors surfaced by repositories when a storage constraint
// rejects a write. Services translate these into domain errors.
var (
	// ErrActiveCheckinExists is returned when a child already has an open
	// check-in for the same room.
	ErrActiveCheckinExists = errors.New("child already has an active check-in for this room")

	// ErrAlreadyLinked is returned when a guardian is already linked to
	// the family.
	ErrAlreadyLinked = errors.New("guardian is already linked to this family")

	// ErrDuplicateEmail is returned when a staff email is already taken
	// within the organization.
	ErrDuplicateEmail = errors.New("email is already registered in this organization")
)
