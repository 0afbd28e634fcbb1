package models

import "time"

// CheckinStatus enumerates the lifecycle states of a child check-in
type CheckinStatus string

const (
	StatusCheckedIn  CheckinStatus = "checked-in"
	StatusCheckedOut CheckinStatus = "checked-out"
	StatusNoShow     CheckinStatus = "no-show"
)

// ChildCheckin is an individual attendance record. SecureID is a
// cryptographically random token and the sole capability needed to
// resolve the record from a QR code; it is never derived from the
// primary key or any timestamp.
type ChildCheckin struct {
	ID           string        `json:"id"`
	ChildID      string        `json:"childId"`
	RoomID       string        `json:"roomId"`
	EventID      *string       `json:"eventId,omitempty"`
	SecureID     string        `json:"secureId"`
	Status       CheckinStatus `json:"status"`
	CheckedInAt  time.Time     `json:"checkedInAt"`
	CheckedOutAt *time.Time    `json:"checkedOutAt,omitempty"`
	CheckedInBy  string        `json:"checkedInBy"`
	CheckedOutBy *string       `json:"checkedOutBy,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// IsActive reports whether the child is still checked in
func (c *ChildCheckin) IsActive() bool {
	return c.CheckedOutAt == nil
}
