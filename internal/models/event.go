package models

import "time"

// CheckinEvent is a time-boxed gathering (e.g. "Sunday Morning Service")
// a check-in may be associated with. Distinct from an individual child's
// attendance record.
type CheckinEvent struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	StartsAt       time.Time `json:"startsAt"`
	EndsAt         time.Time `json:"endsAt"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsOpen reports whether the event is active and the instant falls in its window
func (e *CheckinEvent) IsOpen(at time.Time) bool {
	return e.IsActive && !at.Before(e.StartsAt) && !at.After(e.EndsAt)
}
