package models

import "time"

// PickupPerson is a non-guardian adult authorized to retrieve a child
// for one specific check-in. Entries are scoped to that check-in and
// deleted in cascade with it; they never carry across sessions.
type PickupPerson struct {
	ID           string    `json:"id"`
	CheckinID    string    `json:"checkinId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Relationship string    `json:"relationship"`
	PhotoURL     string    `json:"photoUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
