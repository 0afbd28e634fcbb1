package models

import "time"

// Room represents a supervised space children are checked into
type Room struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	MinAge         *int      `json:"minAge,omitempty"`
	MaxAge         *int      `json:"maxAge,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AcceptsAge reports whether a child of the given age fits the room's age band
func (r *Room) AcceptsAge(age int) bool {
	if r.MinAge != nil && age < *r.MinAge {
		return false
	}
	if r.MaxAge != nil && age > *r.MaxAge {
		return false
	}
	return true
}

// RoomWithCount pairs a room with its current active check-in count
type RoomWithCount struct {
	Room        Room `json:"room"`
	ActiveCount int  `json:"activeCount"`
}
