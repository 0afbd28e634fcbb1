package models

import "time"

// Child represents a child belonging to a family
type Child struct {
	ID             string    `json:"id"`
	FamilyID       string    `json:"familyId"`
	OrganizationID string    `json:"organizationId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	DateOfBirth    time.Time `json:"dateOfBirth"`
	Allergies      string    `json:"allergies,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	PhotoURL       string    `json:"photoUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AgeOn returns the child's age in whole years on the given date
func (c *Child) AgeOn(date time.Time) int {
	years := date.Year() - c.DateOfBirth.Year()
	anniversary := c.DateOfBirth.AddDate(years, 0, 0)
	if anniversary.After(date) {
		years--
	}
	return years
}
