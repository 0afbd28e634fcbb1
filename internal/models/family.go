package models

import "time"

// Family represents a household grouping of guardians and children
// within one organization.
type Family struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name,omitempty"`
	// PrimaryGuardianID points at the designated primary guardian.
	// When nil, readers fall back to the earliest guardian link.
	PrimaryGuardianID *string   `json:"primaryGuardianId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Guardian represents an adult who may check children in and out.
// Phone is unique within an organization for kiosk lookup.
type Guardian struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email,omitempty"`
	PhotoURL       string    `json:"photoUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// FamilyGuardian links a guardian to a family with relationship metadata
type FamilyGuardian struct {
	ID           string    `json:"id"`
	FamilyID     string    `json:"familyId"`
	GuardianID   string    `json:"guardianId"`
	Relationship string    `json:"relationship"` // e.g. "parent", "grandparent"
	CanPickup    bool      `json:"canPickup"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FamilyWithMembers combines a family with its guardians and children
type FamilyWithMembers struct {
	Family    Family     `json:"family"`
	Guardians []Guardian `json:"guardians"`
	Children  []Child    `json:"children"`
}
