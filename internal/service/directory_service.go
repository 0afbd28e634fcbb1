package service

import (
	"fmt"
	"strings"
	"time"

	"kinderpass/internal/models"
	"kinderpass/internal/repository"
)

// DirectoryService handles family composition: registering families and
// editing their guardians and children. Composition changes are reserved
// for staff; the kiosk flow only reads the directory.
type DirectoryService struct {
	familyRepo *repository.FamilyRepository
	childRepo  *repository.ChildRepository
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(familyRepo *repository.FamilyRepository, childRepo *repository.ChildRepository) *DirectoryService {
	return &DirectoryService{
		familyRepo: familyRepo,
		childRepo:  childRepo,
	}
}

// GuardianInput describes a guardian to register or link
type GuardianInput struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	Phone        string `json:"phone" validate:"required,e164"`
	Email        string `json:"email" validate:"omitempty,email"`
	PhotoURL     string `json:"photoUrl"`
	Relationship string `json:"relationship"`
	CanPickup    *bool  `json:"canPickup"`
}

// ChildInput describes a child to register
type ChildInput struct {
	FirstName   string    `json:"firstName" validate:"required"`
	LastName    string    `json:"lastName" validate:"required"`
	DateOfBirth time.Time `json:"dateOfBirth" validate:"required"`
	Allergies   string    `json:"allergies"`
	Notes       string    `json:"notes"`
	PhotoURL    string    `json:"photoUrl"`
}

// RegisterFamily creates a family with its guardians and children in one
// transaction. The first guardian becomes the primary guardian.
func (s *DirectoryService) RegisterFamily(organizationID, name string, guardians []GuardianInput, children []ChildInput) (*models.FamilyWithMembers, error) {
	if len(guardians) == 0 {
		return nil, &ValidationError{Field: "guardians", Message: "at least one guardian is required"}
	}

	links := make([]repository.GuardianLink, 0, len(guardians))
	for _, g := range guardians {
		links = append(links, guardianLink(g))
	}

	kids := make([]models.Child, 0, len(children))
	for _, c := range children {
		kids = append(kids, models.Child{
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			DateOfBirth: c.DateOfBirth,
			Allergies:   c.Allergies,
			Notes:       c.Notes,
			PhotoURL:    c.PhotoURL,
		})
	}

	family, err := s.familyRepo.RegisterFamily(organizationID, name, links, kids)
	if err != nil {
		return nil, fmt.Errorf("failed to register family: %w", err)
	}
	return family, nil
}

// GetFamily retrieves a family with its guardians and children
func (s *DirectoryService) GetFamily(familyID string) (*models.FamilyWithMembers, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil {
		return nil, ErrFamilyNotFound
	}
	return s.assembleFamily(family)
}

// FindFamilyByPhone resolves a guardian phone number to their family.
// Returns ErrFamilyNotFound when the phone is unknown; the caller cannot
// distinguish an unknown phone from an unregistered family.
func (s *DirectoryService) FindFamilyByPhone(organizationID, phone string) (*models.FamilyWithMembers, *models.Guardian, error) {
	family, guardian, err := s.familyRepo.FindFamilyByGuardianPhone(organizationID, normalizePhone(phone))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up phone: %w", err)
	}
	if family == nil {
		return nil, nil, ErrFamilyNotFound
	}
	members, err := s.assembleFamily(family)
	if err != nil {
		return nil, nil, err
	}
	return members, guardian, nil
}

// AddChild adds a child to an existing family. Families outside the
// organization are indistinguishable from missing ones.
func (s *DirectoryService) AddChild(organizationID, familyID string, input ChildInput) (*models.Child, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil || family.OrganizationID != organizationID {
		return nil, ErrFamilyNotFound
	}

	child := &models.Child{
		FamilyID:       familyID,
		OrganizationID: family.OrganizationID,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		DateOfBirth:    input.DateOfBirth,
		Allergies:      input.Allergies,
		Notes:          input.Notes,
		PhotoURL:       input.PhotoURL,
	}
	if err := s.childRepo.CreateChild(child); err != nil {
		return nil, fmt.Errorf("failed to add child: %w", err)
	}
	return child, nil
}

// UpdateChild updates a child's profile
func (s *DirectoryService) UpdateChild(organizationID, childID string, input ChildInput) (*models.Child, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil || child.OrganizationID != organizationID {
		return nil, ErrChildNotFound
	}

	child.FirstName = input.FirstName
	child.LastName = input.LastName
	child.DateOfBirth = input.DateOfBirth
	child.Allergies = input.Allergies
	child.Notes = input.Notes
	child.PhotoURL = input.PhotoURL

	updated, err := s.childRepo.UpdateChild(child)
	if err != nil {
		return nil, fmt.Errorf("failed to update child: %w", err)
	}
	if !updated {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// RemoveChild deletes a child and their check-in history
func (s *DirectoryService) RemoveChild(organizationID, childID string) error {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil || child.OrganizationID != organizationID {
		return ErrChildNotFound
	}

	deleted, err := s.childRepo.DeleteChild(childID)
	if err != nil {
		return fmt.Errorf("failed to remove child: %w", err)
	}
	if !deleted {
		return ErrChildNotFound
	}
	return nil
}

// AddGuardian links a guardian to a family, creating the guardian record
// when the phone is new to the organization.
func (s *DirectoryService) AddGuardian(organizationID, familyID string, input GuardianInput) (*models.Guardian, error) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil || family.OrganizationID != organizationID {
		return nil, ErrFamilyNotFound
	}

	guardian, err := s.familyRepo.AddGuardian(familyID, guardianLink(input))
	if err != nil {
		if err == repository.ErrAlreadyLinked {
			return nil, &ValidationError{Field: "phone", Message: "guardian is already linked to this family"}
		}
		return nil, fmt.Errorf("failed to add guardian: %w", err)
	}
	if guardian == nil {
		return nil, ErrFamilyNotFound
	}
	return guardian, nil
}

// RemoveGuardian unlinks a guardian from a family
func (s *DirectoryService) RemoveGuardian(organizationID, familyID, guardianID string) error {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil || family.OrganizationID != organizationID {
		return ErrFamilyNotFound
	}

	removed, err := s.familyRepo.RemoveGuardian(familyID, guardianID)
	if err != nil {
		return fmt.Errorf("failed to remove guardian: %w", err)
	}
	if !removed {
		return ErrGuardianNotFound
	}
	return nil
}

// ListFamilies retrieves all families in an organization, newest first
func (s *DirectoryService) ListFamilies(organizationID string) ([]models.Family, error) {
	families, err := s.familyRepo.ListFamilies(organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	return families, nil
}

// SetPrimaryGuardian designates a linked guardian as the family's primary
// contact.
func (s *DirectoryService) SetPrimaryGuardian(organizationID, familyID, guardianID string) error {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return fmt.Errorf("failed to get family: %w", err)
	}
	if family == nil || family.OrganizationID != organizationID {
		return ErrFamilyNotFound
	}

	linked, err := s.familyRepo.SetPrimaryGuardian(familyID, guardianID)
	if err != nil {
		return fmt.Errorf("failed to set primary guardian: %w", err)
	}
	if !linked {
		return ErrGuardianNotFound
	}
	return nil
}

// PrimaryGuardian resolves a family's primary guardian, falling back to
// the earliest linked guardian when none is designated.
func (s *DirectoryService) PrimaryGuardian(family *models.Family) (*models.Guardian, error) {
	if family.PrimaryGuardianID != nil {
		guardian, err := s.familyRepo.GetGuardianByID(*family.PrimaryGuardianID)
		if err != nil {
			return nil, fmt.Errorf("failed to get primary guardian: %w", err)
		}
		if guardian != nil {
			return guardian, nil
		}
	}

	guardians, err := s.familyRepo.GetGuardiansByFamily(family.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guardians: %w", err)
	}
	if len(guardians) == 0 {
		return nil, ErrGuardianNotFound
	}
	return &guardians[0], nil
}

func (s *DirectoryService) assembleFamily(family *models.Family) (*models.FamilyWithMembers, error) {
	guardians, err := s.familyRepo.GetGuardiansByFamily(family.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guardians: %w", err)
	}
	children, err := s.childRepo.GetChildrenByFamily(family.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get children: %w", err)
	}
	return &models.FamilyWithMembers{
		Family:    *family,
		Guardians: guardians,
		Children:  children,
	}, nil
}

func guardianLink(g GuardianInput) repository.GuardianLink {
	relationship := g.Relationship
	if relationship == "" {
		relationship = "parent"
	}
	canPickup := true
	if g.CanPickup != nil {
		canPickup = *g.CanPickup
	}
	return repository.GuardianLink{
		Guardian: models.Guardian{
			FirstName: g.FirstName,
			LastName:  g.LastName,
			Phone:     normalizePhone(g.Phone),
			Email:     g.Email,
			PhotoURL:  g.PhotoURL,
		},
		Relationship: relationship,
		CanPickup:    canPickup,
	}
}

// normalizePhone strips spaces, dashes and parentheses so the same number
// always produces the same lookup key.
func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}
