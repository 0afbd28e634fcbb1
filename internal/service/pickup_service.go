package service

import (
	"fmt"

	"kinderpass/internal/models"
	"kinderpass/internal/repository"
)

// PickupService manages the authorized pickup persons of an open check-in.
// Entries are addressed through the check-in's secure ID, so holding the
// pickup pass is the capability needed to edit the list.
type PickupService struct {
	checkinRepo *repository.CheckinRepository
	pickupRepo  *repository.PickupRepository
}

// NewPickupService creates a new pickup service
func NewPickupService(checkinRepo *repository.CheckinRepository, pickupRepo *repository.PickupRepository) *PickupService {
	return &PickupService{
		checkinRepo: checkinRepo,
		pickupRepo:  pickupRepo,
	}
}

// Add authorizes a pickup person on an open check-in. Closed check-ins
// cannot be amended.
func (s *PickupService) Add(secureID string, input PickupPersonInput) (*models.PickupPerson, error) {
	checkin, err := s.openCheckin(secureID)
	if err != nil {
		return nil, err
	}

	person := &models.PickupPerson{
		CheckinID:    checkin.ID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Relationship: input.Relationship,
		PhotoURL:     input.PhotoURL,
	}
	if err := s.pickupRepo.AddPickupPerson(person); err != nil {
		return nil, fmt.Errorf("failed to add pickup person: %w", err)
	}
	return person, nil
}

// List retrieves the authorized pickup persons of an open check-in
func (s *PickupService) List(secureID string) ([]models.PickupPerson, error) {
	checkin, err := s.openCheckin(secureID)
	if err != nil {
		return nil, err
	}
	persons, err := s.pickupRepo.ListByCheckin(checkin.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pickup persons: %w", err)
	}
	return persons, nil
}

// Remove deletes a pickup person from an open check-in
func (s *PickupService) Remove(secureID, pickupID string) error {
	checkin, err := s.openCheckin(secureID)
	if err != nil {
		return err
	}
	removed, err := s.pickupRepo.RemovePickupPerson(pickupID, checkin.ID)
	if err != nil {
		return fmt.Errorf("failed to remove pickup person: %w", err)
	}
	if !removed {
		return ErrPickupNotFound
	}
	return nil
}

func (s *PickupService) openCheckin(secureID string) (*models.ChildCheckin, error) {
	checkin, err := s.checkinRepo.GetActiveCheckinBySecureID(secureID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secure id: %w", err)
	}
	if checkin == nil {
		return nil, ErrCheckinNotFound
	}
	return checkin, nil
}
