package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"kinderpass/internal/models"
	"kinderpass/internal/notify"
	"kinderpass/internal/repository"
	"kinderpass/internal/security"
	"kinderpass/internal/verification"
)

// CheckinService drives the kiosk flow: phone lookup, code verification,
// check-in confirmation and QR checkout.
type CheckinService struct {
	directory   *DirectoryService
	familyRepo  *repository.FamilyRepository
	childRepo   *repository.ChildRepository
	roomRepo    *repository.RoomRepository
	eventRepo   *repository.EventRepository
	checkinRepo *repository.CheckinRepository
	pickupRepo  *repository.PickupRepository

	codes    verification.CodeStore
	notifier notify.Notifier
	email    *notify.EmailService

	appBaseURL     string
	dispatchWindow time.Duration
}

// NewCheckinService creates a new check-in service
func NewCheckinService(
	directory *DirectoryService,
	familyRepo *repository.FamilyRepository,
	childRepo *repository.ChildRepository,
	roomRepo *repository.RoomRepository,
	eventRepo *repository.EventRepository,
	checkinRepo *repository.CheckinRepository,
	pickupRepo *repository.PickupRepository,
	codes verification.CodeStore,
	notifier notify.Notifier,
	email *notify.EmailService,
	appBaseURL string,
	dispatchWindow time.Duration,
) *CheckinService {
	return &CheckinService{
		directory:      directory,
		familyRepo:     familyRepo,
		childRepo:      childRepo,
		roomRepo:       roomRepo,
		eventRepo:      eventRepo,
		checkinRepo:    checkinRepo,
		pickupRepo:     pickupRepo,
		codes:          codes,
		notifier:       notifier,
		email:          email,
		appBaseURL:     appBaseURL,
		dispatchWindow: dispatchWindow,
	}
}

// LookupResult is the outcome of a phone lookup. In guardian mode a
// verification code has been issued; CodeDelivered reports whether the SMS
// went out, and FallbackCode carries the code for on-screen display when it
// did not. In worker mode no code is issued and the family is returned
// directly.
type LookupResult struct {
	Family               *models.FamilyWithMembers `json:"family"`
	Guardian             *models.Guardian          `json:"guardian"`
	VerificationRequired bool                      `json:"verificationRequired"`
	CodeDelivered        bool                      `json:"codeDelivered"`
	FallbackCode         string                    `json:"fallbackCode,omitempty"`
}

// LookupFamily resolves a guardian phone number. In guardian mode it issues
// a one-time code and dispatches it by SMS; family details are withheld
// until the code is verified. Worker mode skips verification entirely, the
// trust boundary being the staff member's own authenticated session.
func (s *CheckinService) LookupFamily(ctx context.Context, organizationID, phone string, workerMode bool) (*LookupResult, error) {
	family, guardian, err := s.directory.FindFamilyByPhone(organizationID, phone)
	if err != nil {
		return nil, err
	}
	// A family with no children registered cannot check anyone in; the
	// kiosk redirects to full registration as if the phone were unknown.
	if len(family.Children) == 0 {
		return nil, ErrFamilyNotFound
	}

	if workerMode {
		return &LookupResult{Family: family, Guardian: guardian}, nil
	}

	delivered, code, err := s.issueAndDispatch(ctx, guardian.Phone, organizationID)
	if err != nil {
		return nil, err
	}

	result := &LookupResult{
		Guardian:             guardian,
		VerificationRequired: true,
		CodeDelivered:        delivered,
	}
	if !delivered {
		result.FallbackCode = code
	}
	return result, nil
}

// ResendCode issues a fresh code for a pending verification, superseding
// the previous one.
func (s *CheckinService) ResendCode(ctx context.Context, organizationID, phone string) (*LookupResult, error) {
	family, guardian, err := s.directory.FindFamilyByPhone(organizationID, phone)
	if err != nil {
		return nil, err
	}
	if len(family.Children) == 0 {
		return nil, ErrFamilyNotFound
	}

	delivered, code, err := s.issueAndDispatch(ctx, guardian.Phone, organizationID)
	if err != nil {
		return nil, err
	}

	result := &LookupResult{
		Guardian:             guardian,
		VerificationRequired: true,
		CodeDelivered:        delivered,
	}
	if !delivered {
		result.FallbackCode = code
	}
	return result, nil
}

func (s *CheckinService) issueAndDispatch(ctx context.Context, phone, organizationID string) (bool, string, error) {
	code, err := s.codes.Issue(ctx, phone, organizationID)
	if err != nil {
		return false, "", fmt.Errorf("failed to issue verification code: %w", err)
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, s.dispatchWindow)
	defer cancel()

	message := fmt.Sprintf("Your check-in code is %s. It expires in 10 minutes.", code)
	if err := s.notifier.Send(dispatchCtx, phone, message); err != nil {
		log.Printf("code dispatch failed for %s: %v", phone, err)
		return false, code, nil
	}
	return true, code, nil
}

// VerifyCode validates a one-time code. On success the code is consumed
// and the guardian's family is returned. Failures come back as
// *VerificationError with the reason; after too many wrong attempts the
// guardian must request a new code.
func (s *CheckinService) VerifyCode(ctx context.Context, organizationID, phone, code string) (*models.FamilyWithMembers, *models.Guardian, error) {
	family, guardian, err := s.directory.FindFamilyByPhone(organizationID, phone)
	if err != nil {
		return nil, nil, err
	}

	err = s.codes.Validate(ctx, guardian.Phone, organizationID, code)
	switch err {
	case nil:
		return family, guardian, nil
	case verification.ErrCodeNotFound:
		return nil, nil, &VerificationError{Reason: ReasonNotFound}
	case verification.ErrCodeExpired:
		return nil, nil, &VerificationError{Reason: ReasonExpired}
	case verification.ErrCodeMismatch:
		return nil, nil, &VerificationError{Reason: ReasonMismatch}
	case verification.ErrTooManyAttempts:
		return nil, nil, &VerificationError{Reason: ReasonTooManyAttempts}
	default:
		return nil, nil, fmt.Errorf("failed to validate code: %w", err)
	}
}

// PickupPersonInput describes a non-guardian adult authorized for pickup
type PickupPersonInput struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName" validate:"required"`
	Relationship string `json:"relationship"`
	PhotoURL     string `json:"photoUrl"`
}

// ConfirmCheckinInput describes one child's check-in
type ConfirmCheckinInput struct {
	OrganizationID string
	GuardianID     string
	ChildID        string
	RoomID         string
	EventID        *string
	PickupPersons  []PickupPersonInput
}

// CheckinResult is a confirmed check-in with its pickup URL
type CheckinResult struct {
	Checkin   models.ChildCheckin   `json:"checkin"`
	Child     models.Child          `json:"child"`
	Room      models.Room           `json:"room"`
	PickupURL string                `json:"pickupUrl"`
	Pickups   []models.PickupPerson `json:"pickupPersons,omitempty"`
}

// ConfirmCheckin checks a child into a room. The guardian must be linked
// to the child's family with pickup rights, the room must be active and
// accept the child's age, and the child must not already be checked in to
// the room. A fresh secure ID is minted for the QR pickup pass.
func (s *CheckinService) ConfirmCheckin(ctx context.Context, input ConfirmCheckinInput) (*CheckinResult, error) {
	child, err := s.childRepo.GetChildByID(input.ChildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil || child.OrganizationID != input.OrganizationID {
		return nil, ErrChildNotFound
	}

	guardian, err := s.authorizedGuardian(child.FamilyID, input.GuardianID)
	if err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetRoomByID(input.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil || room.OrganizationID != input.OrganizationID {
		return nil, ErrRoomNotFound
	}
	if !room.IsActive {
		return nil, ErrRoomInactive
	}

	now := time.Now()
	if !room.AcceptsAge(child.AgeOn(now)) {
		return nil, ErrRoomAgeMismatch
	}

	if input.EventID != nil {
		event, err := s.eventRepo.GetEventByID(*input.EventID)
		if err != nil {
			return nil, fmt.Errorf("failed to get event: %w", err)
		}
		if event == nil || event.OrganizationID != input.OrganizationID {
			return nil, ErrEventNotFound
		}
		if !event.IsOpen(now) {
			return nil, ErrEventClosed
		}
	}

	secureID, err := security.GenerateSecureID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure id: %w", err)
	}

	checkin := &models.ChildCheckin{
		ChildID:     child.ID,
		RoomID:      room.ID,
		EventID:     input.EventID,
		SecureID:    secureID,
		CheckedInAt: now,
		CheckedInBy: guardian.ID,
	}
	pickups := make([]models.PickupPerson, 0, len(input.PickupPersons))
	for _, p := range input.PickupPersons {
		pickups = append(pickups, models.PickupPerson{
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			Relationship: p.Relationship,
			PhotoURL:     p.PhotoURL,
		})
	}
	if err := s.checkinRepo.CreateCheckin(checkin, pickups); err != nil {
		if err == repository.ErrActiveCheckinExists {
			return nil, ErrCheckinConflict
		}
		return nil, fmt.Errorf("failed to create check-in: %w", err)
	}

	result := &CheckinResult{
		Checkin:   *checkin,
		Child:     *child,
		Room:      *room,
		PickupURL: s.pickupURL(secureID),
	}
	if len(pickups) > 0 {
		result.Pickups = pickups
	}

	s.sendReceipt(ctx, guardian, child, room, result.PickupURL)

	return result, nil
}

// sendReceipt emails the guardian their pickup pass. When the checking-in
// guardian has no email on file the family's primary guardian is tried
// instead. Failure is logged and never blocks the check-in.
func (s *CheckinService) sendReceipt(ctx context.Context, guardian *models.Guardian, child *models.Child, room *models.Room, pickupURL string) {
	if s.email == nil || !s.email.IsEnabled() {
		return
	}

	recipient := guardian
	if recipient.Email == "" {
		family, err := s.familyRepo.GetFamilyByID(child.FamilyID)
		if err != nil || family == nil {
			return
		}
		primary, err := s.directory.PrimaryGuardian(family)
		if err != nil || primary.Email == "" {
			return
		}
		recipient = primary
	}

	receiptCtx, cancel := context.WithTimeout(ctx, s.dispatchWindow)
	defer cancel()
	name := recipient.FirstName + " " + recipient.LastName
	childName := child.FirstName + " " + child.LastName
	if err := s.email.SendCheckinReceipt(receiptCtx, recipient.Email, name, childName, room.Name, pickupURL); err != nil {
		log.Printf("check-in receipt to %s failed: %v", recipient.Email, err)
	}
}

// PickupView is everything a worker needs to release a child: the open
// check-in, the child, and who may collect them.
type PickupView struct {
	Checkin       models.ChildCheckin   `json:"checkin"`
	Child         models.Child          `json:"child"`
	Room          models.Room           `json:"room"`
	Guardians     []models.Guardian     `json:"guardians"`
	PickupPersons []models.PickupPerson `json:"pickupPersons,omitempty"`
}

// ResolveSecureID resolves a scanned QR token to its pickup view. Spent or
// unknown tokens both yield ErrCheckinNotFound.
func (s *CheckinService) ResolveSecureID(secureID string) (*PickupView, error) {
	checkin, err := s.checkinRepo.GetActiveCheckinBySecureID(secureID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secure id: %w", err)
	}
	if checkin == nil {
		return nil, ErrCheckinNotFound
	}

	child, err := s.childRepo.GetChildByID(checkin.ChildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	room, err := s.roomRepo.GetRoomByID(checkin.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	guardians, err := s.familyRepo.GetGuardiansByFamily(child.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guardians: %w", err)
	}

	pickups, err := s.pickupRepo.ListByCheckin(checkin.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pickup persons: %w", err)
	}

	return &PickupView{
		Checkin:       *checkin,
		Child:         *child,
		Room:          *room,
		Guardians:     guardians,
		PickupPersons: pickups,
	}, nil
}

// Checkout closes a check-in resolved from a secure ID. When guardianID is
// empty the original check-in guardian is recorded as the collector, for
// the case where staff verified a listed pickup person instead. A second
// checkout of the same token behaves like an unknown token.
func (s *CheckinService) Checkout(secureID, guardianID string) (*models.ChildCheckin, error) {
	checkin, err := s.checkinRepo.GetActiveCheckinBySecureID(secureID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secure id: %w", err)
	}
	if checkin == nil {
		return nil, ErrCheckinNotFound
	}

	collector := guardianID
	if collector == "" {
		collector = checkin.CheckedInBy
	} else {
		child, err := s.childRepo.GetChildByID(checkin.ChildID)
		if err != nil {
			return nil, fmt.Errorf("failed to get child: %w", err)
		}
		if child == nil {
			return nil, ErrChildNotFound
		}
		if _, err := s.authorizedGuardian(child.FamilyID, collector); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	closed, err := s.checkinRepo.Checkout(checkin.ID, collector, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check out: %w", err)
	}
	if !closed {
		return nil, ErrCheckinNotFound
	}

	checkin.Status = models.StatusCheckedOut
	checkin.CheckedOutAt = &now
	checkin.CheckedOutBy = &collector
	return checkin, nil
}

// ChildHistory retrieves a child's check-in history, newest first
func (s *CheckinService) ChildHistory(organizationID, childID string) ([]models.ChildCheckin, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil || child.OrganizationID != organizationID {
		return nil, ErrChildNotFound
	}
	return s.checkinRepo.ListCheckinsByChild(childID)
}

// MarkNoShow closes an open check-in without a pickup, for end-of-day
// reconciliation of children whose QR pass was never scanned.
func (s *CheckinService) MarkNoShow(organizationID, checkinID string) (*models.ChildCheckin, error) {
	checkin, err := s.checkinRepo.GetCheckinByID(checkinID)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}
	if checkin == nil {
		return nil, ErrCheckinNotFound
	}

	room, err := s.roomRepo.GetRoomByID(checkin.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil || room.OrganizationID != organizationID {
		return nil, ErrCheckinNotFound
	}

	now := time.Now()
	closed, err := s.checkinRepo.MarkNoShow(checkinID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark no-show: %w", err)
	}
	if !closed {
		return nil, ErrCheckinNotFound
	}

	checkin.Status = models.StatusNoShow
	checkin.CheckedOutAt = &now
	return checkin, nil
}

// PickupHistory lists the pickup persons recorded on a check-in regardless
// of its status. Entries outlive checkout so staff can audit who was
// authorized on a past session.
func (s *CheckinService) PickupHistory(organizationID, checkinID string) ([]models.PickupPerson, error) {
	checkin, err := s.checkinRepo.GetCheckinByID(checkinID)
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}
	if checkin == nil {
		return nil, ErrCheckinNotFound
	}

	room, err := s.roomRepo.GetRoomByID(checkin.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil || room.OrganizationID != organizationID {
		return nil, ErrCheckinNotFound
	}

	persons, err := s.pickupRepo.ListByCheckin(checkinID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pickup persons: %w", err)
	}
	return persons, nil
}

// RoomRoster lists the children currently checked in to a room
func (s *CheckinService) RoomRoster(roomID string) ([]repository.ActiveCheckinEntry, error) {
	room, err := s.roomRepo.GetRoomByID(roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return s.checkinRepo.ListActiveByRoom(roomID)
}

// ActiveCounts reports the organization's open check-ins per room and in total
func (s *CheckinService) ActiveCounts(organizationID string) ([]models.RoomWithCount, int, error) {
	rooms, err := s.roomRepo.ListRoomsWithCounts(organizationID)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.checkinRepo.CountActiveByOrganization(organizationID)
	if err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

// authorizedGuardian verifies the guardian is linked to the family with
// pickup rights.
func (s *CheckinService) authorizedGuardian(familyID, guardianID string) (*models.Guardian, error) {
	link, err := s.familyRepo.GetGuardianLink(familyID, guardianID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guardian link: %w", err)
	}
	if link == nil || !link.CanPickup {
		return nil, ErrNotAuthorized
	}

	guardian, err := s.familyRepo.GetGuardianByID(guardianID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guardian: %w", err)
	}
	if guardian == nil {
		return nil, ErrGuardianNotFound
	}
	return guardian, nil
}

func (s *CheckinService) pickupURL(secureID string) string {
	return fmt.Sprintf("%s/pickup/%s", s.appBaseURL, secureID)
}
