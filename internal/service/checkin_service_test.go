package service

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"kinderpass/internal/database"
	"kinderpass/internal/models"
	"kinderpass/internal/repository"
	"kinderpass/internal/verification"
)

// captureNotifier records sent messages; with fail set every send errors,
// exercising the degraded on-screen code fallback.
type captureNotifier struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (n *captureNotifier) Send(ctx context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("provider unavailable")
	}
	n.messages = append(n.messages, message)
	return nil
}

func (n *captureNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1]
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

type testEnv struct {
	db        *database.DB
	roomRepo  *repository.RoomRepository
	eventRepo *repository.EventRepository
	directory *DirectoryService
	checkin   *CheckinService
	pickup    *PickupService
	notifier  *captureNotifier
	codes     *verification.MemoryCodeStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	familyRepo := repository.NewFamilyRepository(db)
	childRepo := repository.NewChildRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	eventRepo := repository.NewEventRepository(db)
	checkinRepo := repository.NewCheckinRepository(db)
	pickupRepo := repository.NewPickupRepository(db)

	codes := verification.NewMemoryCodeStore(verification.DefaultTTL, verification.DefaultMaxAttempts)
	t.Cleanup(codes.Close)

	notifier := &captureNotifier{}
	directory := NewDirectoryService(familyRepo, childRepo)
	checkin := NewCheckinService(
		directory, familyRepo, childRepo, roomRepo, eventRepo, checkinRepo, pickupRepo,
		codes, notifier, nil, "https://checkin.example.com", time.Second,
	)
	pickup := NewPickupService(checkinRepo, pickupRepo)

	return &testEnv{
		db:        db,
		roomRepo:  roomRepo,
		eventRepo: eventRepo,
		directory: directory,
		checkin:   checkin,
		pickup:    pickup,
		notifier:  notifier,
		codes:     codes,
	}
}

const testOrg = "org-1"

func (env *testEnv) seedFamily(t *testing.T, phone string) *models.FamilyWithMembers {
	t.Helper()
	family, err := env.directory.RegisterFamily(testOrg, "Harper", []GuardianInput{
		{FirstName: "Dana", LastName: "Harper", Phone: phone, Email: "dana@example.com"},
	}, []ChildInput{
		{FirstName: "Milo", LastName: "Harper", DateOfBirth: time.Now().AddDate(-4, 0, 0)},
	})
	if err != nil {
		t.Fatalf("RegisterFamily() error: %v", err)
	}
	return family
}

func (env *testEnv) seedRoom(t *testing.T, minAge, maxAge int) *models.Room {
	t.Helper()
	room := &models.Room{
		OrganizationID: testOrg,
		Name:           "Sprouts",
		MinAge:         &minAge,
		MaxAge:         &maxAge,
		IsActive:       true,
	}
	if err := env.roomRepo.CreateRoom(room); err != nil {
		t.Fatalf("CreateRoom() error: %v", err)
	}
	return room
}

var codePattern = regexp.MustCompile(`\d{6}`)

func TestGuardianLookupIssuesCode(t *testing.T) {
	env := newTestEnv(t)
	env.seedFamily(t, "+15551230001")

	result, err := env.checkin.LookupFamily(context.Background(), testOrg, "+15551230001", false)
	if err != nil {
		t.Fatalf("LookupFamily() error: %v", err)
	}
	if !result.VerificationRequired {
		t.Error("expected verification to be required in guardian mode")
	}
	if !result.CodeDelivered {
		t.Error("expected code to be delivered")
	}
	if result.FallbackCode != "" {
		t.Errorf("fallback code should be empty when delivery succeeded, got %q", result.FallbackCode)
	}
	if result.Family != nil {
		t.Error("family details must be withheld before verification")
	}
	if result.Guardian == nil || result.Guardian.FirstName != "Dana" {
		t.Errorf("unexpected guardian: %+v", result.Guardian)
	}

	code := codePattern.FindString(env.notifier.last())
	if code == "" {
		t.Fatalf("no code found in message %q", env.notifier.last())
	}

	family, guardian, err := env.checkin.VerifyCode(context.Background(), testOrg, "+15551230001", code)
	if err != nil {
		t.Fatalf("VerifyCode() error: %v", err)
	}
	if family == nil || len(family.Children) != 1 {
		t.Fatalf("expected family with one child, got %+v", family)
	}
	if guardian.Phone != "+15551230001" {
		t.Errorf("guardian phone = %q", guardian.Phone)
	}
}

func TestWorkerLookupSkipsVerification(t *testing.T) {
	env := newTestEnv(t)
	env.seedFamily(t, "+15551230002")

	result, err := env.checkin.LookupFamily(context.Background(), testOrg, "+15551230002", true)
	if err != nil {
		t.Fatalf("LookupFamily() error: %v", err)
	}
	if result.VerificationRequired {
		t.Error("worker mode must not require verification")
	}
	if result.Family == nil {
		t.Fatal("worker mode should return the family directly")
	}
	if env.notifier.count() != 0 {
		t.Errorf("worker mode sent %d messages, want 0", env.notifier.count())
	}
}

func TestLookupUnknownPhone(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.checkin.LookupFamily(context.Background(), testOrg, "+15559999999", false)
	if !errors.Is(err, ErrFamilyNotFound) {
		t.Errorf("LookupFamily() error = %v, want ErrFamilyNotFound", err)
	}
	if env.notifier.count() != 0 {
		t.Error("no code should be issued for an unknown phone")
	}
}

func TestDegradedDeliveryFallsBackToScreen(t *testing.T) {
	env := newTestEnv(t)
	env.seedFamily(t, "+15551230003")
	env.notifier.fail = true

	result, err := env.checkin.LookupFamily(context.Background(), testOrg, "+15551230003", false)
	if err != nil {
		t.Fatalf("LookupFamily() error: %v", err)
	}
	if result.CodeDelivered {
		t.Error("delivery should be reported as failed")
	}
	if !codePattern.MatchString(result.FallbackCode) {
		t.Errorf("fallback code %q is not a 6-digit code", result.FallbackCode)
	}

	// The on-screen code must still verify.
	if _, _, err := env.checkin.VerifyCode(context.Background(), testOrg, "+15551230003", result.FallbackCode); err != nil {
		t.Errorf("VerifyCode() with fallback code error: %v", err)
	}
}

func TestVerifyCodeFailureReasons(t *testing.T) {
	env := newTestEnv(t)
	env.seedFamily(t, "+15551230004")

	// No issued code yet.
	_, _, err := env.checkin.VerifyCode(context.Background(), testOrg, "+15551230004", "123456")
	var verr *VerificationError
	if !errors.As(err, &verr) || verr.Reason != ReasonNotFound {
		t.Errorf("VerifyCode() before issue = %v, want reason %q", err, ReasonNotFound)
	}

	if _, err := env.checkin.LookupFamily(context.Background(), testOrg, "+15551230004", false); err != nil {
		t.Fatalf("LookupFamily() error: %v", err)
	}
	code := codePattern.FindString(env.notifier.last())

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, _, err = env.checkin.VerifyCode(context.Background(), testOrg, "+15551230004", wrong)
	if !errors.As(err, &verr) || verr.Reason != ReasonMismatch {
		t.Errorf("VerifyCode() wrong code = %v, want reason %q", err, ReasonMismatch)
	}

	// The right code still works after one mismatch, and is single use.
	if _, _, err := env.checkin.VerifyCode(context.Background(), testOrg, "+15551230004", code); err != nil {
		t.Fatalf("VerifyCode() error: %v", err)
	}
	_, _, err = env.checkin.VerifyCode(context.Background(), testOrg, "+15551230004", code)
	if !errors.As(err, &verr) || verr.Reason != ReasonNotFound {
		t.Errorf("VerifyCode() reuse = %v, want reason %q", err, ReasonNotFound)
	}
}

func TestConfirmCheckinAndConflict(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15551230005")
	room := env.seedRoom(t, 0, 6)

	input := ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     family.Guardians[0].ID,
		ChildID:        family.Children[0].ID,
		RoomID:         room.ID,
		PickupPersons: []PickupPersonInput{
			{FirstName: "Rae", LastName: "Vance", Relationship: "aunt"},
		},
	}

	result, err := env.checkin.ConfirmCheckin(context.Background(), input)
	if err != nil {
		t.Fatalf("ConfirmCheckin() error: %v", err)
	}
	if len(result.Checkin.SecureID) != 22 {
		t.Errorf("secure id length = %d, want 22", len(result.Checkin.SecureID))
	}
	if result.PickupURL != "https://checkin.example.com/pickup/"+result.Checkin.SecureID {
		t.Errorf("pickup URL = %q", result.PickupURL)
	}
	if result.Checkin.Status != models.StatusCheckedIn {
		t.Errorf("status = %q, want %q", result.Checkin.Status, models.StatusCheckedIn)
	}
	if len(result.Pickups) != 1 {
		t.Fatalf("pickup persons = %d, want 1", len(result.Pickups))
	}

	// The pickup person was written in the same transaction as the check-in.
	persons, err := env.pickup.List(result.Checkin.SecureID)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(persons) != 1 || persons[0].FirstName != "Rae" {
		t.Fatalf("unexpected stored pickup persons: %+v", persons)
	}

	// The same child cannot be checked in to the same room twice.
	if _, err := env.checkin.ConfirmCheckin(context.Background(), input); !errors.Is(err, ErrCheckinConflict) {
		t.Errorf("second ConfirmCheckin() error = %v, want ErrCheckinConflict", err)
	}
}

func TestConcurrentConfirmCheckinCreatesOneRecord(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15551230013")
	room := env.seedRoom(t, 0, 6)

	input := ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     family.Guardians[0].ID,
		ChildID:        family.Children[0].ID,
		RoomID:         room.ID,
	}

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.checkin.ConfirmCheckin(context.Background(), input)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrCheckinConflict):
			conflicts++
		default:
			t.Errorf("unexpected ConfirmCheckin() error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
	if conflicts != attempts-1 {
		t.Errorf("conflicts = %d, want %d", conflicts, attempts-1)
	}

	_, total, err := env.checkin.ActiveCounts(testOrg)
	if err != nil {
		t.Fatalf("ActiveCounts() error: %v", err)
	}
	if total != 1 {
		t.Errorf("open check-ins = %d, want 1", total)
	}
}

func TestConfirmCheckinRejectsAgeMismatch(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15551230006")
	room := env.seedRoom(t, 0, 2) // child is 4

	_, err := env.checkin.ConfirmCheckin(context.Background(), ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     family.Guardians[0].ID,
		ChildID:        family.Children[0].ID,
		RoomID:         room.ID,
	})
	if !errors.Is(err, ErrRoomAgeMismatch) {
		t.Errorf("ConfirmCheckin() error = %v, want ErrRoomAgeMismatch", err)
	}
}

func TestConfirmCheckinRequiresPickupRights(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15551230007")
	room := env.seedRoom(t, 0, 6)

	noPickup := false
	guardian, err := env.directory.AddGuardian(testOrg, family.Family.ID, GuardianInput{
		FirstName: "Sam",
		LastName:  "Reed",
		Phone:     "+15551230107",
		CanPickup: &noPickup,
	})
	if err != nil {
		t.Fatalf("AddGuardian() error: %v", err)
	}

	_, err = env.checkin.ConfirmCheckin(context.Background(), ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     guardian.ID,
		ChildID:        family.Children[0].ID,
		RoomID:         room.ID,
	})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("ConfirmCheckin() error = %v, want ErrNotAuthorized", err)
	}
}

func TestCheckoutRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15551230008")
	room := env.seedRoom(t, 0, 6)

	result, err := env.checkin.ConfirmCheckin(context.Background(), ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     family.Guardians[0].ID,
		ChildID:        family.Children[0].ID,
		RoomID:         room.ID,
	})
	if err != nil {
		t.Fatalf("ConfirmCheckin() error: %v", err)
	}
	secureID := result.Checkin.SecureID

	view, err := env.checkin.ResolveSecureID(secureID)
	if err != nil {
		t.Fatalf("ResolveSecureID() error: %v", err)
	}
	if view.Child.FirstName != "Milo" {
		t.Errorf("resolved child = %q", view.Child.FirstName)
	}
	if len(view.Guardians) != 1 {
		t.Errorf("resolved guardians = %d, want 1", len(view.Guardians))
	}

	checkin, err := env.checkin.Checkout(secureID, "")
	if err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}
	if checkin.Status != models.StatusCheckedOut {
		t.Errorf("status = %q, want %q", checkin.Status, models.StatusCheckedOut)
	}
	if checkin.CheckedOutBy == nil || *checkin.CheckedOutBy != family.Guardians[0].ID {
		t.Errorf("checked out by = %v, want original guardian", checkin.CheckedOutBy)
	}

	// A spent token behaves like one that never existed.
	if _, err := env.checkin.ResolveSecureID(secureID); !errors.Is(err, ErrCheckinNotFound) {
		t.Errorf("ResolveSecureID() after checkout = %v, want ErrCheckinNotFound", err)
	}
	if _, err := env.checkin.Checkout(secureID, ""); !errors.Is(err, ErrCheckinNotFound) {
		t.Errorf("second Checkout() = %v, want ErrCheckinNotFound", err)
	}

	// The room can be re-entered after checkout.
	if _, err := env.checkin.ConfirmCheckin(context.Background(), ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     family.Guardians[0].ID,
		ChildID:        family.Children[0].ID,
		RoomID:         room.ID,
	}); err != nil {
		t.Errorf("re-check-in after checkout error: %v", err)
	}
}

func TestPickupRegistryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15551230009")
	room := env.seedRoom(t, 0, 6)

	result, err := env.checkin.ConfirmCheckin(context.Background(), ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     family.Guardians[0].ID,
		ChildID:        family.Children[0].ID,
		RoomID:         room.ID,
	})
	if err != nil {
		t.Fatalf("ConfirmCheckin() error: %v", err)
	}
	secureID := result.Checkin.SecureID

	person, err := env.pickup.Add(secureID, PickupPersonInput{FirstName: "Gil", LastName: "Moss", Relationship: "neighbor"})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	persons, err := env.pickup.List(secureID)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(persons) != 1 || persons[0].FirstName != "Gil" {
		t.Fatalf("unexpected pickup list: %+v", persons)
	}

	if err := env.pickup.Remove(secureID, person.ID); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if err := env.pickup.Remove(secureID, person.ID); !errors.Is(err, ErrPickupNotFound) {
		t.Errorf("second Remove() = %v, want ErrPickupNotFound", err)
	}

	// A closed check-in cannot be amended.
	if _, err := env.checkin.Checkout(secureID, ""); err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}
	if _, err := env.pickup.Add(secureID, PickupPersonInput{FirstName: "Kay", LastName: "Low"}); !errors.Is(err, ErrCheckinNotFound) {
		t.Errorf("Add() on closed check-in = %v, want ErrCheckinNotFound", err)
	}
}

func TestMarkNoShowClosesCheckin(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15551230011")
	room := env.seedRoom(t, 0, 6)

	result, err := env.checkin.ConfirmCheckin(context.Background(), ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     family.Guardians[0].ID,
		ChildID:        family.Children[0].ID,
		RoomID:         room.ID,
	})
	if err != nil {
		t.Fatalf("ConfirmCheckin() error: %v", err)
	}

	checkin, err := env.checkin.MarkNoShow(testOrg, result.Checkin.ID)
	if err != nil {
		t.Fatalf("MarkNoShow() error: %v", err)
	}
	if checkin.Status != models.StatusNoShow {
		t.Errorf("status = %q, want %q", checkin.Status, models.StatusNoShow)
	}

	// The pickup pass is dead once the record is closed.
	if _, err := env.checkin.ResolveSecureID(result.Checkin.SecureID); !errors.Is(err, ErrCheckinNotFound) {
		t.Errorf("ResolveSecureID() after no-show = %v, want ErrCheckinNotFound", err)
	}
	if _, err := env.checkin.MarkNoShow(testOrg, result.Checkin.ID); !errors.Is(err, ErrCheckinNotFound) {
		t.Errorf("second MarkNoShow() = %v, want ErrCheckinNotFound", err)
	}
	if _, err := env.checkin.MarkNoShow("other-org", result.Checkin.ID); !errors.Is(err, ErrCheckinNotFound) {
		t.Errorf("cross-org MarkNoShow() = %v, want ErrCheckinNotFound", err)
	}
}

func TestChildHistory(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15551230012")
	room := env.seedRoom(t, 0, 6)
	childID := family.Children[0].ID

	result, err := env.checkin.ConfirmCheckin(context.Background(), ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     family.Guardians[0].ID,
		ChildID:        childID,
		RoomID:         room.ID,
	})
	if err != nil {
		t.Fatalf("ConfirmCheckin() error: %v", err)
	}
	if _, err := env.checkin.Checkout(result.Checkin.SecureID, ""); err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}
	if _, err := env.checkin.ConfirmCheckin(context.Background(), ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     family.Guardians[0].ID,
		ChildID:        childID,
		RoomID:         room.ID,
	}); err != nil {
		t.Fatalf("second ConfirmCheckin() error: %v", err)
	}

	history, err := env.checkin.ChildHistory(testOrg, childID)
	if err != nil {
		t.Fatalf("ChildHistory() error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history entries = %d, want 2", len(history))
	}
	if history[0].Status != models.StatusCheckedIn || history[1].Status != models.StatusCheckedOut {
		t.Errorf("unexpected history order: %q then %q", history[0].Status, history[1].Status)
	}

	if _, err := env.checkin.ChildHistory("other-org", childID); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("cross-org ChildHistory() = %v, want ErrChildNotFound", err)
	}
}

func TestActiveCounts(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15551230010")
	room := env.seedRoom(t, 0, 6)

	if _, err := env.checkin.ConfirmCheckin(context.Background(), ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     family.Guardians[0].ID,
		ChildID:        family.Children[0].ID,
		RoomID:         room.ID,
	}); err != nil {
		t.Fatalf("ConfirmCheckin() error: %v", err)
	}

	rooms, total, err := env.checkin.ActiveCounts(testOrg)
	if err != nil {
		t.Fatalf("ActiveCounts() error: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if len(rooms) != 1 || rooms[0].ActiveCount != 1 {
		t.Errorf("unexpected room counts: %+v", rooms)
	}

	roster, err := env.checkin.RoomRoster(room.ID)
	if err != nil {
		t.Fatalf("RoomRoster() error: %v", err)
	}
	if len(roster) != 1 || roster[0].Child.FirstName != "Milo" {
		t.Errorf("unexpected roster: %+v", roster)
	}
}

func TestLookupRejectsFamilyWithoutChildren(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.directory.RegisterFamily(testOrg, "Vance", []GuardianInput{
		{FirstName: "Iris", LastName: "Vance", Phone: "+15551230013"},
	}, nil); err != nil {
		t.Fatalf("RegisterFamily() error: %v", err)
	}

	// A family with no children registered looks like an unknown phone
	// from the kiosk, on the initial lookup and on a resend alike.
	if _, err := env.checkin.LookupFamily(context.Background(), testOrg, "+15551230013", false); !errors.Is(err, ErrFamilyNotFound) {
		t.Errorf("LookupFamily() = %v, want ErrFamilyNotFound", err)
	}
	if _, err := env.checkin.ResendCode(context.Background(), testOrg, "+15551230013"); !errors.Is(err, ErrFamilyNotFound) {
		t.Errorf("ResendCode() = %v, want ErrFamilyNotFound", err)
	}
	if env.notifier.count() != 0 {
		t.Errorf("messages sent = %d, want 0", env.notifier.count())
	}
}

func TestPickupHistorySurvivesCheckout(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15551230014")
	room := env.seedRoom(t, 0, 6)

	result, err := env.checkin.ConfirmCheckin(context.Background(), ConfirmCheckinInput{
		OrganizationID: testOrg,
		GuardianID:     family.Guardians[0].ID,
		ChildID:        family.Children[0].ID,
		RoomID:         room.ID,
		PickupPersons:  []PickupPersonInput{{FirstName: "Gil", LastName: "Moss", Relationship: "neighbor"}},
	})
	if err != nil {
		t.Fatalf("ConfirmCheckin() error: %v", err)
	}
	if _, err := env.checkin.Checkout(result.Checkin.SecureID, ""); err != nil {
		t.Fatalf("Checkout() error: %v", err)
	}

	// The audit trail is keyed by record ID and outlives the pass.
	persons, err := env.checkin.PickupHistory(testOrg, result.Checkin.ID)
	if err != nil {
		t.Fatalf("PickupHistory() error: %v", err)
	}
	if len(persons) != 1 || persons[0].FirstName != "Gil" {
		t.Fatalf("unexpected pickup history: %+v", persons)
	}

	if _, err := env.checkin.PickupHistory("other-org", result.Checkin.ID); !errors.Is(err, ErrCheckinNotFound) {
		t.Errorf("cross-org PickupHistory() = %v, want ErrCheckinNotFound", err)
	}
}
