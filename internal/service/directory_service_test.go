package service

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already normalized", "+15551234567", "+15551234567"},
		{"spaces", "+1 555 123 4567", "+15551234567"},
		{"dashes and parens", "(555) 123-4567", "5551234567"},
		{"dots", "555.123.4567", "5551234567"},
		{"surrounding whitespace", "  +15551234567  ", "+15551234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePhone(tt.input); got != tt.expected {
				t.Errorf("normalizePhone(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRegisterFamilySetsPrimaryGuardian(t *testing.T) {
	env := newTestEnv(t)

	family, err := env.directory.RegisterFamily(testOrg, "Okafor", []GuardianInput{
		{FirstName: "Ada", LastName: "Okafor", Phone: "+15552340001"},
		{FirstName: "Ben", LastName: "Okafor", Phone: "+15552340002", Relationship: "parent"},
	}, []ChildInput{
		{FirstName: "Zara", LastName: "Okafor", DateOfBirth: time.Now().AddDate(-2, 0, 0)},
	})
	if err != nil {
		t.Fatalf("RegisterFamily() error: %v", err)
	}

	if family.Family.PrimaryGuardianID == nil {
		t.Fatal("primary guardian not set")
	}
	if *family.Family.PrimaryGuardianID != family.Guardians[0].ID {
		t.Error("primary guardian should be the first registered guardian")
	}
	if len(family.Guardians) != 2 || len(family.Children) != 1 {
		t.Errorf("got %d guardians, %d children", len(family.Guardians), len(family.Children))
	}
}

func TestRegisterFamilyRequiresGuardian(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.directory.RegisterFamily(testOrg, "Empty", nil, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("RegisterFamily() error = %v, want ValidationError", err)
	}
}

func TestGuardianReusedAcrossFamilies(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.directory.RegisterFamily(testOrg, "Cole", []GuardianInput{
		{FirstName: "Nia", LastName: "Cole", Phone: "+15552340010"},
	}, nil)
	if err != nil {
		t.Fatalf("RegisterFamily() error: %v", err)
	}

	second, err := env.directory.RegisterFamily(testOrg, "Diaz", []GuardianInput{
		{FirstName: "Nia", LastName: "Cole", Phone: "+15552340010", Relationship: "grandparent"},
	}, nil)
	if err != nil {
		t.Fatalf("RegisterFamily() error: %v", err)
	}

	if first.Guardians[0].ID != second.Guardians[0].ID {
		t.Error("guardian with the same phone should be reused, not duplicated")
	}

	// Phone lookup resolves to the earliest family link.
	family, _, err := env.directory.FindFamilyByPhone(testOrg, "+15552340010")
	if err != nil {
		t.Fatalf("FindFamilyByPhone() error: %v", err)
	}
	if family.Family.ID != first.Family.ID {
		t.Errorf("lookup resolved to %q, want earliest family %q", family.Family.ID, first.Family.ID)
	}
}

func TestFindFamilyByPhoneNormalizes(t *testing.T) {
	env := newTestEnv(t)
	env.seedFamily(t, "+15552340020")

	family, guardian, err := env.directory.FindFamilyByPhone(testOrg, "+1 555 234-0020")
	if err != nil {
		t.Fatalf("FindFamilyByPhone() error: %v", err)
	}
	if family == nil || guardian.Phone != "+15552340020" {
		t.Errorf("lookup with formatted number failed: %+v", guardian)
	}
}

func TestChildLifecycle(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15552340030")

	child, err := env.directory.AddChild(testOrg, family.Family.ID, ChildInput{
		FirstName:   "Ivy",
		LastName:    "Harper",
		DateOfBirth: time.Now().AddDate(-1, 0, 0),
		Allergies:   "peanuts",
	})
	if err != nil {
		t.Fatalf("AddChild() error: %v", err)
	}

	updated, err := env.directory.UpdateChild(testOrg, child.ID, ChildInput{
		FirstName:   "Ivy",
		LastName:    "Harper",
		DateOfBirth: child.DateOfBirth,
		Allergies:   "peanuts, dairy",
	})
	if err != nil {
		t.Fatalf("UpdateChild() error: %v", err)
	}
	if updated.Allergies != "peanuts, dairy" {
		t.Errorf("allergies = %q", updated.Allergies)
	}

	if err := env.directory.RemoveChild(testOrg, child.ID); err != nil {
		t.Fatalf("RemoveChild() error: %v", err)
	}
	if err := env.directory.RemoveChild(testOrg, child.ID); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("second RemoveChild() = %v, want ErrChildNotFound", err)
	}

	got, err := env.directory.GetFamily(family.Family.ID)
	if err != nil {
		t.Fatalf("GetFamily() error: %v", err)
	}
	if len(got.Children) != 1 {
		t.Errorf("children after removal = %d, want 1", len(got.Children))
	}
}

func TestGuardianLinkLifecycle(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15552340040")

	guardian, err := env.directory.AddGuardian(testOrg, family.Family.ID, GuardianInput{
		FirstName:    "Ora",
		LastName:     "Finch",
		Phone:        "+15552340041",
		Relationship: "grandparent",
	})
	if err != nil {
		t.Fatalf("AddGuardian() error: %v", err)
	}

	// Linking the same guardian twice is rejected.
	_, err = env.directory.AddGuardian(testOrg, family.Family.ID, GuardianInput{
		FirstName: "Ora",
		LastName:  "Finch",
		Phone:     "+15552340041",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("duplicate AddGuardian() = %v, want ValidationError", err)
	}

	if err := env.directory.RemoveGuardian(testOrg, family.Family.ID, guardian.ID); err != nil {
		t.Fatalf("RemoveGuardian() error: %v", err)
	}
	if err := env.directory.RemoveGuardian(testOrg, family.Family.ID, guardian.ID); !errors.Is(err, ErrGuardianNotFound) {
		t.Errorf("second RemoveGuardian() = %v, want ErrGuardianNotFound", err)
	}
}

func TestSetPrimaryGuardian(t *testing.T) {
	env := newTestEnv(t)
	family := env.seedFamily(t, "+15552340050")

	second, err := env.directory.AddGuardian(testOrg, family.Family.ID, GuardianInput{
		FirstName: "Noel",
		LastName:  "Harper",
		Phone:     "+15552340051",
	})
	if err != nil {
		t.Fatalf("AddGuardian() error: %v", err)
	}

	if err := env.directory.SetPrimaryGuardian(testOrg, family.Family.ID, second.ID); err != nil {
		t.Fatalf("SetPrimaryGuardian() error: %v", err)
	}

	got, err := env.directory.GetFamily(family.Family.ID)
	if err != nil {
		t.Fatalf("GetFamily() error: %v", err)
	}
	if got.Family.PrimaryGuardianID == nil || *got.Family.PrimaryGuardianID != second.ID {
		t.Errorf("primary guardian = %v, want %s", got.Family.PrimaryGuardianID, second.ID)
	}

	primary, err := env.directory.PrimaryGuardian(&got.Family)
	if err != nil {
		t.Fatalf("PrimaryGuardian() error: %v", err)
	}
	if primary.ID != second.ID {
		t.Errorf("PrimaryGuardian() = %s, want %s", primary.ID, second.ID)
	}

	// An unlinked guardian cannot be made primary.
	if err := env.directory.SetPrimaryGuardian(testOrg, family.Family.ID, "no-such-guardian"); !errors.Is(err, ErrGuardianNotFound) {
		t.Errorf("SetPrimaryGuardian() unlinked = %v, want ErrGuardianNotFound", err)
	}
	if err := env.directory.SetPrimaryGuardian(testOrg, "no-such-family", second.ID); !errors.Is(err, ErrFamilyNotFound) {
		t.Errorf("SetPrimaryGuardian() missing family = %v, want ErrFamilyNotFound", err)
	}
}

func TestListFamilies(t *testing.T) {
	env := newTestEnv(t)
	env.seedFamily(t, "+15552340060")
	if _, err := env.directory.RegisterFamily("other-org", "Quill", []GuardianInput{
		{FirstName: "Bo", LastName: "Quill", Phone: "+15552340061"},
	}, nil); err != nil {
		t.Fatalf("RegisterFamily() error: %v", err)
	}

	families, err := env.directory.ListFamilies(testOrg)
	if err != nil {
		t.Fatalf("ListFamilies() error: %v", err)
	}
	if len(families) != 1 || families[0].Name != "Harper" {
		t.Errorf("unexpected families: %+v", families)
	}
}

func TestMutationsAreOrganizationScoped(t *testing.T) {
	env := newTestEnv(t)
	family, err := env.directory.RegisterFamily("other-org", "Quill", []GuardianInput{
		{FirstName: "Bo", LastName: "Quill", Phone: "+15552340070"},
	}, []ChildInput{
		{FirstName: "Ada", LastName: "Quill", DateOfBirth: time.Now().AddDate(-3, 0, 0)},
	})
	if err != nil {
		t.Fatalf("RegisterFamily() error: %v", err)
	}
	child := family.Children[0]
	guardian := family.Guardians[0]

	// Another organization's records are indistinguishable from missing ones.
	if _, err := env.directory.AddChild(testOrg, family.Family.ID, ChildInput{
		FirstName: "Eve", LastName: "Quill", DateOfBirth: time.Now().AddDate(-2, 0, 0),
	}); !errors.Is(err, ErrFamilyNotFound) {
		t.Errorf("cross-org AddChild() = %v, want ErrFamilyNotFound", err)
	}
	if _, err := env.directory.UpdateChild(testOrg, child.ID, ChildInput{
		FirstName: "Ada", LastName: "Quill", DateOfBirth: child.DateOfBirth,
	}); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("cross-org UpdateChild() = %v, want ErrChildNotFound", err)
	}
	if err := env.directory.RemoveChild(testOrg, child.ID); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("cross-org RemoveChild() = %v, want ErrChildNotFound", err)
	}
	if _, err := env.directory.AddGuardian(testOrg, family.Family.ID, GuardianInput{
		FirstName: "Sid", LastName: "Quill", Phone: "+15552340071",
	}); !errors.Is(err, ErrFamilyNotFound) {
		t.Errorf("cross-org AddGuardian() = %v, want ErrFamilyNotFound", err)
	}
	if err := env.directory.RemoveGuardian(testOrg, family.Family.ID, guardian.ID); !errors.Is(err, ErrFamilyNotFound) {
		t.Errorf("cross-org RemoveGuardian() = %v, want ErrFamilyNotFound", err)
	}
	if err := env.directory.SetPrimaryGuardian(testOrg, family.Family.ID, guardian.ID); !errors.Is(err, ErrFamilyNotFound) {
		t.Errorf("cross-org SetPrimaryGuardian() = %v, want ErrFamilyNotFound", err)
	}

	// The family is untouched.
	got, err := env.directory.GetFamily(family.Family.ID)
	if err != nil {
		t.Fatalf("GetFamily() error: %v", err)
	}
	if len(got.Children) != 1 || len(got.Guardians) != 1 {
		t.Errorf("family mutated across organizations: %d children, %d guardians", len(got.Children), len(got.Guardians))
	}
}
