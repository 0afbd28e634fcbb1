package verification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

const (
	testPhone = "+15551234567"
	testOrg   = "org-1"
)

func newTestStore(t *testing.T) *MemoryCodeStore {
	t.Helper()
	s := NewMemoryCodeStore(DefaultTTL, DefaultMaxAttempts)
	t.Cleanup(s.Close)
	return s
}

func TestIssueReturnsNumericCode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	code, err := s.Issue(ctx, testPhone, testOrg)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if len(code) != DefaultCodeLength {
		t.Errorf("Issue() code length = %d, want %d", len(code), DefaultCodeLength)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Errorf("Issue() code %q contains non-digit %q", code, r)
		}
	}
}

func TestValidateIsSingleUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	code, err := s.Issue(ctx, testPhone, testOrg)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if err := s.Validate(ctx, testPhone, testOrg, code); err != nil {
		t.Fatalf("first Validate() error = %v, want nil", err)
	}

	// The code is consumed on success even with the correct value
	if err := s.Validate(ctx, testPhone, testOrg, code); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("second Validate() error = %v, want ErrCodeNotFound", err)
	}
}

func TestValidateUnknownKey(t *testing.T) {
	s := newTestStore(t)

	err := s.Validate(context.Background(), "+15550000000", testOrg, "123456")
	if !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("Validate() error = %v, want ErrCodeNotFound", err)
	}
}

func TestValidateExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	issued := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	code, err := s.Issue(ctx, testPhone, testOrg)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Expiry is time-based, not access-based: no intervening Validate call
	s.now = func() time.Time { return issued.Add(DefaultTTL + time.Second) }

	if err := s.Validate(ctx, testPhone, testOrg, code); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("Validate() after TTL error = %v, want ErrCodeExpired", err)
	}

	// The expired entry was deleted, so the next attempt sees no code
	if err := s.Validate(ctx, testPhone, testOrg, code); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("Validate() after expiry deletion error = %v, want ErrCodeNotFound", err)
	}
}

func TestValidateJustBeforeExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	issued := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	code, err := s.Issue(ctx, testPhone, testOrg)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	s.now = func() time.Time { return issued.Add(DefaultTTL) }

	if err := s.Validate(ctx, testPhone, testOrg, code); err != nil {
		t.Errorf("Validate() at exactly the TTL boundary error = %v, want nil", err)
	}
}

func TestAttemptCeiling(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	code, err := s.Issue(ctx, testPhone, testOrg)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	// Five wrong submissions each count and each report a mismatch
	for i := 0; i < DefaultMaxAttempts; i++ {
		if err := s.Validate(ctx, testPhone, testOrg, wrong); !errors.Is(err, ErrCodeMismatch) {
			t.Fatalf("attempt %d: Validate() error = %v, want ErrCodeMismatch", i+1, err)
		}
	}

	// The sixth attempt exceeds the ceiling even with the correct code
	if err := s.Validate(ctx, testPhone, testOrg, code); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("Validate() past ceiling error = %v, want ErrTooManyAttempts", err)
	}

	// The entry is gone afterwards
	if err := s.Validate(ctx, testPhone, testOrg, code); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("Validate() after ceiling deletion error = %v, want ErrCodeNotFound", err)
	}
}

func TestCorrectCodeOnFifthAttemptSucceeds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	code, err := s.Issue(ctx, testPhone, testOrg)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	wrong := "042117"
	if wrong == code {
		wrong = "042116"
	}

	// Four wrong guesses, then the right code on the fifth: the ceiling
	// is inclusive, so this still succeeds.
	for i := 0; i < 4; i++ {
		if err := s.Validate(ctx, testPhone, testOrg, wrong); !errors.Is(err, ErrCodeMismatch) {
			t.Fatalf("attempt %d: Validate() error = %v, want ErrCodeMismatch", i+1, err)
		}
	}
	if err := s.Validate(ctx, testPhone, testOrg, code); err != nil {
		t.Errorf("fifth Validate() with correct code error = %v, want nil", err)
	}
}

func TestReissueSupersedes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Issue(ctx, testPhone, testOrg)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	var second string
	// The generator can repeat; reissue until the codes differ so the
	// supersede check is meaningful.
	for i := 0; i < 20; i++ {
		second, err = s.Issue(ctx, testPhone, testOrg)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if second != first {
			break
		}
	}
	if second == first {
		t.Skip("could not draw a distinct second code")
	}

	if err := s.Validate(ctx, testPhone, testOrg, first); !errors.Is(err, ErrCodeMismatch) {
		t.Errorf("Validate() with superseded code error = %v, want ErrCodeMismatch", err)
	}
	if err := s.Validate(ctx, testPhone, testOrg, second); err != nil {
		t.Errorf("Validate() with fresh code error = %v, want nil", err)
	}
}

func TestKeysAreOrganizationScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	codeA, err := s.Issue(ctx, testPhone, "org-a")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// The same phone in another organization has no code
	if err := s.Validate(ctx, testPhone, "org-b", codeA); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("Validate() cross-organization error = %v, want ErrCodeNotFound", err)
	}
	if err := s.Validate(ctx, testPhone, "org-a", codeA); err != nil {
		t.Errorf("Validate() same organization error = %v, want nil", err)
	}
}

func TestInvalidate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	code, err := s.Issue(ctx, testPhone, testOrg)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if err := s.Invalidate(ctx, testPhone, testOrg); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if err := s.Validate(ctx, testPhone, testOrg, code); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("Validate() after Invalidate() error = %v, want ErrCodeNotFound", err)
	}
}

func TestConcurrentValidateCountsEveryAttempt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Issue(ctx, testPhone, testOrg); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Two simultaneous wrong guesses must increment the counter exactly
	// twice: no lost updates.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Validate(ctx, testPhone, testOrg, "999999")
		}()
	}
	wg.Wait()

	s.mu.Lock()
	entry := s.entries[codeKey(testPhone, testOrg)]
	s.mu.Unlock()
	if entry == nil {
		t.Fatal("entry missing after two attempts")
	}
	if entry.attempts != 2 {
		t.Errorf("attempts = %d, want 2", entry.attempts)
	}
}

func TestConcurrentAttackCannotExceedCeiling(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Issue(ctx, testPhone, testOrg); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	const attackers = 50
	results := make(chan error, attackers)

	var wg sync.WaitGroup
	for i := 0; i < attackers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Validate(ctx, testPhone, testOrg, "999999")
		}()
	}
	wg.Wait()
	close(results)

	// Under parallel attack at most maxAttempts guesses are ever
	// evaluated against the code; the rest see the entry invalidated.
	var evaluated int
	for err := range results {
		switch {
		case errors.Is(err, ErrCodeMismatch):
			evaluated++
		case errors.Is(err, ErrTooManyAttempts), errors.Is(err, ErrCodeNotFound):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if evaluated > DefaultMaxAttempts {
		t.Errorf("%d guesses were evaluated, ceiling is %d", evaluated, DefaultMaxAttempts)
	}
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	issued := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }

	if _, err := s.Issue(ctx, testPhone, testOrg); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	s.now = func() time.Time { return issued.Add(DefaultTTL + time.Minute) }

	// Run one sweep pass directly instead of waiting on the ticker
	s.mu.Lock()
	cutoff := s.now()
	for key, entry := range s.entries {
		if cutoff.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
	remaining := len(s.entries)
	s.mu.Unlock()

	if remaining != 0 {
		t.Errorf("entries after sweep = %d, want 0", remaining)
	}
}
