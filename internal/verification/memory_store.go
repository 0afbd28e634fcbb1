package verification

import (
	"context"
	"sync"
	"time"
)

type codeEntry struct {
	code      string
	expiresAt time.Time
	attempts  int
}

// MemoryCodeStore is a mutex-guarded in-process CodeStore. It is correct
// for a single-instance deployment only; replicas must use RedisCodeStore
// so all instances see the same attempt counters.
type MemoryCodeStore struct {
	mu          sync.Mutex
	entries     map[string]*codeEntry
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewMemoryCodeStore creates an in-memory code store. Zero values for ttl
// and maxAttempts select the defaults.
func NewMemoryCodeStore(ttl time.Duration, maxAttempts int) *MemoryCodeStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	s := &MemoryCodeStore{
		entries:     make(map[string]*codeEntry),
		ttl:         ttl,
		maxAttempts: maxAttempts,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	// Sweep expired entries so abandoned lookups don't accumulate
	go s.sweepExpired()
	return s
}

// Issue generates a fresh code for the key, overwriting any prior entry
func (s *MemoryCodeStore) Issue(ctx context.Context, phone, organizationID string) (string, error) {
	code, err := GenerateCode(DefaultCodeLength)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[codeKey(phone, organizationID)] = &codeEntry{
		code:      code,
		expiresAt: s.now().Add(s.ttl),
	}
	return code, nil
}

// Validate evaluates a candidate code. The read-compare-increment-delete
// sequence runs under one lock so concurrent guesses against the same key
// cannot race past the attempt ceiling.
func (s *MemoryCodeStore) Validate(ctx context.Context, phone, organizationID, candidate string) error {
	key := codeKey(phone, organizationID)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return ErrCodeNotFound
	}

	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return ErrCodeExpired
	}

	entry.attempts++
	if entry.attempts > s.maxAttempts {
		delete(s.entries, key)
		return ErrTooManyAttempts
	}

	if entry.code != candidate {
		return ErrCodeMismatch
	}

	// Single-use: consume on success
	delete(s.entries, key)
	return nil
}

// Invalidate removes any entry for the key
func (s *MemoryCodeStore) Invalidate(ctx context.Context, phone, organizationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, codeKey(phone, organizationID))
	return nil
}

// Close stops the background sweeper
func (s *MemoryCodeStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// sweepExpired periodically removes expired entries. Expiry is enforced on
// read in Validate; the sweep only bounds memory.
func (s *MemoryCodeStore) sweepExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			cutoff := s.now()
			for key, entry := range s.entries {
				if cutoff.After(entry.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
