// Package verification issues and validates one-time phone verification
// codes. Codes are a security control: they are generated from a
// cryptographically secure source, expire on a fixed TTL, are limited to a
// fixed number of submissions, and are single-use regardless of outcome.
package verification

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultCodeLength is the number of digits in a verification code
	DefaultCodeLength = 6

	// DefaultTTL is how long a code stays valid after issuance
	DefaultTTL = 10 * time.Minute

	// DefaultMaxAttempts is the submission ceiling, inclusive: the Nth
	// attempt is still evaluated, the (N+1)th invalidates the code.
	DefaultMaxAttempts = 5
)

var (
	// ErrCodeNotFound means no code exists for the key: never issued,
	// already consumed, or invalidated.
	ErrCodeNotFound = errors.New("verification code not found")

	// ErrCodeExpired means the code's TTL has passed. The entry is deleted.
	ErrCodeExpired = errors.New("verification code expired")

	// ErrCodeMismatch means the submitted code was wrong. The entry is
	// retained and the attempt already counted.
	ErrCodeMismatch = errors.New("verification code mismatch")

	// ErrTooManyAttempts means the submission ceiling was exceeded.
	// The entry is deleted.
	ErrTooManyAttempts = errors.New("too many verification attempts")
)

// CodeStore issues and validates one-time phone verification codes keyed
// by (phone, organization). Implementations must make Validate atomic per
// key: concurrent guesses may never observe a stale attempt counter.
type CodeStore interface {
	// Issue generates and stores a fresh code, superseding any prior
	// unexpired entry for the key, and returns the plaintext code so the
	// caller can dispatch it.
	Issue(ctx context.Context, phone, organizationID string) (string, error)

	// Validate checks a candidate code. On success the entry is consumed.
	// Failure reasons are ErrCodeNotFound, ErrCodeExpired, ErrCodeMismatch
	// and ErrTooManyAttempts.
	Validate(ctx context.Context, phone, organizationID, candidate string) error

	// Invalidate removes any entry for the key.
	Invalidate(ctx context.Context, phone, organizationID string) error
}

// codeKey builds the store key for a phone scoped to an organization
func codeKey(phone, organizationID string) string {
	return phone + "|" + organizationID
}
