package security

import (
	"crypto/rand"
	"math/big"
)

const (
	secureIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// 22 base62 characters carry just over 128 bits of entropy, the same
	// class of strength as a v4 UUID. The secure id is the only credential
	// needed to resolve a check-in, so it must be infeasible to enumerate.
	secureIDLength = 22
)

// GenerateSecureID creates an unguessable token for pickup QR codes.
// It is drawn entirely from a cryptographically secure source and carries
// no relationship to the record's primary key or creation time.
func GenerateSecureID() (string, error) {
	id := make([]byte, secureIDLength)
	for i := 0; i < secureIDLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(secureIDAlphabet))))
		if err != nil {
			return "", err
		}
		id[i] = secureIDAlphabet[num.Int64()]
	}
	return string(id), nil
}
