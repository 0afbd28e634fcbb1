package verification

import (
	"crypto/rand"
	"math/big"
)

// GenerateCode generates a numeric code of the given length using a
// cryptographically secure random source. Codes gate access to a family's
// children, so a predictable PRNG is not acceptable here.
func GenerateCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}
	return string(code), nil
}
