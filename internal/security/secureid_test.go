package security

import (
	"strings"
	"testing"
)

func TestGenerateSecureID(t *testing.T) {
	t.Run("length and alphabet", func(t *testing.T) {
		id, err := GenerateSecureID()
		if err != nil {
			t.Fatalf("GenerateSecureID() error = %v", err)
		}
		if len(id) != secureIDLength {
			t.Errorf("length = %d, want %d", len(id), secureIDLength)
		}
		for _, r := range id {
			if !strings.ContainsRune(secureIDAlphabet, r) {
				t.Errorf("id %q contains %q outside the base62 alphabet", id, r)
			}
		}
	})

	t.Run("uniqueness", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			id, err := GenerateSecureID()
			if err != nil {
				t.Fatalf("GenerateSecureID() error = %v", err)
			}
			if seen[id] {
				t.Fatalf("duplicate secure id generated: %s", id)
			}
			seen[id] = true
		}
	})
}
