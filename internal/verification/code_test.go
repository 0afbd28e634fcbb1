package verification

import "testing"

func TestGenerateCode(t *testing.T) {
	tests := []struct {
		name   string
		length int
	}{
		{name: "six digits", length: 6},
		{name: "four digits", length: 4},
		{name: "eight digits", length: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := GenerateCode(tt.length)
			if err != nil {
				t.Fatalf("GenerateCode() error = %v", err)
			}
			if len(code) != tt.length {
				t.Errorf("GenerateCode() length = %d, want %d", len(code), tt.length)
			}
			for _, r := range code {
				if r < '0' || r > '9' {
					t.Errorf("GenerateCode() = %q, contains non-digit", code)
				}
			}
		})
	}
}

func TestGenerateCodeVariability(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateCode(6)
		if err != nil {
			t.Fatalf("GenerateCode() error = %v", err)
		}
		seen[code] = true
	}
	// 50 draws from a million-value space colliding down to a handful
	// would indicate a broken random source
	if len(seen) < 45 {
		t.Errorf("only %d distinct codes in 50 draws", len(seen))
	}
}
