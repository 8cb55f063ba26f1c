package license

import (
	"testing"
)

func TestGenerateFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		key := Generate()
		if len(key) != KeyLength {
			t.Fatalf("key length = %d, want %d (%s)", len(key), KeyLength, key)
		}
		if !ValidateFormat(key) {
			t.Fatalf("generated key failed own format validation: %s", key)
		}
	}
}

func TestGenerateUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		key := Generate()
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate key after %d generations: %s", i, key)
		}
		seen[key] = struct{}{}
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"valid key", "A1B2-C3D4-E5F6-0789", true},
		{"all digits", "1234-5678-9012-3456", true},
		{"all hex letters", "ABCD-EFAB-CDEF-ABCD", true},
		{"empty", "", false},
		{"too short", "A1B2-C3D4-E5F6", false},
		{"too long", "A1B2-C3D4-E5F6-0789-AAAA", false},
		{"lowercase", "a1b2-c3d4-e5f6-0789", false},
		{"missing dashes", "A1B2C3D4E5F60789", false},
		{"wrong separator", "A1B2_C3D4_E5F6_0789", false},
		{"non-hex letter", "G1B2-C3D4-E5F6-0789", false},
		{"trailing space", "A1B2-C3D4-E5F6-0789 ", false},
		{"unbalanced groups", "A1B2C-3D4-E5F6-0789", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateFormat(tt.key); got != tt.want {
				t.Errorf("ValidateFormat(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a1b2-c3d4-e5f6-0789", "A1B2-C3D4-E5F6-0789"},
		{"  A1B2-C3D4-E5F6-0789  ", "A1B2-C3D4-E5F6-0789"},
		{"\tA1b2-C3D4-e5f6-0789\n", "A1B2-C3D4-E5F6-0789"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
