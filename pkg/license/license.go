// Package license generates and validates the license keys the Chrome
// extension presents to prove entitlement.
//
// Key format: XXXX-XXXX-XXXX-XXXX, uppercase hex, 19 characters including
// dashes. The format is persisted and externally visible, so it must stay
// stable.
package license

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const (
	// Groups of 4 characters, 4 groups, dash separated.
	groupLen   = 4
	groupCount = 4
	KeyLength  = groupCount*groupLen + (groupCount - 1) // 19
)

var keyPattern = regexp.MustCompile(`^[A-F0-9]{4}-[A-F0-9]{4}-[A-F0-9]{4}-[A-F0-9]{4}$`)

// Generate draws 16 bytes (128 bits) from the OS CSPRNG and formats them as
// four dash-separated groups. Collisions are negligible at this entropy; the
// store's unique index on license_key is the final guard.
//
// A failing random source is a fatal configuration error, not a retryable
// condition, so Generate panics rather than returning an error.
func Generate() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("license: random source unavailable: %v", err))
	}

	// 16 bytes hex-encode to 32 characters; the key consumes the first 16.
	encoded := strings.ToUpper(hex.EncodeToString(buf))
	groups := make([]string, 0, groupCount)
	for i := 0; i < groupCount; i++ {
		groups = append(groups, encoded[i*groupLen:(i+1)*groupLen])
	}
	return strings.Join(groups, "-")
}

// ValidateFormat reports whether the input matches the fixed key format.
// It performs no store access; callers use it to reject malformed input
// before any lookup.
func ValidateFormat(key string) bool {
	if len(key) != KeyLength {
		return false
	}
	return keyPattern.MatchString(key)
}

// Normalize trims surrounding whitespace and uppercases the key so that
// user-pasted input compares against stored keys. It does not validate.
func Normalize(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
