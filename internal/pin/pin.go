// Package pin hashes and verifies numeric PIN credentials.
package pin

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the PBKDF2 work factor.
	DefaultIterations = 100000
	saltBytes         = 16
	keyBytes          = 32
)

var pinPattern = regexp.MustCompile(`^\d{4,8}$`)

// Valid reports whether pin is 4 to 8 ASCII digits.
func Valid(pin string) bool {
	return pinPattern.MatchString(pin)
}

// Hasher derives PIN hashes with PBKDF2-HMAC-SHA256.
type Hasher struct {
	iterations int
}

// NewHasher creates a Hasher. Non-positive iterations fall back to the default.
func NewHasher(iterations int) *Hasher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Hasher{iterations: iterations}
}

// NewSalt returns a random hex-encoded salt.
func (h *Hasher) NewSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash derives the hex-encoded key for pin and salt.
func (h *Hasher) Hash(pin, salt string) string {
	key := pbkdf2.Key([]byte(pin), []byte(salt), h.iterations, keyBytes, sha256.New)
	return hex.EncodeToString(key)
}

// Verify recomputes the hash and compares it in constant time.
func (h *Hasher) Verify(pin, salt, hash string) bool {
	got := h.Hash(pin, salt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(hash)) == 1
}
