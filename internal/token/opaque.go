package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dtroode/taskflow-server/internal/model"
)

// SessionTokenBytes is the amount of randomness in a session token.
const SessionTokenBytes = 32

var _ model.TokenGenerator = (*Opaque)(nil)

// Opaque produces random hex session tokens. The token carries no claims;
// its meaning lives in the sessions table.
type Opaque struct {
	source io.Reader
}

// NewOpaque creates a generator reading from crypto/rand.
func NewOpaque() *Opaque {
	return &Opaque{source: rand.Reader}
}

// Generate returns a new 64-character hex token.
func (o *Opaque) Generate() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := io.ReadFull(o.source, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
