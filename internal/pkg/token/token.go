package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// New returns a 64-character hex string from 32 bytes of crypto/rand,
// used as the opaque session credential.
func New() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes failed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
