package application

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// newSecretToken generates an opaque random token (n bytes, 2n hex characters).
func newSecretToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
