// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// tokenBytes is the entropy of invite and password-reset tokens.
const tokenBytes = 32

// GenerateToken returns a URL-safe one-time token for an emailed link and
// the SHA-256 hex digest to persist in its place.
func GenerateToken() (token string, hash string, err error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	return token, HashString(token), nil
}

// HashString is how one-time tokens are looked up: only the digest is stored.
func HashString(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
