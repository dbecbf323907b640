package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

var ErrInvalidToken = errors.New("invalid CSRF token")

// TokenManager generates CSRF tokens. Tokens are cryptographically random and
// stored server-side in the session row; verification happens in middleware
// with a constant-time comparison, not a cryptographic signature.
type TokenManager struct{}

// NewTokenManager creates a new CSRF token manager.
func NewTokenManager() *TokenManager {
	return &TokenManager{}
}

// Generate creates a random CSRF token: 32 random bytes (256 bits of
// entropy), returned as a 64-character hex string.
func (tm *TokenManager) Generate() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	return hex.EncodeToString(randomBytes), nil
}
