package auth

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/sakif/alive-sleep/internal/apperror"
)

const (
	sessionKeySize = 32
	sessionKeyInfo = "alive-sleep session signing key v1"
)

// SessionKey returns the HMAC key for session tokens. An explicit
// SESSION_SECRET wins; otherwise the key is derived from ENCRYPTION_KEY with
// HKDF-SHA256 so the identifier-hash key is never used for signing directly.
func SessionKey(sessionSecret, encryptionKey string) ([]byte, error) {
	if sessionSecret != "" {
		if len(sessionSecret) < 16 {
			return nil, apperror.Configuration("SESSION_SECRET", "must be at least 16 characters")
		}
		return []byte(sessionSecret), nil
	}
	if encryptionKey == "" {
		return nil, apperror.Configuration("ENCRYPTION_KEY", "hashing key is required")
	}

	key := make([]byte, sessionKeySize)
	r := hkdf.New(sha256.New, []byte(encryptionKey), nil, []byte(sessionKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("auth: deriving session key: %w", err)
	}
	return key, nil
}
