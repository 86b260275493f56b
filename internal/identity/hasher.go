// Package identity turns identity-provider subjects into storage keys.
//
// The raw subject (e.g. "auth0|64f...") is never persisted. Instead we store a
// keyed HMAC-SHA256 of it: deterministic, so the same subject always finds the
// same user row, and one-way, so a leaked users table does not reveal which
// provider accounts use the app.
package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/sakif/alive-sleep/internal/apperror"
)

// Hasher is safe for concurrent use; it holds only the immutable key.
type Hasher struct {
	key []byte
}

func NewHasher(key string) (*Hasher, error) {
	if key == "" {
		return nil, apperror.Configuration("ENCRYPTION_KEY", "hashing key is required")
	}
	return &Hasher{key: []byte(key)}, nil
}

// Hash returns the lowercase hex HMAC-SHA256 of identifier.
func (h *Hasher) Hash(identifier string) (string, error) {
	if identifier == "" {
		return "", apperror.InvalidArgument("identifier", "identifier must be provided for hashing")
	}
	if h == nil || len(h.key) == 0 {
		return "", apperror.Configuration("ENCRYPTION_KEY", "hashing key is required")
	}

	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(identifier))
	return hex.EncodeToString(mac.Sum(nil)), nil
}
