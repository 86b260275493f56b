package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/alive-sleep/internal/apperror"
)

const (
	SessionCookie = "alive_session"
	sessionIssuer = "alive-sleep"
)

// Identity is what the identity provider told us about the caller at login.
// Subject is the provider's stable id ("auth0|..."); it is only ever kept in
// the signed cookie, never in the database.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// SessionService signs and verifies the session cookie. The cookie is an
// HS256 JWT, so the server stays stateless: no session table.
type SessionService struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSessionService(key []byte, ttl time.Duration) (*SessionService, error) {
	if len(key) < 16 {
		return nil, apperror.Configuration("SESSION_SECRET", "session key must be at least 16 bytes")
	}
	return &SessionService{key: key, ttl: ttl, now: time.Now}, nil
}

func (s *SessionService) TTL() time.Duration { return s.ttl }

type sessionClaims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Issue returns a signed token for id, valid for the configured TTL.
func (s *SessionService) Issue(id Identity) (string, error) {
	if id.Subject == "" {
		return "", apperror.InvalidArgument("sub", "identity has no subject")
	}

	now := s.now()
	c := sessionClaims{
		Email:   id.Email,
		Name:    id.Name,
		Picture: id.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("auth: signing session: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, issuer and expiry. Any failure is ErrUnauthorized.
func (s *SessionService) Validate(token string) (*Identity, error) {
	var c sessionClaims
	_, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Unauthorized("session expired")
		}
		return nil, apperror.Unauthorized("invalid session")
	}
	if c.Subject == "" {
		return nil, apperror.Unauthorized("session has no subject")
	}

	return &Identity{Subject: c.Subject, Email: c.Email, Name: c.Name, Picture: c.Picture}, nil
}
