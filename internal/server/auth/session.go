package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pmorel/cv-backend/internal/common"
)

const sessionSubject = "admin"

// Sessions issues and validates admin session tokens. Tokens are HS256 JWTs
// carrying only an expiry: validity is a pure function of (token, clock,
// signing secret), with no server-side session state and therefore no
// revocation short of rotating the secret.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions builds a session manager. secret is the signing key (the
// configured admin password hash); ttl is the validity window.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue mints a new session token valid for the configured TTL.
// With no signing secret configured there is nothing to mint.
func (s *Sessions) Issue() (string, error) {
	if len(s.secret) == 0 {
		return "", common.ErrorUnauthorized
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	return token.SignedString(s.secret)
}

// Validate reports whether token is a live admin session. Malformed input,
// a bad signature, a wrong signing algorithm, an expired token, or an
// unconfigured secret all read as false; Validate never panics.
func (s *Sessions) Validate(tokenString string) bool {
	if len(s.secret) == 0 || tokenString == "" {
		return false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return false
	}

	return claims.Subject == sessionSubject
}

// TTL returns the configured session lifetime, mirrored by the cookie Max-Age.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}
