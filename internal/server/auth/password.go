// Package auth implements the two credentials of the admin surface:
// a bcrypt check of the configured admin password and stateless,
// self-verifying session tokens.
package auth

import "golang.org/x/crypto/bcrypt"

// Verifier checks candidate passwords against a pre-configured bcrypt hash.
// A Verifier with no hash rejects everything: a misconfigured deployment
// fails closed, never open.
type Verifier struct {
	hash []byte
}

// NewVerifier builds a Verifier from the configured hash. An empty string
// is allowed and yields a verifier that always returns false.
func NewVerifier(hash string) *Verifier {
	return &Verifier{hash: []byte(hash)}
}

// Verify reports whether candidate matches the stored hash. It never
// returns an error: any failure (absent hash, malformed hash, mismatch)
// reads as false.
func (v *Verifier) Verify(candidate string) bool {
	if len(v.hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(v.hash, []byte(candidate)) == nil
}

// HashPassword produces a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
