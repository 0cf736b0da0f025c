package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned by HashPassword for an empty password.
var ErrEmptyPassword = errors.New("password is empty")

// HashPassword produces the bcrypt hash stored in ADMIN_PASSWORD_HASH.
// A cost below bcrypt.MinCost means bcrypt.DefaultCost.  Passwords
// over 72 bytes fail with bcrypt.ErrPasswordTooLong rather than being
// silently truncated.
func HashPassword(plain string, cost int) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the admin hash.  A malformed
// hash never matches.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
