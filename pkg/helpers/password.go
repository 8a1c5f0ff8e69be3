package helpers

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPasswordCost keeps a single verification around 100-250ms on commodity hardware.
const DefaultPasswordCost = 12

// HashPassword hashes the plain text password using bcrypt with the given cost.
// Costs outside bcrypt's range fall back to DefaultPasswordCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares a bcrypt hash with a plain password.
// A malformed hash is reported as an error, a mismatch as (false, nil).
func CheckPassword(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
