// Package security contains everything related to the security of user data
package security

import (
	"myfuture/api/validators"

	"golang.org/x/crypto/bcrypt"
)

// Passwords hashes and verifies user passwords with bcrypt. The cost is
// injectable so tests can run with bcrypt.MinCost.
type Passwords struct {
	Cost int
}

func NewPasswords(cost int) *Passwords {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &Passwords{Cost: cost}
}

// Hash re-applies the password policy before hashing so a caller that
// skipped validation still can't store a hash of a weak or truncated
// password.
func (p *Passwords) Hash(password string) (string, error) {
	if err := validators.PasswordValidator(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.Cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether password matches the stored hash. Malformed or
// foreign-format hashes count as a mismatch, never an error.
func (p *Passwords) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
