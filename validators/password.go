package validators

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

var (
	ErrPasswordEmpty     = errors.New("no password provided")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong   = errors.New("password exceeds the 72 byte hashing limit")
	ErrPasswordNoUpper   = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLower   = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoDigit   = errors.New("password must contain at least one number")
	ErrPasswordNoSpecial = errors.New("password must contain at least one special character")
)

var policyErrors = []error{
	ErrPasswordEmpty,
	ErrPasswordTooShort,
	ErrPasswordTooLong,
	ErrPasswordNoUpper,
	ErrPasswordNoLower,
	ErrPasswordNoDigit,
	ErrPasswordNoSpecial,
}

// PasswordValidator enforces the password policy server-side. The byte
// limit comes first so oversized inputs fail with a message that names
// the hashing limit instead of a generic weakness error. bcrypt ignores
// everything past 72 bytes, so such passwords must never reach it.
func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) > 72 {
		return ErrPasswordTooLong
	}

	if utf8.RuneCountInString(p) < 8 {
		return ErrPasswordTooShort
	}

	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	if !upper {
		return ErrPasswordNoUpper
	}
	if !lower {
		return ErrPasswordNoLower
	}
	if !digit {
		return ErrPasswordNoDigit
	}
	if !special {
		return ErrPasswordNoSpecial
	}

	return nil
}

// IsPolicyViolation reports whether err is one of the password policy
// errors, so handlers can map them to a 400 without listing each one.
func IsPolicyViolation(err error) bool {
	for _, e := range policyErrors {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
