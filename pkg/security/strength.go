package security

import (
	"fmt"
	"unicode"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

var ErrWeakPassword = fmt.Errorf("password must be at least %d characters and contain an uppercase letter, a lowercase letter, and a number", MinPasswordLength)

// CheckPasswordStrength requires MinPasswordLength characters with at least
// one upper-case letter, one lower-case letter and one digit.
func CheckPasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	const (
		hasUpper = 1 << iota
		hasLower
		hasDigit
	)
	var seen int
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			seen |= hasUpper
		case unicode.IsLower(r):
			seen |= hasLower
		case unicode.IsDigit(r):
			seen |= hasDigit
		}
	}
	if seen != hasUpper|hasLower|hasDigit {
		return ErrWeakPassword
	}
	return nil
}
