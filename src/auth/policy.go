package auth

import (
	"regexp"
	"strings"
)

var (
	rePasswordLetter  = regexp.MustCompile(`[a-zA-Z]`)
	rePasswordDigit   = regexp.MustCompile(`[0-9]`)
	rePasswordSpecial = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};:"\\|,.<>\?]`)
)

var EmailRegex = regexp.MustCompile(`^[^:\p{Cc} ]+@[^:\p{Cc} ]+\.[^:\p{Cc} ]+$`)

// IsEmail loosely checks that an address looks like an email. Actually
// delivering mail is the only real validation, so this just catches typos.
func IsEmail(address string) bool {
	return EmailRegex.Match([]byte(address))
}

// ValidatePassword checks a candidate password against the account policy:
// at least 10 characters, no spaces, and at least one letter, one digit, and
// one special character.
func ValidatePassword(password string) bool {
	if len(password) < 10 {
		return false
	}
	if strings.Contains(password, " ") {
		return false
	}
	if !rePasswordLetter.MatchString(password) {
		return false
	}
	if !rePasswordDigit.MatchString(password) {
		return false
	}
	if !rePasswordSpecial.MatchString(password) {
		return false
	}
	return true
}
