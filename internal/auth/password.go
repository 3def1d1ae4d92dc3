package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives a bcrypt hash from the plaintext password. The
// plaintext is never stored.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password with a stored hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordPolicy validates password strength. Every violated rule is
// reported so the caller can surface them together.
type PasswordPolicy struct {
	MinLength int
}

// commonPasswords is a short list of passwords rejected outright. Entries
// are compared case-insensitively.
var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"passw0rd":   {},
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"qwerty123":  {},
	"qwertyuiop": {},
	"letmein1":   {},
	"iloveyou1":  {},
	"admin123":   {},
	"welcome1":   {},
	"sunshine1":  {},
	"football1":  {},
	"monkey123":  {},
	"dragon123":  {},
}

// Validate checks a password against the policy. userAttributes are values
// tied to the account (username, email, names); a password too similar to
// any of them is rejected.
func (p PasswordPolicy) Validate(password string, userAttributes ...string) []string {
	var violations []string

	minLength := p.MinLength
	if minLength == 0 {
		minLength = 8
	}

	if len(password) < minLength {
		violations = append(violations, "password is too short")
	}

	if isEntirelyNumeric(password) {
		violations = append(violations, "password is entirely numeric")
	}

	if _, found := commonPasswords[strings.ToLower(password)]; found {
		violations = append(violations, "password is too common")
	}

	for _, attr := range userAttributes {
		if tooSimilar(password, attr) {
			violations = append(violations, "password is too similar to account details")
			break
		}
	}

	return violations
}

func isEntirelyNumeric(password string) bool {
	if password == "" {
		return false
	}
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tooSimilar reports whether the password contains (or is contained in) an
// account attribute. Short attributes and the local part of emails count;
// trivial fragments do not.
func tooSimilar(password, attribute string) bool {
	attribute = strings.TrimSpace(attribute)
	if at := strings.IndexByte(attribute, '@'); at > 0 {
		attribute = attribute[:at]
	}
	if len(attribute) < 4 {
		return false
	}

	pw := strings.ToLower(password)
	attr := strings.ToLower(attribute)
	return strings.Contains(pw, attr) || strings.Contains(attr, pw)
}
