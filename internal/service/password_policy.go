package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/compoundrx/storefront/internal/config"
)

// passwordPolicyError carries which rule failed while still matching
// ErrWeakPassword through errors.Is.
type passwordPolicyError struct {
	reason string
}

func (e *passwordPolicyError) Error() string {
	return fmt.Sprintf("password does not meet policy: %s", e.reason)
}

func (e *passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

// validatePassword checks a candidate password against the configured
// complexity rules.
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	minLength := policy.MinLength
	if minLength <= 0 {
		minLength = 8
	}
	if len(password) < minLength {
		return &passwordPolicyError{reason: fmt.Sprintf("at least %d characters required", minLength)}
	}
	if strings.TrimSpace(password) != password {
		return &passwordPolicyError{reason: "no leading or trailing spaces"}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if policy.RequireUpper && !hasUpper {
		return &passwordPolicyError{reason: "an uppercase letter is required"}
	}
	if policy.RequireLower && !hasLower {
		return &passwordPolicyError{reason: "a lowercase letter is required"}
	}
	if policy.RequireNumber && !hasNumber {
		return &passwordPolicyError{reason: "a digit is required"}
	}
	if policy.RequireSpecial && !hasSpecial {
		return &passwordPolicyError{reason: "a special character is required"}
	}
	return nil
}
