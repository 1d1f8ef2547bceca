// Package validator holds the pure credential checks applied before any
// account is written: email format, nickname presence, password strength and
// password confirmation.
package validator

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/foodduck/internal/common"
)

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)

// Policy is the password complexity rule.
type Policy struct {
	MinLength int
	MaxLength int
}

// DefaultPolicy requires 8..20 characters with a letter, a digit and a
// special character.
var DefaultPolicy = Policy{MinLength: 8, MaxLength: 20}

// Validator applies a Policy. The zero value uses DefaultPolicy.
type Validator struct {
	policy Policy
}

func New(p Policy) *Validator {
	return &Validator{policy: p}
}

func (v *Validator) currentPolicy() Policy {
	if v == nil || v.policy.MinLength == 0 {
		return DefaultPolicy
	}
	return v.policy
}

// ValidateEmail fails with common.ErrInvalidEmail unless email looks like local@domain.tld.
func (v *Validator) ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return common.ErrInvalidEmail
	}
	return nil
}

// ValidateNickname fails with common.ErrInvalidNickname on a blank nickname.
func (v *Validator) ValidateNickname(nickname string) error {
	if strings.TrimSpace(nickname) == "" {
		return common.ErrInvalidNickname
	}
	return nil
}

// ValidatePasswordStrength fails with common.ErrWeakPassword when password
// breaks the policy.
func (v *Validator) ValidatePasswordStrength(password string) error {
	p := v.currentPolicy()

	n := utf8.RuneCountInString(password)
	if n < p.MinLength || (p.MaxLength > 0 && n > p.MaxLength) {
		return common.ErrWeakPassword
	}

	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return common.ErrWeakPassword
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasLetter || !hasDigit || !hasSpecial {
		return common.ErrWeakPassword
	}
	return nil
}

// ValidateConfirmation fails with common.ErrPasswordMismatch unless both strings are equal.
func (v *Validator) ValidateConfirmation(password, confirmation string) error {
	if password != confirmation {
		return common.ErrPasswordMismatch
	}
	return nil
}

// ValidateNewPassword checks a new password and its confirmation. A mismatch
// is reported as common.ErrPasswordMismatch whatever the strength of either
// string; only a confirmed password is checked against the policy.
func (v *Validator) ValidateNewPassword(password, confirmation string) error {
	if err := v.ValidateConfirmation(password, confirmation); err != nil {
		return err
	}
	return v.ValidatePasswordStrength(password)
}
