// Package common defines shared constants, helpers and sentinel errors used
// across the foodduck server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential validation errors.
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidNickname  = errors.New("invalid nickname")
	ErrWeakPassword     = errors.New("password does not satisfy the policy")
	ErrPasswordMismatch = errors.New("password confirmation does not match")

	// Account errors.
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrDuplicateNickname  = errors.New("nickname already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyProfileImage  = errors.New("profile image is empty")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken              = errors.New("invalid token")
	ErrTokenExpired              = errors.New("token expired")
	ErrInvalidRefreshToken       = errors.New("invalid refresh token")
	ErrInvalidAuthenticationCode = errors.New("invalid authentication code")
)
