// Package codestore is the volatile key-value store with per-key expiry that
// holds one-time authentication numbers and revoked access token ids.
package codestore

import (
	"context"
	"time"
)

// Purpose is the key prefix separating the flows that share the store.
type Purpose string

const (
	PurposeTempPassword Purpose = "temp-password:"
	PurposeEmailVerify  Purpose = "email-verify:"
	PurposeLogout       Purpose = "logout:"
)

// Key builds the composite key purpose prefix + id.
func Key(p Purpose, id string) string {
	return string(p) + id
}

// Store is a key-value store with TTL. Set overwrites any live value under
// the same key. Get returns common.ErrorNotFound for absent or expired keys.
// Delete and Expire on a missing key are not errors.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
