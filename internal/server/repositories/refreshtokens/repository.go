// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/foodduck/internal/server/models"
)

// Repository keeps at most one refresh token per subject.
type Repository interface {
	// Save stores token for subject, valid until expiresAt, replacing any
	// token the subject had.
	Save(ctx context.Context, subject string, token string, expiresAt time.Time) error

	// Find returns the subject's current refresh token, or a not-found error.
	Find(ctx context.Context, subject string) (*models.RefreshToken, error)

	// FindForUpdate is Find that also locks the row until the surrounding
	// transaction ends, so concurrent rotations of one token serialize.
	FindForUpdate(ctx context.Context, subject string) (*models.RefreshToken, error)

	// Delete removes the subject's refresh token. Deleting a non-existent
	// token is not an error.
	Delete(ctx context.Context, subject string) error
}
