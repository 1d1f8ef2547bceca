// Package reasons stores the free-text reasons accounts leave with.
package reasons

import (
	"context"

	"github.com/dmitrijs2005/foodduck/internal/server/models"
)

// Repository writes sign-out reasons. Records are never updated.
type Repository interface {
	Create(ctx context.Context, r *models.SignOutReason) (*models.SignOutReason, error)
}
