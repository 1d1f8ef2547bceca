// Package accounts declares the server-side repository contract for account
// records and its PostgreSQL implementation.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/foodduck/internal/server/models"
)

// Repository reads and writes accounts. Soft-deleted accounts are invisible
// to every lookup. Lookups return common.ErrorNotFound when nothing matches;
// writes that break email/nickname uniqueness return common.ErrDuplicateEmail
// or common.ErrDuplicateNickname.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	// Update saves password hash, nickname and profile of an existing account.
	Update(ctx context.Context, a *models.Account) error
	SoftDelete(ctx context.Context, id string) error
}
