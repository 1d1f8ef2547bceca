package reasons

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/foodduck/internal/dbx"
	"github.com/dmitrijs2005/foodduck/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, reason *models.SignOutReason) (*models.SignOutReason, error) {
	query :=
		`INSERT INTO sign_out_reasons (account_id, reason)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `
	err := r.db.QueryRowContext(ctx, query, reason.AccountID, reason.Reason).Scan(&reason.ID, &reason.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return reason, nil
}
