// Package refreshtokens provides a PostgreSQL-backed repository for managing
// refresh tokens used in the server's authentication flow.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foodduck/internal/common"
	"github.com/dmitrijs2005/foodduck/internal/dbx"
	"github.com/dmitrijs2005/foodduck/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, subject string, token string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (subject, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (subject) DO UPDATE
		SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, created_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, subject, token, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const findQuery = `
		SELECT subject, token, expires_at, created_at
		FROM refresh_tokens
		WHERE subject = $1
	`

func (r *PostgresRepository) find(ctx context.Context, query, subject string) (*models.RefreshToken, error) {
	t := &models.RefreshToken{}
	if err := r.db.QueryRowContext(ctx, query, subject).Scan(&t.Subject, &t.Token, &t.Expires, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Find(ctx context.Context, subject string) (*models.RefreshToken, error) {
	return r.find(ctx, findQuery, subject)
}

// FindForUpdate must run inside a transaction for the lock to outlive the read.
func (r *PostgresRepository) FindForUpdate(ctx context.Context, subject string) (*models.RefreshToken, error) {
	return r.find(ctx, findQuery+"FOR UPDATE", subject)
}

func (r *PostgresRepository) Delete(ctx context.Context, subject string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE subject = $1
	`
	if _, err := r.db.ExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
