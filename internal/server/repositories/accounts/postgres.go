package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/foodduck/internal/common"
	"github.com/dmitrijs2005/foodduck/internal/dbx"
	"github.com/dmitrijs2005/foodduck/internal/server/models"
)

const (
	uniqueViolation = "23505"

	emailConstraint    = "accounts_email_key"
	nicknameConstraint = "accounts_nickname_key"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// mapWriteErr turns unique violations into the duplicate taxonomy.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case emailConstraint:
			return common.ErrDuplicateEmail
		case nicknameConstraint:
			return common.ErrDuplicateNickname
		}
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&a.ID, &a.Email, &a.Nickname, &a.PasswordHash, &a.Profile, &a.Deleted, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT id, email, nickname, password_hash, profile, deleted, created_at, updated_at
		 FROM accounts
		 WHERE email = $1 AND NOT deleted
		 `
	return r.findOne(ctx, query, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT id, email, nickname, password_hash, profile, deleted, created_at, updated_at
		 FROM accounts
		 WHERE id = $1 AND NOT deleted
		 `
	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1 AND NOT deleted)`, email)
}

func (r *PostgresRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE nickname = $1 AND NOT deleted)`, nickname)
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (email, nickname, password_hash, profile)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at
		 `
	err := r.db.QueryRowContext(ctx, query, a.Email, a.Nickname, a.PasswordHash, a.Profile).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Account) error {
	query :=
		`UPDATE accounts
		 SET nickname = $2, password_hash = $3, profile = $4, updated_at = now()
		 WHERE id = $1 AND NOT deleted
		 `
	res, err := r.db.ExecContext(ctx, query, a.ID, a.Nickname, a.PasswordHash, a.Profile)
	if err != nil {
		return mapWriteErr(err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query :=
		`UPDATE accounts
		 SET deleted = TRUE, updated_at = now()
		 WHERE id = $1 AND NOT deleted
		 `
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
