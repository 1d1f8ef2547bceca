package auth

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foodduck/internal/common"
	"github.com/dmitrijs2005/foodduck/internal/dbx"
	"github.com/dmitrijs2005/foodduck/internal/server/codestore"
	"github.com/dmitrijs2005/foodduck/internal/server/models"
	"github.com/dmitrijs2005/foodduck/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/foodduck/internal/timex"
)

// IssuerConfig carries the signing secret and token lifetimes.
type IssuerConfig struct {
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
}

// Issuer mints token pairs, keeps one refresh token per subject in the
// database and keeps revoked access token ids in the code store until they
// would have expired anyway.
type Issuer struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       codestore.Store
	secret      []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	now         timex.Clock
}

func NewIssuer(db *sql.DB, m repomanager.RepositoryManager, store codestore.Store, cfg IssuerConfig, now timex.Clock) *Issuer {
	if now == nil {
		now = timex.Now
	}
	return &Issuer{
		db:          db,
		repomanager: m,
		store:       store,
		secret:      []byte(cfg.SecretKey),
		accessTTL:   cfg.AccessTokenValidityDuration,
		refreshTTL:  cfg.RefreshTokenValidityDuration,
		now:         now,
	}
}

func (i *Issuer) signPair(subject string, roles []models.Role) (*models.TokenPair, error) {
	now := i.now()
	access, err := GenerateToken(subject, roles, KindAccess, i.secret, now, i.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := GenerateToken(subject, roles, KindRefresh, i.secret, now, i.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// CreatePair signs a new pair for subject and stores its refresh token,
// replacing the previous one.
func (i *Issuer) CreatePair(ctx context.Context, subject string, roles []models.Role) (*models.TokenPair, error) {
	pair, err := i.signPair(subject, roles)
	if err != nil {
		return nil, err
	}
	if err := i.SaveRefreshToken(ctx, subject, pair.RefreshToken); err != nil {
		return nil, err
	}
	return pair, nil
}

// SaveRefreshToken records token as subject's only valid refresh token.
func (i *Issuer) SaveRefreshToken(ctx context.Context, subject, token string) error {
	if err := i.repomanager.RefreshTokens(i.db).Save(ctx, subject, token, i.now().Add(i.refreshTTL)); err != nil {
		return fmt.Errorf("error saving refresh token: %w", err)
	}
	return nil
}

// ReissuePair checks presented against subject's stored refresh token and, on
// a match, rotates it in one transaction. Any mismatch, absence or expiry is
// common.ErrInvalidRefreshToken.
func (i *Issuer) ReissuePair(ctx context.Context, subject, presented string, roles []models.Role) (*models.TokenPair, error) {
	claims, err := ParseToken(presented, i.secret, i.now())
	if err != nil {
		return nil, common.ErrInvalidRefreshToken
	}
	if claims.Kind != KindRefresh || claims.Subject != subject {
		return nil, common.ErrInvalidRefreshToken
	}

	var pair *models.TokenPair
	err = dbx.WithTx(ctx, i.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := i.repomanager.RefreshTokens(tx)

		stored, err := repo.FindForUpdate(ctx, subject)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidRefreshToken
			}
			return fmt.Errorf("error searching refresh token: %w", err)
		}
		if subtle.ConstantTimeCompare([]byte(stored.Token), []byte(presented)) != 1 {
			return common.ErrInvalidRefreshToken
		}
		if !stored.Expires.After(i.now()) {
			return common.ErrInvalidRefreshToken
		}

		var signErr error
		pair, signErr = i.signPair(subject, roles)
		if signErr != nil {
			return signErr
		}
		if err := repo.Save(ctx, subject, pair.RefreshToken, i.now().Add(i.refreshTTL)); err != nil {
			return fmt.Errorf("error saving refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Revoke drops subject's refresh token and denylists accessToken for the rest
// of its lifetime. Tokens that are already invalid are ignored, so repeated
// calls succeed.
func (i *Issuer) Revoke(ctx context.Context, subject, accessToken string) error {
	if err := i.repomanager.RefreshTokens(i.db).Delete(ctx, subject); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	if accessToken == "" {
		return nil
	}

	now := i.now()
	claims, err := ParseToken(accessToken, i.secret, now)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	remaining := claims.ExpiresAt.Time.Sub(now)
	if remaining <= 0 {
		return nil
	}
	if err := i.store.Set(ctx, codestore.Key(codestore.PurposeLogout, claims.ID), subject, remaining); err != nil {
		return fmt.Errorf("error revoking access token: %w", err)
	}
	return nil
}

// Verify parses an access token and rejects refresh tokens and revoked ones.
func (i *Issuer) Verify(ctx context.Context, accessToken string) (*Claims, error) {
	claims, err := ParseToken(accessToken, i.secret, i.now())
	if err != nil {
		return nil, err
	}
	if claims.Kind != KindAccess {
		return nil, common.ErrInvalidToken
	}

	_, err = i.store.Get(ctx, codestore.Key(codestore.PurposeLogout, claims.ID))
	switch {
	case err == nil:
		return nil, common.ErrInvalidToken
	case errors.Is(err, common.ErrorNotFound):
		return claims, nil
	default:
		return nil, fmt.Errorf("error checking revoked tokens: %w", err)
	}
}
