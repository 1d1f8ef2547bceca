// Package services contains server-side business logic. This file implements
// AccountService, which runs the account lifecycle: registration, login,
// token reissue, one-time numbers sent by email, password changes, logout,
// sign-out and the profile image.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foodduck/internal/common"
	"github.com/dmitrijs2005/foodduck/internal/cryptox"
	"github.com/dmitrijs2005/foodduck/internal/dbx"
	"github.com/dmitrijs2005/foodduck/internal/logging"
	"github.com/dmitrijs2005/foodduck/internal/server/codestore"
	"github.com/dmitrijs2005/foodduck/internal/server/mailer"
	"github.com/dmitrijs2005/foodduck/internal/server/models"
	"github.com/dmitrijs2005/foodduck/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/foodduck/internal/server/storage"
	"github.com/dmitrijs2005/foodduck/internal/server/validator"
)

const (
	DefaultCodeTTL    = 5 * time.Minute
	DefaultCodeLength = 5
	DefaultProfileDir = "account/profile/"

	tempNumberSubject   = "[foodduck] Your temporary authentication number"
	verifyNumberSubject = "[foodduck] Confirm your email address"
)

// TokenIssuer is the part of auth.Issuer the service relies on.
type TokenIssuer interface {
	CreatePair(ctx context.Context, subject string, roles []models.Role) (*models.TokenPair, error)
	ReissuePair(ctx context.Context, subject, refreshToken string, roles []models.Role) (*models.TokenPair, error)
	Revoke(ctx context.Context, subject, accessToken string) error
}

// Deps are the collaborators of AccountService.
type Deps struct {
	Issuer    TokenIssuer
	Codes     codestore.Store
	Mailer    mailer.Sender
	Uploader  storage.Uploader
	Hasher    cryptox.Hasher
	Validator *validator.Validator
	Log       logging.Logger
}

// Options tune the one-time numbers and the profile upload. Zero values take
// the package defaults.
type Options struct {
	CodeTTL    time.Duration
	CodeLength int
	ProfileDir string
	// CodeGenerator returns n random decimal digits.
	CodeGenerator func(n int) (string, error)
}

func (o Options) withDefaults() Options {
	if o.CodeTTL <= 0 {
		o.CodeTTL = DefaultCodeTTL
	}
	if o.CodeLength <= 0 {
		o.CodeLength = DefaultCodeLength
	}
	if o.ProfileDir == "" {
		o.ProfileDir = DefaultProfileDir
	}
	if o.CodeGenerator == nil {
		o.CodeGenerator = func(n int) (string, error) { return common.RandomDigits(nil, n) }
	}
	return o
}

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      TokenIssuer
	codes       codestore.Store
	mailer      mailer.Sender
	uploader    storage.Uploader
	hasher      cryptox.Hasher
	validator   *validator.Validator
	log         logging.Logger
	opts        Options
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, deps Deps, opts Options) *AccountService {
	v := deps.Validator
	if v == nil {
		v = validator.New(validator.DefaultPolicy)
	}
	return &AccountService{
		db:          db,
		repomanager: m,
		issuer:      deps.Issuer,
		codes:       deps.Codes,
		mailer:      deps.Mailer,
		uploader:    deps.Uploader,
		hasher:      deps.Hasher,
		validator:   v,
		log:         deps.Log.With("module", "accounts"),
		opts:        opts.withDefaults(),
	}
}

// SignUp registers a new account and signs it in. Every check runs before
// the first write.
func (s *AccountService) SignUp(ctx context.Context, req SignUpRequest) (*models.TokenPair, error) {
	if err := s.validator.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := s.CheckNickname(ctx, req.Nickname); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateNewPassword(req.Password, req.CheckPassword); err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts(s.db)

	exists, err := repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, common.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account, err := repo.Create(ctx, &models.Account{
		Email:        req.Email,
		Nickname:     req.Nickname,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "account created", "id", account.ID)

	return s.issuer.CreatePair(ctx, account.Email, models.UserRoles())
}

// CheckNickname fails with common.ErrDuplicateNickname when nickname is taken.
func (s *AccountService) CheckNickname(ctx context.Context, nickname string) error {
	if err := s.validator.ValidateNickname(nickname); err != nil {
		return err
	}
	taken, err := s.repomanager.Accounts(s.db).ExistsByNickname(ctx, nickname)
	if err != nil {
		return fmt.Errorf("error checking nickname: %w", err)
	}
	if taken {
		return common.ErrDuplicateNickname
	}
	return nil
}

func (s *AccountService) findByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*models.TokenPair, error) {
	account, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Compare(account.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("error comparing password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	return s.issuer.CreatePair(ctx, account.Email, models.UserRoles())
}

// ReIssueToken exchanges the current refresh token of email for a new pair.
func (s *AccountService) ReIssueToken(ctx context.Context, email, refreshToken string) (*models.TokenPair, error) {
	return s.issuer.ReissuePair(ctx, email, refreshToken, models.UserRoles())
}

// issueNumber stores a fresh number under purpose+email, replacing any
// earlier one, and only then mails it.
func (s *AccountService) issueNumber(ctx context.Context, purpose codestore.Purpose, email, subject string) error {
	code, err := s.opts.CodeGenerator(s.opts.CodeLength)
	if err != nil {
		return fmt.Errorf("error generating number: %w", err)
	}

	if err := s.codes.Set(ctx, codestore.Key(purpose, email), code, s.opts.CodeTTL); err != nil {
		return fmt.Errorf("error storing number: %w", err)
	}

	body := fmt.Sprintf("Your authentication number is %s. It is valid for %s.", code, s.opts.CodeTTL)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		s.log.Warn(ctx, "authentication number not delivered", "purpose", string(purpose), "error", err)
		return fmt.Errorf("error sending number: %w", err)
	}
	return nil
}

// SendTempAuthenticateNumber mails a one-time number to an existing account
// for the forgotten password flow.
func (s *AccountService) SendTempAuthenticateNumber(ctx context.Context, email string) error {
	exists, err := s.repomanager.Accounts(s.db).ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("error checking email: %w", err)
	}
	if !exists {
		return common.ErrUserNotFound
	}
	return s.issueNumber(ctx, codestore.PurposeTempPassword, email, tempNumberSubject)
}

// SendEmailVerifyNumber mails a one-time number to an address that is about
// to be registered.
func (s *AccountService) SendEmailVerifyNumber(ctx context.Context, email string) error {
	if err := s.validator.ValidateEmail(email); err != nil {
		return err
	}
	exists, err := s.repomanager.Accounts(s.db).ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return common.ErrDuplicateEmail
	}
	return s.issueNumber(ctx, codestore.PurposeEmailVerify, email, verifyNumberSubject)
}

// matchNumber checks submitted against the number stored under key.
func (s *AccountService) matchNumber(ctx context.Context, key, submitted string) error {
	stored, err := s.codes.Get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidAuthenticationCode
		}
		return fmt.Errorf("error reading number: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return common.ErrInvalidAuthenticationCode
	}
	return nil
}

// compareNumber consumes the stored number on a match.
func (s *AccountService) compareNumber(ctx context.Context, purpose codestore.Purpose, email, submitted string) error {
	key := codestore.Key(purpose, email)
	if err := s.matchNumber(ctx, key, submitted); err != nil {
		return err
	}
	if err := s.codes.Delete(ctx, key); err != nil {
		return fmt.Errorf("error deleting number: %w", err)
	}
	return nil
}

// CheckAuthenticateNumber tells whether code is the temporary number of email
// without consuming it, so a later ResetPassword can still redeem it.
func (s *AccountService) CheckAuthenticateNumber(ctx context.Context, email, code string) error {
	return s.matchNumber(ctx, codestore.Key(codestore.PurposeTempPassword, email), code)
}

func (s *AccountService) CompareAuthenticateNumber(ctx context.Context, email, code string) error {
	return s.compareNumber(ctx, codestore.PurposeTempPassword, email, code)
}

func (s *AccountService) CompareEmailVerifyNumber(ctx context.Context, email, code string) error {
	return s.compareNumber(ctx, codestore.PurposeEmailVerify, email, code)
}

func (s *AccountService) setPassword(ctx context.Context, account *models.Account, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	account.PasswordHash = hash

	if err := s.repomanager.Accounts(s.db).Update(ctx, account); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}
	return nil
}

// ChangePassword overwrites the password of email. The caller has already
// confirmed the temporary number.
func (s *AccountService) ChangePassword(ctx context.Context, email string, req ChangePasswordRequest) error {
	if err := s.validator.ValidateNewPassword(req.Password, req.CheckPassword); err != nil {
		return err
	}
	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, account, req.Password)
}

// ResetPassword replaces a forgotten password. The new password and the
// account are checked before the temporary number is redeemed, so a rejected
// request leaves the number usable.
func (s *AccountService) ResetPassword(ctx context.Context, email, code string, req ChangePasswordRequest) error {
	if err := s.validator.ValidateNewPassword(req.Password, req.CheckPassword); err != nil {
		return err
	}
	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.CompareAuthenticateNumber(ctx, email, code); err != nil {
		return err
	}
	return s.setPassword(ctx, account, req.Password)
}

// LoginChangePassword changes the password of a signed-in account after
// checking its current password.
func (s *AccountService) LoginChangePassword(ctx context.Context, account *models.Account, req LoginChangePasswordRequest) error {
	ok, err := s.hasher.Compare(account.PasswordHash, req.CurrentPassword)
	if err != nil {
		return fmt.Errorf("error comparing password: %w", err)
	}
	if !ok {
		return common.ErrInvalidCredentials
	}
	if err := s.validator.ValidateNewPassword(req.Password, req.CheckPassword); err != nil {
		return err
	}

	current, err := s.repomanager.Accounts(s.db).FindByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}
	return s.setPassword(ctx, current, req.Password)
}

// Logout revokes the refresh token of account and the access token the
// request came with. Repeated calls succeed.
func (s *AccountService) Logout(ctx context.Context, account *models.Account, accessToken string) error {
	return s.issuer.Revoke(ctx, account.Email, accessToken)
}

// SignOut records why account leaves and soft-deletes it in one transaction.
func (s *AccountService) SignOut(ctx context.Context, account *models.Account, req SignOutRequest) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Reasons(tx).Create(ctx, &models.SignOutReason{
			AccountID: account.ID,
			Reason:    req.Reason,
		}); err != nil {
			return fmt.Errorf("error saving sign-out reason: %w", err)
		}
		if err := s.repomanager.Accounts(tx).SoftDelete(ctx, account.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUserNotFound
			}
			return fmt.Errorf("error deleting account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "account signed out", "id", account.ID)

	if err := s.issuer.Revoke(ctx, account.Email, ""); err != nil {
		s.log.Warn(ctx, "refresh token not revoked after sign-out", "id", account.ID, "error", err)
	}
	return nil
}

// UpdateProfile uploads image and points the account's profile at it.
func (s *AccountService) UpdateProfile(ctx context.Context, account *models.Account, image []byte) (*models.Account, error) {
	if len(image) == 0 {
		return nil, common.ErrEmptyProfileImage
	}

	repo := s.repomanager.Accounts(s.db)

	current, err := repo.FindByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, s.opts.ProfileDir, image)
	if err != nil {
		return nil, fmt.Errorf("error uploading profile image: %w", err)
	}
	current.Profile = url

	if err := repo.Update(ctx, current); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return current, nil
}

// Me resolves the account behind an authenticated subject.
func (s *AccountService) Me(ctx context.Context, email string) (*models.Account, error) {
	return s.findByEmail(ctx, email)
}
