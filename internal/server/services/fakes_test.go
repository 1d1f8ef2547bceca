package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/foodduck/internal/common"
	"github.com/dmitrijs2005/foodduck/internal/dbx"
	"github.com/dmitrijs2005/foodduck/internal/server/codestore"
	"github.com/dmitrijs2005/foodduck/internal/server/models"
	"github.com/dmitrijs2005/foodduck/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/foodduck/internal/server/repositories/reasons"
	"github.com/dmitrijs2005/foodduck/internal/server/repositories/refreshtokens"
)

type fakeAccounts struct {
	mu            sync.Mutex
	byID          map[string]*models.Account
	seq           int
	createErr     error
	softDeleteErr error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[string]*models.Account{}}
}

func (r *fakeAccounts) live(match func(*models.Account) bool) *models.Account {
	for _, a := range r.byID {
		if !a.Deleted && match(a) {
			return a
		}
	}
	return nil
}

func (r *fakeAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.live(func(a *models.Account) bool { return a.Email == email })
	if a == nil {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccounts) FindByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok || a.Deleted {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeAccounts) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live(func(a *models.Account) bool { return a.Nickname == nickname }) != nil, nil
}

func (r *fakeAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if r.live(func(x *models.Account) bool { return x.Email == a.Email }) != nil {
		return nil, common.ErrDuplicateEmail
	}
	if r.live(func(x *models.Account) bool { return x.Nickname == a.Nickname }) != nil {
		return nil, common.ErrDuplicateNickname
	}
	r.seq++
	cp := *a
	cp.ID = fmt.Sprintf("acc-%d", r.seq)
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeAccounts) Update(_ context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[a.ID]
	if !ok || cur.Deleted {
		return common.ErrorNotFound
	}
	cur.PasswordHash = a.PasswordHash
	cur.Nickname = a.Nickname
	cur.Profile = a.Profile
	return nil
}

func (r *fakeAccounts) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.softDeleteErr != nil {
		return r.softDeleteErr
	}
	cur, ok := r.byID[id]
	if !ok || cur.Deleted {
		return common.ErrorNotFound
	}
	cur.Deleted = true
	return nil
}

func (r *fakeAccounts) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type fakeReasons struct {
	mu    sync.Mutex
	saved []models.SignOutReason
	err   error
}

func (r *fakeReasons) Create(_ context.Context, reason *models.SignOutReason) (*models.SignOutReason, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	cp := *reason
	cp.ID = fmt.Sprintf("reason-%d", len(r.saved)+1)
	r.saved = append(r.saved, cp)
	return &cp, nil
}

type fakeManager struct {
	accounts *fakeAccounts
	reasons  *fakeReasons
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error     { return nil }
func (m *fakeManager) Accounts(dbx.DBTX) accounts.Repository           { return m.accounts }
func (m *fakeManager) Reasons(dbx.DBTX) reasons.Repository             { return m.reasons }
func (m *fakeManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return nil }

type issuedPair struct {
	subject string
	roles   []models.Role
}

// fakeIssuer keeps one refresh token per subject like the real issuer.
type fakeIssuer struct {
	mu      sync.Mutex
	seq     int
	issued  []issuedPair
	current map[string]string
	revoked []string
	revErr  error
}

func newFakeIssuer() *fakeIssuer {
	return &fakeIssuer{current: map[string]string{}}
}

func (f *fakeIssuer) CreatePair(_ context.Context, subject string, roles []models.Role) (*models.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.issued = append(f.issued, issuedPair{subject: subject, roles: roles})
	pair := &models.TokenPair{
		AccessToken:  fmt.Sprintf("access-%d", f.seq),
		RefreshToken: fmt.Sprintf("refresh-%d", f.seq),
	}
	f.current[subject] = pair.RefreshToken
	return pair, nil
}

func (f *fakeIssuer) ReissuePair(ctx context.Context, subject, refreshToken string, roles []models.Role) (*models.TokenPair, error) {
	f.mu.Lock()
	cur, ok := f.current[subject]
	f.mu.Unlock()
	if !ok || cur != refreshToken {
		return nil, common.ErrInvalidRefreshToken
	}
	return f.CreatePair(ctx, subject, roles)
}

func (f *fakeIssuer) Revoke(_ context.Context, subject, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revErr != nil {
		return f.revErr
	}
	delete(f.current, subject)
	f.revoked = append(f.revoked, subject)
	return nil
}

type sentMail struct {
	to, subject, body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (s *fakeSender) Send(_ context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fakeUploader struct {
	dirs []string
	err  error
}

func (u *fakeUploader) Upload(_ context.Context, dir string, data []byte) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.dirs = append(u.dirs, dir)
	return fmt.Sprintf("http://s3.local/foodduck/%sobject-%d", dir, len(u.dirs)), nil
}

// recordingStore remembers the TTL of every Set.
type recordingStore struct {
	codestore.Store
	ttls map[string]time.Duration
}

func (s *recordingStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.ttls[key] = ttl
	return s.Store.Set(ctx, key, value, ttl)
}
