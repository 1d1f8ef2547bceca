package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/foodduck/internal/client/api"
	"github.com/dmitrijs2005/foodduck/internal/client/config"
)

// accountAPI is the subset of *api.Client the commands use.
type accountAPI interface {
	SignUp(ctx context.Context, email, nickname, password, checkPassword string) (*api.TokenPair, error)
	CheckNickname(ctx context.Context, nickname string) error
	Login(ctx context.Context, email, password string) (*api.TokenPair, error)
	Reissue(ctx context.Context, email, refreshToken string) (*api.TokenPair, error)
	SendTempNumber(ctx context.Context, email string) error
	CompareTempNumber(ctx context.Context, email, number string) error
	SendEmailNumber(ctx context.Context, email string) error
	CompareEmailNumber(ctx context.Context, email, number string) error
	ResetPassword(ctx context.Context, email, number, password, checkPassword string) error
	Me(ctx context.Context, token string) (*api.Account, error)
	ChangePassword(ctx context.Context, token, current, password, checkPassword string) error
	Logout(ctx context.Context, token string) error
	SignOut(ctx context.Context, token, reason string) error
	UploadProfile(ctx context.Context, token, filename string, image []byte) (*api.Account, error)
}

type App struct {
	config *config.Config
	api    accountAPI
	reader *bufio.Reader
	out    io.Writer

	email  string
	tokens *api.TokenPair
}

func NewApp(c *config.Config) *App {
	return newApp(c, api.NewClient(c.ServerURL, c.RequestTimeout), os.Stdin, os.Stdout)
}

func newApp(c *config.Config, a accountAPI, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: a, reader: bufio.NewReader(in), out: out}
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintf(a.out, "foodduck account client, server %s (type 'help' for commands)\n", a.config.ServerURL)
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.tokens != nil
}

func (a *App) status() string {
	if !a.isLoggedIn() {
		return "anonymous"
	}
	return a.email
}

func (a *App) startSession(email string, pair *api.TokenPair) {
	a.email = email
	a.tokens = pair
}

func (a *App) endSession() {
	a.email = ""
	a.tokens = nil
}

// withToken runs fn with the current access token. When the server reports
// TOKEN_EXPIRED the pair is reissued and fn is run once more.
func (a *App) withToken(ctx context.Context, fn func(token string) error) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	err := fn(a.tokens.AccessToken)
	if !api.HasCode(err, "TOKEN_EXPIRED") {
		return err
	}

	pair, rerr := a.api.Reissue(ctx, a.email, a.tokens.RefreshToken)
	if rerr != nil {
		a.endSession()
		return fmt.Errorf("session expired, please log in again: %w", rerr)
	}
	a.tokens = pair
	return fn(pair.AccessToken)
}
