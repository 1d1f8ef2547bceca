// Package httpapi exposes the account service over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/foodduck/internal/logging"
	"github.com/dmitrijs2005/foodduck/internal/server/auth"
	"github.com/dmitrijs2005/foodduck/internal/server/models"
	"github.com/dmitrijs2005/foodduck/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// AccountService is the business API the handlers call.
type AccountService interface {
	SignUp(ctx context.Context, req services.SignUpRequest) (*models.TokenPair, error)
	CheckNickname(ctx context.Context, nickname string) error
	Login(ctx context.Context, req services.LoginRequest) (*models.TokenPair, error)
	ReIssueToken(ctx context.Context, email, refreshToken string) (*models.TokenPair, error)
	SendTempAuthenticateNumber(ctx context.Context, email string) error
	CheckAuthenticateNumber(ctx context.Context, email, code string) error
	SendEmailVerifyNumber(ctx context.Context, email string) error
	CompareEmailVerifyNumber(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code string, req services.ChangePasswordRequest) error
	LoginChangePassword(ctx context.Context, account *models.Account, req services.LoginChangePasswordRequest) error
	Logout(ctx context.Context, account *models.Account, accessToken string) error
	SignOut(ctx context.Context, account *models.Account, req services.SignOutRequest) error
	UpdateProfile(ctx context.Context, account *models.Account, image []byte) (*models.Account, error)
	Me(ctx context.Context, email string) (*models.Account, error)
}

// TokenVerifier checks bearer access tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (*auth.Claims, error)
}

type Server struct {
	address  string
	accounts AccountService
	verifier TokenVerifier
	logger   logging.Logger
}

func NewServer(address string, l logging.Logger, accounts AccountService, verifier TokenVerifier) *Server {
	return &Server{
		address:  address,
		accounts: accounts,
		verifier: verifier,
		logger:   l.With("module", "http_server"),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1/accounts", func(r chi.Router) {
		r.Post("/signup", s.signUp)
		r.Get("/nickname/{nickname}", s.checkNickname)
		r.Post("/login", s.login)
		r.Post("/reissue", s.reissue)
		r.Post("/temp-number", s.sendTempNumber)
		r.Post("/temp-number/compare", s.compareTempNumber)
		r.Post("/email-number", s.sendEmailNumber)
		r.Post("/email-number/compare", s.compareEmailNumber)
		r.Patch("/password", s.changePassword)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/me", s.me)
			r.Patch("/me/password", s.loginChangePassword)
			r.Post("/me/logout", s.logout)
			r.Delete("/me", s.signOut)
			r.Put("/me/profile", s.updateProfile)
		})
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
