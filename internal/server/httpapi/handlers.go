package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/foodduck/internal/server/models"
	"github.com/dmitrijs2005/foodduck/internal/server/services"
)

const maxProfileImageSize = 10 << 20

type reissueRequest struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type compareNumberRequest struct {
	Email  string `json:"email"`
	Number string `json:"number"`
}

// changePasswordRequest resets a forgotten password; Number is the temporary
// authentication number mailed to Email.
type changePasswordRequest struct {
	Email         string `json:"email"`
	Number        string `json:"number"`
	Password      string `json:"password"`
	CheckPassword string `json:"checkPassword"`
}

type accountResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Profile  string `json:"profile,omitempty"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{ID: a.ID, Email: a.Email, Nickname: a.Nickname, Profile: a.Profile}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req services.SignUpRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pair, err := s.accounts.SignUp(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pair)
}

func (s *Server) checkNickname(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.CheckNickname(r.Context(), chi.URLParam(r, "nickname")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pair, err := s.accounts.Login(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) reissue(w http.ResponseWriter, r *http.Request) {
	var req reissueRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	pair, err := s.accounts.ReIssueToken(r.Context(), req.Email, req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) sendTempNumber(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.accounts.SendTempAuthenticateNumber(r.Context(), req.Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// compareTempNumber only checks the number; PATCH /password redeems it.
func (s *Server) compareTempNumber(w http.ResponseWriter, r *http.Request) {
	var req compareNumberRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.accounts.CheckAuthenticateNumber(r.Context(), req.Email, req.Number); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendEmailNumber(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.accounts.SendEmailVerifyNumber(r.Context(), req.Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) compareEmailNumber(w http.ResponseWriter, r *http.Request) {
	var req compareNumberRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.accounts.CompareEmailVerifyNumber(r.Context(), req.Email, req.Number); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// changePassword resets a forgotten password with the emailed number.
func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	err := s.accounts.ResetPassword(r.Context(), req.Email, req.Number, services.ChangePasswordRequest{
		Password:      req.Password,
		CheckPassword: req.CheckPassword,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toAccountResponse(accountFrom(r.Context())))
}

func (s *Server) loginChangePassword(w http.ResponseWriter, r *http.Request) {
	var req services.LoginChangePasswordRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.accounts.LoginChangePassword(r.Context(), accountFrom(r.Context()), req); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.accounts.Logout(ctx, accountFrom(ctx), accessTokenFrom(ctx)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	var req services.SignOutRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.accounts.SignOut(r.Context(), accountFrom(r.Context()), req); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxProfileImageSize+1<<20)
	if err := r.ParseMultipartForm(maxProfileImageSize); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	account, err := s.accounts.UpdateProfile(r.Context(), accountFrom(r.Context()), image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}
