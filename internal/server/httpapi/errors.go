package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/foodduck/internal/common"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	err    error
	status int
	code   string
}

var apiErrors = []apiError{
	{common.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL"},
	{common.ErrInvalidNickname, http.StatusBadRequest, "INVALID_NICKNAME"},
	{common.ErrWeakPassword, http.StatusBadRequest, "WEAK_PASSWORD"},
	{common.ErrPasswordMismatch, http.StatusBadRequest, "PASSWORD_MISMATCH"},
	{common.ErrEmptyProfileImage, http.StatusBadRequest, "EMPTY_PROFILE_IMAGE"},
	{common.ErrInvalidAuthenticationCode, http.StatusBadRequest, "INVALID_AUTHENTICATION_NUMBER"},
	{common.ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL"},
	{common.ErrDuplicateNickname, http.StatusConflict, "DUPLICATE_NICKNAME"},
	{common.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{common.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{common.ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
}

var errBadRequest = errors.New("malformed request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its status and code. Unknown errors are logged and
// reported as a bare 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadRequest) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: err.Error()})
		return
	}
	for _, e := range apiErrors {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, errorResponse{Code: e.code, Message: e.err.Error()})
			return
		}
	}

	s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL_ERROR", Message: common.ErrorInternal.Error()})
}
