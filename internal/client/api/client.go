// Package api is a small HTTP client for the foodduck account API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/foodduck/internal/common"
)

const basePath = "/api/v1/accounts"

// ErrUnavailable is returned when the server cannot be reached at all.
var ErrUnavailable = errors.New("server unavailable")

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is an *Error carrying code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// TokenPair is the answer to signup, login and reissue.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Account is the public view of an account.
type Account struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Profile  string `json:"profile,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+basePath+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, token, body, contentType, out)
}

func (c *Client) SignUp(ctx context.Context, email, nickname, password, checkPassword string) (*TokenPair, error) {
	pair := &TokenPair{}
	err := c.doJSON(ctx, http.MethodPost, "/signup", "", map[string]string{
		"email": email, "nickname": nickname, "password": password, "checkPassword": checkPassword,
	}, pair)
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (c *Client) CheckNickname(ctx context.Context, nickname string) error {
	return c.doJSON(ctx, http.MethodGet, "/nickname/"+url.PathEscape(nickname), "", nil, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	pair := &TokenPair{}
	if err := c.doJSON(ctx, http.MethodPost, "/login", "", map[string]string{"email": email, "password": password}, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

func (c *Client) Reissue(ctx context.Context, email, refreshToken string) (*TokenPair, error) {
	pair := &TokenPair{}
	if err := c.doJSON(ctx, http.MethodPost, "/reissue", "", map[string]string{"email": email, "refreshToken": refreshToken}, pair); err != nil {
		return nil, err
	}
	return pair, nil
}

func (c *Client) SendTempNumber(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/temp-number", "", map[string]string{"email": email}, nil)
}

// CompareTempNumber checks the number without using it up.
func (c *Client) CompareTempNumber(ctx context.Context, email, number string) error {
	return c.doJSON(ctx, http.MethodPost, "/temp-number/compare", "", map[string]string{"email": email, "number": number}, nil)
}

func (c *Client) SendEmailNumber(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/email-number", "", map[string]string{"email": email}, nil)
}

func (c *Client) CompareEmailNumber(ctx context.Context, email, number string) error {
	return c.doJSON(ctx, http.MethodPost, "/email-number/compare", "", map[string]string{"email": email, "number": number}, nil)
}

// ResetPassword replaces a forgotten password using the number from SendTempNumber.
func (c *Client) ResetPassword(ctx context.Context, email, number, password, checkPassword string) error {
	return c.doJSON(ctx, http.MethodPatch, "/password", "", map[string]string{
		"email": email, "number": number, "password": password, "checkPassword": checkPassword,
	}, nil)
}

func (c *Client) Me(ctx context.Context, token string) (*Account, error) {
	a := &Account{}
	if err := c.doJSON(ctx, http.MethodGet, "/me", token, nil, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (c *Client) ChangePassword(ctx context.Context, token, current, password, checkPassword string) error {
	return c.doJSON(ctx, http.MethodPatch, "/me/password", token, map[string]string{
		"currentPassword": current, "password": password, "checkPassword": checkPassword,
	}, nil)
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/me/logout", token, nil, nil)
}

func (c *Client) SignOut(ctx context.Context, token, reason string) error {
	return c.doJSON(ctx, http.MethodDelete, "/me", token, map[string]string{"reason": reason}, nil)
}

func (c *Client) UploadProfile(ctx context.Context, token, filename string, image []byte) (*Account, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	a := &Account{}
	if err := c.do(ctx, http.MethodPut, "/me/profile", token, &body, mw.FormDataContentType(), a); err != nil {
		return nil, err
	}
	return a, nil
}
