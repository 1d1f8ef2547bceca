package models

import "time"

// RefreshToken is the single active refresh token of a subject.
type RefreshToken struct {
	Subject   string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
