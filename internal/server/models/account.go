// Package models defines server-side data models persisted in the database.
package models

import "time"

// Role is an authority granted to a token subject.
type Role string

// RoleUser is granted to every regular account.
const RoleUser Role = "ROLE_USER"

// UserRoles is the role set issued to regular accounts.
func UserRoles() []Role { return []Role{RoleUser} }

// Account is the identity record of a foodduck user.
type Account struct {
	ID           string
	Email        string
	Nickname     string
	PasswordHash string
	// Profile is the URL of the profile image, empty when none was uploaded.
	Profile   string
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SignOutReason records why an account left the service. Written once, on sign-out.
type SignOutReason struct {
	ID        string
	AccountID string
	Reason    string
	CreatedAt time.Time
}
