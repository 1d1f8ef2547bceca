package services

// SignUpRequest is the payload of a new account registration.
type SignUpRequest struct {
	Email         string `json:"email"`
	Nickname      string `json:"nickname"`
	Password      string `json:"password"`
	CheckPassword string `json:"checkPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest resets a forgotten password after the emailed number
// was confirmed.
type ChangePasswordRequest struct {
	Password      string `json:"password"`
	CheckPassword string `json:"checkPassword"`
}

// LoginChangePasswordRequest changes the password of a signed-in account.
type LoginChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	Password        string `json:"password"`
	CheckPassword   string `json:"checkPassword"`
}

type SignOutRequest struct {
	Reason string `json:"reason"`
}
