package auth

import (
	"time"

	"github.com/angelmondragon/fleetstock-backend/internal/users"
)

// LoginRequest carries the PIN as decoded JSON so that non-string values can
// be rejected with a precise message.
type LoginRequest struct {
	Pin any `json:"pin"`
}

// CreateAdminRequest is the payload of POST /user/create-admin.
type CreateAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
	Pin   string `json:"pin" validate:"required,pin"`
}

// ResetPinRequest is the payload of POST /user/reset-pin.
type ResetPinRequest struct {
	Email string `json:"email" validate:"required,email"`
	Pin   string `json:"pin" validate:"required,pin"`
}

// ResetEmailRequest is the payload of POST /user/reset-email.
type ResetEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CheckUserResponse tells the UI whether to show admin creation or login.
type CheckUserResponse struct {
	HasAdmin        bool `json:"hasAdmin"`
	HasRefreshToken bool `json:"hasRefreshToken"`
}

// TokenResponse is returned by login and refresh. The refresh token travels
// only in the cookie.
type TokenResponse struct {
	AccessToken      string         `json:"accessToken"`
	AccessExpiresAt  time.Time      `json:"accessExpiresAt"`
	User             *users.UserDTO `json:"user,omitempty"`
	RefreshToken     string         `json:"-"`
	RefreshExpiresAt time.Time      `json:"-"`
}
