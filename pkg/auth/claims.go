package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// AccessTokenPayload captures the data available when minting an access JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	SessionID string
}

// AccessTokenClaims is the short-lived bearer token sent in the Authorization header.
type AccessTokenClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID string    `json:"sid"`
	Type      string    `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshTokenPayload captures the data available when minting a refresh JWT.
type RefreshTokenPayload struct {
	UserID    uuid.UUID
	SessionID string
}

// RefreshTokenClaims is carried in the refreshToken cookie. The jti is the
// refresh session id stored in Redis.
type RefreshTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Type   string    `json:"typ"`
	jwt.RegisteredClaims
}

// SessionID returns the refresh session the token belongs to.
func (c *RefreshTokenClaims) SessionID() string {
	return c.ID
}
