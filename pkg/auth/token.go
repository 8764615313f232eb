package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/fleetstock-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// ErrWrongTokenType is returned when a token signed for one purpose is presented for another.
var ErrWrongTokenType = errors.New("unexpected token type")

// MintAccessToken issues an access JWT signed with ACCESS_SECRET.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	if cfg.AccessSecret == "" {
		return "", fmt.Errorf("access secret is required")
	}
	if cfg.AccessTokenTTL <= 0 {
		return "", fmt.Errorf("access token ttl must be positive")
	}
	if strings.TrimSpace(payload.SessionID) == "" {
		return "", fmt.Errorf("session id is required")
	}

	claims := AccessTokenClaims{
		UserID:    payload.UserID,
		SessionID: payload.SessionID,
		Type:      tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   payload.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL)),
		},
	}
	return sign(claims, cfg.AccessSecret)
}

// ParseAccessToken validates the bearer token and returns typed claims.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("access secret is required")
	}
	claims := &AccessTokenClaims{}
	if err := parse(cfg, cfg.AccessSecret, tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// MintRefreshToken issues the refresh JWT signed with REFRESH_SECRET whose jti
// is the Redis session id.
func MintRefreshToken(cfg config.JWTConfig, now time.Time, payload RefreshTokenPayload) (string, error) {
	if cfg.RefreshSecret == "" {
		return "", fmt.Errorf("refresh secret is required")
	}
	if cfg.RefreshTokenTTL <= cfg.AccessTokenTTL {
		return "", fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", cfg.RefreshTokenTTL, cfg.AccessTokenTTL)
	}
	if strings.TrimSpace(payload.SessionID) == "" {
		return "", fmt.Errorf("session id is required")
	}

	claims := RefreshTokenClaims{
		UserID: payload.UserID,
		Type:   tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   payload.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.RefreshTokenTTL)),
			ID:        payload.SessionID,
		},
	}
	return sign(claims, cfg.RefreshSecret)
}

// ParseRefreshToken validates the refresh cookie value.
func ParseRefreshToken(cfg config.JWTConfig, tokenString string) (*RefreshTokenClaims, error) {
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("refresh secret is required")
	}
	claims := &RefreshTokenClaims{}
	if err := parse(cfg, cfg.RefreshSecret, tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeRefresh || claims.ID == "" {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func sign(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

func parse(cfg config.JWTConfig, secret, tokenString string, claims jwt.Claims) error {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwtSigningMethod.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		opts...,
	)
	return err
}
