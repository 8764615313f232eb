package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/fleetstock-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		Issuer:          "fleetstock",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: userID, SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.SessionID != "sess-1" {
		t.Fatalf("expected sid sess-1, got %q", claims.SessionID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 15*time.Minute {
		t.Fatalf("expected 15m lifetime, got %v", got)
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: uuid.New(), SessionID: "s"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestAccessAndRefreshTokensAreNotInterchangeable(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()
	userID := uuid.New()

	refresh, err := MintRefreshToken(cfg, now, RefreshTokenPayload{UserID: userID, SessionID: "sess-2"})
	if err != nil {
		t.Fatalf("mint refresh token: %v", err)
	}
	if _, err := ParseAccessToken(cfg, refresh); err == nil {
		t.Fatal("refresh token must not be accepted as an access token")
	}

	access, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: userID, SessionID: "sess-2"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseRefreshToken(cfg, access); err == nil {
		t.Fatal("access token must not be accepted as a refresh token")
	}

	sameSecret := cfg
	sameSecret.RefreshSecret = cfg.AccessSecret
	access, err = MintAccessToken(sameSecret, now, AccessTokenPayload{UserID: userID, SessionID: "sess-2"})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	if _, err := ParseRefreshToken(sameSecret, access); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("expected wrong token type with shared secret, got %v", err)
	}
}

func TestMintAndParseRefreshToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := MintRefreshToken(cfg, time.Now(), RefreshTokenPayload{UserID: userID, SessionID: "sess-3"})
	if err != nil {
		t.Fatalf("mint refresh token: %v", err)
	}
	claims, err := ParseRefreshToken(cfg, token)
	if err != nil {
		t.Fatalf("parse refresh token: %v", err)
	}
	if claims.SessionID() != "sess-3" || claims.UserID != userID {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 7*24*time.Hour {
		t.Fatalf("expected 7d lifetime, got %v", got)
	}
}

func TestMintRejectsMisconfiguration(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessSecret = ""
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), SessionID: "s"}); err == nil {
		t.Fatal("expected missing access secret to fail")
	}

	cfg = testJWTConfig()
	cfg.RefreshTokenTTL = cfg.AccessTokenTTL
	if _, err := MintRefreshToken(cfg, time.Now(), RefreshTokenPayload{UserID: uuid.New(), SessionID: "s"}); err == nil {
		t.Fatal("expected refresh ttl <= access ttl to fail")
	}

	cfg = testJWTConfig()
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New()}); err == nil {
		t.Fatal("expected missing session id to fail")
	}
}
