package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/fleetstock-backend/pkg/config"
)

const refreshCookieName = "refreshToken"

func setRefreshCookie(w http.ResponseWriter, cfg config.JWTConfig, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires.UTC(),
		MaxAge:   int(cfg.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: cookieSameSite(cfg),
	})
}

func clearRefreshCookie(w http.ResponseWriter, cfg config.JWTConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: cookieSameSite(cfg),
	})
}

// browsers drop SameSite=None cookies that are not Secure
func cookieSameSite(cfg config.JWTConfig) http.SameSite {
	if cfg.CookieSecure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func refreshCookie(r *http.Request) string {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
