package controllers

import (
	"net/http"

	"github.com/angelmondragon/fleetstock-backend/api/middleware"
	"github.com/angelmondragon/fleetstock-backend/api/responses"
	"github.com/angelmondragon/fleetstock-backend/api/validators"
	"github.com/angelmondragon/fleetstock-backend/internal/auth"
	"github.com/angelmondragon/fleetstock-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
)

// UserCheck tells the client whether an admin exists and whether a refresh
// cookie came with the request.
func UserCheck(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.CheckUser(r.Context(), refreshCookie(r) != "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// UserCreateAdmin leaves payload validation to the service so that an
// existing admin is reported first.
func UserCreateAdmin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.CreateAdminRequest
		if err := validators.DecodeJSON(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.CreateAdmin(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

func UserLogin(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.LoginRequest
		if err := validators.DecodeJSON(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setRefreshCookie(w, cfg, result.RefreshToken, result.RefreshExpiresAt)
		responses.WriteSuccess(w, result)
	}
}

func UserRefresh(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Refresh(r.Context(), refreshCookie(r))
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
				clearRefreshCookie(w, cfg)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setRefreshCookie(w, cfg, result.RefreshToken, result.RefreshExpiresAt)
		responses.WriteSuccess(w, result)
	}
}

// UserLogout always clears the cookie, even when the session could not be
// revoked.
func UserLogout(svc auth.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Logout(r.Context(), refreshCookie(r))
		clearRefreshCookie(w, cfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Logged out", nil)
	}
}

func UserResetPin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.ResetPinRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ResetPin(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "PIN updated", nil)
	}
}

func UserResetEmail(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserUUIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required"))
			return
		}

		var body auth.ResetEmailRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.ResetEmail(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
