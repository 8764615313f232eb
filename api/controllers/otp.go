package controllers

import (
	"net/http"

	"github.com/angelmondragon/fleetstock-backend/api/responses"
	"github.com/angelmondragon/fleetstock-backend/api/validators"
	"github.com/angelmondragon/fleetstock-backend/internal/otp"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
)

func OTPSend(svc otp.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body otp.SendRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Send(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Verification code sent", result)
	}
}

func OTPVerify(svc otp.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body otp.VerifyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Verify(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Email verified", map[string]string{"email": body.Email})
	}
}
