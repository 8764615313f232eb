package controllers

import (
	"net/http"

	"github.com/angelmondragon/fleetstock-backend/api/responses"
	"github.com/angelmondragon/fleetstock-backend/internal/fleets"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
)

func FleetList(svc fleets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
