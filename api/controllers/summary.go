package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/angelmondragon/fleetstock-backend/api/responses"
	"github.com/angelmondragon/fleetstock-backend/api/validators"
	"github.com/angelmondragon/fleetstock-backend/internal/summary"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
)

// invoiceQuery reads fleetId, month and year. Month and year default to the
// current month in loc.
func invoiceQuery(r *http.Request, loc *time.Location, now time.Time) (summary.InvoiceQuery, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	fleetID, err := validators.ParseQueryUUID(r, "fleetId")
	if err != nil {
		return summary.InvoiceQuery{}, err
	}
	month, err := validators.ParseQueryInt(r, "month", int(local.Month()), 1, 12)
	if err != nil {
		return summary.InvoiceQuery{}, err
	}
	year, err := validators.ParseQueryInt(r, "year", local.Year(), 2000, 2100)
	if err != nil {
		return summary.InvoiceQuery{}, err
	}
	return summary.InvoiceQuery{FleetID: fleetID, Month: month, Year: year}, nil
}

func SummaryInvoice(svc summary.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := invoiceQuery(r, loc, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoice, err := svc.Invoice(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

// SummaryExport streams the invoice as an xlsx attachment.
func SummaryExport(svc summary.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := invoiceQuery(r, loc, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		export, err := svc.ExportXLSX(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", summary.XLSXContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(export.Data); err != nil && logg != nil {
			logg.Error(r.Context(), "write invoice export", err)
		}
	}
}
