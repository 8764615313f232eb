package summary

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/angelmondragon/fleetstock-backend/internal/fleets"
	"github.com/angelmondragon/fleetstock-backend/internal/orders"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/dbtest"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
)

type invoiceFixture struct {
	svc   Service
	repo  *orders.Repository
	fleet models.Fleet
	other models.Fleet
	boats map[string]models.Boat
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	client := dbtest.Open(t)
	ctx := context.Background()
	fleetRepo := fleets.NewRepository(client.DB())

	fleet, _, err := fleetRepo.EnsureFleet(ctx, "F/B DONYA DONYA 2x")
	require.NoError(t, err)
	other, _, err := fleetRepo.EnsureFleet(ctx, "F/B Doña Librada")
	require.NoError(t, err)

	boats := map[string]models.Boat{}
	for _, name := range []string{"F/B Ruth Gaily", "F/B Lady Rachelle"} {
		boat, _, err := fleetRepo.EnsureBoat(ctx, fleet.ID, name)
		require.NoError(t, err)
		boats[name] = *boat
	}
	boat, _, err := fleetRepo.EnsureBoat(ctx, other.ID, "F/B Adomar")
	require.NoError(t, err)
	boats["F/B Adomar"] = *boat

	repo := orders.NewRepository(client.DB())
	svc, err := NewService(repo, fleetRepo, logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}}), time.UTC, Layout{})
	require.NoError(t, err)
	return &invoiceFixture{svc: svc, repo: repo, fleet: *fleet, other: *other, boats: boats}
}

func (f *invoiceFixture) add(t *testing.T, boatName, name, total string, outDate time.Time, archived bool) {
	t.Helper()
	boat := f.boats[boatName]
	order := models.OrderItem{
		Name:        name,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.RequireFromString(total),
		UnitSize:    decimal.NewFromInt(1),
		SelectUnit:  "Piece",
		Total:       decimal.RequireFromString(total),
		FleetID:     boat.FleetID,
		BoatID:      boat.ID,
		OutDate:     outDate,
		LastUpdated: outDate,
		Archived:    archived,
	}
	require.NoError(t, f.repo.Create(context.Background(), &order))
}

func march(day int) time.Time {
	return time.Date(2026, time.March, day, 10, 0, 0, 0, time.UTC)
}

func TestInvoiceGroupsByBoatForMonth(t *testing.T) {
	f := newInvoiceFixture(t)
	f.add(t, "F/B Ruth Gaily", "Diesel", "1200.50", march(3), true)
	f.add(t, "F/B Lady Rachelle", "Ice", "400", march(5), true)
	f.add(t, "F/B Lady Rachelle", "Rope", "99.99", march(2), false)
	f.add(t, "F/B Lady Rachelle", "Old", "10", time.Date(2026, time.February, 28, 23, 0, 0, 0, time.UTC), true)
	f.add(t, "F/B Adomar", "Nets", "50", march(4), false)

	inv, err := f.svc.Invoice(context.Background(), InvoiceQuery{FleetID: &f.fleet.ID, Month: 3, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, "F/B DONYA DONYA 2x", inv.FleetName)
	assert.Equal(t, "March 2026", inv.Period)
	assert.Equal(t, 3, inv.OrderCount)
	assert.Equal(t, 1700.49, inv.Total)

	require.Len(t, inv.Groups, 2)
	assert.Equal(t, "F/B Lady Rachelle", inv.Groups[0].BoatName)
	assert.Equal(t, 499.99, inv.Groups[0].Subtotal)
	require.Len(t, inv.Groups[0].Lines, 2)
	assert.Equal(t, "Rope", inv.Groups[0].Lines[0].Name)
	assert.Equal(t, "F/B Ruth Gaily", inv.Groups[1].BoatName)

	require.Len(t, inv.Pages, 1)
	assert.Len(t, inv.Pages[0].Sections, 2)
}

func TestInvoiceAllFleets(t *testing.T) {
	f := newInvoiceFixture(t)
	f.add(t, "F/B Lady Rachelle", "Ice", "400", march(5), false)
	f.add(t, "F/B Adomar", "Nets", "50", march(4), false)

	inv, err := f.svc.Invoice(context.Background(), InvoiceQuery{Month: 3, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, AllFleetsName, inv.FleetName)
	assert.Equal(t, 450.0, inv.Total)
	require.Len(t, inv.Groups, 2)
	assert.Equal(t, "F/B DONYA DONYA 2x", inv.Groups[0].FleetName)
	assert.Equal(t, "F/B Doña Librada", inv.Groups[1].FleetName)
}

func TestInvoiceValidation(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Invoice(ctx, InvoiceQuery{Month: 13, Year: 2026})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Invoice(ctx, InvoiceQuery{Month: 1, Year: 1990})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	missing := uuid.New()
	_, err = f.svc.Invoice(ctx, InvoiceQuery{FleetID: &missing, Month: 1, Year: 2026})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestExportXLSX(t *testing.T) {
	f := newInvoiceFixture(t)
	f.add(t, "F/B Lady Rachelle", "Ice", "400", march(5), false)
	f.add(t, "F/B Ruth Gaily", "Diesel", "1200.50", march(3), false)

	export, err := f.svc.ExportXLSX(context.Background(), InvoiceQuery{FleetID: &f.fleet.ID, Month: 3, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, "invoice-f-b-donya-donya-2x-2026-03.xlsx", export.Filename)

	book, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(invoiceSheet)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Invoice: F/B DONYA DONYA 2x", rows[0][0])
	assert.Equal(t, "March 2026", rows[1][0])

	var boats []string
	for _, row := range rows {
		if len(row) == 1 && (row[0] == "F/B Lady Rachelle" || row[0] == "F/B Ruth Gaily") {
			boats = append(boats, row[0])
		}
	}
	assert.Equal(t, []string{"F/B Lady Rachelle", "F/B Ruth Gaily"}, boats)

	last := rows[len(rows)-1]
	require.Len(t, last, 7)
	assert.Equal(t, "Grand Total", last[5])
}
