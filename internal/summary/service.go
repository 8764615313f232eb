package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fleetstock-backend/internal/fleets"
	"github.com/angelmondragon/fleetstock-backend/internal/orders"
	"github.com/angelmondragon/fleetstock-backend/pkg/db"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
	"github.com/angelmondragon/fleetstock-backend/pkg/money"
)

// AllFleetsName labels an invoice that is not restricted to one fleet.
const AllFleetsName = "All fleets"

// Service builds monthly invoices.
type Service interface {
	Invoice(ctx context.Context, query InvoiceQuery) (*Invoice, error)
	ExportXLSX(ctx context.Context, query InvoiceQuery) (*Export, error)
}

type service struct {
	orders *orders.Repository
	fleets *fleets.Repository
	logg   *logger.Logger
	loc    *time.Location
	layout Layout
}

// NewService constructs the summary service. A zero layout uses DefaultLayout.
func NewService(orderRepo *orders.Repository, fleetRepo *fleets.Repository, logg *logger.Logger, loc *time.Location, layout Layout) (Service, error) {
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if fleetRepo == nil {
		return nil, fmt.Errorf("fleet repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if layout.PageHeight <= 0 {
		layout = DefaultLayout
	}
	return &service{orders: orderRepo, fleets: fleetRepo, logg: logg, loc: loc, layout: layout}, nil
}

func (s *service) Invoice(ctx context.Context, query InvoiceQuery) (*Invoice, error) {
	if query.Month < 1 || query.Month > 12 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month must be between 1 and 12")
	}
	if query.Year < 2000 || query.Year > 2100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "year is out of range")
	}

	invoice := &Invoice{
		FleetID:   query.FleetID,
		FleetName: AllFleetsName,
		Month:     query.Month,
		Year:      query.Year,
		Period:    fmt.Sprintf("%s %d", time.Month(query.Month).String(), query.Year),
	}
	if query.FleetID != nil {
		fleet, err := s.fleets.FindFleet(ctx, *query.FleetID)
		if err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "fleet not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load fleet")
		}
		invoice.FleetName = fleet.FleetName
	}

	from, to := orders.MonthRange(query.Year, time.Month(query.Month), s.loc)
	rows, err := s.orders.ListBetween(ctx, query.FleetID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list invoice orders")
	}

	groups, total := groupByBoat(rows, query.FleetID == nil)
	invoice.OrderCount = len(rows)
	invoice.Total = money.Float(total)
	invoice.Groups = groups
	invoice.Pages = s.layout.Paginate(groups)
	return invoice, nil
}

type groupAcc struct {
	group    BoatGroup
	subtotal decimal.Decimal
}

// groupByBoat keeps row order within a group and sorts groups by boat name.
// Across all fleets the fleet name sorts first.
func groupByBoat(rows []models.OrderItem, allFleets bool) ([]BoatGroup, decimal.Decimal) {
	byBoat := map[uuid.UUID]*groupAcc{}
	var order []uuid.UUID
	total := decimal.Zero

	for _, row := range rows {
		acc, ok := byBoat[row.BoatID]
		if !ok {
			acc = &groupAcc{group: BoatGroup{
				BoatID:    row.BoatID,
				BoatName:  row.Boat.BoatName,
				FleetName: row.Fleet.FleetName,
			}}
			byBoat[row.BoatID] = acc
			order = append(order, row.BoatID)
		}
		acc.group.Lines = append(acc.group.Lines, Line{
			OrderID:    row.ID,
			OutDate:    row.OutDate.UTC(),
			Name:       row.Name,
			Note:       row.Note,
			Quantity:   money.Float(row.Quantity),
			SelectUnit: row.SelectUnit,
			UnitPrice:  money.Float(row.UnitPrice),
			UnitSize:   money.Float(row.UnitSize),
			Total:      money.Float(row.Total),
		})
		acc.subtotal = acc.subtotal.Add(row.Total)
		total = total.Add(row.Total)
	}

	groups := make([]BoatGroup, 0, len(order))
	for _, id := range order {
		acc := byBoat[id]
		acc.group.Subtotal = money.Float(acc.subtotal)
		groups = append(groups, acc.group)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if allFleets && groups[i].FleetName != groups[j].FleetName {
			return strings.ToLower(groups[i].FleetName) < strings.ToLower(groups[j].FleetName)
		}
		if groups[i].BoatName != groups[j].BoatName {
			return strings.ToLower(groups[i].BoatName) < strings.ToLower(groups[j].BoatName)
		}
		return groups[i].BoatID.String() < groups[j].BoatID.String()
	})
	return groups, money.Round2(total)
}
