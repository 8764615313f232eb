package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/fleetstock-backend/internal/fleets"
	"github.com/angelmondragon/fleetstock-backend/internal/inventory"
	"github.com/angelmondragon/fleetstock-backend/pkg/db"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
	"github.com/angelmondragon/fleetstock-backend/pkg/metrics"
	"github.com/angelmondragon/fleetstock-backend/pkg/money"
)

// NoChangesMessage is returned when a modify request matches the stored order.
const NoChangesMessage = "No changes were made"

// Service handles assigning inventory to boats and maintaining those orders.
type Service interface {
	Out(ctx context.Context, input OutInput) (*OutResult, error)
	Modify(ctx context.Context, orderID uuid.UUID, input ModifyInput) (*ModifyResult, error)
	Delete(ctx context.Context, orderID uuid.UUID) (*DeleteResult, error)
	ListCurrent(ctx context.Context) ([]OrderDTO, error)
	RefreshArchive(ctx context.Context, now time.Time) (*ArchiveResult, error)
}

// ServiceParams groups the collaborators of the order service.
type ServiceParams struct {
	Repo      *Repository
	Inventory *inventory.Repository
	Fleets    *fleets.Repository
	DB        *db.Client
	Logger    *logger.Logger
	Metrics   *metrics.OrderMetrics
	Location  *time.Location
	Now       func() time.Time
}

type service struct {
	repo      *Repository
	inventory *inventory.Repository
	fleets    *fleets.Repository
	dbClient  *db.Client
	logg      *logger.Logger
	metrics   *metrics.OrderMetrics
	loc       *time.Location
	now       func() time.Time
}

// NewService constructs the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Fleets == nil {
		return nil, fmt.Errorf("fleet repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		inventory: params.Inventory,
		fleets:    params.Fleets,
		dbClient:  params.DB,
		logg:      params.Logger,
		metrics:   params.Metrics,
		loc:       loc,
		now:       func() time.Time { return now().UTC() },
	}, nil
}

// Out takes quantity out of an inventory item and assigns it to a boat. The
// stock decrement and the order insert commit together.
func (s *service) Out(ctx context.Context, input OutInput) (*OutResult, error) {
	if input.BoatID != nil && input.FleetID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "select a fleet before choosing a boat")
	}
	if input.FleetID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fleet is required")
	}
	if input.BoatID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "boat is required")
	}
	if input.InventoryItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory item is required")
	}

	var (
		order models.OrderItem
		item  models.InventoryItem
	)
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		fleetRepo := s.fleets.WithTx(tx)
		fleet, boat, err := s.resolveAssignment(ctx, fleetRepo, *input.FleetID, *input.BoatID)
		if err != nil {
			return err
		}

		invRepo := s.inventory.WithTx(tx)
		source, err := invRepo.FindForUpdate(ctx, input.InventoryItemID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
		}

		calc, err := ComputeOut(source.Quantity, source.UnitPrice, source.UnitSize, input.Quantity)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}

		now := s.now()
		if err := invRepo.UpdateStock(ctx, source.ID, calc.Remaining, calc.ItemTotal, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement inventory item")
		}
		source.Quantity = calc.Remaining
		source.Total = calc.ItemTotal
		source.LastUpdated = now

		sourceID := source.ID
		order = models.OrderItem{
			InventoryItemID: &sourceID,
			Name:            source.Name,
			Note:            source.Note,
			Quantity:        calc.Quantity,
			UnitPrice:       source.UnitPrice,
			UnitSize:        source.UnitSize,
			SelectUnit:      source.SelectUnit,
			Total:           calc.OrderTotal,
			FleetID:         fleet.ID,
			BoatID:          boat.ID,
			OutDate:         now,
			LastUpdated:     now,
		}
		if err := s.repo.WithTx(tx).Create(ctx, &order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order item")
		}
		order.Fleet = *fleet
		order.Boat = *boat
		item = *source
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "out inventory item")
	}

	s.metrics.IncEvent("out")
	logCtx := s.logg.WithFields(s.logg.WithFleet(ctx, order.FleetID.String(), order.BoatID.String()), map[string]any{
		"order_id":          order.ID.String(),
		"inventory_item_id": item.ID.String(),
		"quantity":          order.Quantity.String(),
	})
	s.logg.Info(logCtx, "inventory item out")

	return &OutResult{Order: FromModel(order), Item: inventory.FromModel(item)}, nil
}

// Modify changes the quantity and/or assignment of an order and moves the
// quantity difference back to or out of the source item.
func (s *service) Modify(ctx context.Context, orderID uuid.UUID, input ModifyInput) (*ModifyResult, error) {
	var result ModifyResult
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.repo.WithTx(tx)
		fleetRepo := s.fleets.WithTx(tx)
		invRepo := s.inventory.WithTx(tx)

		order, err := orderRepo.FindForUpdate(ctx, orderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order item")
		}

		requested := order.Quantity
		if input.Quantity != nil {
			requested = *input.Quantity
		}
		fleetID, boatID, err := s.targetAssignment(ctx, fleetRepo, order, input)
		if err != nil {
			return err
		}

		var source *models.InventoryItem
		if order.InventoryItemID != nil {
			source, err = invRepo.FindForUpdate(ctx, *order.InventoryItemID)
			if err != nil && !db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
			}
			if err != nil {
				source = nil
			}
		}

		plan := ModifyQuantity{
			Original:  order.Quantity,
			Requested: requested,
			UnitPrice: order.UnitPrice,
			UnitSize:  order.UnitSize,
		}
		if source != nil {
			stock := source.Quantity
			plan.Stock = &stock
		}
		result.MaxAllowed = money.Float(plan.MaxAllowed())

		if requested.Equal(order.Quantity) && fleetID == order.FleetID && boatID == order.BoatID {
			result.Changed = false
			result.Message = NoChangesMessage
			return s.fillModifyResult(ctx, orderRepo, order.ID, source, &result)
		}

		calc, err := ComputeModify(plan)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, err.Error()).
				WithDetails(map[string]any{"maxAllowed": result.MaxAllowed})
		}

		now := s.now()
		quantityChanged := !requested.Equal(order.Quantity)
		if source == nil && quantityChanged && calc.Remaining.IsPositive() {
			source, err = recreateFromOrder(ctx, invRepo, order, calc.Remaining, now)
			if err != nil {
				return err
			}
			order.InventoryItemID = &source.ID
			result.Recreated = true
		}
		order.Quantity = money.Round2(requested)
		order.Total = calc.OrderTotal
		order.FleetID = fleetID
		order.BoatID = boatID
		order.LastUpdated = now
		if err := orderRepo.UpdateAssignment(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order item")
		}

		if source != nil && quantityChanged && !result.Recreated {
			total := money.Total(source.UnitPrice, calc.Remaining, source.UnitSize)
			if err := invRepo.UpdateStock(ctx, source.ID, calc.Remaining, total, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restock inventory item")
			}
			source.Quantity = calc.Remaining
			source.Total = total
			source.LastUpdated = now
		}

		result.Changed = true
		return s.fillModifyResult(ctx, orderRepo, order.ID, source, &result)
	})
	if err != nil {
		return nil, asTyped(err, "modify order item")
	}

	if result.Changed {
		s.metrics.IncEvent("modify")
		s.logg.Info(s.logg.WithField(ctx, "order_id", orderID.String()), "order item modified")
	}
	return &result, nil
}

// Delete removes an order and returns its quantity to the source item. When
// the source item was removed in the meantime it is recreated from the
// order's snapshot.
func (s *service) Delete(ctx context.Context, orderID uuid.UUID) (*DeleteResult, error) {
	var result DeleteResult
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.repo.WithTx(tx)
		invRepo := s.inventory.WithTx(tx)

		order, err := orderRepo.FindForUpdate(ctx, orderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order item")
		}

		now := s.now()
		var source *models.InventoryItem
		if order.InventoryItemID != nil {
			source, err = invRepo.FindForUpdate(ctx, *order.InventoryItemID)
			if err != nil && !db.IsNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
			}
			if err != nil {
				source = nil
			}
		}

		if source != nil {
			source.Quantity = money.Round2(source.Quantity.Add(order.Quantity))
			source.Total = money.Total(source.UnitPrice, source.Quantity, source.UnitSize)
			source.LastUpdated = now
			if err := invRepo.UpdateStock(ctx, source.ID, source.Quantity, source.Total, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restock inventory item")
			}
		} else {
			source, err = recreateFromOrder(ctx, invRepo, order, order.Quantity, now)
			if err != nil {
				return err
			}
			result.Recreated = true
		}

		if err := orderRepo.Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete order item")
		}
		result.OrderID = order.ID
		result.Item = inventory.FromModel(*source)
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "delete order item")
	}

	s.metrics.IncEvent("delete")
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":  orderID.String(),
		"recreated": result.Recreated,
	})
	s.logg.Info(logCtx, "order item deleted")
	return &result, nil
}

// ListCurrent recomputes archival and returns the orders of the current month.
func (s *service) ListCurrent(ctx context.Context) ([]OrderDTO, error) {
	if _, err := s.RefreshArchive(ctx, s.now()); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListCurrent(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list order items")
	}
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

// RefreshArchive flags orders from months before now's month as archived and
// clears the flag on anything dated in the current month.
func (s *service) RefreshArchive(ctx context.Context, now time.Time) (*ArchiveResult, error) {
	cutoff := MonthStart(now, s.loc)
	result := &ArchiveResult{Cutoff: cutoff}
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		archived, err := repo.Archive(ctx, cutoff)
		if err != nil {
			return err
		}
		unarchived, err := repo.Unarchive(ctx, cutoff)
		if err != nil {
			return err
		}
		result.Archived = archived
		result.Unarchived = unarchived
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: refresh order archive")
	}

	s.metrics.AddArchived(result.Archived)
	if result.Archived > 0 || result.Unarchived > 0 {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"archived":   result.Archived,
			"unarchived": result.Unarchived,
			"cutoff":     cutoff.Format(time.RFC3339),
		})
		s.logg.Info(logCtx, "order archive refreshed")
	}
	return result, nil
}

func (s *service) resolveAssignment(ctx context.Context, repo *fleets.Repository, fleetID, boatID uuid.UUID) (*models.Fleet, *models.Boat, error) {
	fleet, err := repo.FindFleet(ctx, fleetID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown fleet")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load fleet")
	}
	boat, err := repo.FindBoat(ctx, boatID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown boat")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load boat")
	}
	if boat.FleetID != fleet.ID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "boat does not belong to the selected fleet")
	}
	return fleet, boat, nil
}

// targetAssignment resolves the fleet and boat an order ends up with. When
// the fleet changes, the boat falls back to the new fleet's first boat unless
// the requested boat belongs to that fleet.
func (s *service) targetAssignment(ctx context.Context, repo *fleets.Repository, order *models.OrderItem, input ModifyInput) (uuid.UUID, uuid.UUID, error) {
	fleetID := order.FleetID
	if input.FleetID != nil {
		fleetID = *input.FleetID
	}

	if fleetID == order.FleetID {
		boatID := order.BoatID
		if input.BoatID != nil && *input.BoatID != order.BoatID {
			_, boat, err := s.resolveAssignment(ctx, repo, fleetID, *input.BoatID)
			if err != nil {
				return uuid.Nil, uuid.Nil, err
			}
			boatID = boat.ID
		}
		return fleetID, boatID, nil
	}

	if _, err := repo.FindFleet(ctx, fleetID); err != nil {
		if db.IsNotFound(err) {
			return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown fleet")
		}
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load fleet")
	}

	candidates := []uuid.UUID{}
	if input.BoatID != nil {
		candidates = append(candidates, *input.BoatID)
	}
	candidates = append(candidates, order.BoatID)
	for _, id := range candidates {
		boat, err := repo.FindBoat(ctx, id)
		if err != nil && !db.IsNotFound(err) {
			return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load boat")
		}
		if err == nil && boat.FleetID == fleetID {
			return fleetID, boat.ID, nil
		}
	}

	first, err := repo.FirstBoat(ctx, fleetID)
	if err != nil {
		if db.IsNotFound(err) {
			return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "selected fleet has no boats")
		}
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load first boat")
	}
	return fleetID, first.ID, nil
}

func (s *service) fillModifyResult(ctx context.Context, repo *Repository, orderID uuid.UUID, source *models.InventoryItem, result *ModifyResult) error {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload order item")
	}
	result.Order = FromModel(*order)
	if source != nil {
		item := inventory.FromModel(*source)
		result.Item = &item
	}
	return nil
}

// recreateFromOrder brings back a removed inventory item from the order's
// snapshot, holding qty units.
func recreateFromOrder(ctx context.Context, invRepo *inventory.Repository, order *models.OrderItem, qty decimal.Decimal, now time.Time) (*models.InventoryItem, error) {
	qty = money.Round2(qty)
	item := &models.InventoryItem{
		Name:        order.Name,
		Note:        order.Note,
		Quantity:    qty,
		UnitPrice:   order.UnitPrice,
		UnitSize:    order.UnitSize,
		SelectUnit:  order.SelectUnit,
		Total:       money.Total(order.UnitPrice, qty, order.UnitSize),
		DateCreated: now,
		LastUpdated: now,
	}
	if err := invRepo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: recreate inventory item")
	}
	return item, nil
}

func asTyped(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
