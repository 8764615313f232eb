package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/fleetstock-backend/pkg/db"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
	"github.com/angelmondragon/fleetstock-backend/pkg/money"
)

// Service manages inventory items.
type Service interface {
	List(ctx context.Context) ([]ItemDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	Add(ctx context.Context, input ItemInput) (*ItemDTO, error)
	Edit(ctx context.Context, id uuid.UUID, input ItemInput) (*ItemDTO, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs the inventory service.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context) ([]ItemDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventory items")
	}
	out := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
	}
	dto := FromModel(*item)
	return &dto, nil
}

// Add creates an item and derives its total.
func (s *service) Add(ctx context.Context, input ItemInput) (*ItemDTO, error) {
	input = input.normalized()
	if err := validateItem(input); err != nil {
		return nil, err
	}

	now := s.now()
	item := &models.InventoryItem{
		Name:        input.Name,
		Note:        input.Note,
		Quantity:    money.Round2(input.Quantity),
		UnitPrice:   money.Round2(input.UnitPrice),
		UnitSize:    money.Round2(input.UnitSize),
		SelectUnit:  input.SelectUnit,
		DateCreated: now,
		LastUpdated: now,
	}
	item.Total = money.Total(item.UnitPrice, item.Quantity, item.UnitSize)

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert inventory item")
	}
	s.logg.Info(s.logg.WithField(ctx, "inventory_item_id", item.ID.String()), "inventory item added")

	dto := FromModel(*item)
	return &dto, nil
}

// Edit replaces the editable fields of an item and recomputes its total.
func (s *service) Edit(ctx context.Context, id uuid.UUID, input ItemInput) (*ItemDTO, error) {
	input = input.normalized()
	if err := validateItem(input); err != nil {
		return nil, err
	}

	var updated models.InventoryItem
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		item, err := txRepo.FindForUpdate(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory item")
		}

		item.Name = input.Name
		item.Note = input.Note
		item.Quantity = money.Round2(input.Quantity)
		item.UnitPrice = money.Round2(input.UnitPrice)
		item.UnitSize = money.Round2(input.UnitSize)
		item.SelectUnit = input.SelectUnit
		item.Total = money.Total(item.UnitPrice, item.Quantity, item.UnitSize)
		item.LastUpdated = s.now()

		if err := txRepo.Update(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update inventory item")
		}
		updated = *item
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "edit inventory item")
	}

	dto := FromModel(updated)
	return &dto, nil
}

// Remove deletes an item. Orders already taken from it keep their snapshot
// and lose only the source reference.
func (s *service) Remove(ctx context.Context, id uuid.UUID) error {
	var detached int64
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		n, err := txRepo.DetachOrders(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: detach orders")
		}
		detached = n
		if err := txRepo.Delete(ctx, id); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete inventory item")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove inventory item")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"inventory_item_id": id.String(),
		"detached_orders":   detached,
	})
	s.logg.Info(logCtx, "inventory item removed")
	return nil
}

func validateItem(input ItemInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.SelectUnit == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit is required")
	}
	if input.Quantity.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if !input.UnitSize.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit size must be greater than 0")
	}
	if !money.HasAtMost2DP(input.Quantity) {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity can have at most 2 decimal places")
	}
	if !money.HasAtMost2DP(input.UnitPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price can have at most 2 decimal places")
	}
	if !money.HasAtMost2DP(input.UnitSize) {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit size can have at most 2 decimal places")
	}
	return nil
}
