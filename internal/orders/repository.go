package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
)

// Repository persists order items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Fleet").Preload("Boat")
}

// Create inserts an order. Fleet and boat must already exist.
func (r *Repository) Create(ctx context.Context, order *models.OrderItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

// FindByID loads an order with its fleet and boat.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var order models.OrderItem
	if err := r.withRefs(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindForUpdate loads an order and locks its row until the transaction ends.
func (r *Repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var order models.OrderItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateAssignment writes the quantity, total, fleet, boat and source item of
// an order.
func (r *Repository) UpdateAssignment(ctx context.Context, order *models.OrderItem) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"quantity":          order.Quantity,
			"total":             order.Total,
			"fleet_id":          order.FleetID,
			"boat_id":           order.BoatID,
			"inventory_item_id": order.InventoryItemID,
			"last_updated":      order.LastUpdated,
		}).Error
}

// Delete removes an order.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.OrderItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListCurrent returns non-archived orders, newest first.
func (r *Repository) ListCurrent(ctx context.Context) ([]models.OrderItem, error) {
	var rows []models.OrderItem
	err := r.withRefs(ctx).
		Where("archived = ?", false).
		Order("out_date DESC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ListBetween returns orders (archived included) with out_date in [from, to),
// optionally restricted to a fleet.
func (r *Repository) ListBetween(ctx context.Context, fleetID *uuid.UUID, from, to time.Time) ([]models.OrderItem, error) {
	q := r.withRefs(ctx).
		Where("out_date >= ? AND out_date < ?", from, to)
	if fleetID != nil {
		q = q.Where("fleet_id = ?", *fleetID)
	}
	var rows []models.OrderItem
	err := q.Order("out_date ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

// Archive flags every order dated before cutoff.
func (r *Repository) Archive(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("archived = ? AND out_date < ?", false, cutoff).
		Update("archived", true)
	return res.RowsAffected, res.Error
}

// Unarchive clears the flag on orders dated on or after cutoff.
func (r *Repository) Unarchive(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("archived = ? AND out_date >= ?", true, cutoff).
		Update("archived", false)
	return res.RowsAffected, res.Error
}
