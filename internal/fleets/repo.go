package fleets

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
)

// Repository persists the fleet/boat catalog.
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

// ListWithBoats returns every fleet ordered by name with its boats ordered by name.
func (r *Repository) ListWithBoats(ctx context.Context) ([]models.Fleet, error) {
	var fleets []models.Fleet
	err := r.db.WithContext(ctx).
		Preload("Boats", func(db *gorm.DB) *gorm.DB {
			return db.Order("boat_name ASC").Order("id ASC")
		}).
		Order("fleet_name ASC").
		Order("id ASC").
		Find(&fleets).Error
	return fleets, err
}

// FindFleet loads a fleet without boats.
func (r *Repository) FindFleet(ctx context.Context, id uuid.UUID) (*models.Fleet, error) {
	var fleet models.Fleet
	if err := r.db.WithContext(ctx).First(&fleet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fleet, nil
}

// FindBoat loads a boat by id.
func (r *Repository) FindBoat(ctx context.Context, id uuid.UUID) (*models.Boat, error) {
	var boat models.Boat
	if err := r.db.WithContext(ctx).First(&boat, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &boat, nil
}

// FirstBoat returns the first boat option of a fleet, matching the order of ListWithBoats.
func (r *Repository) FirstBoat(ctx context.Context, fleetID uuid.UUID) (*models.Boat, error) {
	var boat models.Boat
	err := r.db.WithContext(ctx).
		Where("fleet_id = ?", fleetID).
		Order("boat_name ASC").
		Order("id ASC").
		First(&boat).Error
	if err != nil {
		return nil, err
	}
	return &boat, nil
}

// EnsureFleet returns the fleet with the given name, creating it when missing.
func (r *Repository) EnsureFleet(ctx context.Context, name string) (*models.Fleet, bool, error) {
	var fleet models.Fleet
	err := r.db.WithContext(ctx).Where("fleet_name = ?", name).First(&fleet).Error
	if err == nil {
		return &fleet, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	fleet = models.Fleet{FleetName: name}
	if err := r.db.WithContext(ctx).Omit("Boats").Create(&fleet).Error; err != nil {
		return nil, false, err
	}
	return &fleet, true, nil
}

// EnsureBoat returns the named boat of a fleet, creating it when missing.
func (r *Repository) EnsureBoat(ctx context.Context, fleetID uuid.UUID, name string) (*models.Boat, bool, error) {
	var boat models.Boat
	err := r.db.WithContext(ctx).Where("fleet_id = ? AND boat_name = ?", fleetID, name).First(&boat).Error
	if err == nil {
		return &boat, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	boat = models.Boat{FleetID: fleetID, BoatName: name}
	if err := r.db.WithContext(ctx).Create(&boat).Error; err != nil {
		return nil, false, err
	}
	return &boat, true, nil
}
