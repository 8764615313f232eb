package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fleet groups the boats orders are attributed to.
type Fleet struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	FleetName string    `gorm:"column:fleet_name;not null;uniqueIndex"`
	Boats     []Boat    `gorm:"foreignKey:FleetID"`
}

func (Fleet) TableName() string { return "fleets" }

func (f *Fleet) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// Boat belongs to exactly one fleet.
type Boat struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	BoatName string    `gorm:"column:boat_name;not null;uniqueIndex:idx_boats_fleet_boat_name"`
	FleetID  uuid.UUID `gorm:"column:fleet_id;type:uuid;not null;uniqueIndex:idx_boats_fleet_boat_name"`
}

func (Boat) TableName() string { return "boats" }

func (b *Boat) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
