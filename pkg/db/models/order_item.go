package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is a quantity of an inventory item handed out to a boat. Pricing
// columns are a snapshot taken when the item was out; InventoryItemID is the
// source item and becomes NULL once that item is removed.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InventoryItemID *uuid.UUID      `gorm:"column:inventory_item_id;type:uuid;index"`
	Name            string          `gorm:"column:name;not null"`
	Note            string          `gorm:"column:note;not null;default:''"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:numeric(14,2);not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	UnitSize        decimal.Decimal `gorm:"column:unit_size;type:numeric(14,2);not null"`
	SelectUnit      string          `gorm:"column:select_unit;not null"`
	Total           decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null"`
	FleetID         uuid.UUID       `gorm:"column:fleet_id;type:uuid;not null;index"`
	BoatID          uuid.UUID       `gorm:"column:boat_id;type:uuid;not null;index"`
	OutDate         time.Time       `gorm:"column:out_date;not null;index"`
	LastUpdated     time.Time       `gorm:"column:last_updated;not null"`
	Archived        bool            `gorm:"column:archived;not null;default:false;index"`

	Fleet Fleet `gorm:"foreignKey:FleetID"`
	Boat  Boat  `gorm:"foreignKey:BoatID"`
}

func (OrderItem) TableName() string { return "order_items" }

func (o *OrderItem) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
