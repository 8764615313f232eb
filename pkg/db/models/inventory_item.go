package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryItem is a stocked product. Total is always
// round2(UnitPrice * Quantity / UnitSize).
type InventoryItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Note        string          `gorm:"column:note;not null;default:''"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(14,2);not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	UnitSize    decimal.Decimal `gorm:"column:unit_size;type:numeric(14,2);not null"`
	SelectUnit  string          `gorm:"column:select_unit;not null"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null"`
	DateCreated time.Time       `gorm:"column:date_created;not null"`
	LastUpdated time.Time       `gorm:"column:last_updated;not null"`
}

func (InventoryItem) TableName() string { return "inventory_items" }

func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
