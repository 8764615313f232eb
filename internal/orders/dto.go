package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fleetstock-backend/internal/fleets"
	"github.com/angelmondragon/fleetstock-backend/internal/inventory"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
	"github.com/angelmondragon/fleetstock-backend/pkg/money"
)

// OutInput is the payload of POST /assigned-item/assign-item.
type OutInput struct {
	InventoryItemID uuid.UUID       `json:"inventoryItemId" validate:"required"`
	Quantity        decimal.Decimal `json:"quantity" validate:"twodp"`
	FleetID         *uuid.UUID      `json:"fleetId"`
	BoatID          *uuid.UUID      `json:"boatId"`
}

// ModifyInput is the payload of PUT /modify-item/edit/{id}. Nil fields keep
// the order's current value.
type ModifyInput struct {
	Quantity *decimal.Decimal `json:"quantity" validate:"omitempty,twodp"`
	FleetID  *uuid.UUID       `json:"fleetId"`
	BoatID   *uuid.UUID       `json:"boatId"`
}

// FleetRef is the fleet embedded in an order.
type FleetRef struct {
	ID        uuid.UUID `json:"id"`
	FleetName string    `json:"fleet_name"`
}

// OrderDTO is the JSON shape of an order item.
type OrderDTO struct {
	ID              uuid.UUID      `json:"id"`
	InventoryItemID *uuid.UUID     `json:"inventoryItemId"`
	Name            string         `json:"name"`
	Note            string         `json:"note"`
	Quantity        float64        `json:"quantity"`
	UnitPrice       float64        `json:"unitPrice"`
	UnitSize        float64        `json:"unitSize"`
	SelectUnit      string         `json:"selectUnit"`
	Total           float64        `json:"total"`
	Fleet           FleetRef       `json:"fleet"`
	Boat            fleets.BoatDTO `json:"boat"`
	OutDate         time.Time      `json:"outDate"`
	LastUpdated     time.Time      `json:"lastUpdated"`
	Archived        bool           `json:"archived"`
}

// FromModel maps an order with its preloaded fleet and boat.
func FromModel(m models.OrderItem) OrderDTO {
	return OrderDTO{
		ID:              m.ID,
		InventoryItemID: m.InventoryItemID,
		Name:            m.Name,
		Note:            m.Note,
		Quantity:        money.Float(m.Quantity),
		UnitPrice:       money.Float(m.UnitPrice),
		UnitSize:        money.Float(m.UnitSize),
		SelectUnit:      m.SelectUnit,
		Total:           money.Float(m.Total),
		Fleet:           FleetRef{ID: m.Fleet.ID, FleetName: m.Fleet.FleetName},
		Boat:            fleets.BoatFromModel(m.Boat),
		OutDate:         m.OutDate.UTC(),
		LastUpdated:     m.LastUpdated.UTC(),
		Archived:        m.Archived,
	}
}

// OutResult is the created order plus the updated source item.
type OutResult struct {
	Order OrderDTO          `json:"order"`
	Item  inventory.ItemDTO `json:"item"`
}

// ModifyResult reports the outcome of an order edit. Item is nil when the
// source item no longer exists.
type ModifyResult struct {
	Changed    bool               `json:"changed"`
	Message    string             `json:"message,omitempty"`
	MaxAllowed float64            `json:"maxAllowed"`
	Recreated  bool               `json:"recreated,omitempty"`
	Order      OrderDTO           `json:"order"`
	Item       *inventory.ItemDTO `json:"item,omitempty"`
}

// DeleteResult reports where a deleted order's quantity went back to.
type DeleteResult struct {
	OrderID   uuid.UUID         `json:"orderId"`
	Item      inventory.ItemDTO `json:"item"`
	Recreated bool              `json:"recreated"`
}

// ArchiveResult is returned by the archive recompute.
type ArchiveResult struct {
	Archived   int64     `json:"archived"`
	Unarchived int64     `json:"unarchived"`
	Cutoff     time.Time `json:"cutoff"`
}
