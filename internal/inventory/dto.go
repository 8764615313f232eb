package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
	"github.com/angelmondragon/fleetstock-backend/pkg/money"
)

// ItemInput is the payload of add-item and edit-item.
type ItemInput struct {
	Name       string          `json:"name" validate:"required,max=200"`
	Note       string          `json:"note" validate:"max=1000"`
	Quantity   decimal.Decimal `json:"quantity" validate:"twodp"`
	UnitPrice  decimal.Decimal `json:"unitPrice" validate:"twodp"`
	UnitSize   decimal.Decimal `json:"unitSize" validate:"twodp"`
	SelectUnit string          `json:"selectUnit" validate:"required,max=50"`
}

func (in ItemInput) normalized() ItemInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Note = strings.TrimSpace(in.Note)
	in.SelectUnit = strings.TrimSpace(in.SelectUnit)
	return in
}

// ItemDTO is the JSON shape of an inventory item.
type ItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Note        string    `json:"note"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	UnitSize    float64   `json:"unitSize"`
	SelectUnit  string    `json:"selectUnit"`
	Total       float64   `json:"total"`
	DateCreated time.Time `json:"dateCreated"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// FromModel maps a stored item to its DTO.
func FromModel(m models.InventoryItem) ItemDTO {
	return ItemDTO{
		ID:          m.ID,
		Name:        m.Name,
		Note:        m.Note,
		Quantity:    money.Float(m.Quantity),
		UnitPrice:   money.Float(m.UnitPrice),
		UnitSize:    money.Float(m.UnitSize),
		SelectUnit:  m.SelectUnit,
		Total:       money.Float(m.Total),
		DateCreated: m.DateCreated.UTC(),
		LastUpdated: m.LastUpdated.UTC(),
	}
}
