package fleets

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
)

// FleetDTO is the selection option sent to the UI.
type FleetDTO struct {
	ID        uuid.UUID `json:"id"`
	FleetName string    `json:"fleet_name"`
	Boats     []BoatDTO `json:"boats"`
}

// BoatDTO is a boat option within a fleet.
type BoatDTO struct {
	ID       uuid.UUID `json:"id"`
	BoatName string    `json:"boat_name"`
	FleetID  uuid.UUID `json:"fleet_id"`
}

// FromModel maps a fleet (with preloaded boats) to its DTO.
func FromModel(f models.Fleet) FleetDTO {
	boats := make([]BoatDTO, 0, len(f.Boats))
	for _, b := range f.Boats {
		boats = append(boats, BoatFromModel(b))
	}
	return FleetDTO{ID: f.ID, FleetName: f.FleetName, Boats: boats}
}

// BoatFromModel maps a boat to its DTO.
func BoatFromModel(b models.Boat) BoatDTO {
	return BoatDTO{ID: b.ID, BoatName: b.BoatName, FleetID: b.FleetID}
}
