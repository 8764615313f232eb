package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits the PIN hash.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateAdminDTO holds the data required to persist the admin.
type CreateAdminDTO struct {
	Email   string
	PinHash string
}

// ToModel converts the DTO into the persisted model.
func (d CreateAdminDTO) ToModel() *models.User {
	return &models.User{
		Email:   NormalizeEmail(d.Email),
		PinHash: d.PinHash,
		Slot:    models.AdminSlot,
	}
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
