package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminSlot is the only allowed value of users.slot; the unique index on the
// column keeps the table to a single admin row.
const AdminSlot int16 = 1

// User is the single admin account.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	PinHash   string    `gorm:"column:pin;not null"`
	Slot      int16     `gorm:"column:slot;not null;default:1;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Slot == 0 {
		u.Slot = AdminSlot
	}
	return nil
}
