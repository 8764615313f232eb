package models

import (
	"time"

	"github.com/angelmondragon/fleetstock-backend/pkg/enums"
)

// Otp holds the live one-time code for an email. CodeHash is a bcrypt hash;
// the plain code only ever leaves the process by mail.
type Otp struct {
	Email     string           `gorm:"column:email;primaryKey"`
	CodeHash  string           `gorm:"column:code;not null"`
	Purpose   enums.OtpPurpose `gorm:"column:purpose;type:text;not null"`
	Verified  bool             `gorm:"column:verified;not null;default:false"`
	Attempts  int              `gorm:"column:attempts;not null;default:0"`
	ExpiresAt time.Time        `gorm:"column:expires_at;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (Otp) TableName() string { return "otps" }

// Expired reports whether the code can no longer be verified or consumed.
func (o Otp) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
