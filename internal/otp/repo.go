package otp

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
)

// Repository persists one-time codes, one row per email.
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

// Replace stores code as the only live code for its email.
func (r *Repository) Replace(ctx context.Context, code *models.Otp) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "purpose", "verified", "attempts", "expires_at", "created_at"}),
		}).
		Create(code).Error
}

// Find loads the live code of an email.
func (r *Repository) Find(ctx context.Context, email string) (*models.Otp, error) {
	var code models.Otp
	if err := r.db.WithContext(ctx).First(&code, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

// MarkVerified flags the code as verified.
func (r *Repository) MarkVerified(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Model(&models.Otp{}).
		Where("email = ?", email).
		Update("verified", true).Error
}

// IncrementAttempts records a failed verification.
func (r *Repository) IncrementAttempts(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Model(&models.Otp{}).
		Where("email = ?", email).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

// Delete removes the code of an email.
func (r *Repository) Delete(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Delete(&models.Otp{}, "email = ?", email).Error
}
