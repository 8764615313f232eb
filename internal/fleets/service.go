package fleets

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/fleetstock-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/fleetstock-backend/pkg/errors"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
)

// Service exposes the fleet catalog.
type Service interface {
	List(ctx context.Context) ([]FleetDTO, error)
	EnsureDefaults(ctx context.Context, catalog []CatalogEntry) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService constructs the fleet service.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fleet repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: dbClient, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]FleetDTO, error) {
	rows, err := s.repo.ListWithBoats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list fleets")
	}
	out := make([]FleetDTO, 0, len(rows))
	for _, f := range rows {
		out = append(out, FromModel(f))
	}
	return out, nil
}

// EnsureDefaults seeds any fleet or boat of the catalog that does not exist
// yet. Existing rows are left untouched, so it is safe on every boot.
func (s *service) EnsureDefaults(ctx context.Context, catalog []CatalogEntry) error {
	created := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, entry := range catalog {
			name := strings.TrimSpace(entry.FleetName)
			if name == "" {
				continue
			}
			fleet, isNew, err := repo.EnsureFleet(ctx, name)
			if err != nil {
				return fmt.Errorf("ensure fleet %q: %w", name, err)
			}
			if isNew {
				created++
			}
			for _, boatName := range entry.Boats {
				boatName = strings.TrimSpace(boatName)
				if boatName == "" {
					continue
				}
				_, isNew, err := repo.EnsureBoat(ctx, fleet.ID, boatName)
				if err != nil {
					return fmt.Errorf("ensure boat %q: %w", boatName, err)
				}
				if isNew {
					created++
				}
			}
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: seed fleets")
	}
	if created > 0 {
		s.logg.Info(s.logg.WithField(ctx, "created", created), "fleet catalog seeded")
	}
	return nil
}
