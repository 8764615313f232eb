package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/fleetstock-backend/internal/orders"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
)

const archiveJobName = "order-archive"

type archiveRefresher interface {
	RefreshArchive(ctx context.Context, now time.Time) (*orders.ArchiveResult, error)
}

// ArchiveJobParams configure the monthly order archive job.
type ArchiveJobParams struct {
	Logger *logger.Logger
	Orders archiveRefresher
	Now    func() time.Time
}

type archiveJob struct {
	logg   *logger.Logger
	orders archiveRefresher
	now    func() time.Time
}

// NewArchiveJob builds the job that moves last month's assigned orders out of
// the current list once the calendar month rolls over.
func NewArchiveJob(params ArchiveJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &archiveJob{logg: params.Logger, orders: params.Orders, now: now}, nil
}

func (j *archiveJob) Name() string { return archiveJobName }

func (j *archiveJob) Run(ctx context.Context) error {
	result, err := j.orders.RefreshArchive(ctx, j.now())
	if err != nil {
		return err
	}
	ctx = j.logg.WithFields(ctx, map[string]any{
		"archived":   result.Archived,
		"unarchived": result.Unarchived,
		"cutoff":     result.Cutoff.Format(time.RFC3339),
	})
	j.logg.Info(ctx, "order archive checked")
	return nil
}
