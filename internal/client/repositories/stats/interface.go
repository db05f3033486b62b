// Package stats provides the client-side daily statistics repository.
package stats

import (
	"context"

	"github.com/dkrasnov/flashread/internal/client/models"
)

// Repository persists one row per calendar day. Get returns (nil, nil) for
// days with no activity.
type Repository interface {
	Get(ctx context.Context, date string) (*models.DailyStat, error)
	GetRange(ctx context.Context, startDate, endDate string) ([]*models.DailyStat, error)
	GetAll(ctx context.Context) ([]*models.DailyStat, error)
	Upsert(ctx context.Context, stat *models.DailyStat) error
}
