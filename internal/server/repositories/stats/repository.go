package stats

import (
	"context"

	"github.com/dkrasnov/flashread/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*models.UserStats, error)
	Upsert(ctx context.Context, stats *models.UserStats) error
	InsertSession(ctx context.Context, session *models.ReadingSession) error
}
