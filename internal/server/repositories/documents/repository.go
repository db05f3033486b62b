package documents

import (
	"context"
	"time"

	"github.com/dkrasnov/flashread/internal/server/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Document, error)
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	UpdateProgress(ctx context.Context, userID, docID string, bookmarkIndex int, lastReadAt time.Time) error
	SetFingerprint(ctx context.Context, userID, docID, fingerprint string) error
	Delete(ctx context.Context, userID, docID string) error
}
