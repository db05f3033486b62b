// Package documents provides the client-side document repository: the
// authoritative record of every text the user reads on this device.
package documents

import (
	"context"

	"github.com/dkrasnov/flashread/internal/client/models"
)

// Repository is the persistence contract for documents. Implementations
// return common.ErrorNotFound for missing single-row lookups, except
// GetByFingerprint which returns (nil, nil) when no row matches.
type Repository interface {
	// Save upserts a document by id.
	Save(ctx context.Context, doc *models.Document) error

	// GetByID returns one document or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// GetByFingerprint returns at most one match, or nil when absent.
	GetByFingerprint(ctx context.Context, fingerprint string) (*models.Document, error)

	// GetAll lists all documents, most recently read first.
	GetAll(ctx context.Context) ([]*models.Document, error)

	// UpdateProgress sets the bookmark and refreshes last_read_at. Missing
	// documents are silently ignored.
	UpdateProgress(ctx context.Context, id string, bookmarkIndex int) error

	// Delete removes a document by id.
	Delete(ctx context.Context, id string) error
}
