package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dkrasnov/flashread/internal/server/models"
	"github.com/dkrasnov/flashread/internal/server/repositories/repomanager"
)

// DocumentService exposes user-scoped CRUD over synced document metadata.
// All operations take the authenticated user's id and never cross accounts.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager) *DocumentService {
	return &DocumentService{db: db, repomanager: m}
}

// List returns all documents owned by the user.
func (s *DocumentService) List(ctx context.Context, userID string) ([]*models.Document, error) {
	repo := s.repomanager.Documents(s.db)
	docs, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	return docs, nil
}

// Create stores new document metadata for the user and returns the stored
// record with its server-assigned id.
func (s *DocumentService) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if doc.LastReadAt.IsZero() {
		doc.LastReadAt = time.Now().UTC()
	}
	repo := s.repomanager.Documents(s.db)
	created, err := repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("error creating document: %w", err)
	}
	return created, nil
}

// UpdateProgress moves the user's bookmark on a document.
func (s *DocumentService) UpdateProgress(ctx context.Context, userID, docID string, bookmarkIndex int, lastReadAt time.Time) error {
	repo := s.repomanager.Documents(s.db)
	if lastReadAt.IsZero() {
		lastReadAt = time.Now().UTC()
	}
	return repo.UpdateProgress(ctx, userID, docID, bookmarkIndex, lastReadAt)
}

// SetFingerprint back-fills the fingerprint of a legacy document and drops
// its stored content.
func (s *DocumentService) SetFingerprint(ctx context.Context, userID, docID, fingerprint string) error {
	repo := s.repomanager.Documents(s.db)
	return repo.SetFingerprint(ctx, userID, docID, fingerprint)
}

// Delete removes a document owned by the user.
func (s *DocumentService) Delete(ctx context.Context, userID, docID string) error {
	repo := s.repomanager.Documents(s.db)
	return repo.Delete(ctx, userID, docID)
}
