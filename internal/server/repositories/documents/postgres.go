// Package documents provides the PostgreSQL-backed repository for synced
// reading documents. Every query is scoped by user id so one account can
// never see or touch another account's rows.
package documents

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dkrasnov/flashread/internal/common"
	"github.com/dkrasnov/flashread/internal/dbx"
	"github.com/dkrasnov/flashread/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Document, error) {
	query := `
		SELECT id, title, fingerprint, total_words, bookmark_index, content, created_at, last_read_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{UserID: userID}
		err := rows.Scan(&doc.ID, &doc.Title, &doc.Fingerprint, &doc.TotalWords,
			&doc.BookmarkIndex, &doc.Content, &doc.CreatedAt, &doc.LastReadAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return docs, nil
}

func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	query := `
		INSERT INTO documents (user_id, title, fingerprint, total_words, bookmark_index, last_read_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, doc.UserID, doc.Title, doc.Fingerprint,
		doc.TotalWords, doc.BookmarkIndex, doc.LastReadAt).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doc, nil
}

func (r *PostgresRepository) UpdateProgress(ctx context.Context, userID, docID string, bookmarkIndex int, lastReadAt time.Time) error {
	query := `
		UPDATE documents
		SET bookmark_index = $1, last_read_at = $2
		WHERE id = $3 AND user_id = $4
	`

	res, err := r.db.ExecContext(ctx, query, bookmarkIndex, lastReadAt, docID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

// SetFingerprint back-fills the fingerprint of a legacy row and drops the
// stored text, since fingerprinted documents carry no content.
func (r *PostgresRepository) SetFingerprint(ctx context.Context, userID, docID, fingerprint string) error {
	query := `
		UPDATE documents
		SET fingerprint = $1, content = ''
		WHERE id = $2 AND user_id = $3
	`

	res, err := r.db.ExecContext(ctx, query, fingerprint, docID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, docID string) error {
	query := `
		DELETE FROM documents
		WHERE id = $1 AND user_id = $2
	`

	res, err := r.db.ExecContext(ctx, query, docID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
