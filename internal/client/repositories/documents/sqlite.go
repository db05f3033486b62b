package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkrasnov/flashread/internal/client/models"
	"github.com/dkrasnov/flashread/internal/common"
	"github.com/dkrasnov/flashread/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const documentColumns = `id, title, content, fingerprint, total_words, bookmark_index, source, created_at, last_read_at, remote_id, is_ghost`

// Save upserts a document by id. On conflict every mutable column is updated.
func (r *SQLiteRepository) Save(ctx context.Context, doc *models.Document) error {
	query := ` INSERT INTO documents (` + documentColumns + `)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET title = excluded.title,
				content = excluded.content,
				fingerprint = excluded.fingerprint,
				total_words = excluded.total_words,
				bookmark_index = excluded.bookmark_index,
				source = excluded.source,
				last_read_at = excluded.last_read_at,
				remote_id = excluded.remote_id,
				is_ghost = excluded.is_ghost
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.Title, doc.Content, doc.Fingerprint, doc.TotalWords, doc.BookmarkIndex,
		string(doc.Source), doc.CreatedAt.UTC().Format(time.RFC3339), doc.LastReadAt.UTC().Format(time.RFC3339),
		doc.RemoteID, boolToInt(doc.IsGhost))
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select document: %w", err)
	}
	return doc, nil
}

func (r *SQLiteRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*models.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE fingerprint = ? ORDER BY last_read_at DESC LIMIT 1`, fingerprint)
	doc, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select document by fingerprint: %w", err)
	}
	return doc, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.Document, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY last_read_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateProgress sets the bookmark and refreshes last_read_at. A missing id
// affects zero rows and is not an error.
func (r *SQLiteRepository) UpdateProgress(ctx context.Context, id string, bookmarkIndex int) error {
	query := `UPDATE documents SET bookmark_index = ?, last_read_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, bookmarkIndex, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func scanDocument(scan func(dest ...any) error) (*models.Document, error) {
	var (
		doc       models.Document
		source    string
		createdAt string
		readAt    string
		isGhost   int
	)
	err := scan(&doc.ID, &doc.Title, &doc.Content, &doc.Fingerprint, &doc.TotalWords,
		&doc.BookmarkIndex, &source, &createdAt, &readAt, &doc.RemoteID, &isGhost)
	if err != nil {
		return nil, err
	}
	doc.Source = models.Source(source)
	doc.IsGhost = isGhost != 0
	if doc.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if doc.LastReadAt, err = time.Parse(time.RFC3339, readAt); err != nil {
		return nil, fmt.Errorf("bad last_read_at: %w", err)
	}
	return &doc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
