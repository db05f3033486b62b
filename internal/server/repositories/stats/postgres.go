// Package stats provides the PostgreSQL-backed repository for per-user
// reading statistics and session history.
package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	query := `
		SELECT current_streak, last_read_date, streak_freeze_active, streak_freeze_used_at,
			total_words_read, total_documents_completed
		FROM user_stats
		WHERE user_id = $1
	`

	s := &models.UserStats{UserID: userID}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.CurrentStreak, &s.LastReadDate,
		&s.StreakFreezeActive, &s.StreakFreezeUsedAt, &s.TotalWordsRead, &s.TotalDocumentsCompleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, stats *models.UserStats) error {
	query := `
		INSERT INTO user_stats (user_id, current_streak, last_read_date, streak_freeze_active,
			streak_freeze_used_at, total_words_read, total_documents_completed, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (user_id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			last_read_date = EXCLUDED.last_read_date,
			streak_freeze_active = EXCLUDED.streak_freeze_active,
			streak_freeze_used_at = EXCLUDED.streak_freeze_used_at,
			total_words_read = EXCLUDED.total_words_read,
			total_documents_completed = EXCLUDED.total_documents_completed,
			updated_at = now()
	`

	_, err := r.db.ExecContext(ctx, query, stats.UserID, stats.CurrentStreak, stats.LastReadDate,
		stats.StreakFreezeActive, stats.StreakFreezeUsedAt, stats.TotalWordsRead, stats.TotalDocumentsCompleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertSession(ctx context.Context, session *models.ReadingSession) error {
	query := `
		INSERT INTO reading_sessions (user_id, document_id, words_read, duration_ms, avg_wpm, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var docID any
	if session.DocumentID != "" {
		docID = session.DocumentID
	}
	err := r.db.QueryRowContext(ctx, query, session.UserID, docID, session.WordsRead,
		session.DurationMs, session.AvgWPM, session.StartedAt).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
