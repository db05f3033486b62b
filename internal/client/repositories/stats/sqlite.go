package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkrasnov/flashread/internal/client/models"
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

const statColumns = `date, words_read, reading_time_ms, sessions_count, avg_wpm, documents_completed`

func (r *SQLiteRepository) Get(ctx context.Context, date string) (*models.DailyStat, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+statColumns+` FROM daily_stats WHERE date = ?`, date)
	stat, err := scanStat(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select daily stat: %w", err)
	}
	return stat, nil
}

func (r *SQLiteRepository) GetRange(ctx context.Context, startDate, endDate string) ([]*models.DailyStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+statColumns+` FROM daily_stats WHERE date >= ? AND date <= ? ORDER BY date`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to select stats range: %w", err)
	}
	return collect(rows)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.DailyStat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+statColumns+` FROM daily_stats ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to select stats: %w", err)
	}
	return collect(rows)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, stat *models.DailyStat) error {
	query := ` INSERT INTO daily_stats (` + statColumns + `)
			values (?, ?, ?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET words_read = excluded.words_read,
				reading_time_ms = excluded.reading_time_ms,
				sessions_count = excluded.sessions_count,
				avg_wpm = excluded.avg_wpm,
				documents_completed = excluded.documents_completed
	`
	_, err := r.db.ExecContext(ctx, query,
		stat.Date, stat.WordsRead, stat.ReadingTimeMs, stat.SessionsCount, stat.AvgWPM, stat.DocumentsCompleted)
	if err != nil {
		return fmt.Errorf("failed to upsert daily stat: %w", err)
	}
	return nil
}

func collect(rows *sql.Rows) ([]*models.DailyStat, error) {
	defer rows.Close()

	var result []*models.DailyStat
	for rows.Next() {
		stat, err := scanStat(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanStat(scan func(dest ...any) error) (*models.DailyStat, error) {
	var s models.DailyStat
	err := scan(&s.Date, &s.WordsRead, &s.ReadingTimeMs, &s.SessionsCount, &s.AvgWPM, &s.DocumentsCompleted)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
