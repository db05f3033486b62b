// Package store is the client's authoritative local persistence layer: an
// SQLite database holding documents, per-day statistics and singleton
// metadata (lifetime aggregate, streak). It is the single source of truth;
// the sync layer only ever merges into it.
//
// When the database could not be opened, a nil *Store still works: every
// operation degrades to a no-op returning empty defaults, so reading keeps
// functioning ephemerally instead of failing.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/dkrasnov/flashread/internal/client/migrations"
	"github.com/dkrasnov/flashread/internal/client/models"
	"github.com/dkrasnov/flashread/internal/client/repositories/documents"
	"github.com/dkrasnov/flashread/internal/client/repositories/meta"
	"github.com/dkrasnov/flashread/internal/client/repositories/stats"
	"github.com/dkrasnov/flashread/internal/common"
	"github.com/dkrasnov/flashread/internal/dbx"
	"github.com/pressly/goose/v3"
)

// Store bundles the three local collections behind one facade that carries
// the merge and aggregation rules.
type Store struct {
	db    *sql.DB
	docs  documents.Repository
	stats stats.Repository
	meta  meta.Repository

	// now is a seam for tests that pin the calendar.
	now func() time.Time
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// Open opens (creating if needed) the SQLite database at dsn and applies
// migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewWithDB(db), nil
}

// NewWithDB wraps an already-open database. Used by tests.
func NewWithDB(db *sql.DB) *Store {
	return &Store{
		db:    db,
		docs:  documents.NewSQLiteRepository(db),
		stats: stats.NewSQLiteRepository(db),
		meta:  meta.NewSQLiteRepository(db),
		now:   time.Now,
	}
}

// Available reports whether a database is backing this store.
func (s *Store) Available() bool {
	return s != nil && s.db != nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if !s.Available() {
		return nil
	}
	return s.db.Close()
}

func (s *Store) today() string {
	return s.now().UTC().Format(common.DateLayout)
}

// ---------- documents ----------

// SaveDocument upserts a document by id.
func (s *Store) SaveDocument(ctx context.Context, doc *models.Document) error {
	if !s.Available() {
		return nil
	}
	return s.docs.Save(ctx, doc)
}

// GetDocument returns one document or common.ErrorNotFound.
func (s *Store) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	if !s.Available() {
		return nil, common.ErrorNotFound
	}
	return s.docs.GetByID(ctx, id)
}

// GetAllDocuments lists documents, most recently read first.
func (s *Store) GetAllDocuments(ctx context.Context) ([]*models.Document, error) {
	if !s.Available() {
		return nil, nil
	}
	return s.docs.GetAll(ctx)
}

// GetDocumentByFingerprint returns the matching document or nil.
func (s *Store) GetDocumentByFingerprint(ctx context.Context, fp string) (*models.Document, error) {
	if !s.Available() {
		return nil, nil
	}
	return s.docs.GetByFingerprint(ctx, fp)
}

// DeleteDocument removes a document by id.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if !s.Available() {
		return nil
	}
	return s.docs.Delete(ctx, id)
}

// UpdateProgress moves the bookmark and refreshes last_read_at. Absent
// documents are ignored, never an error.
func (s *Store) UpdateProgress(ctx context.Context, id string, bookmarkIndex int) error {
	if !s.Available() || id == "" {
		return nil
	}
	return s.docs.UpdateProgress(ctx, id, bookmarkIndex)
}

// ---------- stats ----------

// RecordReadingSession accumulates one finished session into today's daily
// record (created lazily) and into the lifetime aggregate, atomically.
func (s *Store) RecordReadingSession(ctx context.Context, wordsRead int, durationMs int64, avgWpm int, completed bool) error {
	if !s.Available() {
		return nil
	}

	today := s.today()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		statRepo := stats.NewSQLiteRepository(tx)
		metaRepo := meta.NewSQLiteRepository(tx)

		stat, err := statRepo.Get(ctx, today)
		if err != nil {
			return err
		}
		if stat == nil {
			stat = &models.DailyStat{Date: today}
		}

		stat.WordsRead += wordsRead
		stat.ReadingTimeMs += durationMs
		stat.SessionsCount++
		stat.AvgWPM = runningAverage(stat.AvgWPM, stat.SessionsCount, avgWpm)
		if completed {
			stat.DocumentsCompleted++
		}
		if err := statRepo.Upsert(ctx, stat); err != nil {
			return err
		}

		lifetime, err := getLifetime(ctx, metaRepo)
		if err != nil {
			return err
		}
		if lifetime == nil {
			lifetime = &models.Lifetime{}
		}
		lifetime.TotalWordsRead += wordsRead
		if completed {
			lifetime.TotalDocumentsCompleted++
		}
		return setJSON(ctx, metaRepo, meta.KeyLifetime, lifetime)
	})
}

// runningAverage folds one more sample into a per-day running average,
// where n is the session count after the new sample.
func runningAverage(oldAvg, n, sample int) int {
	if n <= 0 {
		return sample
	}
	return int(math.Round((float64(oldAvg)*float64(n-1) + float64(sample)) / float64(n)))
}

// GetDailyStats returns the record for one day, or nil.
func (s *Store) GetDailyStats(ctx context.Context, date string) (*models.DailyStat, error) {
	if !s.Available() {
		return nil, nil
	}
	return s.stats.Get(ctx, date)
}

// GetStatsRange returns daily records between two dates inclusive.
func (s *Store) GetStatsRange(ctx context.Context, startDate, endDate string) ([]*models.DailyStat, error) {
	if !s.Available() {
		return nil, nil
	}
	return s.stats.GetRange(ctx, startDate, endDate)
}

// GetLifetimeStats returns the lifetime aggregate, or nil if never written.
func (s *Store) GetLifetimeStats(ctx context.Context) (*models.Lifetime, error) {
	if !s.Available() {
		return nil, nil
	}
	return getLifetime(ctx, s.meta)
}

// SaveLifetimeStats overwrites the lifetime aggregate. Used by merges.
func (s *Store) SaveLifetimeStats(ctx context.Context, lifetime *models.Lifetime) error {
	if !s.Available() {
		return nil
	}
	return setJSON(ctx, s.meta, meta.KeyLifetime, lifetime)
}

// ---------- streak ----------

// GetStreak returns the streak record, or nil if never written.
func (s *Store) GetStreak(ctx context.Context) (*models.Streak, error) {
	if !s.Available() {
		return nil, nil
	}
	return getStreak(ctx, s.meta)
}

// SaveStreak overwrites the streak record. Used by merges.
func (s *Store) SaveStreak(ctx context.Context, streak *models.Streak) error {
	if !s.Available() {
		return nil
	}
	return setJSON(ctx, s.meta, meta.KeyStreak, streak)
}

// UpdateStreak advances the consecutive-days counter for today:
// same-day calls are no-ops, a one-day gap increments, a two-day gap with an
// active freeze increments and burns the freeze, anything else resets to 1.
func (s *Store) UpdateStreak(ctx context.Context) (*models.Streak, error) {
	if !s.Available() {
		return nil, nil
	}

	today := s.today()

	streak, err := getStreak(ctx, s.meta)
	if err != nil {
		return nil, err
	}

	if streak == nil {
		streak = &models.Streak{CurrentStreak: 1, LastReadDate: today}
		return streak, setJSON(ctx, s.meta, meta.KeyStreak, streak)
	}

	if streak.LastReadDate == today {
		return streak, nil
	}

	switch daysBetween(streak.LastReadDate, today) {
	case 1:
		streak.CurrentStreak++
	case 2:
		if streak.StreakFreezeActive {
			streak.CurrentStreak++
			streak.StreakFreezeActive = false
		} else {
			streak.CurrentStreak = 1
		}
	default:
		streak.CurrentStreak = 1
	}

	streak.LastReadDate = today
	return streak, setJSON(ctx, s.meta, meta.KeyStreak, streak)
}

// ActivateStreakFreeze arms the one-time missed-day grace.
func (s *Store) ActivateStreakFreeze(ctx context.Context) (*models.Streak, error) {
	if !s.Available() {
		return nil, nil
	}

	streak, err := getStreak(ctx, s.meta)
	if err != nil {
		return nil, err
	}
	if streak == nil {
		streak = &models.Streak{}
	}
	streak.StreakFreezeActive = true
	streak.StreakFreezeUsedAt = s.now().UTC().Format(time.RFC3339)
	return streak, setJSON(ctx, s.meta, meta.KeyStreak, streak)
}

// daysBetween returns whole calendar days from one date key to another.
// Malformed input counts as a broken streak.
func daysBetween(from, to string) int {
	a, err1 := time.Parse(common.DateLayout, from)
	b, err2 := time.Parse(common.DateLayout, to)
	if err1 != nil || err2 != nil {
		return -1
	}
	return int(b.Sub(a).Hours() / 24)
}

// ---------- sync bookkeeping ----------

// IsRemoteSchemaMigrated reports whether the one-time legacy remote
// migration already ran on this install.
func (s *Store) IsRemoteSchemaMigrated(ctx context.Context) (bool, error) {
	if !s.Available() {
		return true, nil
	}
	v, err := s.meta.Get(ctx, meta.KeyMigrated)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

// MarkRemoteSchemaMigrated records that the legacy remote migration ran.
func (s *Store) MarkRemoteSchemaMigrated(ctx context.Context) error {
	if !s.Available() {
		return nil
	}
	return s.meta.Set(ctx, meta.KeyMigrated, []byte("true"))
}

// ---------- export / import ----------

// ExportAll serializes the entire store into a versioned backup.
func (s *Store) ExportAll(ctx context.Context) (*models.Backup, error) {
	if !s.Available() {
		return nil, common.ErrorNotFound
	}

	docs, err := s.docs.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	dailies, err := s.stats.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	lifetime, err := getLifetime(ctx, s.meta)
	if err != nil {
		return nil, err
	}
	streak, err := getStreak(ctx, s.meta)
	if err != nil {
		return nil, err
	}

	backup := &models.Backup{
		Version:    models.BackupVersion,
		ExportedAt: s.now().UTC(),
		Documents:  make([]models.Document, 0, len(docs)),
		Stats:      make([]models.DailyStat, 0, len(dailies)),
		Meta:       models.BackupMeta{Lifetime: lifetime, Streak: streak},
	}
	for _, d := range docs {
		backup.Documents = append(backup.Documents, *d)
	}
	for _, d := range dailies {
		backup.Stats = append(backup.Stats, *d)
	}
	return backup, nil
}

// ImportAll merges a backup into the store atomically. Documents merge by
// fingerprint keeping the further-along bookmark, daily stats take the
// maximum of each counter per day, and singletons keep the higher values.
// An unsupported version fails before any mutation.
func (s *Store) ImportAll(ctx context.Context, backup *models.Backup) error {
	if backup == nil || backup.Version != models.BackupVersion {
		return fmt.Errorf("%w: version %d", common.ErrorUnsupportedBackupVersion, backupVersion(backup))
	}
	if !s.Available() {
		return nil
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		docRepo := documents.NewSQLiteRepository(tx)
		statRepo := stats.NewSQLiteRepository(tx)
		metaRepo := meta.NewSQLiteRepository(tx)

		for i := range backup.Documents {
			doc := backup.Documents[i]

			existing, err := docRepo.GetByFingerprint(ctx, doc.Fingerprint)
			if err != nil {
				return err
			}
			if existing == nil {
				// The sync linkage belongs to the exporting install.
				doc.RemoteID = ""
				if err := docRepo.Save(ctx, &doc); err != nil {
					return err
				}
				continue
			}
			if doc.BookmarkIndex > existing.BookmarkIndex {
				existing.BookmarkIndex = doc.BookmarkIndex
				existing.LastReadAt = doc.LastReadAt
				if err := docRepo.Save(ctx, existing); err != nil {
					return err
				}
			}
		}

		for i := range backup.Stats {
			stat := backup.Stats[i]

			existing, err := statRepo.Get(ctx, stat.Date)
			if err != nil {
				return err
			}
			if existing == nil {
				if err := statRepo.Upsert(ctx, &stat); err != nil {
					return err
				}
				continue
			}
			existing.WordsRead = max(existing.WordsRead, stat.WordsRead)
			existing.ReadingTimeMs = max(existing.ReadingTimeMs, stat.ReadingTimeMs)
			existing.SessionsCount = max(existing.SessionsCount, stat.SessionsCount)
			existing.DocumentsCompleted = max(existing.DocumentsCompleted, stat.DocumentsCompleted)
			if err := statRepo.Upsert(ctx, existing); err != nil {
				return err
			}
		}

		if backup.Meta.Lifetime != nil {
			existing, err := getLifetime(ctx, metaRepo)
			if err != nil {
				return err
			}
			if existing == nil {
				existing = &models.Lifetime{}
			}
			existing.TotalWordsRead = max(existing.TotalWordsRead, backup.Meta.Lifetime.TotalWordsRead)
			existing.TotalDocumentsCompleted = max(existing.TotalDocumentsCompleted, backup.Meta.Lifetime.TotalDocumentsCompleted)
			if err := setJSON(ctx, metaRepo, meta.KeyLifetime, existing); err != nil {
				return err
			}
		}

		if backup.Meta.Streak != nil {
			existing, err := getStreak(ctx, metaRepo)
			if err != nil {
				return err
			}
			if existing == nil || backup.Meta.Streak.CurrentStreak > existing.CurrentStreak {
				if err := setJSON(ctx, metaRepo, meta.KeyStreak, backup.Meta.Streak); err != nil {
					return err
				}
			}
		}

		return nil
	})
}

func backupVersion(b *models.Backup) int {
	if b == nil {
		return 0
	}
	return b.Version
}

// ---------- meta helpers ----------

func getLifetime(ctx context.Context, repo meta.Repository) (*models.Lifetime, error) {
	var lifetime models.Lifetime
	ok, err := getJSON(ctx, repo, meta.KeyLifetime, &lifetime)
	if err != nil || !ok {
		return nil, err
	}
	return &lifetime, nil
}

func getStreak(ctx context.Context, repo meta.Repository) (*models.Streak, error) {
	var streak models.Streak
	ok, err := getJSON(ctx, repo, meta.KeyStreak, &streak)
	if err != nil || !ok {
		return nil, err
	}
	return &streak, nil
}

func getJSON(ctx context.Context, repo meta.Repository, key string, dst any) (bool, error) {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("corrupt meta[%s]: %w", key, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, repo meta.Repository, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return repo.Set(ctx, key, raw)
}
