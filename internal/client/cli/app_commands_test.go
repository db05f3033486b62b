package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"testing"

	"github.com/dkrasnov/flashread/internal/client/config"
	"github.com/dkrasnov/flashread/internal/client/models"
	"github.com/dkrasnov/flashread/internal/client/recovery"
	"github.com/dkrasnov/flashread/internal/client/remote"
	"github.com/dkrasnov/flashread/internal/client/services"
	"github.com/dkrasnov/flashread/internal/client/store"
	"github.com/dkrasnov/flashread/internal/common"
	"github.com/dkrasnov/flashread/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newTestApp(t *testing.T, input string) *App {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			fingerprint TEXT NOT NULL,
			total_words INTEGER NOT NULL DEFAULT 0,
			bookmark_index INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_read_at TEXT NOT NULL,
			remote_id TEXT NOT NULL DEFAULT '',
			is_ghost INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE daily_stats (
			date TEXT PRIMARY KEY,
			words_read INTEGER NOT NULL DEFAULT 0,
			reading_time_ms INTEGER NOT NULL DEFAULT 0,
			sessions_count INTEGER NOT NULL DEFAULT 0,
			avg_wpm INTEGER NOT NULL DEFAULT 0,
			documents_completed INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	require.NoError(t, err)

	st := store.NewWithDB(db)
	rc := remote.NewNullClient()
	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))

	cfg := &config.Config{}
	cfg.LoadDefaults()

	return &App{
		config:       cfg,
		store:        st,
		remote:       rc,
		syncService:  services.NewSyncService(st, rc, logger),
		statsService: services.NewStatsService(st, rc, logger),
		crashBuffer:  recovery.NewBuffer(t.TempDir() + "/recovery.json"),
		logger:       logger,
		reader:       bufio.NewReader(strings.NewReader(input)),
	}
}

func TestAddDocumentCreatesRecord(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, "")

	require.NoError(t, a.addDocument(ctx, "greeting", "hello brave new world", models.SourcePaste))

	docs, err := a.store.GetAllDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "greeting", docs[0].Title)
	assert.Equal(t, 4, docs[0].TotalWords)
	assert.Equal(t, models.SourcePaste, docs[0].Source)
	assert.Len(t, docs[0].Fingerprint, 64)
}

func TestAddDocumentRejectsEmpty(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, "")

	err := a.addDocument(ctx, "empty", "   \n\t  ", models.SourcePaste)
	assert.ErrorIs(t, err, common.ErrorEmptyDocument)
}

func TestAddDocumentDeduplicatesByFingerprint(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, "")

	require.NoError(t, a.addDocument(ctx, "first", "same exact text", models.SourcePaste))
	require.NoError(t, a.addDocument(ctx, "second", "same exact text", models.SourceUpload))

	docs, err := a.store.GetAllDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "first", docs[0].Title)
}

func TestAddDocumentRestoresGhostContent(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, "")

	content := "the text that lives on another device"
	require.NoError(t, a.addDocument(ctx, "probe", content, models.SourcePaste))

	docs, err := a.store.GetAllDocuments(ctx)
	require.NoError(t, err)
	ghost := docs[0]
	ghost.Content = ""
	ghost.IsGhost = true
	ghost.BookmarkIndex = 3
	require.NoError(t, a.store.SaveDocument(ctx, ghost))

	require.NoError(t, a.addDocument(ctx, "restored", content, models.SourcePaste))

	got, err := a.store.GetDocument(ctx, ghost.ID)
	require.NoError(t, err)
	assert.False(t, got.IsGhost)
	assert.Equal(t, content, got.Content)
	assert.Equal(t, 3, got.BookmarkIndex, "bookmark survives restoration")
}

func TestDescribe(t *testing.T) {
	d := &models.Document{Title: "war and peace", BookmarkIndex: 50, TotalWords: 200}
	assert.Equal(t, "war and peace  (word 50 of 200, 25%)", describe(d))

	d.IsGhost = true
	d.RemoteID = "r1"
	got := describe(d)
	assert.Contains(t, got, "[needs re-upload]")
	assert.Contains(t, got, "[synced]")
}

func TestGetStatusShowsDegradedStore(t *testing.T) {
	a := newTestApp(t, "")
	a.store = nil

	assert.Contains(t, a.getStatus(), "no-db")

	a.userName = "user@example.com"
	assert.Contains(t, a.getStatus(), "user@example.com")
}

func TestPickDocumentOnEmptyLibrary(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, "1\n")

	doc, err := a.pickDocument(ctx, "pick")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestPickDocumentByNumber(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, "1\n")

	require.NoError(t, a.addDocument(ctx, "only one", "some words here", models.SourcePaste))

	doc, err := a.pickDocument(ctx, "pick")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "only one", doc.Title)
}
