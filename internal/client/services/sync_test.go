package services

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/dkrasnov/flashread/internal/client/models"
	"github.com/dkrasnov/flashread/internal/client/remote"
	"github.com/dkrasnov/flashread/internal/client/store"
	"github.com/dkrasnov/flashread/internal/fingerprint"
	"github.com/dkrasnov/flashread/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *store.Store {
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

	return store.NewWithDB(db)
}

// fakeRemote is an in-memory remote.Client recording what sync sent.
type fakeRemote struct {
	signedIn bool
	docs     []*remote.Document
	stats    *remote.Stats

	created       []*remote.Document
	progress      map[string]int
	fingerprints  map[string]string
	savedStats    *remote.Stats
	savedSessions []*remote.Session
	nextID        int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		signedIn:     true,
		stats:        &remote.Stats{},
		progress:     map[string]int{},
		fingerprints: map[string]string{},
	}
}

func (f *fakeRemote) Register(context.Context, string, string) error { return nil }
func (f *fakeRemote) Login(context.Context, string, string) error    { return nil }
func (f *fakeRemote) Logout()                                        { f.signedIn = false }
func (f *fakeRemote) SignedIn() bool                                 { return f.signedIn }
func (f *fakeRemote) Ping(context.Context) error                     { return nil }

func (f *fakeRemote) ListDocuments(context.Context) ([]*remote.Document, error) {
	return f.docs, nil
}

func (f *fakeRemote) CreateDocument(_ context.Context, doc *remote.Document) (*remote.Document, error) {
	f.nextID++
	created := *doc
	created.ID = "remote-" + string(rune('0'+f.nextID))
	f.created = append(f.created, &created)
	return &created, nil
}

func (f *fakeRemote) UpdateProgress(_ context.Context, remoteID string, bookmarkIndex int, _ string) error {
	f.progress[remoteID] = bookmarkIndex
	return nil
}

func (f *fakeRemote) SetFingerprint(_ context.Context, remoteID, fp string) error {
	f.fingerprints[remoteID] = fp
	return nil
}

func (f *fakeRemote) DeleteDocument(context.Context, string) error { return nil }

func (f *fakeRemote) GetStats(context.Context) (*remote.Stats, error) { return f.stats, nil }

func (f *fakeRemote) SaveStats(_ context.Context, s *remote.Stats) error {
	f.savedStats = s
	return nil
}

func (f *fakeRemote) SaveSession(_ context.Context, s *remote.Session) error {
	f.savedSessions = append(f.savedSessions, s)
	return nil
}

func newSyncService(st *store.Store, rc remote.Client) SyncService {
	return NewSyncService(st, rc, testLogger())
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.DiscardHandler))
}

func localDocument(id, fp string, bookmark int) *models.Document {
	return &models.Document{
		ID:            id,
		Title:         "doc " + id,
		Content:       "alpha beta gamma",
		Fingerprint:   fp,
		TotalWords:    3,
		BookmarkIndex: bookmark,
		Source:        models.SourceUpload,
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		LastReadAt:    time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestSyncIsNoopWhenSignedOut(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	rc := newFakeRemote()
	rc.signedIn = false
	rc.docs = []*remote.Document{{ID: "r1", Fingerprint: "fp"}}

	result, err := newSyncService(st, rc).Sync(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.NeedsReupload)

	docs, err := st.GetAllDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs, "nothing may be pulled while signed out")
}

func TestSyncPullCreatesGhosts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.MarkRemoteSchemaMigrated(ctx))

	rc := newFakeRemote()
	rc.docs = []*remote.Document{{
		ID:            "r1",
		Title:         "remote only",
		Fingerprint:   "fp-remote",
		TotalWords:    500,
		BookmarkIndex: 42,
		LastReadAt:    "2026-02-01T10:00:00Z",
	}}

	result, err := newSyncService(st, rc).Sync(ctx)
	require.NoError(t, err)
	require.Len(t, result.NeedsReupload, 1)

	ghost := result.NeedsReupload[0]
	assert.True(t, ghost.IsGhost)
	assert.Empty(t, ghost.Content)
	assert.Equal(t, "r1", ghost.RemoteID)
	assert.Equal(t, 42, ghost.BookmarkIndex)
	assert.Equal(t, models.SourceSync, ghost.Source)

	stored, err := st.GetDocumentByFingerprint(ctx, "fp-remote")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsGhost)
}

func TestSyncPullAdoptsOnlyAheadBookmarks(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.MarkRemoteSchemaMigrated(ctx))

	ahead := localDocument("d1", "fp-1", 50)
	behind := localDocument("d2", "fp-2", 5)
	require.NoError(t, st.SaveDocument(ctx, ahead))
	require.NoError(t, st.SaveDocument(ctx, behind))

	rc := newFakeRemote()
	rc.docs = []*remote.Document{
		{ID: "r1", Fingerprint: "fp-1", BookmarkIndex: 10, LastReadAt: "2026-02-01T10:00:00Z"},
		{ID: "r2", Fingerprint: "fp-2", BookmarkIndex: 30, LastReadAt: "2026-02-01T10:00:00Z"},
	}

	_, err := newSyncService(st, rc).Sync(ctx)
	require.NoError(t, err)

	got1, err := st.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, 50, got1.BookmarkIndex, "local lead is kept")
	assert.Equal(t, "r1", got1.RemoteID, "matched document gets linked")

	got2, err := st.GetDocument(ctx, "d2")
	require.NoError(t, err)
	assert.Equal(t, 30, got2.BookmarkIndex, "remote lead is adopted")
	assert.Equal(t, "2026-02-01T10:00:00Z", got2.LastReadAt.UTC().Format(time.RFC3339))
}

func TestSyncPushCreatesAndLinks(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.MarkRemoteSchemaMigrated(ctx))

	unlinked := localDocument("d1", "fp-1", 12)
	require.NoError(t, st.SaveDocument(ctx, unlinked))

	linked := localDocument("d2", "fp-2", 7)
	linked.RemoteID = "r9"
	require.NoError(t, st.SaveDocument(ctx, linked))

	rc := newFakeRemote()

	_, err := newSyncService(st, rc).Sync(ctx)
	require.NoError(t, err)

	require.Len(t, rc.created, 1)
	assert.Equal(t, "fp-1", rc.created[0].Fingerprint)
	assert.Empty(t, rc.created[0].Content, "push never uploads document text")

	got, err := st.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, rc.created[0].ID, got.RemoteID)

	assert.Equal(t, 7, rc.progress["r9"], "linked documents push their bookmark")
}

func TestSyncLegacyMigrationRunsOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	content := "one two three four five"
	fp := fingerprint.FromText(content)

	rc := newFakeRemote()
	rc.docs = []*remote.Document{{
		ID:         "r-legacy",
		Title:      "old row",
		Content:    content,
		TotalWords: 5,
		LastReadAt: "2026-01-15T08:00:00Z",
	}}

	svc := newSyncService(st, rc)

	_, err := svc.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, fp, rc.fingerprints["r-legacy"], "remote row gets back-filled")

	local, err := st.GetDocumentByFingerprint(ctx, fp)
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.Equal(t, content, local.Content, "legacy text is adopted locally")
	assert.False(t, local.IsGhost)

	migrated, err := st.IsRemoteSchemaMigrated(ctx)
	require.NoError(t, err)
	assert.True(t, migrated)

	// A second run must not re-fingerprint.
	rc.fingerprints = map[string]string{}
	rc.docs[0].Fingerprint = fp
	rc.docs[0].Content = ""
	_, err = svc.Sync(ctx)
	require.NoError(t, err)
	assert.Empty(t, rc.fingerprints)
}

func TestSyncMergesStatsPerField(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.MarkRemoteSchemaMigrated(ctx))

	require.NoError(t, st.SaveLifetimeStats(ctx, &models.Lifetime{TotalWordsRead: 100, TotalDocumentsCompleted: 1}))
	require.NoError(t, st.SaveStreak(ctx, &models.Streak{CurrentStreak: 2, LastReadDate: "2026-02-10"}))

	rc := newFakeRemote()
	rc.stats = &remote.Stats{
		TotalWordsRead:          80,
		TotalDocumentsCompleted: 5,
		CurrentStreak:           7,
		LastReadDate:            "2026-02-08",
		StreakFreezeActive:      true,
	}

	_, err := newSyncService(st, rc).Sync(ctx)
	require.NoError(t, err)

	lifetime, err := st.GetLifetimeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, lifetime.TotalWordsRead)
	assert.Equal(t, 5, lifetime.TotalDocumentsCompleted)

	streak, err := st.GetStreak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, streak.CurrentStreak)
	assert.Equal(t, "2026-02-10", streak.LastReadDate, "fields merge independently")
	assert.True(t, streak.StreakFreezeActive)

	require.NotNil(t, rc.savedStats)
	assert.Equal(t, 100, rc.savedStats.TotalWordsRead)
	assert.Equal(t, 7, rc.savedStats.CurrentStreak)
}

func TestSyncDocumentStandalone(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	doc := localDocument("d1", "fp-1", 3)
	require.NoError(t, st.SaveDocument(ctx, doc))

	rc := newFakeRemote()
	svc := newSyncService(st, rc)

	require.NoError(t, svc.SyncDocument(ctx, doc))
	require.Len(t, rc.created, 1)
	assert.NotEmpty(t, doc.RemoteID)

	// Now linked, the same call updates instead of creating.
	doc.BookmarkIndex = 99
	require.NoError(t, svc.SyncDocument(ctx, doc))
	require.Len(t, rc.created, 1)
	assert.Equal(t, 99, rc.progress[doc.RemoteID])
}
