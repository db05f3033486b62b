package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkrasnov/flashread/internal/common"
	"github.com/dkrasnov/flashread/internal/dbx"
	"github.com/dkrasnov/flashread/internal/logging"
	"github.com/dkrasnov/flashread/internal/server/auth"
	"github.com/dkrasnov/flashread/internal/server/config"
	"github.com/dkrasnov/flashread/internal/server/models"
	documentsrepo "github.com/dkrasnov/flashread/internal/server/repositories/documents"
	refreshtokensrepo "github.com/dkrasnov/flashread/internal/server/repositories/refreshtokens"
	statsrepo "github.com/dkrasnov/flashread/internal/server/repositories/stats"
	usersrepo "github.com/dkrasnov/flashread/internal/server/repositories/users"
	"github.com/dkrasnov/flashread/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeUsersRepo struct {
	users map[string]*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	u.ID = "u-" + u.Email
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeRefreshRepo struct {
	tokens map[string]*models.RefreshToken
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

type fakeDocsRepo struct {
	docs []*models.Document
}

func (f *fakeDocsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Document, error) {
	var out []*models.Document
	for _, d := range f.docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocsRepo) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	doc.ID = "d-new"
	doc.CreatedAt = time.Now().UTC()
	f.docs = append(f.docs, doc)
	return doc, nil
}

func (f *fakeDocsRepo) UpdateProgress(ctx context.Context, userID, docID string, bookmarkIndex int, lastReadAt time.Time) error {
	for _, d := range f.docs {
		if d.ID == docID && d.UserID == userID {
			d.BookmarkIndex = bookmarkIndex
			d.LastReadAt = lastReadAt
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeDocsRepo) SetFingerprint(ctx context.Context, userID, docID, fingerprint string) error {
	for _, d := range f.docs {
		if d.ID == docID && d.UserID == userID {
			d.Fingerprint = fingerprint
			d.Content = ""
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeDocsRepo) Delete(ctx context.Context, userID, docID string) error {
	for i, d := range f.docs {
		if d.ID == docID && d.UserID == userID {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeStatsRepo struct {
	stats    map[string]*models.UserStats
	sessions []*models.ReadingSession
}

func (f *fakeStatsRepo) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	s, ok := f.stats[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return s, nil
}

func (f *fakeStatsRepo) Upsert(ctx context.Context, stats *models.UserStats) error {
	f.stats[stats.UserID] = stats
	return nil
}

func (f *fakeStatsRepo) InsertSession(ctx context.Context, session *models.ReadingSession) error {
	session.ID = int64(len(f.sessions) + 1)
	f.sessions = append(f.sessions, session)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	d *fakeDocsRepo
	s *fakeStatsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Documents(db dbx.DBTX) documentsrepo.Repository         { return m.d }
func (m *fakeRepoManager) Stats(db dbx.DBTX) statsrepo.Repository                 { return m.s }

// --- helpers ---

type testEnv struct {
	router *gin.Engine
	cfg    *config.Config
	rm     *fakeRepoManager
	db     *sql.DB
	mock   sqlmock.Sqlmock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 24 * time.Hour,
		CORSAllowOrigins:             []string{"*"},
	}

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{users: map[string]*models.User{}},
		r: &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}},
		d: &fakeDocsRepo{},
		s: &fakeStatsRepo{stats: map[string]*models.UserStats{}},
	}

	h := Handlers{
		Users:     services.NewUserService(db, rm, cfg),
		Documents: services.NewDocumentService(db, rm),
		Stats:     services.NewStatsService(db, rm),
	}
	logger := logging.NewSlogLogger(slog.New(slog.DiscardHandler))

	return &testEnv{router: NewRouter(cfg, h, logger), cfg: cfg, rm: rm, db: db, mock: mock}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(e.cfg.SecretKey), time.Hour)
	require.NoError(t, err)
	return token
}

// --- tests ---

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/api/v1/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister_InvalidEmail(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"email": "not-an-email", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_ShortPassword(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"email": "a@b.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)

	var pair tokenPairResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "",
		map[string]string{"email": "bob@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	var pair tokenPairResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))

	// rotation runs in a transaction
	env.mock.ExpectBegin()
	env.mock.ExpectCommit()

	w = env.request(t, http.MethodPost, "/api/v1/auth/refresh", "",
		map[string]string{"refreshToken": pair.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)

	var next tokenPairResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &next))
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// old token is gone after rotation
	w = env.request(t, http.MethodPost, "/api/v1/auth/refresh", "",
		map[string]string{"refreshToken": pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/api/v1/documents", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredTokenMessage(t *testing.T) {
	env := newTestEnv(t)

	expired, err := auth.GenerateToken("u-1", []byte(env.cfg.SecretKey), -time.Minute)
	require.NoError(t, err)

	w := env.request(t, http.MethodGet, "/api/v1/documents", expired, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, common.ErrTokenExpired.Error(), body["error"])
}

func TestDocuments_CreateListAndScope(t *testing.T) {
	env := newTestEnv(t)
	alice := env.tokenFor(t, "u-alice")
	bob := env.tokenFor(t, "u-bob")

	w := env.request(t, http.MethodPost, "/api/v1/documents", alice, map[string]any{
		"title": "Moby Dick", "fingerprint": "fp", "totalWords": 1000, "bookmarkIndex": 0,
		"lastReadAt": time.Now().UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var created documentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "d-new", created.ID)
	assert.Equal(t, "Moby Dick", created.Title)

	w = env.request(t, http.MethodGet, "/api/v1/documents", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var docs []documentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	assert.Len(t, docs, 1)

	// another user sees an empty list
	w = env.request(t, http.MethodGet, "/api/v1/documents", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	assert.Len(t, docs, 0)
}

func TestDocuments_ProgressAndNotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.tokenFor(t, "u-alice")

	env.rm.d.docs = append(env.rm.d.docs, &models.Document{ID: "d-1", UserID: "u-alice", Title: "T"})

	w := env.request(t, http.MethodPatch, "/api/v1/documents/d-1/progress", alice,
		map[string]any{"bookmarkIndex": 55, "lastReadAt": time.Now().UTC().Format(time.RFC3339)})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 55, env.rm.d.docs[0].BookmarkIndex)

	w = env.request(t, http.MethodPatch, "/api/v1/documents/d-missing/progress", alice,
		map[string]any{"bookmarkIndex": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocuments_FingerprintClearsContent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.tokenFor(t, "u-alice")

	env.rm.d.docs = append(env.rm.d.docs, &models.Document{ID: "d-1", UserID: "u-alice", Content: "legacy text"})

	fp := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	w := env.request(t, http.MethodPatch, "/api/v1/documents/d-1/fingerprint", alice,
		map[string]string{"fingerprint": fp})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, fp, env.rm.d.docs[0].Fingerprint)
	assert.Empty(t, env.rm.d.docs[0].Content)
}

func TestStats_GetEmptyAndSave(t *testing.T) {
	env := newTestEnv(t)
	alice := env.tokenFor(t, "u-alice")

	w := env.request(t, http.MethodGet, "/api/v1/stats", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var s statsPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Zero(t, s.TotalWordsRead)

	w = env.request(t, http.MethodPut, "/api/v1/stats", alice, statsPayload{
		TotalWordsRead: 5000, CurrentStreak: 3, LastReadDate: "2025-03-02",
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/stats", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, 5000, s.TotalWordsRead)
	assert.Equal(t, 3, s.CurrentStreak)
}

func TestSessions_Save(t *testing.T) {
	env := newTestEnv(t)
	alice := env.tokenFor(t, "u-alice")

	w := env.request(t, http.MethodPost, "/api/v1/sessions", alice, sessionRequest{
		DocumentID: "d-1", WordsRead: 400, DurationMs: 90000, AvgWPM: 267,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, env.rm.s.sessions, 1)
	assert.Equal(t, "u-alice", env.rm.s.sessions[0].UserID)
	assert.Equal(t, 400, env.rm.s.sessions[0].WordsRead)
}
