package services

import (
	"context"
	"testing"
	"time"

	"github.com/dkrasnov/flashread/internal/client/models"
	"github.com/dkrasnov/flashread/internal/client/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances a fixed instant by hand.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newStatsFixture(t *testing.T) (*statsService, *store.Store, *fakeRemote, *fakeClock) {
	t.Helper()
	st := newTestStore(t)
	rc := newFakeRemote()
	clock := &fakeClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	svc := &statsService{store: st, remote: rc, logger: testLogger(), now: clock.now}
	return svc, st, rc, clock
}

func TestEndSessionWithoutStartIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, st, _, _ := newStatsFixture(t)

	require.NoError(t, svc.EndSession(ctx, 100, 300, false))

	stat, err := st.GetDailyStats(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Nil(t, stat)
}

func TestEndSessionDiscardsShortSessions(t *testing.T) {
	ctx := context.Background()
	svc, st, _, clock := newStatsFixture(t)

	svc.StartSession("d1", 0)
	clock.advance(time.Second)
	require.NoError(t, svc.EndSession(ctx, 100, 300, false))

	stat, err := st.GetDailyStats(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Nil(t, stat, "sub-two-second sessions are dropped")
}

func TestEndSessionDiscardsZeroWords(t *testing.T) {
	ctx := context.Background()
	svc, st, _, clock := newStatsFixture(t)

	svc.StartSession("d1", 50)
	clock.advance(10 * time.Second)
	require.NoError(t, svc.EndSession(ctx, 50, 300, false))

	stat, err := st.GetDailyStats(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Nil(t, stat)
}

func TestEndSessionPersistsAndComputesWPM(t *testing.T) {
	ctx := context.Background()
	svc, st, rc, clock := newStatsFixture(t)

	svc.StartSession("d1", 0)
	clock.advance(30 * time.Second)
	require.NoError(t, svc.EndSession(ctx, 150, 300, true))

	stat, err := st.GetDailyStats(ctx, "2026-03-10")
	require.NoError(t, err)
	require.NotNil(t, stat)
	assert.Equal(t, 150, stat.WordsRead)
	assert.Equal(t, int64(30000), stat.ReadingTimeMs)
	// 150 words in 30 s = 300 wpm
	assert.Equal(t, 300, stat.AvgWPM)
	assert.Equal(t, 1, stat.DocumentsCompleted)

	require.Len(t, rc.savedSessions, 1)
	assert.Equal(t, "d1", rc.savedSessions[0].DocumentID)
	assert.Equal(t, 150, rc.savedSessions[0].WordsRead)

	// A second EndSession without a new start does nothing.
	require.NoError(t, svc.EndSession(ctx, 200, 300, false))
	assert.Len(t, rc.savedSessions, 1)
}

func TestEndSessionStreakNeedsAMinute(t *testing.T) {
	ctx := context.Background()
	svc, st, _, clock := newStatsFixture(t)

	svc.StartSession("d1", 0)
	clock.advance(30 * time.Second)
	require.NoError(t, svc.EndSession(ctx, 100, 300, false))

	streak, err := st.GetStreak(ctx)
	require.NoError(t, err)
	assert.Nil(t, streak, "a short session must not touch the streak")

	svc.StartSession("d1", 100)
	clock.advance(90 * time.Second)
	require.NoError(t, svc.EndSession(ctx, 400, 300, false))

	streak, err = st.GetStreak(ctx)
	require.NoError(t, err)
	require.NotNil(t, streak)
	assert.Equal(t, 1, streak.CurrentStreak)
}

func TestEndSessionSkipsRemoteWhenSignedOut(t *testing.T) {
	ctx := context.Background()
	svc, _, rc, clock := newStatsFixture(t)
	rc.signedIn = false

	svc.StartSession("d1", 0)
	clock.advance(10 * time.Second)
	require.NoError(t, svc.EndSession(ctx, 50, 300, false))

	assert.Empty(t, rc.savedSessions)
}

func TestGetDisplayStats(t *testing.T) {
	ctx := context.Background()
	svc, st, _, _ := newStatsFixture(t)

	require.NoError(t, st.SaveStreak(ctx, &models.Streak{CurrentStreak: 4, StreakFreezeActive: true}))
	require.NoError(t, st.SaveLifetimeStats(ctx, &models.Lifetime{TotalWordsRead: 9000, TotalDocumentsCompleted: 3}))

	// Two qualifying days inside the window, one zero day, one outside.
	for _, d := range []*models.DailyStat{
		{Date: "2026-03-09", WordsRead: 200, AvgWPM: 300},
		{Date: "2026-03-10", WordsRead: 400, AvgWPM: 351},
		{Date: "2026-03-08", WordsRead: 0, AvgWPM: 0},
		{Date: "2026-02-01", WordsRead: 999, AvgWPM: 900},
	} {
		require.NoError(t, importStat(ctx, st, d))
	}

	got, err := svc.GetDisplayStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, got.CurrentStreak)
	assert.True(t, got.StreakFreezeActive)
	assert.Equal(t, 9000, got.TotalWordsRead)
	assert.Equal(t, 3, got.TotalDocumentsCompleted)
	assert.Equal(t, 400, got.TodayWordsRead)
	// mean of 300 and 351, zero days excluded, old day out of window
	assert.Equal(t, 326, got.AvgWPM7Day)
}

func TestGetDisplayStatsEmptyStore(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newStatsFixture(t)

	got, err := svc.GetDisplayStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, got.CurrentStreak)
	assert.Zero(t, got.AvgWPM7Day)
	assert.Zero(t, got.TodayWordsRead)
}

func importStat(ctx context.Context, st *store.Store, stat *models.DailyStat) error {
	return st.ImportAll(ctx, &models.Backup{
		Version: models.BackupVersion,
		Stats:   []models.DailyStat{*stat},
	})
}
