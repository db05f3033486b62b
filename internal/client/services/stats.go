package services

import (
	"context"
	"math"
	"time"

	"github.com/dkrasnov/flashread/internal/client/models"
	"github.com/dkrasnov/flashread/internal/client/remote"
	"github.com/dkrasnov/flashread/internal/client/store"
	"github.com/dkrasnov/flashread/internal/common"
	"github.com/dkrasnov/flashread/internal/logging"
)

// Session durations below this are treated as accidental taps and dropped.
const minSessionDuration = 2 * time.Second

// A day only counts toward the streak after this much reading.
const streakSessionDuration = time.Minute

// DisplayStats is the assembled view for the stats screen.
type DisplayStats struct {
	CurrentStreak           int
	StreakFreezeActive      bool
	TotalWordsRead          int
	TotalDocumentsCompleted int
	TodayWordsRead          int
	AvgWPM7Day              int
}

type StatsService interface {
	StartSession(documentID string, startIndex int)
	EndSession(ctx context.Context, endIndex, wpm int, completed bool) error
	GetDisplayStats(ctx context.Context) (*DisplayStats, error)
}

type session struct {
	documentID string
	startIndex int
	startedAt  time.Time
}

type statsService struct {
	store  *store.Store
	remote remote.Client
	logger logging.Logger

	current *session

	// now is a seam for tests that pin the clock.
	now func() time.Time
}

func NewStatsService(st *store.Store, rc remote.Client, logger logging.Logger) StatsService {
	return &statsService{store: st, remote: rc, logger: logger, now: time.Now}
}

// StartSession marks the beginning of a reading stretch. A prior
// unterminated session is simply overwritten, sessions never nest.
func (s *statsService) StartSession(documentID string, startIndex int) {
	s.current = &session{
		documentID: documentID,
		startIndex: startIndex,
		startedAt:  s.now(),
	}
}

// EndSession closes the active session and persists it. Sessions shorter
// than two seconds or with nothing read are discarded. The streak advances
// only after a minute of reading. The remote session record is best-effort.
func (s *statsService) EndSession(ctx context.Context, endIndex, wpm int, completed bool) error {
	if s.current == nil {
		return nil
	}
	sess := s.current
	s.current = nil

	wordsRead := max(0, endIndex-sess.startIndex)
	duration := s.now().Sub(sess.startedAt)
	durationMs := duration.Milliseconds()

	if duration < minSessionDuration || wordsRead == 0 {
		return nil
	}

	avgWpm := wpm
	if durationMs > 0 {
		seconds := float64(durationMs) / 1000
		avgWpm = int(math.Round(float64(wordsRead) / seconds * 60))
	}

	if err := s.store.RecordReadingSession(ctx, wordsRead, durationMs, avgWpm, completed); err != nil {
		return err
	}

	if duration >= streakSessionDuration {
		if _, err := s.store.UpdateStreak(ctx); err != nil {
			return err
		}
	}

	if s.remote.SignedIn() {
		err := s.remote.SaveSession(ctx, &remote.Session{
			DocumentID: sess.documentID,
			WordsRead:  wordsRead,
			DurationMs: durationMs,
			AvgWPM:     avgWpm,
			StartedAt:  sess.startedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			s.logger.Warn(ctx, "failed to push session record", "error", err)
		}
	}

	return nil
}

// GetDisplayStats assembles streak, lifetime, today's words and the mean of
// the last seven days' non-zero daily averages.
func (s *statsService) GetDisplayStats(ctx context.Context) (*DisplayStats, error) {
	result := &DisplayStats{}

	streak, err := s.store.GetStreak(ctx)
	if err != nil {
		return nil, err
	}
	if streak != nil {
		result.CurrentStreak = streak.CurrentStreak
		result.StreakFreezeActive = streak.StreakFreezeActive
	}

	lifetime, err := s.store.GetLifetimeStats(ctx)
	if err != nil {
		return nil, err
	}
	if lifetime != nil {
		result.TotalWordsRead = lifetime.TotalWordsRead
		result.TotalDocumentsCompleted = lifetime.TotalDocumentsCompleted
	}

	today := s.now().UTC().Format(common.DateLayout)
	weekAgo := s.now().UTC().AddDate(0, 0, -6).Format(common.DateLayout)

	week, err := s.store.GetStatsRange(ctx, weekAgo, today)
	if err != nil {
		return nil, err
	}
	result.TodayWordsRead = todayWords(week, today)
	result.AvgWPM7Day = meanNonZeroWPM(week)

	return result, nil
}

func todayWords(stats []*models.DailyStat, today string) int {
	for _, d := range stats {
		if d.Date == today {
			return d.WordsRead
		}
	}
	return 0
}

func meanNonZeroWPM(stats []*models.DailyStat) int {
	sum, n := 0, 0
	for _, d := range stats {
		if d.AvgWPM > 0 {
			sum += d.AvgWPM
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}
