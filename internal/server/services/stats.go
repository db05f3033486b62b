package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkrasnov/flashread/internal/common"
	"github.com/dkrasnov/flashread/internal/server/models"
	"github.com/dkrasnov/flashread/internal/server/repositories/repomanager"
)

// StatsService stores per-user aggregate statistics and session records.
// Merging across devices happens on the client; the server keeps the
// latest pushed aggregate and an append-only session log.
type StatsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewStatsService constructs a StatsService.
func NewStatsService(db *sql.DB, m repomanager.RepositoryManager) *StatsService {
	return &StatsService{db: db, repomanager: m}
}

// Get returns the user's stored stats. A user that has never pushed stats
// gets an empty record rather than an error.
func (s *StatsService) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	repo := s.repomanager.Stats(s.db)
	stats, err := repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &models.UserStats{UserID: userID}, nil
		}
		return nil, fmt.Errorf("error loading stats: %w", err)
	}
	return stats, nil
}

// Save replaces the user's stored aggregate with the pushed one.
func (s *StatsService) Save(ctx context.Context, stats *models.UserStats) error {
	repo := s.repomanager.Stats(s.db)
	if err := repo.Upsert(ctx, stats); err != nil {
		return fmt.Errorf("error saving stats: %w", err)
	}
	return nil
}

// SaveSession appends one reading session to the user's history.
func (s *StatsService) SaveSession(ctx context.Context, session *models.ReadingSession) error {
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	repo := s.repomanager.Stats(s.db)
	if err := repo.InsertSession(ctx, session); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}
