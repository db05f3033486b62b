// Package services holds the client's higher-level workflows on top of the
// local store and the remote backend: the sync coordinator and the reading
// stats engine.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dkrasnov/flashread/internal/client/models"
	"github.com/dkrasnov/flashread/internal/client/remote"
	"github.com/dkrasnov/flashread/internal/client/store"
	"github.com/dkrasnov/flashread/internal/fingerprint"
	"github.com/dkrasnov/flashread/internal/logging"
	"github.com/google/uuid"
)

// SyncResult is what one sync run produced. NeedsReupload lists ghost
// documents materialized from remote metadata whose text the user has to
// supply again before they can be read.
type SyncResult struct {
	NeedsReupload []*models.Document
	Pulled        int
	Pushed        int
}

type SyncService interface {
	Sync(ctx context.Context) (*SyncResult, error)
	SyncDocument(ctx context.Context, doc *models.Document) error
}

type syncService struct {
	store  *store.Store
	remote remote.Client
	logger logging.Logger
}

func NewSyncService(st *store.Store, rc remote.Client, logger logging.Logger) SyncService {
	return &syncService{store: st, remote: rc, logger: logger}
}

// Sync runs the full protocol in strict order: one-time legacy migration,
// pull, push, stats merge. Every step is best-effort; a failed step is
// logged and the run continues so a flaky network never wedges local data.
func (s *syncService) Sync(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{}

	if !s.remote.SignedIn() {
		return result, nil
	}

	if err := s.migrateLegacyRemote(ctx); err != nil {
		s.logger.Error(ctx, "legacy remote migration failed", "error", err)
	}

	if err := s.pull(ctx, result); err != nil {
		s.logger.Error(ctx, "pull failed", "error", err)
	}

	if err := s.push(ctx, result); err != nil {
		s.logger.Error(ctx, "push failed", "error", err)
	}

	if err := s.mergeStats(ctx); err != nil {
		s.logger.Error(ctx, "stats merge failed", "error", err)
	}

	return result, nil
}

// migrateLegacyRemote back-fills fingerprints on remote rows that predate
// fingerprinting and still carry document text, adopting that text locally
// when this install has no copy. Runs at most once per installation.
func (s *syncService) migrateLegacyRemote(ctx context.Context) error {
	migrated, err := s.store.IsRemoteSchemaMigrated(ctx)
	if err != nil {
		return err
	}
	if migrated {
		return nil
	}

	remoteDocs, err := s.remote.ListDocuments(ctx)
	if err != nil {
		return err
	}

	for _, rd := range remoteDocs {
		if rd.Content == "" || rd.Fingerprint != "" {
			continue
		}

		fp := fingerprint.FromText(rd.Content)

		if err := s.remote.SetFingerprint(ctx, rd.ID, fp); err != nil {
			return fmt.Errorf("failed to back-fill fingerprint for %s: %w", rd.ID, err)
		}

		local, err := s.store.GetDocumentByFingerprint(ctx, fp)
		if err != nil {
			return err
		}
		if local == nil {
			doc := &models.Document{
				ID:            uuid.NewString(),
				Title:         rd.Title,
				Content:       rd.Content,
				Fingerprint:   fp,
				TotalWords:    rd.TotalWords,
				BookmarkIndex: rd.BookmarkIndex,
				Source:        models.SourceSync,
				CreatedAt:     parseTime(rd.CreatedAt),
				LastReadAt:    parseTime(rd.LastReadAt),
				RemoteID:      rd.ID,
			}
			if err := s.store.SaveDocument(ctx, doc); err != nil {
				return err
			}
			continue
		}

		local.RemoteID = rd.ID
		if rd.BookmarkIndex > local.BookmarkIndex {
			local.BookmarkIndex = rd.BookmarkIndex
			local.LastReadAt = parseTime(rd.LastReadAt)
		}
		if err := s.store.SaveDocument(ctx, local); err != nil {
			return err
		}
	}

	return s.store.MarkRemoteSchemaMigrated(ctx)
}

// pull merges remote metadata into the local store. A remote record without
// a local counterpart becomes a ghost document (metadata only, no text) and
// joins the needs-reupload list. A remote bookmark is adopted only when it
// is strictly ahead of the local one.
func (s *syncService) pull(ctx context.Context, result *SyncResult) error {
	remoteDocs, err := s.remote.ListDocuments(ctx)
	if err != nil {
		return err
	}

	locals, err := s.store.GetAllDocuments(ctx)
	if err != nil {
		return err
	}

	byRemoteID := make(map[string]*models.Document)
	byFingerprint := make(map[string]*models.Document)
	for _, d := range locals {
		if d.RemoteID != "" {
			byRemoteID[d.RemoteID] = d
		}
		if d.Fingerprint != "" {
			byFingerprint[d.Fingerprint] = d
		}
	}

	for _, rd := range remoteDocs {
		local := byRemoteID[rd.ID]
		if local == nil && rd.Fingerprint != "" {
			local = byFingerprint[rd.Fingerprint]
		}

		if local == nil {
			ghost := &models.Document{
				ID:            uuid.NewString(),
				Title:         rd.Title,
				Fingerprint:   rd.Fingerprint,
				TotalWords:    rd.TotalWords,
				BookmarkIndex: rd.BookmarkIndex,
				Source:        models.SourceSync,
				CreatedAt:     parseTime(rd.CreatedAt),
				LastReadAt:    parseTime(rd.LastReadAt),
				RemoteID:      rd.ID,
				IsGhost:       true,
			}
			if err := s.store.SaveDocument(ctx, ghost); err != nil {
				return err
			}
			result.NeedsReupload = append(result.NeedsReupload, ghost)
			result.Pulled++
			continue
		}

		local.RemoteID = rd.ID
		if rd.BookmarkIndex > local.BookmarkIndex {
			local.BookmarkIndex = rd.BookmarkIndex
			local.LastReadAt = parseTime(rd.LastReadAt)
		}
		local.IsGhost = false
		if err := s.store.SaveDocument(ctx, local); err != nil {
			return err
		}
		result.Pulled++
	}

	return nil
}

// push uploads local state: linked documents get their bookmark pushed
// unconditionally (local is authoritative after the pull merge), unlinked
// ones get a remote metadata record created.
func (s *syncService) push(ctx context.Context, result *SyncResult) error {
	locals, err := s.store.GetAllDocuments(ctx)
	if err != nil {
		return err
	}

	for _, d := range locals {
		if err := s.SyncDocument(ctx, d); err != nil {
			return err
		}
		result.Pushed++
	}
	return nil
}

// SyncDocument pushes one document: update-by-link when already linked,
// create-and-link otherwise. Used by the full run and right after a local
// add when signed in.
func (s *syncService) SyncDocument(ctx context.Context, doc *models.Document) error {
	if !s.remote.SignedIn() {
		return nil
	}

	if doc.RemoteID != "" {
		return s.remote.UpdateProgress(ctx, doc.RemoteID, doc.BookmarkIndex, doc.LastReadAt.UTC().Format(time.RFC3339))
	}

	created, err := s.remote.CreateDocument(ctx, &remote.Document{
		Title:         doc.Title,
		Fingerprint:   doc.Fingerprint,
		TotalWords:    doc.TotalWords,
		BookmarkIndex: doc.BookmarkIndex,
		CreatedAt:     doc.CreatedAt.UTC().Format(time.RFC3339),
		LastReadAt:    doc.LastReadAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	doc.RemoteID = created.ID
	return s.store.SaveDocument(ctx, doc)
}

// mergeStats reconciles streak and lifetime aggregates per field, each side
// contributing its higher value independently, then pushes the result.
func (s *syncService) mergeStats(ctx context.Context) error {
	remoteStats, err := s.remote.GetStats(ctx)
	if err != nil {
		return err
	}

	lifetime, err := s.store.GetLifetimeStats(ctx)
	if err != nil {
		return err
	}
	if lifetime == nil {
		lifetime = &models.Lifetime{}
	}
	streak, err := s.store.GetStreak(ctx)
	if err != nil {
		return err
	}
	if streak == nil {
		streak = &models.Streak{}
	}

	if remoteStats != nil {
		lifetime.TotalWordsRead = max(lifetime.TotalWordsRead, remoteStats.TotalWordsRead)
		lifetime.TotalDocumentsCompleted = max(lifetime.TotalDocumentsCompleted, remoteStats.TotalDocumentsCompleted)
		streak.CurrentStreak = max(streak.CurrentStreak, remoteStats.CurrentStreak)
		if remoteStats.LastReadDate > streak.LastReadDate {
			streak.LastReadDate = remoteStats.LastReadDate
		}
		if remoteStats.StreakFreezeActive {
			streak.StreakFreezeActive = true
		}
		if remoteStats.StreakFreezeUsedAt > streak.StreakFreezeUsedAt {
			streak.StreakFreezeUsedAt = remoteStats.StreakFreezeUsedAt
		}
	}

	if err := s.store.SaveLifetimeStats(ctx, lifetime); err != nil {
		return err
	}
	if err := s.store.SaveStreak(ctx, streak); err != nil {
		return err
	}

	return s.remote.SaveStats(ctx, &remote.Stats{
		TotalWordsRead:          lifetime.TotalWordsRead,
		TotalDocumentsCompleted: lifetime.TotalDocumentsCompleted,
		CurrentStreak:           streak.CurrentStreak,
		LastReadDate:            streak.LastReadDate,
		StreakFreezeActive:      streak.StreakFreezeActive,
		StreakFreezeUsedAt:      streak.StreakFreezeUsedAt,
	})
}

// parseTime is lenient: sync peers may send empty or malformed timestamps
// and a zero time is an acceptable stand-in.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
