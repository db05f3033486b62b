// Package models defines the server-side database records.
package models

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type RefreshToken struct {
	ID        int64
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// Document is the metadata record for a user's text. Content is a legacy
// column: rows created before fingerprinting may still carry text until the
// client's migration back-fills the fingerprint and the content is dropped.
type Document struct {
	ID            string
	UserID        string
	Title         string
	Fingerprint   string
	TotalWords    int
	BookmarkIndex int
	Content       string
	CreatedAt     time.Time
	LastReadAt    time.Time
}

// UserStats is the per-user singleton aggregate mirrored from clients.
type UserStats struct {
	UserID                  string
	CurrentStreak           int
	LastReadDate            string
	StreakFreezeActive      bool
	StreakFreezeUsedAt      string
	TotalWordsRead          int
	TotalDocumentsCompleted int
	UpdatedAt               time.Time
}

// ReadingSession is one append-only session record.
type ReadingSession struct {
	ID         int64
	UserID     string
	DocumentID string
	WordsRead  int
	DurationMs int64
	AvgWPM     int
	StartedAt  time.Time
}
