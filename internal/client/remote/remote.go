// Package remote is the client side of the sync protocol. The backend only
// ever stores document metadata (title, fingerprint, counts, bookmark), never
// document text, so everything here is metadata-shaped by construction.
package remote

import "context"

// Document is the metadata-only remote representation of a document.
// Content is populated by the backend only for legacy rows that predate
// fingerprinting and still carry text; the one-time migration drains it.
type Document struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Fingerprint   string `json:"fingerprint"`
	TotalWords    int    `json:"totalWords"`
	BookmarkIndex int    `json:"bookmarkIndex"`
	CreatedAt     string `json:"createdAt"`
	LastReadAt    string `json:"lastReadAt"`
	Content       string `json:"content,omitempty"`
}

// Stats is the remote copy of the lifetime aggregate and streak.
type Stats struct {
	TotalWordsRead          int    `json:"totalWordsRead"`
	TotalDocumentsCompleted int    `json:"totalDocumentsCompleted"`
	CurrentStreak           int    `json:"currentStreak"`
	LastReadDate            string `json:"lastReadDate"`
	StreakFreezeActive      bool   `json:"streakFreezeActive"`
	StreakFreezeUsedAt      string `json:"streakFreezeUsedAt,omitempty"`
}

// Session is one finished reading session reported for server-side history.
type Session struct {
	DocumentID string `json:"documentId,omitempty"`
	WordsRead  int    `json:"wordsRead"`
	DurationMs int64  `json:"durationMs"`
	AvgWPM     int    `json:"avgWpm"`
	StartedAt  string `json:"startedAt"`
}

// Client is what the sync layer needs from a backend.
type Client interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) error
	Logout()
	SignedIn() bool

	Ping(ctx context.Context) error

	ListDocuments(ctx context.Context) ([]*Document, error)
	CreateDocument(ctx context.Context, doc *Document) (*Document, error)
	UpdateProgress(ctx context.Context, remoteID string, bookmarkIndex int, lastReadAt string) error
	SetFingerprint(ctx context.Context, remoteID string, fingerprint string) error
	DeleteDocument(ctx context.Context, remoteID string) error

	GetStats(ctx context.Context) (*Stats, error)
	SaveStats(ctx context.Context, stats *Stats) error
	SaveSession(ctx context.Context, session *Session) error
}
