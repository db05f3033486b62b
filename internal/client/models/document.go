// Package models defines client-side data models persisted in the local
// store and exchanged with the metadata server.
package models

import "time"

// Source tags where a document came from.
type Source string

const (
	SourceUpload Source = "upload"
	SourcePaste  Source = "paste"
	SourceSync   Source = "sync"
)

// Document is the authoritative local record of a text. Content lives only
// here; the metadata server never sees it.
type Document struct {
	// ID is the locally generated primary key.
	ID string `json:"id"`

	// Title is the display name.
	Title string `json:"title"`

	// Content is the full text. Empty for ghost documents.
	Content string `json:"content"`

	// Fingerprint is the content-derived hash used to match the same
	// document across devices and storage tiers.
	Fingerprint string `json:"fingerprint"`

	// TotalWords is the word count computed at creation.
	TotalWords int `json:"totalWords"`

	// BookmarkIndex is the last-read word position in [0, TotalWords].
	BookmarkIndex int `json:"bookmarkIndex"`

	// Source records provenance: upload, paste or sync.
	Source Source `json:"source"`

	CreatedAt  time.Time `json:"createdAt"`
	LastReadAt time.Time `json:"lastReadAt"`

	// RemoteID links to the metadata server record. Empty means the
	// document has not been pushed yet.
	RemoteID string `json:"remoteId,omitempty"`

	// IsGhost marks a record materialized from remote metadata with no
	// local content; reading can resume once the user re-supplies the file.
	IsGhost bool `json:"isGhost,omitempty"`
}
