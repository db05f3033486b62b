package httpapi

import (
	"time"

	"github.com/dkrasnov/flashread/internal/server/models"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r credentialsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
	)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r refreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type documentRequest struct {
	Title         string `json:"title"`
	Fingerprint   string `json:"fingerprint"`
	TotalWords    int    `json:"totalWords"`
	BookmarkIndex int    `json:"bookmarkIndex"`
	LastReadAt    string `json:"lastReadAt"`
}

func (r documentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.TotalWords, validation.Min(0)),
		validation.Field(&r.BookmarkIndex, validation.Min(0)),
	)
}

type progressRequest struct {
	BookmarkIndex int    `json:"bookmarkIndex"`
	LastReadAt    string `json:"lastReadAt"`
}

func (r progressRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookmarkIndex, validation.Min(0)),
	)
}

type fingerprintRequest struct {
	Fingerprint string `json:"fingerprint"`
}

func (r fingerprintRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Fingerprint, validation.Required, validation.Length(64, 64), is.Hexadecimal),
	)
}

type documentResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Fingerprint   string `json:"fingerprint"`
	TotalWords    int    `json:"totalWords"`
	BookmarkIndex int    `json:"bookmarkIndex"`
	CreatedAt     string `json:"createdAt"`
	LastReadAt    string `json:"lastReadAt"`
	Content       string `json:"content,omitempty"`
}

func toDocumentResponse(d *models.Document) documentResponse {
	return documentResponse{
		ID:            d.ID,
		Title:         d.Title,
		Fingerprint:   d.Fingerprint,
		TotalWords:    d.TotalWords,
		BookmarkIndex: d.BookmarkIndex,
		CreatedAt:     d.CreatedAt.UTC().Format(time.RFC3339),
		LastReadAt:    d.LastReadAt.UTC().Format(time.RFC3339),
		Content:       d.Content,
	}
}

type statsPayload struct {
	TotalWordsRead          int    `json:"totalWordsRead"`
	TotalDocumentsCompleted int    `json:"totalDocumentsCompleted"`
	CurrentStreak           int    `json:"currentStreak"`
	LastReadDate            string `json:"lastReadDate"`
	StreakFreezeActive      bool   `json:"streakFreezeActive"`
	StreakFreezeUsedAt      string `json:"streakFreezeUsedAt,omitempty"`
}

type sessionRequest struct {
	DocumentID string `json:"documentId"`
	WordsRead  int    `json:"wordsRead"`
	DurationMs int64  `json:"durationMs"`
	AvgWPM     int    `json:"avgWpm"`
	StartedAt  string `json:"startedAt"`
}

func (r sessionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.WordsRead, validation.Min(0)),
		validation.Field(&r.DurationMs, validation.Min(0)),
		validation.Field(&r.AvgWPM, validation.Min(0)),
	)
}

// parseTimestamp accepts RFC3339 and falls back to the current time so a
// client with a skewed or missing timestamp still syncs.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Now().UTC()
}
