package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dkrasnov/flashread/internal/client/models"
	"github.com/dkrasnov/flashread/internal/common"
	"github.com/dkrasnov/flashread/internal/fingerprint"
	"github.com/dkrasnov/flashread/internal/textparse"
	"github.com/google/uuid"
)

// addFile imports a plain-text file as a new document.
func (a *App) addFile(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Enter path to a text file", os.Stdout)
	if err != nil {
		return err
	}

	content, err := textparse.ReadFile(path)
	if err != nil {
		fmt.Println("Cannot add file:", err)
		return err
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return a.addDocument(ctx, title, content, models.SourceUpload)
}

// addPaste imports pasted text as a new document.
func (a *App) addPaste(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}

	content, err := GetMultiline(a.reader, "Paste the text", os.Stdout)
	if err != nil {
		return err
	}

	return a.addDocument(ctx, title, content, models.SourcePaste)
}

func (a *App) addDocument(ctx context.Context, title, content string, source models.Source) error {
	words := textparse.Words(content)
	if len(words) == 0 {
		fmt.Println("Cannot add an empty document")
		return common.ErrorEmptyDocument
	}

	fp := fingerprint.FromWords(words)

	// The same text re-added resumes the existing record instead of
	// duplicating it. Ghosts get their content restored here.
	if existing, err := a.store.GetDocumentByFingerprint(ctx, fp); err != nil {
		return err
	} else if existing != nil {
		if existing.IsGhost {
			existing.Content = content
			existing.IsGhost = false
			if err := a.store.SaveDocument(ctx, existing); err != nil {
				return err
			}
			fmt.Printf("Restored text for %q, resuming at word %d\n", existing.Title, existing.BookmarkIndex)
			return nil
		}
		fmt.Printf("Already in the library as %q (word %d of %d)\n", existing.Title, existing.BookmarkIndex, existing.TotalWords)
		return nil
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:          uuid.NewString(),
		Title:       title,
		Content:     content,
		Fingerprint: fp,
		TotalWords:  len(words),
		Source:      source,
		CreatedAt:   now,
		LastReadAt:  now,
	}

	if err := a.store.SaveDocument(ctx, doc); err != nil {
		fmt.Println("Saving error:", err)
		return err
	}

	stats := textparse.GetStatistics(words)
	fmt.Printf("Added %q: %d words, ~%s at %d wpm\n",
		title, stats.WordCount, textparse.EstimateReadingTime(stats.WordCount, a.config.WPM), a.config.WPM)

	if a.isLoggedIn() {
		if err := a.syncService.SyncDocument(ctx, doc); err != nil {
			fmt.Println("Warning: could not push to server:", err)
		}
	}
	return nil
}
