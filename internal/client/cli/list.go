package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dkrasnov/flashread/internal/client/models"
)

func (a *App) list(ctx context.Context) error {
	docs, err := a.store.GetAllDocuments(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}

	if len(docs) == 0 {
		fmt.Println("The library is empty. Use 'addfile' or 'paste' to add a document.")
		return nil
	}

	for i, d := range docs {
		fmt.Printf("%3d. %s\n", i+1, describe(d))
	}
	return nil
}

func describe(d *models.Document) string {
	s := fmt.Sprintf("%s  (word %d of %d", d.Title, d.BookmarkIndex, d.TotalWords)
	if d.TotalWords > 0 {
		s += fmt.Sprintf(", %d%%", d.BookmarkIndex*100/d.TotalWords)
	}
	s += ")"
	if d.IsGhost {
		s += "  [needs re-upload]"
	}
	if d.RemoteID != "" {
		s += "  [synced]"
	}
	return s
}

// pickDocument resolves a 1-based list position entered by the user.
func (a *App) pickDocument(ctx context.Context, prompt string) (*models.Document, error) {
	if err := a.list(ctx); err != nil {
		return nil, err
	}

	docs, err := a.store.GetAllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	answer, err := GetSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return nil, err
	}

	var n int
	if _, err := fmt.Sscanf(answer, "%d", &n); err != nil || n < 1 || n > len(docs) {
		fmt.Println("No such document")
		return nil, nil
	}
	return docs[n-1], nil
}
