package cli

import (
	"context"
	"fmt"
)

func (a *App) delete(ctx context.Context) error {
	doc, err := a.pickDocument(ctx, "Enter the number of the document to delete")
	if err != nil || doc == nil {
		return err
	}

	if doc.RemoteID != "" && a.isLoggedIn() {
		if err := a.remote.DeleteDocument(ctx, doc.RemoteID); err != nil {
			fmt.Println("Warning: could not delete on server:", err)
		}
	}

	if err := a.store.DeleteDocument(ctx, doc.ID); err != nil {
		fmt.Println("Error deleting document:", err)
		return err
	}

	fmt.Printf("Deleted %q\n", doc.Title)
	return nil
}
