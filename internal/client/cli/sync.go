package cli

import (
	"context"
	"fmt"
)

func (a *App) sync(ctx context.Context) {
	if !a.isLoggedIn() {
		fmt.Println("Sign in first to sync")
		return
	}

	result, err := a.syncService.Sync(ctx)
	if err != nil {
		fmt.Println("Sync failed:", err)
		return
	}

	fmt.Printf("Sync done: %d pulled, %d pushed\n", result.Pulled, result.Pushed)

	if len(result.NeedsReupload) > 0 {
		fmt.Println("These documents exist on other devices but their text is not on this one.")
		fmt.Println("Use 'addfile' or 'paste' with the original text to resume reading:")
		for _, d := range result.NeedsReupload {
			fmt.Printf("  - %s (%d words)\n", d.Title, d.TotalWords)
		}
	}
}
