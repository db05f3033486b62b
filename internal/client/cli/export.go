package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dkrasnov/flashread/internal/client/models"
)

func (a *App) export(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Enter path for the backup file", os.Stdout)
	if err != nil {
		return err
	}

	backup, err := a.store.ExportAll(ctx)
	if err != nil {
		fmt.Println("Export failed:", err)
		return err
	}

	raw, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		fmt.Println("Export failed:", err)
		return err
	}

	fmt.Printf("Exported %d documents and %d days of stats to %s\n", len(backup.Documents), len(backup.Stats), path)
	return nil
}

func (a *App) importBackup(ctx context.Context) error {
	path, err := GetSimpleText(a.reader, "Enter path of the backup file", os.Stdout)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Import failed:", err)
		return err
	}

	var backup models.Backup
	if err := json.Unmarshal(raw, &backup); err != nil {
		fmt.Println("Import failed: not a valid backup file:", err)
		return err
	}

	if err := a.store.ImportAll(ctx, &backup); err != nil {
		fmt.Println("Import failed:", err)
		return err
	}

	fmt.Printf("Imported %d documents and %d days of stats\n", len(backup.Documents), len(backup.Stats))
	return nil
}
