package cli

import (
	"context"
	"fmt"
)

func (a *App) stats(ctx context.Context) error {
	stats, err := a.statsService.GetDisplayStats(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}

	fmt.Printf("Streak: %d day(s)", stats.CurrentStreak)
	if stats.StreakFreezeActive {
		fmt.Print("  (freeze armed)")
	}
	fmt.Println()
	fmt.Printf("Today: %d words\n", stats.TodayWordsRead)
	fmt.Printf("Last 7 days: %d wpm average\n", stats.AvgWPM7Day)
	fmt.Printf("Lifetime: %d words, %d documents completed\n", stats.TotalWordsRead, stats.TotalDocumentsCompleted)
	return nil
}

// freeze arms the one-time grace that preserves the streak over a single
// missed day.
func (a *App) freeze(ctx context.Context) error {
	streak, err := a.store.ActivateStreakFreeze(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return err
	}
	if streak != nil {
		fmt.Println("Streak freeze armed: one missed day will not break the streak.")
	}
	return nil
}
