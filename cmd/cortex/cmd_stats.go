package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cortexhq/cortex/internal/review"
	"github.com/cortexhq/cortex/internal/storage/sqlite"
)

func (a *app) progressView() (*review.Progress, func()) {
	db, err := a.openCache()
	if err != nil {
		// Cache problems degrade to online-only
		slog.Warn("offline cache unavailable", "error", err)
		return review.NewProgress(a.client, nil, nil, nil), func() {}
	}
	p := review.NewProgress(a.client, sqlite.NewHistoryCache(db), sqlite.NewStatsCache(db), nil)
	return p, func() { db.Close() }
}

// cmdStats shows the progress dashboard
func cmdStats() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	p, cleanup := a.progressView()
	defer cleanup()

	stats, offline, err := p.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Println("Progress")
	fmt.Println("========")
	if offline {
		fmt.Println("(offline: showing cached data)")
	}
	fmt.Printf("Tasks completed: %d\n", stats.TotalTasksCompleted)
	fmt.Printf("Current streak:  %d day(s)\n", stats.CurrentStreak)
	fmt.Printf("Longest streak:  %d day(s)\n", stats.LongestStreak)
	fmt.Printf("Average score:   %.1f/10\n", stats.AverageScore)
	if stats.LastActivityDate != "" {
		fmt.Printf("Last active:     %s\n", stats.LastActivityDate)
	}
	return nil
}

// cmdHistory lists past submissions, newest first
func cmdHistory() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	p, cleanup := a.progressView()
	defer cleanup()

	entries, offline, err := p.History(context.Background())
	if err != nil {
		return err
	}

	if offline {
		fmt.Println("(offline: showing cached data)")
	}
	if len(entries) == 0 {
		fmt.Println("No submissions yet.")
		return nil
	}

	for _, e := range entries {
		title := e.TaskTitle
		if title == "" {
			title = e.TaskID
		}
		feedback := " "
		if e.HasFeedback() {
			feedback = "✓"
		}
		fmt.Printf("  %s  %s  %-40s %.1f  feedback:%s\n",
			e.ID, e.SubmittedAt.Local().Format("2006-01-02"), truncate(title, 40), e.Score, feedback)
	}
	fmt.Printf("\n%d submission(s). 'cortex response show <id>' for details.\n", len(entries))
	return nil
}

// cmdConfig prints the effective configuration
func cmdConfig() error {
	a, err := newApp()
	if err != nil {
		return err
	}

	fmt.Println("Configuration")
	fmt.Println("=============")
	fmt.Printf("API base URL:     %s\n", a.cfg.APIBaseURL)
	fmt.Printf("Timeout:          %ds\n", a.cfg.TimeoutSeconds)
	fmt.Printf("State directory:  %s\n", a.dir)
	fmt.Printf("Render debounce:  %dms\n", a.local.Editor.RenderDebounceMs)
	fmt.Printf("Export debounce:  %dms\n", a.local.Editor.ExportDebounceMs)
	fmt.Printf("Preview:          %s:%d\n", a.local.Preview.Bind, a.local.Preview.Port)

	if email := a.sessions.Email(); email != "" {
		fmt.Printf("Signed in as:     %s\n", email)
	} else {
		fmt.Println("Signed in as:     (not signed in)")
	}
	return nil
}
