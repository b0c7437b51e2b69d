package review

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cortexhq/cortex/internal/domain"
	"github.com/cortexhq/cortex/internal/storage/sqlite"
)

type fakeProgressFetcher struct {
	stats   *domain.ProgressStats
	history []domain.TaskResponse
	tasks   map[string]string
	err     error
}

func (f *fakeProgressFetcher) ProgressStats(context.Context) (*domain.ProgressStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func (f *fakeProgressFetcher) History(context.Context) ([]domain.TaskResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func (f *fakeProgressFetcher) GetTask(_ context.Context, id string) (*domain.Task, error) {
	title, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &domain.Task{ID: id, Title: title}, nil
}

func newCaches(t *testing.T) (*sqlite.HistoryCache, *sqlite.StatsCache) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return sqlite.NewHistoryCache(db), sqlite.NewStatsCache(db)
}

func TestProgressStatsCachesAndFallsBack(t *testing.T) {
	history, stats := newCaches(t)
	fetcher := &fakeProgressFetcher{
		stats: &domain.ProgressStats{UserID: "u1", TotalTasksCompleted: 5},
	}
	p := NewProgress(fetcher, history, stats, nil)

	got, offline, err := p.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if offline {
		t.Error("fresh fetch marked offline")
	}
	if got.TotalTasksCompleted != 5 {
		t.Errorf("TotalTasksCompleted = %d", got.TotalTasksCompleted)
	}

	// Server goes away; the cached snapshot is served
	fetcher.err = errors.New("connection refused")
	got, offline, err = p.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() offline error = %v", err)
	}
	if !offline {
		t.Error("cached result not marked offline")
	}
	if got.TotalTasksCompleted != 5 {
		t.Errorf("cached TotalTasksCompleted = %d", got.TotalTasksCompleted)
	}
}

func TestProgressStatsNoCacheNoFetch(t *testing.T) {
	_, stats := newCaches(t)
	fetcher := &fakeProgressFetcher{err: errors.New("connection refused")}
	p := NewProgress(fetcher, nil, stats, nil)

	if _, _, err := p.Stats(context.Background()); err == nil {
		t.Fatal("Stats() expected error with empty cache")
	}
}

func TestProgressHistoryResolvesTitlesAndFallsBack(t *testing.T) {
	historyCache, statsCache := newCaches(t)
	fetcher := &fakeProgressFetcher{
		history: []domain.TaskResponse{
			{ID: "r1", TaskID: "t1", SubmittedAt: time.Now().Add(-time.Hour)},
			{ID: "r2", TaskID: "t2", SubmittedAt: time.Now()},
		},
		tasks: map[string]string{"t1": "Design a URL shortener"},
	}
	p := NewProgress(fetcher, historyCache, statsCache, nil)

	entries, offline, err := p.History(context.Background())
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if offline {
		t.Error("fresh fetch marked offline")
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}

	byID := map[string]sqlite.CachedResponse{}
	for _, e := range entries {
		byID[e.ID] = e
	}
	if byID["r1"].TaskTitle != "Design a URL shortener" {
		t.Errorf("r1 title = %q", byID["r1"].TaskTitle)
	}
	// t2 has no resolvable title; entry still present
	if byID["r2"].TaskTitle != "" {
		t.Errorf("r2 title = %q, want empty", byID["r2"].TaskTitle)
	}

	// Offline: cache serves, newest first
	fetcher.err = errors.New("connection refused")
	entries, offline, err = p.History(context.Background())
	if err != nil {
		t.Fatalf("History() offline error = %v", err)
	}
	if !offline {
		t.Error("cached result not marked offline")
	}
	if len(entries) != 2 || entries[0].ID != "r2" {
		t.Errorf("cached entries = %+v", entries)
	}
}
