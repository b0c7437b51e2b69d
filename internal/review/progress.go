package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cortexhq/cortex/internal/domain"
	"github.com/cortexhq/cortex/internal/storage/sqlite"
)

// ProgressFetcher is the slice of the API client the progress view needs
type ProgressFetcher interface {
	ProgressStats(ctx context.Context) (*domain.ProgressStats, error)
	History(ctx context.Context) ([]domain.TaskResponse, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
}

// Progress serves the stats dashboard and submission history, falling
// back to the local cache when the server is unreachable. Cache writes
// are best-effort; a cache failure never hides fresh server data.
type Progress struct {
	fetcher ProgressFetcher
	history *sqlite.HistoryCache
	stats   *sqlite.StatsCache
	logger  *slog.Logger
}

// NewProgress creates a progress view. The caches may be nil, in which
// case offline fallback is disabled.
func NewProgress(fetcher ProgressFetcher, history *sqlite.HistoryCache, stats *sqlite.StatsCache, logger *slog.Logger) *Progress {
	if logger == nil {
		logger = slog.Default()
	}
	return &Progress{fetcher: fetcher, history: history, stats: stats, logger: logger}
}

// Stats fetches progress statistics. offline reports whether the result
// came from the local cache because the fetch failed.
func (p *Progress) Stats(ctx context.Context) (stats *domain.ProgressStats, offline bool, err error) {
	stats, err = p.fetcher.ProgressStats(ctx)
	if err == nil {
		if p.stats != nil {
			if cacheErr := p.stats.Put(stats); cacheErr != nil {
				p.logger.Warn("failed to cache stats", "error", cacheErr)
			}
		}
		return stats, false, nil
	}

	if p.stats == nil {
		return nil, false, err
	}
	cached, _, cacheErr := p.stats.Latest()
	if cacheErr != nil {
		return nil, false, fmt.Errorf("fetch failed and no cached stats: %w", err)
	}
	p.logger.Warn("serving cached stats", "fetch_error", err)
	return cached, true, nil
}

// History fetches the submission history, newest first, resolving task
// titles for display. offline reports a cache-served result.
func (p *Progress) History(ctx context.Context) (entries []sqlite.CachedResponse, offline bool, err error) {
	responses, err := p.fetcher.History(ctx)
	if err != nil {
		if p.history == nil {
			return nil, false, err
		}
		cached, cacheErr := p.history.List()
		if cacheErr != nil || len(cached) == 0 {
			return nil, false, fmt.Errorf("fetch failed and no cached history: %w", err)
		}
		p.logger.Warn("serving cached history", "fetch_error", err)
		return cached, true, nil
	}

	titles := p.resolveTitles(ctx, responses)

	if p.history != nil {
		if cacheErr := p.history.Replace(responses, titles); cacheErr != nil {
			p.logger.Warn("failed to cache history", "error", cacheErr)
		}
	}

	entries = make([]sqlite.CachedResponse, 0, len(responses))
	for _, r := range responses {
		entries = append(entries, sqlite.CachedResponse{TaskResponse: r, TaskTitle: titles[r.TaskID]})
	}
	return entries, false, nil
}

// resolveTitles looks up each distinct task once. Failures leave the
// title blank; the list still renders.
func (p *Progress) resolveTitles(ctx context.Context, responses []domain.TaskResponse) map[string]string {
	titles := map[string]string{}
	for _, r := range responses {
		if _, seen := titles[r.TaskID]; seen {
			continue
		}
		titles[r.TaskID] = ""
		task, err := p.fetcher.GetTask(ctx, r.TaskID)
		if err != nil {
			p.logger.Debug("failed to resolve task title", "task_id", r.TaskID, "error", err)
			continue
		}
		titles[r.TaskID] = task.Title
	}
	return titles
}
