package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cortexhq/cortex/internal/domain"
)

// StatsCache stores the latest progress snapshot per user.
type StatsCache struct {
	db *DB
}

// NewStatsCache creates a SQLite-backed stats cache.
func NewStatsCache(db *DB) *StatsCache {
	return &StatsCache{db: db}
}

// Put replaces the cached snapshot for the stats' user.
func (c *StatsCache) Put(stats *domain.ProgressStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	_, err = c.db.Exec(`
		INSERT INTO progress_stats (user_id, payload, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			payload=excluded.payload, cached_at=excluded.cached_at`,
		stats.UserID, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert stats: %w", err)
	}
	return nil
}

// Latest returns the most recently cached snapshot and when it was
// cached. Returns domain.ErrNotFound when nothing has been cached yet.
func (c *StatsCache) Latest() (*domain.ProgressStats, time.Time, error) {
	row := c.db.QueryRow(`
		SELECT payload, cached_at
		FROM progress_stats ORDER BY cached_at DESC LIMIT 1`)

	var payload string
	var cachedAt time.Time
	if err := row.Scan(&payload, &cachedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, domain.ErrNotFound
		}
		return nil, time.Time{}, fmt.Errorf("get cached stats: %w", err)
	}

	var stats domain.ProgressStats
	if err := json.Unmarshal([]byte(payload), &stats); err != nil {
		return nil, time.Time{}, fmt.Errorf("unmarshal cached stats: %w", err)
	}
	return &stats, cachedAt, nil
}
