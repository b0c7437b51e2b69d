package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cortexhq/cortex/internal/domain"
)

// CachedResponse is a history row together with its task title, which is
// denormalized into the cache so the list renders without extra fetches.
type CachedResponse struct {
	domain.TaskResponse
	TaskTitle string
}

// HistoryCache keeps the user's submission history available offline.
// It is refreshed on every successful fetch and read back when the
// network is unavailable.
type HistoryCache struct {
	db *DB
}

// NewHistoryCache creates a SQLite-backed history cache.
func NewHistoryCache(db *DB) *HistoryCache {
	return &HistoryCache{db: db}
}

// Replace swaps the cached history for a fresh server snapshot. titles
// maps task IDs to their titles; missing entries keep the previously
// cached title.
func (c *HistoryCache) Replace(responses []domain.TaskResponse, titles map[string]string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin history replace: %w", err)
	}
	defer tx.Rollback()

	prevTitles := map[string]string{}
	rows, err := tx.Query("SELECT task_id, task_title FROM response_history WHERE task_title != ''")
	if err != nil {
		return fmt.Errorf("read cached titles: %w", err)
	}
	for rows.Next() {
		var taskID, title string
		if err := rows.Scan(&taskID, &title); err != nil {
			rows.Close()
			return fmt.Errorf("scan cached title: %w", err)
		}
		prevTitles[taskID] = title
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read cached titles: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM response_history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	now := time.Now().UTC()
	for _, r := range responses {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal response %s: %w", r.ID, err)
		}

		title := titles[r.TaskID]
		if title == "" {
			title = prevTitles[r.TaskID]
		}

		_, err = tx.Exec(`
			INSERT INTO response_history (id, task_id, task_title, score, has_feedback, submitted_at, payload, cached_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.TaskID, title, r.Score, boolToInt(r.HasFeedback()),
			r.SubmittedAt, string(payload), now,
		)
		if err != nil {
			return fmt.Errorf("insert response %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// List returns the cached history, newest submission first.
func (c *HistoryCache) List() ([]CachedResponse, error) {
	rows, err := c.db.Query(`
		SELECT task_title, payload
		FROM response_history ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []CachedResponse
	for rows.Next() {
		var title, payload string
		if err := rows.Scan(&title, &payload); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		var resp domain.TaskResponse
		if err := json.Unmarshal([]byte(payload), &resp); err != nil {
			return nil, fmt.Errorf("unmarshal cached response: %w", err)
		}
		out = append(out, CachedResponse{TaskResponse: resp, TaskTitle: title})
	}
	return out, rows.Err()
}

// Get retrieves one cached response by ID.
func (c *HistoryCache) Get(id string) (*CachedResponse, error) {
	row := c.db.QueryRow("SELECT task_title, payload FROM response_history WHERE id = ?", id)

	var title, payload string
	if err := row.Scan(&title, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrResponseNotFound
		}
		return nil, fmt.Errorf("get cached response: %w", err)
	}

	var resp domain.TaskResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal cached response: %w", err)
	}
	return &CachedResponse{TaskResponse: resp, TaskTitle: title}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
