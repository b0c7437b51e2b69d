package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cortexhq/cortex/internal/domain"
)

// Fetcher is the slice of the API client the review view needs
type Fetcher interface {
	GetResponse(ctx context.Context, id string) (*domain.TaskResponse, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	RequestFeedback(ctx context.Context, responseID string) error
}

// View presents one submitted response alongside its task. The server
// owns the response; the view re-fetches rather than mutates.
type View struct {
	fetcher Fetcher

	mu         sync.Mutex
	response   *domain.TaskResponse
	task       *domain.Task
	requesting bool
}

// NewView creates a review view over the given fetcher
func NewView(fetcher Fetcher) *View {
	return &View{fetcher: fetcher}
}

// Load fetches a response and its parent task
func (v *View) Load(ctx context.Context, responseID string) error {
	resp, err := v.fetcher.GetResponse(ctx, responseID)
	if err != nil {
		return fmt.Errorf("failed to load response: %w", err)
	}

	task, err := v.fetcher.GetTask(ctx, resp.TaskID)
	if err != nil {
		return fmt.Errorf("failed to load task %s: %w", resp.TaskID, err)
	}

	v.mu.Lock()
	v.response = resp
	v.task = task
	v.mu.Unlock()
	return nil
}

// Response returns the loaded response, nil before Load
func (v *View) Response() *domain.TaskResponse {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.response
}

// Task returns the loaded task, nil before Load
func (v *View) Task() *domain.Task {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.task
}

// CooldownRemaining reports the estimated wait before feedback can be
// requested. Display guidance only; the server decides.
func (v *View) CooldownRemaining(now time.Time) time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.response == nil {
		return 0
	}
	return v.response.CooldownRemaining(now)
}

// RequestFeedback asks the server to generate feedback for the loaded
// response. At most one request is in flight; on success the response is
// re-fetched so the feedback appears. A server rejection comes back
// verbatim and leaves the loaded state untouched.
func (v *View) RequestFeedback(ctx context.Context) error {
	v.mu.Lock()
	if v.response == nil {
		v.mu.Unlock()
		return domain.ErrResponseNotFound
	}
	if v.requesting {
		v.mu.Unlock()
		return domain.ErrFeedbackInFlight
	}
	v.requesting = true
	responseID := v.response.ID
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.requesting = false
		v.mu.Unlock()
	}()

	if err := v.fetcher.RequestFeedback(ctx, responseID); err != nil {
		return err
	}

	resp, err := v.fetcher.GetResponse(ctx, responseID)
	if err != nil {
		return fmt.Errorf("feedback generated but refresh failed: %w", err)
	}

	v.mu.Lock()
	v.response = resp
	v.mu.Unlock()
	return nil
}
