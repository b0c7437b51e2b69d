package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cortexhq/cortex/internal/api"
	"github.com/cortexhq/cortex/internal/domain"
)

type fakeFetcher struct {
	mu           sync.Mutex
	response     domain.TaskResponse
	task         domain.Task
	feedbackErr  error
	feedbackHits int
	getHits      int
	block        chan struct{}
	entered      chan struct{}
	enterOnce    sync.Once
}

func (f *fakeFetcher) GetResponse(context.Context, string) (*domain.TaskResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getHits++
	resp := f.response
	return &resp, nil
}

func (f *fakeFetcher) GetTask(context.Context, string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := f.task
	return &task, nil
}

func (f *fakeFetcher) RequestFeedback(context.Context, string) error {
	if f.entered != nil {
		f.enterOnce.Do(func() { close(f.entered) })
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedbackHits++
	if f.feedbackErr != nil {
		return f.feedbackErr
	}
	f.response.AIFeedback = "Consider the cache invalidation path."
	return nil
}

func newLoadedView(t *testing.T, f *fakeFetcher) *View {
	t.Helper()
	v := NewView(f)
	if err := v.Load(context.Background(), f.response.ID); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return v
}

func testFetcher() *fakeFetcher {
	return &fakeFetcher{
		response: domain.TaskResponse{
			ID:          "r1",
			TaskID:      "t1",
			SubmittedAt: time.Now().Add(-time.Minute),
		},
		task: domain.Task{ID: "t1", Title: "Design a rate limiter"},
	}
}

func TestViewLoad(t *testing.T) {
	v := newLoadedView(t, testFetcher())

	if v.Response() == nil || v.Response().ID != "r1" {
		t.Errorf("Response() = %+v", v.Response())
	}
	if v.Task() == nil || v.Task().Title != "Design a rate limiter" {
		t.Errorf("Task() = %+v", v.Task())
	}
}

func TestViewCooldownRemaining(t *testing.T) {
	f := testFetcher()
	v := newLoadedView(t, f)

	// One minute in: four minutes left of the five-minute cooldown
	got := v.CooldownRemaining(f.response.SubmittedAt.Add(time.Minute))
	if got != 4*time.Minute {
		t.Errorf("CooldownRemaining() = %v, want 4m", got)
	}

	if got := v.CooldownRemaining(f.response.SubmittedAt.Add(time.Hour)); got != 0 {
		t.Errorf("CooldownRemaining() after elapse = %v, want 0", got)
	}
}

func TestViewRequestFeedbackRefetches(t *testing.T) {
	f := testFetcher()
	v := newLoadedView(t, f)

	if err := v.RequestFeedback(context.Background()); err != nil {
		t.Fatalf("RequestFeedback() error = %v", err)
	}
	if !v.Response().HasFeedback() {
		t.Error("feedback missing after successful request")
	}
}

func TestViewRequestFeedbackCooldownRejection(t *testing.T) {
	f := testFetcher()
	f.feedbackErr = &api.Error{Status: 425, Detail: "Retry after cooldown"}
	v := newLoadedView(t, f)

	err := v.RequestFeedback(context.Background())
	if err == nil {
		t.Fatal("RequestFeedback() expected error")
	}
	// The server's wording travels through untouched
	if err.Error() != "Retry after cooldown" {
		t.Errorf("error = %q, want server detail verbatim", err.Error())
	}
	if v.Response().HasFeedback() {
		t.Error("rejection mutated the loaded response")
	}
}

func TestViewRequestFeedbackSingleFlight(t *testing.T) {
	f := testFetcher()
	f.block = make(chan struct{})
	f.entered = make(chan struct{})
	v := newLoadedView(t, f)

	done := make(chan error, 1)
	go func() { done <- v.RequestFeedback(context.Background()) }()

	select {
	case <-f.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never started")
	}

	if err := v.RequestFeedback(context.Background()); !errors.Is(err, domain.ErrFeedbackInFlight) {
		t.Errorf("concurrent RequestFeedback() error = %v, want ErrFeedbackInFlight", err)
	}

	close(f.block)
	if err := <-done; err != nil {
		t.Fatalf("first RequestFeedback() error = %v", err)
	}
	if f.feedbackHits != 1 {
		t.Errorf("feedback POSTs = %d, want 1", f.feedbackHits)
	}
}

func TestViewRequestFeedbackBeforeLoad(t *testing.T) {
	v := NewView(testFetcher())
	if err := v.RequestFeedback(context.Background()); !errors.Is(err, domain.ErrResponseNotFound) {
		t.Errorf("RequestFeedback() error = %v, want ErrResponseNotFound", err)
	}
}
