package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cortexhq/cortex/internal/api"
	"github.com/cortexhq/cortex/internal/domain"
	"github.com/cortexhq/cortex/internal/storage/local"
)

type fakeSubmitter struct {
	mu        sync.Mutex
	requests  []api.CreateResponseRequest
	err       error
	block     chan struct{} // when set, CreateResponse waits on it
	entered   chan struct{}
	enterOnce sync.Once
}

func (f *fakeSubmitter) CreateResponse(_ context.Context, req api.CreateResponseRequest) (*domain.TaskResponse, error) {
	if f.entered != nil {
		f.enterOnce.Do(func() { close(f.entered) })
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.TaskResponse{ID: "resp-1", TaskID: req.TaskID}, nil
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeSubmitter) last() api.CreateResponseRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeFlusher struct {
	mu     sync.Mutex
	calls  int
	onCall func()
}

func (f *fakeFlusher) Flush() {
	f.mu.Lock()
	f.calls++
	fn := f.onCall
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func newTestStore(t *testing.T) *local.Store {
	t.Helper()
	store, err := local.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestWorkspaceSectionsUnordered(t *testing.T) {
	w := Open("task-1", newTestStore(t), &fakeSubmitter{})

	if w.Active() != SectionAssumptions {
		t.Errorf("initial section = %v, want assumptions", w.Active())
	}

	// Jump straight to the last tab, then back to the second
	w.SetActive(SectionFailureModes)
	if w.Active() != SectionFailureModes {
		t.Errorf("Active() = %v, want failure-modes", w.Active())
	}
	w.SetActive(SectionArchitecture)
	if w.Active() != SectionArchitecture {
		t.Errorf("Active() = %v, want architecture", w.Active())
	}
}

func TestWorkspaceSetSection(t *testing.T) {
	w := Open("task-1", newTestStore(t), &fakeSubmitter{})

	if err := w.SetSection(SectionAssumptions, "assume X"); err != nil {
		t.Fatalf("SetSection() error = %v", err)
	}
	if got := w.Section(SectionAssumptions); got != "assume X" {
		t.Errorf("Section() = %q, want %q", got, "assume X")
	}

	if err := w.SetSection(SectionArchitecture, "text"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("SetSection(architecture) error = %v, want ErrInvalidInput", err)
	}
	if err := w.SetSection("bogus", "text"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("SetSection(bogus) error = %v, want ErrInvalidInput", err)
	}
}

func TestWorkspaceModeExclusivity(t *testing.T) {
	w := Open("task-1", newTestStore(t), &fakeSubmitter{})

	w.UseDiagramText("graph TD\n  A --> B")
	d := w.Diagram()
	if d.Text() == "" || d.SceneJSON() != "" {
		t.Errorf("text mode payload: text=%q scene=%q", d.Text(), d.SceneJSON())
	}

	w.UseScene(`{"elements":[]}`, "data:image/png;base64,xxx")
	d = w.Diagram()
	if d.SceneJSON() == "" || d.Text() != "" {
		t.Errorf("scene mode payload: text=%q scene=%q", d.Text(), d.SceneJSON())
	}

	// Switching back discards the scene
	w.UseDiagramText("graph LR\n  C --> D")
	d = w.Diagram()
	if d.SceneJSON() != "" || d.RasterURI() != "" {
		t.Errorf("scene state survived mode switch: scene=%q raster=%q", d.SceneJSON(), d.RasterURI())
	}
}

func TestWorkspaceDraftRoundTrip(t *testing.T) {
	store := newTestStore(t)
	sub := &fakeSubmitter{}

	w := Open("task-1", store, sub)
	w.SetSection(SectionAssumptions, "read-heavy workload")
	w.UseDiagramText("graph TD\n  A --> B")
	if err := w.SaveDraft(); err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}

	restored := Open("task-1", store, sub)
	if got := restored.Section(SectionAssumptions); got != "read-heavy workload" {
		t.Errorf("restored assumptions = %q", got)
	}
	if got := restored.Diagram().Text(); got != "graph TD\n  A --> B" {
		t.Errorf("restored diagram text = %q", got)
	}
}

func TestWorkspaceMalformedDraftStartsFresh(t *testing.T) {
	dir := t.TempDir()
	store, err := local.NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, collectionDrafts), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, collectionDrafts, "task-1.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	w := Open("task-1", store, &fakeSubmitter{})
	if got := w.Section(SectionAssumptions); got != "" {
		t.Errorf("assumptions = %q, want empty after corrupt draft", got)
	}
	if !w.Diagram().IsEmpty() {
		t.Error("diagram not empty after corrupt draft")
	}
}

func TestWorkspaceAutosaveDebounced(t *testing.T) {
	store := newTestStore(t)
	w := Open("task-1", store, &fakeSubmitter{}, WithSaveDebounce(20*time.Millisecond))

	w.SetSection(SectionTradeOffs, "v1")
	w.SetSection(SectionTradeOffs, "v2")

	deadline := time.Now().Add(2 * time.Second)
	for !store.Exists(collectionDrafts, "task-1") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	var draft Draft
	if err := store.Load(collectionDrafts, "task-1", &draft); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if draft.TradeOffs != "v2" {
		t.Errorf("autosaved trade-offs = %q, want v2", draft.TradeOffs)
	}
}

func TestWorkspaceSubmitScenario(t *testing.T) {
	sub := &fakeSubmitter{}
	w := Open("task-1", newTestStore(t), sub)

	w.SetSection(SectionAssumptions, "traffic is bursty")
	w.UseDiagramText("graph TD\n  A --> B")
	// trade-offs and failure-modes left blank on purpose

	id, err := w.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if id != "resp-1" {
		t.Errorf("Submit() id = %q, want resp-1", id)
	}

	req := sub.last()
	if req.TaskID != "task-1" {
		t.Errorf("TaskID = %q", req.TaskID)
	}
	if req.Assumptions != "traffic is bursty" {
		t.Errorf("Assumptions = %q", req.Assumptions)
	}
	if req.Architecture != "graph TD\n  A --> B" {
		t.Errorf("Architecture = %q", req.Architecture)
	}
	if req.ArchitectureData != "" || req.ArchitectureImage != "" {
		t.Errorf("scene fields populated in text mode: data=%q image=%q", req.ArchitectureData, req.ArchitectureImage)
	}
	if req.TradeOffs != "" || req.FailureScenarios != "" {
		t.Errorf("blank sections altered: trade=%q fail=%q", req.TradeOffs, req.FailureScenarios)
	}
}

func TestWorkspaceSubmitSceneDefaultsArchitectureText(t *testing.T) {
	sub := &fakeSubmitter{}
	w := Open("task-1", newTestStore(t), sub)

	w.UseScene(`{"elements":[{"id":"e1"}]}`, "data:image/png;base64,abc")

	if _, err := w.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	req := sub.last()
	if req.Architecture != "Visual Architecture Submitted" {
		t.Errorf("Architecture = %q, want default scene text", req.Architecture)
	}
	if req.ArchitectureData != `{"elements":[{"id":"e1"}]}` {
		t.Errorf("ArchitectureData = %q", req.ArchitectureData)
	}
	if req.ArchitectureImage != "data:image/png;base64,abc" {
		t.Errorf("ArchitectureImage = %q", req.ArchitectureImage)
	}
}

func TestWorkspaceSubmitFlushesCanvasFirst(t *testing.T) {
	sub := &fakeSubmitter{}
	w := Open("task-1", newTestStore(t), sub)

	flusher := &fakeFlusher{}
	flusher.onCall = func() {
		// The adapter's pending export lands during the flush, before
		// the request bundle is built
		w.UseScene(`{"elements":["late"]}`, "")
	}
	w.AttachCanvas(flusher)

	if _, err := w.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if flusher.calls != 1 {
		t.Errorf("Flush() calls = %d, want 1", flusher.calls)
	}
	if got := sub.last().ArchitectureData; got != `{"elements":["late"]}` {
		t.Errorf("ArchitectureData = %q, want late-flushed scene", got)
	}
}

func TestWorkspaceSubmitSingleFlight(t *testing.T) {
	sub := &fakeSubmitter{block: make(chan struct{}), entered: make(chan struct{})}
	w := Open("task-1", newTestStore(t), sub)
	w.SetSection(SectionAssumptions, "only once")

	firstDone := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		firstDone <- err
	}()

	// Wait until the first submission is holding the guard
	select {
	case <-sub.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never started")
	}

	if _, err := w.Submit(context.Background()); !errors.Is(err, domain.ErrSubmitInFlight) {
		t.Errorf("second Submit() error = %v, want ErrSubmitInFlight", err)
	}

	close(sub.block)
	if err := <-firstDone; err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if got := sub.count(); got != 1 {
		t.Errorf("POST count = %d, want 1", got)
	}
}

func TestWorkspaceSubmitClearsDraftDespiteLateFlush(t *testing.T) {
	store := newTestStore(t)
	sub := &fakeSubmitter{}
	w := Open("task-1", store, sub, WithSaveDebounce(20*time.Millisecond))

	w.SetSection(SectionAssumptions, "about to submit")
	if err := w.SaveDraft(); err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}

	// The canvas adapter delivers its pending export during the flush,
	// which would normally arm a fresh autosave
	flusher := &fakeFlusher{}
	flusher.onCall = func() {
		w.UseScene(`{"elements":[]}`, "data:image/png;base64,abc")
	}
	w.AttachCanvas(flusher)

	if _, err := w.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if store.Exists(collectionDrafts, "task-1") {
		t.Fatal("draft not cleared after successful submission")
	}

	// Wait out the save debounce: the autosave armed by the flush must
	// not write the submitted content back
	time.Sleep(60 * time.Millisecond)
	if store.Exists(collectionDrafts, "task-1") {
		t.Error("submitted draft reappeared after save debounce")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if store.Exists(collectionDrafts, "task-1") {
		t.Error("submitted draft reappeared after Close")
	}
}

func TestWorkspaceSubmitFailureKeepsDraft(t *testing.T) {
	store := newTestStore(t)
	sub := &fakeSubmitter{err: errors.New("server unavailable")}
	w := Open("task-1", store, sub)

	w.SetSection(SectionAssumptions, "keep me")
	if err := w.SaveDraft(); err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}

	if _, err := w.Submit(context.Background()); err == nil {
		t.Fatal("Submit() expected error")
	}

	if !store.Exists(collectionDrafts, "task-1") {
		t.Error("draft removed after failed submission")
	}
	if got := w.Section(SectionAssumptions); got != "keep me" {
		t.Errorf("assumptions = %q after failed submission", got)
	}

	// A retry goes through on the same workspace
	sub.mu.Lock()
	sub.err = nil
	sub.mu.Unlock()
	if _, err := w.Submit(context.Background()); err != nil {
		t.Fatalf("retry Submit() error = %v", err)
	}
	if store.Exists(collectionDrafts, "task-1") {
		t.Error("draft kept after successful submission")
	}
}
