package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cortexhq/cortex/internal/api"
	"github.com/cortexhq/cortex/internal/domain"
	"github.com/cortexhq/cortex/internal/storage/local"
)

// Section identifies one of the four parts of a task response
type Section string

const (
	SectionAssumptions  Section = "assumptions"
	SectionArchitecture Section = "architecture"
	SectionTradeOffs    Section = "trade-offs"
	SectionFailureModes Section = "failure-modes"
)

// Sections lists the workspace tabs in display order. Completion order is
// not enforced; a user can move between them freely.
func Sections() []Section {
	return []Section{SectionAssumptions, SectionArchitecture, SectionTradeOffs, SectionFailureModes}
}

const (
	collectionDrafts = "drafts"

	// Architecture text sent when a scene is submitted without prose
	defaultSceneArchitectureText = "Visual Architecture Submitted"

	defaultSaveDebounce = 500 * time.Millisecond
)

// Submitter posts a completed response bundle
type Submitter interface {
	CreateResponse(ctx context.Context, req api.CreateResponseRequest) (*domain.TaskResponse, error)
}

// Flusher forces any debounced canvas state to settle. The canvas
// adapter satisfies this.
type Flusher interface {
	Flush()
}

// Workspace is the editing state for one task: four sections, a
// dual-mode architecture payload, and draft persistence. Methods are
// safe for concurrent use.
type Workspace struct {
	taskID string
	drafts *local.Store
	client Submitter
	logger *slog.Logger

	saveDebounce time.Duration

	mu           sync.Mutex
	active       Section
	assumptions  string
	tradeOffs    string
	failures     string
	diagram      domain.DiagramPayload
	flusher      Flusher
	saveTimer    *time.Timer
	dirty        bool
	submitting   bool
	lastResponse string
}

// Option configures a Workspace
type Option func(*Workspace)

// WithSaveDebounce overrides the draft autosave window
func WithSaveDebounce(d time.Duration) Option {
	return func(w *Workspace) {
		if d > 0 {
			w.saveDebounce = d
		}
	}
}

// WithLogger overrides the default logger
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// Open creates the workspace for a task, restoring any saved draft. A
// draft that fails to load is discarded and the workspace starts fresh.
func Open(taskID string, drafts *local.Store, client Submitter, opts ...Option) *Workspace {
	w := &Workspace{
		taskID:       taskID,
		drafts:       drafts,
		client:       client,
		logger:       slog.Default(),
		saveDebounce: defaultSaveDebounce,
		active:       SectionAssumptions,
	}
	for _, opt := range opts {
		opt(w)
	}

	var draft Draft
	err := drafts.Load(collectionDrafts, taskID, &draft)
	switch {
	case err == nil:
		w.assumptions = draft.Assumptions
		w.tradeOffs = draft.TradeOffs
		w.failures = draft.FailureScenarios
		w.diagram = draft.diagram()
	case errors.Is(err, local.ErrNotFound):
	default:
		w.logger.Warn("discarding unreadable draft", "task_id", taskID, "error", err)
		if delErr := drafts.Delete(collectionDrafts, taskID); delErr != nil && !errors.Is(delErr, local.ErrNotFound) {
			w.logger.Warn("failed to remove unreadable draft", "task_id", taskID, "error", delErr)
		}
	}
	return w
}

// TaskID returns the task this workspace edits
func (w *Workspace) TaskID() string { return w.taskID }

// Active returns the current section tab
func (w *Workspace) Active() Section {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// SetActive switches tabs. Any section can follow any other.
func (w *Workspace) SetActive(s Section) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = s
}

// SetSection updates one of the text sections. The architecture section
// is dual-mode and edited through UseDiagramText / UseScene instead.
func (w *Workspace) SetSection(s Section, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch s {
	case SectionAssumptions:
		w.assumptions = text
	case SectionTradeOffs:
		w.tradeOffs = text
	case SectionFailureModes:
		w.failures = text
	case SectionArchitecture:
		return fmt.Errorf("%w: architecture is edited through UseDiagramText or UseScene", domain.ErrInvalidInput)
	default:
		return fmt.Errorf("%w: unknown section %q", domain.ErrInvalidInput, s)
	}

	w.scheduleSaveLocked()
	return nil
}

// Section returns a text section's current content
func (w *Workspace) Section(s Section) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch s {
	case SectionAssumptions:
		return w.assumptions
	case SectionTradeOffs:
		return w.tradeOffs
	case SectionFailureModes:
		return w.failures
	}
	return ""
}

// UseDiagramText switches the architecture section to declarative text,
// discarding any scene payload
func (w *Workspace) UseDiagramText(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.diagram = domain.TextDiagram(text)
	w.scheduleSaveLocked()
}

// UseScene switches the architecture section to the freeform scene,
// discarding any diagram text. Wired as the canvas adapter's export
// callback; the flusher lets Submit settle pending canvas state first.
func (w *Workspace) UseScene(sceneJSON, rasterURI string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.diagram = domain.SceneDiagram(sceneJSON, rasterURI)
	w.scheduleSaveLocked()
}

// AttachCanvas registers the canvas adapter so submissions flush it
func (w *Workspace) AttachCanvas(f Flusher) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flusher = f
}

// Diagram returns the current architecture payload
func (w *Workspace) Diagram() domain.DiagramPayload {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.diagram
}

func (w *Workspace) scheduleSaveLocked() {
	w.dirty = true
	if w.saveTimer != nil {
		w.saveTimer.Stop()
	}
	w.saveTimer = time.AfterFunc(w.saveDebounce, w.autosave)
}

func (w *Workspace) autosave() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirty {
		return
	}
	if err := w.saveLocked(); err != nil {
		w.logger.Warn("draft autosave failed", "task_id", w.taskID, "error", err)
	}
}

// saveLocked writes the draft while holding w.mu so a save can never
// interleave with the post-submit draft removal
func (w *Workspace) saveLocked() error {
	draft := draftFrom(w.taskID, w.assumptions, w.tradeOffs, w.failures, w.diagram, time.Now().UTC())
	if err := w.drafts.Save(collectionDrafts, w.taskID, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	w.dirty = false
	return nil
}

// SaveDraft persists the current state immediately
func (w *Workspace) SaveDraft() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saveLocked()
}

// DiscardDraft removes the saved draft without submitting
func (w *Workspace) DiscardDraft() error {
	err := w.drafts.Delete(collectionDrafts, w.taskID)
	if errors.Is(err, local.ErrNotFound) {
		return domain.ErrNoDraft
	}
	return err
}

// Submit bundles the four sections and posts them. At most one
// submission is in flight at a time: concurrent calls get
// domain.ErrSubmitInFlight without touching the network. On success the
// draft is cleared and the new response ID returned; on failure every
// piece of draft state stays intact so the user can retry.
func (w *Workspace) Submit(ctx context.Context) (string, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return "", domain.ErrSubmitInFlight
	}
	w.submitting = true
	if w.saveTimer != nil {
		w.saveTimer.Stop()
		w.saveTimer = nil
	}
	flusher := w.flusher
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	// Settle debounced canvas state before reading the payload
	if flusher != nil {
		flusher.Flush()
	}

	w.mu.Lock()
	req := api.CreateResponseRequest{
		TaskID:           w.taskID,
		Assumptions:      w.assumptions,
		TradeOffs:        w.tradeOffs,
		FailureScenarios: w.failures,
	}
	switch w.diagram.Mode() {
	case domain.DiagramModeText:
		req.Architecture = w.diagram.Text()
	case domain.DiagramModeScene:
		req.ArchitectureData = w.diagram.SceneJSON()
		req.ArchitectureImage = w.diagram.RasterURI()
		req.Architecture = defaultSceneArchitectureText
	}
	w.mu.Unlock()

	resp, err := w.client.CreateResponse(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to submit response: %w", err)
	}

	// The flush may have armed a fresh autosave; cancel it and mark the
	// state clean before clearing the draft, or the timer would write
	// the submitted content back as an in-progress draft
	w.mu.Lock()
	if w.saveTimer != nil {
		w.saveTimer.Stop()
		w.saveTimer = nil
	}
	w.dirty = false
	if err := w.drafts.Delete(collectionDrafts, w.taskID); err != nil && !errors.Is(err, local.ErrNotFound) {
		w.logger.Warn("failed to clear draft after submit", "task_id", w.taskID, "error", err)
	}
	w.lastResponse = resp.ID
	w.mu.Unlock()
	return resp.ID, nil
}

// LastResponseID returns the ID of the most recent successful submission
func (w *Workspace) LastResponseID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastResponse
}

// Close stops the autosave timer, saving one final time if edits are
// pending
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.saveTimer != nil {
		w.saveTimer.Stop()
		w.saveTimer = nil
	}
	if w.dirty {
		return w.saveLocked()
	}
	return nil
}
