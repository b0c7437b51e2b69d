package canvas

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultExportDebounce batches scene changes before a full export.
// Rasterizing is much heavier than serializing, so the window is wider
// than the one used for diagram re-renders.
const DefaultExportDebounce = 1000 * time.Millisecond

// ExportFunc receives the serialized scene and its rendered data URI
// after each settled export. rasterURI is empty when rasterizing failed;
// the serialized scene is still delivered so nothing the user drew is
// lost.
type ExportFunc func(sceneJSON, rasterURI string)

// Adapter sits between the interactive canvas and the rest of the app.
// Scene changes are coalesced with a trailing-edge debounce, then
// serialized and rasterized off the caller's path.
type Adapter struct {
	emit      ExportFunc
	debounce  time.Duration
	rasterize func(*Scene) (string, error)

	mu     sync.Mutex
	timer  *time.Timer
	scene  *Scene
	dirty  bool
	closed bool
}

// AdapterOption configures an Adapter
type AdapterOption func(*Adapter)

// WithExportDebounce overrides the export window
func WithExportDebounce(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		if d > 0 {
			a.debounce = d
		}
	}
}

// WithRasterizer substitutes the raster stage
func WithRasterizer(fn func(*Scene) (string, error)) AdapterOption {
	return func(a *Adapter) {
		a.rasterize = fn
	}
}

// NewAdapter creates an adapter that delivers exports through emit
func NewAdapter(emit ExportFunc, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		emit:      emit,
		debounce:  DefaultExportDebounce,
		rasterize: Rasterize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OnChange records the latest scene state and (re)arms the export timer
func (a *Adapter) OnChange(scene *Scene) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	a.scene = scene
	a.dirty = true

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.export)
}

// Flush exports any pending scene immediately. Submission calls this so
// the payload reflects strokes drawn inside the debounce window.
func (a *Adapter) Flush() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	a.export()
}

func (a *Adapter) export() {
	a.mu.Lock()
	if a.closed || !a.dirty {
		a.mu.Unlock()
		return
	}
	scene := a.scene
	a.dirty = false
	a.mu.Unlock()

	sceneJSON, err := scene.Encode()
	if err != nil {
		slog.Error("failed to serialize scene", "error", err)
		return
	}

	rasterURI, err := a.rasterize(scene)
	if err != nil {
		// Degrade to data-only: the drawing survives even when the
		// image export does not
		slog.Warn("scene raster export failed", "error", err)
		rasterURI = ""
	}

	a.emit(sceneJSON, rasterURI)
}

// Close cancels any pending export
func (a *Adapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
