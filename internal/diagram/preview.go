package diagram

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRenderDebounce coalesces re-renders while the user is typing
const DefaultRenderDebounce = 300 * time.Millisecond

// Preview maintains the live rendering of a diagram source being edited.
// Source changes are coalesced with a trailing-edge debounce; on a parse
// or layout failure the previous successfully rendered output is
// retained (stale-but-valid beats blank-on-error) and a non-blocking
// syntax-error indicator is set. SetSource never returns an error.
type Preview struct {
	renderer Renderer
	debounce time.Duration
	onUpdate func(svg string, syntaxErr bool)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	dirty   bool
	svg     string
	erred   bool
	closed  bool
}

// NewPreview creates a live preview over the given renderer. onUpdate,
// when non-nil, fires after every settled render with the markup to
// display and the current error-indicator state.
func NewPreview(renderer Renderer, debounce time.Duration, onUpdate func(svg string, syntaxErr bool)) *Preview {
	if debounce <= 0 {
		debounce = DefaultRenderDebounce
	}
	return &Preview{
		renderer: renderer,
		debounce: debounce,
		onUpdate: onUpdate,
	}
}

// SetSource records a source change and (re)arms the debounce timer.
// Only the state after a quiet period is rendered.
func (p *Preview) SetSource(source string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	p.pending = source
	p.dirty = true

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, p.settle)
}

// Flush renders any pending source immediately, cancelling the timer
func (p *Preview) Flush() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	p.settle()
}

func (p *Preview) settle() {
	p.mu.Lock()
	if p.closed || !p.dirty {
		p.mu.Unlock()
		return
	}
	source := p.pending
	p.dirty = false
	p.mu.Unlock()

	svg, err := p.renderer.Render(context.Background(), source)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if err != nil {
		// Keep the last valid rendering on screen
		p.erred = true
		slog.Debug("diagram render failed", "err", err)
	} else {
		p.svg = svg
		p.erred = false
	}
	currentSVG, currentErred := p.svg, p.erred
	callback := p.onUpdate
	p.mu.Unlock()

	if callback != nil {
		callback(currentSVG, currentErred)
	}
}

// SVG returns the markup currently on display -- the latest successful
// rendering, which may be stale while the error indicator is set
func (p *Preview) SVG() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.svg
}

// Erred reports the syntax-error indicator
func (p *Preview) Erred() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.erred
}

// Close cancels any pending render
func (p *Preview) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
