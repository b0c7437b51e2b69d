package diagram

import (
	"context"
	"fmt"
)

// Renderer turns a declarative diagram source into DOM-embeddable vector
// markup. The interface exists so another rendering engine can substitute
// without touching the editor or display code.
type Renderer interface {
	Render(ctx context.Context, source string) (string, error)
}

// Engine is the built-in renderer: parse, layout, emit SVG
type Engine struct{}

// NewEngine creates the default renderer
func NewEngine() *Engine {
	return &Engine{}
}

// Render produces SVG for a diagram source. Malformed input returns an
// error and no markup; it never panics on arbitrary text.
func (e *Engine) Render(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d, err := Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse diagram: %w", err)
	}

	return renderSVG(layout(d)), nil
}
