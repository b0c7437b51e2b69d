package review

import (
	"context"
	"log/slog"

	"github.com/cortexhq/cortex/internal/diagram"
	"github.com/cortexhq/cortex/internal/domain"
)

// DisplayKind says how a submitted architecture should be shown
type DisplayKind string

const (
	// DisplayImage shows the raster snapshot exported from the canvas
	DisplayImage DisplayKind = "image"
	// DisplayDiagram shows diagram text rendered to vector markup
	DisplayDiagram DisplayKind = "diagram"
	// DisplayText shows the architecture prose as-is
	DisplayText DisplayKind = "text"
)

// ArchitectureView is the resolved presentation of a response's
// architecture section
type ArchitectureView struct {
	Kind    DisplayKind
	Content string
}

// ResolveArchitecture picks how to show a submitted architecture.
// Priority is fixed: raster snapshot, then rendered diagram text, then
// plain text. A diagram that no longer renders degrades to plain text
// rather than an error.
func ResolveArchitecture(ctx context.Context, resp *domain.TaskResponse, renderer diagram.Renderer) ArchitectureView {
	if resp.ArchitectureImage != "" {
		return ArchitectureView{Kind: DisplayImage, Content: resp.ArchitectureImage}
	}

	if diagram.LooksLikeDiagram(resp.Architecture) {
		svg, err := renderer.Render(ctx, resp.Architecture)
		if err == nil {
			return ArchitectureView{Kind: DisplayDiagram, Content: svg}
		}
		slog.Debug("submitted diagram no longer renders", "response_id", resp.ID, "error", err)
	}

	return ArchitectureView{Kind: DisplayText, Content: resp.Architecture}
}
