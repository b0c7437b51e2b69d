package review

import (
	"context"
	"strings"
	"testing"

	"github.com/cortexhq/cortex/internal/diagram"
	"github.com/cortexhq/cortex/internal/domain"
)

func TestResolveArchitecture(t *testing.T) {
	renderer := diagram.NewEngine()
	ctx := context.Background()

	tests := []struct {
		name string
		resp domain.TaskResponse
		want DisplayKind
	}{
		{
			name: "raster snapshot wins",
			resp: domain.TaskResponse{
				Architecture:      "graph TD\n  A --> B",
				ArchitectureImage: "data:image/png;base64,abc",
			},
			want: DisplayImage,
		},
		{
			name: "diagram text renders",
			resp: domain.TaskResponse{Architecture: "graph TD\n  A --> B"},
			want: DisplayDiagram,
		},
		{
			name: "prose stays plain",
			resp: domain.TaskResponse{Architecture: "Three stateless app servers behind nginx."},
			want: DisplayText,
		},
		{
			name: "broken diagram degrades to text",
			resp: domain.TaskResponse{Architecture: "graph TD\n  A[broken --> B"},
			want: DisplayText,
		},
		{
			name: "empty architecture",
			resp: domain.TaskResponse{},
			want: DisplayText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := ResolveArchitecture(ctx, &tt.resp, renderer)
			if view.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", view.Kind, tt.want)
			}
			switch tt.want {
			case DisplayImage:
				if view.Content != tt.resp.ArchitectureImage {
					t.Errorf("Content = %q, want raster URI", view.Content)
				}
			case DisplayDiagram:
				if !strings.Contains(view.Content, "<svg") {
					t.Errorf("Content is not markup: %.40q", view.Content)
				}
			case DisplayText:
				if view.Content != tt.resp.Architecture {
					t.Errorf("Content = %q, want architecture text", view.Content)
				}
			}
		})
	}
}
