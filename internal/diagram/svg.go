package diagram

import (
	"fmt"
	"strings"
)

// Dark theme matching the live editor: near-black canvas, black node
// fills with white strokes, muted gray edges.
const (
	themeBackground = "#0a0a0a"
	themeNodeFill   = "#000000"
	themeNodeStroke = "#ffffff"
	themeText       = "#ffffff"
	themeEdge       = "#666666"
	themeEdgeLabel  = "#888888"
	themeFont       = "13px 'Instrument Sans', sans-serif"
)

// renderSVG emits DOM-embeddable markup for a laid-out diagram
func renderSVG(res *layoutResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`,
		res.Width, res.Height, res.Width, res.Height)
	b.WriteString(`<defs><marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">`)
	fmt.Fprintf(&b, `<path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/></marker></defs>`, themeEdge)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`, themeBackground)

	if res.Sequence {
		renderLifelines(&b, res)
	}

	for _, e := range res.Edges {
		dash := ""
		if e.Dashed {
			dash = ` stroke-dasharray="6 4"`
		}
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5" marker-end="url(#arrow)"%s/>`,
			e.X1, e.Y1, e.X2, e.Y2, themeEdge, dash)
		if e.Label != "" {
			fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" fill="%s" style="font: %s" text-anchor="middle">%s</text>`,
				e.LabelX, e.LabelY, themeEdgeLabel, themeFont, escapeText(e.Label))
		}
	}

	for _, n := range res.Nodes {
		renderNode(&b, n)
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func renderNode(b *strings.Builder, n placedNode) {
	x, y := n.X-n.Width/2, n.Y-n.Height/2
	style := fmt.Sprintf(`fill="%s" stroke="%s" stroke-width="1"`, themeNodeFill, themeNodeStroke)

	switch n.Shape {
	case ShapeDiamond:
		fmt.Fprintf(b, `<polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f" %s/>`,
			n.X, y-8, x+n.Width+10, n.Y, n.X, y+n.Height+8, x-10, n.Y, style)
	case ShapeCircle:
		r := n.Height / 2
		if n.Label != "" {
			r = max(n.Width, n.Height) / 2
		}
		fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="%.1f" %s/>`, n.X, n.Y, r, style)
	case ShapeRounded:
		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="12" %s/>`,
			x, y, n.Width, n.Height, style)
	default:
		fmt.Fprintf(b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="2" %s/>`,
			x, y, n.Width, n.Height, style)
	}

	if n.Label != "" {
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" fill="%s" style="font: %s" text-anchor="middle" dominant-baseline="middle">%s</text>`,
			n.X, n.Y, themeText, themeFont, escapeText(n.Label))
	}
}

// renderLifelines draws the vertical dashed lines under sequence
// participants before messages are painted over them
func renderLifelines(b *strings.Builder, res *layoutResult) {
	bottom := res.Height - canvasPadding
	for _, n := range res.Nodes {
		fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1" stroke-dasharray="4 4"/>`,
			n.X, n.Y+n.Height/2, n.X, bottom, themeEdge)
	}
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
