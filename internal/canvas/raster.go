package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
)

const (
	darkBackground = "#0a0a0a"

	// Exports are upscaled for legibility when reviewed later
	exportScale   = 1.5
	exportPadding = 24.0
)

// Rasterize renders the visible elements of a scene to a PNG and returns
// it as a data URI suitable for inline submission. An empty scene cannot
// be exported and returns an error.
func Rasterize(scene *Scene) (string, error) {
	visible := scene.Visible()
	if len(visible) == 0 {
		return "", fmt.Errorf("nothing to export: scene has no visible elements")
	}

	minX, minY, maxX, maxY := sceneBounds(visible)
	width := int(math.Ceil((maxX - minX + 2*exportPadding) * exportScale))
	height := int(math.Ceil((maxY - minY + 2*exportPadding) * exportScale))
	if width < 1 || height < 1 {
		return "", fmt.Errorf("degenerate scene bounds %gx%g", maxX-minX, maxY-minY)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, parseHexColor(scene.AppState.ViewBackgroundColor, parseHexColor(darkBackground, color.RGBA{A: 255})))

	c := &painter{
		img:     img,
		offsetX: minX - exportPadding,
		offsetY: minY - exportPadding,
		scale:   exportScale,
	}
	for _, el := range visible {
		c.draw(el)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func sceneBounds(elements []Element) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, el := range elements {
		x0, y0, x1, y1 := el.X, el.Y, el.X+el.Width, el.Y+el.Height
		for _, p := range el.Points {
			x1 = math.Max(x1, el.X+p.X)
			y1 = math.Max(y1, el.Y+p.Y)
			x0 = math.Min(x0, el.X+p.X)
			y0 = math.Min(y0, el.Y+p.Y)
		}
		minX = math.Min(minX, x0)
		minY = math.Min(minY, y0)
		maxX = math.Max(maxX, x1)
		maxY = math.Max(maxY, y1)
	}
	return minX, minY, maxX, maxY
}

func fill(img *image.RGBA, c color.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// parseHexColor reads #rgb and #rrggbb, returning fallback otherwise
func parseHexColor(s string, fallback color.RGBA) color.RGBA {
	hexNibble := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}

	if len(s) == 4 && s[0] == '#' {
		r, ok1 := hexNibble(s[1])
		g, ok2 := hexNibble(s[2])
		b, ok3 := hexNibble(s[3])
		if ok1 && ok2 && ok3 {
			return color.RGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}
		}
		return fallback
	}
	if len(s) == 7 && s[0] == '#' {
		var v [6]uint8
		for i := 0; i < 6; i++ {
			n, ok := hexNibble(s[1+i])
			if !ok {
				return fallback
			}
			v[i] = n
		}
		return color.RGBA{R: v[0]<<4 | v[1], G: v[2]<<4 | v[3], B: v[4]<<4 | v[5], A: 255}
	}
	return fallback
}

// painter maps scene coordinates onto the export image
type painter struct {
	img     *image.RGBA
	offsetX float64
	offsetY float64
	scale   float64
}

func (p *painter) toImage(x, y float64) (float64, float64) {
	return (x - p.offsetX) * p.scale, (y - p.offsetY) * p.scale
}

func (p *painter) draw(el Element) {
	stroke := parseHexColor(el.StrokeColor, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	w := el.StrokeWidth * p.scale
	if w < 1 {
		w = 1
	}

	switch el.Type {
	case TypeRectangle, TypeText:
		p.rect(el, stroke, w)
	case TypeEllipse:
		p.ellipse(el, stroke, w)
	case TypeDiamond:
		p.diamond(el, stroke, w)
	case TypeArrow, TypeLine, TypeFreedraw:
		p.polyline(el, stroke, w)
	default:
		p.rect(el, stroke, w)
	}
}

func (p *painter) rect(el Element, c color.RGBA, w float64) {
	x0, y0 := p.toImage(el.X, el.Y)
	x1, y1 := p.toImage(el.X+el.Width, el.Y+el.Height)
	p.line(x0, y0, x1, y0, c, w)
	p.line(x1, y0, x1, y1, c, w)
	p.line(x1, y1, x0, y1, c, w)
	p.line(x0, y1, x0, y0, c, w)
}

func (p *painter) ellipse(el Element, c color.RGBA, w float64) {
	cx, cy := p.toImage(el.X+el.Width/2, el.Y+el.Height/2)
	rx := el.Width / 2 * p.scale
	ry := el.Height / 2 * p.scale

	steps := int(math.Max(24, (rx+ry)/2))
	px, py := cx+rx, cy
	for i := 1; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := cx + rx*math.Cos(a)
		y := cy + ry*math.Sin(a)
		p.line(px, py, x, y, c, w)
		px, py = x, y
	}
}

func (p *painter) diamond(el Element, c color.RGBA, w float64) {
	tx, ty := p.toImage(el.X+el.Width/2, el.Y)
	rx, ry := p.toImage(el.X+el.Width, el.Y+el.Height/2)
	bx, by := p.toImage(el.X+el.Width/2, el.Y+el.Height)
	lx, ly := p.toImage(el.X, el.Y+el.Height/2)
	p.line(tx, ty, rx, ry, c, w)
	p.line(rx, ry, bx, by, c, w)
	p.line(bx, by, lx, ly, c, w)
	p.line(lx, ly, tx, ty, c, w)
}

func (p *painter) polyline(el Element, c color.RGBA, w float64) {
	pts := el.Points
	if len(pts) < 2 {
		// A bare arrow spans its own bounding box
		pts = []Point{{X: 0, Y: 0}, {X: el.Width, Y: el.Height}}
	}
	for i := 1; i < len(pts); i++ {
		x0, y0 := p.toImage(el.X+pts[i-1].X, el.Y+pts[i-1].Y)
		x1, y1 := p.toImage(el.X+pts[i].X, el.Y+pts[i].Y)
		p.line(x0, y0, x1, y1, c, w)
	}

	if el.Type == TypeArrow && len(pts) >= 2 {
		p.arrowhead(el, pts, c, w)
	}
}

func (p *painter) arrowhead(el Element, pts []Point, c color.RGBA, w float64) {
	last := pts[len(pts)-1]
	prev := pts[len(pts)-2]
	angle := math.Atan2(last.Y-prev.Y, last.X-prev.X)
	const headLen = 10.0
	for _, da := range []float64{math.Pi - 0.5, math.Pi + 0.5} {
		hx := last.X + headLen*math.Cos(angle+da)
		hy := last.Y + headLen*math.Sin(angle+da)
		x0, y0 := p.toImage(el.X+last.X, el.Y+last.Y)
		x1, y1 := p.toImage(el.X+hx, el.Y+hy)
		p.line(x0, y0, x1, y1, c, w)
	}
}

// line paints a stroked segment by stamping squares along its length
func (p *painter) line(x0, y0, x1, y1 float64, c color.RGBA, w float64) {
	dx, dy := x1-x0, y1-y0
	dist := math.Hypot(dx, dy)
	steps := int(dist) + 1

	half := int(w / 2)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(x0 + dx*t)
		y := int(y0 + dy*t)
		for oy := -half; oy <= half; oy++ {
			for ox := -half; ox <= half; ox++ {
				p.img.SetRGBA(x+ox, y+oy, c)
			}
		}
	}
}
