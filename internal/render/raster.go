package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/chewxy/math32"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"InkSlate/internal/geom"
)

// Painter rasterizes filled paths, stroked polylines and text into one
// RGBA surface. All coordinates are in destination pixels; callers apply
// the view transform before painting.
type Painter struct {
	dst *image.RGBA
	m   *Measurer
}

func NewPainter(dst *image.RGBA, m *Measurer) *Painter {
	return &Painter{dst: dst, m: m}
}

func (p *Painter) Fill(c color.Color) {
	draw.Draw(p.dst, p.dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (p *Painter) newRasterizer() *vector.Rasterizer {
	b := p.dst.Bounds()
	r := vector.NewRasterizer(b.Dx(), b.Dy())
	r.DrawOp = draw.Over
	return r
}

func (p *Painter) flush(r *vector.Rasterizer, c color.Color) {
	r.Draw(p.dst, p.dst.Bounds(), image.NewUniform(c), image.Point{})
}

// FillPolygon fills a closed polygon (first point repeated or not).
func (p *Painter) FillPolygon(pts []geom.Point, c color.Color) {
	if len(pts) < 3 {
		return
	}
	r := p.newRasterizer()
	r.MoveTo(pts[0].X, pts[0].Y)
	for _, q := range pts[1:] {
		r.LineTo(q.X, q.Y)
	}
	r.ClosePath()
	p.flush(r, c)
}

func (p *Painter) FillCircle(center geom.Point, radius float32, c color.Color) {
	if radius <= 0 {
		return
	}
	const segs = 24
	r := p.newRasterizer()
	r.MoveTo(center.X+radius, center.Y)
	for i := 1; i <= segs; i++ {
		t := 2 * math32.Pi * float32(i) / segs
		r.LineTo(center.X+radius*math32.Cos(t), center.Y+radius*math32.Sin(t))
	}
	r.ClosePath()
	p.flush(r, c)
}

func addDisc(r *vector.Rasterizer, center geom.Point, radius float32) {
	const segs = 16
	r.MoveTo(center.X+radius, center.Y)
	for i := 1; i <= segs; i++ {
		t := 2 * math32.Pi * float32(i) / segs
		r.LineTo(center.X+radius*math32.Cos(t), center.Y+radius*math32.Sin(t))
	}
	r.ClosePath()
}

// StrokePolyline draws a polyline with round caps and joins. widths, when
// non-nil, is a parallel per-point multiplier on the base width. on/off
// describe a dash pattern in pixels; off <= 0 means solid.
func (p *Painter) StrokePolyline(pts []geom.Point, widths []float32, width float32, c color.Color, on, off float32) {
	if len(pts) == 0 || width <= 0 {
		return
	}
	if len(pts) == 1 {
		p.FillCircle(pts[0], p.pointWidth(widths, 0, width)/2, c)
		return
	}
	segments := [][]geom.Point{pts}
	var segWidths [][]float32
	if widths != nil {
		segWidths = [][]float32{widths}
	}
	if off > 0 {
		segments, segWidths = dashSegments(pts, widths, on, off)
	}
	r := p.newRasterizer()
	for si, seg := range segments {
		var ws []float32
		if segWidths != nil {
			ws = segWidths[si]
		}
		p.addStrokedPolyline(r, seg, ws, width)
	}
	p.flush(r, c)
}

func (p *Painter) pointWidth(widths []float32, i int, base float32) float32 {
	if widths == nil || i >= len(widths) {
		return base
	}
	w := base * widths[i]
	if w < 0.5 {
		w = 0.5
	}
	return w
}

func (p *Painter) addStrokedPolyline(r *vector.Rasterizer, pts []geom.Point, widths []float32, base float32) {
	for i := range pts {
		addDisc(r, pts[i], p.pointWidth(widths, i, base)/2)
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		wa := p.pointWidth(widths, i-1, base) / 2
		wb := p.pointWidth(widths, i, base) / 2
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math32.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l, dx/l
		r.MoveTo(a.X+nx*wa, a.Y+ny*wa)
		r.LineTo(b.X+nx*wb, b.Y+ny*wb)
		r.LineTo(b.X-nx*wb, b.Y-ny*wb)
		r.LineTo(a.X-nx*wa, a.Y-ny*wa)
		r.ClosePath()
	}
}

// dashSegments cuts a polyline into "on" pieces separated by "off" gaps,
// measured along its arc length. Per-point widths are interpolated onto
// the cut points.
func dashSegments(pts []geom.Point, widths []float32, on, off float32) ([][]geom.Point, [][]float32) {
	if on <= 0 {
		on = off
	}
	var segs [][]geom.Point
	var segWs [][]float32
	var cur []geom.Point
	var curW []float32
	drawing := true
	remain := on

	wAt := func(i int) float32 {
		if widths == nil || i >= len(widths) {
			return 1
		}
		return widths[i]
	}
	emit := func(q geom.Point, w float32) {
		if drawing {
			cur = append(cur, q)
			if widths != nil {
				curW = append(curW, w)
			}
		}
	}
	flip := func(q geom.Point, w float32) {
		if drawing {
			emit(q, w)
			if len(cur) > 1 {
				segs = append(segs, cur)
				if widths != nil {
					segWs = append(segWs, curW)
				}
			}
		}
		drawing = !drawing
		cur = nil
		curW = nil
		if drawing {
			remain = on
			emit(q, w)
		} else {
			remain = off
		}
	}

	emit(pts[0], wAt(0))
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		wa, wb := wAt(i-1), wAt(i)
		segLen := geom.Dist(a, b)
		pos := float32(0)
		for segLen-pos > remain {
			pos += remain
			t := pos / segLen
			flip(geom.Lerp(a, b, t), wa+(wb-wa)*t)
		}
		remain -= segLen - pos
		emit(b, wb)
	}
	if drawing && len(cur) > 1 {
		segs = append(segs, cur)
		if widths != nil {
			segWs = append(segWs, curW)
		}
	}
	if widths == nil {
		return segs, nil
	}
	return segs, segWs
}

// DrawText paints text with its top-left corner at 'at', one line per
// newline.
func (p *Painter) DrawText(text string, at geom.Point, px float32, c color.Color) {
	f := p.m.Face(px)
	if f == nil {
		return
	}
	met := f.Metrics()
	lh := float32(met.Height) / 64
	ascent := float32(met.Ascent) / 64
	d := font.Drawer{Dst: p.dst, Src: image.NewUniform(c), Face: f}
	for i, line := range strings.Split(text, "\n") {
		d.Dot = fixed.Point26_6{
			X: fixed.Int26_6(at.X * 64),
			Y: fixed.Int26_6((at.Y + ascent + lh*float32(i)) * 64),
		}
		d.DrawString(line)
	}
}
