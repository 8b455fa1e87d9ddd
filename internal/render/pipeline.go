package render

import (
	"image"
	"image/draw"
	"strings"

	"github.com/chewxy/math32"

	"InkSlate/internal/geom"
	"InkSlate/internal/state"
)

const (
	// gridSpacingWorld is the base dot spacing; the on-screen spacing is
	// folded into [minGridGap, 2*minGridGap) by octaves so zooming never
	// shows a too-dense or too-sparse grid.
	gridSpacingWorld float32 = 40
	minGridGap       float32 = 24

	pendingEraseAlpha float32 = 0.35
	highlightAlpha    float32 = 0.4
	highlightWiden    float32 = 2.5
)

// TextOverlay is the live composition drawn above everything else.
type TextOverlay struct {
	Text         string
	Caret        int
	CaretVisible bool
	Anchor       geom.Point // world
	Size         float32    // pixel size at scale 1
	Color        string
}

// SelectionBox is the selected or hovered stroke outline.
type SelectionBox struct {
	Box       geom.Rect // world
	HoverOnly bool
}

// Frame is everything one render pass reads. The pipeline never mutates
// engine state.
type Frame struct {
	Strokes       []*state.Stroke
	View          state.View
	Width, Height int
	Dark          bool
	ShowGrid      bool

	// CurrentID is the in-progress stroke, drawn on top of the cache;
	// EditingID is a text stroke hidden behind the composition overlay.
	CurrentID string
	EditingID string

	Erasing   bool
	IsPending func(id string) bool

	EraseTrail []geom.Point // world
	LaserTrail []geom.Point // world
	Badge      string
	Text       *TextOverlay
	Selection  *SelectionBox
}

type cacheKey struct {
	count                int
	offX, offY, scale    float32
	w, h                 int
	currentID, editingID string
}

type gridCache struct {
	gapPx int
	dark  bool
	tile  *image.RGBA
}

// Pipeline composites one frame into an RGBA surface. Two cache levels
// keep per-frame work bounded: a background dot tile regenerated only
// when the on-screen spacing changes, and a completed-strokes bitmap
// reused until strokes, view or viewport change.
type Pipeline struct {
	m *Measurer

	grid gridCache

	key        cacheKey
	cacheValid bool
	cache      *image.RGBA
}

func NewPipeline(m *Measurer) *Pipeline {
	return &Pipeline{m: m}
}

func (p *Pipeline) Measurer() *Measurer { return p.m }

// Invalidate drops the completed-strokes cache; wired to every stroke
// store mutation.
func (p *Pipeline) Invalidate() { p.cacheValid = false }

// Render produces the visible frame.
func (p *Pipeline) Render(f Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	pt := NewPainter(img, p.m)

	bg := lightBackground
	if f.Dark {
		bg = darkBackground
	}
	pt.Fill(bg)
	if f.ShowGrid {
		p.drawGrid(img, f)
	}

	if f.Erasing {
		// per-stroke opacity differs from the cached norm, so the cache
		// is bypassed while an erase gesture runs
		for _, s := range f.Strokes {
			if s.ID == f.EditingID {
				continue
			}
			alpha := float32(1)
			if f.IsPending != nil && f.IsPending(s.ID) {
				alpha = pendingEraseAlpha
			}
			p.drawStroke(pt, s, f.View, alpha)
		}
	} else {
		p.blitCompleted(img, f)
		if f.CurrentID != "" {
			for _, s := range f.Strokes {
				if s.ID == f.CurrentID {
					p.drawStroke(pt, s, f.View, 1)
					break
				}
			}
		}
	}

	p.drawOverlays(pt, f)
	return img
}

// blitCompleted draws every stroke except the in-progress and edited ones
// from the bitmap cache, redrawing it only on key changes.
func (p *Pipeline) blitCompleted(img *image.RGBA, f Frame) {
	key := cacheKey{
		count:     len(f.Strokes),
		offX:      f.View.OffsetX,
		offY:      f.View.OffsetY,
		scale:     f.View.Scale,
		w:         f.Width,
		h:         f.Height,
		currentID: f.CurrentID,
		editingID: f.EditingID,
	}
	if !p.cacheValid || key != p.key || p.cache == nil {
		p.cache = image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
		pt := NewPainter(p.cache, p.m)
		for _, s := range f.Strokes {
			if s.ID == f.CurrentID || s.ID == f.EditingID {
				continue
			}
			p.drawStroke(pt, s, f.View, 1)
		}
		p.key = key
		p.cacheValid = true
	}
	draw.Draw(img, img.Bounds(), p.cache, image.Point{}, draw.Over)
}

func (p *Pipeline) drawGrid(img *image.RGBA, f Frame) {
	gap := gridSpacingWorld * f.View.Scale
	for gap < minGridGap {
		gap *= 2
	}
	for gap >= 2*minGridGap {
		gap /= 2
	}
	gapPx := int(gap + 0.5)
	if gapPx < 2 {
		return
	}
	if p.grid.tile == nil || p.grid.gapPx != gapPx || p.grid.dark != f.Dark {
		dot := lightGridDot
		if f.Dark {
			dot = darkGridDot
		}
		tile := image.NewRGBA(image.Rect(0, 0, gapPx, gapPx))
		NewPainter(tile, p.m).FillCircle(geom.Pt(float32(gapPx)/2, float32(gapPx)/2), 1.5, dot)
		p.grid = gridCache{gapPx: gapPx, dark: f.Dark, tile: tile}
	}
	phaseX := int(math32.Mod(f.View.OffsetX, gap)) - gapPx
	phaseY := int(math32.Mod(f.View.OffsetY, gap)) - gapPx
	for y := phaseY; y < f.Height; y += gapPx {
		for x := phaseX; x < f.Width; x += gapPx {
			draw.Draw(img, image.Rect(x, y, x+gapPx, y+gapPx), p.grid.tile, image.Point{}, draw.Over)
		}
	}
}

func toScreen(v state.View, pts []geom.Point) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = v.WorldToScreen(p)
	}
	return out
}

// handDrawnJitter is the wobble amplitude in world units for seeded shape
// rendering.
const handDrawnJitter float32 = 2

func (p *Pipeline) drawStroke(pt *Painter, s *state.Stroke, v state.View, alpha float32) {
	col := ParseColor(s.Color)
	lw := s.LineWidth * v.Scale
	if s.Highlight {
		alpha *= highlightAlpha
		lw *= highlightWiden
	}
	if alpha < 1 {
		col = withAlpha(col, alpha)
	}
	on, off := dashPattern(s, v.Scale)

	switch s.Kind() {
	case state.KindDot:
		pt.FillCircle(v.WorldToScreen(s.Points[0]), math32.Max(lw, 1.5), col)
	case state.KindText:
		pt.DrawText(s.Text, v.WorldToScreen(s.Points[0]), textSize(s)*v.Scale, col)
	case state.KindShape:
		outline := geom.ShapeOutline(s.Shape, s.Points[0], s.Points[1])
		if s.Seed != 0 {
			outline = geom.Jitter(outline, s.Seed, handDrawnJitter)
		} else if rounded(s.Shape) {
			for i, line := range outline {
				outline[i] = geom.RoundedPolygon(line, 4)
			}
		}
		for _, line := range outline {
			pt.StrokePolyline(toScreen(v, line), nil, lw, col, on, off)
		}
	default:
		pt.StrokePolyline(toScreen(v, s.Points), s.Widths, lw, col, on, off)
	}
}

// rounded shapes get their corners softened when not in hand-drawn mode.
func rounded(k geom.ShapeKind) bool {
	switch k {
	case geom.ShapeRectangle, geom.ShapeTriangle, geom.ShapeDiamond,
		geom.ShapePentagon, geom.ShapeHexagon, geom.ShapeStar:
		return true
	}
	return false
}

func dashPattern(s *state.Stroke, scale float32) (on, off float32) {
	if s.Style != state.StyleDashed {
		return 0, 0
	}
	gap := s.DashGap
	if gap <= 0 {
		gap = 8
	}
	gap *= scale
	return gap * 1.25, gap
}

// drawOverlays renders the transient layers in their fixed order: text
// composition, mode badge, erase trail, laser trail, selection box.
func (p *Pipeline) drawOverlays(pt *Painter, f Frame) {
	if f.Text != nil {
		p.drawTextOverlay(pt, f)
	}
	if f.Badge != "" {
		p.drawBadge(pt, f.Badge)
	}
	if len(f.EraseTrail) > 0 {
		pt.StrokePolyline(toScreen(f.View, f.EraseTrail), nil, 16, trailColor, 0, 0)
	}
	if len(f.LaserTrail) > 0 {
		p.drawLaser(pt, f)
	}
	if f.Selection != nil {
		p.drawSelection(pt, f)
	}
}

func (p *Pipeline) drawTextOverlay(pt *Painter, f Frame) {
	t := f.Text
	size := t.Size * f.View.Scale
	anchor := f.View.WorldToScreen(t.Anchor)
	col := ParseColor(t.Color)
	pt.DrawText(t.Text, anchor, size, col)
	if !t.CaretVisible {
		return
	}
	lines := strings.Split(string([]rune(t.Text)[:clampCaret(t.Caret, t.Text)]), "\n")
	line := len(lines) - 1
	colText := lines[line]
	lh := p.m.LineHeight(size)
	x := anchor.X + p.m.StringWidth(colText, size)
	y := anchor.Y + lh*float32(line)
	pt.FillPolygon([]geom.Point{
		{X: x, Y: y}, {X: x + 2, Y: y}, {X: x + 2, Y: y + lh}, {X: x, Y: y + lh},
	}, caretColor)
}

func clampCaret(caret int, text string) int {
	n := len([]rune(text))
	if caret < 0 {
		return 0
	}
	if caret > n {
		return n
	}
	return caret
}

func (p *Pipeline) drawBadge(pt *Painter, label string) {
	const size float32 = 13
	w := p.m.StringWidth(label, size)
	h := p.m.LineHeight(size)
	box := geom.Rect{Min: geom.Pt(12, 12), Max: geom.Pt(12+w+16, 12+h+8)}
	pt.FillPolygon(geom.RoundedPolygon([]geom.Point{
		box.Min, {X: box.Max.X, Y: box.Min.Y}, box.Max, {X: box.Min.X, Y: box.Max.Y}, box.Min,
	}, 6), badgeFill)
	pt.DrawText(label, geom.Pt(box.Min.X+8, box.Min.Y+4), size, badgeText)
}

func (p *Pipeline) drawLaser(pt *Painter, f Frame) {
	pts := toScreen(f.View, f.LaserTrail)
	n := len(pts)
	// fading tail: each segment's alpha grows towards the head
	for i := 1; i < n; i++ {
		a := float32(i) / float32(n)
		pt.StrokePolyline(pts[i-1:i+1], nil, 3, withAlpha(laserColor, a), 0, 0)
	}
	pt.FillCircle(pts[n-1], 4, laserColor)
}

func (p *Pipeline) drawSelection(pt *Painter, f Frame) {
	box := f.Selection.Box
	a := f.View.WorldToScreen(box.Min)
	b := f.View.WorldToScreen(box.Max)
	corners := geom.RectFromCorners(a, b).Corners()
	outline := append(corners[:], corners[0])
	if f.Selection.HoverOnly {
		pt.StrokePolyline(outline, nil, 1.5, selectionLine, 6, 4)
		return
	}
	pt.FillPolygon(outline, selectionFill)
	pt.StrokePolyline(outline, nil, 1.5, selectionLine, 0, 0)
	const hr = 4
	for _, c := range corners {
		square := []geom.Point{
			{X: c.X - hr, Y: c.Y - hr}, {X: c.X + hr, Y: c.Y - hr},
			{X: c.X + hr, Y: c.Y + hr}, {X: c.X - hr, Y: c.Y + hr},
		}
		pt.FillPolygon(square, handleFill)
		pt.StrokePolyline(append(square, square[0]), nil, 1, selectionLine, 0, 0)
	}
}
