package render

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkSlate/internal/geom"
	"InkSlate/internal/state"
)

// assertBG checks one pixel against an opaque NRGBA palette color.
func assertBG(t *testing.T, img *image.RGBA, x, y int, want color.NRGBA) {
	t.Helper()
	got := img.RGBAAt(x, y)
	assert.Equal(t, color.RGBA{R: want.R, G: want.G, B: want.B, A: want.A}, got)
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, ParseColor("#ff0000"))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, ParseColor("#fff"))
	assert.Equal(t, color.NRGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0x80}, ParseColor("#1e88e580"))
	assert.Equal(t, color.NRGBA{A: 255}, ParseColor("nonsense"))
	assert.Equal(t, color.NRGBA{R: 17, G: 34, B: 51, A: 255}, ParseColor("  #112233 "))
}

func TestMeasurerBasics(t *testing.T) {
	m := NewMeasurer()
	w := m.StringWidth("hello", 24)
	assert.Greater(t, w, float32(0))
	assert.Greater(t, m.StringWidth("hello world", 24), w)
	assert.Greater(t, m.LineHeight(24), float32(20))
	// faces are cached per quantized size
	assert.Equal(t, m.Face(24), m.Face(24.2))
}

func TestTextBoxGrowsWithLines(t *testing.T) {
	m := NewMeasurer()
	s := state.NewStroke("#000000", 1)
	s.Points = []geom.Point{{X: 10, Y: 20}}
	s.Text = "one"
	s.FontSize = 24
	one := m.TextBox(s)
	assert.Equal(t, geom.Pt(10, 20), one.Min)

	s.Text = "one\ntwo"
	two := m.TextBox(s)
	assert.InDelta(t, one.Height()*2, two.Height(), 0.01)

	// font scale widens the box
	s.FontScale = 2
	big := m.TextBox(s)
	assert.Greater(t, big.Width(), two.Width())
}

func testFrame(strokes []*state.Stroke) Frame {
	return Frame{
		Strokes: strokes,
		View:    state.DefaultView(),
		Width:   200,
		Height:  150,
	}
}

func TestRenderFillsBackground(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	img := p.Render(testFrame(nil))
	require.Equal(t, image.Rect(0, 0, 200, 150), img.Bounds())
	assertBG(t, img, 5, 5, lightBackground)

	f := testFrame(nil)
	f.Dark = true
	img = p.Render(f)
	assertBG(t, img, 5, 5, darkBackground)
}

func TestRenderDrawsStroke(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	s := state.NewStroke("#ff0000", 6)
	s.Points = []geom.Point{{X: 10, Y: 75}, {X: 190, Y: 75}}
	img := p.Render(testFrame([]*state.Stroke{s}))
	c := img.RGBAAt(100, 75)
	assert.Greater(t, c.R, uint8(200))
	assert.Less(t, c.G, uint8(100))
}

func TestRenderCacheReuse(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	s := state.NewStroke("#000000", 4)
	s.Points = []geom.Point{{X: 10, Y: 10}, {X: 50, Y: 50}}
	f := testFrame([]*state.Stroke{s})

	p.Render(f)
	first := p.cache
	require.NotNil(t, first)
	p.Render(f)
	assert.Same(t, first, p.cache, "unchanged frame reuses the cache")

	// a view change rebuilds
	f.View.OffsetX = 10
	p.Render(f)
	assert.NotSame(t, first, p.cache)

	// Invalidate forces a rebuild even with an identical key
	second := p.cache
	p.Invalidate()
	p.Render(f)
	assert.NotSame(t, second, p.cache)
}

func TestRenderCurrentStrokeNotCached(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	s := state.NewStroke("#ff0000", 8)
	s.Points = []geom.Point{{X: 0, Y: 75}, {X: 200, Y: 75}}
	f := testFrame([]*state.Stroke{s})
	f.CurrentID = s.ID
	img := p.Render(f)
	// drawn on screen even though excluded from the cache bitmap
	assert.Greater(t, img.RGBAAt(100, 75).R, uint8(200))
	assert.Equal(t, uint8(0), p.cache.RGBAAt(100, 75).A)
}

func TestRenderPendingEraseDimmed(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	s := state.NewStroke("#000000", 8)
	s.Points = []geom.Point{{X: 0, Y: 75}, {X: 200, Y: 75}}
	f := testFrame([]*state.Stroke{s})
	f.Erasing = true
	f.IsPending = func(id string) bool { return id == s.ID }
	img := p.Render(f)
	// a dimmed black over the light background stays well above black
	c := img.RGBAAt(100, 75)
	assert.Greater(t, c.R, uint8(120))
}

func TestRenderEditingStrokeHidden(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	s := state.NewStroke("#ff0000", 8)
	s.Points = []geom.Point{{X: 0, Y: 75}, {X: 200, Y: 75}}
	f := testFrame([]*state.Stroke{s})
	f.EditingID = s.ID
	img := p.Render(f)
	assertBG(t, img, 100, 75, lightBackground)
}

func TestDashSegments(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}
	segs, ws := dashSegments(pts, nil, 10, 10)
	assert.Nil(t, ws)
	require.NotEmpty(t, segs)
	// 100 units of 10-on/10-off yields 5 on pieces
	assert.Len(t, segs, 5)
	for _, seg := range segs {
		length := geom.Dist(seg[0], seg[len(seg)-1])
		assert.InDelta(t, 10, length, 0.01)
	}
}

func TestDashSegmentsInterpolatesWidths(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}
	widths := []float32{0, 1}
	segs, ws := dashSegments(pts, widths, 25, 25)
	require.Len(t, segs, 2)
	require.Len(t, ws, 2)
	// the second piece starts at x=50, width interpolated to 0.5
	assert.InDelta(t, 0.5, ws[1][0], 0.01)
}

func TestStrokePolylineVariants(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	pt := NewPainter(img, NewMeasurer())
	assert.NotPanics(t, func() {
		pt.StrokePolyline(nil, nil, 4, color.NRGBA{A: 255}, 0, 0)
		pt.StrokePolyline([]geom.Point{{X: 50, Y: 50}}, nil, 4, color.NRGBA{A: 255}, 0, 0)
		pt.StrokePolyline([]geom.Point{{X: 0, Y: 0}, {X: 0, Y: 0}}, nil, 4, color.NRGBA{A: 255}, 0, 0)
		pt.StrokePolyline([]geom.Point{{X: 10, Y: 10}, {X: 90, Y: 90}}, []float32{1, 0.5}, 4, color.NRGBA{A: 255}, 8, 6)
	})
	// the single point left a dot
	assert.NotEqual(t, uint8(0), img.RGBAAt(50, 50).A)
}

func TestExportImageBounds(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	s := state.NewStroke("#000000", 4)
	s.Points = []geom.Point{{X: 100, Y: 100}, {X: 200, Y: 150}}
	img := p.ExportImage([]*state.Stroke{s}, false, false)
	require.NotNil(t, img)
	// 100x50 content plus 16 padding each side
	assert.GreaterOrEqual(t, img.Bounds().Dx(), 132)
	assert.GreaterOrEqual(t, img.Bounds().Dy(), 82)
	assertBG(t, img, 2, 2, lightBackground)
}

func TestExportImageTransparent(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	s := state.NewStroke("#000000", 4)
	s.Points = []geom.Point{{X: 0, Y: 0}, {X: 50, Y: 50}}
	img := p.ExportImage([]*state.Stroke{s}, false, true)
	require.NotNil(t, img)
	assert.Equal(t, uint8(0), img.RGBAAt(1, 30).A, "background stays unfilled")
}

func TestExportImageEmpty(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	assert.Nil(t, p.ExportImage(nil, false, false))
}

func TestExportBounds(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	_, ok := p.ExportBounds(nil)
	assert.False(t, ok)

	s := state.NewStroke("#ff0000", 2)
	s.Points = []geom.Point{{X: 10, Y: 20}, {X: 110, Y: 80}}
	bounds, ok := p.ExportBounds([]*state.Stroke{s})
	require.True(t, ok)
	assert.Equal(t, geom.Pt(10, 20), bounds.Min)
	assert.Equal(t, geom.Pt(110, 80), bounds.Max)
}

func TestWritePNG(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	s := state.NewStroke("#000000", 4)
	s.Points = []geom.Point{{X: 0, Y: 0}, {X: 20, Y: 20}}
	img := p.ExportImage([]*state.Stroke{s}, false, false)
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, img))
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, buf.Bytes()[:4])
}

func TestGridOctaveFolding(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	f := testFrame(nil)
	f.ShowGrid = true
	// extreme zooms must still produce a sane tile, never a hang
	for _, scale := range []float32{0.1, 0.37, 1, 4.9, 10} {
		f.View.Scale = scale
		assert.NotPanics(t, func() { p.Render(f) }, "scale %v", scale)
		gap := float32(p.grid.gapPx)
		assert.GreaterOrEqual(t, gap, minGridGap-1)
		assert.Less(t, gap, 2*minGridGap+1)
	}
}

func TestRenderOverlays(t *testing.T) {
	p := NewPipeline(NewMeasurer())
	f := testFrame(nil)
	f.Badge = "pen"
	f.EraseTrail = []geom.Point{{X: 10, Y: 10}, {X: 40, Y: 40}}
	f.LaserTrail = []geom.Point{{X: 50, Y: 50}, {X: 90, Y: 60}}
	f.Text = &TextOverlay{
		Text: "hi", Caret: 2, CaretVisible: true,
		Anchor: geom.Pt(100, 20), Size: 24, Color: "#000000",
	}
	f.Selection = &SelectionBox{Box: geom.Rect{Min: geom.Pt(20, 80), Max: geom.Pt(80, 120)}}
	var img *image.RGBA
	assert.NotPanics(t, func() { img = p.Render(f) })
	// laser head dot
	assert.Greater(t, img.RGBAAt(90, 60).R, uint8(200))
}
