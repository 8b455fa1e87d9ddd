package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeOutlineClosed(t *testing.T) {
	a, b := Pt(0, 0), Pt(100, 60)
	for _, kind := range []ShapeKind{
		ShapeRectangle, ShapeCircle, ShapeTriangle, ShapeDiamond,
		ShapePentagon, ShapeHexagon, ShapeStar, ShapeLightning,
	} {
		out := ShapeOutline(kind, a, b)
		require.Len(t, out, 1, "%s", kind)
		line := out[0]
		require.GreaterOrEqual(t, len(line), 4, "%s", kind)
		assert.Equal(t, line[0], line[len(line)-1], "%s must close", kind)
	}
}

func TestShapeOutlineLine(t *testing.T) {
	out := ShapeOutline(ShapeLine, Pt(1, 2), Pt(3, 4))
	require.Len(t, out, 1)
	assert.Equal(t, []Point{{1, 2}, {3, 4}}, out[0])
}

func TestShapeOutlineArrow(t *testing.T) {
	out := ShapeOutline(ShapeArrow, Pt(0, 0), Pt(100, 0))
	require.Len(t, out, 3)
	assert.Equal(t, []Point{{0, 0}, {100, 0}}, out[0])
	// both head strokes end at the tip, swept back from it
	for _, head := range out[1:] {
		require.Len(t, head, 2)
		assert.Equal(t, Pt(100, 0), head[1])
		assert.Less(t, head[0].X, float32(100))
	}
	// head length is capped for long shafts
	d := Dist(out[1][0], out[1][1])
	assert.LessOrEqual(t, d, float32(28.01))
}

func TestShapeOutlineStaysInBox(t *testing.T) {
	box := RectFromCorners(Pt(10, 20), Pt(110, 80))
	for _, kind := range []ShapeKind{ShapeRectangle, ShapeCircle, ShapeStar, ShapeLightning} {
		for _, line := range ShapeOutline(kind, box.Min, box.Max) {
			for _, p := range line {
				assert.True(t, box.Expand(0.01).Contains(p), "%s point %v", kind, p)
			}
		}
	}
}

func TestRoundedPolygonClosed(t *testing.T) {
	sq := []Point{{0, 0}, {40, 0}, {40, 40}, {0, 40}, {0, 0}}
	out := RoundedPolygon(sq, 4)
	require.Greater(t, len(out), len(sq))
	assert.Equal(t, out[0], out[len(out)-1])
	// corners themselves are cut off
	for _, p := range out {
		assert.NotEqual(t, Pt(0, 0), p)
	}
}

func TestJitterDeterministic(t *testing.T) {
	outline := ShapeOutline(ShapeRectangle, Pt(0, 0), Pt(100, 100))
	a := Jitter(outline, 42, 2)
	b := Jitter(outline, 42, 2)
	assert.Equal(t, a, b)

	c := Jitter(outline, 43, 2)
	assert.NotEqual(t, a, c)
}

func TestJitterAnchorsEndpoints(t *testing.T) {
	outline := [][]Point{{{0, 0}, {50, 0}, {100, 0}}}
	out := Jitter(outline, 7, 3)
	require.Len(t, out, 1)
	line := out[0]
	assert.Equal(t, Pt(0, 0), line[0])
	assert.Equal(t, Pt(100, 0), line[len(line)-1])
	// interior points gained wobble and subdivision
	assert.Greater(t, len(line), 3)
}
