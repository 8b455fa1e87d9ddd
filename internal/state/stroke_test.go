package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkSlate/internal/geom"
)

func TestStrokeKind(t *testing.T) {
	s := NewStroke("#000000", 4)
	s.Points = []geom.Point{{X: 0, Y: 0}}
	assert.Equal(t, KindDot, s.Kind())

	s.Points = append(s.Points, geom.Pt(10, 10))
	assert.Equal(t, KindFreehand, s.Kind())

	s.Shape = geom.ShapeCircle
	assert.Equal(t, KindShape, s.Kind())

	// text wins over everything
	s.Text = "note"
	assert.Equal(t, KindText, s.Kind())
}

func TestStrokeCloneIndependent(t *testing.T) {
	s := NewStroke("#000000", 4)
	s.Points = []geom.Point{{X: 1, Y: 2}}
	s.Widths = []float32{1}
	c := s.Clone()
	c.Points[0] = geom.Pt(9, 9)
	c.Widths[0] = 0.5
	assert.Equal(t, geom.Pt(1, 2), s.Points[0])
	assert.Equal(t, float32(1), s.Widths[0])
}

func TestContentBounds(t *testing.T) {
	a := NewStroke("#000000", 4)
	a.Points = []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}
	b := NewStroke("#000000", 4)
	b.Points = []geom.Point{{X: 50, Y: -5}}

	bounds, ok := ContentBounds([]*Stroke{a, b}, nil)
	require.True(t, ok)
	assert.Equal(t, geom.Rect{Min: geom.Pt(0, -5), Max: geom.Pt(50, 10)}, bounds)
}

func TestContentBoundsUsesTextBox(t *testing.T) {
	txt := NewStroke("#000000", 1)
	txt.Points = []geom.Point{{X: 100, Y: 100}}
	txt.Text = "wide"
	box := func(*Stroke) geom.Rect {
		return geom.Rect{Min: geom.Pt(100, 100), Max: geom.Pt(180, 130)}
	}
	bounds, ok := ContentBounds([]*Stroke{txt}, box)
	require.True(t, ok)
	assert.Equal(t, float32(180), bounds.Max.X)
}

func TestContentBoundsEmpty(t *testing.T) {
	_, ok := ContentBounds(nil, nil)
	assert.False(t, ok)
	empty := NewStroke("#000000", 1)
	_, ok = ContentBounds([]*Stroke{empty}, nil)
	assert.False(t, ok)
}
