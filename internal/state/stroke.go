package state

import (
	"github.com/google/uuid"

	"InkSlate/internal/geom"
)

type Style string

const (
	StyleSolid  Style = "solid"
	StyleDashed Style = "dashed"
)

// Stroke is one drawable unit: a freehand path, a two-corner shape, an
// anchored text, or a single dot. Exactly one of those forms holds at a
// time; Kind reports which.
type Stroke struct {
	ID        string         `json:"id"`
	Points    []geom.Point   `json:"points"`
	Style     Style          `json:"style"`
	LineWidth float32        `json:"line_width"`
	DashGap   float32        `json:"dash_gap,omitempty"`
	Color     string         `json:"color"`
	Shape     geom.ShapeKind `json:"shape,omitempty"`
	Highlight bool           `json:"highlight,omitempty"`
	Text      string         `json:"text,omitempty"`
	FontSize  float32        `json:"font_size,omitempty"`
	FontScale float32        `json:"font_scale,omitempty"`
	Widths    []float32      `json:"widths,omitempty"`
	Seed      int64          `json:"seed,omitempty"`
}

// NewStroke allocates an empty stroke with a fresh id.
func NewStroke(color string, width float32) *Stroke {
	return &Stroke{
		ID:        uuid.NewString(),
		Style:     StyleSolid,
		LineWidth: width,
		Color:     color,
	}
}

type StrokeKind int

const (
	KindFreehand StrokeKind = iota
	KindShape
	KindText
	KindDot
)

func (s *Stroke) Kind() StrokeKind {
	switch {
	case s.Text != "":
		return KindText
	case s.Shape != geom.ShapeNone:
		return KindShape
	case len(s.Points) == 1:
		return KindDot
	}
	return KindFreehand
}

// Clone returns a deep copy; undo records hold clones so later in-place
// edits of the live stroke cannot rewrite history.
func (s *Stroke) Clone() *Stroke {
	c := *s
	c.Points = append([]geom.Point(nil), s.Points...)
	if s.Widths != nil {
		c.Widths = append([]float32(nil), s.Widths...)
	}
	return &c
}

// Bounds is the geometric bounding box of the stroke's points. Text
// strokes only contribute their anchor here; measured text extents are the
// renderer's concern.
func (s *Stroke) Bounds() geom.Rect {
	return geom.BoundsOf(s.Points)
}

// ContentBounds unions the bounds of all strokes. textBox supplies the
// measured box for text strokes; nil falls back to the anchor point. The
// second result is false when there are no strokes.
func ContentBounds(strokes []*Stroke, textBox func(*Stroke) geom.Rect) (geom.Rect, bool) {
	var out geom.Rect
	found := false
	for _, s := range strokes {
		if len(s.Points) == 0 {
			continue
		}
		b := s.Bounds()
		if s.Kind() == KindText && textBox != nil {
			b = textBox(s)
		}
		if !found {
			out = b
			found = true
		} else {
			out = out.Union(b)
		}
	}
	return out, found
}
