package input

import (
	"github.com/chewxy/math32"

	"InkSlate/internal/geom"
	"InkSlate/internal/state"
)

const (
	// handleRadiusScreen is the grab radius of a corner handle in screen
	// pixels.
	handleRadiusScreen float32 = 8

	minFontScale float32 = 0.3
	maxFontScale float32 = 5
)

type DragMode int

const (
	DragNone DragMode = iota
	DragMove
	DragCorner
)

// Selection tracks the selected (or hovered) text/shape stroke and runs
// its move and corner-resize drags. One move or resize action is pushed on
// release, and only when the geometry actually changed.
type Selection struct {
	strokeID string
	hoverID  string

	mode      DragMode
	corner    int // dragged corner index into Rect.Corners()
	grabWorld geom.Point

	origPoints []geom.Point
	origScale  float32

	textBox func(*state.Stroke) geom.Rect
}

func NewSelection(textBox func(*state.Stroke) geom.Rect) *Selection {
	return &Selection{textBox: textBox}
}

func (sel *Selection) Selected() string  { return sel.strokeID }
func (sel *Selection) Hovered() string   { return sel.hoverID }
func (sel *Selection) Dragging() bool    { return sel.mode != DragNone }

// Clear drops the selection and any drag in progress without committing.
func (sel *Selection) Clear() {
	*sel = Selection{textBox: sel.textBox}
}

// selectable reports whether a stroke supports selection: text or a
// two-point shape.
func selectable(s *state.Stroke) bool {
	k := s.Kind()
	return k == state.KindText || k == state.KindShape
}

// Box returns the selection bounding box of a stroke: the measured text
// extent or the shape's corner rectangle.
func (sel *Selection) Box(s *state.Stroke) geom.Rect {
	if s.Kind() == state.KindText && sel.textBox != nil {
		return sel.textBox(s)
	}
	return s.Bounds()
}

// HitTest finds the topmost selectable stroke under the world point.
func (sel *Selection) HitTest(strokes []*state.Stroke, world geom.Point, scale float32) *state.Stroke {
	pad := handleRadiusScreen / scale
	for i := len(strokes) - 1; i >= 0; i-- {
		s := strokes[i]
		if !selectable(s) {
			continue
		}
		if sel.Box(s).Expand(pad).Contains(world) {
			return s
		}
	}
	return nil
}

// Hover updates the hovered stroke id; returns whether it changed.
func (sel *Selection) Hover(strokes []*state.Stroke, world geom.Point, scale float32) bool {
	id := ""
	if s := sel.HitTest(strokes, world, scale); s != nil {
		id = s.ID
	}
	if id == sel.hoverID {
		return false
	}
	sel.hoverID = id
	return true
}

func (sel *Selection) Select(id string) {
	sel.strokeID = id
	sel.mode = DragNone
}

// BeginDrag starts a move or corner drag on the selected stroke. The
// corner under the grab point (within handle radius) selects resize mode;
// anywhere else inside the box moves.
func (sel *Selection) BeginDrag(s *state.Stroke, world geom.Point, scale float32) bool {
	if s == nil || s.ID != sel.strokeID {
		return false
	}
	box := sel.Box(s)
	reach := handleRadiusScreen / scale
	sel.mode = DragMove
	for i, c := range box.Corners() {
		if geom.Dist(world, c) <= reach {
			sel.mode = DragCorner
			sel.corner = i
			break
		}
	}
	if sel.mode == DragMove && !box.Expand(reach).Contains(world) {
		sel.mode = DragNone
		return false
	}
	sel.grabWorld = world
	sel.origPoints = append([]geom.Point(nil), s.Points...)
	sel.origScale = s.FontScale
	return true
}

// DragTo applies the drag live to the stroke's points (and font scale for
// text resizes).
func (sel *Selection) DragTo(s *state.Stroke, world geom.Point) {
	if s == nil || sel.mode == DragNone {
		return
	}
	switch sel.mode {
	case DragMove:
		d := world.Sub(sel.grabWorld)
		for i, p := range sel.origPoints {
			s.Points[i] = p.Add(d)
		}
	case DragCorner:
		sel.resizeTo(s, world)
	}
}

func (sel *Selection) resizeTo(s *state.Stroke, world geom.Point) {
	origBox := geom.BoundsOf(sel.origPoints)
	if s.Kind() == state.KindText {
		origBox = sel.boxAt(s, sel.origPoints, sel.origScale)
	}
	corners := origBox.Corners()
	opposite := corners[(sel.corner+2)%4]

	if s.Kind() == state.KindText {
		from := geom.Dist(corners[sel.corner], opposite)
		to := geom.Dist(world, opposite)
		if from == 0 {
			return
		}
		scale := sel.origScale
		if scale == 0 {
			scale = 1
		}
		scale *= to / from
		s.FontScale = math32.Max(minFontScale, math32.Min(maxFontScale, scale))
		return
	}

	// shape: dragged corner plus the fixed opposite corner become the two
	// defining points, never collapsing under the minimum size
	p := world
	if math32.Abs(p.X-opposite.X) < MinShapeSize {
		if p.X < opposite.X {
			p.X = opposite.X - MinShapeSize
		} else {
			p.X = opposite.X + MinShapeSize
		}
	}
	if math32.Abs(p.Y-opposite.Y) < MinShapeSize {
		if p.Y < opposite.Y {
			p.Y = opposite.Y - MinShapeSize
		} else {
			p.Y = opposite.Y + MinShapeSize
		}
	}
	s.Points[0] = opposite
	s.Points[1] = p
}

// boxAt measures the text box for hypothetical points/scale, used to
// anchor resizes at the original geometry.
func (sel *Selection) boxAt(s *state.Stroke, pts []geom.Point, scale float32) geom.Rect {
	tmp := s.Clone()
	tmp.Points = append([]geom.Point(nil), pts...)
	if scale != 0 {
		tmp.FontScale = scale
	}
	if sel.textBox != nil {
		return sel.textBox(tmp)
	}
	return geom.BoundsOf(pts)
}

// EndDrag commits the drag as one move or resize action, but only when
// the geometry actually changed.
func (sel *Selection) EndDrag(st *state.Store, s *state.Stroke) {
	mode := sel.mode
	sel.mode = DragNone
	if s == nil || mode == DragNone {
		return
	}
	switch mode {
	case DragMove:
		if pointsEqual(sel.origPoints, s.Points) {
			return
		}
		st.CommitMove(s.ID, sel.origPoints, s.Points)
	case DragCorner:
		if pointsEqual(sel.origPoints, s.Points) && sel.origScale == s.FontScale {
			return
		}
		st.CommitResize(s.ID, sel.origScale, s.FontScale, sel.origPoints, s.Points)
	}
}

func pointsEqual(a, b []geom.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
