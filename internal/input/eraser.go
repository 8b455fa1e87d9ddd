package input

import (
	"InkSlate/internal/geom"
	"InkSlate/internal/state"
)

const (
	// eraseRadiusScreen is the hit disc radius in screen pixels; divided
	// by the zoom scale it becomes a world radius, so the eraser feels
	// the same size at any zoom.
	eraseRadiusScreen float32 = 12

	// trailGapScreen is the maximum gap between trail samples in screen
	// pixels; faster pointer motion gets interpolated points so thin
	// strokes are not skipped over.
	trailGapScreen float32 = 6

	// trailDecayFraction of the oldest points drains per animation tick.
	trailDecayFraction = 0.22
)

// Trail is a decaying polyline of recent pointer positions, used for the
// erase trail and the laser overlay.
type Trail struct {
	pts []geom.Point
}

// Add appends p, interpolating intermediate points whenever the jump from
// the previous sample exceeds gap.
func (t *Trail) Add(p geom.Point, gap float32) {
	if n := len(t.pts); n > 0 && gap > 0 {
		last := t.pts[n-1]
		d := geom.Dist(last, p)
		for steps := int(d / gap); steps > 0; steps-- {
			t.pts = append(t.pts, geom.Lerp(last, p, 1-float32(steps)*gap/d))
		}
	}
	t.pts = append(t.pts, p)
}

// Decay drops a fraction of the oldest points so the trail visually
// catches up with the cursor and drains after motion stops. Returns
// whether any points remain.
func (t *Trail) Decay() bool {
	n := len(t.pts)
	if n == 0 {
		return false
	}
	drop := int(float32(n) * trailDecayFraction)
	if drop < 1 {
		drop = 1
	}
	t.pts = t.pts[drop:]
	return len(t.pts) > 0
}

func (t *Trail) Points() []geom.Point { return t.pts }
func (t *Trail) Clear()               { t.pts = nil }

// Eraser marks strokes hit by the pointer for removal. Erasing is
// transactional: marked strokes are only dimmed until Confirm removes
// them all as one undoable action; Cancel forgets the marks.
type Eraser struct {
	pending map[string]bool
	trail   Trail
	active  bool
}

func NewEraser() *Eraser {
	return &Eraser{pending: make(map[string]bool)}
}

func (e *Eraser) Begin()       { e.active = true }
func (e *Eraser) Active() bool { return e.active }

func (e *Eraser) Pending(id string) bool { return e.pending[id] }
func (e *Eraser) HasPending() bool       { return len(e.pending) > 0 }

func (e *Eraser) TrailPoints() []geom.Point { return e.trail.Points() }

// DecayTick advances the trail decay; returns whether the trail still has
// points to animate.
func (e *Eraser) DecayTick() bool { return e.trail.Decay() }

// EraseAt extends the trail to the world point and marks every
// not-yet-pending stroke intersecting a disc around it. The disc radius
// shrinks in world terms as the view zooms in.
func (e *Eraser) EraseAt(world geom.Point, strokes []*state.Stroke, scale float32, textBox func(*state.Stroke) geom.Rect) {
	e.trail.Add(world, trailGapScreen/scale)
	radius := eraseRadiusScreen / scale
	for _, s := range strokes {
		if e.pending[s.ID] {
			continue
		}
		if strokeHit(s, world, radius, textBox) {
			e.pending[s.ID] = true
		}
	}
}

// Confirm removes all pending strokes from the store as one erase action.
func (e *Eraser) Confirm(st *state.Store) int {
	defer e.reset()
	if len(e.pending) == 0 {
		return 0
	}
	return st.RemoveAll(func(s *state.Stroke) bool { return e.pending[s.ID] })
}

// Cancel discards the pending set without touching the store.
func (e *Eraser) Cancel() {
	e.reset()
	e.trail.Clear()
}

func (e *Eraser) reset() {
	e.pending = make(map[string]bool)
	e.active = false
}

// strokeHit tests a stroke against a disc of the given radius: text by
// bounding box, shapes by their rendered outline (arrowheads included),
// paths per segment.
func strokeHit(s *state.Stroke, p geom.Point, radius float32, textBox func(*state.Stroke) geom.Rect) bool {
	reach := radius + s.LineWidth/2
	switch s.Kind() {
	case state.KindText:
		if textBox == nil {
			return geom.Dist(p, s.Points[0]) <= radius
		}
		return textBox(s).Expand(radius).Contains(p)
	case state.KindShape:
		for _, line := range geom.ShapeOutline(s.Shape, s.Points[0], s.Points[1]) {
			if geom.PolylineDist(p, line) <= reach {
				return true
			}
		}
		return false
	case state.KindDot:
		return geom.Dist(p, s.Points[0]) <= reach
	}
	return geom.PolylineDist(p, s.Points) <= reach
}
