package input

import (
	"math/rand"
	"time"

	"github.com/chewxy/math32"

	"InkSlate/internal/geom"
	"InkSlate/internal/state"
)

// GestureState is the coarse state of the input machine.
type GestureState int

const (
	StateIdle GestureState = iota
	StateDrawing
	StatePanning
	StatePinching
)

// MinShapeSize is the minimum bounding box edge, in world units, below
// which a finalized shape or straight line counts as an accidental tap
// and is discarded.
const MinShapeSize float32 = 8

// Width-simulation constants: a sample blends an inverse-speed factor
// with reported pressure, then is low-pass filtered 60/40 against the
// previous width.
const (
	widthSpeedBase  = 1.2
	widthSpeedSlope = 0.12 // per screen px/ms
	widthMin        = 0.3
	widthBlendOld   = 0.6
	defaultPressure = 0.5
)

// Resolver turns raw pointer samples plus a per-event tool snapshot into
// stroke store, view, eraser and trail mutations. One instance serves the
// whole widget; store and view are looked up per event so slot switches
// take effect immediately.
type Resolver struct {
	store func() *state.Store
	view  func() *state.View

	Eraser *Eraser
	Laser  *Trail

	textBox func(*state.Stroke) geom.Rect

	gstate    GestureState
	mod       Modifier
	currentID string
	dashed    bool

	lastScreen geom.Point
	lastTime   time.Time
	lastWidth  float32
	dragged    bool

	pinchDist float32
	pinchMid  geom.Point

	// onChange marks the frame dirty; onViewChanged additionally feeds
	// the zoom-changed notification.
	onChange      func()
	onViewChanged func()
}

func NewResolver(store func() *state.Store, view func() *state.View, textBox func(*state.Stroke) geom.Rect) *Resolver {
	return &Resolver{
		store:   store,
		view:    view,
		Eraser:  NewEraser(),
		Laser:   &Trail{},
		textBox: textBox,
	}
}

func (r *Resolver) SetOnChange(fn func())      { r.onChange = fn }
func (r *Resolver) SetOnViewChanged(fn func()) { r.onViewChanged = fn }

func (r *Resolver) State() GestureState { return r.gstate }
func (r *Resolver) Modifier() Modifier  { return r.mod }

// CurrentStrokeID is the in-progress stroke, excluded from the completed
// stroke cache while the gesture lasts.
func (r *Resolver) CurrentStrokeID() string { return r.currentID }

func (r *Resolver) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}

func (r *Resolver) viewChanged() {
	if r.onViewChanged != nil {
		r.onViewChanged()
	}
	r.changed()
}

// PointerDown starts a gesture. pan selects the panning state regardless
// of modifiers (secondary button or pan tool).
func (r *Resolver) PointerDown(screen geom.Point, pressure float32, pan bool, k Keys, tp ToolParams) {
	if r.gstate != StateIdle {
		r.finishGesture(tp)
	}
	r.lastScreen = screen
	r.lastTime = time.Now()
	r.dragged = false
	if pan || tp.TouchTool == ToolPan {
		r.gstate = StatePanning
		return
	}
	mod, dashed := ResolveModifier(k, tp)
	r.gstate = StateDrawing
	r.beginModifier(mod, dashed, screen, pressure, tp)
}

// PointerMove continues the gesture. The modifier is re-resolved on every
// sample; a change finalizes the current stroke and starts a new one, so a
// tool switch never rewrites already recorded points.
func (r *Resolver) PointerMove(screen geom.Point, pressure float32, k Keys, tp ToolParams) {
	now := time.Now()
	dt := now.Sub(r.lastTime)
	switch r.gstate {
	case StatePanning:
		r.view().PanBy(screen.X-r.lastScreen.X, screen.Y-r.lastScreen.Y)
		r.viewChanged()
	case StateDrawing:
		mod, dashed := ResolveModifier(k, tp)
		if mod != r.mod {
			r.finalizeStroke(tp)
			r.beginModifier(mod, dashed, screen, pressure, tp)
		} else {
			r.extendStroke(screen, pressure, dt, tp)
		}
		r.dragged = true
		r.changed()
	default:
		return
	}
	r.lastScreen = screen
	r.lastTime = now
}

// PointerUp finalizes the gesture.
func (r *Resolver) PointerUp(tp ToolParams) {
	r.finishGesture(tp)
}

func (r *Resolver) finishGesture(tp ToolParams) {
	if r.gstate == StateDrawing {
		r.finalizeStroke(tp)
	}
	r.gstate = StateIdle
	r.mod = ModNone
	r.changed()
}

// PinchStart begins a two-contact zoom/pan gesture, aborting any drawing
// the first contact may have started.
func (r *Resolver) PinchStart(a, b geom.Point) {
	if r.gstate == StateDrawing && r.currentID != "" {
		r.store().AbortLast(r.currentID)
		r.currentID = ""
	}
	r.gstate = StatePinching
	r.pinchDist = geom.Dist(a, b)
	r.pinchMid = geom.Lerp(a, b, 0.5)
}

func (r *Resolver) PinchMove(a, b geom.Point) {
	if r.gstate != StatePinching {
		return
	}
	dist := geom.Dist(a, b)
	mid := geom.Lerp(a, b, 0.5)
	v := r.view()
	v.PanBy(mid.X-r.pinchMid.X, mid.Y-r.pinchMid.Y)
	if r.pinchDist > 0 && dist > 0 {
		v.ZoomAround(dist/r.pinchDist, mid)
	}
	r.pinchDist = dist
	r.pinchMid = mid
	r.viewChanged()
}

func (r *Resolver) PinchEnd() {
	if r.gstate == StatePinching {
		r.gstate = StateIdle
	}
}

// Cancel discards everything in progress: the unfinalized stroke, pending
// erase marks, and the gesture state. Fired on focus loss, Escape and
// slot switches.
func (r *Resolver) Cancel() {
	if r.currentID != "" {
		r.store().AbortLast(r.currentID)
		r.currentID = ""
	}
	r.Eraser.Cancel()
	r.Laser.Clear()
	r.gstate = StateIdle
	r.mod = ModNone
	r.changed()
}

func (r *Resolver) beginModifier(mod Modifier, dashed bool, screen geom.Point, pressure float32, tp ToolParams) {
	r.mod = mod
	r.dashed = dashed
	world := r.view().ScreenToWorld(screen)
	switch mod {
	case ModErase:
		r.Eraser.Begin()
		r.eraseAt(world)
		return
	case ModLaser:
		r.Laser.Add(world, trailGapScreen/r.view().Scale)
		return
	}

	s := state.NewStroke(tp.LineColor, tp.LineWidth)
	s.Points = []geom.Point{world}
	switch mod {
	case ModDashedFreehand:
		s.Style = state.StyleDashed
		s.DashGap = tp.DashGap
	case ModLine:
		s.Shape = geom.ShapeLine
		s.Points = append(s.Points, world)
	case ModShape:
		s.Shape = tp.ActiveShape
		if s.Shape == geom.ShapeNone {
			s.Shape = geom.ShapeRectangle
		}
		s.Points = append(s.Points, world)
		if dashed {
			s.Style = state.StyleDashed
			s.DashGap = tp.DashGap
		}
		if tp.HandDrawn {
			s.Seed = rand.Int63()
		}
	case ModHighlight:
		s.Highlight = true
	case ModFreehand:
		if tp.PressureWidths {
			r.lastWidth = 1
			s.Widths = []float32{1}
		}
	}
	r.currentID = s.ID
	r.store().Append(s)
}

func (r *Resolver) extendStroke(screen geom.Point, pressure float32, dt time.Duration, tp ToolParams) {
	world := r.view().ScreenToWorld(screen)
	switch r.mod {
	case ModErase:
		r.eraseAt(world)
		return
	case ModLaser:
		r.Laser.Add(world, trailGapScreen/r.view().Scale)
		return
	}
	s := r.store().ByID(r.currentID)
	if s == nil {
		return
	}
	switch r.mod {
	case ModLine, ModShape:
		s.Points[1] = world
	default:
		s.Points = append(s.Points, world)
		if s.Widths != nil {
			s.Widths = append(s.Widths, r.widthSample(screen, pressure, dt))
		}
	}
}

// widthSample blends an inverse-speed factor with pen pressure and
// low-pass filters against the previous width to avoid jitter.
func (r *Resolver) widthSample(screen geom.Point, pressure float32, dt time.Duration) float32 {
	ms := float32(dt.Milliseconds())
	if ms < 1 {
		ms = 1
	}
	speed := geom.Dist(screen, r.lastScreen) / ms
	speedFactor := math32.Max(widthMin, math32.Min(widthSpeedBase, widthSpeedBase-speed*widthSpeedSlope))
	if pressure <= 0 {
		pressure = defaultPressure
	}
	sample := 0.5*speedFactor + pressure
	w := widthBlendOld*r.lastWidth + (1-widthBlendOld)*sample
	r.lastWidth = w
	return w
}

func (r *Resolver) eraseAt(world geom.Point) {
	v := r.view()
	r.Eraser.EraseAt(world, r.store().Strokes(), v.Scale, r.textBox)
}

// finalizeStroke applies the finalization rules: undersized shapes and
// lines are discarded, pending erases are committed as one action.
func (r *Resolver) finalizeStroke(tp ToolParams) {
	switch r.mod {
	case ModErase:
		r.Eraser.Confirm(r.store())
		return
	case ModLaser:
		return
	case ModLine, ModShape:
		s := r.store().ByID(r.currentID)
		if s != nil {
			b := s.Bounds()
			if b.Width() < MinShapeSize && b.Height() < MinShapeSize {
				r.store().AbortLast(r.currentID)
			}
		}
	}
	r.currentID = ""
}
