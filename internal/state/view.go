package state

import (
	"github.com/chewxy/math32"

	"InkSlate/internal/geom"
)

const (
	MinScale float32 = 0.1
	MaxScale float32 = 10
)

// View is the camera of one slot: screen = world*Scale + Offset.
type View struct {
	OffsetX float32 `json:"offset_x"`
	OffsetY float32 `json:"offset_y"`
	Scale   float32 `json:"scale"`
}

func DefaultView() View { return View{Scale: 1} }

func (v View) WorldToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*v.Scale + v.OffsetX, Y: p.Y*v.Scale + v.OffsetY}
}

func (v View) ScreenToWorld(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - v.OffsetX) / v.Scale, Y: (p.Y - v.OffsetY) / v.Scale}
}

func (v *View) PanBy(dx, dy float32) {
	v.OffsetX += dx
	v.OffsetY += dy
}

func clampScale(s float32) float32 {
	return math32.Max(MinScale, math32.Min(MaxScale, s))
}

// ZoomAround scales the view by factor keeping the world point under the
// given screen point fixed.
func (v *View) ZoomAround(factor float32, screen geom.Point) {
	newScale := clampScale(v.Scale * factor)
	ratio := newScale / v.Scale
	v.OffsetX = screen.X - ratio*(screen.X-v.OffsetX)
	v.OffsetY = screen.Y - ratio*(screen.Y-v.OffsetY)
	v.Scale = newScale
}

// FitView returns the view that shows bounds centered in a vw x vh
// viewport with the given padding, scale clamped to the usual range.
func FitView(bounds geom.Rect, vw, vh, pad float32) View {
	w := bounds.Width() + 2*pad
	h := bounds.Height() + 2*pad
	scale := float32(1)
	if w > 0 && h > 0 {
		scale = clampScale(math32.Min(vw/w, vh/h))
	}
	c := bounds.Center()
	return View{
		OffsetX: vw/2 - c.X*scale,
		OffsetY: vh/2 - c.Y*scale,
		Scale:   scale,
	}
}

// EaseInOut is the cubic smoothstep curve used for view transitions.
func EaseInOut(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// ViewAnimation interpolates a view towards a target over a fixed
// duration; it is stepped once per frame tick.
type ViewAnimation struct {
	From, To View
	Elapsed  float32 // seconds
	Duration float32
}

// Step advances the animation by dt seconds and returns the interpolated
// view plus whether the animation has converged.
func (a *ViewAnimation) Step(dt float32) (View, bool) {
	a.Elapsed += dt
	t := EaseInOut(a.Elapsed / a.Duration)
	if a.Elapsed >= a.Duration {
		return a.To, true
	}
	return View{
		OffsetX: a.From.OffsetX + (a.To.OffsetX-a.From.OffsetX)*t,
		OffsetY: a.From.OffsetY + (a.To.OffsetY-a.From.OffsetY)*t,
		Scale:   a.From.Scale + (a.To.Scale-a.From.Scale)*t,
	}, false
}
