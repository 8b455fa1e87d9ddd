package geom

import (
	"github.com/chewxy/math32"
)

// Point is a position in world coordinates.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func Pt(x, y float32) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) Scale(f float32) Point { return Point{p.X * f, p.Y * f} }

// Dist returns the euclidean distance between a and b.
func Dist(a, b Point) float32 {
	return math32.Hypot(a.X-b.X, a.Y-b.Y)
}

// Lerp interpolates between a and b; t=0 gives a, t=1 gives b.
func Lerp(a, b Point, t float32) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// Smooth returns a moving-average smoothed copy of points. The first and
// last points are kept so the stroke still starts and ends where the
// pointer did. A window below 2 or fewer than 3 points returns the input
// unchanged.
func Smooth(points []Point, window int) []Point {
	if window < 2 || len(points) < 3 {
		return points
	}
	out := make([]Point, len(points))
	out[0] = points[0]
	out[len(points)-1] = points[len(points)-1]
	half := window / 2
	for i := 1; i < len(points)-1; i++ {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(points)-1 {
			hi = len(points) - 1
		}
		var sx, sy float32
		for j := lo; j <= hi; j++ {
			sx += points[j].X
			sy += points[j].Y
		}
		n := float32(hi - lo + 1)
		out[i] = Point{sx / n, sy / n}
	}
	return out
}

// SegmentDist returns the distance from p to the segment a-b.
func SegmentDist(p, a, b Point) float32 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Dist(p, Point{a.X + t*dx, a.Y + t*dy})
}

// PolylineDist returns the minimum distance from p to any segment of the
// polyline. A single-point polyline degenerates to point distance.
func PolylineDist(p Point, pts []Point) float32 {
	if len(pts) == 0 {
		return math32.Inf(1)
	}
	if len(pts) == 1 {
		return Dist(p, pts[0])
	}
	min := math32.Inf(1)
	for i := 1; i < len(pts); i++ {
		if d := SegmentDist(p, pts[i-1], pts[i]); d < min {
			min = d
		}
	}
	return min
}

// Rect is an axis-aligned box, Min <= Max on both axes.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

func RectFromCorners(a, b Point) Rect {
	return Rect{
		Min: Point{math32.Min(a.X, b.X), math32.Min(a.Y, b.Y)},
		Max: Point{math32.Max(a.X, b.X), math32.Max(a.Y, b.Y)},
	}
}

func (r Rect) Width() float32  { return r.Max.X - r.Min.X }
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Expand(pad float32) Rect {
	return Rect{
		Min: Point{r.Min.X - pad, r.Min.Y - pad},
		Max: Point{r.Max.X + pad, r.Max.Y + pad},
	}
}

func (r Rect) Union(s Rect) Rect {
	return Rect{
		Min: Point{math32.Min(r.Min.X, s.Min.X), math32.Min(r.Min.Y, s.Min.Y)},
		Max: Point{math32.Max(r.Max.X, s.Max.X), math32.Max(r.Max.Y, s.Max.Y)},
	}
}

func (r Rect) Center() Point {
	return Point{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// Corners returns the four corners in the order top-left, top-right,
// bottom-right, bottom-left.
func (r Rect) Corners() [4]Point {
	return [4]Point{
		r.Min,
		{r.Max.X, r.Min.Y},
		r.Max,
		{r.Min.X, r.Max.Y},
	}
}

// BoundsOf returns the bounding box of pts. Callers must not pass an
// empty slice.
func BoundsOf(pts []Point) Rect {
	r := Rect{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		r.Min.X = math32.Min(r.Min.X, p.X)
		r.Min.Y = math32.Min(r.Min.Y, p.Y)
		r.Max.X = math32.Max(r.Max.X, p.X)
		r.Max.Y = math32.Max(r.Max.Y, p.Y)
	}
	return r
}
