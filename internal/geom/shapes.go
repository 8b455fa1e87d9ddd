package geom

import (
	"math/rand"

	"github.com/chewxy/math32"
)

// ShapeKind selects one of the predefined shape outlines. The two defining
// points of a shape stroke are opposite corners of its bounding box.
type ShapeKind string

const (
	ShapeNone      ShapeKind = ""
	ShapeLine      ShapeKind = "line"
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeTriangle  ShapeKind = "triangle"
	ShapeDiamond   ShapeKind = "diamond"
	ShapePentagon  ShapeKind = "pentagon"
	ShapeHexagon   ShapeKind = "hexagon"
	ShapeStar      ShapeKind = "star"
	ShapeArrow     ShapeKind = "arrow"
	ShapeLightning ShapeKind = "lightning"
)

// ShapeKinds lists every drawable kind in cycling order.
var ShapeKinds = []ShapeKind{
	ShapeLine, ShapeRectangle, ShapeCircle, ShapeTriangle, ShapeDiamond,
	ShapePentagon, ShapeHexagon, ShapeStar, ShapeArrow, ShapeLightning,
}

const circleSegments = 48

// ShapeOutline converts a shape into the polylines that draw it, in world
// coordinates. a and b are the two defining corners. Closed shapes repeat
// their first point at the end; the arrow returns three open polylines
// (shaft plus two head strokes).
func ShapeOutline(kind ShapeKind, a, b Point) [][]Point {
	r := RectFromCorners(a, b)
	switch kind {
	case ShapeLine:
		return [][]Point{{a, b}}
	case ShapeRectangle:
		c := r.Corners()
		return [][]Point{{c[0], c[1], c[2], c[3], c[0]}}
	case ShapeCircle:
		return [][]Point{ellipse(r, circleSegments)}
	case ShapeTriangle:
		return [][]Point{closed(
			Point{(r.Min.X + r.Max.X) / 2, r.Min.Y},
			Point{r.Max.X, r.Max.Y},
			Point{r.Min.X, r.Max.Y},
		)}
	case ShapeDiamond:
		return [][]Point{closed(
			Point{(r.Min.X + r.Max.X) / 2, r.Min.Y},
			Point{r.Max.X, (r.Min.Y + r.Max.Y) / 2},
			Point{(r.Min.X + r.Max.X) / 2, r.Max.Y},
			Point{r.Min.X, (r.Min.Y + r.Max.Y) / 2},
		)}
	case ShapePentagon:
		return [][]Point{regularPolygon(r, 5)}
	case ShapeHexagon:
		return [][]Point{regularPolygon(r, 6)}
	case ShapeStar:
		return [][]Point{star(r)}
	case ShapeArrow:
		return arrow(a, b)
	case ShapeLightning:
		return [][]Point{lightning(r)}
	}
	return [][]Point{{a, b}}
}

func closed(pts ...Point) []Point {
	return append(pts, pts[0])
}

func ellipse(r Rect, segs int) []Point {
	cx, cy := r.Center().X, r.Center().Y
	rx, ry := r.Width()/2, r.Height()/2
	pts := make([]Point, 0, segs+1)
	for i := 0; i <= segs; i++ {
		t := 2 * math32.Pi * float32(i) / float32(segs)
		pts = append(pts, Point{cx + rx*math32.Cos(t), cy + ry*math32.Sin(t)})
	}
	return pts
}

// regularPolygon inscribes an n-gon in r with the first vertex at the top.
func regularPolygon(r Rect, n int) []Point {
	cx, cy := r.Center().X, r.Center().Y
	rx, ry := r.Width()/2, r.Height()/2
	pts := make([]Point, 0, n+1)
	for i := 0; i < n; i++ {
		t := 2*math32.Pi*float32(i)/float32(n) - math32.Pi/2
		pts = append(pts, Point{cx + rx*math32.Cos(t), cy + ry*math32.Sin(t)})
	}
	return append(pts, pts[0])
}

// star builds a five-pointed star with inner vertices at 45% of the outer
// radius.
func star(r Rect) []Point {
	cx, cy := r.Center().X, r.Center().Y
	rx, ry := r.Width()/2, r.Height()/2
	const innerRatio = 0.45
	pts := make([]Point, 0, 11)
	for i := 0; i < 10; i++ {
		t := math32.Pi*float32(i)/5 - math32.Pi/2
		fx, fy := rx, ry
		if i%2 == 1 {
			fx *= innerRatio
			fy *= innerRatio
		}
		pts = append(pts, Point{cx + fx*math32.Cos(t), cy + fy*math32.Sin(t)})
	}
	return append(pts, pts[0])
}

// arrow is a shaft from a to b plus two head strokes swept back from the
// tip. The head length tracks the shaft but is capped so short arrows stay
// readable.
func arrow(a, b Point) [][]Point {
	shaft := Dist(a, b)
	if shaft == 0 {
		return [][]Point{{a, b}}
	}
	head := shaft * 0.25
	if head > 28 {
		head = 28
	}
	ang := math32.Atan2(b.Y-a.Y, b.X-a.X)
	const spread = math32.Pi / 7
	left := Point{
		b.X - head*math32.Cos(ang-spread),
		b.Y - head*math32.Sin(ang-spread),
	}
	right := Point{
		b.X - head*math32.Cos(ang+spread),
		b.Y - head*math32.Sin(ang+spread),
	}
	return [][]Point{{a, b}, {left, b}, {right, b}}
}

// lightning is a stylised bolt; vertices are fixed fractions of the
// bounding box.
func lightning(r Rect) []Point {
	w, h := r.Width(), r.Height()
	at := func(fx, fy float32) Point {
		return Point{r.Min.X + fx*w, r.Min.Y + fy*h}
	}
	return []Point{
		at(0.55, 0), at(0.1, 0.55), at(0.4, 0.55),
		at(0.3, 1), at(0.9, 0.4), at(0.55, 0.4), at(0.75, 0),
		at(0.55, 0),
	}
}

// RoundedPolygon replaces every corner of a closed polygon (first point
// repeated at the end) with a sampled arc of the given radius, producing a
// dense polyline suitable for direct stroking. The radius is clamped to
// half of the shorter adjacent edge.
func RoundedPolygon(pts []Point, radius float32) []Point {
	if len(pts) < 4 || radius <= 0 {
		return pts
	}
	n := len(pts) - 1 // pts[n] == pts[0]
	const arcSteps = 6
	out := make([]Point, 0, n*(arcSteps+2)+1)
	for i := 0; i < n; i++ {
		prev := pts[(i+n-1)%n]
		cur := pts[i]
		next := pts[(i+1)%n]
		r := radius
		if d := Dist(prev, cur) / 2; d < r {
			r = d
		}
		if d := Dist(cur, next) / 2; d < r {
			r = d
		}
		in := towards(cur, prev, r)
		outp := towards(cur, next, r)
		out = append(out, in)
		for s := 1; s < arcSteps; s++ {
			t := float32(s) / arcSteps
			// quadratic bezier through the corner
			q := Lerp(Lerp(in, cur, t), Lerp(cur, outp, t), t)
			out = append(out, q)
		}
		out = append(out, outp)
	}
	return append(out, out[0])
}

func towards(from, to Point, d float32) Point {
	total := Dist(from, to)
	if total == 0 {
		return from
	}
	return Lerp(from, to, d/total)
}

// Jitter displaces outline vertices pseudo-randomly for a hand-drawn look.
// Long segments are subdivided first so the wobble shows along the edge,
// not only at corners. The same seed always yields the same output.
func Jitter(outline [][]Point, seed int64, amount float32) [][]Point {
	rng := rand.New(rand.NewSource(seed))
	out := make([][]Point, len(outline))
	for i, line := range outline {
		sub := subdivide(line, 24)
		j := make([]Point, len(sub))
		for k, p := range sub {
			// endpoints stay anchored so shapes keep meeting their corners
			if k == 0 || k == len(sub)-1 {
				j[k] = p
				continue
			}
			j[k] = Point{
				p.X + (rng.Float32()*2-1)*amount,
				p.Y + (rng.Float32()*2-1)*amount,
			}
		}
		out[i] = j
	}
	return out
}

// subdivide splits segments longer than maxLen into equal parts.
func subdivide(line []Point, maxLen float32) []Point {
	if len(line) < 2 {
		return line
	}
	out := make([]Point, 0, len(line)*2)
	out = append(out, line[0])
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		d := Dist(a, b)
		steps := int(d / maxLen)
		for s := 1; s <= steps; s++ {
			out = append(out, Lerp(a, b, float32(s)/float32(steps+1)))
		}
		out = append(out, b)
	}
	return out
}
