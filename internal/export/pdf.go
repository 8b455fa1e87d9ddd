package export

import (
	"strings"

	"github.com/jung-kurt/gofpdf"

	"InkSlate/internal/geom"
	"InkSlate/internal/state"
)

// pxPerMM converts world units to millimetres on the page.
const pxPerMM = 3.0

// PDF writes all strokes of a slot as vector line work onto a single A4
// page, offset so the content's bounding box starts at the top-left
// margin. Text strokes are placed as real text.
func PDF(path string, strokes []*state.Stroke, textBox func(*state.Stroke) geom.Rect) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()

	bounds, ok := state.ContentBounds(strokes, textBox)
	if !ok {
		return p.OutputFileAndClose(path)
	}
	const margin = 10.0
	toPage := func(q geom.Point) (float64, float64) {
		return margin + float64(q.X-bounds.Min.X)/pxPerMM,
			margin + float64(q.Y-bounds.Min.Y)/pxPerMM
	}

	for _, s := range strokes {
		r, g, b := splitRGB(s.Color)
		p.SetDrawColor(r, g, b)
		p.SetTextColor(r, g, b)
		p.SetLineWidth(float64(s.LineWidth) / pxPerMM)

		switch s.Kind() {
		case state.KindText:
			size := s.FontSize
			if size <= 0 {
				size = 24
			}
			if s.FontScale > 0 {
				size *= s.FontScale
			}
			p.SetFont("Helvetica", "", float64(size)/pxPerMM*2.83)
			x, y := toPage(s.Points[0])
			for i, line := range strings.Split(s.Text, "\n") {
				p.Text(x, y+float64(i+1)*float64(size)*1.2/pxPerMM, line)
			}
		case state.KindShape:
			for _, line := range geom.ShapeOutline(s.Shape, s.Points[0], s.Points[1]) {
				drawPolyline(p, line, toPage)
			}
		case state.KindDot:
			x, y := toPage(s.Points[0])
			p.Circle(x, y, float64(s.LineWidth)/pxPerMM, "F")
		default:
			drawPolyline(p, s.Points, toPage)
		}
	}
	return p.OutputFileAndClose(path)
}

func drawPolyline(p *gofpdf.Fpdf, pts []geom.Point, toPage func(geom.Point) (float64, float64)) {
	for i := 1; i < len(pts); i++ {
		x1, y1 := toPage(pts[i-1])
		x2, y2 := toPage(pts[i])
		p.Line(x1, y1, x2, y2)
	}
}

// splitRGB decodes a #rrggbb color into 0-255 channels; unparseable
// values draw black.
func splitRGB(c string) (int, int, int) {
	c = strings.TrimPrefix(strings.TrimSpace(c), "#")
	if len(c) < 6 {
		return 0, 0, 0
	}
	hex := func(s string) int {
		v := 0
		for _, r := range s {
			v *= 16
			switch {
			case r >= '0' && r <= '9':
				v += int(r - '0')
			case r >= 'a' && r <= 'f':
				v += int(r-'a') + 10
			case r >= 'A' && r <= 'F':
				v += int(r-'A') + 10
			}
		}
		return v
	}
	return hex(c[0:2]), hex(c[2:4]), hex(c[4:6])
}
