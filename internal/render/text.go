package render

import (
	"log"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"InkSlate/internal/geom"
	"InkSlate/internal/state"
)

// Measurer caches font faces and answers the text-extent questions the
// engine asks: caret columns, text bounding boxes, line heights. World
// units equal pixels at scale 1, so the same faces serve measurement and
// drawing.
type Measurer struct {
	ft    *opentype.Font
	faces map[int]font.Face
}

func NewMeasurer() *Measurer {
	ft, err := opentype.Parse(goregular.TTF)
	if err != nil {
		// goregular is embedded; parse failure means a corrupted binary
		log.Printf("[render] font parse failed: %v", err)
	}
	return &Measurer{ft: ft, faces: make(map[int]font.Face)}
}

// Face returns a cached face for a pixel size, quantized to whole pixels.
func (m *Measurer) Face(px float32) font.Face {
	size := int(px + 0.5)
	if size < 4 {
		size = 4
	}
	if f, ok := m.faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(m.ft, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("[render] face %dpx: %v", size, err)
		return nil
	}
	m.faces[size] = f
	return f
}

func (m *Measurer) StringWidth(s string, px float32) float32 {
	f := m.Face(px)
	if f == nil {
		return 0
	}
	return float32(font.MeasureString(f, s)) / 64
}

func (m *Measurer) LineHeight(px float32) float32 {
	f := m.Face(px)
	if f == nil {
		return px * 1.2
	}
	return float32(f.Metrics().Height) / 64
}

// textSize is the effective pixel size of a text stroke at world scale 1.
func textSize(s *state.Stroke) float32 {
	size := s.FontSize
	if size <= 0 {
		size = 24
	}
	if s.FontScale > 0 {
		size *= s.FontScale
	}
	return size
}

// TextBox returns the world-space box of a text stroke: anchor at the
// top-left, extent from measured line widths and line height.
func (m *Measurer) TextBox(s *state.Stroke) geom.Rect {
	size := textSize(s)
	lh := m.LineHeight(size)
	var w float32
	lines := strings.Split(s.Text, "\n")
	for _, line := range lines {
		if lw := m.StringWidth(line, size); lw > w {
			w = lw
		}
	}
	a := s.Points[0]
	return geom.Rect{Min: a, Max: geom.Point{X: a.X + w, Y: a.Y + lh*float32(len(lines))}}
}
