package render

import (
	"image"
	"image/png"
	"io"

	"github.com/chewxy/math32"

	"InkSlate/internal/geom"
	"InkSlate/internal/state"
)

// ExportImage renders all strokes into an offscreen surface sized to the
// content's bounding box plus padding proportional to the thickest
// stroke. The transparent variant leaves the background unfilled. Returns
// nil when there is nothing to export.
func (p *Pipeline) ExportImage(strokes []*state.Stroke, dark, transparent bool) *image.RGBA {
	bounds, ok := p.ExportBounds(strokes)
	if !ok {
		return nil
	}
	var maxWidth float32 = 1
	for _, s := range strokes {
		w := s.LineWidth
		if s.Highlight {
			w *= highlightWiden
		}
		maxWidth = math32.Max(maxWidth, w)
	}
	pad := math32.Max(16, maxWidth*2)

	w := int(bounds.Width()+2*pad) + 1
	h := int(bounds.Height()+2*pad) + 1
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	pt := NewPainter(img, p.m)
	if !transparent {
		bg := lightBackground
		if dark {
			bg = darkBackground
		}
		pt.Fill(bg)
	}

	view := state.View{
		OffsetX: pad - bounds.Min.X,
		OffsetY: pad - bounds.Min.Y,
		Scale:   1,
	}
	for _, s := range strokes {
		p.drawStroke(pt, s, view, 1)
	}
	return img
}

// WritePNG encodes an exported image.
func WritePNG(w io.Writer, img *image.RGBA) error {
	return png.Encode(w, img)
}

// ExportBounds is the content box, in world units, an export covers
// before padding. False when there is nothing to export.
func (p *Pipeline) ExportBounds(strokes []*state.Stroke) (geom.Rect, bool) {
	return state.ContentBounds(strokes, p.m.TextBox)
}
