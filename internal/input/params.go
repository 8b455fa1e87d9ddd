package input

import (
	"InkSlate/internal/geom"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultColor is the line color a theme starts with. Flipping the theme
// swaps exactly these two literals when they are the current color; a
// color picked from the palette is left alone.
func DefaultColor(t Theme) string {
	if t == ThemeDark {
		return "#ffffff"
	}
	return "#000000"
}

// Tool is the selected touch tool, used when a contact carries no
// keyboard modifier.
type Tool string

const (
	ToolPen         Tool = "pen"
	ToolHighlighter Tool = "highlighter"
	ToolEraser      Tool = "eraser"
	ToolLaser       Tool = "laser"
	ToolShape       Tool = "shape"
	ToolPan         Tool = "pan"
)

// ToolParams is one immutable snapshot of the current tool settings,
// taken per input event. The resolver never reads live settings state.
type ToolParams struct {
	LineWidth   float32
	LineColor   string
	DashGap     float32
	Theme       Theme
	ActiveShape geom.ShapeKind
	TextSize    float32
	TouchTool   Tool

	// HandDrawn renders shapes with seeded jitter; PressureWidths enables
	// velocity/pressure simulated freehand thickness.
	HandDrawn      bool
	PressureWidths bool
}

// Keys is the modifier-key state accompanying a pointer sample.
type Keys struct {
	Erase     bool // dedicated erase key
	Laser     bool
	Highlight bool
	Shape     bool // shape key or shape tool armed
	Draw      bool // draw-with-modifier key
	Shift     bool
}

// Modifier is the resolved drawing tool for the current gesture instant.
type Modifier int

const (
	ModNone Modifier = iota
	ModFreehand
	ModDashedFreehand
	ModLine
	ModShape
	ModHighlight
	ModErase
	ModLaser
)

func (m Modifier) String() string {
	switch m {
	case ModFreehand:
		return "pen"
	case ModDashedFreehand:
		return "dashed"
	case ModLine:
		return "line"
	case ModShape:
		return "shape"
	case ModHighlight:
		return "highlight"
	case ModErase:
		return "erase"
	case ModLaser:
		return "laser"
	}
	return ""
}

// ResolveModifier maps raw input to the active modifier, in priority
// order. The boolean reports whether the shape/freehand stroke should be
// dashed.
func ResolveModifier(k Keys, tp ToolParams) (Modifier, bool) {
	switch {
	case k.Erase:
		return ModErase, false
	case k.Laser:
		return ModLaser, false
	case k.Highlight:
		return ModHighlight, false
	case k.Shape:
		return ModShape, k.Shift
	case k.Draw && k.Shift:
		return ModLine, false
	case k.Draw:
		return ModFreehand, false
	case k.Shift:
		return ModDashedFreehand, true
	}
	switch tp.TouchTool {
	case ToolHighlighter:
		return ModHighlight, false
	case ToolEraser:
		return ModErase, false
	case ToolLaser:
		return ModLaser, false
	case ToolShape:
		return ModShape, false
	}
	return ModFreehand, false
}
