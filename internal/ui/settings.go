package ui

import (
	"fyne.io/fyne/v2"

	"InkSlate/internal/geom"
	"InkSlate/internal/input"
)

// Settings is the tool-parameter provider: the single writable home of
// the current tool state. The engine never reads it live; every input
// event gets an immutable Snapshot instead.
type Settings struct {
	prefs fyne.Preferences

	lineWidth   float32
	lineColor   string
	dashGap     float32
	theme       input.Theme
	activeShape geom.ShapeKind
	textSize    float32
	touchTool   input.Tool
	handDrawn   bool
	pressure    bool

	onChange func()
}

func NewSettings(prefs fyne.Preferences) *Settings {
	s := &Settings{
		prefs:       prefs,
		lineWidth:   float32(prefs.FloatWithFallback("tool/width", 4)),
		dashGap:     float32(prefs.FloatWithFallback("tool/dashgap", 10)),
		textSize:    float32(prefs.FloatWithFallback("tool/textsize", 24)),
		theme:       input.Theme(prefs.StringWithFallback("tool/theme", string(input.ThemeLight))),
		activeShape: geom.ShapeKind(prefs.StringWithFallback("tool/shape", string(geom.ShapeRectangle))),
		touchTool:   input.Tool(prefs.StringWithFallback("tool/touch", string(input.ToolPen))),
		handDrawn:   prefs.BoolWithFallback("tool/handdrawn", true),
		pressure:    prefs.BoolWithFallback("tool/pressure", true),
	}
	s.lineColor = prefs.StringWithFallback("tool/color", input.DefaultColor(s.theme))
	return s
}

func (s *Settings) SetOnChange(fn func()) { s.onChange = fn }

func (s *Settings) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Snapshot freezes the current parameters for one input event.
func (s *Settings) Snapshot() input.ToolParams {
	return input.ToolParams{
		LineWidth:      s.lineWidth,
		LineColor:      s.lineColor,
		DashGap:        s.dashGap,
		Theme:          s.theme,
		ActiveShape:    s.activeShape,
		TextSize:       s.textSize,
		TouchTool:      s.touchTool,
		HandDrawn:      s.handDrawn,
		PressureWidths: s.pressure,
	}
}

func (s *Settings) Theme() input.Theme { return s.theme }
func (s *Settings) LineColor() string  { return s.lineColor }

func (s *Settings) SetLineWidth(w float32) {
	s.lineWidth = w
	s.prefs.SetFloat("tool/width", float64(w))
	s.changed()
}

func (s *Settings) SetLineColor(c string) {
	s.lineColor = c
	s.prefs.SetString("tool/color", c)
	s.changed()
}

func (s *Settings) SetTextSize(v float32) {
	s.textSize = v
	s.prefs.SetFloat("tool/textsize", float64(v))
	s.changed()
}

func (s *Settings) SetTouchTool(t input.Tool) {
	s.touchTool = t
	s.prefs.SetString("tool/touch", string(t))
	s.changed()
}

func (s *Settings) SetActiveShape(k geom.ShapeKind) {
	s.activeShape = k
	s.prefs.SetString("tool/shape", string(k))
	s.changed()
}

// CycleShape advances to the next shape kind in order.
func (s *Settings) CycleShape() {
	for i, k := range geom.ShapeKinds {
		if k == s.activeShape {
			s.SetActiveShape(geom.ShapeKinds[(i+1)%len(geom.ShapeKinds)])
			return
		}
	}
	s.SetActiveShape(geom.ShapeKinds[0])
}

// FlipTheme toggles dark/light. The line color is swapped only when it
// equals the outgoing theme's literal default, so a picked color
// survives the flip.
func (s *Settings) FlipTheme() {
	old := s.theme
	if old == input.ThemeDark {
		s.theme = input.ThemeLight
	} else {
		s.theme = input.ThemeDark
	}
	if s.lineColor == input.DefaultColor(old) {
		s.lineColor = input.DefaultColor(s.theme)
		s.prefs.SetString("tool/color", s.lineColor)
	}
	s.prefs.SetString("tool/theme", string(s.theme))
	s.changed()
}
