package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"InkSlate/internal/geom"
	"InkSlate/internal/input"
)

func TestSettingsDefaults(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	s := NewSettings(a.Preferences())

	tp := s.Snapshot()
	assert.Equal(t, float32(4), tp.LineWidth)
	assert.Equal(t, "#000000", tp.LineColor)
	assert.Equal(t, input.ThemeLight, tp.Theme)
	assert.Equal(t, geom.ShapeRectangle, tp.ActiveShape)
	assert.Equal(t, input.ToolPen, tp.TouchTool)
	assert.True(t, tp.HandDrawn)
	assert.True(t, tp.PressureWidths)
}

func TestSettingsPersistRoundtrip(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	s := NewSettings(a.Preferences())
	s.SetLineWidth(9)
	s.SetLineColor("#e53935")
	s.SetActiveShape(geom.ShapeStar)

	// a fresh instance over the same preferences sees the stored values
	again := NewSettings(a.Preferences())
	tp := again.Snapshot()
	assert.Equal(t, float32(9), tp.LineWidth)
	assert.Equal(t, "#e53935", tp.LineColor)
	assert.Equal(t, geom.ShapeStar, tp.ActiveShape)
}

func TestFlipThemeSwapsDefaultColorOnly(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	s := NewSettings(a.Preferences())

	// light default black flips to dark default white
	s.FlipTheme()
	assert.Equal(t, input.ThemeDark, s.Theme())
	assert.Equal(t, "#ffffff", s.LineColor())
	s.FlipTheme()
	assert.Equal(t, "#000000", s.LineColor())

	// a picked color survives the flip
	s.SetLineColor("#1e88e5")
	s.FlipTheme()
	assert.Equal(t, input.ThemeDark, s.Theme())
	assert.Equal(t, "#1e88e5", s.LineColor())
}

func TestCycleShapeWraps(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	s := NewSettings(a.Preferences())
	s.SetActiveShape(geom.ShapeKinds[len(geom.ShapeKinds)-1])
	s.CycleShape()
	assert.Equal(t, geom.ShapeKinds[0], s.Snapshot().ActiveShape)
}

func TestSettingsOnChange(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	s := NewSettings(a.Preferences())
	fired := 0
	s.SetOnChange(func() { fired++ })
	s.SetLineWidth(6)
	s.SetTouchTool(input.ToolEraser)
	assert.Equal(t, 2, fired)
}
