package ui

import (
	"fmt"
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"InkSlate/internal/input"
	"InkSlate/internal/render"
)

// paletteSize is how many swatches the most-recently-used row shows.
const paletteSize = 6

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(render.ParseColor(s.Hex))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// --- Most-recently-used palette ---
type palette struct {
	colors []string
	box    *fyne.Container
	pick   func(hex string)
}

func newPalette(seed []string, pick func(string)) *palette {
	p := &palette{colors: seed, box: container.NewHBox(), pick: pick}
	p.rebuild()
	return p
}

func (p *palette) rebuild() {
	p.box.Objects = nil
	for _, hex := range p.colors {
		p.box.Add(newColorSwatch(hex, p.pick))
	}
	p.box.Refresh()
}

// Used bubbles a just-used color to the front, evicting the oldest.
func (p *palette) Used(hex string) {
	for i, c := range p.colors {
		if c == hex {
			if i > 0 {
				copy(p.colors[1:i+1], p.colors[:i])
				p.colors[0] = hex
				p.rebuild()
			}
			return
		}
	}
	p.colors = append([]string{hex}, p.colors...)
	if len(p.colors) > paletteSize {
		p.colors = p.colors[:paletteSize]
	}
	p.rebuild()
}

// --- The Main Toolbar ---
func NewToolbar(board *BoardWidget, settings *Settings, win fyne.Window) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			settings.SetTouchTool(input.ToolPen)
		}), // Pen
		widget.NewToolbarAction(theme.ColorPaletteIcon(), func() {
			settings.SetTouchTool(input.ToolHighlighter)
		}), // Highlighter
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			settings.SetTouchTool(input.ToolEraser)
		}), // Eraser
		widget.NewToolbarAction(theme.VisibilityIcon(), func() {
			settings.SetTouchTool(input.ToolLaser)
		}), // Laser pointer
		widget.NewToolbarAction(theme.RadioButtonIcon(), func() {
			settings.SetTouchTool(input.ToolShape)
		}), // Shape
		widget.NewToolbarAction(theme.MoveUpIcon(), func() {
			settings.SetTouchTool(input.ToolPan)
		}), // Pan
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() {
			settings.CycleShape()
		}), // Next shape kind
	)

	pal := newPalette([]string{
		settings.LineColor(), "#e53935", "#43a047", "#1e88e5", "#fdd835", "#8e24aa",
	}, settings.SetLineColor)
	board.OnColorUsed = pal.Used

	strokeSlider := widget.NewSlider(1.0, 30.0)
	strokeSlider.SetValue(4.0)
	strokeSlider.OnChanged = func(val float64) {
		settings.SetLineWidth(float32(val))
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), strokeSlider)

	zoomLabel := widget.NewLabel("100%")
	board.OnZoomChanged = func(scale float32) {
		zoomLabel.SetText(fmt.Sprintf("%d%%", int(scale*100+0.5)))
	}

	history := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), board.Undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), board.Redo),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomOutIcon(), func() { board.ZoomStep(1 / 1.25) }),
		widget.NewToolbarAction(theme.ZoomFitIcon(), board.CenterView),
		widget.NewToolbarAction(theme.ZoomInIcon(), func() { board.ZoomStep(1.25) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ColorChromaticIcon(), func() {
			settings.FlipTheme()
		}), // Light/dark
		widget.NewToolbarAction(theme.GridIcon(), board.ToggleGrid),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.MediaPhotoIcon(), func() {
			exportPNG(board, win)
		}),
		widget.NewToolbarAction(theme.DocumentIcon(), func() {
			exportPDF(board, win)
		}),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			saveBoardFile(board, win)
		}),
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() {
			openBoardFile(board, win)
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			confirmClear(board, win)
		}),
	)

	slots := widget.NewSelect([]string{
		"1", "2", "3", "4", "5", "6", "7", "8", "9",
	}, func(v string) {
		board.SwitchSlot(int(v[0] - '0'))
	})
	slots.SetSelectedIndex(0)

	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		pal.box,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		widget.NewSeparator(),
		history,
		layout.NewSpacer(),
		widget.NewLabel("Slot:"),
		slots,
		zoomLabel,
	)
}

func confirmClear(board *BoardWidget, win fyne.Window) {
	n := board.StrokeCount()
	if n == 0 {
		return
	}
	msg := fmt.Sprintf("Remove all %d strokes from this slot?", n)
	dialog.ShowConfirm("Clear slot", msg, func(ok bool) {
		if ok {
			board.Clear()
		}
	}, win)
}

func exportPNG(board *BoardWidget, win fyne.Window) {
	img := board.ExportImage(false)
	if img == nil {
		dialog.ShowInformation("Export", "Nothing to export.", win)
		return
	}
	dialog.ShowFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		defer uc.Close()
		if err := render.WritePNG(uc, img); err != nil {
			log.Printf("[ui] png export: %v", err)
			dialog.ShowError(err, win)
		}
	}, win)
}

func saveBoardFile(board *BoardWidget, win fyne.Window) {
	dialog.ShowFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		defer uc.Close()
		if err := board.SaveTo(uc); err != nil {
			log.Printf("[ui] board save: %v", err)
			dialog.ShowError(err, win)
		}
	}, win)
}

func openBoardFile(board *BoardWidget, win fyne.Window) {
	dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		defer uc.Close()
		if err := board.LoadFrom(uc); err != nil {
			log.Printf("[ui] board load: %v", err)
			dialog.ShowError(err, win)
		}
	}, win)
}

func exportPDF(board *BoardWidget, win fyne.Window) {
	if board.StrokeCount() == 0 {
		dialog.ShowInformation("Export", "Nothing to export.", win)
		return
	}
	dialog.ShowFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil || uc == nil {
			return
		}
		path := uc.URI().Path()
		uc.Close()
		if err := board.ExportPDF(path); err != nil {
			dialog.ShowError(err, win)
		}
	}, win)
}
