package ui

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"InkSlate/internal/export"
	"InkSlate/internal/geom"
	"InkSlate/internal/input"
	"InkSlate/internal/render"
	"InkSlate/internal/state"
)

const (
	tickInterval  = 33 * time.Millisecond
	saveQuiescent = 800 * time.Millisecond
	viewAnimSecs  = 0.3
	zoomWheelStep = 1.1
	fitPadding    = 48

	// tapSlopScreen bounds, in screen pixels, how far apart the two clicks
	// of a double-click may land and still count as the same spot.
	tapSlopScreen = 12
)

// BoardWidget hosts the drawing engine inside a Fyne widget: it feeds raw
// pointer and key events to the gesture resolver, runs the per-frame tick
// for trails, caret blink and view animation, and paints through the
// render pipeline into a raster canvas object.
type BoardWidget struct {
	widget.BaseWidget

	slots     *state.SlotManager
	settings  *Settings
	resolver  *input.Resolver
	editor    *input.TextEditor
	selection *input.Selection
	pipeline  *render.Pipeline

	raster *canvas.Raster
	window fyne.Window

	held        map[fyne.KeyName]bool
	selDragging bool
	needsPaint  bool
	ticking     bool
	stopTick    chan struct{}
	viewAnim    *state.ViewAnimation
	lastTick    time.Time
	showGrid    bool

	saveTimer *time.Timer

	// Outbound notifications, wired by the surrounding application.
	OnZoomChanged func(scale float32)
	OnColorUsed   func(color string)
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)
var _ desktop.Keyable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ fyne.DoubleTappable = (*BoardWidget)(nil)

func NewBoardWidget(settings *Settings, kv state.KV) *BoardWidget {
	b := &BoardWidget{
		settings: settings,
		editor:   &input.TextEditor{},
		held:     make(map[fyne.KeyName]bool),
		showGrid: true,
		lastTick: time.Now(),
	}
	b.pipeline = render.NewPipeline(render.NewMeasurer())
	textBox := b.pipeline.Measurer().TextBox
	b.selection = input.NewSelection(textBox)

	b.slots = state.NewSlotManager(state.NewPersist(kv))
	b.slots.SetConfigure(func(st *state.Store) {
		st.SetOnMutate(func() {
			b.pipeline.Invalidate()
			b.requestPaint()
			b.requestSave()
		})
		st.SetOnHistory(func() {
			// the stroke identity under an edit or selection may be about
			// to disappear
			b.editor.Abort()
			b.selection.Clear()
		})
	})
	b.slots.SetOnSwitch(func() {
		b.cancelAll()
		b.flushNow()
	})
	b.resolver = input.NewResolver(b.slots.Store, b.slots.View, textBox)
	b.resolver.SetOnChange(b.requestPaint)
	b.resolver.SetOnViewChanged(b.notifyZoom)

	settings.SetOnChange(b.requestPaint)

	b.raster = canvas.NewRaster(b.drawFrame)
	b.ExtendBaseWidget(b)
	return b
}

// SetWindow hands the widget its host window for clipboard access.
func (b *BoardWidget) SetWindow(w fyne.Window) { b.window = w }

// --- frame scheduling -------------------------------------------------

func (b *BoardWidget) requestPaint() { b.needsPaint = true }

// tickLoop is the single per-frame driver: it advances every continuous
// effect, each guarded by a plain still-running check, and coalesces all
// paint requests into at most one refresh per tick.
func (b *BoardWidget) tickLoop(stop chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fyne.Do(b.tick)
		}
	}
}

func (b *BoardWidget) tick() {
	now := time.Now()
	dt := float32(now.Sub(b.lastTick).Seconds())
	b.lastTick = now

	if b.viewAnim != nil {
		v, done := b.viewAnim.Step(dt)
		*b.slots.View() = v
		if done {
			b.viewAnim = nil
		}
		b.notifyZoom()
	}
	// trails decay on every tick, mid-gesture included, so they visually
	// catch up with a stationary cursor
	if len(b.resolver.Eraser.TrailPoints()) > 0 {
		b.resolver.Eraser.DecayTick()
		b.requestPaint()
	}
	if len(b.resolver.Laser.Points()) > 0 {
		b.resolver.Laser.Decay()
		b.requestPaint()
	}
	if b.editor.Active() && b.editor.BlinkTick() {
		b.requestPaint()
	}
	if b.needsPaint {
		b.needsPaint = false
		b.raster.Refresh()
	}
}

func (b *BoardWidget) notifyZoom() {
	b.requestPaint()
	if b.OnZoomChanged != nil {
		b.OnZoomChanged(b.slots.View().Scale)
	}
}

// --- persistence debounce ---------------------------------------------

func (b *BoardWidget) requestSave() {
	if b.saveTimer != nil {
		b.saveTimer.Stop()
	}
	b.saveTimer = time.AfterFunc(saveQuiescent, func() {
		fyne.Do(b.flushNow)
	})
}

func (b *BoardWidget) flushNow() {
	if b.saveTimer != nil {
		b.saveTimer.Stop()
		b.saveTimer = nil
	}
	b.slots.Flush()
}

// --- pointer input -----------------------------------------------------

func (b *BoardWidget) keys() input.Keys {
	return input.Keys{
		Erase:     b.held[fyne.KeyE],
		Laser:     b.held[fyne.KeyL],
		Highlight: b.held[fyne.KeyH],
		Shape:     b.held[fyne.KeyS],
		Draw:      b.held[fyne.KeyD],
		Shift:     b.held[desktop.KeyShiftLeft] || b.held[desktop.KeyShiftRight],
	}
}

func (b *BoardWidget) ctrlHeld() bool {
	return b.held[desktop.KeyControlLeft] || b.held[desktop.KeyControlRight] ||
		b.held[desktop.KeySuperLeft] || b.held[desktop.KeySuperRight]
}

func (b *BoardWidget) modifierKeyHeld() bool {
	k := b.keys()
	return k.Erase || k.Laser || k.Highlight || k.Shape || k.Draw || k.Shift
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(b); c != nil {
		c.Focus(b)
	}
	pos := geom.Pt(e.Position.X, e.Position.Y)
	tp := b.settings.Snapshot()
	view := b.slots.View()
	world := view.ScreenToWorld(pos)

	if b.editor.Active() {
		// a click outside the composition commits it; the click itself
		// does not start a gesture
		b.commitEditor()
		return
	}

	pan := e.Button == desktop.MouseButtonSecondary
	if !pan && !b.modifierKeyHeld() && tp.TouchTool == input.ToolPen {
		if s := b.selection.HitTest(b.slots.Store().Strokes(), world, view.Scale); s != nil {
			b.selection.Select(s.ID)
			b.selDragging = b.selection.BeginDrag(s, world, view.Scale)
			b.requestPaint()
			return
		}
		if b.selection.Selected() != "" {
			b.selection.Clear()
			b.requestPaint()
		}
	}
	b.resolver.PointerDown(pos, 0, pan, b.keys(), tp)
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	pos := geom.Pt(e.Position.X, e.Position.Y)
	if b.selDragging {
		view := b.slots.View()
		s := b.slots.Store().ByID(b.selection.Selected())
		b.selection.DragTo(s, view.ScreenToWorld(pos))
		b.pipeline.Invalidate()
		b.requestPaint()
		return
	}
	b.resolver.PointerMove(pos, 0, b.keys(), b.settings.Snapshot())
}

func (b *BoardWidget) DragEnd() {}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if b.selDragging {
		b.selDragging = false
		s := b.slots.Store().ByID(b.selection.Selected())
		b.selection.EndDrag(b.slots.Store(), s)
		b.requestPaint()
		return
	}
	wasDrawing := b.resolver.State() == input.StateDrawing
	tp := b.settings.Snapshot()
	b.resolver.PointerUp(tp)
	if wasDrawing && b.OnColorUsed != nil {
		b.OnColorUsed(tp.LineColor)
	}
	b.requestSave()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	view := b.slots.View()
	world := view.ScreenToWorld(geom.Pt(e.Position.X, e.Position.Y))
	if b.selection.Hover(b.slots.Store().Strokes(), world, view.Scale) {
		b.requestPaint()
	}
}

func (b *BoardWidget) MouseOut() {}

func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	factor := float32(zoomWheelStep)
	if e.Scrolled.DY < 0 {
		factor = 1 / zoomWheelStep
	}
	b.slots.View().ZoomAround(factor, geom.Pt(e.Position.X, e.Position.Y))
	b.notifyZoom()
}

// DoubleTapped starts text composition: on an existing text stroke it
// places the caret at the clicked character, elsewhere it opens a new
// composition anchored at the click point.
func (b *BoardWidget) DoubleTapped(e *fyne.PointEvent) {
	view := b.slots.View()
	world := view.ScreenToWorld(geom.Pt(e.Position.X, e.Position.Y))
	b.resolver.Cancel()
	b.dropTapDots(world)
	b.selection.Clear()
	m := b.pipeline.Measurer()

	strokes := b.slots.Store().Strokes()
	for i := len(strokes) - 1; i >= 0; i-- {
		s := strokes[i]
		if s.Kind() != state.KindText {
			continue
		}
		box := m.TextBox(s)
		if !box.Contains(world) {
			continue
		}
		size := effectiveTextSize(s)
		local := world.Sub(s.Points[0])
		caret := input.CaretFromClick(s.Text, local, m.LineHeight(size), func(sub string) float32 {
			return m.StringWidth(sub, size)
		})
		b.editor.StartEdit(s, caret)
		b.pipeline.Invalidate()
		b.requestPaint()
		return
	}
	tp := b.settings.Snapshot()
	b.editor.StartNew(world, tp.TextSize, tp.LineColor)
	b.requestPaint()
}

// dropTapDots removes the dot strokes the individual clicks of a
// double-click just committed, along with their undo actions, so entering
// text composition leaves the store exactly as it was before the taps.
func (b *BoardWidget) dropTapDots(world geom.Point) {
	st := b.slots.Store()
	slop := tapSlopScreen / b.slots.View().Scale
	for i := 0; i < 2; i++ {
		strokes := st.Strokes()
		if len(strokes) == 0 {
			return
		}
		last := strokes[len(strokes)-1]
		if last.Kind() != state.KindDot || geom.Dist(last.Points[0], world) > slop {
			return
		}
		st.AbortLast(last.ID)
	}
}

func effectiveTextSize(s *state.Stroke) float32 {
	size := s.FontSize
	if size <= 0 {
		size = 24
	}
	if s.FontScale > 0 {
		size *= s.FontScale
	}
	return size
}

// --- keyboard input ----------------------------------------------------

func (b *BoardWidget) FocusGained() {}

// FocusLost cancels everything in progress, per the cancellation rules.
func (b *BoardWidget) FocusLost() { b.cancelAll() }

func (b *BoardWidget) cancelAll() {
	b.resolver.Cancel()
	b.editor.Abort()
	b.selection.Clear()
	b.selDragging = false
	b.held = make(map[fyne.KeyName]bool)
	b.pipeline.Invalidate()
	b.requestPaint()
}

func (b *BoardWidget) TypedRune(r rune) {
	if !b.editor.Active() || r == '\n' || r == '\r' {
		return
	}
	b.editor.Insert(r)
	b.requestPaint()
}

func (b *BoardWidget) TypedKey(e *fyne.KeyEvent) {
	if b.editor.Active() {
		b.editorKey(e.Name)
		return
	}
	switch e.Name {
	case fyne.KeyEscape:
		b.cancelAll()
	case fyne.KeyDelete, fyne.KeyBackspace:
		if id := b.selection.Selected(); id != "" {
			b.slots.Store().RemoveAll(func(s *state.Stroke) bool { return s.ID == id })
			b.selection.Clear()
		}
	}
}

func (b *BoardWidget) editorKey(k fyne.KeyName) {
	e := b.editor
	ctrl := b.ctrlHeld()
	switch k {
	case fyne.KeyEscape:
		e.Abort()
		b.pipeline.Invalidate()
	case fyne.KeyReturn, fyne.KeyEnter:
		if ctrl {
			b.commitEditor()
		} else {
			e.InsertNewline()
		}
	case fyne.KeyBackspace:
		if ctrl {
			e.DeleteWordBack()
		} else {
			e.DeleteBack()
		}
	case fyne.KeyDelete:
		e.DeleteForward()
	case fyne.KeyLeft:
		if ctrl {
			e.MoveWordLeft()
		} else {
			e.MoveLeft()
		}
	case fyne.KeyRight:
		if ctrl {
			e.MoveWordRight()
		} else {
			e.MoveRight()
		}
	case fyne.KeyUp:
		e.MoveUp()
	case fyne.KeyDown:
		e.MoveDown()
	case fyne.KeyHome:
		e.MoveLineStart()
	case fyne.KeyEnd:
		e.MoveLineEnd()
	default:
		return
	}
	b.requestPaint()
}

func (b *BoardWidget) KeyDown(e *fyne.KeyEvent) {
	b.held[e.Name] = true
	if b.editor.Active() {
		if b.ctrlHeld() {
			switch e.Name {
			case fyne.KeyU:
				b.editor.DeleteToLineStart()
				b.requestPaint()
			case fyne.KeyA:
				b.editor.MoveEnd()
				b.requestPaint()
			case fyne.KeyV:
				if b.window != nil {
					b.editor.Paste(b.window.Clipboard().Content())
					b.requestPaint()
				}
			}
		}
		return
	}
	if b.ctrlHeld() {
		switch e.Name {
		case fyne.KeyZ:
			b.Undo()
		case fyne.KeyY:
			b.Redo()
		}
		return
	}
	switch e.Name {
	case fyne.Key1, fyne.Key2, fyne.Key3, fyne.Key4, fyne.Key5,
		fyne.Key6, fyne.Key7, fyne.Key8, fyne.Key9:
		b.SwitchSlot(int(e.Name[0] - '0'))
	case fyne.KeyG:
		b.ToggleGrid()
	}
}

func (b *BoardWidget) KeyUp(e *fyne.KeyEvent) {
	delete(b.held, e.Name)
}

func (b *BoardWidget) commitEditor() {
	if b.editor.Commit(b.slots.Store()) != input.CommitNone {
		b.requestSave()
	}
	b.pipeline.Invalidate()
	b.requestPaint()
}

// --- commands ----------------------------------------------------------

// StrokeCount supports confirm-before-clear policies in the shell.
func (b *BoardWidget) StrokeCount() int { return b.slots.Store().Len() }

// Clear removes every stroke of the active slot as one undoable action.
func (b *BoardWidget) Clear() {
	b.cancelAll()
	b.slots.Store().RemoveAll(func(*state.Stroke) bool { return true })
}

func (b *BoardWidget) Undo() {
	b.slots.Store().Undo()
	b.requestSave()
}

func (b *BoardWidget) Redo() {
	b.slots.Store().Redo()
	b.requestSave()
}

// SwitchSlot activates slot n (1-9), aborting in-progress gestures and
// flushing the outgoing slot.
func (b *BoardWidget) SwitchSlot(n int) {
	b.slots.Switch(state.SlotID(n))
	b.pipeline.Invalidate()
	b.notifyZoom()
}

func (b *BoardWidget) ActiveSlot() int { return int(b.slots.Active()) }

func (b *BoardWidget) animateView(to state.View) {
	b.viewAnim = &state.ViewAnimation{
		From:     *b.slots.View(),
		To:       to,
		Duration: viewAnimSecs,
	}
}

// ResetView eases the camera back to origin at scale 1.
func (b *BoardWidget) ResetView() { b.animateView(state.DefaultView()) }

// CenterView fits all content into the viewport with padding.
func (b *BoardWidget) CenterView() {
	bounds, ok := state.ContentBounds(b.slots.Store().Strokes(), b.pipeline.Measurer().TextBox)
	if !ok {
		b.ResetView()
		return
	}
	size := b.Size()
	b.animateView(state.FitView(bounds, size.Width, size.Height, fitPadding))
}

// ZoomStep zooms around the viewport center.
func (b *BoardWidget) ZoomStep(factor float32) {
	size := b.Size()
	b.slots.View().ZoomAround(factor, geom.Pt(size.Width/2, size.Height/2))
	b.notifyZoom()
}

func (b *BoardWidget) ToggleGrid() {
	b.showGrid = !b.showGrid
	b.requestPaint()
}

// ExportImage renders the content bounding box to a raster image;
// transparent skips the background fill. Nil when the slot is empty.
func (b *BoardWidget) ExportImage(transparent bool) *image.RGBA {
	dark := b.settings.Theme() == input.ThemeDark
	return b.pipeline.ExportImage(b.slots.Store().Strokes(), dark, transparent)
}

// ExportPDF writes the active slot as a vector PDF.
func (b *BoardWidget) ExportPDF(path string) error {
	err := export.PDF(path, b.slots.Store().Strokes(), b.pipeline.Measurer().TextBox)
	if err != nil {
		log.Printf("[board] pdf export failed: %v", err)
	}
	return err
}

// SaveTo writes the active slot's strokes as JSON.
func (b *BoardWidget) SaveTo(w io.Writer) error {
	data, err := json.MarshalIndent(b.slots.Store().Strokes(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// LoadFrom replaces the active slot's strokes with the decoded file
// contents. History is dropped like on a slot switch.
func (b *BoardWidget) LoadFrom(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var strokes []*state.Stroke
	if err := json.Unmarshal(data, &strokes); err != nil {
		return fmt.Errorf("decode board file: %w", err)
	}
	kept := strokes[:0]
	for _, s := range strokes {
		if s != nil && len(s.Points) > 0 {
			kept = append(kept, s)
		}
	}
	b.cancelAll()
	b.slots.Store().ReplaceAll(kept)
	b.requestSave()
	return nil
}

// --- rendering ---------------------------------------------------------

// drawFrame is the raster generator; it runs synchronously on resize so a
// size change never shows a blank frame.
func (b *BoardWidget) drawFrame(int, int) image.Image {
	size := b.Size()
	w, h := int(size.Width), int(size.Height)
	if w < 1 || h < 1 {
		w, h = 1, 1
	}
	return b.pipeline.Render(b.frame(w, h))
}

func (b *BoardWidget) frame(w, h int) render.Frame {
	store := b.slots.Store()
	view := b.slots.View()
	eraser := b.resolver.Eraser

	f := render.Frame{
		Strokes:    store.Strokes(),
		View:       *view,
		Width:      w,
		Height:     h,
		Dark:       b.settings.Theme() == input.ThemeDark,
		ShowGrid:   b.showGrid,
		CurrentID:  b.resolver.CurrentStrokeID(),
		EditingID:  b.editor.StrokeID(),
		Erasing:    eraser.Active() || eraser.HasPending(),
		IsPending:  eraser.Pending,
		EraseTrail: eraser.TrailPoints(),
		LaserTrail: b.resolver.Laser.Points(),
	}
	if b.resolver.State() == input.StateDrawing {
		f.Badge = b.resolver.Modifier().String()
	}
	if b.editor.Active() {
		size := b.editor.FontSize()
		if id := b.editor.StrokeID(); id != "" {
			if s := store.ByID(id); s != nil {
				size = effectiveTextSize(s)
			}
		}
		f.Text = &render.TextOverlay{
			Text:         b.editor.Text(),
			Caret:        b.editor.Caret(),
			CaretVisible: b.editor.CaretVisible(),
			Anchor:       b.editor.Anchor(),
			Size:         size,
			Color:        b.editor.Color(),
		}
	}
	if id := b.selection.Selected(); id != "" {
		if s := store.ByID(id); s != nil {
			f.Selection = &render.SelectionBox{Box: b.selection.Box(s)}
		}
	} else if id := b.selection.Hovered(); id != "" {
		if s := store.ByID(id); s != nil {
			f.Selection = &render.SelectionBox{Box: b.selection.Box(s), HoverOnly: true}
		}
	}
	return f
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	if !b.ticking {
		b.ticking = true
		b.stopTick = make(chan struct{})
		go b.tickLoop(b.stopTick)
	}
	return &boardRenderer{board: b}
}

func (b *BoardWidget) stopTicker() {
	if b.ticking {
		b.ticking = false
		close(b.stopTick)
	}
}

type boardRenderer struct {
	board *BoardWidget
}

func (r *boardRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.board.raster}
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.board.raster.Resize(size)
}

func (r *boardRenderer) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func (r *boardRenderer) Refresh() { canvas.Refresh(r.board.raster) }

func (r *boardRenderer) Destroy() { r.board.stopTicker() }
