package ui

import (
	"bytes"
	"strings"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkSlate/internal/geom"
	"InkSlate/internal/input"
	"InkSlate/internal/state"
)

func newTestBoard(t *testing.T) *BoardWidget {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)
	settings := NewSettings(a.Preferences())
	return NewBoardWidget(settings, a.Preferences())
}

func addStroke(b *BoardWidget, pts ...geom.Point) *state.Stroke {
	s := state.NewStroke("#000000", 4)
	s.Points = pts
	b.slots.Store().Append(s)
	return s
}

func TestBoardSaveLoadRoundtrip(t *testing.T) {
	b := newTestBoard(t)
	addStroke(b, geom.Pt(0, 0), geom.Pt(50, 50))
	addStroke(b, geom.Pt(100, 0), geom.Pt(150, 50))

	var buf bytes.Buffer
	require.NoError(t, b.SaveTo(&buf))

	other := newTestBoard(t)
	require.NoError(t, other.LoadFrom(&buf))
	assert.Equal(t, 2, other.StrokeCount())
}

func TestBoardLoadRejectsGarbage(t *testing.T) {
	b := newTestBoard(t)
	addStroke(b, geom.Pt(0, 0), geom.Pt(10, 10))
	err := b.LoadFrom(strings.NewReader("{not a board"))
	require.Error(t, err)
	assert.Equal(t, 1, b.StrokeCount(), "failed load leaves the slot alone")
}

func TestBoardLoadDropsEmptyStrokes(t *testing.T) {
	b := newTestBoard(t)
	payload := `[{"id":"a","points":[]},{"id":"b","points":[{"x":1,"y":2}]}]`
	require.NoError(t, b.LoadFrom(strings.NewReader(payload)))
	assert.Equal(t, 1, b.StrokeCount())
}

func TestBoardClearUndoable(t *testing.T) {
	b := newTestBoard(t)
	addStroke(b, geom.Pt(0, 0), geom.Pt(10, 10))
	addStroke(b, geom.Pt(20, 20), geom.Pt(30, 30))
	b.Clear()
	assert.Equal(t, 0, b.StrokeCount())
	b.Undo()
	assert.Equal(t, 2, b.StrokeCount())
	b.Redo()
	assert.Equal(t, 0, b.StrokeCount())
}

func TestBoardSlotSwitch(t *testing.T) {
	b := newTestBoard(t)
	addStroke(b, geom.Pt(0, 0), geom.Pt(10, 10))
	b.SwitchSlot(3)
	assert.Equal(t, 3, b.ActiveSlot())
	assert.Equal(t, 0, b.StrokeCount())
	b.SwitchSlot(1)
	assert.Equal(t, 1, b.StrokeCount())
}

func TestBoardZoomStepNotifies(t *testing.T) {
	b := newTestBoard(t)
	var got float32
	b.OnZoomChanged = func(s float32) { got = s }
	b.ZoomStep(1.25)
	assert.InDelta(t, 1.25, got, 1e-4)
}

func TestBoardExportImage(t *testing.T) {
	b := newTestBoard(t)
	assert.Nil(t, b.ExportImage(false))
	addStroke(b, geom.Pt(0, 0), geom.Pt(40, 40))
	img := b.ExportImage(false)
	require.NotNil(t, img)
	assert.Greater(t, img.Bounds().Dx(), 40)
}

func click(b *BoardWidget, x, y float32) {
	e := &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
	b.MouseDown(e)
	b.MouseUp(e)
}

func TestDoubleClickLeavesStoreUntouched(t *testing.T) {
	b := newTestBoard(t)

	// each click of a double-click runs a full down/up pair first, which
	// commits a one-point dot
	click(b, 100, 100)
	click(b, 101, 100)
	require.Equal(t, 2, b.StrokeCount())

	b.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(101, 100)})
	assert.True(t, b.editor.Active())
	assert.Equal(t, 0, b.StrokeCount(), "tap dots removed")
	assert.Equal(t, 0, b.slots.Store().UndoDepth(), "no draw actions left behind")
}

func TestDoubleClickKeepsUnrelatedDots(t *testing.T) {
	b := newTestBoard(t)
	addStroke(b, geom.Pt(400, 400)) // deliberate dot far from the click

	click(b, 100, 100)
	click(b, 100, 100)
	b.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(100, 100)})

	assert.True(t, b.editor.Active())
	assert.Equal(t, 1, b.StrokeCount())
	assert.Equal(t, 1, b.slots.Store().UndoDepth())
}

func TestTrailsDecayDuringGesture(t *testing.T) {
	b := newTestBoard(t)
	tp := b.settings.Snapshot()

	b.resolver.PointerDown(geom.Pt(0, 0), 0, false, input.Keys{Erase: true}, tp)
	for i := 1; i <= 20; i++ {
		b.resolver.PointerMove(geom.Pt(float32(i)*10, 0), 0, input.Keys{Erase: true}, tp)
	}
	require.Equal(t, input.ModErase, b.resolver.Modifier())
	before := len(b.resolver.Eraser.TrailPoints())
	require.Greater(t, before, 0)
	b.tick()
	assert.Less(t, len(b.resolver.Eraser.TrailPoints()), before,
		"erase trail drains while the gesture is still held")
	b.resolver.PointerUp(tp)

	b.resolver.PointerDown(geom.Pt(0, 0), 0, false, input.Keys{Laser: true}, tp)
	for i := 1; i <= 20; i++ {
		b.resolver.PointerMove(geom.Pt(float32(i)*10, 0), 0, input.Keys{Laser: true}, tp)
	}
	require.Equal(t, input.ModLaser, b.resolver.Modifier())
	before = len(b.resolver.Laser.Points())
	require.Greater(t, before, 0)
	b.tick()
	assert.Less(t, len(b.resolver.Laser.Points()), before,
		"laser trail drains while the gesture is still held")
}

func TestRendererDestroyStopsTicker(t *testing.T) {
	b := newTestBoard(t)
	r := b.CreateRenderer()
	require.True(t, b.ticking)

	r.Destroy()
	assert.False(t, b.ticking)
	select {
	case <-b.stopTick:
	default:
		t.Fatal("tick loop stop channel still open after Destroy")
	}
}

func TestBoardHistoryAbortsEditing(t *testing.T) {
	b := newTestBoard(t)
	s := addStroke(b, geom.Pt(0, 0))
	s.Text = "note"
	b.editor.StartEdit(s, 0)
	require.True(t, b.editor.Active())
	b.Undo()
	assert.False(t, b.editor.Active(), "undo aborts the composition")
}
