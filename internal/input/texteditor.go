package input

import (
	"strings"

	"InkSlate/internal/geom"
	"InkSlate/internal/state"
)

// caretBlinkTicks is how many frame ticks each blink phase lasts.
const caretBlinkTicks = 30

// TextEditor is the caret-based composition buffer. One instance serves
// both creating new text strokes and editing existing ones; Active
// reports whether a composition is running.
type TextEditor struct {
	active   bool
	strokeID string // empty while composing a brand new stroke
	original string
	anchor   geom.Point
	fontSize float32
	color    string

	buf   []rune
	caret int
	// desiredCol keeps the target column across line-up/line-down moves.
	desiredCol int

	caretVisible bool
	blinkPhase   int
}

func (e *TextEditor) Active() bool          { return e.active }
func (e *TextEditor) StrokeID() string      { return e.strokeID }
func (e *TextEditor) Anchor() geom.Point    { return e.anchor }
func (e *TextEditor) FontSize() float32     { return e.fontSize }
func (e *TextEditor) Color() string         { return e.color }
func (e *TextEditor) Text() string          { return string(e.buf) }
func (e *TextEditor) Caret() int            { return e.caret }
func (e *TextEditor) CaretVisible() bool    { return e.caretVisible }

// StartNew begins composing a new text stroke anchored at a world point.
func (e *TextEditor) StartNew(anchor geom.Point, fontSize float32, color string) {
	*e = TextEditor{
		active:       true,
		anchor:       anchor,
		fontSize:     fontSize,
		color:        color,
		caretVisible: true,
		desiredCol:   -1,
	}
}

// StartEdit begins editing an existing text stroke with the caret at the
// given rune offset.
func (e *TextEditor) StartEdit(s *state.Stroke, caret int) {
	buf := []rune(s.Text)
	if caret < 0 {
		caret = 0
	}
	if caret > len(buf) {
		caret = len(buf)
	}
	*e = TextEditor{
		active:       true,
		strokeID:     s.ID,
		original:     s.Text,
		anchor:       s.Points[0],
		fontSize:     s.FontSize,
		color:        s.Color,
		buf:          buf,
		caret:        caret,
		caretVisible: true,
		desiredCol:   -1,
	}
}

// CaretFromClick translates a click position local to the text box into a
// caret offset: line by vertical position, column by the nearest measured
// character boundary.
func CaretFromClick(text string, local geom.Point, lineHeight float32, measure func(string) float32) int {
	lines := strings.Split(text, "\n")
	line := int(local.Y / lineHeight)
	if line < 0 {
		line = 0
	}
	if line > len(lines)-1 {
		line = len(lines) - 1
	}
	offset := 0
	for i := 0; i < line; i++ {
		offset += len([]rune(lines[i])) + 1
	}
	runes := []rune(lines[line])
	col := len(runes)
	for i := 1; i <= len(runes); i++ {
		prev := measure(string(runes[:i-1]))
		cur := measure(string(runes[:i]))
		if local.X < (prev+cur)/2 {
			col = i - 1
			break
		}
	}
	return offset + col
}

func (e *TextEditor) edited() {
	e.caretVisible = true
	e.blinkPhase = 0
	e.desiredCol = -1
}

// BlinkTick toggles caret visibility on a fixed interval; returns whether
// the visible state flipped this tick.
func (e *TextEditor) BlinkTick() bool {
	if !e.active {
		return false
	}
	e.blinkPhase++
	if e.blinkPhase >= caretBlinkTicks {
		e.blinkPhase = 0
		e.caretVisible = !e.caretVisible
		return true
	}
	return false
}

func (e *TextEditor) Insert(r rune) {
	e.buf = append(e.buf[:e.caret], append([]rune{r}, e.buf[e.caret:]...)...)
	e.caret++
	e.edited()
}

func (e *TextEditor) InsertNewline() { e.Insert('\n') }

// Paste inserts arbitrary text at the caret.
func (e *TextEditor) Paste(text string) {
	if text == "" {
		return
	}
	runes := []rune(text)
	e.buf = append(e.buf[:e.caret], append(runes, e.buf[e.caret:]...)...)
	e.caret += len(runes)
	e.edited()
}

func (e *TextEditor) DeleteBack() {
	if e.caret == 0 {
		return
	}
	e.buf = append(e.buf[:e.caret-1], e.buf[e.caret:]...)
	e.caret--
	e.edited()
}

func (e *TextEditor) DeleteForward() {
	if e.caret >= len(e.buf) {
		return
	}
	e.buf = append(e.buf[:e.caret], e.buf[e.caret+1:]...)
	e.edited()
}

func isWordRune(r rune) bool { return r != ' ' && r != '\n' }

// DeleteWordBack removes the run of non-space, non-newline runes before
// the caret, plus any spaces between them and the caret.
func (e *TextEditor) DeleteWordBack() {
	i := e.caret
	for i > 0 && e.buf[i-1] == ' ' {
		i--
	}
	for i > 0 && isWordRune(e.buf[i-1]) {
		i--
	}
	if i == e.caret {
		e.DeleteBack()
		return
	}
	e.buf = append(e.buf[:i], e.buf[e.caret:]...)
	e.caret = i
	e.edited()
}

// DeleteToLineStart removes everything between the line start and the
// caret.
func (e *TextEditor) DeleteToLineStart() {
	i := e.lineStart(e.caret)
	if i == e.caret {
		e.DeleteBack()
		return
	}
	e.buf = append(e.buf[:i], e.buf[e.caret:]...)
	e.caret = i
	e.edited()
}

func (e *TextEditor) MoveLeft() {
	if e.caret > 0 {
		e.caret--
	}
	e.edited()
}

func (e *TextEditor) MoveRight() {
	if e.caret < len(e.buf) {
		e.caret++
	}
	e.edited()
}

func (e *TextEditor) MoveWordLeft() {
	i := e.caret
	for i > 0 && !isWordRune(e.buf[i-1]) {
		i--
	}
	for i > 0 && isWordRune(e.buf[i-1]) {
		i--
	}
	e.caret = i
	e.edited()
}

func (e *TextEditor) MoveWordRight() {
	i := e.caret
	for i < len(e.buf) && !isWordRune(e.buf[i]) {
		i++
	}
	for i < len(e.buf) && isWordRune(e.buf[i]) {
		i++
	}
	e.caret = i
	e.edited()
}

func (e *TextEditor) MoveLineStart() {
	e.caret = e.lineStart(e.caret)
	e.edited()
}

func (e *TextEditor) MoveLineEnd() {
	e.caret = e.lineEnd(e.caret)
	e.edited()
}

// MoveUp and MoveDown keep the desired column across consecutive vertical
// moves, clamped to each line's length.
func (e *TextEditor) MoveUp() { e.moveVertical(-1) }

func (e *TextEditor) MoveDown() { e.moveVertical(1) }

func (e *TextEditor) moveVertical(dir int) {
	start := e.lineStart(e.caret)
	col := e.caret - start
	if e.desiredCol >= 0 {
		col = e.desiredCol
	}
	if dir < 0 {
		if start == 0 {
			e.caret = 0
			e.desiredCol = col
			e.caretVisible = true
			e.blinkPhase = 0
			return
		}
		prevStart := e.lineStart(start - 1)
		e.caret = prevStart + minInt(col, start-1-prevStart)
	} else {
		end := e.lineEnd(e.caret)
		if end == len(e.buf) {
			e.caret = end
			e.desiredCol = col
			e.caretVisible = true
			e.blinkPhase = 0
			return
		}
		nextStart := end + 1
		nextEnd := e.lineEnd(nextStart)
		e.caret = nextStart + minInt(col, nextEnd-nextStart)
	}
	e.desiredCol = col
	e.caretVisible = true
	e.blinkPhase = 0
}

// MoveEnd jumps the caret past the last rune (the select-all-to-end key).
func (e *TextEditor) MoveEnd() {
	e.caret = len(e.buf)
	e.edited()
}

func (e *TextEditor) lineStart(from int) int {
	i := from
	for i > 0 && e.buf[i-1] != '\n' {
		i--
	}
	return i
}

func (e *TextEditor) lineEnd(from int) int {
	i := from
	for i < len(e.buf) && e.buf[i] != '\n' {
		i++
	}
	return i
}

// CommitResult reports what a finished composition did to the store.
type CommitResult int

const (
	CommitNone CommitResult = iota
	CommitCreated
	CommitEdited
	CommitReverted
)

// Commit ends the composition. Editing an existing stroke records an edit
// action only if the text actually changed; an emptied edit reverts to the
// original. A new composition creates a stroke only when the trimmed text
// is non-empty.
func (e *TextEditor) Commit(st *state.Store) CommitResult {
	if !e.active {
		return CommitNone
	}
	text := string(e.buf)
	defer func() { *e = TextEditor{} }()

	if e.strokeID != "" {
		if strings.TrimSpace(text) == "" || text == e.original {
			return CommitReverted
		}
		st.CommitEdit(e.strokeID, e.original, text)
		return CommitEdited
	}
	if strings.TrimSpace(text) == "" {
		return CommitNone
	}
	s := state.NewStroke(e.color, 1)
	s.Points = []geom.Point{e.anchor}
	s.Text = text
	s.FontSize = e.fontSize
	s.FontScale = 1
	st.Append(s)
	return CommitCreated
}

// Abort drops the composition without saving anything.
func (e *TextEditor) Abort() { *e = TextEditor{} }

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
