package state

import (
	"log"

	"InkSlate/internal/geom"
)

type ActionKind string

const (
	ActionDraw   ActionKind = "draw"
	ActionErase  ActionKind = "erase"
	ActionMove   ActionKind = "move"
	ActionResize ActionKind = "resize"
	ActionEdit   ActionKind = "edit"
)

// UndoAction is one reversible mutation. Fields are a tagged union over
// Kind; geometry is stored as owned copies so later edits of the live
// stroke cannot rewrite history.
type UndoAction struct {
	Kind     ActionKind
	StrokeID string

	// draw: filled with a clone when the stroke is first undone so redo
	// can re-insert it at Index.
	Stroke *Stroke
	Index  int

	// erase: clones of the removed strokes and their original indices.
	Strokes []*Stroke
	Indices []int

	// move
	From, To []geom.Point

	// resize
	FromScale, ToScale   float32
	FromPoints, ToPoints []geom.Point

	// edit
	OldText, NewText string
}

// Store owns the ordered stroke list of one slot together with its undo
// and redo stacks. It is confined to the event goroutine and needs no
// lock.
type Store struct {
	strokes []*Stroke
	byID    map[string]*Stroke
	undo    []*UndoAction
	redo    []*UndoAction

	// onMutate fires after every change to the visible stroke list; the
	// render pipeline hangs its cache invalidation here.
	onMutate func()
	// onHistory fires before undo/redo applies, so in-progress text edits
	// and selections referencing stroke identity can abort first.
	onHistory func()
}

func NewStore() *Store {
	return &Store{byID: make(map[string]*Stroke)}
}

func (st *Store) SetOnMutate(fn func())  { st.onMutate = fn }
func (st *Store) SetOnHistory(fn func()) { st.onHistory = fn }

func (st *Store) mutated() {
	if st.onMutate != nil {
		st.onMutate()
	}
}

func (st *Store) Len() int { return len(st.strokes) }

// Strokes returns the live list; callers must treat it as read-only.
func (st *Store) Strokes() []*Stroke { return st.strokes }

func (st *Store) ByID(id string) *Stroke { return st.byID[id] }

func (st *Store) CanUndo() bool { return len(st.undo) > 0 }
func (st *Store) CanRedo() bool { return len(st.redo) > 0 }

func (st *Store) UndoDepth() int { return len(st.undo) }
func (st *Store) RedoDepth() int { return len(st.redo) }

// Append adds a stroke and pushes its draw action. The stroke may still be
// growing (an in-progress gesture keeps appending points to it); the
// action refers to it by id only until it is first undone.
func (st *Store) Append(s *Stroke) {
	st.strokes = append(st.strokes, s)
	st.byID[s.ID] = s
	st.push(&UndoAction{Kind: ActionDraw, StrokeID: s.ID})
	st.mutated()
}

// AbortLast discards an in-progress stroke together with its draw action,
// as if it had never been started. Used for cancelled gestures and shapes
// under the minimum size.
func (st *Store) AbortLast(id string) {
	n := len(st.strokes)
	if n == 0 || st.strokes[n-1].ID != id {
		return
	}
	st.strokes = st.strokes[:n-1]
	delete(st.byID, id)
	if m := len(st.undo); m > 0 {
		if a := st.undo[m-1]; a.Kind == ActionDraw && a.StrokeID == id {
			st.undo = st.undo[:m-1]
		}
	}
	st.mutated()
}

// RemoveAll removes every stroke matching pred and records the removal as
// one erase action. Returns the number removed; nothing is pushed when no
// stroke matched.
func (st *Store) RemoveAll(pred func(*Stroke) bool) int {
	var removed []*Stroke
	var indices []int
	kept := st.strokes[:0]
	for i, s := range st.strokes {
		if pred(s) {
			removed = append(removed, s.Clone())
			indices = append(indices, i)
			delete(st.byID, s.ID)
		} else {
			kept = append(kept, s)
		}
	}
	if len(removed) == 0 {
		return 0
	}
	st.strokes = kept
	st.push(&UndoAction{Kind: ActionErase, Strokes: removed, Indices: indices})
	st.mutated()
	return len(removed)
}

// CommitMove applies the final point positions of a drag and records it.
func (st *Store) CommitMove(id string, from, to []geom.Point) {
	s := st.byID[id]
	if s == nil {
		return
	}
	s.Points = append([]geom.Point(nil), to...)
	st.push(&UndoAction{
		Kind:     ActionMove,
		StrokeID: id,
		From:     append([]geom.Point(nil), from...),
		To:       append([]geom.Point(nil), to...),
	})
	st.mutated()
}

// CommitResize applies a corner-resize result and records it. For text
// strokes the scale pair carries FontScale; shapes leave it at zero and
// only the defining points change.
func (st *Store) CommitResize(id string, fromScale, toScale float32, fromPts, toPts []geom.Point) {
	s := st.byID[id]
	if s == nil {
		return
	}
	if toScale != 0 {
		s.FontScale = toScale
	}
	s.Points = append([]geom.Point(nil), toPts...)
	st.push(&UndoAction{
		Kind:       ActionResize,
		StrokeID:   id,
		FromScale:  fromScale,
		ToScale:    toScale,
		FromPoints: append([]geom.Point(nil), fromPts...),
		ToPoints:   append([]geom.Point(nil), toPts...),
	})
	st.mutated()
}

// CommitEdit applies a text change and records it.
func (st *Store) CommitEdit(id, oldText, newText string) {
	s := st.byID[id]
	if s == nil {
		return
	}
	s.Text = newText
	st.push(&UndoAction{Kind: ActionEdit, StrokeID: id, OldText: oldText, NewText: newText})
	st.mutated()
}

// ReplaceAll swaps in a whole new stroke list and drops both history
// stacks. Used when a slot is loaded or reset.
func (st *Store) ReplaceAll(strokes []*Stroke) {
	st.strokes = strokes
	st.byID = make(map[string]*Stroke, len(strokes))
	for _, s := range strokes {
		st.byID[s.ID] = s
	}
	st.undo = nil
	st.redo = nil
	st.mutated()
}

func (st *Store) push(a *UndoAction) {
	st.undo = append(st.undo, a)
	st.redo = nil
}

// Undo pops one action, applies its inverse and moves it to the redo
// stack.
func (st *Store) Undo() bool {
	if len(st.undo) == 0 {
		return false
	}
	if st.onHistory != nil {
		st.onHistory()
	}
	a := st.undo[len(st.undo)-1]
	st.undo = st.undo[:len(st.undo)-1]
	st.applyInverse(a)
	st.redo = append(st.redo, a)
	st.mutated()
	return true
}

// Redo mirrors Undo.
func (st *Store) Redo() bool {
	if len(st.redo) == 0 {
		return false
	}
	if st.onHistory != nil {
		st.onHistory()
	}
	a := st.redo[len(st.redo)-1]
	st.redo = st.redo[:len(st.redo)-1]
	st.applyForward(a)
	st.undo = append(st.undo, a)
	return true
}

func (st *Store) applyInverse(a *UndoAction) {
	switch a.Kind {
	case ActionDraw:
		s := st.byID[a.StrokeID]
		if s == nil {
			log.Printf("[store] undo draw: stroke %s missing", a.StrokeID)
			return
		}
		a.Stroke = s.Clone()
		a.Index = st.indexOf(a.StrokeID)
		st.removeAt(a.Index)
	case ActionErase:
		for i, s := range a.Strokes {
			st.insertAt(a.Indices[i], s)
		}
	case ActionMove:
		if s := st.byID[a.StrokeID]; s != nil {
			s.Points = append([]geom.Point(nil), a.From...)
		}
	case ActionResize:
		if s := st.byID[a.StrokeID]; s != nil {
			if a.FromScale != 0 {
				s.FontScale = a.FromScale
			}
			s.Points = append([]geom.Point(nil), a.FromPoints...)
		}
	case ActionEdit:
		if s := st.byID[a.StrokeID]; s != nil {
			s.Text = a.OldText
		}
	}
}

func (st *Store) applyForward(a *UndoAction) {
	switch a.Kind {
	case ActionDraw:
		st.insertAt(a.Index, a.Stroke)
		st.mutated()
	case ActionErase:
		ids := make(map[string]bool, len(a.Strokes))
		for _, s := range a.Strokes {
			ids[s.ID] = true
		}
		kept := st.strokes[:0]
		for _, s := range st.strokes {
			if ids[s.ID] {
				delete(st.byID, s.ID)
			} else {
				kept = append(kept, s)
			}
		}
		st.strokes = kept
		st.mutated()
	case ActionMove:
		if s := st.byID[a.StrokeID]; s != nil {
			s.Points = append([]geom.Point(nil), a.To...)
			st.mutated()
		}
	case ActionResize:
		if s := st.byID[a.StrokeID]; s != nil {
			if a.ToScale != 0 {
				s.FontScale = a.ToScale
			}
			s.Points = append([]geom.Point(nil), a.ToPoints...)
			st.mutated()
		}
	case ActionEdit:
		if s := st.byID[a.StrokeID]; s != nil {
			s.Text = a.NewText
			st.mutated()
		}
	}
}

func (st *Store) indexOf(id string) int {
	for i, s := range st.strokes {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (st *Store) removeAt(i int) {
	if i < 0 || i >= len(st.strokes) {
		return
	}
	delete(st.byID, st.strokes[i].ID)
	st.strokes = append(st.strokes[:i], st.strokes[i+1:]...)
}

func (st *Store) insertAt(i int, s *Stroke) {
	if i < 0 || i > len(st.strokes) {
		i = len(st.strokes)
	}
	st.strokes = append(st.strokes, nil)
	copy(st.strokes[i+1:], st.strokes[i:])
	st.strokes[i] = s
	st.byID[s.ID] = s
}
