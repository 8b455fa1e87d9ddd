package state

import "log"

// SlotID identifies one of the nine independent drawing documents.
type SlotID int

const (
	FirstSlot SlotID = 1
	LastSlot  SlotID = 9
)

type slot struct {
	store *Store
	view  View
}

// SlotManager holds up to nine (stroke store, undo stacks, view) triples
// and swaps the active one. Slots are created on first reference, loaded
// from persistence or empty, and kept in memory for the process lifetime.
type SlotManager struct {
	slots   map[SlotID]*slot
	active  SlotID
	persist *Persist

	// onSwitch runs before the active slot changes, letting the input
	// layer abort in-progress gestures against the outgoing slot.
	onSwitch func()
	// configure is applied to every newly created store (mutation and
	// history hooks).
	configure func(*Store)
}

func NewSlotManager(persist *Persist) *SlotManager {
	return &SlotManager{
		slots:   make(map[SlotID]*slot),
		persist: persist,
	}
}

func (m *SlotManager) SetOnSwitch(fn func())          { m.onSwitch = fn }
func (m *SlotManager) SetConfigure(fn func(s *Store)) { m.configure = fn }

func (m *SlotManager) Active() SlotID { return m.active }

// Store returns the active slot's stroke store, activating the first slot
// on first use.
func (m *SlotManager) Store() *Store {
	return m.activeSlot().store
}

// View returns a pointer into the active slot's view so camera mutations
// stick.
func (m *SlotManager) View() *View {
	return &m.activeSlot().view
}

func (m *SlotManager) activeSlot() *slot {
	if m.active == 0 {
		m.active = FirstSlot
		m.slots[m.active] = m.load(m.active)
	}
	return m.slots[m.active]
}

// Switch activates another slot: the outgoing slot is flushed to
// persistence and kept in memory, the incoming one restored from memory,
// loaded, or created empty. Switching to the active slot is a no-op.
func (m *SlotManager) Switch(id SlotID) {
	if id < FirstSlot || id > LastSlot || id == m.active {
		return
	}
	if m.onSwitch != nil {
		m.onSwitch()
	}
	if m.active != 0 {
		m.Flush()
	}
	s, ok := m.slots[id]
	if !ok {
		s = m.load(id)
		m.slots[id] = s
	}
	m.active = id
	log.Printf("[slots] active slot -> %d (%d strokes)", id, s.store.Len())
}

// Flush writes the active slot's strokes and view to persistence now;
// used on slot switch and by the debounced autosave.
func (m *SlotManager) Flush() {
	if m.active == 0 {
		return
	}
	s := m.slots[m.active]
	m.persist.SaveStrokes(m.active, s.store.Strokes())
	m.persist.SaveView(m.active, s.view)
}

func (m *SlotManager) load(id SlotID) *slot {
	st := NewStore()
	if m.configure != nil {
		m.configure(st)
	}
	if strokes := m.persist.LoadStrokes(id); len(strokes) > 0 {
		st.ReplaceAll(strokes)
	}
	return &slot{store: st, view: m.persist.LoadView(id)}
}
