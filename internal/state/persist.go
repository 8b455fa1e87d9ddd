package state

import (
	"encoding/json"
	"fmt"
	"log"
)

// KV is the durable key-value contract the engine persists into. The
// method set is the string subset of fyne.Preferences so the app's
// preference store satisfies it directly; tests use an in-memory fake.
type KV interface {
	String(key string) string
	SetString(key string, value string)
}

// maxPayload caps a serialized slot; oversize payloads are skipped
// silently so a huge drawing degrades to "not persisted" instead of
// failing the gesture that produced it.
const maxPayload = 5_000_000

// Persist reads and writes per-slot strokes and view state. Every failure
// path (corrupt payload, marshal error, a panicking store) degrades to the
// empty/default value; nothing propagates to the caller.
type Persist struct {
	kv KV
}

func NewPersist(kv KV) *Persist { return &Persist{kv: kv} }

func strokesKey(id SlotID) string { return fmt.Sprintf("slot/%d/strokes", id) }
func viewKey(id SlotID) string    { return fmt.Sprintf("slot/%d/view", id) }

func (p *Persist) LoadStrokes(id SlotID) []*Stroke {
	raw := p.read(strokesKey(id))
	if raw == "" {
		return nil
	}
	var strokes []*Stroke
	if err := json.Unmarshal([]byte(raw), &strokes); err != nil {
		log.Printf("[persist] slot %d: unreadable strokes, starting empty: %v", id, err)
		return nil
	}
	// drop degenerate entries a bad payload might carry
	kept := strokes[:0]
	for _, s := range strokes {
		if s != nil && len(s.Points) > 0 {
			kept = append(kept, s)
		}
	}
	return kept
}

func (p *Persist) SaveStrokes(id SlotID, strokes []*Stroke) {
	data, err := json.Marshal(strokes)
	if err != nil {
		log.Printf("[persist] slot %d: marshal failed: %v", id, err)
		return
	}
	if len(data) > maxPayload {
		log.Printf("[persist] slot %d: payload %d bytes over cap, skipping write", id, len(data))
		return
	}
	p.write(strokesKey(id), string(data))
}

func (p *Persist) LoadView(id SlotID) View {
	raw := p.read(viewKey(id))
	if raw == "" {
		return DefaultView()
	}
	var v View
	if err := json.Unmarshal([]byte(raw), &v); err != nil || v.Scale < MinScale || v.Scale > MaxScale {
		return DefaultView()
	}
	return v
}

func (p *Persist) SaveView(id SlotID, v View) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	p.write(viewKey(id), string(data))
}

// read and write swallow panics from the backing store (quota and driver
// errors surface that way from some KV implementations).
func (p *Persist) read(key string) (val string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[persist] read %s failed: %v", key, r)
			val = ""
		}
	}()
	return p.kv.String(key)
}

func (p *Persist) write(key, val string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[persist] write %s rejected: %v", key, r)
		}
	}()
	p.kv.SetString(key, val)
}
