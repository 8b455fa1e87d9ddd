package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkSlate/internal/geom"
)

// memKV is the in-memory stand-in for the app preference store.
type memKV struct {
	m map[string]string
	// failWrites simulates a backend that panics on write (quota, driver)
	failWrites bool
}

func newMemKV() *memKV { return &memKV{m: make(map[string]string)} }

func (kv *memKV) String(key string) string { return kv.m[key] }

func (kv *memKV) SetString(key, value string) {
	if kv.failWrites {
		panic("quota exceeded")
	}
	kv.m[key] = value
}

func TestPersistRoundtrip(t *testing.T) {
	kv := newMemKV()
	p := NewPersist(kv)

	s := NewStroke("#1e88e5", 4)
	s.Points = []geom.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}
	s.Widths = []float32{1, 0.8}
	p.SaveStrokes(3, []*Stroke{s})

	got := p.LoadStrokes(3)
	require.Len(t, got, 1)
	assert.Equal(t, s.ID, got[0].ID)
	assert.Equal(t, s.Points, got[0].Points)
	assert.Equal(t, s.Widths, got[0].Widths)
	assert.Equal(t, s.Color, got[0].Color)

	// slots are independent
	assert.Empty(t, p.LoadStrokes(4))
}

func TestPersistCorruptPayload(t *testing.T) {
	kv := newMemKV()
	kv.m["slot/2/strokes"] = "{not json"
	p := NewPersist(kv)
	assert.Nil(t, p.LoadStrokes(2))
}

func TestPersistDropsEmptyStrokes(t *testing.T) {
	kv := newMemKV()
	kv.m["slot/1/strokes"] = `[{"id":"a","points":[]},{"id":"b","points":[{"x":1,"y":2}]}]`
	p := NewPersist(kv)
	got := p.LoadStrokes(1)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestPersistOversizeSkipped(t *testing.T) {
	kv := newMemKV()
	p := NewPersist(kv)
	s := NewStroke("#000000", 4)
	s.Text = strings.Repeat("x", maxPayload)
	s.Points = []geom.Point{{}}
	p.SaveStrokes(1, []*Stroke{s})
	assert.Empty(t, kv.m, "oversize payload must not be written")
}

func TestPersistPanickingBackend(t *testing.T) {
	kv := newMemKV()
	kv.failWrites = true
	p := NewPersist(kv)
	s := NewStroke("#000000", 4)
	s.Points = []geom.Point{{X: 1, Y: 1}}

	assert.NotPanics(t, func() {
		p.SaveStrokes(3, []*Stroke{s})
		p.SaveView(3, DefaultView())
	})
}

func TestViewRoundtripAndValidation(t *testing.T) {
	kv := newMemKV()
	p := NewPersist(kv)

	v := View{OffsetX: 10, OffsetY: -5, Scale: 2}
	p.SaveView(7, v)
	assert.Equal(t, v, p.LoadView(7))

	// invalid scale falls back to the default
	kv.m["slot/8/view"] = `{"offset_x":0,"offset_y":0,"scale":99}`
	assert.Equal(t, DefaultView(), p.LoadView(8))
	kv.m["slot/9/view"] = "garbage"
	assert.Equal(t, DefaultView(), p.LoadView(9))
	assert.Equal(t, DefaultView(), p.LoadView(2))
}
