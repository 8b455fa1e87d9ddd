package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkSlate/internal/geom"
)

func TestSlotsLazyFirst(t *testing.T) {
	m := NewSlotManager(NewPersist(newMemKV()))
	assert.Equal(t, SlotID(0), m.Active())
	m.Store()
	assert.Equal(t, FirstSlot, m.Active())
}

func TestSlotSwitchFlushesAndRestores(t *testing.T) {
	kv := newMemKV()
	m := NewSlotManager(NewPersist(kv))

	s := NewStroke("#000000", 4)
	s.Points = []geom.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}
	m.Store().Append(s)
	m.View().PanBy(30, 40)

	m.Switch(2)
	assert.Equal(t, SlotID(2), m.Active())
	assert.Equal(t, 0, m.Store().Len())
	assert.Equal(t, DefaultView(), *m.View())
	// slot 1 was flushed on the way out
	assert.Contains(t, kv.m, "slot/1/strokes")

	m.Switch(1)
	require.Equal(t, 1, m.Store().Len())
	assert.Equal(t, s.ID, m.Store().Strokes()[0].ID)
	assert.Equal(t, float32(30), m.View().OffsetX)
}

func TestSlotSwitchInvalidIgnored(t *testing.T) {
	m := NewSlotManager(NewPersist(newMemKV()))
	m.Store()
	m.Switch(0)
	m.Switch(10)
	assert.Equal(t, FirstSlot, m.Active())
}

func TestSlotSwitchSameIsNoop(t *testing.T) {
	m := NewSlotManager(NewPersist(newMemKV()))
	m.Store()
	fired := 0
	m.SetOnSwitch(func() { fired++ })
	m.Switch(1)
	assert.Equal(t, 0, fired)
	m.Switch(2)
	assert.Equal(t, 1, fired)
}

func TestSlotLoadsPersisted(t *testing.T) {
	kv := newMemKV()
	p := NewPersist(kv)
	s := NewStroke("#e53935", 2)
	s.Points = []geom.Point{{X: 5, Y: 5}}
	p.SaveStrokes(3, []*Stroke{s})
	p.SaveView(3, View{OffsetX: 9, Scale: 2})

	m := NewSlotManager(NewPersist(kv))
	m.Switch(3)
	require.Equal(t, 1, m.Store().Len())
	assert.Equal(t, float32(2), m.View().Scale)
}

func TestSlotConfigureAppliesHooks(t *testing.T) {
	m := NewSlotManager(NewPersist(newMemKV()))
	mutations := 0
	m.SetConfigure(func(st *Store) {
		st.SetOnMutate(func() { mutations++ })
	})
	s := NewStroke("#000000", 4)
	s.Points = []geom.Point{{X: 0, Y: 0}}
	m.Store().Append(s)
	assert.Equal(t, 1, mutations)

	// newly created slots get the hooks too
	m.Switch(2)
	s2 := NewStroke("#000000", 4)
	s2.Points = []geom.Point{{X: 1, Y: 1}}
	m.Store().Append(s2)
	assert.Equal(t, 2, mutations)
}

func TestSlotSurvivesQuotaPanic(t *testing.T) {
	kv := newMemKV()
	m := NewSlotManager(NewPersist(kv))
	s := NewStroke("#000000", 4)
	s.Points = []geom.Point{{X: 1, Y: 1}}
	m.Store().Append(s)

	kv.failWrites = true
	assert.NotPanics(t, func() { m.Switch(3) })
	// the in-memory state is intact even though the flush was rejected
	assert.Equal(t, SlotID(3), m.Active())
	m.Switch(1)
	assert.Equal(t, 1, m.Store().Len())
}
