package object

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// slot is one entry of a slot table: a *valueSlot, *methodSlot or
// *accessorSlot.
type slot interface {
	enumerable() bool
}

type valueSlot struct {
	value  any
	hidden bool
}

func (s *valueSlot) enumerable() bool { return !s.hidden }

type accessorSlot struct {
	Accessor
}

func (s *accessorSlot) enumerable() bool { return s.Enumerable }

// slotTable keeps slots in definition order. Redefining a name keeps its
// original position.
type slotTable struct {
	entries *linkedhashmap.Map
}

func newSlotTable() *slotTable {
	return &slotTable{entries: linkedhashmap.New()}
}

func (st *slotTable) get(name string) (slot, bool) {
	v, ok := st.entries.Get(name)
	if !ok {
		return nil, false
	}
	return v.(slot), true
}

func (st *slotTable) has(name string) bool {
	_, ok := st.entries.Get(name)
	return ok
}

func (st *slotTable) put(name string, s slot) {
	st.entries.Put(name, s)
}

func (st *slotTable) remove(name string) {
	st.entries.Remove(name)
}

func (st *slotTable) len() int {
	return st.entries.Size()
}

func (st *slotTable) keys() []string {
	keys := make([]string, 0, st.entries.Size())
	it := st.entries.Iterator()
	for it.Next() {
		keys = append(keys, it.Key().(string))
	}
	return keys
}

func (st *slotTable) each(fn func(name string, s slot)) {
	it := st.entries.Iterator()
	for it.Next() {
		fn(it.Key().(string), it.Value().(slot))
	}
}

// resolveSlot returns the value a read of s produces for recv.
func resolveSlot(s slot, recv Receiver) any {
	switch s := s.(type) {
	case *valueSlot:
		return s.value
	case *accessorSlot:
		if s.Get != nil {
			return s.Get(recv)
		}
		return s.Value
	case *methodSlot:
		return s.bind(recv)
	}
	return nil
}

// SlotKind classifies a slot for inspection.
type SlotKind int

const (
	SlotValue SlotKind = iota
	SlotMethod
	SlotAccessor
)

func (k SlotKind) String() string {
	switch k {
	case SlotMethod:
		return "method"
	case SlotAccessor:
		return "accessor"
	default:
		return "value"
	}
}

// SlotInfo describes one own slot of a prototype, type or instance.
type SlotInfo struct {
	Name       string
	Kind       SlotKind
	Enumerable bool
	// Value is the stored value for value slots and value-only accessors.
	Value any
	// Shadows is true for methods that wrap an inherited implementation.
	Shadows bool
}

func (st *slotTable) infos() []SlotInfo {
	infos := make([]SlotInfo, 0, st.len())
	st.each(func(name string, s slot) {
		info := SlotInfo{Name: name, Enumerable: s.enumerable()}
		switch s := s.(type) {
		case *valueSlot:
			info.Kind = SlotValue
			info.Value = s.value
		case *accessorSlot:
			info.Kind = SlotAccessor
			if s.Get == nil {
				info.Value = s.Value
			}
		case *methodSlot:
			info.Kind = SlotMethod
			info.Shadows = s.shadowed != nil
		}
		infos = append(infos, info)
	})
	return infos
}
