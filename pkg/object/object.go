package object

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/go-viper/mapstructure/v2"

	"coreobject/internal/objpath"
)

const boidKey = "__boid__"

var boidCounter atomic.Uint64

// nextID issues "bo0", "bo1", ... in construction order.
func nextID() string {
	return "bo" + strconv.FormatUint(boidCounter.Add(1)-1, 10)
}

// Object is an instance of a Type. Objects are not safe for concurrent
// mutation.
type Object struct {
	typ    *Type
	id     string
	slots  *slotTable
	native any
}

// ID returns the process-unique identifier assigned at construction.
func (o *Object) ID() string {
	return o.id
}

// Type returns the type o was constructed from.
func (o *Object) Type() *Type {
	return o.typ
}

// Native returns the wrapped native value for instances of ExtendClass
// types, nil otherwise.
func (o *Object) Native() any {
	return o.native
}

// NativeAs returns the native value of o as T.
func NativeAs[T any](o *Object) (T, bool) {
	v, ok := o.native.(T)
	return v, ok
}

// InstanceOf reports whether o was constructed from t or a subtype of t.
func (o *Object) InstanceOf(t *Type) bool {
	return o.typ == t || o.typ.IsSubclassOf(t)
}

func (o *Object) String() string {
	return fmt.Sprintf("<%s:%s>", o.typ.name, o.id)
}

// Get returns the value at path, or def (nil when omitted) when the path
// does not resolve. Present nil values are returned as nil.
func (o *Object) Get(path string, def ...any) any {
	if v, ok := objpath.Get(o, path); ok {
		return v
	}
	return defaultOf(def)
}

// Set assigns value at path, creating intermediate maps as needed. A
// top-level write runs through inherited setters. A nested write below an
// inherited map or slice first gives o its own copy of it, so the prototype
// is never changed through an instance.
func (o *Object) Set(path string, value any) error {
	keys, err := objpath.Parse(path)
	if err != nil {
		return err
	}
	if len(keys) > 1 {
		o.detach(keys[0])
	}
	return objpath.Set(o, keys, value)
}

// Has reports whether every step of path is a direct property.
func (o *Object) Has(path string) bool {
	keys, err := objpath.Parse(path)
	if err != nil {
		return false
	}
	return objpath.Has(o, keys)
}

// Unset removes the property at path. It returns false when the property
// cannot be removed.
func (o *Object) Unset(path string) bool {
	keys, err := objpath.Parse(path)
	if err != nil {
		return false
	}
	if len(keys) > 1 {
		o.detach(keys[0])
	}
	return objpath.Unset(o, keys)
}

// GetProperties picks the values at paths into a new bundle.
func (o *Object) GetProperties(paths ...string) Bundle {
	return Bundle(objpath.Pick(o, paths))
}

// HasOwn reports whether name is a direct property of o.
func (o *Object) HasOwn(name string) bool {
	_, ok := o.slots.get(name)
	return ok
}

// Delete removes the own property name. Non-configurable accessors are not
// removed.
func (o *Object) Delete(name string) bool {
	s, ok := o.slots.get(name)
	if !ok {
		return true
	}
	if a, ok := s.(*accessorSlot); ok && !a.Configurable {
		return false
	}
	o.slots.remove(name)
	return true
}

// Call invokes the method name with o as the receiver.
func (o *Object) Call(name string, args ...any) (any, error) {
	s, ok := o.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchMethod, o.typ.name, name)
	}
	return callSlot(s, o, name, args)
}

// Keys returns the enumerable property names of o, own properties first,
// then inherited ones in prototype order.
func (o *Object) Keys() []string {
	seen := map[string]bool{}
	var keys []string
	visit := func(st *slotTable) {
		st.each(func(name string, s slot) {
			if seen[name] {
				return
			}
			seen[name] = true
			if s.enumerable() {
				keys = append(keys, name)
			}
		})
	}
	visit(o.slots)
	for c := o.typ; c != nil; c = c.parent {
		visit(c.proto)
	}
	return keys
}

// OwnKeys returns the enumerable own property names of o.
func (o *Object) OwnKeys() []string {
	var keys []string
	o.slots.each(func(name string, s slot) {
		if s.enumerable() {
			keys = append(keys, name)
		}
	})
	return keys
}

// Slots describes the own slots of o.
func (o *Object) Slots() []SlotInfo {
	return o.slots.infos()
}

// Properties returns the enumerable, non-method properties of o.
func (o *Object) Properties() Bundle {
	out := Bundle{}
	for _, name := range o.Keys() {
		s, _ := o.lookup(name)
		if _, isMethod := s.(*methodSlot); isMethod {
			continue
		}
		out[name] = resolveSlot(s, o)
	}
	return out
}

// Decode copies the properties of o into out, which is usually a pointer to
// a struct.
func (o *Object) Decode(out any) error {
	if err := mapstructure.Decode(map[string]any(o.Properties()), out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", o, err)
	}
	return nil
}

// DefineAccessor installs a on o under name.
func (o *Object) DefineAccessor(name string, a Accessor) {
	o.slots.put(name, &accessorSlot{a})
}

// JSONLookup resolves one path step.
func (o *Object) JSONLookup(key string) (any, error) {
	s, ok := o.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchProperty, o.typ.name, key)
	}
	return resolveSlot(s, o), nil
}

// JSONSet assigns one path step.
func (o *Object) JSONSet(key string, value any) error {
	return o.assign(key, value)
}

func (o *Object) ownSlots() *slotTable { return o.slots }

func (o *Object) lookup(name string) (slot, bool) {
	if s, ok := o.slots.get(name); ok {
		return s, true
	}
	return protoTarget{o.typ}.lookup(name)
}

// detach copies an inherited container value named name into an own slot.
func (o *Object) detach(name string) {
	if o.slots.has(name) {
		return
	}
	s, ok := protoTarget{o.typ}.lookup(name)
	if !ok {
		return
	}
	vs, ok := s.(*valueSlot)
	if !ok || vs.hidden {
		return
	}
	if c, ok := copyContainer(vs.value); ok {
		o.slots.put(name, &valueSlot{value: c})
	}
}

func (o *Object) read(name string) any {
	s, ok := o.lookup(name)
	if !ok {
		return nil
	}
	return resolveSlot(s, o)
}

// assign has property assignment semantics: accessors run their setter,
// read-only data properties keep their value, anything else becomes an own
// value.
func (o *Object) assign(name string, value any) error {
	s, ok := o.lookup(name)
	if a, isAccessor := s.(*accessorSlot); ok && isAccessor {
		switch {
		case a.Set != nil:
			return a.Set(o, value)
		case a.Get != nil || !a.Writable:
			return nil
		}
		if own, isOwn := o.slots.get(name); isOwn && own == s {
			updated := *a
			updated.Value = value
			o.slots.put(name, &updated)
			return nil
		}
	}
	o.slots.put(name, &valueSlot{value: value})
	return nil
}

func (o *Object) describe() string { return o.String() }

// initialize applies one bundle of construction data.
func (o *Object) initialize(data Bundle) error {
	for _, key := range []string{ConcatProperties, MergedProperties} {
		if _, ok := data[key]; ok {
			return fmt.Errorf("%w: %s found in construction data", ErrAccumulatorRedeclared, key)
		}
	}
	return applyBundle(o, data)
}

// defaultInit is the init method of Base. Every bundle argument is applied
// in order; nil arguments are skipped.
func defaultInit(self *Object, _ Super, args ...any) (any, error) {
	for _, arg := range args {
		data, err := asBundle(arg)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		if err := self.initialize(data); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func asBundle(v any) (Bundle, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case Bundle:
		return b, nil
	case map[string]any:
		return Bundle(b), nil
	}
	return nil, fmt.Errorf("%w: got %T", ErrInvalidInitData, v)
}
