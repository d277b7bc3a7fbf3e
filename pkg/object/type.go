package object

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coreobject/internal/objpath"
)

// Type is a class-like definition produced by Extend. A Type never changes
// after Extend returns: writes through Type and Prototype fail with
// ErrSealed, and instances copy inherited maps and slices before writing
// into them. Values reachable through pointers are shared.
type Type struct {
	name    string
	parent  *Type
	proto   *slotTable
	statics *slotTable

	prototypeMixin *Mixin
	classMixin     *Mixin

	native *nativeClass
}

var typeSeq atomic.Uint64

// Name returns the type name. Unnamed types get "<parent>$<n>".
func (t *Type) Name() string {
	return t.name
}

func (t *Type) String() string {
	return t.name
}

// Parent returns the direct ancestor, nil for Base.
func (t *Type) Parent() *Type {
	return t.parent
}

// Ancestors returns the ancestor chain from the direct parent up to Base.
func (t *Type) Ancestors() []*Type {
	var out []*Type
	for p := t.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	return out
}

// PrototypeMixin returns every instance-level bundle that built the
// prototype chain of t, root first.
func (t *Type) PrototypeMixin() *Mixin {
	return t.prototypeMixin
}

// ClassMixin returns every type-level bundle of t, root first.
func (t *Type) ClassMixin() *Mixin {
	return t.classMixin
}

// Prototype returns a read-only view of the prototype of t.
func (t *Type) Prototype() *Prototype {
	return &Prototype{t: t}
}

// ConcatProperties returns the names that accumulate by concatenation.
func (t *Type) ConcatProperties() []string {
	return slicesClone(declared(protoTarget{t}, ConcatProperties))
}

// MergedProperties returns the names that accumulate by deep merge.
func (t *Type) MergedProperties() []string {
	return slicesClone(declared(protoTarget{t}, MergedProperties))
}

// IsNative reports whether instances of t wrap a native Go value.
func (t *Type) IsNative() bool {
	return t.native != nil
}

// IsSubclassOf reports whether other is a proper ancestor of t.
func (t *Type) IsSubclassOf(other *Type) bool {
	if t.parent == nil || other == nil {
		return false
	}
	return t.parent == other || (t.parent != Base && t.parent.IsSubclassOf(other))
}

// Extend creates an unnamed subtype of t.
func (t *Type) Extend(sources ...Source) (*Type, error) {
	return t.ExtendNamed("", sources...)
}

// MustExtend is like Extend but panics on error.
func (t *Type) MustExtend(sources ...Source) *Type {
	sub, err := t.Extend(sources...)
	if err != nil {
		panic(err)
	}
	return sub
}

// ExtendNamed creates a subtype of t called name. Instance bundles are
// applied to the new prototype and Static bundles to the new type before
// ExtendNamed returns.
func (t *Type) ExtendNamed(name string, sources ...Source) (*Type, error) {
	if name == "" {
		name = t.name + "$" + strconv.FormatUint(typeSeq.Add(1), 10)
	}

	incr := NewMixin(sources...)
	sub := &Type{
		name:           name,
		parent:         t,
		proto:          newSlotTable(),
		statics:        newSlotTable(),
		prototypeMixin: NewMixin(t.prototypeMixin, incr.instancePart()),
		classMixin:     NewMixin(t.classMixin, incr.staticPart()),
		native:         t.native,
	}

	if err := incr.staticPart().applyTo(staticTarget{sub}); err != nil {
		return nil, fmt.Errorf("failed to extend %s: %w", t.name, err)
	}
	if err := incr.instancePart().applyTo(protoTarget{sub}); err != nil {
		return nil, fmt.Errorf("failed to extend %s: %w", t.name, err)
	}

	log().Debug("type extended",
		zap.String("type", sub.name),
		zap.String("parent", t.name),
		zap.Int("bundles", incr.Len()))
	return sub, nil
}

// New constructs an instance of t. data may be nil.
func (t *Type) New(data Bundle) (*Object, error) {
	return t.construct([]any{data})
}

// MustNew is like New but panics on error.
func (t *Type) MustNew(data Bundle) *Object {
	o, err := t.New(data)
	if err != nil {
		panic(err)
	}
	return o
}

// Create defines an anonymous subtype of t and constructs one instance of
// it. Methods, declarations and Static bundles define the subtype; plain
// values and descriptors become the instance's construction data.
func (t *Type) Create(sources ...Source) (*Object, error) {
	var typeSources []Source
	var data []any

	for _, e := range NewMixin(sources...).entries {
		if e.static {
			typeSources = append(typeSources, Static(e.props))
			continue
		}
		typeBundle, dataBundle := Bundle{}, Bundle{}
		for k, v := range e.props {
			_, isMethod := methodOf(k, v)
			if isMethod || k == ConcatProperties || k == MergedProperties {
				typeBundle[k] = v
			} else {
				dataBundle[k] = v
			}
		}
		if len(typeBundle) > 0 {
			typeSources = append(typeSources, typeBundle)
		}
		if len(dataBundle) > 0 {
			data = append(data, dataBundle)
		}
	}

	anon, err := t.ExtendNamed(t.name+"$anon-"+uuid.NewString()[:8], typeSources...)
	if err != nil {
		return nil, err
	}
	return anon.construct(data)
}

func (t *Type) construct(args []any) (*Object, error) {
	o := &Object{typ: t, slots: newSlotTable()}

	if t.native != nil {
		nv, err := t.native.construct(firstBundle(args))
		if err != nil {
			return nil, fmt.Errorf("failed to construct native %s: %w", t.native.name, err)
		}
		o.native = nv
	}

	o.id = nextID()
	o.slots.put(boidKey, &accessorSlot{Accessor{Value: o.id, Enumerable: true}})

	if _, err := o.Call("init", args...); err != nil {
		return nil, fmt.Errorf("failed to initialize %s: %w", t.name, err)
	}

	instanceLog().Debug("object constructed", zap.String("type", t.name), zap.String("boid", o.id))
	return o, nil
}

func firstBundle(args []any) Bundle {
	for _, arg := range args {
		if b, err := asBundle(arg); err == nil && b != nil {
			return b
		}
	}
	return nil
}

// CallStatic invokes a type-level method of t.
func (t *Type) CallStatic(name string, args ...any) (any, error) {
	s, ok := staticTarget{t}.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchMethod, t.name, name)
	}
	return callSlot(s, t, name, args)
}

// Get resolves a path against the type-level properties of t.
func (t *Type) Get(path string, def ...any) any {
	if v, ok := objpath.Get(t, path); ok {
		return v
	}
	return defaultOf(def)
}

// Set always fails: types are sealed once created.
func (t *Type) Set(path string, value any) error {
	return fmt.Errorf("%w: cannot set %s on %s", ErrSealed, path, t.name)
}

// Statics describes the own type-level slots of t.
func (t *Type) Statics() []SlotInfo {
	return t.statics.infos()
}

// JSONLookup resolves one path step against the static chain.
func (t *Type) JSONLookup(key string) (any, error) {
	s, ok := staticTarget{t}.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchProperty, t.name, key)
	}
	return resolveSlot(s, t), nil
}

// JSONSet always fails: types are sealed once created.
func (t *Type) JSONSet(key string, _ any) error {
	return t.Set(key, nil)
}

// Prototype is a read-only view of a type's prototype chain.
type Prototype struct {
	t *Type
}

// Type returns the type owning the prototype.
func (p *Prototype) Type() *Type {
	return p.t
}

// Get resolves path against the prototype chain, with the prototype as the
// receiver of any getter.
func (p *Prototype) Get(path string, def ...any) any {
	if v, ok := objpath.Get(p, path); ok {
		return v
	}
	return defaultOf(def)
}

// Set always fails: prototypes are sealed once their type is created.
func (p *Prototype) Set(path string, value any) error {
	return fmt.Errorf("%w: cannot set %s on %s.prototype", ErrSealed, path, p.t.name)
}

// Keys returns the enumerable own property names in definition order.
func (p *Prototype) Keys() []string {
	var keys []string
	p.t.proto.each(func(name string, s slot) {
		if s.enumerable() {
			keys = append(keys, name)
		}
	})
	return keys
}

// HasOwn reports whether name is defined directly on this prototype.
func (p *Prototype) HasOwn(name string) bool {
	_, ok := p.t.proto.get(name)
	return ok
}

// Slots describes the own slots of this prototype.
func (p *Prototype) Slots() []SlotInfo {
	return p.t.proto.infos()
}

// JSONLookup resolves one path step against the prototype chain.
func (p *Prototype) JSONLookup(key string) (any, error) {
	s, ok := protoTarget{p.t}.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s.prototype.%s", ErrNoSuchProperty, p.t.name, key)
	}
	return resolveSlot(s, p), nil
}

// JSONSet always fails: prototypes are sealed.
func (p *Prototype) JSONSet(key string, _ any) error {
	return p.Set(key, nil)
}

// protoTarget applies bundles to a type's prototype.
type protoTarget struct {
	t *Type
}

func (pt protoTarget) ownSlots() *slotTable { return pt.t.proto }

func (pt protoTarget) lookup(name string) (slot, bool) {
	for c := pt.t; c != nil; c = c.parent {
		if s, ok := c.proto.get(name); ok {
			return s, true
		}
	}
	return nil, false
}

func (pt protoTarget) read(name string) any {
	s, ok := pt.lookup(name)
	if !ok {
		return nil
	}
	return resolveSlot(s, pt.t.Prototype())
}

func (pt protoTarget) assign(name string, value any) error {
	pt.t.proto.put(name, &valueSlot{value: value})
	return nil
}

func (pt protoTarget) DefineAccessor(name string, a Accessor) {
	pt.t.proto.put(name, &accessorSlot{a})
}

func (pt protoTarget) describe() string { return pt.t.name + ".prototype" }

// staticTarget applies Static bundles to a type.
type staticTarget struct {
	t *Type
}

func (st staticTarget) ownSlots() *slotTable { return st.t.statics }

func (st staticTarget) lookup(name string) (slot, bool) {
	for c := st.t; c != nil; c = c.parent {
		if s, ok := c.statics.get(name); ok {
			return s, true
		}
	}
	return nil, false
}

func (st staticTarget) read(name string) any {
	s, ok := st.lookup(name)
	if !ok {
		return nil
	}
	return resolveSlot(s, st.t)
}

func (st staticTarget) assign(name string, value any) error {
	st.t.statics.put(name, &valueSlot{value: value})
	return nil
}

func (st staticTarget) DefineAccessor(name string, a Accessor) {
	st.t.statics.put(name, &accessorSlot{a})
}

func (st staticTarget) describe() string { return st.t.name }

func defaultOf(def []any) any {
	if len(def) > 0 {
		return def[0]
	}
	return nil
}

func slicesClone(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
