package object

import (
	"fmt"
	"maps"
	"slices"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"go.uber.org/zap"
)

// Names of the prototype properties that declare accumulating properties.
// Concatenated values keep the slice type of a typed slice when all
// contributions fit it, and become []any when element types are mixed.
const (
	ConcatProperties = "concatProperties"
	MergedProperties = "mergedProperties"
)

// Source is anything Extend, Create and NewMixin accept: a Bundle, a
// Static bundle or a *Mixin.
type Source interface {
	mixinSource()
}

// Bundle is a set of instance-level properties and methods.
type Bundle map[string]any

// Static is a set of type-level properties and static methods.
type Static map[string]any

func (Bundle) mixinSource() {}
func (Static) mixinSource() {}
func (*Mixin) mixinSource() {}

type mixinEntry struct {
	props  map[string]any
	static bool
}

// Mixin is an ordered, flattened composition of bundles. Later entries win
// for same-named plain properties.
type Mixin struct {
	entries []mixinEntry
}

// NewMixin composes sources left to right, flattening nested mixins.
func NewMixin(sources ...Source) *Mixin {
	m := &Mixin{}
	for _, src := range sources {
		switch src := src.(type) {
		case Bundle:
			m.entries = append(m.entries, mixinEntry{props: src})
		case Static:
			m.entries = append(m.entries, mixinEntry{props: src, static: true})
		case *Mixin:
			if src != nil {
				m.entries = append(m.entries, src.entries...)
			}
		}
	}
	return m
}

// Len returns the number of flattened bundles.
func (m *Mixin) Len() int {
	return len(m.entries)
}

// Bundles returns the instance-level bundles in application order.
func (m *Mixin) Bundles() []Bundle {
	var out []Bundle
	for _, e := range m.entries {
		if !e.static {
			out = append(out, Bundle(e.props))
		}
	}
	return out
}

// Statics returns the type-level bundles in application order.
func (m *Mixin) Statics() []Static {
	var out []Static
	for _, e := range m.entries {
		if e.static {
			out = append(out, Static(e.props))
		}
	}
	return out
}

func (m *Mixin) instancePart() *Mixin {
	part := &Mixin{}
	for _, e := range m.entries {
		if !e.static {
			part.entries = append(part.entries, e)
		}
	}
	return part
}

func (m *Mixin) staticPart() *Mixin {
	part := &Mixin{}
	for _, e := range m.entries {
		if e.static {
			part.entries = append(part.entries, e)
		}
	}
	return part
}

// Apply applies the instance-level bundles of m to o with the same rules the
// construction pipeline uses.
func (m *Mixin) Apply(o *Object) error {
	bundles := m.Bundles()
	for _, b := range bundles {
		if err := o.initialize(b); err != nil {
			return err
		}
	}
	mixinLog().Debug("mixin applied", zap.String("target", o.describe()), zap.Int("bundles", len(bundles)))
	return nil
}

// applyTo runs every entry of m against tg, ignoring the entry kind.
func (m *Mixin) applyTo(tg target) error {
	for _, e := range m.entries {
		if err := applyBundle(tg, e.props); err != nil {
			return err
		}
	}
	if len(m.entries) > 0 {
		mixinLog().Debug("mixin applied", zap.String("target", tg.describe()), zap.Int("bundles", len(m.entries)))
	}
	return nil
}

// target is something a bundle can be applied to: a prototype, a type's
// static table or an instance.
type target interface {
	PropertyTarget
	ownSlots() *slotTable
	// lookup finds name on the target or anything it inherits from.
	lookup(name string) (slot, bool)
	// read resolves the current value of name for the target's receiver.
	read(name string) any
	// assign stores a plain value under name.
	assign(name string, value any) error
	describe() string
}

// applyBundle applies one bundle. Declarations are processed first so the
// accumulation rules are active for the rest of the same pass.
func applyBundle(tg target, props map[string]any) error {
	for _, key := range []string{ConcatProperties, MergedProperties} {
		v, ok := props[key]
		if !ok {
			continue
		}
		names, err := declaredNames(v)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", tg.describe(), key, err)
		}
		union := unionNames(declared(tg, key), names)
		tg.ownSlots().put(key, &valueSlot{value: union, hidden: true})
	}

	concat := declared(tg, ConcatProperties)
	merged := declared(tg, MergedProperties)

	for _, key := range slices.Sorted(maps.Keys(props)) {
		if key == ConcatProperties || key == MergedProperties {
			continue
		}
		if err := applyProperty(tg, key, props[key], concat, merged); err != nil {
			return fmt.Errorf("%s.%s: %w", tg.describe(), key, err)
		}
	}
	return nil
}

func applyProperty(tg target, key string, value any, concat, merged []string) error {
	if slices.Contains(concat, key) {
		return tg.assign(key, concatValues(tg.read(key), value))
	}
	if slices.Contains(merged, key) {
		m, err := mergeValues(tg.read(key), value)
		if err != nil {
			return err
		}
		return tg.assign(key, m)
	}
	if d, ok := value.(Descriptor); ok {
		d.DefineProperty(tg, key)
		return nil
	}
	if impl, ok := methodOf(key, value); ok {
		installMethod(tg, key, impl, false)
		return nil
	}
	return tg.assign(key, value)
}

// installMethod stores impl under name, capturing whatever method the name
// currently resolves to as its super implementation.
func installMethod(tg target, name string, impl methodImpl, hidden bool) {
	var shadowed *methodSlot
	if s, ok := tg.lookup(name); ok {
		shadowed, _ = s.(*methodSlot)
	}
	tg.ownSlots().put(name, &methodSlot{name: name, impl: impl, shadowed: shadowed, hidden: hidden})
}

// declared returns the names currently declared under key on tg.
func declared(tg target, key string) []string {
	names, _ := tg.read(key).([]string)
	return names
}

func declaredNames(v any) ([]string, error) {
	switch names := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{names}, nil
	case []string:
		return names, nil
	case []any:
		out := make([]string, 0, len(names))
		for _, n := range names {
			s, ok := n.(string)
			if !ok {
				return nil, fmt.Errorf("%w: name %v is %T, not a string", ErrInvalidDeclaration, n, n)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T is not a list of names", ErrInvalidDeclaration, v)
}

// unionNames appends added to existing, dropping duplicates and keeping
// first occurrence order.
func unionNames(existing, added []string) []string {
	set := linkedhashset.New()
	for _, n := range existing {
		set.Add(n)
	}
	for _, n := range added {
		set.Add(n)
	}
	out := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		out = append(out, v.(string))
	}
	return out
}
