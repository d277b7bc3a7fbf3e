// Package computed provides accessor descriptors for object bundles:
// generic computed properties, constants, aliases and derived read-only
// values.
//
// Writes to a Constant are silently ignored, while writes to a
// StrictConstant, Not or Readonly property fail with an
// *object.ImmutableError naming the property.
package computed

import (
	"reflect"

	"coreobject/pkg/object"
)

// Option adjusts the enumerable/configurable flags of a descriptor. Both
// default to false.
type Option func(*flags)

type flags struct {
	enumerable   bool
	configurable bool
}

// Enumerable makes the property show up in key listings.
func Enumerable() Option {
	return func(f *flags) { f.enumerable = true }
}

// Configurable allows the property to be removed.
func Configurable() Option {
	return func(f *flags) { f.configurable = true }
}

// FromOptions reads the "enumerable" and "configurable" keys of an options
// map. Missing or non-boolean entries leave the defaults.
func FromOptions(opts map[string]any) Option {
	return func(f *flags) {
		if v, ok := opts["enumerable"].(bool); ok {
			f.enumerable = v
		}
		if v, ok := opts["configurable"].(bool); ok {
			f.configurable = v
		}
	}
}

func resolve(opts []Option) flags {
	var f flags
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Property is a computed property descriptor.
type Property struct {
	object.PropertyDescriptor

	// immutable is the ImmutableError kind raised on writes, empty when the
	// accessor's own setter applies.
	immutable string
}

// DefineProperty installs the property under name.
func (p *Property) DefineProperty(target object.PropertyTarget, name string) {
	a := p.Accessor()
	if kind := p.immutable; kind != "" {
		a.Set = func(object.Receiver, any) error {
			return &object.ImmutableError{Property: name, Kind: kind}
		}
	}
	target.DefineAccessor(name, a)
}

// Immutable reports whether writes to the property fail.
func (p *Property) Immutable() bool {
	return p.immutable != ""
}

// New creates a computed property from a getter and setter.
func New(spec object.Accessor) *Property {
	return &Property{PropertyDescriptor: *object.NewPropertyDescriptor(spec)}
}

// Constant creates a property fixed to value. Writes are silently ignored.
func Constant(value any, opts ...Option) *Property {
	f := resolve(opts)
	return New(object.Accessor{
		Value:        value,
		Enumerable:   f.enumerable,
		Configurable: f.configurable,
	})
}

// StrictConstant creates a property fixed to value. Writes fail.
func StrictConstant(value any, opts ...Option) *Property {
	f := resolve(opts)
	p := New(object.Accessor{
		Get:          func(object.Receiver) any { return value },
		Enumerable:   f.enumerable,
		Configurable: f.configurable,
	})
	p.immutable = "constant"
	return p
}

// Alias forwards reads and writes to path.
func Alias(path string, opts ...Option) *Property {
	f := resolve(opts)
	return New(object.Accessor{
		Get: func(self object.Receiver) any {
			return self.Get(path)
		},
		Set: func(self object.Receiver, value any) error {
			return self.Set(path, value)
		},
		Enumerable:   f.enumerable,
		Configurable: f.configurable,
	})
}

// Not reads as the logical negation of the value at path. Writes fail.
func Not(path string, opts ...Option) *Property {
	f := resolve(opts)
	p := New(object.Accessor{
		Get: func(self object.Receiver) any {
			return !Truthy(self.Get(path))
		},
		Enumerable:   f.enumerable,
		Configurable: f.configurable,
	})
	p.immutable = "not"
	return p
}

// Readonly reads as the current value at path. Writes fail.
func Readonly(path string, opts ...Option) *Property {
	f := resolve(opts)
	p := New(object.Accessor{
		Get: func(self object.Receiver) any {
			return self.Get(path)
		},
		Enumerable:   f.enumerable,
		Configurable: f.configurable,
	})
	p.immutable = "readonly"
	return p
}

// Truthy reports whether v counts as true: nil, false, zero numbers, NaN
// and the empty string are false, everything else is true.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && f == f
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}
