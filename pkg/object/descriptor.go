package object

// Receiver is the value a getter, setter or method runs against: an
// *Object for instance properties, a *Type for static properties and a
// *Prototype when a prototype is read directly.
type Receiver interface {
	Get(path string, def ...any) any
	Set(path string, value any) error
}

// Accessor specifies an installed property. A nil Get makes it a data
// property holding Value; writes to a data property are ignored unless
// Writable. An accessor with Get and no Set ignores writes.
type Accessor struct {
	Get   func(self Receiver) any
	Set   func(self Receiver, value any) error
	Value any

	Enumerable   bool
	Configurable bool
	Writable     bool
}

// PropertyTarget is anything a descriptor can be installed on.
type PropertyTarget interface {
	DefineAccessor(name string, a Accessor)
}

// Descriptor is a bundle value that installs itself instead of being
// copied.
type Descriptor interface {
	DefineProperty(target PropertyTarget, name string)
}

// PropertyDescriptor is the generic Descriptor: it installs its Accessor
// as given.
type PropertyDescriptor struct {
	spec Accessor
}

// NewPropertyDescriptor wraps a.
func NewPropertyDescriptor(a Accessor) *PropertyDescriptor {
	return &PropertyDescriptor{spec: a}
}

// Accessor returns a copy of the wrapped accessor.
func (d *PropertyDescriptor) Accessor() Accessor {
	return d.spec
}

// DefineProperty installs the accessor on target under name, replacing any
// existing property of that name.
func (d *PropertyDescriptor) DefineProperty(target PropertyTarget, name string) {
	target.DefineAccessor(name, d.spec)
}
