package object

import "fmt"

// Super invokes the implementation a method shadows, with the same
// receiver. It returns (nil, nil) when nothing was shadowed.
type Super func(args ...any) (any, error)

// Method is an instance method. super delegates to the overridden
// implementation.
type Method func(self *Object, super Super, args ...any) (any, error)

// StaticMethod is a type-level method, contributed through Static bundles.
type StaticMethod func(t *Type, super Super, args ...any) (any, error)

// Func is a method bound to its receiver, as returned by reading a method
// property.
type Func func(args ...any) (any, error)

type methodImpl func(recv Receiver, super Super, args []any) (any, error)

type methodSlot struct {
	name     string
	impl     methodImpl
	shadowed *methodSlot
	hidden   bool
}

func (m *methodSlot) enumerable() bool { return !m.hidden }

func (m *methodSlot) invoke(recv Receiver, args []any) (any, error) {
	shadowed := m.shadowed
	super := func(args ...any) (any, error) {
		if shadowed == nil {
			return nil, nil
		}
		return shadowed.invoke(recv, args)
	}
	return m.impl(recv, super, args)
}

func (m *methodSlot) bind(recv Receiver) Func {
	return func(args ...any) (any, error) {
		return m.invoke(recv, args)
	}
}

// methodOf adapts the supported method shapes. ok is false for values that
// are not methods.
func methodOf(name string, v any) (methodImpl, bool) {
	switch fn := v.(type) {
	case Method:
		return instanceImpl(name, fn), true
	case func(*Object, Super, ...any) (any, error):
		return instanceImpl(name, fn), true
	case StaticMethod:
		return staticImpl(name, fn), true
	case func(*Type, Super, ...any) (any, error):
		return staticImpl(name, fn), true
	}
	return nil, false
}

func instanceImpl(name string, fn Method) methodImpl {
	return func(recv Receiver, super Super, args []any) (any, error) {
		self, ok := recv.(*Object)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires an instance receiver, got %T", ErrNotCallable, name, recv)
		}
		return fn(self, super, args...)
	}
}

func staticImpl(name string, fn StaticMethod) methodImpl {
	return func(recv Receiver, super Super, args []any) (any, error) {
		t, ok := recv.(*Type)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires a type receiver, got %T", ErrNotCallable, name, recv)
		}
		return fn(t, super, args...)
	}
}

// callSlot invokes s as a method of recv.
func callSlot(s slot, recv Receiver, name string, args []any) (any, error) {
	if m, ok := s.(*methodSlot); ok {
		return m.invoke(recv, args)
	}
	switch fn := resolveSlot(s, recv).(type) {
	case Func:
		return fn(args...)
	case func(...any) (any, error):
		return fn(args...)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotCallable, name)
}
