package object

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// nativeClass is a Go type integrated through ExtendClass.
type nativeClass struct {
	name      string
	construct func(data Bundle) (any, error)
}

var errorType = reflect.TypeFor[error]()

// ExtendClass integrates a native Go type as an ancestor. Instances run ctor
// first, then receive a boid and run init. The exported methods of T seed the
// prototype under their lower-camel names ("Reset" becomes "reset"), so
// overrides in sources reach them through Super. Methods whose names collide
// with Base prototype members (Init, Get, Set, ...) are not exposed as slots;
// they stay reachable through NativeAs.
func ExtendClass[T any](ctor func(data Bundle) (T, error), sources ...Source) (*Type, error) {
	typ := reflect.TypeFor[T]()
	seed := nativeMethods(typ)
	incr := NewMixin(sources...)

	t := &Type{
		name:    typ.String(),
		parent:  Base,
		proto:   newSlotTable(),
		statics: newSlotTable(),
		native: &nativeClass{
			name: typ.String(),
			construct: func(data Bundle) (any, error) {
				return ctor(data)
			},
		},
	}
	t.prototypeMixin = NewMixin(seed, Base.prototypeMixin, incr.instancePart())
	t.classMixin = NewMixin(Base.classMixin, incr.staticPart())

	if err := incr.staticPart().applyTo(staticTarget{t}); err != nil {
		return nil, fmt.Errorf("failed to extend %s: %w", t.name, err)
	}
	if err := NewMixin(seed, incr.instancePart()).applyTo(protoTarget{t}); err != nil {
		return nil, fmt.Errorf("failed to extend %s: %w", t.name, err)
	}

	log().Debug("native type extended", zap.String("type", t.name), zap.Int("methods", len(seed)))
	return t, nil
}

// nativeMethods wraps every exported method of typ that does not shadow a
// Base prototype member.
func nativeMethods(typ reflect.Type) Bundle {
	seed := Bundle{}
	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		if !m.IsExported() {
			continue
		}
		name := lowerFirst(m.Name)
		if Base.proto.has(name) {
			log().Debug("native method shadowed by builtin",
				zap.String("type", typ.String()), zap.String("method", m.Name))
			continue
		}
		goName := m.Name
		seed[name] = Method(func(self *Object, _ Super, args ...any) (any, error) {
			return callNative(self, goName, args)
		})
	}
	return seed
}

func callNative(self *Object, name string, args []any) (any, error) {
	if self.native == nil {
		return nil, fmt.Errorf("%w: %s has no native value", ErrNativeCall, self)
	}
	fn := reflect.ValueOf(self.native).MethodByName(name)
	if !fn.IsValid() {
		return nil, fmt.Errorf("%w: %T.%s", ErrNoSuchMethod, self.native, name)
	}

	in, err := nativeArgs(fn.Type(), args)
	if err != nil {
		return nil, fmt.Errorf("%w: %T.%s: %v", ErrNativeCall, self.native, name, err)
	}
	return nativeResults(fn.Type(), fn.Call(in))
}

func nativeArgs(ft reflect.Type, args []any) ([]reflect.Value, error) {
	n := ft.NumIn()
	if ft.IsVariadic() {
		if len(args) < n-1 {
			return nil, fmt.Errorf("want at least %d arguments, got %d", n-1, len(args))
		}
	} else if len(args) != n {
		return nil, fmt.Errorf("want %d arguments, got %d", n, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		pt := paramType(ft, i)
		if arg == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		v := reflect.ValueOf(arg)
		switch {
		case v.Type().AssignableTo(pt):
			in[i] = v
		case isNumeric(v.Kind()) && isNumeric(pt.Kind()):
			in[i] = v.Convert(pt)
		default:
			return nil, fmt.Errorf("argument %d: %T is not assignable to %s", i, arg, pt)
		}
	}
	return in, nil
}

func paramType(ft reflect.Type, i int) reflect.Type {
	n := ft.NumIn()
	if ft.IsVariadic() && i >= n-1 {
		return ft.In(n - 1).Elem()
	}
	return ft.In(i)
}

// nativeResults maps Go results to a method result: a trailing error is
// returned as the error, a single remaining value as the value and several
// values as a []any.
func nativeResults(ft reflect.Type, out []reflect.Value) (any, error) {
	var err error
	values := make([]any, 0, len(out))
	for i, v := range out {
		if i == len(out)-1 && ft.Out(i) == errorType {
			if !v.IsNil() {
				err = v.Interface().(error)
			}
			continue
		}
		values = append(values, v.Interface())
	}

	switch len(values) {
	case 0:
		return nil, err
	case 1:
		return values[0], err
	default:
		return values, err
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
