package object

import (
	"fmt"
)

// Base is the root of every type hierarchy.
var Base *Type

func init() {
	Base = newBase()
}

func rootPrototype() Bundle {
	return Bundle{
		ConcatProperties: []string{},
		MergedProperties: []string{},

		"init": Method(defaultInit),

		"get": Method(func(self *Object, _ Super, args ...any) (any, error) {
			path, err := stringArg("get", args, 0)
			if err != nil {
				return nil, err
			}
			return self.Get(path, args[1:]...), nil
		}),

		"set": Method(func(self *Object, _ Super, args ...any) (any, error) {
			path, err := stringArg("set", args, 0)
			if err != nil {
				return nil, err
			}
			if len(args) < 2 {
				return nil, fmt.Errorf("%w: set requires a value", ErrNotCallable)
			}
			return self, self.Set(path, args[1])
		}),

		"unset": Method(func(self *Object, _ Super, args ...any) (any, error) {
			path, err := stringArg("unset", args, 0)
			if err != nil {
				return nil, err
			}
			return self.Unset(path), nil
		}),

		"has": Method(func(self *Object, _ Super, args ...any) (any, error) {
			path, err := stringArg("has", args, 0)
			if err != nil {
				return nil, err
			}
			return self.Has(path), nil
		}),

		"getProperties": Method(func(self *Object, _ Super, args ...any) (any, error) {
			paths := make([]string, 0, len(args))
			for i := range args {
				p, err := stringArg("getProperties", args, i)
				if err != nil {
					return nil, err
				}
				paths = append(paths, p)
			}
			return self.GetProperties(paths...), nil
		}),
	}
}

func rootStatics() Static {
	return Static{
		"extend": StaticMethod(func(t *Type, _ Super, args ...any) (any, error) {
			sources, err := toSources(args)
			if err != nil {
				return nil, err
			}
			return t.Extend(sources...)
		}),

		"create": StaticMethod(func(t *Type, _ Super, args ...any) (any, error) {
			sources, err := toSources(args)
			if err != nil {
				return nil, err
			}
			return t.Create(sources...)
		}),

		"isSubclassOf": StaticMethod(func(t *Type, _ Super, args ...any) (any, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%w: isSubclassOf takes one type", ErrNotCallable)
			}
			other, ok := args[0].(*Type)
			if !ok {
				return false, nil
			}
			return t.IsSubclassOf(other), nil
		}),
	}
}

func newBase() *Type {
	protoBundle, staticBundle := rootPrototype(), rootStatics()
	t := &Type{
		name:           "BaseObject",
		proto:          newSlotTable(),
		statics:        newSlotTable(),
		prototypeMixin: NewMixin(protoBundle),
		classMixin:     NewMixin(staticBundle),
	}
	if err := t.prototypeMixin.applyTo(protoTarget{t}); err != nil {
		panic(err)
	}
	if err := t.classMixin.applyTo(staticTarget{t}); err != nil {
		panic(err)
	}

	// Built-in prototype members stay out of instance key listings.
	t.proto.each(func(_ string, s slot) {
		switch s := s.(type) {
		case *valueSlot:
			s.hidden = true
		case *methodSlot:
			s.hidden = true
		}
	})
	return t
}

func stringArg(method string, args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%w: %s requires a path", ErrNotCallable, method)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s path must be a string, got %T", ErrNotCallable, method, args[i])
	}
	return s, nil
}

func toSources(args []any) ([]Source, error) {
	sources := make([]Source, 0, len(args))
	for _, arg := range args {
		switch src := arg.(type) {
		case Source:
			sources = append(sources, src)
		case map[string]any:
			sources = append(sources, Bundle(src))
		default:
			return nil, fmt.Errorf("%w: %T", ErrInvalidSource, arg)
		}
	}
	return sources, nil
}
