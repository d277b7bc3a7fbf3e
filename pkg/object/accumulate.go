package object

import (
	"fmt"
	"reflect"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
)

// concatValues appends contributed to existing. Slices are spread, any other
// non-nil value is appended as a single element. The result keeps a typed
// slice's type when every element fits it and is a []any otherwise. It never
// aliases either input.
func concatValues(existing, contributed any) any {
	if typed, ok := concatTyped(existing, contributed); ok {
		return typed
	}
	out := make([]any, 0)
	out = appendSpread(out, existing)
	return appendSpread(out, contributed)
}

func concatTyped(existing, contributed any) (any, bool) {
	var st reflect.Type
	for _, v := range []any{existing, contributed} {
		if v == nil {
			continue
		}
		rt := reflect.TypeOf(v)
		if rt.Kind() == reflect.Slice && rt.Elem().Kind() != reflect.Interface {
			st = rt
			break
		}
	}
	if st == nil {
		return nil, false
	}

	out := reflect.MakeSlice(st, 0, 0)
	for _, v := range []any{existing, contributed} {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		switch {
		case rv.Type() == st:
			out = reflect.AppendSlice(out, rv)
		case rv.Kind() != reflect.Slice && rv.Type().AssignableTo(st.Elem()):
			out = reflect.Append(out, rv)
		default:
			return nil, false
		}
	}
	return out.Interface(), true
}

func appendSpread(out []any, v any) []any {
	switch v := v.(type) {
	case nil:
		return out
	case []any:
		return append(out, v...)
	case string:
		return append(out, v)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			out = append(out, rv.Index(i).Interface())
		}
		return out
	}
	return append(out, v)
}

// mergeValues deep-merges contributed over a copy of existing.
func mergeValues(existing, contributed any) (map[string]any, error) {
	src, err := toPlainMap(contributed)
	if err != nil {
		return nil, err
	}
	dst := map[string]any{}
	if existing != nil {
		cur, err := toPlainMap(existing)
		if err != nil {
			return nil, err
		}
		dst = cloneMap(cur)
	}
	if err := mergo.Merge(&dst, cloneMap(src), mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotMergeable, err)
	}
	return dst, nil
}

// toPlainMap normalizes maps and structs to map[string]any.
func toPlainMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	case Bundle:
		return m, nil
	}
	out := map[string]any{}
	if err := mapstructure.Decode(v, &out); err != nil {
		return nil, fmt.Errorf("%w: %T: %v", ErrNotMergeable, v, err)
	}
	return out, nil
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMap(v)
	case Bundle:
		return Bundle(cloneMap(v))
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

// copyContainer copies maps and slices so they can be written without
// touching the original. Untyped trees are copied deeply, other maps and
// slices one level deep. It reports false for any other value.
func copyContainer(v any) (any, bool) {
	switch v := v.(type) {
	case map[string]any, Bundle, []any:
		return cloneValue(v), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil, false
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface(), true
	case reflect.Map:
		if rv.IsNil() {
			return nil, false
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		for iter := rv.MapRange(); iter.Next(); {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface(), true
	}
	return nil, false
}
