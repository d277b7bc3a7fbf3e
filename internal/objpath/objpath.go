// Package objpath resolves dot/bracket property paths ("a.b[0].c",
// `a["dotted.key"]`) against objects and plain data.
//
// Each path step is delegated to go-openapi/jsonpointer, so any value that
// implements jsonpointer.JSONPointable / jsonpointer.JSONSetable takes part in
// resolution alongside maps, slices and structs.
package objpath

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// ErrInvalidPath is returned when a path cannot be parsed.
var ErrInvalidPath = errors.New("invalid property path")

// Owner reports whether a key is a direct (own) property of a value.
type Owner interface {
	HasOwn(key string) bool
}

// Deleter removes a direct property. It returns false when the property
// exists but cannot be removed.
type Deleter interface {
	Delete(key string) bool
}

// Parse splits a path into its keys.
func Parse(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	var keys []string
	var b strings.Builder

	for i := 0; i < len(path); {
		switch c := path[i]; c {
		case '.':
			if b.Len() == 0 && (i == 0 || path[i-1] != ']') {
				return nil, fmt.Errorf("%w: empty key at offset %d in %q", ErrInvalidPath, i, path)
			}
			if i == len(path)-1 {
				return nil, fmt.Errorf("%w: trailing separator in %q", ErrInvalidPath, path)
			}
			if b.Len() > 0 {
				keys = append(keys, b.String())
				b.Reset()
			}
			i++
		case '[':
			if b.Len() > 0 {
				keys = append(keys, b.String())
				b.Reset()
			}
			key, next, err := parseBracket(path, i)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
			i = next
		default:
			b.WriteByte(c)
			i++
		}
	}
	if b.Len() > 0 {
		keys = append(keys, b.String())
	}
	return keys, nil
}

// parseBracket reads a "[...]" segment starting at path[start] and returns
// the key and the offset just past the closing bracket.
func parseBracket(path string, start int) (string, int, error) {
	i := start + 1
	if i < len(path) && (path[i] == '"' || path[i] == '\'') {
		quote := path[i]
		end := strings.IndexByte(path[i+1:], quote)
		if end < 0 {
			return "", 0, fmt.Errorf("%w: unterminated quote in %q", ErrInvalidPath, path)
		}
		end += i + 1
		if end+1 >= len(path) || path[end+1] != ']' {
			return "", 0, fmt.Errorf("%w: expected ] after quoted key in %q", ErrInvalidPath, path)
		}
		return path[i+1 : end], end + 2, nil
	}

	end := strings.IndexByte(path[i:], ']')
	if end <= 0 {
		return "", 0, fmt.Errorf("%w: malformed index in %q", ErrInvalidPath, path)
	}
	return path[i : i+end], i + end + 1, nil
}

// Lookup resolves keys against doc. found is false when any step is absent.
func Lookup(doc any, keys []string) (value any, found bool) {
	cur := doc
	for _, key := range keys {
		next, ok := step(cur, key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Get parses path and resolves it against doc.
func Get(doc any, path string) (any, bool) {
	keys, err := Parse(path)
	if err != nil {
		return nil, false
	}
	return Lookup(doc, keys)
}

// Set assigns value at keys, creating intermediate maps for missing or nil
// steps.
func Set(doc any, keys []string, value any) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	parent := doc
	for i, key := range keys[:len(keys)-1] {
		next, ok := step(parent, key)
		if !ok || next == nil {
			next = map[string]any{}
			if err := setToken(parent, key, next); err != nil {
				return fmt.Errorf("failed to create %q: %w", strings.Join(keys[:i+1], "."), err)
			}
		}
		parent = next
	}

	last := keys[len(keys)-1]
	if err := setToken(parent, last, value); err != nil {
		return fmt.Errorf("failed to set %q: %w", strings.Join(keys, "."), err)
	}
	return nil
}

// Has reports whether every step of keys is a direct property of its parent.
func Has(doc any, keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	cur := doc
	for _, key := range keys {
		if !owns(cur, key) {
			return false
		}
		next, ok := step(cur, key)
		if !ok {
			return false
		}
		cur = next
	}
	return true
}

// Unset removes the property at keys. Missing properties count as removed.
func Unset(doc any, keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	parent, ok := Lookup(doc, keys[:len(keys)-1])
	if !ok || parent == nil {
		return true
	}

	last := keys[len(keys)-1]
	if d, ok := parent.(Deleter); ok {
		return d.Delete(last)
	}

	rv := reflect.Indirect(reflect.ValueOf(parent))
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		rv.SetMapIndex(reflect.ValueOf(last).Convert(rv.Type().Key()), reflect.Value{})
		return true
	}
	_, present := step(parent, last)
	return !present
}

// Pick copies the values found at paths into a new nested map, keyed the way
// the paths describe them. Paths that do not resolve are skipped.
func Pick(doc any, paths []string) map[string]any {
	out := map[string]any{}
	for _, path := range paths {
		keys, err := Parse(path)
		if err != nil {
			continue
		}
		value, ok := Lookup(doc, keys)
		if !ok {
			continue
		}
		_ = Set(out, keys, value)
	}
	return out
}

func step(node any, key string) (any, bool) {
	if node == nil {
		return nil, false
	}
	next, _, err := jsonpointer.GetForToken(node, key)
	if err != nil {
		return nil, false
	}
	return next, true
}

func setToken(node any, key string, value any) error {
	if node == nil {
		return fmt.Errorf("cannot set %q on nil", key)
	}
	if s, ok := node.(jsonpointer.JSONSetable); ok {
		return s.JSONSet(key, value)
	}
	// A nil reflect value would delete the key instead of storing nil.
	if value == nil {
		rv := reflect.Indirect(reflect.ValueOf(node))
		if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
			rv.SetMapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()), reflect.Zero(rv.Type().Elem()))
			return nil
		}
	}
	_, err := jsonpointer.SetForToken(node, key, value)
	return err
}

func owns(node any, key string) bool {
	if node == nil {
		return false
	}
	if o, ok := node.(Owner); ok {
		return o.HasOwn(key)
	}

	rv := reflect.Indirect(reflect.ValueOf(node))
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		return rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).IsValid()
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(key)
		return err == nil && idx >= 0 && idx < rv.Len()
	}
	_, ok := step(node, key)
	return ok
}
