package object_test

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coreobject/pkg/object"
	"coreobject/pkg/object/computed"
)

func boidNumber(t *testing.T, o *object.Object) uint64 {
	t.Helper()
	require.True(t, strings.HasPrefix(o.ID(), "bo"), o.ID())
	n, err := strconv.ParseUint(strings.TrimPrefix(o.ID(), "bo"), 10, 64)
	require.NoError(t, err)
	return n
}

func TestBoid(t *testing.T) {
	typ := object.Base.MustExtend()
	first := typ.MustNew(nil)
	second := typ.MustNew(nil)

	assert.NotEqual(t, first.ID(), second.ID())
	assert.Less(t, boidNumber(t, first), boidNumber(t, second))
	assert.Equal(t, first.ID(), first.Get("__boid__"))

	t.Run("boid is immutable", func(t *testing.T) {
		require.NoError(t, first.Set("__boid__", "bo-forged"))
		assert.Equal(t, first.ID(), first.Get("__boid__"))
		assert.False(t, first.Unset("__boid__"))
		assert.True(t, first.HasOwn("__boid__"))
	})

	t.Run("assigned before init runs", func(t *testing.T) {
		var seen any
		withInit := object.Base.MustExtend(object.Bundle{
			"init": object.Method(func(self *object.Object, super object.Super, args ...any) (any, error) {
				seen = self.Get("__boid__")
				return super(args...)
			}),
		})
		o := withInit.MustNew(nil)
		assert.Equal(t, o.ID(), seen)
	})

	t.Run("unique across goroutines", func(t *testing.T) {
		const n = 64
		ids := make([]string, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ids[i] = typ.MustNew(nil).ID()
			}()
		}
		wg.Wait()

		seen := map[string]bool{}
		for _, id := range ids {
			assert.False(t, seen[id], "duplicate boid %s", id)
			seen[id] = true
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("custom init receives construction data", func(t *testing.T) {
		typ := object.Base.MustExtend(object.Bundle{
			"init": object.Method(func(self *object.Object, super object.Super, args ...any) (any, error) {
				if _, err := super(args...); err != nil {
					return nil, err
				}
				return nil, self.Set("ready", true)
			}),
		})
		o := typ.MustNew(object.Bundle{"name": "x"})
		assert.Equal(t, "x", o.Get("name"))
		assert.Equal(t, true, o.Get("ready"))
	})

	t.Run("rejects non bundle data", func(t *testing.T) {
		o := object.Base.MustNew(nil)
		_, err := o.Call("init", 5)
		assert.ErrorIs(t, err, object.ErrInvalidInitData)
	})

	t.Run("init errors fail construction", func(t *testing.T) {
		boom := errors.New("boom")
		typ := object.Base.MustExtend(object.Bundle{
			"init": object.Method(func(*object.Object, object.Super, ...any) (any, error) {
				return nil, boom
			}),
		})
		_, err := typ.New(nil)
		assert.ErrorIs(t, err, boom)
		assert.Panics(t, func() { typ.MustNew(nil) })
	})
}

func newPersonType(t *testing.T) *object.Type {
	t.Helper()
	person, err := object.Base.ExtendNamed("Person", object.Bundle{
		"firstName": "",
		"lastName":  "",
		"fullName": computed.New(object.Accessor{
			Get: func(self object.Receiver) any {
				return fmt.Sprintf("%s %s", self.Get("firstName"), self.Get("lastName"))
			},
			Set: func(self object.Receiver, value any) error {
				first, last, _ := strings.Cut(value.(string), " ")
				if err := self.Set("firstName", first); err != nil {
					return err
				}
				return self.Set("lastName", last)
			},
			Enumerable: true,
		}),
	})
	require.NoError(t, err)
	return person
}

func TestComputedOnType(t *testing.T) {
	person := newPersonType(t)
	p := person.MustNew(object.Bundle{"firstName": "Jane", "lastName": "Doe"})

	assert.Equal(t, "Jane Doe", p.Get("fullName"))

	require.NoError(t, p.Set("fullName", "John Smith"))
	assert.Equal(t, "John", p.Get("firstName"))
	assert.Equal(t, "Smith", p.Get("lastName"))
	assert.True(t, p.HasOwn("firstName"))
	assert.False(t, p.HasOwn("fullName"))

	t.Run("setter runs for construction data", func(t *testing.T) {
		q := person.MustNew(object.Bundle{"fullName": "Ada Lovelace"})
		assert.Equal(t, "Ada", q.Get("firstName"))
		assert.Equal(t, "Ada Lovelace", q.Get("fullName"))
	})

	t.Run("getter of a subtype still sees instance data", func(t *testing.T) {
		emp := person.MustExtend(object.Bundle{"title": "eng"})
		e := emp.MustNew(object.Bundle{"firstName": "Kim", "lastName": "Ro"})
		assert.Equal(t, "Kim Ro", e.Get("fullName"))
	})
}

func TestComputedOnInstance(t *testing.T) {
	o := object.Base.MustNew(object.Bundle{
		"n": 2,
		"double": computed.New(object.Accessor{
			Get: func(self object.Receiver) any { return self.Get("n").(int) * 2 },
		}),
	})

	assert.True(t, o.HasOwn("double"))
	assert.Equal(t, 4, o.Get("double"))
	require.NoError(t, o.Set("n", 5))
	assert.Equal(t, 10, o.Get("double"))

	// A getter without a setter ignores writes.
	require.NoError(t, o.Set("double", 1))
	assert.Equal(t, 10, o.Get("double"))

	t.Run("non configurable accessors cannot be removed", func(t *testing.T) {
		assert.False(t, o.Unset("double"))
		assert.True(t, o.Has("double"))
	})

	t.Run("configurable accessors can be removed", func(t *testing.T) {
		c := object.Base.MustNew(object.Bundle{
			"tmp": computed.Constant(1, computed.Configurable()),
		})
		assert.True(t, c.Unset("tmp"))
		assert.False(t, c.Has("tmp"))
	})

	t.Run("writable data accessors update in place", func(t *testing.T) {
		w := object.Base.MustNew(object.Bundle{
			"w": object.NewPropertyDescriptor(object.Accessor{Value: 1, Writable: true, Enumerable: true}),
		})
		require.NoError(t, w.Set("w", 2))
		assert.Equal(t, 2, w.Get("w"))

		infos := w.Slots()
		require.Len(t, infos, 2)
		assert.Equal(t, object.SlotAccessor, infos[1].Kind)
		assert.Equal(t, 2, infos[1].Value)
	})
}

func TestPathAccess(t *testing.T) {
	o := object.Base.MustNew(object.Bundle{
		"a":    map[string]any{"b": 1},
		"list": []any{"x", "y", "z"},
	})

	assert.Equal(t, 1, o.Get("a.b"))
	assert.Equal(t, "y", o.Get("list[1]"))
	assert.Equal(t, "dflt", o.Get("missing", "dflt"))
	assert.Nil(t, o.Get("a.zzz"))

	require.NoError(t, o.Set("x.y.z", 5))
	assert.Equal(t, 5, o.Get("x.y.z"))
	assert.True(t, o.Has("x.y"))
	assert.True(t, o.Has("a.b"))
	assert.False(t, o.Has("foo"))
	assert.False(t, o.Has("init"))

	assert.True(t, o.Unset("a.b"))
	assert.False(t, o.Has("a.b"))
	assert.True(t, o.Unset("nope"))

	got := o.GetProperties("a", "x.y.z", "absent")
	want := object.Bundle{
		"a": map[string]any{},
		"x": map[string]any{"y": map[string]any{"z": 5}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetProperties mismatch (-want +got):\n%s", diff)
	}

	t.Run("nil values are present", func(t *testing.T) {
		require.NoError(t, o.Set("empty", nil))
		assert.True(t, o.Has("empty"))
		assert.Nil(t, o.Get("empty", "dflt"))
	})

	t.Run("builtin methods", func(t *testing.T) {
		got, err := o.Call("get", "x.y.z")
		require.NoError(t, err)
		assert.Equal(t, 5, got)

		self, err := o.Call("set", "k", 1)
		require.NoError(t, err)
		assert.Same(t, o, self)

		has, err := o.Call("has", "k")
		require.NoError(t, err)
		assert.Equal(t, true, has)

		props, err := o.Call("getProperties", "k")
		require.NoError(t, err)
		assert.Equal(t, object.Bundle{"k": 1}, props)

		removed, err := o.Call("unset", "k")
		require.NoError(t, err)
		assert.Equal(t, true, removed)

		_, err = o.Call("get", 3)
		assert.ErrorIs(t, err, object.ErrNotCallable)
	})

	t.Run("methods read as bound funcs", func(t *testing.T) {
		typ := object.Base.MustExtend(object.Bundle{
			"whoami": object.Method(func(self *object.Object, _ object.Super, _ ...any) (any, error) {
				return self.ID(), nil
			}),
		})
		inst := typ.MustNew(nil)
		fn, ok := inst.Get("whoami").(object.Func)
		require.True(t, ok)
		got, err := fn()
		require.NoError(t, err)
		assert.Equal(t, inst.ID(), got)
	})
}

func TestKeysAndProperties(t *testing.T) {
	typ := object.Base.MustExtend(object.Bundle{
		"a": 1,
		"m": returning(nil),
	})
	o := typ.MustNew(object.Bundle{"b": 2})

	assert.Equal(t, []string{"__boid__", "b", "a", "m"}, o.Keys())
	assert.Equal(t, []string{"__boid__", "b"}, o.OwnKeys())

	want := object.Bundle{"__boid__": o.ID(), "b": 2, "a": 1}
	if diff := cmp.Diff(want, o.Properties()); diff != "" {
		t.Errorf("Properties mismatch (-want +got):\n%s", diff)
	}

	t.Run("own values shadow inherited ones once", func(t *testing.T) {
		require.NoError(t, o.Set("a", 9))
		assert.Equal(t, []string{"__boid__", "b", "a", "m"}, o.Keys())
		assert.Equal(t, 9, o.Get("a"))
		assert.Equal(t, 1, typ.Prototype().Get("a"))
	})

	t.Run("hidden accessors are skipped", func(t *testing.T) {
		h := object.Base.MustNew(object.Bundle{"secret": computed.Constant("s")})
		assert.NotContains(t, h.Keys(), "secret")
		assert.Equal(t, "s", h.Get("secret"))
	})
}

func TestDecode(t *testing.T) {
	person := newPersonType(t)
	p := person.MustNew(object.Bundle{"firstName": "Jane", "lastName": "Doe", "age": 41})

	var out struct {
		FirstName string `mapstructure:"firstName"`
		FullName  string `mapstructure:"fullName"`
		Age       int    `mapstructure:"age"`
	}
	require.NoError(t, p.Decode(&out))
	assert.Equal(t, "Jane", out.FirstName)
	assert.Equal(t, "Jane Doe", out.FullName)
	assert.Equal(t, 41, out.Age)
}

func TestNestedWritesDoNotReachPrototype(t *testing.T) {
	typ := object.Base.MustExtend(object.Bundle{
		"opts":  map[string]any{"x": 0, "deep": map[string]any{"y": 1}},
		"names": []string{"a"},
	})
	first, second := typ.MustNew(nil), typ.MustNew(nil)

	require.NoError(t, first.Set("opts.x", 1))
	require.NoError(t, first.Set("opts.deep.y", 2))
	require.NoError(t, first.Set("names[0]", "z"))

	assert.Equal(t, 1, first.Get("opts.x"))
	assert.Equal(t, 2, first.Get("opts.deep.y"))
	assert.Equal(t, "z", first.Get("names[0]"))
	assert.True(t, first.HasOwn("opts"))

	assert.Equal(t, 0, second.Get("opts.x"))
	assert.Equal(t, 1, second.Get("opts.deep.y"))
	assert.Equal(t, "a", second.Get("names[0]"))
	assert.False(t, second.HasOwn("opts"))
	assert.Equal(t, 1, typ.Prototype().Get("opts.deep.y"))

	t.Run("unset", func(t *testing.T) {
		assert.True(t, second.Unset("opts.x"))
		assert.Nil(t, second.Get("opts.x"))
		assert.Equal(t, 0, typ.Prototype().Get("opts.x"))
	})
}
