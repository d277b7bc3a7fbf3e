package object_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coreobject/pkg/object"
)

type counter struct {
	n     int
	steps []string
}

func (c *counter) Add(d int) int {
	c.n += d
	return c.n
}

func (c *counter) Value() int { return c.n }

func (c *counter) Scale(f float64) (int, error) {
	if f < 0 {
		return 0, errors.New("negative scale")
	}
	c.n = int(float64(c.n) * f)
	return c.n, nil
}

func (c *counter) Record(steps ...string) {
	c.steps = append(c.steps, steps...)
}

func newCounter(data object.Bundle) (*counter, error) {
	start, _ := data["start"].(int)
	if start < 0 {
		return nil, errors.New("start must not be negative")
	}
	return &counter{n: start}, nil
}

func TestExtendClass(t *testing.T) {
	counterType, err := object.ExtendClass(newCounter, object.Bundle{
		"add": object.Method(func(_ *object.Object, super object.Super, args ...any) (any, error) {
			v, err := super(args...)
			if err != nil {
				return nil, err
			}
			return v.(int) * 10, nil
		}),
	})
	require.NoError(t, err)
	assert.True(t, counterType.IsNative())
	assert.True(t, counterType.IsSubclassOf(object.Base))

	c := counterType.MustNew(object.Bundle{"start": 2})
	assert.Equal(t, 2, c.Get("start"))

	got, err := c.Call("add", 3)
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	got, err = c.Call("value")
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	native, ok := object.NativeAs[*counter](c)
	require.True(t, ok)
	assert.Equal(t, 5, native.n)

	t.Run("numeric arguments convert", func(t *testing.T) {
		got, err := c.Call("scale", 2)
		require.NoError(t, err)
		assert.Equal(t, 10, got)
	})

	t.Run("trailing error is returned", func(t *testing.T) {
		_, err := c.Call("scale", -1.0)
		assert.EqualError(t, err, "negative scale")
	})

	t.Run("variadic methods", func(t *testing.T) {
		_, err := c.Call("record", "a", "b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, native.steps)
	})

	t.Run("bad arguments", func(t *testing.T) {
		_, err := c.Call("add", "three")
		assert.ErrorIs(t, err, object.ErrNativeCall)

		_, err = c.Call("add")
		assert.ErrorIs(t, err, object.ErrNativeCall)
	})

	t.Run("constructor errors fail construction", func(t *testing.T) {
		_, err := counterType.New(object.Bundle{"start": -1})
		assert.ErrorContains(t, err, "start must not be negative")
	})

	t.Run("subtypes construct native values", func(t *testing.T) {
		sub := counterType.MustExtend(object.Bundle{
			"value": object.Method(func(_ *object.Object, super object.Super, _ ...any) (any, error) {
				v, err := super()
				return v.(int) + 1, err
			}),
		})
		assert.True(t, sub.IsNative())

		s := sub.MustNew(object.Bundle{"start": 7})
		got, err := s.Call("value")
		require.NoError(t, err)
		assert.Equal(t, 8, got)
		assert.NotSame(t, c.Native(), s.Native())
	})

	t.Run("plain types have no native value", func(t *testing.T) {
		o := object.Base.MustNew(nil)
		assert.Nil(t, o.Native())
		_, ok := object.NativeAs[*counter](o)
		assert.False(t, ok)
	})
}

type store struct {
	size int
}

func (s *store) Init(size int)     { s.size = size }
func (s *store) Get(key string) any { return "native:" + key }
func (s *store) Size() int          { return s.size }

func TestExtendClassKeepsBuiltins(t *testing.T) {
	storeType, err := object.ExtendClass(func(data object.Bundle) (*store, error) {
		return &store{size: 3}, nil
	})
	require.NoError(t, err)

	o, err := storeType.New(object.Bundle{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, o.Get("a"))

	got, err := o.Call("get", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = o.Call("size")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	assert.False(t, storeType.Prototype().HasOwn("init"))
	assert.False(t, storeType.Prototype().HasOwn("get"))
	assert.True(t, storeType.Prototype().HasOwn("size"))

	native, ok := object.NativeAs[*store](o)
	require.True(t, ok)
	assert.Equal(t, "native:a", native.Get("a"))
}
