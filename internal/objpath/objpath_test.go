package objpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"a", []string{"a"}},
		{"a.b.c", []string{"a", "b", "c"}},
		{"a[0].b", []string{"a", "0", "b"}},
		{"a[0][1]", []string{"a", "0", "1"}},
		{`a["x.y"].z`, []string{"a", "x.y", "z"}},
		{"a['k']", []string{"a", "k"}},
		{"[2]", []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Parse(tt.path)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestParseRejectsMalformedPaths(t *testing.T) {
	for _, path := range []string{"", ".a", "a.", "a..b", "a[", "a[]", `a["x]`, `a["x"`} {
		_, err := Parse(path)
		assert.ErrorIs(t, err, ErrInvalidPath, "path %q", path)
	}
}

func TestLookup(t *testing.T) {
	doc := map[string]any{
		"name": "Sue",
		"tags": []any{"a", "b"},
		"meta": map[string]any{"owner": nil},
	}

	v, ok := Get(doc, "tags[1]")
	require.True(t, ok)
	assert.Equal(t, "b", v)

	v, ok = Get(doc, "meta.owner")
	assert.True(t, ok, "present nil values resolve")
	assert.Nil(t, v)

	_, ok = Get(doc, "meta.missing")
	assert.False(t, ok)

	_, ok = Get(doc, "name.first")
	assert.False(t, ok)

	_, ok = Get(doc, "tags[5]")
	assert.False(t, ok)
}

func TestSetCreatesIntermediateMaps(t *testing.T) {
	doc := map[string]any{}

	require.NoError(t, Set(doc, []string{"a", "b", "c"}, 1))
	require.NoError(t, Set(doc, []string{"a", "d"}, nil))

	want := map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": nil,
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("Set mismatch (-want +got):\n%s", diff)
	}
}

func TestHasAndUnset(t *testing.T) {
	doc := map[string]any{
		"a": map[string]any{"b": 1},
		"l": []any{1, 2},
	}

	assert.True(t, Has(doc, []string{"a", "b"}))
	assert.True(t, Has(doc, []string{"l", "1"}))
	assert.False(t, Has(doc, []string{"l", "2"}))
	assert.False(t, Has(doc, []string{"a", "c"}))

	assert.True(t, Unset(doc, []string{"a", "b"}))
	assert.False(t, Has(doc, []string{"a", "b"}))
	assert.True(t, Unset(doc, []string{"missing", "x"}), "missing paths count as removed")
}

func TestPick(t *testing.T) {
	doc := map[string]any{
		"a": map[string]any{"b": 1, "c": 2},
		"d": 3,
	}

	got := Pick(doc, []string{"a.b", "d", "nope"})
	want := map[string]any{
		"a": map[string]any{"b": 1},
		"d": 3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Pick mismatch (-want +got):\n%s", diff)
	}
}

type ownedDoc struct {
	values map[string]any
}

func (d *ownedDoc) JSONLookup(key string) (any, error) {
	if v, ok := d.values[key]; ok {
		return v, nil
	}
	return nil, ErrInvalidPath
}

func (d *ownedDoc) JSONSet(key string, value any) error {
	d.values[key] = value
	return nil
}

func (d *ownedDoc) HasOwn(key string) bool {
	_, ok := d.values[key]
	return ok
}

func TestPointableDocuments(t *testing.T) {
	doc := &ownedDoc{values: map[string]any{"x": 1}}

	v, ok := Get(doc, "x")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	require.NoError(t, Set(doc, []string{"y", "z"}, "deep"))
	v, ok = Get(doc, "y.z")
	require.True(t, ok)
	assert.Equal(t, "deep", v)
	assert.True(t, Has(doc, []string{"y", "z"}))
}
