package ordered

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMap_InsertionOrder(t *testing.T) {
	m := New[int]()
	m.Set("zeta", 1)
	m.Set("alpha", 2)
	m.Set("mid", 3)
	m.Set("zeta", 4)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, m.SortedKeys())

	v, ok := m.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, 4, v)
	assert.Equal(t, 3, m.Len())
}

func TestMap_Delete(t *testing.T) {
	m := New[string]()
	m.Set("a", "1")
	m.Set("b", "2")
	m.Set("c", "3")
	m.Delete("b")
	m.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.False(t, m.Has("b"))
}

func TestMap_NilSafe(t *testing.T) {
	var m *Map[int]
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Keys())
	_, ok := m.Get("x")
	assert.False(t, ok)
	for range m.All() {
		t.Fatal("nil map must not yield")
	}
}

func TestMap_Iterators(t *testing.T) {
	m := New[int]()
	m.Set("b", 2)
	m.Set("a", 1)

	var inserted, sorted []string
	for k := range m.All() {
		inserted = append(inserted, k)
	}
	for k := range m.Sorted() {
		sorted = append(sorted, k)
	}
	assert.Equal(t, []string{"b", "a"}, inserted)
	assert.Equal(t, []string{"a", "b"}, sorted)
}

func TestMap_YAMLKeepsDocumentOrder(t *testing.T) {
	src := []byte("zulu: 1\nalpha: 2\nmike: 3\n")
	var m Map[int]
	require.NoError(t, yaml.Unmarshal(src, &m))
	assert.Equal(t, []string{"zulu", "alpha", "mike"}, m.Keys())
}

func TestMap_JSONRoundTrip(t *testing.T) {
	m := New[string]()
	m.Set("y", "1")
	m.Set("x", "2")

	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"y":"1","x":"2"}`, string(data))
	assert.Equal(t, `{"y":"1","x":"2"}`, string(data))

	var back Map[string]
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, []string{"y", "x"}, back.Keys())
}

func TestMap_RejectsNonMapping(t *testing.T) {
	var m Map[int]
	err := yaml.Unmarshal([]byte("- 1\n- 2\n"), &m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a mapping")
}

func TestMap_Clone(t *testing.T) {
	m := New[int]()
	m.Set("a", 1)
	c := m.Clone()
	c.Set("b", 2)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, c.Len())
}
