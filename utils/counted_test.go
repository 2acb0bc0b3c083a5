package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lower(s string) string { return strings.ToLower(s) }

func TestCountValues(t *testing.T) {
	l := CountValues([]string{"Foo", "bar", "foo", "baz", "BAR", "foo", ""}, lower)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 3, l.Count("foo"))
	assert.Equal(t, 2, l.Count("bar"))
	assert.Equal(t, 1, l.Count("baz"))
	assert.Equal(t, 0, l.Count("missing"))

	// First object seen for a key is kept.
	assert.Equal(t, "Foo", l.All()[0].Obj)
}

func TestCountedListTopN(t *testing.T) {
	l := CountValues([]string{"c", "a", "b", "b", "a", "d"}, lower)

	top := l.TopN(3)
	require.Len(t, top, 3)
	assert.Equal(t, "a", top[0].Key)
	assert.Equal(t, "b", top[1].Key)
	// Ties broken by key.
	assert.Equal(t, "c", top[2].Key)

	assert.Len(t, l.TopN(0), 4)
	assert.Len(t, l.TopN(10), 4)
}

func TestCountedListFilterByKeyword(t *testing.T) {
	l := CountValues([]string{"golang", "GoLang", "rust", "gopher"}, lower)

	filtered := l.FilterByKeyword("GO")
	assert.Equal(t, 2, filtered.Len())
	assert.Equal(t, 2, filtered.Count("golang"))
	assert.Equal(t, 1, filtered.Count("gopher"))
	assert.Equal(t, 0, filtered.Count("rust"))

	// Source list is untouched.
	assert.Equal(t, 3, l.Len())
}

func TestCountedListToDict(t *testing.T) {
	l := NewCountedList(lower)
	l.AddN("x", 4)
	l.Add("y")

	assert.Equal(t, map[string]float64{"x": 4, "y": 1}, l.ToDict())
	assert.Equal(t, 1, l.Filter(func(c *Counted[string]) bool { return c.Count > 1 }).Len())
}
