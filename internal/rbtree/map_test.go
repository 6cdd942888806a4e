package rbtree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleMap_Set() {
	var m Map[string, int]
	m.Set("foo", 1)
	m.Set("bar", 2)
	snapshot := m.Clone()
	m.Set("baz", 3)
	m.Set("foo", 4)

	e, ok := m.Get("foo")
	fmt.Println("foo:", e, ok)
	e, ok = m.Get("bar")
	fmt.Println("bar:", e, ok)
	e, ok = m.Get("baz")
	fmt.Println("baz:", e, ok)

	fmt.Println("rollback to snapshot")
	m = snapshot

	e, ok = m.Get("foo")
	fmt.Println("foo:", e, ok)
	e, ok = m.Get("bar")
	fmt.Println("bar:", e, ok)
	e, ok = m.Get("baz")
	fmt.Println("baz:", e, ok)

	// Output:
	// foo: 4 true
	// bar: 2 true
	// baz: 3 true
	// rollback to snapshot
	// foo: 1 true
	// bar: 2 true
	// baz: 0 false
}

func TestMap_Set(t *testing.T) {
	t.Run("initial", func(t *testing.T) {
		var m Map[string, int]
		m.Set("foo", 1)
		assert.Equal(t, 1, m.root)
		assert.Equal(t, []Node[string, int]{
			{color: red, left: -1, right: -1, elem: elem[string, int]{key: "foo", value: 1}},
			{color: black, left: -1, right: -1, elem: elem[string, int]{key: "foo", value: 1}},
		}, m.nodes)
		assert.Equal(t, 1, m.Keys())
	})

	t.Run("insert left", func(t *testing.T) {
		var m Map[string, int]
		m.Set("foo", 1)
		m.Set("bar", 2)
		assert.Equal(t, 3, m.root)
		assert.Equal(t, Node[string, int]{color: black, left: 2, right: -1, elem: elem[string, int]{key: "foo", value: 1}}, m.nodes[3])
		assert.Equal(t, 2, m.Keys())
	})

	t.Run("insert right", func(t *testing.T) {
		var m Map[string, int]
		m.Set("bar", 2)
		m.Set("foo", 1)
		assert.Equal(t, 3, m.root)
		assert.Equal(t, Node[string, int]{color: black, left: -1, right: 2, elem: elem[string, int]{key: "bar", value: 2}}, m.nodes[3])
	})

	t.Run("update", func(t *testing.T) {
		var m Map[string, int]
		m.Set("foo", 1)
		m.Set("foo", 2)
		v, ok := m.Get("foo")
		assert.True(t, ok)
		assert.Equal(t, 2, v)
		assert.Equal(t, 1, m.Keys())
	})
}

func TestMap_SafeSet(t *testing.T) {
	t.Run("room", func(t *testing.T) {
		var m Map[string, int]
		m.Grow(8)
		assert.True(t, m.SafeSet("foo", 1))
		v, ok := m.Get("foo")
		assert.True(t, ok)
		assert.Equal(t, 1, v)
	})

	t.Run("no room", func(t *testing.T) {
		var m Map[string, int]
		assert.False(t, m.SafeSet("foo", 1))
		_, ok := m.Get("foo")
		assert.False(t, ok)
		assert.Equal(t, 0, m.Keys())
	})
}

func TestMap_All(t *testing.T) {
	var m Map[int, string]
	for _, k := range []int{5, 3, 8, 1, 4, 7, 9, 2, 6} {
		m.Set(k, fmt.Sprint(k))
	}

	var keys []int
	for k, v := range m.All() {
		assert.Equal(t, fmt.Sprint(k), v)
		keys = append(keys, k)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, keys)

	t.Run("break", func(t *testing.T) {
		var keys []int
		for k := range m.All() {
			if k > 3 {
				break
			}
			keys = append(keys, k)
		}
		assert.Equal(t, []int{1, 2, 3}, keys)
	})

	t.Run("empty", func(t *testing.T) {
		var m Map[int, string]
		for range m.All() {
			assert.Fail(t, "unreachable")
		}
	})
}

func TestMap_Clone(t *testing.T) {
	var m Map[string, int]
	m.Grow(64)
	m.Set("a", 1)
	m.Set("b", 2)

	c := m.Clone()
	c.Set("c", 3)
	m.Set("d", 4)

	_, ok := m.Get("c")
	assert.False(t, ok)
	_, ok = c.Get("d")
	assert.False(t, ok)
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	v, ok = m.Get("d")
	assert.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestMap_Compact(t *testing.T) {
	var m Map[string, int]
	for i := 0; i < 200; i++ {
		m.Set("counter", i)
	}
	m.Set("other", -1)

	assert.True(t, m.Compact())
	assert.Equal(t, 2, m.Keys())
	v, ok := m.Get("counter")
	assert.True(t, ok)
	assert.Equal(t, 199, v)
	v, ok = m.Get("other")
	assert.True(t, ok)
	assert.Equal(t, -1, v)

	assert.False(t, m.Compact())
}
