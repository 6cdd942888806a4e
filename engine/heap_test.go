package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeap_Unify(t *testing.T) {
	t.Run("atomic", func(t *testing.T) {
		var h Heap
		assert.True(t, h.Unify(Atom("a"), Atom("a")))
		assert.False(t, h.Unify(Atom("a"), Atom("b")))
		assert.True(t, h.Unify(Integer(1), Integer(1)))
		assert.False(t, h.Unify(Integer(1), Float(1)))
		assert.False(t, h.Unify(Atom("1"), Integer(1)))
	})

	t.Run("variable", func(t *testing.T) {
		var h Heap
		x, y := h.NewVariable(), h.NewVariable()
		assert.True(t, h.Unify(x, y))
		assert.True(t, h.Unify(y, Atom("a")))
		assert.Equal(t, Atom("a"), h.Resolve(x))
		assert.Equal(t, Atom("a"), h.Resolve(y))
		assert.False(t, h.Unify(x, Atom("b")))
	})

	t.Run("compound", func(t *testing.T) {
		var h Heap
		x, y := h.NewVariable(), h.NewVariable()
		assert.True(t, h.Unify(
			Atom("f").Apply(x, Atom("b")),
			Atom("f").Apply(Atom("a"), y),
		))
		assert.Equal(t, Atom("a"), h.Resolve(x))
		assert.Equal(t, Atom("b"), h.Resolve(y))

		assert.False(t, h.Unify(Atom("f").Apply(Atom("a")), Atom("g").Apply(Atom("a"))))
		assert.False(t, h.Unify(Atom("f").Apply(Atom("a")), Atom("f").Apply(Atom("a"), Atom("b"))))
	})

	t.Run("shared", func(t *testing.T) {
		var h Heap
		x := h.NewVariable()
		assert.False(t, h.Unify(
			Atom("f").Apply(x, x),
			Atom("f").Apply(Atom("a"), Atom("b")),
		))
	})
}

func TestHeap_Undo(t *testing.T) {
	var h Heap
	x, y := h.NewVariable(), h.NewVariable()
	assert.True(t, h.Unify(x, Atom("a")))

	m := h.Mark()
	assert.True(t, h.Unify(y, Atom("b")))
	assert.Equal(t, Atom("b"), h.Resolve(y))

	h.Undo(m)
	assert.Equal(t, Atom("a"), h.Resolve(x))
	assert.Equal(t, y, h.Resolve(y))

	t.Run("beyond the trail", func(t *testing.T) {
		h.Undo(h.Mark() + 10)
		assert.Equal(t, Atom("a"), h.Resolve(x))
	})
}

func TestHeap_bind(t *testing.T) {
	var h Heap
	x := h.NewVariable()
	assert.True(t, h.Unify(x, Atom("a")))
	assert.Empty(t, h.trail)

	y := h.NewVariable()
	m := h.Mark()
	z := h.NewVariable()
	assert.True(t, h.Unify(Atom("f").Apply(y, z), Atom("f").Apply(Atom("b"), Atom("c"))))
	assert.Equal(t, []binding{{variable: y}}, h.trail)

	h.Undo(m)
	assert.Equal(t, Atom("a"), h.Resolve(x))
	assert.Equal(t, y, h.Resolve(y))
	assert.Empty(t, h.trail)

	w := h.NewVariable()
	m = h.Mark()
	assert.True(t, h.Unify(w, Atom("d")))
	h.Undo(m)
	assert.Equal(t, w, h.Resolve(w))
}

func TestHeap_DryUnify(t *testing.T) {
	var h Heap
	x := h.NewVariable()
	assert.True(t, h.DryUnify(x, Atom("a")))
	assert.Equal(t, x, h.Resolve(x))
	assert.False(t, h.DryUnify(Atom("f").Apply(x, x), Atom("f").Apply(Atom("a"), Atom("b"))))
	assert.Equal(t, x, h.Resolve(x))
}

func TestHeap_Copy(t *testing.T) {
	var h Heap
	x, y := h.NewVariable(), h.NewVariable()
	assert.True(t, h.Unify(y, Atom("a")))

	c := h.Copy(Atom("f").Apply(x, y, x), nil)
	f, ok := c.(*Compound)
	assert.True(t, ok)
	assert.NotEqual(t, x, f.Args[0])
	assert.Equal(t, f.Args[0], f.Args[2])
	assert.Equal(t, Atom("a"), f.Args[1])

	t.Run("shared", func(t *testing.T) {
		c := h.Copy(x, map[Variable]Term{x: Atom("b")})
		assert.Equal(t, Atom("b"), c)
	})
}

func TestHeap_Simplify(t *testing.T) {
	var h Heap
	x, y := h.NewVariable(), h.NewVariable()
	assert.True(t, h.Unify(x, List(Integer(1), y)))
	assert.True(t, h.Unify(y, Integer(2)))
	assert.Equal(t, List(Integer(1), Integer(2)), h.Simplify(x))

	g := Atom("g").Apply(Atom("a"))
	assert.Same(t, g, h.Simplify(g))
}

func TestHeap_freeze(t *testing.T) {
	var h Heap
	h.NewVariable()
	x, y := h.NewVariable(), h.NewVariable()
	assert.True(t, h.Unify(y, Atom("a")))

	frozen, n := h.freeze(Atom("f").Apply(x, y, h.NewVariable(), x))
	assert.Equal(t, 2, n)
	assert.Equal(t, Atom("f").Apply(Variable(0), Atom("a"), Variable(1), Variable(0)), frozen)

	var other Heap
	other.NewVariable()
	i := other.instantiate(frozen, n)
	f := i.(*Compound)
	assert.Equal(t, Variable(1), f.Args[0])
	assert.Equal(t, Variable(2), f.Args[2])
	assert.Equal(t, 3, other.Len())
}

func TestHeap_variables(t *testing.T) {
	var h Heap
	x, y, z := h.NewVariable(), h.NewVariable(), h.NewVariable()
	assert.True(t, h.Unify(y, Atom("a")))
	assert.Equal(t, []Variable{z, x}, h.variables(Atom("f").Apply(z, y, List(x, z))))
}
