package prolog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/logicbase/prolog/engine"
)

func TestSolutions_Close(t *testing.T) {
	i := New(nil, nil)
	defer i.Close()

	sols, err := i.Query(`member(X, [a, b])`)
	assert.NoError(t, err)
	assert.NoError(t, sols.Close())
	assert.False(t, sols.Next())
	assert.NoError(t, sols.Close())
}

func TestSolutions_Next(t *testing.T) {
	i := New(nil, nil)
	defer i.Close()

	t.Run("ok", func(t *testing.T) {
		sols, err := i.Query(`member(X, [a, b])`)
		assert.NoError(t, err)
		assert.True(t, sols.Next())
		assert.True(t, sols.Next())
		assert.False(t, sols.Next())
		assert.NoError(t, sols.Err())
	})

	t.Run("error", func(t *testing.T) {
		sols, err := i.Query(`throw(oops)`)
		assert.NoError(t, err)
		assert.False(t, sols.Next())
		assert.Error(t, sols.Err())
		assert.False(t, sols.Next())
	})
}

func TestSolutions_Scan(t *testing.T) {
	i := New(nil, nil)
	defer i.Close()

	scan := func(t *testing.T, query string, dest any) error {
		t.Helper()
		sols, err := i.Query(query)
		assert.NoError(t, err)
		defer sols.Close()
		assert.True(t, sols.Next())
		return sols.Scan(dest)
	}

	t.Run("struct", func(t *testing.T) {
		var s struct {
			A       string
			I       int
			F       float64
			U       uint8
			B       bool
			T       engine.Term
			Tagged  string `prolog:"X"`
			ignored string
		}
		assert.NoError(t, scan(t, `A = foo, I = 42, F = 3.14, U = 7, B = true, T = f(x), X = bar`, &s))
		assert.Equal(t, "foo", s.A)
		assert.Equal(t, 42, s.I)
		assert.Equal(t, 3.14, s.F)
		assert.Equal(t, uint8(7), s.U)
		assert.True(t, s.B)
		assert.Equal(t, engine.Atom("f").Apply(engine.Atom("x")), s.T)
		assert.Equal(t, "bar", s.Tagged)
		assert.Empty(t, s.ignored)
	})

	t.Run("integer to float", func(t *testing.T) {
		var s struct {
			F float64
		}
		assert.NoError(t, scan(t, `F = 2`, &s))
		assert.Equal(t, 2.0, s.F)
	})

	t.Run("text", func(t *testing.T) {
		var s struct {
			Codes string
			Chars string
		}
		assert.NoError(t, scan(t, `Codes = "abc", atom_chars(xyz, Chars)`, &s))
		assert.Equal(t, "abc", s.Codes)
		assert.Equal(t, "xyz", s.Chars)
	})

	t.Run("list", func(t *testing.T) {
		var s struct {
			Atoms    []string
			Integers []int64
			Mixed    []any
		}
		assert.NoError(t, scan(t, `Atoms = [foo, bar], Integers = [1, 2], Mixed = [foo, 1]`, &s))
		assert.Equal(t, []string{"foo", "bar"}, s.Atoms)
		assert.Equal(t, []int64{1, 2}, s.Integers)
		assert.Equal(t, []any{engine.Atom("foo"), engine.Integer(1)}, s.Mixed)
	})

	t.Run("not a list", func(t *testing.T) {
		var s struct {
			L []int
		}
		assert.Error(t, scan(t, `L = foo`, &s))
	})

	t.Run("overflow", func(t *testing.T) {
		var s struct {
			I int8
		}
		assert.Error(t, scan(t, `I = 300`, &s))
	})

	t.Run("negative to unsigned", func(t *testing.T) {
		var s struct {
			U uint
		}
		assert.Error(t, scan(t, `U = -1`, &s))
	})

	t.Run("mismatch", func(t *testing.T) {
		var s struct {
			I int
		}
		assert.Error(t, scan(t, `I = foo`, &s))
	})

	t.Run("map", func(t *testing.T) {
		m := map[string]engine.Term{}
		assert.NoError(t, scan(t, `X = 1, Y = f(X), _Z = 2`, m))
		assert.Equal(t, map[string]engine.Term{
			"X": engine.Integer(1),
			"Y": engine.Atom("f").Apply(engine.Integer(1)),
		}, m)
	})

	t.Run("nil map", func(t *testing.T) {
		var m map[string]int
		assert.Error(t, scan(t, `X = 1`, m))
	})

	t.Run("invalid key", func(t *testing.T) {
		m := map[int]int{}
		assert.Error(t, scan(t, `X = 1`, m))
	})

	t.Run("invalid kind", func(t *testing.T) {
		var n int
		assert.Error(t, scan(t, `X = 1`, &n))
		assert.Error(t, scan(t, `X = 1`, n))
	})
}

func TestSolutions_Vars(t *testing.T) {
	i := New(nil, nil)
	defer i.Close()

	sols, err := i.Query(`A = B, B = C`)
	assert.NoError(t, err)
	defer sols.Close()

	assert.Equal(t, []string{"A", "B", "C"}, sols.Vars())
}

func ExampleSolutions_Scan() {
	p := New(nil, nil)
	defer p.Close()
	sols, _ := p.Query(`A = foo, I = 42, F = 3.14.`)
	defer sols.Close()
	for sols.Next() {
		var s struct {
			A string
			I int
			F float64
		}
		_ = sols.Scan(&s)
		fmt.Printf("A = %s\n", s.A)
		fmt.Printf("I = %d\n", s.I)
		fmt.Printf("F = %.2f\n", s.F)
	}

	// Output:
	// A = foo
	// I = 42
	// F = 3.14
}

func ExampleSolutions_Scan_list() {
	p := New(nil, nil)
	defer p.Close()
	sols, _ := p.Query(`Atoms = [foo, bar], Integers = [1, 2], Floats = [1.1, 2.1].`)
	defer sols.Close()
	for sols.Next() {
		var s struct {
			Atoms    []string
			Integers []int64
			Floats   []float64
		}
		_ = sols.Scan(&s)

		fmt.Printf("Atoms = %s\n", s.Atoms)
		fmt.Printf("Integers = %d\n", s.Integers)
		fmt.Printf("Floats = %.1f\n", s.Floats)
	}

	// Output:
	// Atoms = [foo bar]
	// Integers = [1 2]
	// Floats = [1.1 2.1]
}
