package prolog

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/logicbase/prolog/engine"
)

func TestNew(t *testing.T) {
	i := New(nil, nil)
	defer i.Close()
	assert.NotNil(t, i)
	assert.NotNil(t, i.Metrics)
}

func TestNewWithConfig(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		c := DefaultConfig()
		c.Unknown = "ignore"
		_, err := NewWithConfig(c, nil, nil)
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		c := DefaultConfig()
		c.Unknown = "fail"
		i, err := NewWithConfig(c, nil, nil)
		assert.NoError(t, err)
		defer i.Close()

		assert.Equal(t, ErrNoSolutions, i.QuerySolution(`undefined_pred`).Err())
	})

	t.Run("double quotes", func(t *testing.T) {
		c := DefaultConfig()
		c.DoubleQuotes = "atom"
		i, err := NewWithConfig(c, nil, nil)
		assert.NoError(t, err)
		defer i.Close()

		assert.NoError(t, i.QuerySolution(`X = "abc", atom(X)`).Err())
	})

	t.Run("preload", func(t *testing.T) {
		c := DefaultConfig()
		c.Preload = []string{"lib"}
		i, err := NewWithConfig(c, nil, nil, WithIOProvider(FileProvider{FS: fstest.MapFS{
			"lib.pl": &fstest.MapFile{Data: []byte(`lib(ok).`)},
		}}))
		assert.NoError(t, err)
		defer i.Close()

		var s struct {
			X string
		}
		assert.NoError(t, i.QuerySolution(`lib(X)`).Scan(&s))
		assert.Equal(t, "ok", s.X)
	})

	t.Run("preload missing", func(t *testing.T) {
		c := DefaultConfig()
		c.Preload = []string{"missing"}
		_, err := NewWithConfig(c, nil, nil, WithIOProvider(FileProvider{FS: fstest.MapFS{}}))
		assert.Error(t, err)
	})

	t.Run("sandbox", func(t *testing.T) {
		c := DefaultConfig()
		c.Sandbox = true
		i, err := NewWithConfig(c, nil, nil)
		assert.NoError(t, err)
		defer i.Close()

		assert.Error(t, i.ConsultFile(context.Background(), "interpreter.go"))
	})
}

func TestInterpreter_Exec(t *testing.T) {
	i := New(nil, nil)
	defer i.Close()

	t.Run("clauses", func(t *testing.T) {
		assert.NoError(t, i.Exec(`
foo(a, b).
foo(b, c).
`))
		var s struct {
			X string
		}
		assert.NoError(t, i.QuerySolution(`foo(b, X)`).Scan(&s))
		assert.Equal(t, "c", s.X)
	})

	t.Run("directive failed", func(t *testing.T) {
		assert.ErrorIs(t, i.Exec(`:- fail.`), engine.ErrDirectiveFailed)
	})

	t.Run("syntax error", func(t *testing.T) {
		assert.Error(t, i.Exec(`foo(.`))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, i.ExecContext(ctx, `bar(1).`), context.Canceled)
	})
}

func TestInterpreter_Query(t *testing.T) {
	var out bytes.Buffer
	i := New(nil, &out)
	defer i.Close()

	t.Run("library", func(t *testing.T) {
		sols, err := i.Query(`append(X, Y, [1, 2])`)
		assert.NoError(t, err)
		defer sols.Close()

		var n int
		for sols.Next() {
			n++
		}
		assert.NoError(t, sols.Err())
		assert.Equal(t, 3, n)
	})

	t.Run("placeholders", func(t *testing.T) {
		var s struct {
			L []string
		}
		assert.NoError(t, i.QuerySolution(`reverse(?, L)`, []string{"a", "b", "c"}).Scan(&s))
		assert.Equal(t, []string{"c", "b", "a"}, s.L)
	})

	t.Run("output", func(t *testing.T) {
		assert.NoError(t, i.QuerySolution(`write(hello), nl`).Err())
		assert.Equal(t, "hello\n", out.String())
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := i.Query(`foo(`)
		assert.Error(t, err)
	})
}

func TestInterpreter_QuerySolution(t *testing.T) {
	i := New(nil, nil)
	defer i.Close()
	assert.NoError(t, i.Exec(`
foo(a, b).
foo(b, c).
foo(c, d).
`))

	t.Run("ok", func(t *testing.T) {
		t.Run("struct", func(t *testing.T) {
			sol := i.QuerySolution(`foo(X, Y).`)

			var s struct {
				X   string
				Foo string `prolog:"Y"`
			}
			assert.NoError(t, sol.Scan(&s))
			assert.Equal(t, "a", s.X)
			assert.Equal(t, "b", s.Foo)
		})

		t.Run("map", func(t *testing.T) {
			sol := i.QuerySolution(`foo(X, Y).`)

			m := map[string]string{}
			assert.NoError(t, sol.Scan(m))
			assert.Equal(t, []string{"X", "Y"}, sol.Vars())
			assert.Equal(t, "a", m["X"])
			assert.Equal(t, "b", m["Y"])
		})
	})

	t.Run("invalid query", func(t *testing.T) {
		sol := i.QuerySolution(``)
		assert.Error(t, sol.Err())
	})

	t.Run("no solutions", func(t *testing.T) {
		sol := i.QuerySolution(`foo(e, f).`)
		assert.Equal(t, ErrNoSolutions, sol.Err())
		assert.Empty(t, sol.Vars())
	})

	t.Run("runtime error", func(t *testing.T) {
		err := errors.New("something went wrong")

		i.Register("error", 0, func(*engine.Engine, []engine.Term) (bool, error) {
			return false, err
		})
		sol := i.QuerySolution(`error.`)
		assert.ErrorIs(t, sol.Err(), err)

		var s struct{}
		assert.Error(t, sol.Scan(&s))
	})
}

func TestInterpreter_ConsultFile(t *testing.T) {
	i := New(nil, nil, WithIOProvider(FileProvider{FS: fstest.MapFS{
		"family.pl": &fstest.MapFile{Data: []byte(`
parent(tom, bob).
parent(bob, ann).
grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
`)},
	}}))
	defer i.Close()

	assert.NoError(t, i.ConsultFile(context.Background(), "family"))

	var s struct {
		G string
	}
	assert.NoError(t, i.QuerySolution(`grandparent(tom, G)`).Scan(&s))
	assert.Equal(t, "ann", s.G)

	assert.Error(t, i.ConsultFile(context.Background(), "missing"))
}

func TestInterpreter_metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	i := New(nil, nil, WithRegisterer(reg))
	defer i.Close()
	assert.NoError(t, i.Exec(`
p(1).
p(2).
p(3).
`))

	backtracks := testutil.ToFloat64(i.Metrics.Backtracks)
	inferences := testutil.ToFloat64(i.Metrics.Inferences)
	sols, err := i.Query(`p(X)`)
	assert.NoError(t, err)
	for sols.Next() {
	}
	assert.NoError(t, sols.Err())
	assert.Equal(t, float64(3), testutil.ToFloat64(i.Metrics.Solutions))
	assert.Equal(t, backtracks+2, testutil.ToFloat64(i.Metrics.Backtracks))
	assert.Greater(t, testutil.ToFloat64(i.Metrics.Inferences), inferences)

	sols, err = i.Query(`p(X)`)
	assert.NoError(t, err)
	assert.NoError(t, sols.Close())
	assert.Equal(t, float64(1), testutil.ToFloat64(i.Metrics.QueryCache.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(i.Metrics.QueryCache.WithLabelValues("hit")))

	retracts := testutil.ToFloat64(i.Metrics.Changes.WithLabelValues("retract"))
	assert.NoError(t, i.QuerySolution(`assertz(q(1)), retract(q(1))`).Err())
	assert.Equal(t, retracts+1, testutil.ToFloat64(i.Metrics.Changes.WithLabelValues("retract")))

	n, err := testutil.GatherAndCount(reg, "prolog_async_active")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}
