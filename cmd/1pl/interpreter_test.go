package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/logicbase/prolog"
)

func TestNew(t *testing.T) {
	p, err := New(prolog.DefaultConfig(), nil, nil)
	assert.NoError(t, err)
	defer func() {
		assert.NoError(t, p.Close())
	}()

	t.Run("version", func(t *testing.T) {
		var s struct {
			V string
		}
		sol := p.QuerySolution(`version(V).`)
		assert.NoError(t, sol.Err())
		assert.NoError(t, sol.Scan(&s))
		assert.Equal(t, Version, s.V)
	})

	t.Run("cd", func(t *testing.T) {
		assert.NoError(t, p.QuerySolution(`catch(cd(_), error(instantiation_error, _), true).`).Err())
		assert.NoError(t, p.QuerySolution(`catch(cd(1), error(type_error(atom, 1), _), true).`).Err())
		assert.NoError(t, p.QuerySolution(`catch(cd('/no/such/dir'), error(permission_error(open, source_sink, _), _), true).`).Err())
	})

	t.Run("go_string", func(t *testing.T) {
		var s struct {
			S string
		}
		sol := p.QuerySolution(`go_string(foo, S).`)
		assert.NoError(t, sol.Err())
		assert.NoError(t, sol.Scan(&s))
		assert.Equal(t, `"foo"`, s.S)
	})

	t.Run("call_nth", func(t *testing.T) {
		var s struct {
			N   int
			Nth int
		}

		assert.NoError(t, p.QuerySolution(`call_nth(true, Nth), Nth = 1.`).Err())

		sols, err := p.Query(`call_nth(repeat, Nth).`)
		assert.NoError(t, err)
		for i := 1; i <= 5; i++ {
			assert.True(t, sols.Next())
			assert.NoError(t, sols.Scan(&s))
			assert.Equal(t, i, s.Nth)
		}
		assert.NoError(t, sols.Close())

		sols, err = p.Query(`call_nth(( N = 1 ; N = 2 ), Nth).`)
		assert.NoError(t, err)
		assert.True(t, sols.Next())
		assert.NoError(t, sols.Scan(&s))
		assert.Equal(t, 1, s.N)
		assert.Equal(t, 1, s.Nth)
		assert.True(t, sols.Next())
		assert.NoError(t, sols.Scan(&s))
		assert.Equal(t, 2, s.N)
		assert.Equal(t, 2, s.Nth)
		assert.NoError(t, sols.Close())

		assert.NoError(t, p.QuerySolution(`catch(call_nth(true, non_integer), error(type_error(integer,non_integer), _), true).`).Err())
		assert.NoError(t, p.QuerySolution(`\+call_nth(true, 0).`).Err())
		assert.NoError(t, p.QuerySolution(`\+call_nth(repeat, 0).`).Err())
		assert.NoError(t, p.QuerySolution(`catch(call_nth(repeat, -1), error(domain_error(not_less_than_zero,-1), _), true).`).Err())
		assert.NoError(t, p.QuerySolution(`call_nth(length(L,N), 3), L = [_A,_B], N = 2.`).Err())
	})
}
