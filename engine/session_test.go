package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const facts = `
p(1).
p(2).
p(3).
q(X) :- p(X), X > 1.
first(X) :- p(X), !.
neg(X) :- \+ p(X).
age(peter, 7).
age(ann, 11).
age(pat, 8).
age(tom, 5).
class(a, peter).
class(b, ann).
class(a, pat).
`

func newTestSession(t *testing.T, text string, opts ...Option) *Session {
	t.Helper()
	s := NewSession(opts...)
	assert.NoError(t, s.Consult(context.Background(), strings.NewReader(text), nil))
	return s
}

// solve returns the bindings of every solution of query. Variables which are unbound or named with a leading
// underscore are omitted. A solution without bindings is "true".
func solve(s *Session, query string) ([]string, error) {
	e, vars, err := s.Query(query)
	if err != nil {
		return nil, err
	}
	var ret []string
	for {
		ok, err := e.Next(context.Background())
		if err != nil {
			return ret, err
		}
		if !ok {
			return ret, nil
		}
		var bs []string
		for _, v := range vars {
			if strings.HasPrefix(string(v.Name), "_") || isVariable(e.Heap().Resolve(v.Variable)) {
				continue
			}
			var sb strings.Builder
			_ = WriteTerm(&sb, v.Variable, e.Heap(), WithQuoted(true), WithOps(s.Operators()))
			bs = append(bs, fmt.Sprintf("%s = %s", string(v.Name), sb.String()))
		}
		if len(bs) == 0 {
			bs = []string{"true"}
		}
		ret = append(ret, strings.Join(bs, ", "))
	}
}

// formal returns the formal term of error(Formal, Context) raised as err.
func formal(t *testing.T, err error) string {
	t.Helper()
	var ex Exception
	if !assert.True(t, errors.As(err, &ex), "not an exception: %v", err) {
		return ""
	}
	term := ex.Term()
	if c, ok := term.(*Compound); ok && c.Functor == atomError && len(c.Args) == 2 {
		term = c.Args[0]
	}
	var sb strings.Builder
	_ = WriteTerm(&sb, term, nil, WithQuoted(true))
	return sb.String()
}

type solveTest struct {
	title     string
	program   string
	query     string
	solutions []string
	err       string
}

const member = `
member(X, [X|_]).
member(X, [_|T]) :- member(X, T).
`

func runSolveTests(t *testing.T, tests []solveTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			s := newTestSession(t, facts+tt.program)
			defer s.Dispose()
			sols, err := solve(s, tt.query)
			if tt.err != "" {
				assert.Equal(t, tt.err, formal(t, err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.solutions, sols)
		})
	}
}

func TestSession_control(t *testing.T) {
	runSolveTests(t, []solveTest{
		{title: "facts", query: `p(X)`, solutions: []string{"X = 1", "X = 2", "X = 3"}},
		{title: "rule", query: `q(X)`, solutions: []string{"X = 2", "X = 3"}},
		{title: "cut in clause", query: `first(X)`, solutions: []string{"X = 1"}},
		{title: "cut in query", query: `p(X), !`, solutions: []string{"X = 1"}},
		{title: "cut is local to call", query: `call((p(X), !)) ; X = 4`, solutions: []string{"X = 1", "X = 4"}},
		{title: "cut is local to disjunct", program: member, query: `(member(X, [1, 2, 3]), !, fail ; true)`, solutions: []string{"true"}},
		{title: "cut in left disjunct", query: `(p(X), ! ; X = 4)`, solutions: []string{"X = 1", "X = 4"}},
		{title: "cut in right disjunct", query: `(fail ; p(X), !)`, solutions: []string{"X = 1"}},
		{title: "cut in then branch", query: `(true -> p(X), ! ; X = 4)`, solutions: []string{"X = 1"}},
		{title: "user operator", program: ":- op(700, xfx, like).\nfact(a like b).\n", query: `fact(like(A, B))`, solutions: []string{"A = a, B = b"}},
		{title: "negation true", query: `neg(4)`, solutions: []string{"true"}},
		{title: "negation false", query: `neg(1)`},
		{title: "disjunction", query: `X = 1 ; X = 2`, solutions: []string{"X = 1", "X = 2"}},
		{title: "if then else", query: `(p(X) -> Y = yes ; Y = no)`, solutions: []string{"X = 1, Y = yes"}},
		{title: "else", query: `(fail -> Y = yes ; Y = no)`, solutions: []string{"Y = no"}},
		{title: "if then", query: `(fail -> Y = yes)`},
		{title: "soft cut", query: `(p(X) *-> Y = yes ; Y = no)`, solutions: []string{"X = 1, Y = yes", "X = 2, Y = yes", "X = 3, Y = yes"}},
		{title: "soft cut else", query: `(fail *-> Y = yes ; Y = no)`, solutions: []string{"Y = no"}},
		{title: "call with extra args", query: `call(p, X)`, solutions: []string{"X = 1", "X = 2", "X = 3"}},
		{title: "call variable", query: `call(_G)`, err: "instantiation_error"},
		{title: "call not callable", query: `call(1)`, err: "type_error(callable, 1)"},
		{title: "once", query: `once(p(X))`, solutions: []string{"X = 1"}},
		{title: "ignore", query: `ignore(fail)`, solutions: []string{"true"}},
		{title: "forall true", query: `forall(p(X), X > 0)`, solutions: []string{"true"}},
		{title: "forall false", query: `forall(p(X), X > 1)`},
		{title: "call_nth", query: `call_nth(p(X), 2)`, solutions: []string{"X = 2"}},
		{title: "call_nth enumerate", query: `call_nth(p(X), N)`, solutions: []string{"X = 1, N = 1", "X = 2, N = 2", "X = 3, N = 3"}},
		{title: "call_nth member", program: member, query: `call_nth(member(X, [a, b, c]), N)`, solutions: []string{"X = a, N = 1", "X = b, N = 2", "X = c, N = 3"}},
		{title: "call_nth zero", query: `call_nth(p(_), 0)`},
		{title: "call_nth negative", query: `call_nth(p(_), -1)`, err: "domain_error(not_less_than_zero, -1)"},
		{title: "unknown procedure", query: `undefined_pred`, err: "existence_error(procedure, undefined_pred/0)"},
		{title: "unknown fail", query: `set_prolog_flag(unknown, fail), undefined_pred`},
		{title: "unknown warning", query: `set_prolog_flag(unknown, warning), undefined_pred`},
	})
}

func TestSession_catch(t *testing.T) {
	runSolveTests(t, []solveTest{
		{title: "catch", query: `catch(throw(my), E, true)`, solutions: []string{"E = my"}},
		{title: "catcher binds", query: `catch(throw(foo(1)), foo(Y), Z = Y)`, solutions: []string{"Y = 1, Z = 1"}},
		{title: "bindings undone", query: `catch((X = 1, throw(oops)), _, true)`, solutions: []string{"true"}},
		{title: "no exception", query: `catch(p(X), _, true)`, solutions: []string{"X = 1", "X = 2", "X = 3"}},
		{title: "not caught", query: `catch(throw(foo), bar, true)`, err: "foo"},
		{title: "error", query: `catch(undefined_pred, error(E, _), true)`, solutions: []string{"E = existence_error(procedure, undefined_pred/0)"}},
		{title: "recovery throws", query: `catch(throw(a), a, throw(b))`, err: "b"},
		{title: "nested", query: `catch(catch(throw(a), b, true), a, X = outer)`, solutions: []string{"X = outer"}},
		{title: "throw variable", query: `throw(_)`, err: "instantiation_error"},
		{title: "uncaught", query: `throw(oops)`, err: "oops"},
	})
}

func TestSession_arithmetic(t *testing.T) {
	runSolveTests(t, []solveTest{
		{title: "precedence", query: `X is 1 + 2 * 3`, solutions: []string{"X = 7"}},
		{title: "exact division", query: `X is 6 / 2`, solutions: []string{"X = 3"}},
		{title: "inexact division", query: `X is 7 / 2`, solutions: []string{"X = 3.5"}},
		{title: "integer division", query: `X is -7 // 2`, solutions: []string{"X = -3"}},
		{title: "div", query: `X is -7 div 2`, solutions: []string{"X = -4"}},
		{title: "mod", query: `X is -7 mod 2`, solutions: []string{"X = 1"}},
		{title: "rem", query: `X is -7 rem 2`, solutions: []string{"X = -1"}},
		{title: "float power", query: `X is 2 ** 3`, solutions: []string{"X = 8.0"}},
		{title: "integer power", query: `X is 2 ^ 10`, solutions: []string{"X = 1024"}},
		{title: "negative power", query: `X is 2 ^ -1`, err: "type_error(float, 2)"},
		{title: "max", query: `X is max(1, 2.0)`, solutions: []string{"X = 2.0"}},
		{title: "min", query: `X is min(3, 1)`, solutions: []string{"X = 1"}},
		{title: "abs", query: `X is abs(-3)`, solutions: []string{"X = 3"}},
		{title: "truncate", query: `X is truncate(3.7)`, solutions: []string{"X = 3"}},
		{title: "float_integer_part", query: `X is float_integer_part(3.7)`, solutions: []string{"X = 3"}},
		{title: "bits", query: `X is 5 /\ 3 \/ 8`, solutions: []string{"X = 9"}},
		{title: "shift", query: `X is 1 << 4`, solutions: []string{"X = 16"}},
		{title: "gcd", query: `X is gcd(12, 18)`, solutions: []string{"X = 6"}},
		{title: "list", query: `X is "a" + 0`, solutions: []string{"X = 97"}},
		{title: "zero divisor", query: `_ is 1 / 0`, err: "evaluation_error(zero_divisor)"},
		{title: "overflow", query: `_ is 9223372036854775807 + 1`, err: "evaluation_error(int_overflow)"},
		{title: "not evaluable", query: `_ is foo + 1`, err: "type_error(evaluable, foo/0)"},
		{title: "unbound", query: `_ is _ + 1`, err: "instantiation_error"},
		{title: "compare equal", query: `1 =:= 1.0`, solutions: []string{"true"}},
		{title: "compare not equal", query: `1 =\= 2`, solutions: []string{"true"}},
		{title: "less than", query: `1 < 2, 2 >= 2, 3 > 2.5, 1 =< 1`, solutions: []string{"true"}},
		{title: "integer and float don't unify", query: `1 = 1.0`},
		{title: "succ forward", query: `succ(3, X)`, solutions: []string{"X = 4"}},
		{title: "succ backward", query: `succ(X, 4)`, solutions: []string{"X = 3"}},
		{title: "succ zero", query: `succ(_, 0)`},
		{title: "between", query: `between(1, 3, X)`, solutions: []string{"X = 1", "X = 2", "X = 3"}},
		{title: "between check", query: `between(1, 3, 2)`, solutions: []string{"true"}},
		{title: "between empty", query: `between(3, 1, _)`},
		{title: "between inf", query: `between(1, inf, X), X > 2, !`, solutions: []string{"X = 3"}},
		{title: "for", query: `for(X, 1, 2)`, solutions: []string{"X = 1", "X = 2"}},
		{title: "rnd", query: `rnd(1, X)`, solutions: []string{"X = 0"}},
		{title: "rnd list", query: `rnd([a], X)`, solutions: []string{"X = a"}},
	})
}

func TestSession_terms(t *testing.T) {
	runSolveTests(t, []solveTest{
		{title: "unify", query: `f(X, b) = f(a, Y)`, solutions: []string{"X = a, Y = b"}},
		{title: "not unifiable", query: `f(a) \= f(b)`, solutions: []string{"true"}},
		{title: "type checks", query: `atom(foo), integer(1), float(1.0), number(1), atomic(a), compound(f(x)), callable(a), is_list([a]), ground(f(a)), var(_), nonvar(a)`, solutions: []string{"true"}},
		{title: "partial list", query: `is_list([a|_])`},
		{title: "identical", query: `f(a) == f(a), 1 \== 1.0`, solutions: []string{"true"}},
		{title: "standard order", query: `sort([f(a), b, 1, 1.0, g(a, b)], L)`, solutions: []string{"L = [1.0, 1, b, f(a), g(a, b)]"}},
		{title: "compare", query: `compare(O, 1, a)`, solutions: []string{"O = <"}},
		{title: "compare domain", query: `compare(foo, 1, 2)`, err: "domain_error(order, foo)"},
		{title: "term less than", query: `a @< b, f(b) @> f(a), a @=< a, b @>= a`, solutions: []string{"true"}},
		{title: "functor", query: `functor(foo(a, b), N, A)`, solutions: []string{"N = foo, A = 2"}},
		{title: "functor atomic", query: `functor(T, foo, 0)`, solutions: []string{"T = foo"}},
		{title: "functor construct", query: `functor(T, foo, 2), T = foo(a, b)`, solutions: []string{"T = foo(a, b)"}},
		{title: "arg", query: `arg(2, f(a, b), X)`, solutions: []string{"X = b"}},
		{title: "arg out of range", query: `arg(3, f(a, b), _)`},
		{title: "univ compose", query: `X =.. [f, a, b]`, solutions: []string{"X = f(a, b)"}},
		{title: "univ decompose", query: `f(a) =.. L`, solutions: []string{"L = [f, a]"}},
		{title: "univ atomic", query: `X =.. [1]`, solutions: []string{"X = 1"}},
		{title: "univ empty", query: `_ =.. []`, err: "domain_error(non_empty_list, [])"},
		{title: "copy_term", query: `copy_term(f(_A, _A), f(x, R))`, solutions: []string{"R = x"}},
		{title: "term_variables", query: `term_variables(f(_X, g(_Y, _X)), _L), length(_L, N)`, solutions: []string{"N = 2"}},
	})
}

func TestSession_text(t *testing.T) {
	runSolveTests(t, []solveTest{
		{title: "atom_length", query: `atom_length(hello, N)`, solutions: []string{"N = 5"}},
		{title: "atom_length type", query: `atom_length(f(a), _)`, err: "type_error(atom, f(a))"},
		{title: "atom_concat", query: `atom_concat(ab, cd, X)`, solutions: []string{"X = abcd"}},
		{title: "atom_concat split", query: `atom_concat(X, Y, ab)`, solutions: []string{"X = '', Y = ab", "X = a, Y = b", "X = ab, Y = ''"}},
		{title: "atom_concat prefix", query: `atom_concat(X, b, ab)`, solutions: []string{"X = a"}},
		{title: "sub_atom", query: `sub_atom(abc, B, 1, A, S)`, solutions: []string{"B = 0, A = 2, S = a", "B = 1, A = 1, S = b", "B = 2, A = 0, S = c"}},
		{title: "sub_atom search", query: `sub_atom(abcab, B, _, _, ab)`, solutions: []string{"B = 0", "B = 3"}},
		{title: "atom_chars", query: `atom_chars(X, [a, b])`, solutions: []string{"X = ab"}},
		{title: "atom_chars partial", query: `atom_chars(_, [a|_])`, err: "instantiation_error"},
		{title: "atom_codes", query: `atom_codes(abc, L)`, solutions: []string{"L = [97, 98, 99]"}},
		{title: "char_code", query: `char_code(C, 0'a)`, solutions: []string{"C = a"}},
		{title: "atom_number", query: `atom_number('12', N)`, solutions: []string{"N = 12"}},
		{title: "atom_number not a number", query: `atom_number(foo, _)`},
		{title: "number_codes", query: `number_codes(N, "42")`, solutions: []string{"N = 42"}},
		{title: "number_chars", query: `number_chars(1.5, L)`, solutions: []string{"L = ['1', '.', '5']"}},
		{title: "number_codes syntax", query: `number_codes(_, "4a")`, err: "syntax_error('not a number')"},
		{title: "upcase_atom", query: `upcase_atom(abc, X)`, solutions: []string{"X = 'ABC'"}},
		{title: "downcase_atom", query: `downcase_atom('ABC', X)`, solutions: []string{"X = abc"}},
	})
}

func TestSession_collections(t *testing.T) {
	runSolveTests(t, []solveTest{
		{title: "findall", query: `findall(_X, p(_X), L)`, solutions: []string{"L = [1, 2, 3]"}},
		{title: "findall empty", query: `findall(_X, fail, L)`, solutions: []string{"L = []"}},
		{title: "findall/4", query: `findall(_X, p(_X), L, [4])`, solutions: []string{"L = [1, 2, 3, 4]"}},
		{title: "bagof existential", query: `bagof(N, P^age(P, N), L)`, solutions: []string{"L = [7, 11, 8, 5]"}},
		{title: "bagof groups", query: `bagof(P, class(C, P), L)`, solutions: []string{"C = a, L = [peter, pat]", "C = b, L = [ann]"}},
		{title: "bagof fails", query: `bagof(_X, fail, _)`},
		{title: "setof", query: `setof(N, P^age(P, N), L)`, solutions: []string{"L = [5, 7, 8, 11]"}},
		{title: "aggregate count", query: `aggregate_all(count, p(_), N)`, solutions: []string{"N = 3"}},
		{title: "aggregate sum", query: `aggregate_all(sum(X), p(X), S)`, solutions: []string{"S = 6"}},
		{title: "aggregate sum empty", query: `aggregate_all(sum(X), fail, S)`, solutions: []string{"S = 0"}},
		{title: "aggregate max", query: `aggregate_all(max(X), p(X), M)`, solutions: []string{"M = 3"}},
		{title: "aggregate max empty", query: `aggregate_all(max(X), fail, _)`},
		{title: "aggregate min", query: `aggregate_all(min(N), age(_, N), M)`, solutions: []string{"M = 5"}},
		{title: "aggregate bag", query: `aggregate_all(bag(X), p(X), B)`, solutions: []string{"B = [1, 2, 3]"}},
		{title: "aggregate set", query: `aggregate_all(set(C), class(C, _), S)`, solutions: []string{"S = [a, b]"}},
		{title: "aggregate domain", query: `aggregate_all(foo, true, _)`, err: "domain_error(aggregate_spec, foo)"},
		{title: "length", query: `length([a, b], N)`, solutions: []string{"N = 2"}},
		{title: "length partial", query: `length([a|T], 3), T = [b, c]`, solutions: []string{"T = [b, c]"}},
		{title: "length enumerate", query: `length(_L, N), N >= 2, !`, solutions: []string{"N = 2"}},
		{title: "length negative", query: `length(_, -1)`, err: "domain_error(not_less_than_zero, -1)"},
		{title: "msort", query: `msort([b, a, c, a], L)`, solutions: []string{"L = [a, a, b, c]"}},
		{title: "sort", query: `sort([b, a, c, a], L)`, solutions: []string{"L = [a, b, c]"}},
		{title: "sort partial", query: `sort([a|_], _)`, err: "instantiation_error"},
		{title: "keysort", query: `keysort([b-1, a-2, b-0], L)`, solutions: []string{"L = [a-2, b-1, b-0]"}},
		{title: "keysort pair", query: `keysort([a], _)`, err: "type_error(pair, a)"},
	})
}

func TestSession_Query(t *testing.T) {
	t.Run("syntax error", func(t *testing.T) {
		s := NewSession()
		defer s.Dispose()
		_, _, err := s.Query(`foo(`)
		assert.Error(t, err)
	})

	t.Run("placeholders", func(t *testing.T) {
		s := newTestSession(t, facts)
		defer s.Dispose()
		e, vars, err := s.Query(`age(?, X)`, Atom("ann"))
		assert.NoError(t, err)
		ok, err := e.Next(context.Background())
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, Integer(11), e.Heap().Resolve(vars[0].Variable))
	})

	t.Run("context", func(t *testing.T) {
		s := NewSession()
		defer s.Dispose()
		e, _, err := s.Query(`between(1, inf, _), fail`)
		assert.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = e.Next(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSession_Prepare(t *testing.T) {
	s := newTestSession(t, facts)
	defer s.Dispose()

	p, err := s.Prepare(`q(X)`)
	assert.NoError(t, err)

	for i := 0; i < 2; i++ {
		e, vars := p.Submit(s)
		var xs []Term
		for {
			ok, err := e.Next(context.Background())
			assert.NoError(t, err)
			if !ok {
				break
			}
			xs = append(xs, e.Heap().Resolve(vars[0].Variable))
		}
		assert.Equal(t, []Term{Integer(2), Integer(3)}, xs)
	}
}

func TestSession_Register(t *testing.T) {
	s := NewSession()
	defer s.Dispose()
	s.Register("double", 2, func(e *Engine, args []Term) (bool, error) {
		n, ok := e.Heap().Resolve(args[0]).(Integer)
		if !ok {
			return false, TypeError(ValidTypeInteger, args[0], e.Heap())
		}
		return e.Heap().Unify(args[1], n*2), nil
	})
	s.RegisterNondet("digit", 1, func(e *Engine, args []Term, c *Cursor) (bool, error) {
		if c.Init(CursorRange) {
			c.Last = 2
		}
		v := c.Next
		if v == c.Last {
			c.Stop()
		}
		c.Next++
		return e.Heap().Unify(args[0], v), nil
	})

	sols, err := solve(s, `double(21, X)`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"X = 42"}, sols)

	sols, err = solve(s, `digit(X)`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"X = 0", "X = 1", "X = 2"}, sols)

	_, err = solve(s, `assertz(double(1, 2))`)
	assert.Equal(t, "permission_error(modify, static_procedure, double/2)", formal(t, err))
	assert.True(t, s.IsBuiltin(ProcedureIndicator{Name: "digit", Arity: 1}))
}

func TestSession_Hooks(t *testing.T) {
	var calls, redos int
	var events []TriggerEvent
	s := newTestSession(t, facts, WithHooks(Hooks{
		OnCall: func(pi ProcedureIndicator) {
			if pi == (ProcedureIndicator{Name: "p", Arity: 1}) {
				calls++
			}
		},
		OnRedo: func() {
			redos++
		},
		OnChange: func(ev TriggerEvent) {
			events = append(events, ev)
		},
	}))
	defer s.Dispose()

	sols, err := solve(s, `p(X)`)
	assert.NoError(t, err)
	assert.Len(t, sols, 3)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, redos)

	events = nil
	_, err = solve(s, `assertz(p(4)), retract(p(1))`)
	assert.NoError(t, err)
	assert.Equal(t, []TriggerEvent{
		{Signature: ProcedureIndicator{Name: "p", Arity: 1}, Kind: TriggerAssert},
		{Signature: ProcedureIndicator{Name: "p", Arity: 1}, Kind: TriggerRetract},
	}, events)
}

func TestSession_Copy(t *testing.T) {
	s := newTestSession(t, facts)
	defer s.Dispose()

	c := s.Copy()
	defer c.Dispose()
	assert.NotEqual(t, s.ID, c.ID)

	_, err := solve(c, `assertz(p(4)), set_prolog_flag(unknown, fail)`)
	assert.NoError(t, err)

	sols, err := solve(s, `aggregate_all(count, p(_), N)`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"N = 3"}, sols)
	sols, err = solve(c, `aggregate_all(count, p(_), N)`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"N = 4"}, sols)

	v, _ := s.Flag("unknown")
	assert.Equal(t, Atom("error"), v)
	v, _ = c.Flag("unknown")
	assert.Equal(t, Atom("fail"), v)
}

func TestSession_Dispose(t *testing.T) {
	t.Run("halt", func(t *testing.T) {
		s := NewSession()
		var halted int
		s.OnHalt(func() {
			halted++
		})
		_, err := solve(s, `halt(3)`)
		var he *HaltError
		assert.True(t, errors.As(err, &he))
		assert.Equal(t, 3, he.Status)
		assert.True(t, s.Disposed())
		assert.Equal(t, 1, halted)

		_, _, err = s.Query(`true`)
		assert.ErrorIs(t, err, ErrDisposed)

		s.Dispose()
		assert.Equal(t, 1, halted)
	})

	t.Run("running engine", func(t *testing.T) {
		s := newTestSession(t, facts)
		e, _, err := s.Query(`p(_)`)
		assert.NoError(t, err)
		ok, err := e.Next(context.Background())
		assert.NoError(t, err)
		assert.True(t, ok)

		s.Dispose()
		_, err = e.Next(context.Background())
		assert.ErrorIs(t, err, ErrDisposed)
	})
}
