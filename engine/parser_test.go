package engine

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParser_Term(t *testing.T) {
	tests := []struct {
		input        string
		doubleQuotes DoubleQuotes
		term         Term
		vars         []ParsedVariable
		err          error
		syntax       string
	}{
		{input: `foo.`, term: Atom("foo")},
		{input: `foo(X, Y, X).`, term: Atom("foo").Apply(Variable(0), Variable(1), Variable(0)), vars: []ParsedVariable{
			{Name: "X", Variable: 0, Count: 2},
			{Name: "Y", Variable: 1, Count: 1},
		}},
		{input: `foo(_, _).`, term: Atom("foo").Apply(Variable(0), Variable(1))},
		{input: `a :- b, c ; d.`, term: atomIf.Apply(Atom("a"), atomSemicolon.Apply(atomComma.Apply(Atom("b"), Atom("c")), Atom("d")))},
		{input: `(a | b).`, term: atomSemicolon.Apply(Atom("a"), Atom("b"))},
		{input: `X is -1 + 2.`, term: Atom("is").Apply(Variable(0), atomPlus.Apply(Integer(-1), Integer(2))), vars: []ParsedVariable{
			{Name: "X", Variable: 0, Count: 1},
		}},
		{input: `1 + 2 * 3.`, term: atomPlus.Apply(Integer(1), Atom("*").Apply(Integer(2), Integer(3)))},
		{input: `(1 + 2) * 3.`, term: Atom("*").Apply(atomPlus.Apply(Integer(1), Integer(2)), Integer(3))},
		{input: `1 - 2 - 3.`, term: atomMinus.Apply(atomMinus.Apply(Integer(1), Integer(2)), Integer(3))},
		{input: `2 ^ 3 ^ 4.`, term: atomCaret.Apply(Integer(2), atomCaret.Apply(Integer(3), Integer(4)))},
		{input: `- (1).`, term: atomMinus.Apply(Integer(1))},
		{input: `-(1).`, term: atomMinus.Apply(Integer(1))},
		{input: `- 1.`, term: Integer(-1)},
		{input: `- 1.5.`, term: Float(-1.5)},
		{input: `- a.`, term: atomMinus.Apply(Atom("a"))},
		{input: `\+ a.`, term: atomNegation.Apply(Atom("a"))},
		{input: `f(+, -).`, term: Atom("f").Apply(atomPlus, atomMinus)},
		{input: `[a, b|T].`, term: ListRest(Variable(0), Atom("a"), Atom("b")), vars: []ParsedVariable{
			{Name: "T", Variable: 0, Count: 1},
		}},
		{input: `[].`, term: atomEmptyList},
		{input: `{a, b}.`, term: atomEmptyBlock.Apply(atomComma.Apply(Atom("a"), Atom("b")))},
		{input: `"abc".`, term: List(Integer('a'), Integer('b'), Integer('c'))},
		{input: `"abc".`, doubleQuotes: DoubleQuotesChars, term: List(Atom("a"), Atom("b"), Atom("c"))},
		{input: `"abc".`, doubleQuotes: DoubleQuotesAtom, term: Atom("abc")},
		{input: `'hello\nworld'.`, term: Atom("hello\nworld")},
		{input: `'don''t'.`, term: Atom("don't")},
		{input: `[0'a, 0x1F, 0b101, 0o17, 1.5e3].`, term: List(Integer(97), Integer(31), Integer(5), Integer(15), Float(1500))},
		{input: `a :- b.`, term: atomIf.Apply(Atom("a"), Atom("b"))},
		{input: `:- dynamic(foo/1).`, term: atomIf.Apply(Atom("dynamic").Apply(atomSlash.Apply(Atom("foo"), Integer(1))))},
		{input: `foo(.`, syntax: "unexpected token: <period"},
		{input: `foo(a b).`, syntax: "unexpected token: <ident b>"},
		{input: `a like b.`, syntax: "unexpected token: <ident like>"},
		{input: `f(a`, err: ErrInsufficient},
		{input: `foo`, err: ErrInsufficient},
		{input: ``, err: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var h Heap
			p := NewParser(strings.NewReader(tt.input), NewOperators(), &h)
			p.DoubleQuotes = tt.doubleQuotes
			term, err := p.Term()
			switch {
			case tt.syntax != "":
				assert.Nil(t, term)
				assert.True(t, strings.HasPrefix(syntaxErrorMessage(t, err), tt.syntax), err)
			case tt.err == nil:
				assert.NoError(t, err)
				if diff := cmp.Diff(tt.term, term); diff != "" {
					t.Errorf("term mismatch (-want +got):\n%s", diff)
				}
				if diff := cmp.Diff(tt.vars, p.Vars); diff != "" {
					t.Errorf("vars mismatch (-want +got):\n%s", diff)
				}
			default:
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestParser_userOperator(t *testing.T) {
	ops := NewOperators()

	var h Heap
	_, err := NewParser(strings.NewReader(`a like b.`), ops, &h).Term()
	assert.True(t, strings.HasPrefix(syntaxErrorMessage(t, err), "unexpected token: <ident like> at "))

	assert.NoError(t, ops.Define(700, OperatorSpecifierXFX, "like"))
	term, err := NewParser(strings.NewReader(`a like b.`), ops, &h).Term()
	assert.NoError(t, err)
	assert.Equal(t, Atom("like").Apply(Atom("a"), Atom("b")), term)

	assert.NoError(t, ops.Remove("like", OperatorClassInfix))
	_, err = NewParser(strings.NewReader(`a like b.`), ops, &h).Term()
	assert.True(t, strings.HasPrefix(syntaxErrorMessage(t, err), "unexpected token: <ident like>"))
}

// syntaxErrorMessage returns Message of error(syntax_error(Message), _) raised as err.
func syntaxErrorMessage(t *testing.T, err error) string {
	t.Helper()
	var e Exception
	if !assert.True(t, errors.As(err, &e), "not an exception: %v", err) {
		return ""
	}
	c, ok := e.Term().(*Compound)
	if !assert.True(t, ok && c.Functor == atomError && len(c.Args) == 2, e.Term()) {
		return ""
	}
	f, ok := c.Args[0].(*Compound)
	if !assert.True(t, ok && f.Functor == "syntax_error" && len(f.Args) == 1, c.Args[0]) {
		return ""
	}
	msg, _ := f.Args[0].(Atom)
	return string(msg)
}

func TestParser_SetPlaceholder(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		var h Heap
		p := NewParser(strings.NewReader(`foo(?, ?, ?).`), NewOperators(), &h)
		assert.NoError(t, p.SetPlaceholder("?", 1, "ab", []any{Atom("x"), 2.5}))
		term, err := p.Term()
		assert.NoError(t, err)
		assert.Equal(t, Atom("foo").Apply(
			Integer(1),
			List(Integer('a'), Integer('b')),
			List(Atom("x"), Float(2.5)),
		), term)
	})

	t.Run("too few", func(t *testing.T) {
		var h Heap
		p := NewParser(strings.NewReader(`foo(?, ?).`), NewOperators(), &h)
		assert.NoError(t, p.SetPlaceholder("?", 1))
		_, err := p.Term()
		assert.Error(t, err)
	})

	t.Run("too many", func(t *testing.T) {
		var h Heap
		p := NewParser(strings.NewReader(`foo(?).`), NewOperators(), &h)
		assert.NoError(t, p.SetPlaceholder("?", 1, 2))
		_, err := p.Term()
		assert.Error(t, err)
	})

	t.Run("unsupported", func(t *testing.T) {
		var h Heap
		p := NewParser(strings.NewReader(`foo(?).`), NewOperators(), &h)
		assert.Error(t, p.SetPlaceholder("?", struct{}{}))
	})
}

func TestParser_Vars(t *testing.T) {
	var h Heap
	p := NewParser(strings.NewReader("foo(X).\nbar(Y, X).\n"), NewOperators(), &h)

	_, err := p.Term()
	assert.NoError(t, err)
	assert.Equal(t, []ParsedVariable{{Name: "X", Variable: 0, Count: 1}}, p.Vars)

	_, err = p.Term()
	assert.NoError(t, err)
	assert.Equal(t, []ParsedVariable{{Name: "Y", Variable: 1, Count: 1}, {Name: "X", Variable: 2, Count: 1}}, p.Vars)

	_, err = p.Term()
	assert.Equal(t, io.EOF, err)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		n     Number
		ok    bool
	}{
		{input: `42`, n: Integer(42), ok: true},
		{input: ` 42`, n: Integer(42), ok: true},
		{input: `-42`, n: Integer(-42), ok: true},
		{input: `3.25`, n: Float(3.25), ok: true},
		{input: `0'a`, n: Integer(97), ok: true},
		{input: `42 `},
		{input: `- 42`},
		{input: `foo`},
		{input: `4 2`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, err := ParseNumber(tt.input)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.n, n)
		})
	}
}
