package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type kv struct {
	kind TokenKind
	val  string
}

func lexAll(input string) ([]kv, error) {
	l := NewLexer(strings.NewReader(input))
	var ret []kv
	for {
		t, err := l.Next()
		if err != nil {
			return ret, err
		}
		ret = append(ret, kv{kind: t.Kind, val: t.Val})
		if t.Kind == TokenEOS {
			return ret, nil
		}
	}
}

func TestLexer_Next(t *testing.T) {
	tests := []struct {
		input  string
		tokens []kv
		err    error
	}{
		{input: ``, tokens: []kv{{kind: TokenEOS}}},
		{input: `foo.`, tokens: []kv{{TokenIdent, "foo"}, {TokenPeriod, "."}, {kind: TokenEOS}}},
		{input: "foo(X, _Y).\n", tokens: []kv{
			{TokenIdent, "foo"},
			{TokenParenL, "("},
			{TokenVariable, "X"},
			{TokenComma, ","},
			{TokenVariable, "_Y"},
			{TokenParenR, ")"},
			{TokenPeriod, "."},
			{kind: TokenEOS},
		}},
		{input: `X = 1.`, tokens: []kv{{TokenVariable, "X"}, {TokenGraphic, "="}, {TokenInteger, "1"}, {TokenPeriod, "."}, {kind: TokenEOS}}},
		{input: `1.5e3 0x1F 0'a 0b101 0o17`, tokens: []kv{
			{TokenFloat, "1.5e3"},
			{TokenInteger, "0x1F"},
			{TokenInteger, "0'a"},
			{TokenInteger, "0b101"},
			{TokenInteger, "0o17"},
			{kind: TokenEOS},
		}},
		{input: `'hello world' "abc" [] {} ! ;`, tokens: []kv{
			{TokenQuotedIdent, "'hello world'"},
			{TokenDoubleQuoted, `"abc"`},
			{TokenIdent, "[]"},
			{TokenIdent, "{}"},
			{TokenIdent, "!"},
			{TokenIdent, ";"},
			{kind: TokenEOS},
		}},
		{input: `[a|T]`, tokens: []kv{
			{TokenBracketL, "["},
			{TokenIdent, "a"},
			{TokenBar, "|"},
			{TokenVariable, "T"},
			{TokenBracketR, "]"},
			{kind: TokenEOS},
		}},
		{input: "a :- b. % comment\n/* block */ c.", tokens: []kv{
			{TokenIdent, "a"},
			{TokenGraphic, ":-"},
			{TokenIdent, "b"},
			{TokenPeriod, "."},
			{TokenIdent, "c"},
			{TokenPeriod, "."},
			{kind: TokenEOS},
		}},
		{input: `'unterminated`, err: ErrInsufficient},
		{input: `/* unterminated`, err: ErrInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := lexAll(tt.input)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.tokens, tokens)
		})
	}
}

func TestLexer_Layout(t *testing.T) {
	l := NewLexer(strings.NewReader(`f (a)`))
	f, err := l.Next()
	assert.NoError(t, err)
	assert.False(t, f.Layout)
	p, err := l.Next()
	assert.NoError(t, err)
	assert.Equal(t, TokenParenL, p.Kind)
	assert.True(t, p.Layout)
	assert.Equal(t, Position{Line: 1, Column: 3}, p.Pos)
}
