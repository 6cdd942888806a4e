package engine

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

type writeOptions struct {
	quoted     bool
	ops        *Operators
	numberVars bool
	ignoreOps  bool
	priority   Integer
	operand    bool
}

var defaultOperators = NewOperators()

// WriteOption configures WriteTerm.
type WriteOption func(*writeOptions)

// WithQuoted sets if atoms are quoted as needed.
func WithQuoted(b bool) WriteOption {
	return func(o *writeOptions) {
		o.quoted = b
	}
}

// WithOps sets the operator table to consult. Without it, the standard operators are used.
func WithOps(ops *Operators) WriteOption {
	return func(o *writeOptions) {
		o.ops = ops
	}
}

// WithNumberVars sets if '$VAR'(N) is written as a variable name.
func WithNumberVars(b bool) WriteOption {
	return func(o *writeOptions) {
		o.numberVars = b
	}
}

// WithIgnoreOps sets if operators are written in the functional notation.
func WithIgnoreOps(b bool) WriteOption {
	return func(o *writeOptions) {
		o.ignoreOps = b
	}
}

// WithPriority sets the priority of the context in which the term is written.
func WithPriority(p Integer) WriteOption {
	return func(o *writeOptions) {
		o.priority = p
	}
}

// WriteTerm writes t to w. Variables are resolved through h.
func WriteTerm(w io.Writer, t Term, h *Heap, opts ...WriteOption) error {
	o := writeOptions{priority: 1200}
	for _, f := range opts {
		f(&o)
	}
	if o.ops == nil {
		o.ops = defaultOperators
	}
	tw := tokenWriter{w: w}
	unparse(tw.emit, t, h, &o)
	return tw.err
}

// WriteClause writes a clause as a quoted text followed by a full stop and a newline. The body is laid out
// one goal per line.
func WriteClause(w io.Writer, t Term, h *Heap, ops *Operators) error {
	head, body := Rulify(h, t)
	switch head.(type) {
	case Atom, *Compound:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidClause, head)
	}

	if ops == nil {
		ops = defaultOperators
	}
	o := writeOptions{quoted: true, ops: ops, numberVars: true}
	tw := tokenWriter{w: w}
	unparse(tw.emit, head, h, o.with(1199, false))
	if body != atomTrue {
		tw.emit(Token{Kind: TokenGraphic, Val: ":-", Layout: true})
		goals := flattenConjunction(h, body)
		for i, g := range goals {
			tw.raw("\n    ")
			unparse(tw.emit, g, h, o.with(999, false))
			if i < len(goals)-1 {
				tw.emit(Token{Kind: TokenComma, Val: ","})
			}
		}
	}
	tw.emit(Token{Kind: TokenPeriod, Val: "."})
	tw.raw("\n")
	return tw.err
}

func flattenConjunction(h *Heap, t Term) []Term {
	var ret []Term
	for {
		c, ok := h.Resolve(t).(*Compound)
		if !ok || c.Functor != atomComma || len(c.Args) != 2 {
			return append(ret, h.Resolve(t))
		}
		ret = append(ret, h.Resolve(c.Args[0]))
		t = c.Args[1]
	}
}

type tokenWriter struct {
	w    io.Writer
	err  error
	last Token
}

func (t *tokenWriter) emit(token Token) {
	if t.err != nil {
		return
	}
	if t.last.Val != "" && (token.Layout || needsSpace(t.last, token)) {
		_, t.err = io.WriteString(t.w, " ")
	}
	if t.err == nil {
		_, t.err = io.WriteString(t.w, token.Val)
	}
	t.last = token
}

var spacing = [tokenKindLen][tokenKindLen]bool{
	TokenVariable: {
		TokenVariable: true,
		TokenInteger:  true,
		TokenFloat:    true,
		TokenIdent:    true,
	},
	TokenIdent: {
		TokenVariable: true,
		TokenInteger:  true,
		TokenFloat:    true,
		TokenIdent:    true,
	},
	TokenInteger: {
		TokenVariable: true,
		TokenInteger:  true,
		TokenFloat:    true,
		TokenIdent:    true,
	},
	TokenFloat: {
		TokenVariable: true,
		TokenInteger:  true,
		TokenFloat:    true,
		TokenIdent:    true,
	},
	TokenGraphic: {
		TokenGraphic: true,
	},
	TokenComma: {
		TokenVariable:     true,
		TokenFloat:        true,
		TokenInteger:      true,
		TokenIdent:        true,
		TokenQuotedIdent:  true,
		TokenGraphic:      true,
		TokenParenL:       true,
		TokenBracketL:     true,
		TokenBraceL:       true,
		TokenDoubleQuoted: true,
	},
}

func (t *tokenWriter) raw(s string) {
	if t.err != nil {
		return
	}
	_, t.err = io.WriteString(t.w, s)
	t.last = Token{}
}

func needsSpace(prev, next Token) bool {
	if spacing[prev.Kind][next.Kind] {
		return true
	}
	if next.Kind == TokenPeriod {
		return prev.Kind == TokenGraphic
	}
	// A negative number after a symbol char would be read as a part of a graphic token.
	if prev.Kind == TokenGraphic && (next.Kind == TokenInteger || next.Kind == TokenFloat) && strings.HasPrefix(next.Val, "-") {
		return true
	}
	// 1.0e is an incomplete float.
	if prev.Kind == TokenFloat && next.Kind == TokenIdent && strings.HasPrefix(next.Val, "e") {
		return true
	}
	// . followed by a layout is an end.
	if next.Kind == TokenGraphic && next.Val == "." || prev.Kind == TokenGraphic && strings.HasSuffix(prev.Val, ".") {
		return true
	}
	return false
}

func unparse(emit func(Token), t Term, h *Heap, o *writeOptions) {
	switch t := h.Resolve(t).(type) {
	case Variable:
		emit(Token{Kind: TokenVariable, Val: t.String()})
	case Atom:
		unparseAtom(emit, t, o)
	case Integer:
		emit(Token{Kind: TokenInteger, Val: t.String()})
	case Float:
		emit(Token{Kind: TokenFloat, Val: t.String()})
	case *Operator:
		unparse(emit, Atom("op").Apply(t.Priority, t.Specifier.Term(), t.Name), h, o)
	case *Compound:
		unparseCompound(emit, t, h, o)
	}
}

func unparseAtom(emit func(Token), a Atom, o *writeOptions) {
	paren := o.operand && o.ops.Defined(a)
	if paren {
		emit(Token{Kind: TokenParenL, Val: "("})
	}
	switch {
	case a == atomComma:
		emit(Token{Kind: TokenQuotedIdent, Val: quoteIf(o.quoted, a)})
	case o.quoted && a.needsQuote():
		emit(Token{Kind: TokenQuotedIdent, Val: quote(string(a))})
	default:
		emit(Token{Kind: atomKind(a), Val: string(a)})
	}
	if paren {
		emit(Token{Kind: TokenParenR, Val: ")"})
	}
}

func quoteIf(b bool, a Atom) string {
	if b {
		return quote(string(a))
	}
	return string(a)
}

func atomKind(a Atom) TokenKind {
	r, _ := utf8.DecodeRuneInString(string(a))
	switch {
	case a == "":
		return TokenQuotedIdent
	case isGraphic(r):
		return TokenGraphic
	case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
		return TokenIdent
	default:
		return TokenQuotedIdent
	}
}

func unparseCompound(emit func(Token), c *Compound, h *Heap, o *writeOptions) {
	switch {
	case c.isList():
		unparseList(emit, c, h, o)
		return
	case c.Functor == atomEmptyBlock && len(c.Args) == 1 && !o.ignoreOps:
		emit(Token{Kind: TokenBraceL, Val: "{"})
		unparse(emit, c.Args[0], h, o.with(1200, false))
		emit(Token{Kind: TokenBraceR, Val: "}"})
		return
	case c.Functor == atomVar && len(c.Args) == 1 && o.numberVars:
		if n, ok := h.Resolve(c.Args[0]).(Integer); ok && n >= 0 {
			unparseNumberVar(emit, n)
			return
		}
	}

	if !o.ignoreOps {
		switch len(c.Args) {
		case 1:
			if op, ok := o.ops.Lookup(c.Functor, OperatorClassPrefix); ok {
				unparsePrefix(emit, c, op, h, o)
				return
			}
			if op, ok := o.ops.Lookup(c.Functor, OperatorClassPostfix); ok {
				unparsePostfix(emit, c, op, h, o)
				return
			}
		case 2:
			if op, ok := o.ops.Lookup(c.Functor, OperatorClassInfix); ok {
				unparseInfix(emit, c, op, h, o)
				return
			}
		}
	}

	unparseAtom(emit, c.Functor, o.with(0, false))
	emit(Token{Kind: TokenParenL, Val: "("})
	for i, a := range c.Args {
		if i > 0 {
			emit(Token{Kind: TokenComma, Val: ","})
		}
		unparse(emit, a, h, o.with(999, false))
	}
	emit(Token{Kind: TokenParenR, Val: ")"})
}

func (o *writeOptions) with(priority Integer, operand bool) *writeOptions {
	c := *o
	c.priority = priority
	c.operand = operand
	return &c
}

func unparsePrefix(emit func(Token), c *Compound, op Operator, h *Heap, o *writeOptions) {
	arg := h.Resolve(c.Args[0])
	_, r := op.bindingPriorities()
	if (c.Functor == atomMinus || c.Functor == atomPlus) && startsWithNumber(arg, h, o.with(r, true)) {
		// - 1 and - 2^2 would be read with -1 and -2 as numbers.
		unparseAtom(emit, c.Functor, o.with(0, false))
		emit(Token{Kind: TokenParenL, Val: "("})
		unparse(emit, arg, h, o.with(999, false))
		emit(Token{Kind: TokenParenR, Val: ")"})
		return
	}

	open := op.Priority > o.priority
	if open {
		emit(Token{Kind: TokenParenL, Val: "("})
	}
	unparseAtom(emit, c.Functor, o.with(0, false))
	first := true
	unparse(func(t Token) {
		// An open paren right after a prefix operator would make it a functional notation.
		if first && t.Kind == TokenParenL {
			t.Layout = true
		}
		first = false
		emit(t)
	}, arg, h, o.with(r, true))
	if open {
		emit(Token{Kind: TokenParenR, Val: ")"})
	}
}

// startsWithNumber reports whether the first token of t written with o is a number.
func startsWithNumber(t Term, h *Heap, o *writeOptions) bool {
	if _, ok := t.(Number); ok {
		return true
	}
	var first *Token
	unparse(func(t Token) {
		if first == nil {
			first = &t
		}
	}, t, h, o)
	return first != nil && (first.Kind == TokenInteger || first.Kind == TokenFloat)
}

func unparsePostfix(emit func(Token), c *Compound, op Operator, h *Heap, o *writeOptions) {
	l, _ := op.bindingPriorities()
	open := op.Priority > o.priority
	if open {
		emit(Token{Kind: TokenParenL, Val: "("})
	}
	unparse(emit, c.Args[0], h, o.with(l, true))
	unparseAtom(emit, c.Functor, o.with(0, false))
	if open {
		emit(Token{Kind: TokenParenR, Val: ")"})
	}
}

func unparseInfix(emit func(Token), c *Compound, op Operator, h *Heap, o *writeOptions) {
	l, r := op.bindingPriorities()
	open := op.Priority > o.priority
	if open {
		emit(Token{Kind: TokenParenL, Val: "("})
	}
	unparse(emit, c.Args[0], h, o.with(l, true))
	switch c.Functor {
	case atomComma:
		emit(Token{Kind: TokenComma, Val: ","})
	case atomBar:
		emit(Token{Kind: TokenBar, Val: "|"})
	default:
		unparseAtom(emit, c.Functor, o.with(0, false))
	}
	unparse(emit, c.Args[1], h, o.with(r, true))
	if open {
		emit(Token{Kind: TokenParenR, Val: ")"})
	}
}

func unparseList(emit func(Token), c *Compound, h *Heap, o *writeOptions) {
	emit(Token{Kind: TokenBracketL, Val: "["})
	unparse(emit, c.Args[0], h, o.with(999, false))
	t := h.Resolve(c.Args[1])
	for {
		switch l := t.(type) {
		case *Compound:
			if l.isList() {
				emit(Token{Kind: TokenComma, Val: ","})
				unparse(emit, l.Args[0], h, o.with(999, false))
				t = h.Resolve(l.Args[1])
				continue
			}
		case Atom:
			if l == atomEmptyList {
				emit(Token{Kind: TokenBracketR, Val: "]"})
				return
			}
		}
		emit(Token{Kind: TokenBar, Val: "|"})
		unparse(emit, t, h, o.with(999, false))
		emit(Token{Kind: TokenBracketR, Val: "]"})
		return
	}
}

func unparseNumberVar(emit func(Token), n Integer) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	i, j := int(n)%len(letters), int(n)/len(letters)
	if j == 0 {
		emit(Token{Kind: TokenVariable, Val: string(letters[i])})
		return
	}
	emit(Token{Kind: TokenVariable, Val: fmt.Sprintf("%s%d", string(letters[i]), j)})
}
