package engine

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
)

var (
	errNoOp        = errors.New("no op")
	errNotANumber  = errors.New("not a number")
	errPlaceholder = errors.New("wrong number of arguments for placeholders")
)

// DoubleQuotes decides how a double-quoted text is read.
type DoubleQuotes int

// DoubleQuotes is one of these values.
const (
	DoubleQuotesCodes DoubleQuotes = iota
	DoubleQuotesChars
	DoubleQuotesAtom
)

func (d DoubleQuotes) String() string {
	return [...]string{
		DoubleQuotesCodes: "codes",
		DoubleQuotesChars: "chars",
		DoubleQuotesAtom:  "atom",
	}[d]
}

// Parser turns runes into terms. It reads one clause at a time.
type Parser struct {
	lexer *Lexer
	ops   *Operators
	heap  *Heap

	// DoubleQuotes decides how double-quoted texts are read.
	DoubleQuotes DoubleQuotes

	// Vars holds the named variables of the last term read.
	Vars []ParsedVariable

	placeholder Atom
	args        []Term

	tokens []Token
	pos    int
}

// ParsedVariable is a set of information regarding a variable in a parsed term.
type ParsedVariable struct {
	Name     Atom
	Variable Variable
	Count    int
}

// NewParser creates a new parser which allocates variables on h and looks up operators in ops.
func NewParser(r io.RuneReader, ops *Operators, h *Heap) *Parser {
	return &Parser{
		lexer: NewLexer(r),
		ops:   ops,
		heap:  h,
	}
}

// SetPlaceholder registers placeholder and its arguments. Every occurrence of placeholder will be replaced by arguments.
// Mismatch of the number of occurrences of placeholder and the number of arguments raises an error.
func (p *Parser) SetPlaceholder(placeholder Atom, args ...interface{}) error {
	p.placeholder = placeholder
	p.args = make([]Term, len(args))
	for i, a := range args {
		var err error
		p.args[i], err = p.termOf(reflect.ValueOf(a))
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) termOf(o reflect.Value) (Term, error) {
	if !o.IsValid() {
		return nil, errors.New("can't convert to term: nil")
	}
	if t, ok := o.Interface().(Term); ok {
		return t, nil
	}
	switch o.Kind() {
	case reflect.Interface, reflect.Pointer:
		if o.IsNil() {
			return nil, errors.New("can't convert to term: nil")
		}
		return p.termOf(o.Elem())
	case reflect.Float32, reflect.Float64:
		return Float(o.Float()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(o.Int()), nil
	case reflect.String:
		switch p.DoubleQuotes {
		case DoubleQuotesChars:
			return CharList(o.String()), nil
		case DoubleQuotesAtom:
			return Atom(o.String()), nil
		default:
			return CodeList(o.String()), nil
		}
	case reflect.Array, reflect.Slice:
		l := o.Len()
		es := make([]Term, l)
		for i := 0; i < l; i++ {
			var err error
			es[i], err = p.termOf(o.Index(i))
			if err != nil {
				return nil, err
			}
		}
		return List(es...), nil
	default:
		return nil, fmt.Errorf("can't convert to term: %v", o)
	}
}

// Position returns the position of the rune which will be read next.
func (p *Parser) Position() Position {
	return p.lexer.Position()
}

// Start returns the position of the first token of the last term read.
func (p *Parser) Start() Position {
	if len(p.tokens) == 0 {
		return p.Position()
	}
	return p.tokens[0].Pos
}

// Term parses a term followed by a full stop. It returns io.EOF if there are no more terms.
func (p *Parser) Term() (Term, error) {
	p.Vars = nil
	if err := p.fill(); err != nil {
		return nil, err
	}

	t, err := p.term(1200)
	if err != nil {
		return nil, p.syntaxError(err)
	}

	if t := p.next(); t.Kind != TokenPeriod {
		p.backup()
		return nil, p.syntaxError(p.unexpected())
	}

	if len(p.args) != 0 {
		return nil, p.syntaxError(errPlaceholder)
	}

	return t, nil
}

// fill reads tokens up to the next full stop.
func (p *Parser) fill() error {
	p.tokens, p.pos = p.tokens[:0], 0
	for {
		t, err := p.lexer.Next()
		if err != nil {
			if errors.Is(err, ErrInsufficient) {
				return ErrInsufficient
			}
			return SyntaxError(err, nil)
		}
		switch t.Kind {
		case TokenEOS:
			if len(p.tokens) == 0 {
				return io.EOF
			}
			return ErrInsufficient
		case TokenPeriod:
			p.tokens = append(p.tokens, t)
			return nil
		default:
			p.tokens = append(p.tokens, t)
		}
	}
}

func (p *Parser) syntaxError(err error) error {
	var e Exception
	if errors.As(err, &e) {
		return err
	}
	return SyntaxError(err, nil)
}

func (p *Parser) next() Token {
	if p.pos >= len(p.tokens) {
		p.pos++
		return Token{Kind: TokenEOS}
	}
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) peek() Token {
	t := p.next()
	p.backup()
	return t
}

func (p *Parser) backup() {
	p.pos--
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokenEOS}
	}
	return p.tokens[p.pos]
}

func (p *Parser) unexpected() error {
	return unexpectedTokenError{actual: p.current()}
}

// Loosely based on Pratt parser explained in this article: https://matklad.github.io/2020/04/13/simple-but-powerful-pratt-parsing.html
func (p *Parser) term(maxPriority Integer) (Term, error) {
	var (
		lhs Term
		lp  Integer
	)
	start := p.pos
	switch op, err := p.prefix(maxPriority); {
	case err == nil:
		_, rbp := op.bindingPriorities()
		t, err := p.term(rbp)
		if err != nil {
			p.pos = start
			if lhs, err = p.term0(maxPriority); err != nil {
				return nil, err
			}
			break
		}
		lhs, lp = op.Name.Apply(t), op.Priority
	case errors.Is(err, errNoOp):
		if lhs, err = p.term0(maxPriority); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	for {
		op, err := p.infix(maxPriority, lp)
		if err != nil {
			break
		}
		switch _, rbp := op.bindingPriorities(); {
		case rbp > 1200:
			lhs = op.Name.Apply(lhs)
		default:
			rhs, err := p.term(rbp)
			if err != nil {
				return nil, err
			}
			lhs = op.Name.Apply(lhs, rhs)
		}
		lp = op.Priority
	}

	return lhs, nil
}

func (p *Parser) prefix(maxPriority Integer) (Operator, error) {
	start := p.pos
	a, err := p.op(maxPriority)
	if err != nil {
		return Operator{}, errNoOp
	}

	switch t := p.peek(); {
	case a == atomMinus && (t.Kind == TokenInteger || t.Kind == TokenFloat):
		// -1 is a number, not an operator applied to a number.
		p.pos = start
		return Operator{}, errNoOp
	case t.Kind == TokenParenL && !t.Layout:
		// Functional notation.
		p.pos = start
		return Operator{}, errNoOp
	case !p.startsTerm(t):
		p.pos = start
		return Operator{}, errNoOp
	}

	if op, ok := p.ops.Lookup(a, OperatorClassPrefix); ok && op.Priority <= maxPriority {
		return op, nil
	}

	p.pos = start
	return Operator{}, errNoOp
}

// startsTerm checks if t can be the first token of an operand.
func (p *Parser) startsTerm(t Token) bool {
	switch t.Kind {
	case TokenEOS, TokenPeriod, TokenParenR, TokenBracketR, TokenBraceR, TokenComma, TokenBar:
		return false
	case TokenIdent, TokenGraphic, TokenQuotedIdent:
		name := Atom(t.Val)
		if t.Kind == TokenQuotedIdent {
			name = Atom(unquote(t.Val))
		}
		if _, ok := p.ops.Lookup(name, OperatorClassPrefix); ok {
			return true
		}
		_, infix := p.ops.Lookup(name, OperatorClassInfix)
		_, postfix := p.ops.Lookup(name, OperatorClassPostfix)
		return !(infix || postfix) || p.followedByParen()
	default:
		return true
	}
}

func (p *Parser) followedByParen() bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	t := p.tokens[p.pos+1]
	return t.Kind == TokenParenL && !t.Layout
}

func (p *Parser) infix(maxPriority, lhsPriority Integer) (Operator, error) {
	start := p.pos
	a, err := p.op(maxPriority)
	if err != nil {
		return Operator{}, errNoOp
	}

	for _, class := range []OperatorClass{OperatorClassInfix, OperatorClassPostfix} {
		op, ok := p.ops.Lookup(a, class)
		if !ok {
			continue
		}
		if l, _ := op.bindingPriorities(); op.Priority <= maxPriority && lhsPriority <= l {
			return op, nil
		}
	}

	p.pos = start
	return Operator{}, errNoOp
}

func (p *Parser) op(maxPriority Integer) (Atom, error) {
	if a, err := p.name(); err == nil {
		return a, nil
	}

	switch t := p.next(); t.Kind {
	case TokenComma:
		if maxPriority >= 1000 {
			return atomComma, nil
		}
	case TokenBar:
		if maxPriority >= 1100 {
			return atomSemicolon, nil
		}
	}

	p.backup()
	return "", p.unexpected()
}

func (p *Parser) term0(maxPriority Integer) (Term, error) {
	switch t := p.next(); t.Kind {
	case TokenParenL:
		return p.openClose()
	case TokenInteger:
		return parseInteger(1, t.Val)
	case TokenFloat:
		return parseFloat(1, t.Val)
	case TokenVariable:
		return p.variable(t.Val), nil
	case TokenBracketL:
		return p.list()
	case TokenBraceL:
		return p.curlyBracketedTerm()
	case TokenDoubleQuoted:
		s := unDoubleQuote(t.Val)
		switch p.DoubleQuotes {
		case DoubleQuotesChars:
			return CharList(s), nil
		case DoubleQuotesAtom:
			return Atom(s), nil
		default:
			return CodeList(s), nil
		}
	default:
		p.backup()
	}

	return p.term0Atom(maxPriority)
}

func (p *Parser) term0Atom(maxPriority Integer) (Term, error) {
	a, err := p.name()
	if err != nil {
		return nil, err
	}

	if a == atomMinus {
		switch t := p.next(); t.Kind {
		case TokenInteger:
			return parseInteger(-1, t.Val)
		case TokenFloat:
			return parseFloat(-1, t.Val)
		default:
			p.backup()
		}
	}

	t, err := p.functionalNotation(a)
	if err != nil {
		return nil, err
	}

	// An operator as an atom is accepted only where it can't start an operator expression.
	if t, ok := t.(Atom); ok && p.ops.Defined(t) && p.startsTerm(p.peek()) {
		p.backup()
		return nil, p.unexpected()
	}

	if p.placeholder != "" && t == p.placeholder {
		if len(p.args) == 0 {
			return nil, errPlaceholder
		}
		t, p.args = p.args[0], p.args[1:]
	}

	return t, nil
}

func (p *Parser) variable(s string) Term {
	if s == "_" {
		return p.heap.NewVariable()
	}
	n := Atom(s)
	for i, pv := range p.Vars {
		if pv.Name == n {
			p.Vars[i].Count++
			return pv.Variable
		}
	}
	v := p.heap.NewVariable()
	p.Vars = append(p.Vars, ParsedVariable{Name: n, Variable: v, Count: 1})
	return v
}

func (p *Parser) openClose() (Term, error) {
	t, err := p.term(1200)
	if err != nil {
		return nil, err
	}
	if t := p.next(); t.Kind != TokenParenR {
		p.backup()
		return nil, p.unexpected()
	}
	return t, nil
}

func (p *Parser) name() (Atom, error) {
	switch t := p.next(); t.Kind {
	case TokenIdent, TokenGraphic:
		return Atom(t.Val), nil
	case TokenQuotedIdent:
		return Atom(unquote(t.Val)), nil
	case TokenDoubleQuoted:
		if p.DoubleQuotes == DoubleQuotesAtom {
			return Atom(unDoubleQuote(t.Val)), nil
		}
		p.backup()
		return "", p.unexpected()
	default:
		p.backup()
		return "", p.unexpected()
	}
}

func (p *Parser) list() (Term, error) {
	arg, err := p.arg()
	if err != nil {
		return nil, err
	}
	args := []Term{arg}
	for {
		switch t := p.next(); t.Kind {
		case TokenComma:
			arg, err := p.arg()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		case TokenBar:
			rest, err := p.arg()
			if err != nil {
				return nil, err
			}
			if t := p.next(); t.Kind != TokenBracketR {
				p.backup()
				return nil, p.unexpected()
			}
			return ListRest(rest, args...), nil
		case TokenBracketR:
			return List(args...), nil
		default:
			p.backup()
			return nil, p.unexpected()
		}
	}
}

func (p *Parser) curlyBracketedTerm() (Term, error) {
	t, err := p.term(1200)
	if err != nil {
		return nil, err
	}

	if t := p.next(); t.Kind != TokenBraceR {
		p.backup()
		return nil, p.unexpected()
	}

	return atomEmptyBlock.Apply(t), nil
}

func (p *Parser) functionalNotation(functor Atom) (Term, error) {
	t := p.next()
	if t.Kind != TokenParenL || t.Layout {
		p.backup()
		return functor, nil
	}

	arg, err := p.arg()
	if err != nil {
		return nil, err
	}
	args := []Term{arg}
	for {
		switch t := p.next(); t.Kind {
		case TokenComma:
			arg, err := p.arg()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		case TokenParenR:
			return functor.Apply(args...), nil
		default:
			p.backup()
			return nil, p.unexpected()
		}
	}
}

func (p *Parser) arg() (Term, error) {
	start := p.pos
	if a, err := p.name(); err == nil && p.ops.Defined(a) {
		// An operator atom alone as an argument.
		switch t := p.peek(); t.Kind {
		case TokenComma, TokenParenR, TokenBar, TokenBracketR:
			return a, nil
		}
	}
	p.pos = start
	return p.term(999)
}

// ParseNumber converts a text into a number. The text is an optionally signed number literal with optional layout
// before it.
func ParseNumber(s string) (Number, error) {
	l := NewLexer(strings.NewReader(s))
	t, err := l.Next()
	if err != nil {
		return nil, errNotANumber
	}

	var sign int64 = 1
	if t.Kind == TokenGraphic && t.Val == "-" {
		sign = -1
		if t, err = l.Next(); err != nil || t.Layout {
			return nil, errNotANumber
		}
	}

	var n Number
	switch t.Kind {
	case TokenInteger:
		n, err = parseInteger(sign, t.Val)
	case TokenFloat:
		n, err = parseFloat(sign, t.Val)
	default:
		return nil, errNotANumber
	}
	if err != nil {
		return nil, err
	}

	// No more runes after a number.
	if t, err := l.Next(); err != nil || t.Kind != TokenEOS || t.Layout {
		return nil, errNotANumber
	}
	return n, nil
}

type unexpectedTokenError struct {
	actual Token
}

func (e unexpectedTokenError) Error() string {
	if e.actual.Kind == TokenEOS {
		return "unexpected end of clause"
	}
	return fmt.Sprintf("unexpected token: %s at %s", e.actual, e.actual.Pos)
}
