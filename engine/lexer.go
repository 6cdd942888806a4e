package engine

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/logicbase/prolog/internal/ring"
)

// ErrInsufficient represents an error which is raised when the given input is insufficient for a term.
var ErrInsufficient = errors.New("insufficient input")

// Position is a location in a source text. Line and Column start at 1.
type Position struct {
	Line, Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Lexer turns runes into tokens.
type Lexer struct {
	input  *ring.RuneReader
	tokens []Token
	layout bool
	start  Position
	last   Position
	eof    bool
}

// NewLexer creates a lexer from an input.
func NewLexer(input io.RuneReader) *Lexer {
	return &Lexer{input: ring.NewRuneReader(input, 4)}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.layout = false
	state := l.init
	for state != nil && len(l.tokens) == 0 {
		r, err := l.next()
		if err != nil {
			return Token{}, err
		}
		state, err = state(r)
		if err != nil {
			return Token{}, fmt.Errorf("%w at %s", err, l.last)
		}
	}

	if len(l.tokens) > 0 {
		var t Token
		t, l.tokens = l.tokens[0], l.tokens[1:]
		return t, nil
	}

	return Token{}, errors.New("no match")
}

// Position returns the position of the rune which will be read next.
func (l *Lexer) Position() Position {
	p := l.input.Position()
	return Position{Line: p.Line, Column: p.Column}
}

const etx = 0x2

func (l *Lexer) next() (rune, error) {
	l.last = l.Position()
	r, _, err := l.input.ReadRune()
	switch {
	case err == nil:
		l.eof = false
		return r, nil
	case errors.Is(err, io.EOF):
		l.eof = true
		return etx, nil
	default:
		return 0, err
	}
}

// backup puts back the last rune read. The end of input is not buffered so reading it again hits the end again.
func (l *Lexer) backup() {
	if l.eof {
		l.eof = false
		return
	}
	_ = l.input.UnreadRune()
}

func (l *Lexer) emit(t Token) {
	t.Layout = l.layout
	t.Pos = l.start
	l.tokens = append(l.tokens, t)
	l.layout = false
}

// Token is a smallest meaningful unit of prolog program.
type Token struct {
	Kind TokenKind
	Val  string

	// Layout reports whether the token is preceded by layout text or comments.
	Layout bool
	Pos    Position
}

func (t Token) String() string {
	return fmt.Sprintf("<%s %s>", t.Kind, t.Val)
}

// TokenKind is a type of Token.
type TokenKind byte

const (
	// TokenEOS represents an end of token stream.
	TokenEOS TokenKind = iota

	// TokenVariable represents a variable token.
	TokenVariable

	// TokenFloat represents a floating-point token.
	TokenFloat

	// TokenInteger represents an integer token.
	TokenInteger

	// TokenIdent represents an identifier token.
	TokenIdent

	// TokenQuotedIdent represents a quoted identifier token.
	TokenQuotedIdent

	// TokenGraphic represents a graphical token.
	TokenGraphic

	// TokenComma represents a comma.
	TokenComma

	// TokenPeriod represents a period.
	TokenPeriod

	// TokenBar represents a bar.
	TokenBar

	// TokenParenL represents an open parenthesis.
	TokenParenL

	// TokenParenR represents a close parenthesis.
	TokenParenR

	// TokenBracketL represents an open bracket.
	TokenBracketL

	// TokenBracketR represents a close bracket.
	TokenBracketR

	// TokenBraceL represents an open brace.
	TokenBraceL

	// TokenBraceR represents a close brace.
	TokenBraceR

	// TokenDoubleQuoted represents a double-quoted string.
	TokenDoubleQuoted

	tokenKindLen
)

func (k TokenKind) String() string {
	return [tokenKindLen]string{
		TokenEOS:          "eos",
		TokenVariable:     "variable",
		TokenFloat:        "float",
		TokenInteger:      "integer",
		TokenIdent:        "ident",
		TokenQuotedIdent:  "quoted ident",
		TokenGraphic:      "graphical",
		TokenComma:        "comma",
		TokenPeriod:       "period",
		TokenBar:          "bar",
		TokenParenL:       "paren L",
		TokenParenR:       "paren R",
		TokenBracketL:     "bracket L",
		TokenBracketR:     "bracket R",
		TokenBraceL:       "brace L",
		TokenBraceR:       "brace R",
		TokenDoubleQuoted: "double quoted",
	}[k]
}

type lexState func(rune) (lexState, error)

func (l *Lexer) init(r rune) (lexState, error) {
	l.start = l.last
	switch {
	case r == etx:
		l.emit(Token{Kind: TokenEOS})
		return nil, nil
	case unicode.IsSpace(r):
		l.layout = true
		return l.init, nil
	case r == '%':
		l.layout = true
		return l.singleLineComment(l.init)
	case r == '/':
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.multiLineCommentBegin(&b, l.init)
	case r == '(':
		l.emit(Token{Kind: TokenParenL, Val: string(r)})
		return nil, nil
	case r == ')':
		l.emit(Token{Kind: TokenParenR, Val: string(r)})
		return nil, nil
	case r == ',':
		l.emit(Token{Kind: TokenComma, Val: string(r)})
		return nil, nil
	case r == '.':
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.period(&b)
	case r == '|':
		return l.bar, nil
	case r == ']':
		l.emit(Token{Kind: TokenBracketR, Val: string(r)})
		return nil, nil
	case r == '}':
		l.emit(Token{Kind: TokenBraceR, Val: string(r)})
		return nil, nil
	case unicode.IsNumber(r):
		l.backup()
		return l.number, nil
	case unicode.IsUpper(r), r == '_':
		l.backup()
		return l.variable, nil
	case r == '"':
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.doubleQuoted(&b)
	default:
		l.backup()
		return l.ident, nil
	}
}

func (l *Lexer) period(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case r == etx, unicode.IsSpace(r), r == '%':
			l.backup()
			l.emit(Token{Kind: TokenPeriod, Val: b.String()})
			return nil, nil
		default:
			l.backup()
			return l.graphic(b)
		}
	}, nil
}

func (l *Lexer) bar(r rune) (lexState, error) {
	switch {
	case r == '|':
		l.emit(Token{Kind: TokenIdent, Val: "||"})
		return nil, nil
	default:
		l.backup()
		l.emit(Token{Kind: TokenBar, Val: "|"})
		return nil, nil
	}
}

func (l *Lexer) ident(r rune) (lexState, error) {
	switch {
	case unicode.IsLower(r):
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.normalAtom(&b)
	case isGraphic(r):
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.graphic(&b)
	case r == ';', r == '!':
		l.emit(Token{Kind: TokenIdent, Val: string(r)})
		return nil, nil
	case r == '[':
		return l.squareBracket, nil
	case r == '{':
		return l.curlyBracket, nil
	case r == '\'':
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.quotedIdent(&b)
	default:
		return nil, UnexpectedRuneError{rune: r}
	}
}

func (l *Lexer) normalAtom(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '_':
			_, _ = b.WriteRune(r)
			return l.normalAtom(b)
		default:
			l.backup()
			l.emit(Token{Kind: TokenIdent, Val: b.String()})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) quotedIdent(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch r {
		case etx:
			return nil, ErrInsufficient
		case '\'':
			_, _ = b.WriteRune(r)
			return l.quotedIdentQuote(b)
		case '\\':
			_, _ = b.WriteRune(r)
			return l.quotedIdentSlash(b)
		default:
			_, _ = b.WriteRune(r)
			return l.quotedIdent(b)
		}
	}, nil
}

func (l *Lexer) quotedIdentQuote(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch r {
		case '\'':
			_, _ = b.WriteRune(r)
			return l.quotedIdent(b)
		default:
			l.backup()
			l.emit(Token{Kind: TokenQuotedIdent, Val: b.String()})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) quotedIdentSlash(b *strings.Builder) (lexState, error) {
	return l.escape(b, l.quotedIdent), nil
}

// escape reads an escape sequence after a backslash and then continues with ctx.
func (l *Lexer) escape(b *strings.Builder, ctx func(*strings.Builder) (lexState, error)) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case r == etx:
			return nil, ErrInsufficient
		case r == 'x':
			_, _ = b.WriteRune(r)
			return l.escapeDigits(b, isHex, ctx), nil
		case isOctal(r):
			_, _ = b.WriteRune(r)
			return l.escapeDigits(b, isOctal, ctx), nil
		case strings.ContainsRune("abfnrtv\\'\"`\n", r):
			_, _ = b.WriteRune(r)
			return ctx(b)
		default:
			return nil, UnexpectedRuneError{rune: r}
		}
	}
}

func (l *Lexer) escapeDigits(b *strings.Builder, digit func(rune) bool, ctx func(*strings.Builder) (lexState, error)) lexState {
	return func(r rune) (lexState, error) {
		switch {
		case r == etx:
			return nil, ErrInsufficient
		case digit(r):
			_, _ = b.WriteRune(r)
			return l.escapeDigits(b, digit, ctx), nil
		case r == '\\':
			_, _ = b.WriteRune(r)
			return ctx(b)
		default:
			return nil, UnexpectedRuneError{rune: r}
		}
	}
}

func (l *Lexer) squareBracket(r rune) (lexState, error) {
	switch {
	case r == ']':
		l.emit(Token{Kind: TokenIdent, Val: "[]"})
		return nil, nil
	default:
		l.backup()
		l.emit(Token{Kind: TokenBracketL, Val: "["})
		return nil, nil
	}
}

func (l *Lexer) curlyBracket(r rune) (lexState, error) {
	switch {
	case r == '}':
		l.emit(Token{Kind: TokenIdent, Val: "{}"})
		return nil, nil
	default:
		l.backup()
		l.emit(Token{Kind: TokenBraceL, Val: "{"})
		return nil, nil
	}
}

func (l *Lexer) floatMantissa(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r):
			_, _ = b.WriteRune(r)
			return l.floatMantissa(b)
		case r == 'E' || r == 'e':
			return l.floatE(b)
		default:
			l.backup()
			l.emit(Token{Kind: TokenFloat, Val: b.String()})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) floatE(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r):
			_, _ = b.WriteRune('e')
			_, _ = b.WriteRune(r)
			return l.floatExponent(b)
		case r == '+', r == '-':
			return l.floatESign(b, r)
		default:
			// 1.0e is 1.0 followed by e.
			l.backup()
			l.emit(Token{Kind: TokenFloat, Val: b.String()})
			l.emit(Token{Kind: TokenIdent, Val: "e"})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) floatESign(b *strings.Builder, sign rune) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r):
			_, _ = b.WriteRune('e')
			_, _ = b.WriteRune(sign)
			_, _ = b.WriteRune(r)
			return l.floatExponent(b)
		default:
			return nil, UnexpectedRuneError{rune: r}
		}
	}, nil
}

func (l *Lexer) floatExponent(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r):
			_, _ = b.WriteRune(r)
			return l.floatExponent(b)
		default:
			l.backup()
			l.emit(Token{Kind: TokenFloat, Val: b.String()})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) integerZero(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case r == 'o':
			_, _ = b.WriteRune(r)
			return l.integerDigits(b, isOctal)
		case r == 'x':
			_, _ = b.WriteRune(r)
			return l.integerDigits(b, isHex)
		case r == 'b':
			_, _ = b.WriteRune(r)
			return l.integerDigits(b, isBinary)
		case r == '\'':
			_, _ = b.WriteRune(r)
			return l.integerChar(b)
		case unicode.IsDigit(r):
			_, _ = b.WriteRune(r)
			return l.integerDecimal(b)
		case r == '.':
			return l.integerDot(b)
		default:
			l.backup()
			l.emit(Token{Kind: TokenInteger, Val: b.String()})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) integerDigits(b *strings.Builder, digit func(rune) bool) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case digit(r):
			_, _ = b.WriteRune(r)
			return l.integerDigits(b, digit)
		default:
			l.backup()
			l.emit(Token{Kind: TokenInteger, Val: b.String()})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) integerChar(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch r {
		case etx:
			return nil, ErrInsufficient
		case '\\':
			_, _ = b.WriteRune(r)
			return l.escape(b, l.integerCharEnd), nil
		case '\'':
			_, _ = b.WriteRune(r)
			return l.integerCharQuote(b)
		default:
			_, _ = b.WriteRune(r)
			return l.integerCharEnd(b)
		}
	}, nil
}

func (l *Lexer) integerCharQuote(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		if r == '\'' {
			_, _ = b.WriteRune(r)
		} else {
			l.backup()
		}
		l.emit(Token{Kind: TokenInteger, Val: b.String()})
		return nil, nil
	}, nil
}

func (l *Lexer) integerCharEnd(b *strings.Builder) (lexState, error) {
	l.emit(Token{Kind: TokenInteger, Val: b.String()})
	return nil, nil
}

func (l *Lexer) integerDecimal(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r):
			_, _ = b.WriteRune(r)
			return l.integerDecimal(b)
		case r == '.':
			return l.integerDot(b)
		default:
			l.backup()
			l.emit(Token{Kind: TokenInteger, Val: b.String()})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) integerDot(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsDigit(r):
			_, _ = b.WriteRune('.')
			_, _ = b.WriteRune(r)
			return l.floatMantissa(b)
		default:
			// Puts back the rune and the dot so that the dot is read as a period or a graphic token.
			l.backup()
			l.backup()
			l.emit(Token{Kind: TokenInteger, Val: b.String()})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) number(r rune) (lexState, error) {
	switch {
	case r == '0':
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.integerZero(&b)
	case unicode.IsDigit(r):
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.integerDecimal(&b)
	default:
		return nil, UnexpectedRuneError{rune: r}
	}
}

func (l *Lexer) variable(r rune) (lexState, error) {
	switch {
	case unicode.IsUpper(r), r == '_':
		var b strings.Builder
		_, _ = b.WriteRune(r)
		return l.variableName(&b)
	default:
		return nil, UnexpectedRuneError{rune: r}
	}
}

func (l *Lexer) variableName(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '_':
			_, _ = b.WriteRune(r)
			return l.variableName(b)
		default:
			l.backup()
			l.emit(Token{Kind: TokenVariable, Val: b.String()})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) graphic(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case isGraphic(r):
			_, _ = b.WriteRune(r)
			return l.graphic(b)
		default:
			l.backup()
			l.emit(Token{Kind: TokenGraphic, Val: b.String()})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) singleLineComment(ctx lexState) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch r {
		case etx:
			l.backup()
			return ctx, nil
		case '\n':
			return ctx, nil
		default:
			return l.singleLineComment(ctx)
		}
	}, nil
}

func (l *Lexer) multiLineCommentBegin(b *strings.Builder, ctx lexState) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch {
		case r == '*':
			l.layout = true
			return l.multiLineCommentBody(ctx)
		case isGraphic(r):
			_, _ = b.WriteRune(r)
			return l.graphic(b)
		default:
			l.backup()
			l.emit(Token{Kind: TokenGraphic, Val: "/"})
			return nil, nil
		}
	}, nil
}

func (l *Lexer) multiLineCommentBody(ctx lexState) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch r {
		case etx:
			return nil, ErrInsufficient
		case '*':
			return l.multiLineCommentEnd(ctx)
		default:
			return l.multiLineCommentBody(ctx)
		}
	}, nil
}

func (l *Lexer) multiLineCommentEnd(ctx lexState) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch r {
		case etx:
			return nil, ErrInsufficient
		case '/':
			return ctx, nil
		case '*':
			return l.multiLineCommentEnd(ctx)
		default:
			return l.multiLineCommentBody(ctx)
		}
	}, nil
}

func (l *Lexer) doubleQuoted(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch r {
		case etx:
			return nil, ErrInsufficient
		case '"':
			_, _ = b.WriteRune(r)
			return l.doubleQuotedDoubleQuote(b)
		case '\\':
			_, _ = b.WriteRune(r)
			return l.escape(b, l.doubleQuoted), nil
		default:
			_, _ = b.WriteRune(r)
			return l.doubleQuoted(b)
		}
	}, nil
}

func (l *Lexer) doubleQuotedDoubleQuote(b *strings.Builder) (lexState, error) {
	return func(r rune) (lexState, error) {
		switch r {
		case '"':
			_, _ = b.WriteRune(r)
			return l.doubleQuoted(b)
		default:
			l.backup()
			l.emit(Token{Kind: TokenDoubleQuoted, Val: b.String()})
			return nil, nil
		}
	}, nil
}

func isOctal(r rune) bool {
	return strings.ContainsRune("01234567", r)
}

func isHex(r rune) bool {
	return strings.ContainsRune("0123456789ABCDEF", unicode.ToUpper(r))
}

func isBinary(r rune) bool {
	return r == '0' || r == '1'
}

func isGraphic(r rune) bool {
	return strings.ContainsRune("#$&*+-./:<=>?@^~\\", r)
}

// UnexpectedRuneError represents an error which is raised when the given input contains an unexpected rune.
type UnexpectedRuneError struct {
	rune rune
}

func (e UnexpectedRuneError) Error() string {
	return fmt.Sprintf("unexpected char: %s", string(e.rune))
}
