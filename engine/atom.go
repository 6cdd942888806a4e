package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	unquotedAtomPattern      = regexp.MustCompile(`\A[a-z][a-zA-Z0-9_]*\z`)
	graphicalAtomPattern     = regexp.MustCompile(`\A[#$&*+\-./:<=>?@^~\\]+\z`)
	quotedAtomEscapePattern  = regexp.MustCompile("[[:cntrl:]]|\\\\|'")
	quotedIdentEscapePattern = regexp.MustCompile("''|\\\\(?:\\n|[abfnrtv\\\\'\"`]|(?:x[\\da-fA-F]+|[0-7]+)\\\\)")
	doubleQuotedEscapePattern = regexp.MustCompile("\"\"|\\\\(?:\\n|[abfnrtv\\\\'\"`]|(?:x[\\da-fA-F]+|[0-7]+)\\\\)")
)

// Well-known atoms.
const (
	atomEmptyList  = Atom("[]")
	atomEmptyBlock = Atom("{}")
	atomDot        = Atom(".")
	atomTrue       = Atom("true")
	atomFalse      = Atom("false")
	atomFail       = Atom("fail")
	atomIf         = Atom(":-")
	atomQuery      = Atom("?-")
	atomDCG        = Atom("-->")
	atomComma      = Atom(",")
	atomSemicolon  = Atom(";")
	atomBar        = Atom("|")
	atomThen       = Atom("->")
	atomSoftThen   = Atom("*->")
	atomCut        = Atom("!")
	atomNegation   = Atom(`\+`)
	atomNot        = Atom("not")
	atomCall       = Atom("call")
	atomSlash      = Atom("/")
	atomMinus      = Atom("-")
	atomPlus       = Atom("+")
	atomCaret      = Atom("^")
	atomEqual      = Atom("=")
	atomLess       = Atom("<")
	atomGreater    = Atom(">")
	atomError      = Atom("error")
	atomEndOfFile  = Atom("end_of_file")
	atomUser       = Atom("user")
	atomOn         = Atom("on")
	atomOff        = Atom("off")
	atomVar        = Atom("$VAR")
)

// Atom is a prolog atom.
type Atom string

func (a Atom) String() string {
	return termString(a)
}

// Apply returns a Compound which Functor is the Atom and Args are the arguments. If the arguments are empty,
// then returns itself.
func (a Atom) Apply(args ...Term) Term {
	if len(args) == 0 {
		return a
	}
	return &Compound{
		Functor: a,
		Args:    args,
	}
}

// needsQuote reports whether a must be quoted to be read back as the same atom.
func (a Atom) needsQuote() bool {
	switch {
	case a == atomDot:
		return true
	case a == atomEmptyList, a == atomEmptyBlock, a == atomCut, a == atomSemicolon:
		return false
	case unquotedAtomPattern.MatchString(string(a)):
		return false
	case graphicalAtomPattern.MatchString(string(a)):
		return false
	default:
		return true
	}
}

func quote(s string) string {
	return fmt.Sprintf("'%s'", quotedAtomEscapePattern.ReplaceAllStringFunc(s, quotedIdentEscape))
}

func quotedIdentEscape(s string) string {
	switch s {
	case "\a":
		return `\a`
	case "\b":
		return `\b`
	case "\f":
		return `\f`
	case "\n":
		return `\n`
	case "\r":
		return `\r`
	case "\t":
		return `\t`
	case "\v":
		return `\v`
	case `\`:
		return `\\`
	case `'`:
		return `\'`
	default:
		var ret []string
		for _, r := range s {
			ret = append(ret, fmt.Sprintf(`\x%x\`, r))
		}
		return strings.Join(ret, "")
	}
}

func unquote(s string) string {
	return quotedIdentEscapePattern.ReplaceAllStringFunc(s[1:len(s)-1], unescape)
}

func unDoubleQuote(s string) string {
	return doubleQuotedEscapePattern.ReplaceAllStringFunc(s[1:len(s)-1], unescape)
}

func unescape(s string) string {
	switch s {
	case "''":
		return "'"
	case `""`:
		return `"`
	case "\\\n":
		return ""
	case `\a`:
		return "\a"
	case `\b`:
		return "\b"
	case `\f`:
		return "\f"
	case `\n`:
		return "\n"
	case `\r`:
		return "\r"
	case `\t`:
		return "\t"
	case `\v`:
		return "\v"
	case `\\`:
		return `\`
	case `\'`:
		return `'`
	case `\"`:
		return `"`
	case "\\`":
		return "`"
	default: // `\x23\` or `\23\`
		s = s[1 : len(s)-1] // `x23` or `23`
		base := 8

		if s[0] == 'x' {
			s = s[1:]
			base = 16
		}

		r, _ := strconv.ParseInt(s, base, 4*8) // rune is up to 4 bytes
		return string(rune(r))
	}
}

// CharList returns a list of single-character atoms of s.
func CharList(s string) Term {
	rs := []rune(s)
	ts := make([]Term, len(rs))
	for i, r := range rs {
		ts[i] = Atom(r)
	}
	return List(ts...)
}

// CodeList returns a list of character codes of s.
func CodeList(s string) Term {
	rs := []rune(s)
	ts := make([]Term, len(rs))
	for i, r := range rs {
		ts[i] = Integer(r)
	}
	return List(ts...)
}
