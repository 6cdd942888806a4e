package engine

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd"
)

// Number is either Integer or Float.
type Number interface {
	Term
	number()
}

func (Integer) number() {}
func (Float) number()   {}

// Integer is a prolog integer.
type Integer int64

func (i Integer) String() string {
	return strconv.FormatInt(int64(i), 10)
}

// Float is a prolog floating-point number.
type Float float64

func (f Float) String() string {
	return formatFloat(float64(f))
}

// formatFloat writes f in the shortest decimal form which reads back as the same float.
// The result always has a fraction part so that it never reads back as an integer.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	d, err := new(apd.Decimal).SetFloat64(f)
	if err != nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	var sb strings.Builder
	if d.Negative {
		sb.WriteByte('-')
	}

	digits := d.Coeff.String()
	exp := int(d.Exponent)
	adjusted := len(digits) - 1 + exp

	switch {
	case adjusted >= -4 && adjusted < 15:
		switch {
		case exp >= 0:
			sb.WriteString(digits)
			sb.WriteString(strings.Repeat("0", exp))
			sb.WriteString(".0")
		case -exp < len(digits):
			sb.WriteString(digits[:len(digits)+exp])
			sb.WriteByte('.')
			sb.WriteString(digits[len(digits)+exp:])
		default:
			sb.WriteString("0.")
			sb.WriteString(strings.Repeat("0", -exp-len(digits)))
			sb.WriteString(digits)
		}
	default:
		sb.WriteByte(digits[0])
		sb.WriteByte('.')
		if len(digits) > 1 {
			sb.WriteString(digits[1:])
		} else {
			sb.WriteByte('0')
		}
		sb.WriteByte('e')
		if adjusted >= 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(strconv.Itoa(adjusted))
	}
	return sb.String()
}

// parseInteger converts an integer token into an Integer. It handles 0'c, 0b, 0o, and 0x notations.
func parseInteger(sign int64, s string) (Integer, error) {
	base := 10
	switch {
	case strings.HasPrefix(s, "0'"):
		s = s[2:]
		if s == "''" {
			s = "'"
		}
		s = quotedIdentEscapePattern.ReplaceAllStringFunc(s, unescape)
		return Integer(sign * int64([]rune(s)[0])), nil
	case strings.HasPrefix(s, "0b"):
		base = 2
		s = s[2:]
	case strings.HasPrefix(s, "0o"):
		base = 8
		s = s[2:]
	case strings.HasPrefix(s, "0x"):
		base = 16
		s = s[2:]
	}

	var i big.Int
	if _, ok := i.SetString(s, base); !ok {
		return 0, SyntaxError(errNotANumber, nil)
	}
	if sign < 0 {
		i.Neg(&i)
	}
	if !i.IsInt64() {
		if i.Sign() < 0 {
			return 0, RepresentationError(FlagMinInteger, nil)
		}
		return 0, RepresentationError(FlagMaxInteger, nil)
	}
	return Integer(i.Int64()), nil
}

// parseFloat converts a float token into a Float through an exact decimal.
func parseFloat(sign int64, s string) (Float, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return 0, SyntaxError(errNotANumber, nil)
	}
	if sign < 0 {
		d.Neg(d)
	}
	f, err := d.Float64()
	if err != nil || math.IsInf(f, 0) {
		return 0, EvaluationError(ExceptionalValueFloatOverflow, nil)
	}
	return Float(f), nil
}
