package engine

import (
	"math"
	"math/bits"
	"math/rand/v2"
)

type (
	unaryFunction  func(x Number, h *Heap) (Number, error)
	binaryFunction func(x, y Number, h *Heap) (Number, error)
)

var constants = map[Atom]Number{
	"pi":      Float(math.Pi),
	"e":       Float(math.E),
	"epsilon": Float(math.Nextafter(1, 2) - 1),
	"inf":     Float(math.Inf(1)),
	"nan":     Float(math.NaN()),
}

var unaryFunctions = map[Atom]unaryFunction{
	"+":                     func(x Number, _ *Heap) (Number, error) { return x, nil },
	"-":                     neg,
	"abs":                   unaryNumber(func(i Integer) (Integer, bool) { return i.abs() }, math.Abs),
	"sign":                  unaryNumber(func(i Integer) (Integer, bool) { return Integer(sgn(int64(i))), true }, sgnf),
	"sqrt":                  unaryFloat(math.Sqrt),
	"sin":                   unaryFloat(math.Sin),
	"cos":                   unaryFloat(math.Cos),
	"tan":                   unaryFloat(math.Tan),
	"asin":                  unaryFloat(math.Asin),
	"acos":                  unaryFloat(math.Acos),
	"atan":                  unaryFloat(math.Atan),
	"exp":                   unaryFloat(math.Exp),
	"log":                   logarithm,
	"float":                 unaryFloat(func(f float64) float64 { return f }),
	"integer":               toInteger(math.Round),
	"float_integer_part":    toInteger(math.Trunc),
	"float_fractional_part": fractionalPart,
	"truncate":              toInteger(math.Trunc),
	"round":                 toInteger(math.Round),
	"ceiling":               toInteger(math.Ceil),
	"floor":                 toInteger(math.Floor),
	`\`:                     unaryInteger(func(i int64) int64 { return ^i }),
	"msb":                   msb,
	"random":                random,
}

var binaryFunctions = map[Atom]binaryFunction{
	"+":        binaryNumber(add, func(x, y float64) float64 { return x + y }),
	"-":        binaryNumber(sub, func(x, y float64) float64 { return x - y }),
	"*":        binaryNumber(mul, func(x, y float64) float64 { return x * y }),
	"/":        div,
	"//":       intDiv(func(i, j int64) int64 { return i / j }),
	"div":      intDiv(floorDiv),
	"rem":      intDiv(func(i, j int64) int64 { return i % j }),
	"mod":      intDiv(func(i, j int64) int64 { return (i%j + j) % j }),
	"min":      minimum,
	"max":      maximum,
	"**":       binaryFloat(math.Pow),
	"^":        power,
	"atan":     binaryFloat(math.Atan2),
	"atan2":    binaryFloat(math.Atan2),
	"copysign": binaryFloat(math.Copysign),
	"log":      binaryFloat(func(b, x float64) float64 { return math.Log(x) / math.Log(b) }),
	">>":       binaryInteger(func(i, j int64) int64 { return i >> j }),
	"<<":       binaryInteger(func(i, j int64) int64 { return i << j }),
	`/\`:       binaryInteger(func(i, j int64) int64 { return i & j }),
	`\/`:       binaryInteger(func(i, j int64) int64 { return i | j }),
	"xor":      binaryInteger(func(i, j int64) int64 { return i ^ j }),
	"gcd":      binaryInteger(gcd),
}

// Eval evaluates an arithmetic expression.
func Eval(h *Heap, expression Term) (Number, error) {
	switch t := h.Resolve(expression).(type) {
	case Variable:
		return nil, InstantiationError(h)
	case Integer:
		return t, nil
	case Float:
		return t, nil
	case Atom:
		if c, ok := constants[t]; ok {
			return c, nil
		}
		return nil, TypeError(ValidTypeEvaluable, ProcedureIndicator{Name: t}.Term(), h)
	case *Compound:
		switch len(t.Args) {
		case 1:
			f, ok := unaryFunctions[t.Functor]
			if !ok {
				break
			}
			x, err := Eval(h, t.Args[0])
			if err != nil {
				return nil, err
			}
			return f(x, h)
		case 2:
			if t.isList() {
				if h.Resolve(t.Args[1]) != atomEmptyList {
					return nil, TypeError(ValidTypeEvaluable, t.PI().Term(), h)
				}
				return Eval(h, t.Args[0])
			}
			f, ok := binaryFunctions[t.Functor]
			if !ok {
				break
			}
			x, err := Eval(h, t.Args[0])
			if err != nil {
				return nil, err
			}
			y, err := Eval(h, t.Args[1])
			if err != nil {
				return nil, err
			}
			return f(x, y, h)
		}
		return nil, TypeError(ValidTypeEvaluable, t.PI().Term(), h)
	default:
		return nil, TypeError(ValidTypeEvaluable, t, h)
	}
}

func (e *Engine) eval(t Term) (Number, error) {
	return Eval(e.heap, t)
}

func checkFloat(f float64, h *Heap) (Number, error) {
	switch {
	case math.IsInf(f, 0):
		return nil, EvaluationError(ExceptionalValueFloatOverflow, h)
	case math.IsNaN(f):
		return nil, EvaluationError(ExceptionalValueUndefined, h)
	default:
		return Float(f), nil
	}
}

func toFloat(n Number) float64 {
	switch n := n.(type) {
	case Integer:
		return float64(n)
	case Float:
		return float64(n)
	default:
		return math.NaN()
	}
}

func (i Integer) abs() (Integer, bool) {
	if i == math.MinInt64 {
		return 0, false
	}
	if i < 0 {
		return -i, true
	}
	return i, true
}

func sgn(i int64) int64 {
	return i>>63 | int64(uint64(-i)>>63)
}

func sgnf(f float64) float64 {
	switch {
	case f < 0:
		return -1
	case f == 0:
		return 0
	case f > 0:
		return 1
	default: // NaN
		return f
	}
}

func neg(x Number, h *Heap) (Number, error) {
	switch x := x.(type) {
	case Integer:
		if x == math.MinInt64 {
			return nil, EvaluationError(ExceptionalValueIntOverflow, h)
		}
		return -x, nil
	default:
		return -x.(Float), nil
	}
}

func add(i, j Integer) (Integer, bool) {
	r := i + j
	return r, (r > i) == (j > 0)
}

func sub(i, j Integer) (Integer, bool) {
	r := i - j
	return r, (r < i) == (j > 0)
}

func mul(i, j Integer) (Integer, bool) {
	if i == 0 || j == 0 {
		return 0, true
	}
	r := i * j
	return r, r/j == i && !(i == -1 && j == math.MinInt64) && !(j == -1 && i == math.MinInt64)
}

func floorDiv(i, j int64) int64 {
	q := i / j
	if (i%j != 0) && ((i < 0) != (j < 0)) {
		q--
	}
	return q
}

func gcd(i, j int64) int64 {
	if i < 0 {
		i = -i
	}
	if j < 0 {
		j = -j
	}
	for j != 0 {
		i, j = j, i%j
	}
	return i
}

func unaryInteger(f func(i int64) int64) unaryFunction {
	return func(x Number, h *Heap) (Number, error) {
		i, ok := x.(Integer)
		if !ok {
			return nil, TypeError(ValidTypeInteger, x, h)
		}
		return Integer(f(int64(i))), nil
	}
}

func unaryFloat(f func(float64) float64) unaryFunction {
	return func(x Number, h *Heap) (Number, error) {
		return checkFloat(f(toFloat(x)), h)
	}
}

func unaryNumber(fi func(Integer) (Integer, bool), ff func(float64) float64) unaryFunction {
	return func(x Number, h *Heap) (Number, error) {
		switch x := x.(type) {
		case Integer:
			r, ok := fi(x)
			if !ok {
				return nil, EvaluationError(ExceptionalValueIntOverflow, h)
			}
			return r, nil
		default:
			return checkFloat(ff(toFloat(x)), h)
		}
	}
}

func toInteger(f func(float64) float64) unaryFunction {
	return func(x Number, h *Heap) (Number, error) {
		switch x := x.(type) {
		case Integer:
			return x, nil
		default:
			r := f(toFloat(x))
			if math.IsNaN(r) || r < math.MinInt64 || r >= math.MaxInt64 {
				return nil, EvaluationError(ExceptionalValueIntOverflow, h)
			}
			return Integer(r), nil
		}
	}
}

func fractionalPart(x Number, h *Heap) (Number, error) {
	switch x := x.(type) {
	case Integer:
		return Float(0), nil
	default:
		f := toFloat(x)
		return checkFloat(f-math.Trunc(f), h)
	}
}

func logarithm(x Number, h *Heap) (Number, error) {
	f := toFloat(x)
	if f <= 0 {
		return nil, EvaluationError(ExceptionalValueUndefined, h)
	}
	return checkFloat(math.Log(f), h)
}

func msb(x Number, h *Heap) (Number, error) {
	i, ok := x.(Integer)
	if !ok {
		return nil, TypeError(ValidTypeInteger, x, h)
	}
	if i <= 0 {
		return nil, EvaluationError(ExceptionalValueUndefined, h)
	}
	return Integer(bits.Len64(uint64(i)) - 1), nil
}

func random(x Number, h *Heap) (Number, error) {
	i, ok := x.(Integer)
	if !ok {
		return nil, TypeError(ValidTypeInteger, x, h)
	}
	if i <= 0 {
		return nil, EvaluationError(ExceptionalValueUndefined, h)
	}
	return Integer(rand.Int64N(int64(i))), nil
}

func binaryNumber(fi func(Integer, Integer) (Integer, bool), ff func(float64, float64) float64) binaryFunction {
	return func(x, y Number, h *Heap) (Number, error) {
		i, ok1 := x.(Integer)
		j, ok2 := y.(Integer)
		if ok1 && ok2 {
			r, ok := fi(i, j)
			if !ok {
				return nil, EvaluationError(ExceptionalValueIntOverflow, h)
			}
			return r, nil
		}
		return checkFloat(ff(toFloat(x), toFloat(y)), h)
	}
}

func binaryFloat(f func(float64, float64) float64) binaryFunction {
	return func(x, y Number, h *Heap) (Number, error) {
		return checkFloat(f(toFloat(x), toFloat(y)), h)
	}
}

func binaryInteger(f func(int64, int64) int64) binaryFunction {
	return func(x, y Number, h *Heap) (Number, error) {
		i, ok := x.(Integer)
		if !ok {
			return nil, TypeError(ValidTypeInteger, x, h)
		}
		j, ok := y.(Integer)
		if !ok {
			return nil, TypeError(ValidTypeInteger, y, h)
		}
		return Integer(f(int64(i), int64(j))), nil
	}
}

func intDiv(f func(int64, int64) int64) binaryFunction {
	return func(x, y Number, h *Heap) (Number, error) {
		i, ok := x.(Integer)
		if !ok {
			return nil, TypeError(ValidTypeInteger, x, h)
		}
		j, ok := y.(Integer)
		if !ok {
			return nil, TypeError(ValidTypeInteger, y, h)
		}
		switch {
		case j == 0:
			return nil, EvaluationError(ExceptionalValueZeroDivisor, h)
		case i == math.MinInt64 && j == -1:
			return nil, EvaluationError(ExceptionalValueIntOverflow, h)
		}
		return Integer(f(int64(i), int64(j))), nil
	}
}

// div returns an integer if both operands are integers and the quotient is exact. Otherwise, a float.
func div(x, y Number, h *Heap) (Number, error) {
	i, ok1 := x.(Integer)
	j, ok2 := y.(Integer)
	switch {
	case ok2 && j == 0, !ok2 && toFloat(y) == 0:
		return nil, EvaluationError(ExceptionalValueZeroDivisor, h)
	case ok1 && ok2:
		if i == math.MinInt64 && j == -1 {
			return nil, EvaluationError(ExceptionalValueIntOverflow, h)
		}
		if i%j == 0 {
			return i / j, nil
		}
	}
	return checkFloat(toFloat(x)/toFloat(y), h)
}

func minimum(x, y Number, _ *Heap) (Number, error) {
	if compareNumbers(y, x) < 0 {
		return y, nil
	}
	return x, nil
}

func maximum(x, y Number, _ *Heap) (Number, error) {
	if compareNumbers(y, x) > 0 {
		return y, nil
	}
	return x, nil
}

func power(x, y Number, h *Heap) (Number, error) {
	i, ok1 := x.(Integer)
	j, ok2 := y.(Integer)
	if !ok1 || !ok2 {
		return checkFloat(math.Pow(toFloat(x), toFloat(y)), h)
	}
	if j < 0 {
		switch i {
		case 1:
			return Integer(1), nil
		case -1:
			if j%2 == 0 {
				return Integer(1), nil
			}
			return Integer(-1), nil
		case 0:
			return nil, EvaluationError(ExceptionalValueZeroDivisor, h)
		default:
			return nil, TypeError(ValidTypeFloat, i, h)
		}
	}
	r := Integer(1)
	for b := i; j > 0; j >>= 1 {
		if j&1 == 1 {
			var ok bool
			if r, ok = mul(r, b); !ok {
				return nil, EvaluationError(ExceptionalValueIntOverflow, h)
			}
		}
		if j > 1 {
			var ok bool
			if b, ok = mul(b, b); !ok {
				return nil, EvaluationError(ExceptionalValueIntOverflow, h)
			}
		}
	}
	return r, nil
}

// Is is is/2.
func Is(e *Engine, args []Term) (bool, error) {
	v, err := e.eval(args[1])
	if err != nil {
		return false, err
	}
	return e.heap.Unify(args[0], v), nil
}

func (e *Engine) compare(lhs, rhs Term, f func(int) bool) (bool, error) {
	x, err := e.eval(lhs)
	if err != nil {
		return false, err
	}
	y, err := e.eval(rhs)
	if err != nil {
		return false, err
	}
	return f(arithmeticCompare(x, y)), nil
}

// arithmeticCompare compares numbers by value. Unlike the standard order, 1 and 1.0 are equal.
func arithmeticCompare(x, y Number) int {
	i, ok1 := x.(Integer)
	j, ok2 := y.(Integer)
	if ok1 && ok2 {
		switch {
		case i < j:
			return -1
		case i > j:
			return 1
		default:
			return 0
		}
	}
	f, g := toFloat(x), toFloat(y)
	switch {
	case f < g:
		return -1
	case f > g:
		return 1
	default:
		return 0
	}
}

// Equal is =:=/2.
func Equal(e *Engine, args []Term) (bool, error) {
	return e.compare(args[0], args[1], func(c int) bool { return c == 0 })
}

// NotEqual is =\=/2.
func NotEqual(e *Engine, args []Term) (bool, error) {
	return e.compare(args[0], args[1], func(c int) bool { return c != 0 })
}

// LessThan is </2.
func LessThan(e *Engine, args []Term) (bool, error) {
	return e.compare(args[0], args[1], func(c int) bool { return c < 0 })
}

// GreaterThan is >/2.
func GreaterThan(e *Engine, args []Term) (bool, error) {
	return e.compare(args[0], args[1], func(c int) bool { return c > 0 })
}

// LessThanOrEqual is =</2.
func LessThanOrEqual(e *Engine, args []Term) (bool, error) {
	return e.compare(args[0], args[1], func(c int) bool { return c <= 0 })
}

// GreaterThanOrEqual is >=/2.
func GreaterThanOrEqual(e *Engine, args []Term) (bool, error) {
	return e.compare(args[0], args[1], func(c int) bool { return c >= 0 })
}

// Succ is succ/2.
func Succ(e *Engine, args []Term) (bool, error) {
	h := e.heap
	switch x := h.Resolve(args[0]).(type) {
	case Variable:
		switch y := h.Resolve(args[1]).(type) {
		case Variable:
			return false, InstantiationError(h)
		case Integer:
			switch {
			case y < 0:
				return false, TypeError(ValidTypeInteger, y, h)
			case y == 0:
				return false, nil
			}
			return h.Unify(x, y-1), nil
		default:
			return false, TypeError(ValidTypeInteger, y, h)
		}
	case Integer:
		if x < 0 {
			return false, TypeError(ValidTypeInteger, x, h)
		}
		r, ok := add(x, 1)
		if !ok {
			return false, EvaluationError(ExceptionalValueIntOverflow, h)
		}
		return h.Unify(args[1], r), nil
	default:
		return false, TypeError(ValidTypeInteger, x, h)
	}
}

// Rnd is rnd/2. It picks an integer in [0, N) or an element of a list at random.
func Rnd(e *Engine, args []Term) (bool, error) {
	h := e.heap
	switch t := h.Resolve(args[0]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case Integer:
		if t <= 0 {
			return false, DomainError(ValidDomainNotLessThanZero, t, h)
		}
		return h.Unify(args[1], Integer(rand.Int64N(int64(t)))), nil
	case Atom:
		if t != atomEmptyList {
			return false, TypeError(ValidTypeList, t, h)
		}
		return h.Unify(args[1], atomEmptyList), nil
	case *Compound:
		es, err := Slice(h, t)
		if err != nil {
			return false, err
		}
		return h.Unify(args[1], es[rand.IntN(len(es))]), nil
	default:
		return false, TypeError(ValidTypeInteger, t, h)
	}
}
