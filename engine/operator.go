package engine

import (
	"cmp"
	"slices"
	"sync"
)

// OperatorClass is either prefix, postfix, or infix.
type OperatorClass uint8

// OperatorClass is one of these values.
const (
	OperatorClassPrefix OperatorClass = iota
	OperatorClassPostfix
	OperatorClassInfix
	operatorClassLen
)

// OperatorSpecifier is the associativity of an operator.
type OperatorSpecifier uint8

// OperatorSpecifier is one of these values.
const (
	OperatorSpecifierFX  = OperatorSpecifier(OperatorClassPrefix<<2 + 1)
	OperatorSpecifierFY  = OperatorSpecifier(OperatorClassPrefix<<2 + 2)
	OperatorSpecifierXF  = OperatorSpecifier(OperatorClassPostfix<<2 + 1)
	OperatorSpecifierYF  = OperatorSpecifier(OperatorClassPostfix<<2 + 2)
	OperatorSpecifierXFX = OperatorSpecifier(OperatorClassInfix<<2 + 1)
	OperatorSpecifierXFY = OperatorSpecifier(OperatorClassInfix<<2 + 2)
	OperatorSpecifierYFX = OperatorSpecifier(OperatorClassInfix<<2 + 3)
)

var specifiers = map[Atom]OperatorSpecifier{
	"fx":  OperatorSpecifierFX,
	"fy":  OperatorSpecifierFY,
	"xf":  OperatorSpecifierXF,
	"yf":  OperatorSpecifierYF,
	"xfx": OperatorSpecifierXFX,
	"xfy": OperatorSpecifierXFY,
	"yfx": OperatorSpecifierYFX,
}

// Class returns the class of the specifier.
func (s OperatorSpecifier) Class() OperatorClass {
	return OperatorClass((s & (0b11 << 2)) >> 2)
}

// Term returns an Atom for the specifier.
func (s OperatorSpecifier) Term() Term {
	return [...]Atom{
		OperatorSpecifierFX:  "fx",
		OperatorSpecifierFY:  "fy",
		OperatorSpecifierXF:  "xf",
		OperatorSpecifierYF:  "yf",
		OperatorSpecifierXFX: "xfx",
		OperatorSpecifierXFY: "xfy",
		OperatorSpecifierYFX: "yfx",
	}[s]
}

// Operator is an operator definition. It is also a term so that it can be passed around as a value.
type Operator struct {
	Priority  Integer // 1 ~ 1200
	Specifier OperatorSpecifier
	Name      Atom
}

func (o *Operator) String() string {
	return termString(o)
}

// Pratt parser's binding powers but in Prolog priority.
func (o *Operator) bindingPriorities() (Integer, Integer) {
	const max = Integer(1202)
	type lr struct {
		left, right Integer
	}
	p := [...]lr{
		OperatorSpecifierFX:  {max, o.Priority - 1},
		OperatorSpecifierFY:  {max, o.Priority},
		OperatorSpecifierXF:  {o.Priority - 1, max},
		OperatorSpecifierYF:  {o.Priority, max},
		OperatorSpecifierXFX: {o.Priority - 1, o.Priority - 1},
		OperatorSpecifierXFY: {o.Priority - 1, o.Priority},
		OperatorSpecifierYFX: {o.Priority, o.Priority - 1},
	}[o.Specifier]
	return p.left, p.right
}

// Operators is a table of operator definitions. An atom may have one prefix and one infix or postfix definition at a time.
type Operators struct {
	mu        sync.RWMutex
	table     map[Atom][operatorClassLen]Operator
	protected map[Atom]struct{}
}

// NewOperators returns an operator table with the standard operators. They are protected from modification.
func NewOperators() *Operators {
	ops := Operators{
		table:     map[Atom][operatorClassLen]Operator{},
		protected: map[Atom]struct{}{},
	}
	for _, o := range systemOperators {
		ops.define(o)
		ops.protected[o.Name] = struct{}{}
	}
	return &ops
}

var systemOperators = []Operator{
	{Priority: 1200, Specifier: OperatorSpecifierXFX, Name: atomIf},
	{Priority: 1200, Specifier: OperatorSpecifierXFX, Name: atomDCG},
	{Priority: 1200, Specifier: OperatorSpecifierFX, Name: atomIf},
	{Priority: 1200, Specifier: OperatorSpecifierFX, Name: atomQuery},
	{Priority: 1100, Specifier: OperatorSpecifierXFY, Name: atomSemicolon},
	{Priority: 1100, Specifier: OperatorSpecifierXFY, Name: atomBar},
	{Priority: 1050, Specifier: OperatorSpecifierXFY, Name: atomThen},
	{Priority: 1050, Specifier: OperatorSpecifierXFY, Name: atomSoftThen},
	{Priority: 1000, Specifier: OperatorSpecifierXFY, Name: atomComma},
	{Priority: 900, Specifier: OperatorSpecifierFY, Name: atomNegation},
	{Priority: 900, Specifier: OperatorSpecifierFY, Name: atomNot},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: atomEqual},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: `\=`},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "=="},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: `\==`},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "@<"},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "@=<"},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "@>"},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "@>="},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "=.."},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "is"},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "=:="},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: `=\=`},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: atomLess},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: "=<"},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: atomGreater},
	{Priority: 700, Specifier: OperatorSpecifierXFX, Name: ">="},
	{Priority: 500, Specifier: OperatorSpecifierYFX, Name: atomPlus},
	{Priority: 500, Specifier: OperatorSpecifierYFX, Name: atomMinus},
	{Priority: 500, Specifier: OperatorSpecifierYFX, Name: `/\`},
	{Priority: 500, Specifier: OperatorSpecifierYFX, Name: `\/`},
	{Priority: 500, Specifier: OperatorSpecifierYFX, Name: "xor"},
	{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "*"},
	{Priority: 400, Specifier: OperatorSpecifierYFX, Name: atomSlash},
	{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "//"},
	{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "div"},
	{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "rem"},
	{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "mod"},
	{Priority: 400, Specifier: OperatorSpecifierYFX, Name: "<<"},
	{Priority: 400, Specifier: OperatorSpecifierYFX, Name: ">>"},
	{Priority: 200, Specifier: OperatorSpecifierXFX, Name: "**"},
	{Priority: 200, Specifier: OperatorSpecifierXFY, Name: atomCaret},
	{Priority: 200, Specifier: OperatorSpecifierFY, Name: atomMinus},
	{Priority: 200, Specifier: OperatorSpecifierFY, Name: atomPlus},
	{Priority: 200, Specifier: OperatorSpecifierFY, Name: `\`},
}

func (ops *Operators) define(o Operator) {
	os := ops.table[o.Name]
	switch o.Specifier.Class() {
	case OperatorClassPrefix:
		os[OperatorClassPrefix] = o
	default:
		// Infix and postfix definitions exclude each other.
		os[OperatorClassInfix] = Operator{}
		os[OperatorClassPostfix] = Operator{}
		os[o.Specifier.Class()] = o
	}
	ops.table[o.Name] = os
}

// Define adds or replaces an operator definition. A priority 0 removes the definition.
func (ops *Operators) Define(priority Integer, specifier OperatorSpecifier, name Atom) error {
	ops.mu.Lock()
	defer ops.mu.Unlock()
	if _, ok := ops.protected[name]; ok {
		return PermissionError(OperationModify, PermissionTypeOperator, name, nil)
	}
	if priority == 0 {
		ops.remove(name, specifier.Class())
		return nil
	}
	ops.define(Operator{Priority: priority, Specifier: specifier, Name: name})
	return nil
}

// Remove removes the operator definition of name in the class.
func (ops *Operators) Remove(name Atom, class OperatorClass) error {
	ops.mu.Lock()
	defer ops.mu.Unlock()
	if _, ok := ops.protected[name]; ok {
		return PermissionError(OperationModify, PermissionTypeOperator, name, nil)
	}
	ops.remove(name, class)
	return nil
}

func (ops *Operators) remove(name Atom, class OperatorClass) {
	os := ops.table[name]
	if class == OperatorClassPrefix {
		os[OperatorClassPrefix] = Operator{}
	} else {
		os[OperatorClassInfix] = Operator{}
		os[OperatorClassPostfix] = Operator{}
	}
	if os == ([operatorClassLen]Operator{}) {
		delete(ops.table, name)
		return
	}
	ops.table[name] = os
}

// Lookup returns the operator definition of name in the class.
func (ops *Operators) Lookup(name Atom, class OperatorClass) (Operator, bool) {
	ops.mu.RLock()
	defer ops.mu.RUnlock()
	o := ops.table[name][class]
	return o, o != Operator{}
}

// Defined checks if name is defined as an operator of any class.
func (ops *Operators) Defined(name Atom) bool {
	ops.mu.RLock()
	defer ops.mu.RUnlock()
	_, ok := ops.table[name]
	return ok
}

// Protected checks if name is one of the system operators.
func (ops *Operators) Protected(name Atom) bool {
	_, ok := ops.protected[name]
	return ok
}

// All returns every operator definition sorted by name, then class.
func (ops *Operators) All() []Operator {
	ops.mu.RLock()
	defer ops.mu.RUnlock()
	var ret []Operator
	for _, os := range ops.table {
		for _, o := range os {
			if o != (Operator{}) {
				ret = append(ret, o)
			}
		}
	}
	slices.SortFunc(ret, func(a, b Operator) int {
		if o := cmp.Compare(a.Name, b.Name); o != 0 {
			return o
		}
		return cmp.Compare(a.Specifier.Class(), b.Specifier.Class())
	})
	return ret
}

// Copy returns an independent copy of the table.
func (ops *Operators) Copy() *Operators {
	ops.mu.RLock()
	defer ops.mu.RUnlock()
	c := Operators{
		table:     make(map[Atom][operatorClassLen]Operator, len(ops.table)),
		protected: ops.protected,
	}
	for k, v := range ops.table {
		c.table[k] = v
	}
	return &c
}
