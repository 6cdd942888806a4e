package engine

import (
	"fmt"
	"strings"
)

// Term is a prolog term. It is one of Variable, Atom, Integer, Float, *Compound or *Operator.
type Term interface {
	fmt.Stringer
	isTerm()
}

func (Variable) isTerm()  {}
func (Atom) isTerm()      {}
func (Integer) isTerm()   {}
func (Float) isTerm()     {}
func (*Compound) isTerm() {}
func (*Operator) isTerm() {}

func termString(t Term) string {
	var sb strings.Builder
	_ = WriteTerm(&sb, t, nil, WithQuoted(true))
	return sb.String()
}

// ProcedureIndicator identifies a procedure e.g. foo/3.
type ProcedureIndicator struct {
	Name  Atom
	Arity int
}

func (p ProcedureIndicator) String() string {
	return fmt.Sprintf("%s/%d", p.Name.String(), p.Arity)
}

// Term returns p as Name/Arity.
func (p ProcedureIndicator) Term() Term {
	return &Compound{
		Functor: atomSlash,
		Args:    []Term{p.Name, Integer(p.Arity)},
	}
}

// Apply creates a goal of p with args.
func (p ProcedureIndicator) Apply(args ...Term) (Term, error) {
	if p.Arity != len(args) {
		return nil, fmt.Errorf("wrong number of arguments for %s: %d", p, len(args))
	}
	return p.Name.Apply(args...), nil
}

// NewProcedureIndicator converts a Name/Arity term into a ProcedureIndicator.
func NewProcedureIndicator(h *Heap, t Term) (ProcedureIndicator, error) {
	switch t := h.Resolve(t).(type) {
	case Variable:
		return ProcedureIndicator{}, InstantiationError(h)
	case *Compound:
		if t.Functor != atomSlash || len(t.Args) != 2 {
			return ProcedureIndicator{}, TypeError(ValidTypePredicateIndicator, t, h)
		}
		switch n, a := h.Resolve(t.Args[0]), h.Resolve(t.Args[1]); {
		case isVariable(n), isVariable(a):
			return ProcedureIndicator{}, InstantiationError(h)
		default:
			name, ok := n.(Atom)
			if !ok {
				return ProcedureIndicator{}, TypeError(ValidTypeAtom, n, h)
			}
			arity, ok := a.(Integer)
			if !ok {
				return ProcedureIndicator{}, TypeError(ValidTypeInteger, a, h)
			}
			if arity < 0 {
				return ProcedureIndicator{}, DomainError(ValidDomainNotLessThanZero, arity, h)
			}
			return ProcedureIndicator{Name: name, Arity: int(arity)}, nil
		}
	default:
		return ProcedureIndicator{}, TypeError(ValidTypePredicateIndicator, t, h)
	}
}

// piArgs returns the procedure indicator and the arguments of a callable term.
func piArgs(h *Heap, t Term) (ProcedureIndicator, []Term, error) {
	switch t := h.Resolve(t).(type) {
	case Variable:
		return ProcedureIndicator{}, nil, InstantiationError(h)
	case Atom:
		return ProcedureIndicator{Name: t}, nil, nil
	case *Compound:
		return ProcedureIndicator{Name: t.Functor, Arity: len(t.Args)}, t.Args, nil
	default:
		return ProcedureIndicator{}, nil, TypeError(ValidTypeCallable, t, h)
	}
}

func isVariable(t Term) bool {
	_, ok := t.(Variable)
	return ok
}

// IsAtomic checks if t is an atom or a number.
func IsAtomic(t Term) bool {
	switch t.(type) {
	case Atom, Integer, Float, *Operator:
		return true
	default:
		return false
	}
}

// IsCallable checks if t is an atom or a compound.
func IsCallable(t Term) bool {
	switch t.(type) {
	case Atom, *Compound:
		return true
	default:
		return false
	}
}

// IsGround checks if t contains no unbound variables.
func IsGround(h *Heap, t Term) bool {
	switch t := h.Resolve(t).(type) {
	case Variable:
		return false
	case *Compound:
		for _, a := range t.Args {
			if !IsGround(h, a) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Rulify splits a clause into its head and body. A term which is not H:-B is a fact with body true.
func Rulify(h *Heap, t Term) (Term, Term) {
	t = h.Resolve(t)
	if c, ok := t.(*Compound); ok && c.Functor == atomIf && len(c.Args) == 2 {
		return h.Resolve(c.Args[0]), h.Resolve(c.Args[1])
	}
	return t, atomTrue
}
