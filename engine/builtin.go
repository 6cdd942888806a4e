package engine

import (
	"time"
)

// controlConstructs are resolved by the engine itself.
var controlConstructs = []ProcedureIndicator{
	{Name: atomTrue},
	{Name: atomFail},
	{Name: atomFalse},
	{Name: atomCut},
	{Name: atomComma, Arity: 2},
	{Name: atomSemicolon, Arity: 2},
	{Name: atomThen, Arity: 2},
	{Name: atomSoftThen, Arity: 2},
	{Name: atomNegation, Arity: 1},
	{Name: atomNot, Arity: 1},
}

func registerBuiltins() map[ProcedureIndicator]procedure {
	m := map[ProcedureIndicator]procedure{}
	det := func(name string, arity int, p Predicate) {
		m[ProcedureIndicator{Name: Atom(name), Arity: arity}] = procedure{det: p}
	}
	nondet := func(name string, arity int, p NondetPredicate) {
		m[ProcedureIndicator{Name: Atom(name), Arity: arity}] = procedure{nondet: p}
	}

	// Control
	nondet("catch", 3, Catch)
	det("throw", 1, Throw)
	det("once", 1, Once)
	det("ignore", 1, Ignore)
	det("forall", 2, ForAll)
	nondet("call_nth", 2, CallNth)
	det("halt", 0, Halt0)
	det("halt", 1, Halt1)
	det("dispose", 0, Halt0)
	det("dispose", 1, Halt1)

	// Unification and type testing
	det("=", 2, Unify)
	det(`\=`, 2, NotUnifiable)
	det("var", 1, TypeVar)
	det("nonvar", 1, TypeNonVar)
	det("atom", 1, TypeAtom)
	det("number", 1, TypeNumber)
	det("integer", 1, TypeInteger)
	det("float", 1, TypeFloat)
	det("atomic", 1, TypeAtomic)
	det("compound", 1, TypeCompound)
	det("callable", 1, TypeCallable)
	det("is_list", 1, TypeList)
	det("ground", 1, TypeGround)

	// Term comparison
	det("==", 2, Identical)
	det(`\==`, 2, NotIdentical)
	det("@<", 2, TermLessThan)
	det("@>", 2, TermGreaterThan)
	det("@=<", 2, TermLessThanOrEqual)
	det("@>=", 2, TermGreaterThanOrEqual)
	det("compare", 3, CompareOrder)

	// Term creation and decomposition
	det("functor", 3, Functor)
	det("arg", 3, Arg)
	det("=..", 2, Univ)
	det("copy_term", 2, CopyTerm)
	det("term_variables", 2, TermVariables)

	// Arithmetic
	det("is", 2, Is)
	det("=:=", 2, Equal)
	det(`=\=`, 2, NotEqual)
	det("<", 2, LessThan)
	det(">", 2, GreaterThan)
	det("=<", 2, LessThanOrEqual)
	det(">=", 2, GreaterThanOrEqual)
	nondet("between", 3, Between)
	nondet("for", 3, For)
	det("succ", 2, Succ)
	det("rnd", 2, Rnd)

	// Atoms and texts
	det("atom_length", 2, AtomLength)
	nondet("atom_concat", 3, AtomConcat)
	nondet("sub_atom", 5, SubAtom)
	det("atom_chars", 2, AtomChars)
	det("atom_codes", 2, AtomCodes)
	det("char_code", 2, CharCode)
	det("atom_number", 2, AtomNumber)
	det("number_codes", 2, NumberCodes)
	det("number_chars", 2, NumberChars)
	det("upcase_atom", 2, UpcaseAtom)
	det("downcase_atom", 2, DowncaseAtom)

	// Collections
	det("findall", 3, FindAll)
	det("findall", 4, FindAll4)
	nondet("bagof", 3, BagOf)
	nondet("setof", 3, SetOf)
	det("aggregate_all", 3, AggregateAll)
	nondet("length", 2, Length)
	det("msort", 2, MSort)
	det("sort", 2, Sort)
	det("keysort", 2, KeySort)

	// Database
	det("assert", 1, AssertZ)
	det("asserta", 1, AssertA)
	det("assertz", 1, AssertZ)
	det("retract", 1, RetractA)
	det("retracta", 1, RetractA)
	det("retractz", 1, RetractZ)
	det("retractall", 1, RetractAll)
	det("abolish", 1, Abolish)
	det("dynamic", 1, Dynamic)
	nondet("clause", 2, ClausePredicate)
	nondet("facts", 1, Facts)
	nondet("rules", 1, Rules)
	nondet("current_predicate", 1, CurrentPredicate)
	nondet("current_predicate_all", 1, CurrentPredicateAll)
	nondet("current_op", 3, CurrentOp)
	det("op", 3, Op)
	det("listing", 0, Listing0)
	det("listing", 1, Listing1)
	det("regtrigger", 3, RegTrigger)

	// Flags
	det("set_prolog_flag", 2, SetPrologFlag)
	nondet("current_prolog_flag", 2, CurrentPrologFlag)

	// Input and output
	det("write", 1, Write)
	det("writeq", 1, WriteQ)
	det("print", 1, Print)
	det("write_canonical", 1, WriteCanonical)
	det("nl", 0, NewLine)
	det("tab", 1, Tab)
	det("read", 1, Read)
	det("see", 1, See)
	det("seen", 0, Seen)
	det("tell", 1, Tell)
	det("append", 1, Append)
	det("told", 0, Told)
	det("consult", 1, ConsultPredicate)

	// Concurrency
	det("async", 1, Async)
	det("waitasync", 0, WaitAsyncPredicate)
	det("lock", 1, LockPredicate)
	det("trylock", 1, TryLockPredicate)
	det("unlock", 1, UnlockPredicate)
	det("pause", 1, Pause)

	// DCG
	nondet("phrase", 2, Phrase2)
	nondet("phrase", 3, Phrase3)

	return m
}

// Once is once/1.
func Once(e *Engine, args []Term) (bool, error) {
	sub := e.sub(args[0])
	defer sub.Close()
	return sub.Next(e.Context())
}

// Ignore is ignore/1.
func Ignore(e *Engine, args []Term) (bool, error) {
	if _, err := Once(e, args); err != nil {
		return false, err
	}
	return true, nil
}

// Halt0 is halt/0. It disposes the session.
func Halt0(e *Engine, _ []Term) (bool, error) {
	e.session.Dispose()
	return false, &HaltError{}
}

// Halt1 is halt/1. It disposes the session.
func Halt1(e *Engine, args []Term) (bool, error) {
	switch n := e.heap.Resolve(args[0]).(type) {
	case Variable:
		return false, InstantiationError(e.heap)
	case Integer:
		e.session.Dispose()
		return false, &HaltError{Status: int(n)}
	default:
		return false, TypeError(ValidTypeInteger, n, e.heap)
	}
}

// Pause is pause/1. It blocks for the given milliseconds.
func Pause(e *Engine, args []Term) (bool, error) {
	n, err := e.eval(args[0])
	if err != nil {
		return false, err
	}
	var d time.Duration
	switch n := n.(type) {
	case Integer:
		d = time.Duration(n) * time.Millisecond
	case Float:
		d = time.Duration(float64(n) * float64(time.Millisecond))
	}
	if d <= 0 {
		return true, nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true, nil
	case <-e.Context().Done():
		return false, e.Context().Err()
	}
}

// Unify is =/2.
func Unify(e *Engine, args []Term) (bool, error) {
	return e.heap.Unify(args[0], args[1]), nil
}

// NotUnifiable is \=/2.
func NotUnifiable(e *Engine, args []Term) (bool, error) {
	return !e.heap.DryUnify(args[0], args[1]), nil
}

// TypeVar is var/1.
func TypeVar(e *Engine, args []Term) (bool, error) {
	return isVariable(e.heap.Resolve(args[0])), nil
}

// TypeNonVar is nonvar/1.
func TypeNonVar(e *Engine, args []Term) (bool, error) {
	return !isVariable(e.heap.Resolve(args[0])), nil
}

// TypeAtom is atom/1.
func TypeAtom(e *Engine, args []Term) (bool, error) {
	_, ok := e.heap.Resolve(args[0]).(Atom)
	return ok, nil
}

// TypeNumber is number/1.
func TypeNumber(e *Engine, args []Term) (bool, error) {
	_, ok := e.heap.Resolve(args[0]).(Number)
	return ok, nil
}

// TypeInteger is integer/1.
func TypeInteger(e *Engine, args []Term) (bool, error) {
	_, ok := e.heap.Resolve(args[0]).(Integer)
	return ok, nil
}

// TypeFloat is float/1.
func TypeFloat(e *Engine, args []Term) (bool, error) {
	_, ok := e.heap.Resolve(args[0]).(Float)
	return ok, nil
}

// TypeAtomic is atomic/1.
func TypeAtomic(e *Engine, args []Term) (bool, error) {
	return IsAtomic(e.heap.Resolve(args[0])), nil
}

// TypeCompound is compound/1.
func TypeCompound(e *Engine, args []Term) (bool, error) {
	_, ok := e.heap.Resolve(args[0]).(*Compound)
	return ok, nil
}

// TypeCallable is callable/1.
func TypeCallable(e *Engine, args []Term) (bool, error) {
	return IsCallable(e.heap.Resolve(args[0])), nil
}

// TypeList is is_list/1.
func TypeList(e *Engine, args []Term) (bool, error) {
	iter := ListIterator{List: args[0], Heap: e.heap}
	for iter.Next() {
	}
	return iter.Err() == nil, nil
}

// TypeGround is ground/1.
func TypeGround(e *Engine, args []Term) (bool, error) {
	return IsGround(e.heap, args[0]), nil
}

// Identical is ==/2.
func Identical(e *Engine, args []Term) (bool, error) {
	return Compare(e.heap, args[0], args[1]) == 0, nil
}

// NotIdentical is \==/2.
func NotIdentical(e *Engine, args []Term) (bool, error) {
	return Compare(e.heap, args[0], args[1]) != 0, nil
}

// TermLessThan is @</2.
func TermLessThan(e *Engine, args []Term) (bool, error) {
	return Compare(e.heap, args[0], args[1]) < 0, nil
}

// TermGreaterThan is @>/2.
func TermGreaterThan(e *Engine, args []Term) (bool, error) {
	return Compare(e.heap, args[0], args[1]) > 0, nil
}

// TermLessThanOrEqual is @=</2.
func TermLessThanOrEqual(e *Engine, args []Term) (bool, error) {
	return Compare(e.heap, args[0], args[1]) <= 0, nil
}

// TermGreaterThanOrEqual is @>=/2.
func TermGreaterThanOrEqual(e *Engine, args []Term) (bool, error) {
	return Compare(e.heap, args[0], args[1]) >= 0, nil
}

// CompareOrder is compare/3.
func CompareOrder(e *Engine, args []Term) (bool, error) {
	h := e.heap
	switch o := h.Resolve(args[0]).(type) {
	case Variable:
	case Atom:
		switch o {
		case atomLess, atomEqual, atomGreater:
		default:
			return false, DomainError(ValidDomainOrder, o, h)
		}
	default:
		return false, TypeError(ValidTypeAtom, o, h)
	}

	var order Atom
	switch c := Compare(h, args[1], args[2]); {
	case c < 0:
		order = atomLess
	case c > 0:
		order = atomGreater
	default:
		order = atomEqual
	}
	return h.Unify(args[0], order), nil
}

// Functor is functor/3.
func Functor(e *Engine, args []Term) (bool, error) {
	h := e.heap
	switch t := h.Resolve(args[0]).(type) {
	case Variable:
		name, arity := h.Resolve(args[1]), h.Resolve(args[2])
		if isVariable(name) || isVariable(arity) {
			return false, InstantiationError(h)
		}
		n, ok := arity.(Integer)
		if !ok {
			return false, TypeError(ValidTypeInteger, arity, h)
		}
		switch {
		case n < 0:
			return false, DomainError(ValidDomainNotLessThanZero, n, h)
		case n == 0:
			if !IsAtomic(name) {
				return false, TypeError(ValidTypeAtomic, name, h)
			}
			return h.Unify(t, name), nil
		}
		a, ok := name.(Atom)
		if !ok {
			if IsAtomic(name) {
				return false, TypeError(ValidTypeAtom, name, h)
			}
			return false, TypeError(ValidTypeAtomic, name, h)
		}
		vs := make([]Term, n)
		for i := range vs {
			vs[i] = h.NewVariable()
		}
		return h.Unify(t, a.Apply(vs...)), nil
	case *Compound:
		return h.Unify(args[1], t.Functor) && h.Unify(args[2], Integer(len(t.Args))), nil
	default:
		return h.Unify(args[1], t) && h.Unify(args[2], Integer(0)), nil
	}
}

// Arg is arg/3.
func Arg(e *Engine, args []Term) (bool, error) {
	h := e.heap
	var n Integer
	switch i := h.Resolve(args[0]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case Integer:
		if i < 0 {
			return false, DomainError(ValidDomainNotLessThanZero, i, h)
		}
		n = i
	default:
		return false, TypeError(ValidTypeInteger, i, h)
	}

	switch t := h.Resolve(args[1]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case *Compound:
		if n == 0 || int(n) > len(t.Args) {
			return false, nil
		}
		return h.Unify(args[2], t.Args[n-1]), nil
	default:
		return false, TypeError(ValidTypeCompound, t, h)
	}
}

// Univ is =../2.
func Univ(e *Engine, args []Term) (bool, error) {
	h := e.heap
	switch t := h.Resolve(args[0]).(type) {
	case Variable:
		list := h.Resolve(args[1])
		if isVariable(list) {
			return false, InstantiationError(h)
		}
		es, err := Slice(h, list)
		if err != nil {
			return false, err
		}
		if len(es) == 0 {
			return false, DomainError(ValidDomainNonEmptyList, list, h)
		}
		head := h.Resolve(es[0])
		switch f := head.(type) {
		case Variable:
			return false, InstantiationError(h)
		case Atom:
			return h.Unify(t, f.Apply(es[1:]...)), nil
		case *Compound:
			return false, TypeError(ValidTypeAtomic, f, h)
		default:
			if len(es) > 1 {
				return false, TypeError(ValidTypeAtom, f, h)
			}
			return h.Unify(t, f), nil
		}
	case *Compound:
		return h.Unify(args[1], Cons(t.Functor, List(t.Args...))), nil
	default:
		return h.Unify(args[1], List(t)), nil
	}
}

// CopyTerm is copy_term/2.
func CopyTerm(e *Engine, args []Term) (bool, error) {
	return e.heap.Unify(args[1], e.heap.Copy(args[0], nil)), nil
}

// TermVariables is term_variables/2.
func TermVariables(e *Engine, args []Term) (bool, error) {
	vs := e.heap.variables(args[0])
	ts := make([]Term, len(vs))
	for i, v := range vs {
		ts[i] = v
	}
	return e.heap.Unify(args[1], List(ts...)), nil
}
