package engine

import (
	"cmp"
	"strings"
)

// Compare compares a and b in the standard order of terms: Variable < Number < Atom < Compound.
// It returns a negative number if a precedes b, 0 if they're identical, or a positive number otherwise.
func Compare(h *Heap, a, b Term) int {
	a, b = h.Resolve(a), h.Resolve(b)
	if o := cmp.Compare(rank(a), rank(b)); o != 0 {
		return o
	}

	switch x := a.(type) {
	case Variable:
		return cmp.Compare(x, b.(Variable))
	case Integer, Float:
		return compareNumbers(x.(Number), b.(Number))
	case Atom:
		return strings.Compare(string(x), string(b.(Atom)))
	case *Operator:
		y := b.(*Operator)
		if o := strings.Compare(string(x.Name), string(y.Name)); o != 0 {
			return o
		}
		if o := cmp.Compare(x.Priority, y.Priority); o != 0 {
			return o
		}
		return cmp.Compare(x.Specifier, y.Specifier)
	case *Compound:
		y := b.(*Compound)
		if o := cmp.Compare(len(x.Args), len(y.Args)); o != 0 {
			return o
		}
		if o := strings.Compare(string(x.Functor), string(y.Functor)); o != 0 {
			return o
		}
		for i := range x.Args {
			if o := Compare(h, x.Args[i], y.Args[i]); o != 0 {
				return o
			}
		}
		return 0
	default:
		return 0
	}
}

func rank(t Term) int {
	switch t.(type) {
	case Variable:
		return 0
	case Integer, Float:
		return 1
	case Atom:
		return 2
	case *Operator:
		return 3
	default:
		return 4
	}
}

// compareNumbers compares numbers by value. If the values are equal, a Float precedes an Integer.
func compareNumbers(a, b Number) int {
	switch x := a.(type) {
	case Integer:
		switch y := b.(type) {
		case Integer:
			return cmp.Compare(x, y)
		case Float:
			if o := cmp.Compare(Float(x), y); o != 0 {
				return o
			}
			return 1
		}
	case Float:
		switch y := b.(type) {
		case Integer:
			if o := cmp.Compare(x, Float(y)); o != 0 {
				return o
			}
			return -1
		case Float:
			return cmp.Compare(x, y)
		}
	}
	return 0
}
