package engine

import (
	"slices"
)

// Compound is a prolog compound. A list cell is a Compound with functor '.' and two arguments.
type Compound struct {
	Functor Atom
	Args    []Term
}

func (c *Compound) String() string {
	return termString(c)
}

// PI returns the procedure indicator of the compound.
func (c *Compound) PI() ProcedureIndicator {
	return ProcedureIndicator{Name: c.Functor, Arity: len(c.Args)}
}

func (c *Compound) isList() bool {
	return c.Functor == atomDot && len(c.Args) == 2
}

// Cons returns a list consists of a first element car and the rest cdr.
func Cons(car, cdr Term) Term {
	return &Compound{
		Functor: atomDot,
		Args:    []Term{car, cdr},
	}
}

// List returns a list of ts.
func List(ts ...Term) Term {
	return ListRest(atomEmptyList, ts...)
}

// ListRest returns a list of ts followed by rest.
func ListRest(rest Term, ts ...Term) Term {
	l := rest
	for i := len(ts) - 1; i >= 0; i-- {
		l = Cons(ts[i], l)
	}
	return l
}

// Seq returns a sequence of ts separated by sep.
func Seq(sep Atom, ts ...Term) Term {
	s, ts := ts[len(ts)-1], ts[:len(ts)-1]
	for i := len(ts) - 1; i >= 0; i-- {
		s = &Compound{
			Functor: sep,
			Args:    []Term{ts[i], s},
		}
	}
	return s
}

// Pair returns a pair of k and v.
func Pair(k, v Term) Term {
	return &Compound{
		Functor: atomMinus,
		Args:    []Term{k, v},
	}
}

// Slice returns a Term slice containing the elements of list.
// It errors if the given Term is not a proper list.
func Slice(h *Heap, list Term) ([]Term, error) {
	var ret []Term
	iter := ListIterator{List: list, Heap: h}
	for iter.Next() {
		ret = append(ret, h.Resolve(iter.Current()))
	}
	return ret, iter.Err()
}

// SortedSet sorts ts in the standard order and removes duplicates.
func SortedSet(h *Heap, ts []Term) []Term {
	ts = slices.Clone(ts)
	slices.SortStableFunc(ts, func(a, b Term) int {
		return Compare(h, a, b)
	})
	return slices.CompactFunc(ts, func(a, b Term) bool {
		return Compare(h, a, b) == 0
	})
}
