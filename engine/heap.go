package engine

import (
	"strconv"
)

// Variable is a prolog variable. It is a handle to a binding cell in a Heap.
type Variable int64

// varContext is a placeholder for the context argument of error terms.
const varContext = Variable(-1)

func (v Variable) String() string {
	return "_" + strconv.FormatInt(int64(v), 10)
}

type binding struct {
	variable Variable
	previous Term
}

// Heap is an arena of binding cells with a trail which records bindings so that they can be undone on backtracking.
// A Heap is owned by a single goal and its sub-goals.
type Heap struct {
	cells []Term
	trail []binding

	// floor is the number of cells at the last Mark. Cells at or above it are younger than any mark
	// and their bindings are not trailed.
	floor int
}

// NewVariable allocates a new unbound variable.
func (h *Heap) NewVariable() Variable {
	h.cells = append(h.cells, nil)
	return Variable(len(h.cells) - 1)
}

func (h *Heap) alloc(n int) int {
	base := len(h.cells)
	h.cells = append(h.cells, make([]Term, n)...)
	return base
}

// Len returns the number of cells allocated so far.
func (h *Heap) Len() int {
	if h == nil {
		return 0
	}
	return len(h.cells)
}

// Resolve follows the binding chain of t and returns either a value or an unbound variable.
func (h *Heap) Resolve(t Term) Term {
	if h == nil {
		return t
	}
	for {
		v, ok := t.(Variable)
		if !ok || v < 0 || int(v) >= len(h.cells) {
			return t
		}
		next := h.cells[v]
		if next == nil {
			return v
		}
		t = next
	}
}

func (h *Heap) bind(v Variable, t Term) {
	if int(v) < h.floor {
		h.trail = append(h.trail, binding{variable: v, previous: h.cells[v]})
	}
	h.cells[v] = t
}

// Mark returns the current height of the trail. Variables allocated so far are trailed from now on.
func (h *Heap) Mark() int {
	h.floor = len(h.cells)
	return len(h.trail)
}

// Undo resets every variable which existed at mark and was bound after it.
func (h *Heap) Undo(mark int) {
	if mark >= len(h.trail) {
		return
	}
	for i := len(h.trail) - 1; i >= mark; i-- {
		b := h.trail[i]
		h.cells[b.variable] = b.previous
	}
	h.trail = h.trail[:mark]
}

// Unify unifies a and b. It doesn't undo bindings made before a failure. Use Mark and Undo to do so.
// There's no occurs check.
func (h *Heap) Unify(a, b Term) bool {
	stack := []Term{a, b}
	for len(stack) > 0 {
		a, b = h.Resolve(stack[len(stack)-2]), h.Resolve(stack[len(stack)-1])
		stack = stack[:len(stack)-2]

		switch x := a.(type) {
		case Variable:
			if y, ok := b.(Variable); ok {
				switch {
				case x == y:
				case x < y:
					h.bind(y, x)
				default:
					h.bind(x, y)
				}
				continue
			}
			h.bind(x, b)
		case *Compound:
			switch y := b.(type) {
			case Variable:
				h.bind(y, x)
			case *Compound:
				if x == y {
					continue
				}
				if x.Functor != y.Functor || len(x.Args) != len(y.Args) {
					return false
				}
				for i := len(x.Args) - 1; i >= 0; i-- {
					stack = append(stack, x.Args[i], y.Args[i])
				}
			default:
				return false
			}
		case *Operator:
			switch y := b.(type) {
			case Variable:
				h.bind(y, x)
			case *Operator:
				if *x != *y {
					return false
				}
			default:
				return false
			}
		default:
			if y, ok := b.(Variable); ok {
				h.bind(y, a)
				continue
			}
			if a != b {
				return false
			}
		}
	}
	return true
}

// DryUnify checks if a and b are unifiable without leaving any bindings.
func (h *Heap) DryUnify(a, b Term) bool {
	m := h.Mark()
	defer h.Undo(m)
	return h.Unify(a, b)
}

// Copy returns a copy of t with fresh variables. Variables already in m are replaced with their values in m.
func (h *Heap) Copy(t Term, m map[Variable]Term) Term {
	if m == nil {
		m = map[Variable]Term{}
	}
	return h.copy(t, m)
}

func (h *Heap) copy(t Term, m map[Variable]Term) Term {
	switch t := h.Resolve(t).(type) {
	case Variable:
		if c, ok := m[t]; ok {
			return c
		}
		v := h.NewVariable()
		m[t] = v
		return v
	case *Compound:
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = h.copy(a, m)
		}
		return &Compound{Functor: t.Functor, Args: args}
	default:
		return t
	}
}

// Simplify returns t with every bound variable replaced with its value.
func (h *Heap) Simplify(t Term) Term {
	switch t := h.Resolve(t).(type) {
	case *Compound:
		var args []Term
		for i, a := range t.Args {
			s := h.Simplify(a)
			if args == nil && s != a {
				args = make([]Term, len(t.Args))
				copy(args, t.Args[:i])
			}
			if args != nil {
				args[i] = s
			}
		}
		if args == nil {
			return t
		}
		return &Compound{Functor: t.Functor, Args: args}
	default:
		return t
	}
}

// freeze returns a heap independent template of t in which variables are renumbered from 0 in the order of
// appearance, along with the number of the variables.
func (h *Heap) freeze(t Term) (Term, int) {
	m := map[Variable]Variable{}
	return h.freezeWith(t, m), len(m)
}

func (h *Heap) freezeWith(t Term, m map[Variable]Variable) Term {
	switch t := h.Resolve(t).(type) {
	case Variable:
		if v, ok := m[t]; ok {
			return v
		}
		v := Variable(len(m))
		m[t] = v
		return v
	case *Compound:
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = h.freezeWith(a, m)
		}
		return &Compound{Functor: t.Functor, Args: args}
	default:
		return t
	}
}

// instantiate allocates n fresh variables and returns a copy of the template t which refers to them.
func (h *Heap) instantiate(t Term, n int) Term {
	if n == 0 {
		return t
	}
	return relocate(t, Variable(h.alloc(n)))
}

func relocate(t Term, base Variable) Term {
	switch t := t.(type) {
	case Variable:
		return base + t
	case *Compound:
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = relocate(a, base)
		}
		return &Compound{Functor: t.Functor, Args: args}
	default:
		return t
	}
}

// variables returns the unbound variables in t in the depth-first, left-to-right order without duplicates.
func (h *Heap) variables(t Term) []Variable {
	var (
		ret  []Variable
		seen = map[Variable]struct{}{}
	)
	for stack := []Term{t}; len(stack) > 0; {
		t := h.Resolve(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		switch t := t.(type) {
		case Variable:
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			ret = append(ret, t)
		case *Compound:
			for i := len(t.Args) - 1; i >= 0; i-- {
				stack = append(stack, t.Args[i])
			}
		}
	}
	return ret
}
