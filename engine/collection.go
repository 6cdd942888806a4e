package engine

import (
	"slices"
)

// FindAll is findall/3.
func FindAll(e *Engine, args []Term) (bool, error) {
	results, err := e.findAll(args[0], args[1])
	if err != nil {
		return false, err
	}
	return e.heap.Unify(args[2], List(results...)), nil
}

// FindAll4 is findall/4.
func FindAll4(e *Engine, args []Term) (bool, error) {
	results, err := e.findAll(args[0], args[1])
	if err != nil {
		return false, err
	}
	return e.heap.Unify(args[2], ListRest(args[3], results...)), nil
}

// findAll returns a fresh copy of template for every solution of goal.
func (e *Engine) findAll(template, goal Term) ([]Term, error) {
	h := e.heap
	var results []Term
	err := e.each(goal, func() (bool, error) {
		results = append(results, h.Copy(template, nil))
		return true, nil
	})
	return results, err
}

// ForAll is forall/2. It succeeds if action succeeds for every solution of cond.
func ForAll(e *Engine, args []Term) (bool, error) {
	cond, action := args[0], args[1]
	holds := true
	err := e.each(cond, func() (bool, error) {
		ok, err := Once(e, []Term{action})
		if err != nil {
			return false, err
		}
		holds = ok
		return ok, nil
	})
	return holds && err == nil, err
}

// existential strips V^ from goal and returns the goal and the terms of the existential variables.
func existential(h *Heap, goal Term) (Term, []Term) {
	var vs []Term
	for {
		c, ok := h.Resolve(goal).(*Compound)
		if !ok || c.Functor != atomCaret || len(c.Args) != 2 {
			return goal, vs
		}
		vs = append(vs, c.Args[0])
		goal = c.Args[1]
	}
}

// witness returns the free variables of goal which occur neither in template nor in the existential variables.
func witness(h *Heap, template, goal Term) (Term, Term) {
	goal, ex := existential(h, goal)
	bound := map[Variable]struct{}{}
	for _, v := range h.variables(List(append(ex, template)...)) {
		bound[v] = struct{}{}
	}
	var free []Term
	for _, v := range h.variables(goal) {
		if _, ok := bound[v]; !ok {
			free = append(free, v)
		}
	}
	return List(free...), goal
}

// variant checks if a and b are identical up to renaming of variables.
func variant(h *Heap, a, b Term) bool {
	m := map[Variable]Variable{}
	r := map[Variable]Variable{}
	var rec func(a, b Term) bool
	rec = func(a, b Term) bool {
		switch x := h.Resolve(a).(type) {
		case Variable:
			y, ok := h.Resolve(b).(Variable)
			if !ok {
				return false
			}
			if z, ok := m[x]; ok {
				return z == y
			}
			if _, ok := r[y]; ok {
				return false
			}
			m[x], r[y] = y, x
			return true
		case *Compound:
			y, ok := h.Resolve(b).(*Compound)
			if !ok || x.Functor != y.Functor || len(x.Args) != len(y.Args) {
				return false
			}
			for i := range x.Args {
				if !rec(x.Args[i], y.Args[i]) {
					return false
				}
			}
			return true
		default:
			return Compare(h, x, b) == 0
		}
	}
	return rec(a, b)
}

func (e *Engine) collect(args []Term, c *Cursor, set bool) (bool, error) {
	h := e.heap
	template, goal, instances := args[0], args[1], args[2]
	w, g := witness(h, template, goal)
	if c.Init(CursorGroups) {
		type group struct {
			witness Term
			members []Term
		}
		var groups []*group
		err := e.each(g, func() (bool, error) {
			p := h.Copy(Pair(w, template), nil).(*Compound)
			for _, gr := range groups {
				if variant(h, gr.witness, p.Args[0]) {
					gr.members = append(gr.members, p.Args[1])
					return true, nil
				}
			}
			groups = append(groups, &group{witness: p.Args[0], members: []Term{p.Args[1]}})
			return true, nil
		})
		if err != nil {
			c.Stop()
			return false, err
		}
		for _, gr := range groups {
			ms := gr.members
			if set {
				ms = SortedSet(h, ms)
			}
			c.Terms = append(c.Terms, Pair(gr.witness, List(ms...)))
		}
	}

	t := c.Term()
	if t == nil {
		return false, nil
	}
	return h.Unify(Pair(w, instances), t), nil
}

// BagOf is bagof/3. Solutions are grouped by the bindings of the free variables of the goal.
func BagOf(e *Engine, args []Term, c *Cursor) (bool, error) {
	return e.collect(args, c, false)
}

// SetOf is setof/3. It's bagof/3 with every group sorted without duplicates.
func SetOf(e *Engine, args []Term, c *Cursor) (bool, error) {
	return e.collect(args, c, true)
}

// AggregateAll is aggregate_all/3 with count, sum(E), max(E), min(E), bag(T), and set(T).
func AggregateAll(e *Engine, args []Term) (bool, error) {
	h := e.heap
	spec, goal, result := h.Resolve(args[0]), args[1], args[2]

	if spec == Atom("count") {
		var n Integer
		err := e.each(goal, func() (bool, error) {
			n++
			return true, nil
		})
		if err != nil {
			return false, err
		}
		return h.Unify(result, n), nil
	}

	var (
		name Atom
		arg  Term
	)
	switch s := spec.(type) {
	case Variable:
		return false, InstantiationError(h)
	case *Compound:
		if len(s.Args) != 1 {
			return false, DomainError(ValidDomainAggregate, s, h)
		}
		name, arg = s.Functor, s.Args[0]
	default:
		return false, DomainError(ValidDomainAggregate, s, h)
	}

	switch name {
	case "bag", "set":
		ts, err := e.findAll(arg, goal)
		if err != nil {
			return false, err
		}
		if name == "set" {
			ts = SortedSet(h, ts)
		}
		return h.Unify(result, List(ts...)), nil
	case "sum", "max", "min":
		var acc Number
		err := e.each(goal, func() (bool, error) {
			v, err := e.eval(arg)
			if err != nil {
				return false, err
			}
			switch {
			case acc == nil:
				acc = v
			case name == "sum":
				acc, err = binaryFunctions["+"](acc, v, h)
			case name == "max":
				acc, err = maximum(acc, v, h)
			default:
				acc, err = minimum(acc, v, h)
			}
			return err == nil, err
		})
		if err != nil {
			return false, err
		}
		if acc == nil {
			if name != "sum" {
				return false, nil
			}
			acc = Integer(0)
		}
		return h.Unify(result, acc), nil
	default:
		return false, DomainError(ValidDomainAggregate, spec, h)
	}
}

// Length is length/2. If the list is partial and the length is unbound, it enumerates lists of increasing length.
func Length(e *Engine, args []Term, c *Cursor) (bool, error) {
	h := e.heap
	list, length := args[0], args[1]
	if c.Init(CursorRange) {
		var n Integer
		t := list
	prefix:
		for {
			switch l := h.Resolve(t).(type) {
			case Variable:
				c.Terms = []Term{l}
				break prefix
			case *Compound:
				if !l.isList() {
					c.Stop()
					return false, nil
				}
				n++
				t = l.Args[1]
			default:
				c.Stop()
				if l != atomEmptyList {
					return false, nil
				}
				if _, _, err := optionalInteger(h, length); err != nil {
					return false, err
				}
				return h.Unify(length, n), nil
			}
		}

		// The list is partial. Last holds the length of the proper prefix.
		c.Last = n
		switch l := h.Resolve(length).(type) {
		case Variable:
			c.Next, c.Unbounded = n, true
		case Integer:
			c.Stop()
			if l < 0 {
				return false, DomainError(ValidDomainNotLessThanZero, l, h)
			}
			if l < n {
				return false, nil
			}
			return h.Unify(c.Terms[0], freshList(h, int(l-n))), nil
		default:
			c.Stop()
			return false, TypeError(ValidTypeInteger, l, h)
		}
	}

	k := c.Next
	c.Next++
	return h.Unify(c.Terms[0], freshList(h, int(k-c.Last))) && h.Unify(length, k), nil
}

func freshList(h *Heap, n int) Term {
	ts := make([]Term, n)
	for i := range ts {
		ts[i] = h.NewVariable()
	}
	return List(ts...)
}

// Between is between/3. The upper bound can be inf or infinite.
func Between(e *Engine, args []Term, c *Cursor) (bool, error) {
	h := e.heap
	if c.Init(CursorRange) {
		switch low := h.Resolve(args[0]).(type) {
		case Variable:
			return false, InstantiationError(h)
		case Integer:
			c.Next = low
		default:
			return false, TypeError(ValidTypeInteger, low, h)
		}
		switch high := h.Resolve(args[1]).(type) {
		case Variable:
			return false, InstantiationError(h)
		case Integer:
			c.Last = high
		case Atom:
			if high != "inf" && high != "infinite" {
				return false, TypeError(ValidTypeInteger, high, h)
			}
			c.Unbounded = true
		default:
			return false, TypeError(ValidTypeInteger, high, h)
		}
		switch x := h.Resolve(args[2]).(type) {
		case Variable:
		case Integer:
			c.Stop()
			return c.Next <= x && (c.Unbounded || x <= c.Last), nil
		default:
			return false, TypeError(ValidTypeInteger, x, h)
		}
	}

	if !c.Unbounded && c.Next > c.Last {
		c.Stop()
		return false, nil
	}
	v := c.Next
	if !c.Unbounded && v == c.Last {
		c.Stop()
	} else {
		c.Next++
	}
	return h.Unify(args[2], v), nil
}

// For is for/3. It's between/3 with the counter first.
func For(e *Engine, args []Term, c *Cursor) (bool, error) {
	return Between(e, []Term{args[1], args[2], args[0]}, c)
}

func (e *Engine) sortable(list Term) ([]Term, error) {
	h := e.heap
	if isVariable(h.Resolve(list)) {
		return nil, InstantiationError(h)
	}
	return Slice(h, list)
}

// MSort is msort/2. It sorts the list in the standard order keeping duplicates.
func MSort(e *Engine, args []Term) (bool, error) {
	ts, err := e.sortable(args[0])
	if err != nil {
		return false, err
	}
	slices.SortStableFunc(ts, func(a, b Term) int {
		return Compare(e.heap, a, b)
	})
	return e.heap.Unify(args[1], List(ts...)), nil
}

// Sort is sort/2. It sorts the list in the standard order removing duplicates.
func Sort(e *Engine, args []Term) (bool, error) {
	ts, err := e.sortable(args[0])
	if err != nil {
		return false, err
	}
	return e.heap.Unify(args[1], List(SortedSet(e.heap, ts)...)), nil
}

// KeySort is keysort/2. It sorts the pairs by their keys. The order of pairs with the same key is kept.
func KeySort(e *Engine, args []Term) (bool, error) {
	h := e.heap
	ts, err := e.sortable(args[0])
	if err != nil {
		return false, err
	}
	keys := make([]Term, len(ts))
	for i, t := range ts {
		switch p := t.(type) {
		case Variable:
			return false, InstantiationError(h)
		case *Compound:
			if p.Functor != atomMinus || len(p.Args) != 2 {
				return false, TypeError(ValidTypePair, p, h)
			}
			keys[i] = p.Args[0]
		default:
			return false, TypeError(ValidTypePair, p, h)
		}
	}
	idx := make([]int, len(ts))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(i, j int) int {
		return Compare(h, keys[i], keys[j])
	})
	sorted := make([]Term, len(ts))
	for i, j := range idx {
		sorted[i] = ts[j]
	}
	return h.Unify(args[1], List(sorted...)), nil
}
