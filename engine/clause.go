package engine

// Clause is a stored clause. Its head and body are heap independent templates which are instantiated on a heap
// every time the clause is tried.
type Clause struct {
	pi   ProcedureIndicator
	head Term
	body Term
	vars int
	key  any
}

// NewClause creates a clause template from a term H :- B or H.
func NewClause(h *Heap, t Term) (*Clause, error) {
	head, body := Rulify(h, t)

	pi, _, err := piArgs(h, head)
	if err != nil {
		return nil, err
	}

	body, err = bodyGoal(h, body)
	if err != nil {
		return nil, TypeError(ValidTypeCallable, t, h)
	}

	frozen, n := h.freeze(atomIf.Apply(head, body))
	c := frozen.(*Compound)
	cl := Clause{
		pi:   pi,
		head: c.Args[0],
		body: c.Args[1],
		vars: n,
	}
	if hc, ok := cl.head.(*Compound); ok {
		cl.key = indexKey(hc.Args[0])
	}
	return &cl, nil
}

// bodyGoal checks if t is a valid body and replaces variable goals with call/1.
func bodyGoal(h *Heap, t Term) (Term, error) {
	switch t := h.Resolve(t).(type) {
	case Variable:
		return atomCall.Apply(t), nil
	case Atom:
		return t, nil
	case *Compound:
		switch {
		case len(t.Args) == 2 && (t.Functor == atomComma || t.Functor == atomSemicolon || t.Functor == atomThen || t.Functor == atomSoftThen):
			lhs, err := bodyGoal(h, t.Args[0])
			if err != nil {
				return nil, err
			}
			rhs, err := bodyGoal(h, t.Args[1])
			if err != nil {
				return nil, err
			}
			return t.Functor.Apply(lhs, rhs), nil
		default:
			return t, nil
		}
	default:
		return nil, TypeError(ValidTypeCallable, t, h)
	}
}

// argKey is the index key of a compound first argument.
type argKey struct {
	name  Atom
	arity int
}

// indexKey returns a comparable key of the principal functor of t, or nil if t is a variable.
func indexKey(t Term) any {
	switch t := t.(type) {
	case Variable:
		return nil
	case *Compound:
		return argKey{name: t.Functor, arity: len(t.Args)}
	case *Operator:
		return *t
	default:
		return t
	}
}

// couldMatch is a quick check on the first argument if the clause could unify with args.
func (c *Clause) couldMatch(h *Heap, args []Term) bool {
	if c.key == nil || len(args) == 0 {
		return true
	}
	k := indexKey(h.Resolve(args[0]))
	return k == nil || k == c.key
}

// PI returns the procedure indicator of the clause.
func (c *Clause) PI() ProcedureIndicator {
	return c.pi
}

// IsFact checks if the clause has no body.
func (c *Clause) IsFact() bool {
	return c.body == atomTrue
}

// Term returns the template of the clause as H :- B. Variables are numbered from 0.
func (c *Clause) Term() Term {
	if c.IsFact() {
		return c.head
	}
	return atomIf.Apply(c.head, c.body)
}

// Instantiate returns a fresh copy of the head and the body on h.
func (c *Clause) Instantiate(h *Heap) (Term, Term) {
	if c.vars == 0 {
		return c.head, c.body
	}
	base := Variable(h.alloc(c.vars))
	return relocate(c.head, base), relocate(c.body, base)
}
