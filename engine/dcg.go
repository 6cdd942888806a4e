package engine

import (
	"errors"
)

// based on: https://www.complang.tuwien.ac.at/ulrich/iso-prolog/dcgs/dcgsdin150408.pdf

var errDCGNotApplicable = errors.New("not applicable")

// dcgTranslate converts a grammar rule Head --> Body into a clause. A pushback Head, Terminals --> Body is
// supported.
func dcgTranslate(h *Heap, head, body Term) (Term, error) {
	s0, s1, s := h.NewVariable(), h.NewVariable(), h.NewVariable()
	if c, ok := h.Resolve(head).(*Compound); ok && c.Functor == atomComma && len(c.Args) == 2 {
		nt, err := dcgNonTerminal(h, c.Args[0], s0, s)
		if err != nil {
			return nil, err
		}
		goal1, err := dcgBody(h, body, s0, s1)
		if err != nil {
			return nil, err
		}
		goal2, err := dcgTerminals(h, c.Args[1], s, s1)
		if err != nil {
			return nil, err
		}
		return atomIf.Apply(nt, atomComma.Apply(goal1, goal2)), nil
	}

	nt, err := dcgNonTerminal(h, head, s0, s)
	if err != nil {
		return nil, err
	}
	b, err := dcgBody(h, body, s0, s)
	if err != nil {
		return nil, err
	}
	return atomIf.Apply(nt, b), nil
}

func dcgNonTerminal(h *Heap, nonTerminal, list, rest Term) (Term, error) {
	pi, args, err := piArgs(h, nonTerminal)
	if err != nil {
		return nil, err
	}
	return pi.Name.Apply(append(append(make([]Term, 0, len(args)+2), args...), list, rest)...), nil
}

func dcgTerminals(h *Heap, terminals, list, rest Term) (Term, error) {
	var elems []Term
	iter := ListIterator{List: terminals, Heap: h}
	for iter.Next() {
		elems = append(elems, iter.Current())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return atomEqual.Apply(list, ListRest(rest, elems...)), nil
}

type dcgConstructor func(h *Heap, args []Term, list, rest Term) (Term, error)

var dcgConstructs map[ProcedureIndicator]dcgConstructor

func init() {
	dcgConstructs = map[ProcedureIndicator]dcgConstructor{
		{Name: atomEmptyList}: func(_ *Heap, _ []Term, list, rest Term) (Term, error) {
			return atomEqual.Apply(list, rest), nil
		},
		{Name: atomDot, Arity: 2}: func(h *Heap, args []Term, list, rest Term) (Term, error) {
			return dcgTerminals(h, atomDot.Apply(args...), list, rest)
		},
		{Name: atomComma, Arity: 2}: func(h *Heap, args []Term, list, rest Term) (Term, error) {
			v := h.NewVariable()
			first, err := dcgBody(h, args[0], list, v)
			if err != nil {
				return nil, err
			}
			second, err := dcgBody(h, args[1], v, rest)
			if err != nil {
				return nil, err
			}
			return atomComma.Apply(first, second), nil
		},
		{Name: atomSemicolon, Arity: 2}: dcgDisjunction,
		{Name: atomBar, Arity: 2}:       dcgDisjunction,
		{Name: atomEmptyBlock, Arity: 1}: func(_ *Heap, args []Term, list, rest Term) (Term, error) {
			return atomComma.Apply(args[0], atomEqual.Apply(list, rest)), nil
		},
		{Name: atomCall, Arity: 1}: func(_ *Heap, args []Term, list, rest Term) (Term, error) {
			return atomCall.Apply(args[0], list, rest), nil
		},
		{Name: "phrase", Arity: 1}: func(_ *Heap, args []Term, list, rest Term) (Term, error) {
			return Atom("phrase").Apply(args[0], list, rest), nil
		},
		{Name: atomCut}: func(_ *Heap, _ []Term, list, rest Term) (Term, error) {
			return atomComma.Apply(atomCut, atomEqual.Apply(list, rest)), nil
		},
		{Name: atomNegation, Arity: 1}: func(h *Heap, args []Term, list, rest Term) (Term, error) {
			g, err := dcgBody(h, args[0], list, h.NewVariable())
			if err != nil {
				return nil, err
			}
			return atomComma.Apply(atomNegation.Apply(g), atomEqual.Apply(list, rest)), nil
		},
		{Name: atomThen, Arity: 2}: func(h *Heap, args []Term, list, rest Term) (Term, error) {
			v := h.NewVariable()
			cond, err := dcgBody(h, args[0], list, v)
			if err != nil {
				return nil, err
			}
			then, err := dcgBody(h, args[1], v, rest)
			if err != nil {
				return nil, err
			}
			return atomThen.Apply(cond, then), nil
		},
	}
}

func dcgDisjunction(h *Heap, args []Term, list, rest Term) (Term, error) {
	either, err := dcgBody(h, args[0], list, rest)
	if err != nil {
		return nil, err
	}
	or, err := dcgBody(h, args[1], list, rest)
	if err != nil {
		return nil, err
	}
	return atomSemicolon.Apply(either, or), nil
}

func dcgBody(h *Heap, t, list, rest Term) (Term, error) {
	t = h.Resolve(t)
	if v, ok := t.(Variable); ok {
		return Atom("phrase").Apply(v, list, rest), nil
	}

	pi, args, err := piArgs(h, t)
	if err != nil {
		return nil, err
	}
	if c, ok := dcgConstructs[pi]; ok {
		return c(h, args, list, rest)
	}
	return dcgNonTerminal(h, t, list, rest)
}

// Phrase2 is phrase/2.
func Phrase2(e *Engine, args []Term, c *Cursor) (bool, error) {
	return Phrase3(e, []Term{args[0], args[1], atomEmptyList}, c)
}

// Phrase3 is phrase/3. It succeeds if the difference list of list and rest satisfies the grammar body.
func Phrase3(e *Engine, args []Term, c *Cursor) (bool, error) {
	h := e.heap
	if c.Init(CursorGoal) {
		if isVariable(h.Resolve(args[0])) {
			c.Stop()
			return false, InstantiationError(h)
		}
		for _, l := range args[1:] {
			switch l := h.Resolve(l).(type) {
			case Variable:
			case Atom:
				if l != atomEmptyList {
					c.Stop()
					return false, TypeError(ValidTypeList, l, h)
				}
			case *Compound:
				if !l.isList() {
					c.Stop()
					return false, TypeError(ValidTypeList, l, h)
				}
			default:
				c.Stop()
				return false, TypeError(ValidTypeList, l, h)
			}
		}
		goal, err := dcgBody(h, args[0], args[1], args[2])
		if err != nil {
			c.Stop()
			return false, err
		}
		c.Goal = e.sub(goal)
		c.KeepBindings()
	}
	ok, err := c.Goal.Next(e.Context())
	switch {
	case err != nil, !ok:
		c.Stop()
		return false, err
	case len(c.Goal.stack) == 0:
		c.Stop()
	}
	return true, nil
}
