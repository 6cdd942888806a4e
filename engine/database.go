package engine

import (
	"io"

	"github.com/sirupsen/logrus"
)

// AssertA is asserta/1.
func AssertA(e *Engine, args []Term) (bool, error) {
	if err := e.session.kb.AssertA(e.heap, args[0]); err != nil {
		return false, err
	}
	return true, nil
}

// AssertZ is assertz/1 and assert/1.
func AssertZ(e *Engine, args []Term) (bool, error) {
	if err := e.session.kb.AssertZ(e.heap, args[0]); err != nil {
		return false, err
	}
	return true, nil
}

// RetractA is retract/1 and retracta/1. It removes the first matching clause and binds the pattern to it.
func RetractA(e *Engine, args []Term) (bool, error) {
	if err := e.checkRetract(args[0]); err != nil {
		return false, err
	}
	return e.session.kb.RetractA(e.heap, args[0])
}

// RetractZ is retractz/1. It removes the last matching clause. The pattern is left unbound.
func RetractZ(e *Engine, args []Term) (bool, error) {
	if err := e.checkRetract(args[0]); err != nil {
		return false, err
	}
	return e.session.kb.RetractZ(e.heap, args[0])
}

// RetractAll is retractall/1. It succeeds even if nothing matched.
func RetractAll(e *Engine, args []Term) (bool, error) {
	if err := e.checkRetract(args[0]); err != nil {
		return false, err
	}
	_, err := e.session.kb.RetractAll(e.heap, args[0])
	return err == nil, err
}

func (e *Engine) checkRetract(pattern Term) error {
	head, _ := Rulify(e.heap, pattern)
	switch h := e.heap.Resolve(head).(type) {
	case Variable:
		return InstantiationError(e.heap)
	case Atom, *Compound:
		return nil
	default:
		return TypeError(ValidTypeCallable, h, e.heap)
	}
}

// Abolish is abolish/1.
func Abolish(e *Engine, args []Term) (bool, error) {
	pi, err := NewProcedureIndicator(e.heap, args[0])
	if err != nil {
		return false, err
	}
	if err := e.session.kb.Abolish(e.heap, pi); err != nil {
		return false, err
	}
	return true, nil
}

// Dynamic is dynamic/1. It takes a predicate indicator, a sequence of them separated by commas, or a list.
func Dynamic(e *Engine, args []Term) (bool, error) {
	h := e.heap
	var pis []Term
	switch t := h.Resolve(args[0]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case *Compound:
		switch {
		case t.isList():
			var err error
			pis, err = Slice(h, t)
			if err != nil {
				return false, err
			}
		case t.Functor == atomComma && len(t.Args) == 2:
			pis = flattenConjunction(h, t)
		default:
			pis = []Term{t}
		}
	default:
		pis = []Term{t}
	}
	for _, t := range pis {
		pi, err := NewProcedureIndicator(h, t)
		if err != nil {
			return false, err
		}
		if err := e.session.kb.Declare(h, pi); err != nil {
			return false, err
		}
	}
	return true, nil
}

// ClausePredicate is clause/2.
func ClausePredicate(e *Engine, args []Term, c *Cursor) (bool, error) {
	h := e.heap
	head, body := args[0], args[1]
	if c.Init(CursorClauses) {
		pi, _, err := piArgs(h, head)
		if err != nil {
			c.Stop()
			return false, err
		}
		switch b := h.Resolve(body).(type) {
		case Variable, Atom, *Compound:
		default:
			c.Stop()
			return false, TypeError(ValidTypeCallable, b, h)
		}
		if e.session.IsBuiltin(pi) {
			c.Stop()
			return false, PermissionError(OperationAccess, PermissionTypePrivateProcedure, pi.Term(), h)
		}
		c.Clauses = e.session.kb.Iterate(ClauseAny, pi)
	}
	return e.nextClause(c, func(cl *Clause) bool {
		ch, cb := cl.Instantiate(h)
		return h.Unify(head, ch) && h.Unify(body, cb)
	})
}

// nextClause tries the clauses of the cursor until match succeeds.
func (e *Engine) nextClause(c *Cursor, match func(*Clause) bool) (bool, error) {
	mark := e.heap.Mark()
	for {
		cl := c.Clauses.Next()
		if cl == nil {
			c.Stop()
			return false, nil
		}
		if c.Clauses.peek() == nil {
			c.Stop()
		}
		if match(cl) {
			return true, nil
		}
		e.heap.Undo(mark)
		if c.Done() {
			return false, nil
		}
	}
}

// Facts is facts/1. It enumerates the facts which unify with the template.
func Facts(e *Engine, args []Term, c *Cursor) (bool, error) {
	return e.iterate(ClauseFacts, args[0], c)
}

// Rules is rules/1. It enumerates the heads of the rules which unify with the template.
func Rules(e *Engine, args []Term, c *Cursor) (bool, error) {
	return e.iterate(ClauseRules, args[0], c)
}

func (e *Engine) iterate(kind ClauseKind, template Term, c *Cursor) (bool, error) {
	h := e.heap
	if c.Init(CursorClauses) {
		pi, _, err := piArgs(h, template)
		if err != nil {
			c.Stop()
			return false, err
		}
		c.Clauses = e.session.kb.Iterate(kind, pi)
	}
	return e.nextClause(c, func(cl *Clause) bool {
		ch, _ := cl.Instantiate(h)
		return h.Unify(template, ch)
	})
}

// CurrentPredicate is current_predicate/1. It enumerates the procedures in the knowledge base.
func CurrentPredicate(e *Engine, args []Term, c *Cursor) (bool, error) {
	return e.currentPredicate(args[0], c, false)
}

// CurrentPredicateAll is current_predicate_all/1. It enumerates the builtins as well.
func CurrentPredicateAll(e *Engine, args []Term, c *Cursor) (bool, error) {
	return e.currentPredicate(args[0], c, true)
}

func (e *Engine) currentPredicate(pi Term, c *Cursor, builtins bool) (bool, error) {
	h := e.heap
	if c.Init(CursorTerms) {
		switch p := h.Resolve(pi).(type) {
		case Variable:
		case *Compound:
			if p.Functor != atomSlash || len(p.Args) != 2 {
				c.Stop()
				return false, TypeError(ValidTypePredicateIndicator, p, h)
			}
			switch n := h.Resolve(p.Args[0]).(type) {
			case Variable, Atom:
			default:
				c.Stop()
				return false, TypeError(ValidTypePredicateIndicator, n, h)
			}
			switch a := h.Resolve(p.Args[1]).(type) {
			case Variable, Integer:
			default:
				c.Stop()
				return false, TypeError(ValidTypePredicateIndicator, a, h)
			}
		default:
			c.Stop()
			return false, TypeError(ValidTypePredicateIndicator, p, h)
		}

		pis := e.session.kb.Predicates()
		if builtins {
			for p := range *e.session.procs.Load() {
				pis = append(pis, p)
			}
			pis = append(pis, controlConstructs...)
		}
		for _, p := range pis {
			c.Terms = append(c.Terms, p.Term())
		}
		c.Terms = SortedSet(h, c.Terms)
	}
	t := c.Term()
	if t == nil {
		return false, nil
	}
	return h.Unify(pi, t), nil
}

// CurrentOp is current_op/3.
func CurrentOp(e *Engine, args []Term, c *Cursor) (bool, error) {
	h := e.heap
	priority, specifier, name := args[0], args[1], args[2]
	if c.Init(CursorTerms) {
		switch p := h.Resolve(priority).(type) {
		case Variable:
		case Integer:
			if p < 0 || p > 1200 {
				c.Stop()
				return false, DomainError(ValidDomainOperatorPriority, p, h)
			}
		default:
			c.Stop()
			return false, DomainError(ValidDomainOperatorPriority, p, h)
		}
		switch s := h.Resolve(specifier).(type) {
		case Variable:
		case Atom:
			if _, ok := specifiers[s]; !ok {
				c.Stop()
				return false, DomainError(ValidDomainOperatorSpecifier, s, h)
			}
		default:
			c.Stop()
			return false, DomainError(ValidDomainOperatorSpecifier, s, h)
		}
		switch n := h.Resolve(name).(type) {
		case Variable, Atom:
		default:
			c.Stop()
			return false, TypeError(ValidTypeAtom, n, h)
		}

		for _, o := range e.session.ops.All() {
			c.Terms = append(c.Terms, Atom("op").Apply(o.Priority, o.Specifier.Term(), o.Name))
		}
	}
	t := c.Term()
	if t == nil {
		return false, nil
	}
	return h.Unify(Atom("op").Apply(priority, specifier, name), t), nil
}

// Op is op/3. The name can be an atom or a list of atoms. A priority 0 removes the definition.
func Op(e *Engine, args []Term) (bool, error) {
	h := e.heap
	var p Integer
	switch t := h.Resolve(args[0]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case Integer:
		if t < 0 || t > 1200 {
			return false, DomainError(ValidDomainOperatorPriority, t, h)
		}
		p = t
	default:
		return false, TypeError(ValidTypeInteger, t, h)
	}

	var spec OperatorSpecifier
	switch t := h.Resolve(args[1]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case Atom:
		s, ok := specifiers[t]
		if !ok {
			return false, DomainError(ValidDomainOperatorSpecifier, t, h)
		}
		spec = s
	default:
		return false, TypeError(ValidTypeAtom, t, h)
	}

	var names []Term
	switch t := h.Resolve(args[2]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case Atom:
		names = []Term{t}
	case *Compound:
		if !t.isList() {
			return false, TypeError(ValidTypeList, t, h)
		}
		var err error
		names, err = Slice(h, t)
		if err != nil {
			return false, err
		}
	default:
		return false, TypeError(ValidTypeList, t, h)
	}

	for _, n := range names {
		name, ok := n.(Atom)
		if !ok {
			if isVariable(n) {
				return false, InstantiationError(h)
			}
			return false, TypeError(ValidTypeAtom, n, h)
		}
		if name == atomComma || name == atomEmptyList || name == atomEmptyBlock {
			return false, PermissionError(OperationModify, PermissionTypeOperator, name, h)
		}
		if err := e.session.ops.Define(p, spec, name); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Listing0 is listing/0. It writes every clause of the knowledge base to the current output.
func Listing0(e *Engine, _ []Term) (bool, error) {
	s := e.session
	return true, s.streams.write(func(w io.Writer) error {
		return s.kb.Listing(w, s.ops)
	})
}

// Listing1 is listing/1. It writes the clauses of either a procedure indicator or every procedure of the name.
func Listing1(e *Engine, args []Term) (bool, error) {
	h, s := e.heap, e.session
	var pis []ProcedureIndicator
	switch t := h.Resolve(args[0]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case Atom:
		for _, pi := range s.kb.Predicates() {
			if pi.Name == t {
				pis = append(pis, pi)
			}
		}
	default:
		pi, err := NewProcedureIndicator(h, t)
		if err != nil {
			return false, err
		}
		pis = append(pis, pi)
	}
	return true, s.streams.write(func(w io.Writer) error {
		for _, pi := range pis {
			if err := s.kb.ListingOf(w, pi, s.ops); err != nil {
				return err
			}
		}
		return nil
	})
}

// RegTrigger is regtrigger/3. Handler is called as call(Handler, Event, Name/Arity) on every change of
// the procedure. Event is onassert, onretract, or onassertretract.
func RegTrigger(e *Engine, args []Term) (bool, error) {
	h, s := e.heap, e.session
	pi, err := NewProcedureIndicator(h, args[0])
	if err != nil {
		return false, err
	}
	var kind TriggerKind
	switch t := h.Resolve(args[1]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case Atom:
		k, ok := triggerKinds[t]
		if !ok {
			return false, DomainError(ValidDomainTriggerEvent, t, h)
		}
		kind = k
	default:
		return false, TypeError(ValidTypeAtom, t, h)
	}
	handler := h.Resolve(args[2])
	switch handler.(type) {
	case Variable:
		return false, InstantiationError(h)
	case Atom, *Compound:
	default:
		return false, TypeError(ValidTypeCallable, handler, h)
	}

	frozen, n := h.freeze(handler)
	s.RegisterTrigger(&Trigger{
		Signatures: map[ProcedureIndicator]TriggerKind{pi: kind},
		Handler: func(ev TriggerEvent) {
			var heap Heap
			goal := atomCall.Apply(heap.instantiate(frozen, n), eventAtom(ev.Kind), ev.Signature.Term())
			ok, err := s.Submit(&heap, goal).Next(s.async.ctx)
			log := logrus.WithFields(logrus.Fields{
				"signature": ev.Signature,
				"handler":   frozen,
			})
			switch {
			case err != nil:
				log.WithError(err).Warn("trigger handler failed")
			case !ok:
				log.Debug("trigger handler failed")
			}
		},
	})
	return true, nil
}

func eventAtom(k TriggerKind) Atom {
	for a, v := range triggerKinds {
		if v == k {
			return a
		}
	}
	return ""
}
