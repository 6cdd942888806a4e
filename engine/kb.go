package engine

import (
	"io"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/logicbase/prolog/internal/rbtree"
)

// ClauseKind filters clauses by their shape.
type ClauseKind uint8

// ClauseKind is one of these values.
const (
	ClauseAny ClauseKind = iota
	ClauseFacts
	ClauseRules
)

func (k ClauseKind) accepts(c *Clause) bool {
	switch k {
	case ClauseFacts:
		return c.IsFact()
	case ClauseRules:
		return !c.IsFact()
	default:
		return true
	}
}

type predicate struct {
	pi      ProcedureIndicator
	clauses []*Clause
	owner   *KnowledgeBase
	defined bool
}

// KnowledgeBase stores clauses by their signatures. It is safe for concurrent use.
// Clause lists are never modified in place once shared so that iterators see a consistent snapshot.
type KnowledgeBase struct {
	mu       sync.RWMutex
	preds    rbtree.Map[string, predicate]
	static   map[ProcedureIndicator]struct{}
	triggers triggers
	observer func(TriggerEvent)
	lenient  atomic.Bool
}

// NewKnowledgeBase returns an empty knowledge base.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		static: map[ProcedureIndicator]struct{}{},
	}
}

func signature(pi ProcedureIndicator) string {
	return string(pi.Name) + "/" + strconv.Itoa(pi.Arity)
}

// Protect marks pi as a static procedure which can't be modified.
func (kb *KnowledgeBase) Protect(pi ProcedureIndicator) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.static[pi] = struct{}{}
}

// IsStatic checks if pi is a static procedure.
func (kb *KnowledgeBase) IsStatic(pi ProcedureIndicator) bool {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	_, ok := kb.static[pi]
	return ok
}

// SetVerify turns on or off the check which rejects changes of static procedures.
// Clauses of a static procedure added with the check off are stored but never called.
func (kb *KnowledgeBase) SetVerify(b bool) {
	kb.lenient.Store(!b)
}

// Observe sets f to be called on every change after the triggers are notified.
func (kb *KnowledgeBase) Observe(f func(TriggerEvent)) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.observer = f
}

func (kb *KnowledgeBase) notify(pi ProcedureIndicator, kind TriggerKind) {
	kb.triggers.notify(pi, kind)
	kb.mu.RLock()
	f := kb.observer
	kb.mu.RUnlock()
	if f != nil {
		f(TriggerEvent{Signature: pi, Kind: kind})
	}
}

// Halt notifies the triggers that the knowledge base is no longer used.
func (kb *KnowledgeBase) Halt() {
	kb.triggers.halt()
}

func (kb *KnowledgeBase) modifiable(pi ProcedureIndicator, h *Heap) error {
	if kb.lenient.Load() {
		return nil
	}
	if _, ok := kb.static[pi]; ok {
		return PermissionError(OperationModify, PermissionTypeStaticProcedure, pi.Term(), h)
	}
	return nil
}

// AssertA adds a clause at the beginning of the clause list of its procedure.
func (kb *KnowledgeBase) AssertA(h *Heap, t Term) error {
	return kb.assert(h, t, func(cs []*Clause, c *Clause, _ bool) []*Clause {
		return append([]*Clause{c}, cs...)
	})
}

// AssertZ adds a clause at the end of the clause list of its procedure.
func (kb *KnowledgeBase) AssertZ(h *Heap, t Term) error {
	return kb.assert(h, t, func(cs []*Clause, c *Clause, owned bool) []*Clause {
		if owned {
			return append(cs, c)
		}
		return append(slices.Clip(cs), c)
	})
}

func (kb *KnowledgeBase) assert(h *Heap, t Term, add func([]*Clause, *Clause, bool) []*Clause) error {
	c, err := NewClause(h, t)
	if err != nil {
		return err
	}

	kb.mu.Lock()
	if err := kb.modifiable(c.pi, h); err != nil {
		kb.mu.Unlock()
		return err
	}
	key := signature(c.pi)
	p, _ := kb.preds.Get(key)
	kb.preds.Set(key, predicate{
		pi:      c.pi,
		clauses: add(p.clauses, c, p.owner == kb),
		owner:   kb,
		defined: true,
	})
	kb.preds.Compact()
	kb.mu.Unlock()

	kb.notify(c.pi, TriggerAssert)
	return nil
}

// Declare defines pi as a procedure without clauses if it's not defined yet.
func (kb *KnowledgeBase) Declare(h *Heap, pi ProcedureIndicator) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if err := kb.modifiable(pi, h); err != nil {
		return err
	}
	key := signature(pi)
	if p, ok := kb.preds.Get(key); ok && p.defined {
		return nil
	}
	kb.preds.Set(key, predicate{pi: pi, owner: kb, defined: true})
	return nil
}

func (kb *KnowledgeBase) retractTarget(h *Heap, pattern Term) (ProcedureIndicator, Term, Term, error) {
	head, body := Rulify(h, pattern)
	pi, _, err := piArgs(h, head)
	if err != nil {
		return ProcedureIndicator{}, nil, nil, err
	}
	return pi, head, body, nil
}

func isRule(h *Heap, t Term) bool {
	c, ok := h.Resolve(t).(*Compound)
	return ok && c.Functor == atomIf && len(c.Args) == 2
}

func (kb *KnowledgeBase) matches(h *Heap, c *Clause, head, body Term, headOnly bool) (Term, Term, bool) {
	ch, cb := c.Instantiate(h)
	if headOnly {
		return ch, cb, h.DryUnify(ch, head)
	}
	return ch, cb, h.DryUnify(atomIf.Apply(ch, cb), atomIf.Apply(head, body))
}

func (kb *KnowledgeBase) remove(p predicate, i int) {
	cs := make([]*Clause, 0, len(p.clauses)-1)
	cs = append(cs, p.clauses[:i]...)
	cs = append(cs, p.clauses[i+1:]...)
	p.clauses, p.owner = cs, kb
	kb.preds.Set(signature(p.pi), p)
	kb.preds.Compact()
}

// RetractA removes the first clause which head and body unify with the pattern and then binds the pattern.
func (kb *KnowledgeBase) RetractA(h *Heap, pattern Term) (bool, error) {
	pi, head, body, err := kb.retractTarget(h, pattern)
	if err != nil {
		return false, err
	}

	kb.mu.Lock()
	if err := kb.modifiable(pi, h); err != nil {
		kb.mu.Unlock()
		return false, err
	}
	p, _ := kb.preds.Get(signature(pi))
	for i, c := range p.clauses {
		ch, cb, ok := kb.matches(h, c, head, body, false)
		if !ok {
			continue
		}
		kb.remove(p, i)
		kb.mu.Unlock()

		h.Unify(atomIf.Apply(ch, cb), atomIf.Apply(head, body))
		kb.notify(pi, TriggerRetract)
		return true, nil
	}
	kb.mu.Unlock()
	return false, nil
}

// RetractZ removes the last clause which head and body unify with the pattern. It doesn't bind the pattern.
func (kb *KnowledgeBase) RetractZ(h *Heap, pattern Term) (bool, error) {
	pi, head, body, err := kb.retractTarget(h, pattern)
	if err != nil {
		return false, err
	}

	kb.mu.Lock()
	if err := kb.modifiable(pi, h); err != nil {
		kb.mu.Unlock()
		return false, err
	}
	p, _ := kb.preds.Get(signature(pi))
	for i := len(p.clauses) - 1; i >= 0; i-- {
		if _, _, ok := kb.matches(h, p.clauses[i], head, body, false); !ok {
			continue
		}
		kb.remove(p, i)
		kb.mu.Unlock()

		kb.notify(pi, TriggerRetract)
		return true, nil
	}
	kb.mu.Unlock()
	return false, nil
}

// RetractAll removes every clause which unifies with the pattern. If the pattern is not a rule, only heads are
// matched. It reports whether any clause was removed.
func (kb *KnowledgeBase) RetractAll(h *Heap, pattern Term) (bool, error) {
	pi, head, body, err := kb.retractTarget(h, pattern)
	if err != nil {
		return false, err
	}
	rule := isRule(h, pattern)

	kb.mu.Lock()
	if err := kb.modifiable(pi, h); err != nil {
		kb.mu.Unlock()
		return false, err
	}
	key := signature(pi)
	p, _ := kb.preds.Get(key)
	kept := make([]*Clause, 0, len(p.clauses))
	for _, c := range p.clauses {
		if _, _, ok := kb.matches(h, c, head, body, !rule); !ok {
			kept = append(kept, c)
		}
	}
	removed := len(kept) < len(p.clauses)
	kb.preds.Set(key, predicate{pi: pi, clauses: kept, owner: kb, defined: true})
	kb.preds.Compact()
	kb.mu.Unlock()

	if removed {
		kb.notify(pi, TriggerRetract)
	}
	return removed, nil
}

// Abolish removes the procedure pi altogether.
func (kb *KnowledgeBase) Abolish(h *Heap, pi ProcedureIndicator) error {
	kb.mu.Lock()
	if err := kb.modifiable(pi, h); err != nil {
		kb.mu.Unlock()
		return err
	}
	key := signature(pi)
	p, ok := kb.preds.Get(key)
	if !ok || !p.defined {
		kb.mu.Unlock()
		return nil
	}
	kb.preds.Set(key, predicate{pi: pi})
	kb.preds.Compact()
	kb.mu.Unlock()

	if len(p.clauses) > 0 {
		kb.notify(pi, TriggerRetract)
	}
	return nil
}

// Clauses returns a snapshot of the clauses of pi and whether pi is defined.
func (kb *KnowledgeBase) Clauses(pi ProcedureIndicator) ([]*Clause, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	p, ok := kb.preds.Get(signature(pi))
	return slices.Clip(p.clauses), ok && p.defined
}

// Iterate returns an iterator over a snapshot of the clauses of pi filtered by kind.
// Changes made after the call are not visible to the iterator.
func (kb *KnowledgeBase) Iterate(kind ClauseKind, pi ProcedureIndicator) *ClauseIterator {
	cs, _ := kb.Clauses(pi)
	return &ClauseIterator{clauses: cs, kind: kind}
}

// Predicates returns the defined procedures in signature order.
func (kb *KnowledgeBase) Predicates() []ProcedureIndicator {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	var ret []ProcedureIndicator
	for _, p := range kb.preds.All() {
		if p.defined {
			ret = append(ret, p.pi)
		}
	}
	return ret
}

// Copy returns a knowledge base with the same clauses. The copy and the original are independent afterwards.
// Triggers are not copied.
func (kb *KnowledgeBase) Copy() *KnowledgeBase {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	c := KnowledgeBase{
		preds:  kb.preds.Clone(),
		static: make(map[ProcedureIndicator]struct{}, len(kb.static)),
	}
	for pi := range kb.static {
		c.static[pi] = struct{}{}
	}
	return &c
}

// Listing writes every clause of the knowledge base in signature order.
func (kb *KnowledgeBase) Listing(w io.Writer, ops *Operators) error {
	for _, pi := range kb.Predicates() {
		if err := kb.ListingOf(w, pi, ops); err != nil {
			return err
		}
	}
	return nil
}

// ListingOf writes the clauses of pi followed by an empty line.
func (kb *KnowledgeBase) ListingOf(w io.Writer, pi ProcedureIndicator, ops *Operators) error {
	cs, _ := kb.Clauses(pi)
	if len(cs) == 0 {
		return nil
	}
	for _, c := range cs {
		if err := WriteClause(w, numberVars(c.Term()), nil, ops); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// numberVars replaces variables of a template with '$VAR'(N).
func numberVars(t Term) Term {
	switch t := t.(type) {
	case Variable:
		return atomVar.Apply(Integer(t))
	case *Compound:
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = numberVars(a)
		}
		return &Compound{Functor: t.Functor, Args: args}
	default:
		return t
	}
}

// ClauseIterator iterates over a snapshot of clauses.
type ClauseIterator struct {
	clauses []*Clause
	kind    ClauseKind
	pos     int
}

// Next returns the next clause or nil if there are no more clauses.
func (i *ClauseIterator) Next() *Clause {
	for i.pos < len(i.clauses) {
		c := i.clauses[i.pos]
		i.pos++
		if i.kind.accepts(c) {
			return c
		}
	}
	return nil
}

// peek returns the next clause without advancing.
func (i *ClauseIterator) peek() *Clause {
	pos := i.pos
	c := i.Next()
	i.pos = pos
	return c
}

// RegisterTrigger registers t to observe changes of the procedures in t.Signatures.
func (kb *KnowledgeBase) RegisterTrigger(t *Trigger) {
	kb.triggers.register(t)
}

// UnregisterTrigger removes t from the observers.
func (kb *KnowledgeBase) UnregisterTrigger(t *Trigger) {
	kb.triggers.unregister(t)
}
