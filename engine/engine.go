package engine

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

type frameKind uint8

const (
	frameGoal frameKind = iota
	frameCommit
	frameSoftCommit
)

// frame is a node of a continuation. A continuation is shared by every choice point which captured it.
type frame struct {
	kind    frameKind
	goal    Term
	barrier int
	next    *frame
}

type choiceKind uint8

const (
	choiceAlternative choiceKind = iota
	choiceClauses
	choiceBuiltin
)

type choicePoint struct {
	kind     choiceKind
	mark     int
	cont     *frame
	disabled bool

	// choiceClauses
	goal    Term
	args    []Term
	clauses *ClauseIterator
	pending *Clause

	// choiceBuiltin
	pred   NondetPredicate
	cursor *Cursor
}

// Engine proves a goal. It keeps the choice points so that it can backtrack for more solutions.
// An Engine is not safe for concurrent use.
type Engine struct {
	session *Session
	heap    *Heap
	goal    Term
	ctx     context.Context

	cont  *frame
	stack []*choicePoint
	base  int
	depth int

	started, exhausted bool
}

// Heap returns the heap of the engine.
func (e *Engine) Heap() *Heap {
	return e.heap
}

// Session returns the session which the engine belongs to.
func (e *Engine) Session() *Session {
	return e.session
}

// Goal returns the goal.
func (e *Engine) Goal() Term {
	return e.goal
}

// Context returns the context of the ongoing Next call.
func (e *Engine) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// Next searches for the next solution. It returns true with the variables of the goal bound, false if there are
// no more solutions, or an error. The error is an Exception for an uncaught exception and *HaltError for halt.
func (e *Engine) Next(ctx context.Context) (bool, error) {
	if e.exhausted {
		return false, nil
	}
	if e.session.Disposed() {
		e.Close()
		return false, ErrDisposed
	}
	e.ctx = ctx

	c := Fail()
	if !e.started {
		e.started = true
		e.base = e.heap.Mark()
		e.cont = &frame{goal: e.goal}
		c = Proceed()
	}

	ok, err := e.run(c)
	switch {
	case err != nil:
		e.Close()
	case !ok:
		e.heap.Undo(e.base)
		e.Close()
	}
	return ok, err
}

// Close drops the choice points. Subsequent Next calls return false.
func (e *Engine) Close() {
	e.exhausted = true
	e.cont = nil
	e.stack = nil
}

func (e *Engine) run(c Control) (bool, error) {
	for {
		switch c.Kind {
		case ControlProceed:
			if e.cont == nil {
				return true, nil
			}
			if err := e.check(); err != nil {
				return false, err
			}
			c = e.step()
		case ControlFail:
			if len(e.stack) == 0 {
				return false, nil
			}
			if err := e.check(); err != nil {
				return false, err
			}
			c = e.redo()
		case ControlCut:
			e.cutTo(c.Barrier)
			c = Proceed()
		default:
			return false, c.error()
		}
	}
}

func (e *Engine) check() error {
	if e.session.Disposed() {
		return ErrDisposed
	}
	return e.Context().Err()
}

func (e *Engine) push(cp *choicePoint) int {
	cp.mark = e.heap.Mark()
	e.stack = append(e.stack, cp)
	return len(e.stack) - 1
}

func (e *Engine) cutTo(barrier int) {
	if barrier < len(e.stack) {
		for _, cp := range e.stack[barrier:] {
			if cp.cursor != nil {
				cp.cursor.Close()
			}
		}
		e.stack = e.stack[:barrier]
	}
}

func (e *Engine) step() Control {
	f := e.cont
	e.cont = f.next
	switch f.kind {
	case frameCommit:
		return CutTo(f.barrier)
	case frameSoftCommit:
		if f.barrier < len(e.stack) {
			e.stack[f.barrier].disabled = true
		}
		return Proceed()
	default:
		return e.call(f.goal, f.barrier)
	}
}

func (e *Engine) trace(port string, goal Term) {
	if !e.session.debug.Load() {
		return
	}
	logrus.WithFields(logrus.Fields{
		"goal":    e.heap.Simplify(goal),
		"depth":   e.depth,
		"choices": len(e.stack),
	}).Debug(port)
}

func (e *Engine) call(goal Term, barrier int) Control {
	pi, args, err := piArgs(e.heap, goal)
	if err != nil {
		return controlOf(err)
	}
	e.session.hooks.call(pi)
	e.trace("call", goal)

	if pi.Name == atomCall && pi.Arity >= 1 {
		g, err := extend(e.heap, args[0], args[1:]...)
		if err != nil {
			return controlOf(err)
		}
		e.cont = &frame{goal: g, barrier: len(e.stack), next: e.cont}
		return Proceed()
	}

	switch pi {
	case ProcedureIndicator{Name: atomTrue}:
		return Proceed()
	case ProcedureIndicator{Name: atomFail}, ProcedureIndicator{Name: atomFalse}:
		return Fail()
	case ProcedureIndicator{Name: atomCut}:
		return CutTo(barrier)
	case ProcedureIndicator{Name: atomComma, Arity: 2}:
		e.cont = &frame{goal: args[0], barrier: barrier, next: &frame{goal: args[1], barrier: barrier, next: e.cont}}
		return Proceed()
	case ProcedureIndicator{Name: atomSemicolon, Arity: 2}:
		return e.disjunction(args[0], args[1], barrier)
	case ProcedureIndicator{Name: atomThen, Arity: 2}:
		h := len(e.stack)
		e.cont = &frame{goal: args[0], barrier: h, next: &frame{kind: frameCommit, barrier: h, next: &frame{goal: args[1], barrier: barrier, next: e.cont}}}
		return Proceed()
	case ProcedureIndicator{Name: atomSoftThen, Arity: 2}:
		e.cont = &frame{goal: args[0], barrier: len(e.stack), next: &frame{goal: args[1], barrier: barrier, next: e.cont}}
		return Proceed()
	case ProcedureIndicator{Name: atomNegation, Arity: 1}, ProcedureIndicator{Name: atomNot, Arity: 1}:
		return e.negation(args[0])
	}

	if p, ok := e.session.procedure(pi); ok {
		return e.builtin(p, args)
	}
	return e.procedure(pi, goal, args)
}

func (e *Engine) disjunction(lhs, rhs Term, barrier int) Control {
	if c, ok := e.heap.Resolve(lhs).(*Compound); ok && len(c.Args) == 2 && (c.Functor == atomThen || c.Functor == atomSoftThen) {
		commit := frameCommit
		if c.Functor == atomSoftThen {
			commit = frameSoftCommit
		}
		h := e.push(&choicePoint{kind: choiceAlternative, cont: &frame{goal: rhs, barrier: barrier, next: e.cont}})
		e.cont = &frame{goal: c.Args[0], barrier: h + 1, next: &frame{kind: commit, barrier: h, next: &frame{goal: c.Args[1], barrier: barrier, next: e.cont}}}
		return Proceed()
	}

	// A cut in either disjunct is local to it. It never removes the pending right disjunct.
	h := len(e.stack)
	e.push(&choicePoint{kind: choiceAlternative, cont: &frame{goal: rhs, barrier: h, next: e.cont}})
	e.cont = &frame{goal: lhs, barrier: h + 1, next: e.cont}
	return Proceed()
}

func (e *Engine) negation(goal Term) Control {
	mark := e.heap.Mark()
	ok, err := e.sub(goal).Next(e.Context())
	e.heap.Undo(mark)
	switch {
	case err != nil:
		return controlOf(err)
	case ok:
		return Fail()
	default:
		return Proceed()
	}
}

// sub returns an engine which proves goal on the same heap. It has its own choice points so that a cut in goal
// doesn't reach the parent.
func (e *Engine) sub(goal Term) *Engine {
	return &Engine{
		session: e.session,
		heap:    e.heap,
		goal:    goal,
		ctx:     e.ctx,
		depth:   e.depth + 1,
	}
}

// each runs goal to exhaustion and calls f on every solution until f returns false.
// Bindings made by goal are undone afterwards.
func (e *Engine) each(goal Term, f func() (bool, error)) error {
	mark := e.heap.Mark()
	defer e.heap.Undo(mark)
	sub := e.sub(goal)
	defer sub.Close()
	for {
		ok, err := sub.Next(e.Context())
		if err != nil || !ok {
			return err
		}
		more, err := f()
		if err != nil || !more {
			return err
		}
	}
}

func (e *Engine) builtin(p procedure, args []Term) Control {
	if p.det != nil {
		ok, err := p.det(e, args)
		switch {
		case err != nil:
			return controlOf(err)
		case !ok:
			return Fail()
		default:
			return Proceed()
		}
	}

	i := e.push(&choicePoint{kind: choiceBuiltin, pred: p.nondet, args: args, cursor: &Cursor{}, cont: e.cont})
	return e.resumeBuiltin(i)
}

func (e *Engine) resumeBuiltin(i int) Control {
	cp := e.stack[i]
	ok, err := cp.pred(e, cp.args, cp.cursor)
	if err != nil || cp.cursor.done {
		cp.cursor.Close()
		e.stack = e.stack[:i]
	} else if ok && cp.cursor.keep {
		cp.mark = e.heap.Mark()
	}
	switch {
	case err != nil:
		return controlOf(err)
	case !ok:
		return Fail()
	default:
		e.cont = cp.cont
		return Proceed()
	}
}

func (e *Engine) procedure(pi ProcedureIndicator, goal Term, args []Term) Control {
	cs, ok := e.session.kb.Clauses(pi)
	if !ok {
		return e.unknown(pi)
	}
	cp := choicePoint{
		kind:    choiceClauses,
		goal:    goal,
		args:    args,
		clauses: &ClauseIterator{clauses: cs},
		cont:    e.cont,
	}
	cp.pending = e.candidate(&cp)
	return e.resumeClauses(e.push(&cp))
}

func (e *Engine) unknown(pi ProcedureIndicator) Control {
	switch e.session.flags.unknown() {
	case unknownFail:
		return Fail()
	case unknownWarning:
		logrus.WithField("procedure", pi).Warn("unknown procedure")
		return Fail()
	default:
		return Thrown(ExistenceError(ObjectTypeProcedure, pi.Term(), e.heap))
	}
}

// candidate returns the next clause which may match the goal of cp.
func (e *Engine) candidate(cp *choicePoint) *Clause {
	for {
		c := cp.clauses.Next()
		if c == nil || c.couldMatch(e.heap, cp.args) {
			return c
		}
	}
}

func (e *Engine) resumeClauses(i int) Control {
	cp := e.stack[i]
	for {
		c := cp.pending
		if c == nil {
			e.stack = e.stack[:i]
			return Fail()
		}
		cp.pending = e.candidate(cp)
		last := cp.pending == nil
		if last {
			e.stack = e.stack[:i]
		}

		head, body := c.Instantiate(e.heap)
		if e.heap.Unify(head, cp.goal) {
			e.cont = &frame{goal: body, barrier: i, next: cp.cont}
			return Proceed()
		}
		e.heap.Undo(cp.mark)
		if last {
			return Fail()
		}
	}
}

func (e *Engine) redo() Control {
	i := len(e.stack) - 1
	cp := e.stack[i]
	e.heap.Undo(cp.mark)
	if cp.disabled {
		e.stack = e.stack[:i]
		return Fail()
	}
	e.session.hooks.redo()
	switch cp.kind {
	case choiceAlternative:
		e.stack = e.stack[:i]
		e.cont = cp.cont
		return Proceed()
	case choiceClauses:
		e.trace("redo", cp.goal)
		return e.resumeClauses(i)
	default:
		return e.resumeBuiltin(i)
	}
}

// extend appends args to the callable term t.
func extend(h *Heap, t Term, args ...Term) (Term, error) {
	switch t := h.Resolve(t).(type) {
	case Variable:
		return nil, InstantiationError(h)
	case Atom:
		return t.Apply(args...), nil
	case *Compound:
		if len(args) == 0 {
			return t, nil
		}
		return t.Functor.Apply(append(append(make([]Term, 0, len(t.Args)+len(args)), t.Args...), args...)...), nil
	default:
		return nil, TypeError(ValidTypeCallable, t, h)
	}
}

// Catch is catch/3. Goal runs in a sub-engine. If it raises an exception which unifies with catcher, the bindings
// of goal are undone and recovery runs instead.
func Catch(e *Engine, args []Term, c *Cursor) (bool, error) {
	goal, catcher, recovery := args[0], args[1], args[2]
	if c.Init(CursorGoal) {
		c.Mark = e.heap.Mark()
		c.Goal = e.sub(goal)
		c.KeepBindings()
	}
	for {
		ok, err := c.Goal.Next(e.Context())
		var ex Exception
		if err != nil && !c.Recovering && errors.As(err, &ex) {
			e.heap.Undo(c.Mark)
			if e.heap.Unify(catcher, ex.instantiate(e.heap)) {
				c.Recovering = true
				c.Goal = e.sub(recovery)
				continue
			}
			e.heap.Undo(c.Mark)
		}
		switch {
		case err != nil, !ok:
			c.Stop()
			return false, err
		case len(c.Goal.stack) == 0:
			c.Stop()
		}
		return true, nil
	}
}

// Throw is throw/1.
func Throw(e *Engine, args []Term) (bool, error) {
	ball := e.heap.Resolve(args[0])
	if isVariable(ball) {
		return false, InstantiationError(e.heap)
	}
	return false, NewException(ball, e.heap)
}

// CallNth is call_nth/2. It succeeds on the nth solution of goal, enumerating nth if it's unbound.
func CallNth(e *Engine, args []Term, c *Cursor) (bool, error) {
	if c.Init(CursorGoal) {
		switch n := e.heap.Resolve(args[1]).(type) {
		case Variable:
		case Integer:
			if n < 0 {
				return false, DomainError(ValidDomainNotLessThanZero, n, e.heap)
			}
			if n == 0 {
				c.Stop()
				return false, nil
			}
		default:
			return false, TypeError(ValidTypeInteger, n, e.heap)
		}
		c.Goal = e.sub(args[0])
		c.KeepBindings()
	} else {
		e.heap.Undo(c.Mark)
	}
	nth := e.heap.Resolve(args[1])
	for {
		ok, err := c.Goal.Next(e.Context())
		if err != nil || !ok {
			c.Stop()
			return false, err
		}
		c.Count++
		if n, ok := nth.(Integer); ok {
			if Integer(c.Count) < n {
				continue
			}
			c.Stop()
			return true, nil
		}
		c.Mark = e.heap.Mark()
		return e.heap.Unify(nth, Integer(c.Count)), nil
	}
}
