package engine

import (
	"errors"
	"io"
	"maps"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Predicate is a deterministic builtin predicate. It either succeeds or fails once.
type Predicate func(e *Engine, args []Term) (bool, error)

// NondetPredicate is a nondeterministic builtin predicate. It's called again with the same Cursor on
// backtracking until it calls Cursor.Stop.
type NondetPredicate func(e *Engine, args []Term, c *Cursor) (bool, error)

type procedure struct {
	det    Predicate
	nondet NondetPredicate
}

// Hooks are called on the events of the resolution. They must be safe for concurrent use if the session runs
// async goals.
type Hooks struct {
	OnCall   func(ProcedureIndicator)
	OnRedo   func()
	OnChange func(TriggerEvent)
}

func (h *Hooks) call(pi ProcedureIndicator) {
	if h.OnCall != nil {
		h.OnCall(pi)
	}
}

func (h *Hooks) redo() {
	if h.OnRedo != nil {
		h.OnRedo()
	}
}

// Session holds the knowledge base, the operators, the flags, the triggers and the named locks.
// Goals of a session can run concurrently each on its own Engine.
type Session struct {
	ID uuid.UUID

	kb    *KnowledgeBase
	ops   *Operators
	flags *flags
	hooks Hooks
	debug atomic.Bool

	procMu sync.Mutex
	procs  atomic.Pointer[map[ProcedureIndicator]procedure]

	locks   lockTable
	async   *asyncPool
	workers int
	streams *streams

	disposed atomic.Bool
	dispose  sync.Once
	haltMu   sync.Mutex
	onHalt   []func()
}

// Option configures a Session.
type Option func(*Session)

// WithHooks sets hooks.
func WithHooks(h Hooks) Option {
	return func(s *Session) {
		s.hooks = h
	}
}

// WithAsyncWorkers limits the number of async goals running at the same time.
func WithAsyncWorkers(n int) Option {
	return func(s *Session) {
		s.workers = n
	}
}

// WithIOProvider sets the provider of named readers and writers.
func WithIOProvider(p IOProvider) Option {
	return func(s *Session) {
		s.streams.provider = p
	}
}

// WithUserInput sets the reader of user.
func WithUserInput(r io.Reader) Option {
	return func(s *Session) {
		s.streams.setUserInput(r)
	}
}

// WithUserOutput sets the writer of user.
func WithUserOutput(w io.Writer) Option {
	return func(s *Session) {
		s.streams.setUserOutput(w)
	}
}

// NewSession creates a session with the builtin predicates and the standard operators.
func NewSession(opts ...Option) *Session {
	s := Session{
		ID:      uuid.New(),
		kb:      NewKnowledgeBase(),
		ops:     NewOperators(),
		flags:   newFlags(),
		streams: newStreams(),
	}
	procs := registerBuiltins()
	s.procs.Store(&procs)
	for pi := range procs {
		s.kb.Protect(pi)
	}
	for _, pi := range controlConstructs {
		s.kb.Protect(pi)
	}
	for _, o := range opts {
		o(&s)
	}
	s.async = newAsyncPool(s.workers)
	s.kb.Observe(s.hooks.OnChange)
	s.applyFlags()
	logrus.WithField("session", s.ID).Info("session created")
	return &s
}

// KnowledgeBase returns the knowledge base.
func (s *Session) KnowledgeBase() *KnowledgeBase {
	return s.kb
}

// Operators returns the operator table.
func (s *Session) Operators() *Operators {
	return s.ops
}

func (s *Session) procedure(pi ProcedureIndicator) (procedure, bool) {
	p, ok := (*s.procs.Load())[pi]
	return p, ok
}

func (s *Session) register(pi ProcedureIndicator, p procedure) {
	s.procMu.Lock()
	defer s.procMu.Unlock()
	procs := maps.Clone(*s.procs.Load())
	procs[pi] = p
	s.procs.Store(&procs)
	s.kb.Protect(pi)
}

// Register defines a deterministic builtin predicate name/arity.
func (s *Session) Register(name string, arity int, p Predicate) {
	s.register(ProcedureIndicator{Name: Atom(name), Arity: arity}, procedure{det: p})
}

// RegisterNondet defines a nondeterministic builtin predicate name/arity.
func (s *Session) RegisterNondet(name string, arity int, p NondetPredicate) {
	s.register(ProcedureIndicator{Name: Atom(name), Arity: arity}, procedure{nondet: p})
}

// IsBuiltin checks if pi is a control construct or a builtin predicate.
func (s *Session) IsBuiltin(pi ProcedureIndicator) bool {
	if _, ok := s.procedure(pi); ok {
		return true
	}
	for _, c := range controlConstructs {
		if c == pi {
			return true
		}
	}
	return pi.Name == atomCall && pi.Arity >= 1
}

// Flag returns the value of the flag name.
func (s *Session) Flag(name string) (Term, bool) {
	return s.flags.get(Atom(name))
}

// SetFlag changes the value of the flag name.
func (s *Session) SetFlag(name string, value Term) error {
	if err := s.flags.set(nil, Atom(name), value); err != nil {
		return err
	}
	s.applyFlags()
	return nil
}

func (s *Session) applyFlags() {
	s.flags.mu.RLock()
	defer s.flags.mu.RUnlock()
	s.kb.SetVerify(s.flags.verify)
	s.debug.Store(s.flags.debug)
}

// Submit returns an engine which proves goal on h.
func (s *Session) Submit(h *Heap, goal Term) *Engine {
	return &Engine{
		session: s,
		heap:    h,
		goal:    goal,
	}
}

// NewParser returns a parser which reads terms from r with the operators and the flags of the session.
func (s *Session) NewParser(r io.RuneReader, h *Heap) *Parser {
	p := NewParser(r, s.ops, h)
	p.DoubleQuotes = s.flags.quotes()
	return p
}

// Query parses text as a goal and returns an engine to prove it along with the variables in the goal.
// The trailing period is optional. Every ? in text is replaced with the corresponding element of args.
func (s *Session) Query(text string, args ...any) (*Engine, []ParsedVariable, error) {
	if s.Disposed() {
		return nil, nil, ErrDisposed
	}
	var h Heap
	t, vars, err := s.parseGoal(&h, text, args)
	if err != nil {
		return nil, nil, err
	}
	return s.Submit(&h, t), vars, nil
}

func (s *Session) parseGoal(h *Heap, text string, args []any) (Term, []ParsedVariable, error) {
	parse := func(text string) (Term, *Parser, error) {
		p := s.NewParser(strings.NewReader(text), h)
		if err := p.SetPlaceholder("?", args...); err != nil {
			return nil, nil, err
		}
		t, err := p.Term()
		return t, p, err
	}
	t, p, err := parse(text)
	if errors.Is(err, ErrInsufficient) {
		t, p, err = parse(text + " .")
	}
	if err != nil {
		return nil, nil, err
	}
	return t, p.Vars, nil
}

// Prepared is a parsed goal which doesn't belong to any heap. It can be submitted any number of times.
type Prepared struct {
	goal Term
	n    int
	vars []ParsedVariable
}

// Prepare parses text as a goal in the same way as Query but doesn't start proving it.
func (s *Session) Prepare(text string, args ...any) (*Prepared, error) {
	var h Heap
	t, vars, err := s.parseGoal(&h, text, args)
	if err != nil {
		return nil, err
	}
	m := map[Variable]Variable{}
	p := Prepared{goal: h.freezeWith(t, m), vars: make([]ParsedVariable, len(vars))}
	p.n = len(m)
	for i, v := range vars {
		v.Variable = m[v.Variable]
		p.vars[i] = v
	}
	return &p, nil
}

// Submit returns an engine which proves the goal on a fresh heap along with the variables of the goal.
func (p *Prepared) Submit(s *Session) (*Engine, []ParsedVariable) {
	var h Heap
	base := Variable(h.alloc(p.n))
	vars := make([]ParsedVariable, len(p.vars))
	for i, v := range p.vars {
		v.Variable += base
		vars[i] = v
	}
	return s.Submit(&h, relocate(p.goal, base)), vars
}

// RegisterTrigger registers t to observe changes of the knowledge base.
func (s *Session) RegisterTrigger(t *Trigger) {
	s.kb.RegisterTrigger(t)
}

// UnregisterTrigger removes t.
func (s *Session) UnregisterTrigger(t *Trigger) {
	s.kb.UnregisterTrigger(t)
}

// OnHalt adds f to the functions called once when the session is disposed.
func (s *Session) OnHalt(f func()) {
	s.haltMu.Lock()
	defer s.haltMu.Unlock()
	s.onHalt = append(s.onHalt, f)
}

// Disposed reports whether the session is disposed.
func (s *Session) Disposed() bool {
	return s.disposed.Load()
}

// Dispose stops the session. Running goals fail with ErrDisposed at their next step, async goals are cancelled
// and new goals are rejected. Triggers and OnHalt functions are notified once.
func (s *Session) Dispose() {
	s.dispose.Do(func() {
		s.disposed.Store(true)
		s.async.cancel()
		s.kb.Halt()

		s.haltMu.Lock()
		onHalt := s.onHalt
		s.onHalt = nil
		s.haltMu.Unlock()
		for _, f := range onHalt {
			f()
		}

		if err := s.streams.close(); err != nil {
			logrus.WithError(err).Warn("failed to close streams")
		}
		logrus.WithField("session", s.ID).Info("session disposed")
	})
}

// Copy returns a new session with copies of the knowledge base, the operators and the flags.
// Triggers, locks, async goals and open streams are not copied.
func (s *Session) Copy() *Session {
	c := Session{
		ID:      uuid.New(),
		kb:      s.kb.Copy(),
		ops:     s.ops.Copy(),
		flags:   s.flags.copy(),
		hooks:   s.hooks,
		workers: s.workers,
		streams: s.streams.fork(),
	}
	c.procs.Store(s.procs.Load())
	c.async = newAsyncPool(c.workers)
	c.kb.Observe(c.hooks.OnChange)
	c.applyFlags()
	logrus.WithFields(logrus.Fields{
		"session": c.ID,
		"origin":  s.ID,
	}).Info("session copied")
	return &c
}
