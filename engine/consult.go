package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrDirectiveFailed is returned by Consult when a directive fails.
var ErrDirectiveFailed = errors.New("directive failed")

// Binding is a named variable of a query and its value.
type Binding struct {
	Name  Atom
	Value Term
}

func (b Binding) String() string {
	return fmt.Sprintf("%s = %s", string(b.Name), b.Value)
}

// Interactor answers queries ?- G found in consulted text.
type Interactor interface {
	// OnGoal is called before the goal is proved. Returning false skips the goal.
	OnGoal(goal string) bool

	// OnSolution is called on the nth solution. Returning false stops the search.
	OnSolution(bindings []Binding, n int) bool

	// OnFail is called when there are no more solutions after n solutions.
	OnFail(goal string, n int)
}

// Consult reads clauses and directives from r. Clauses are added to the end of their procedures,
// H --> B are translated as DCG rules, directives :- G are proved once, and queries ?- G are handed to in.
// An error is annotated with the position of the term which caused it.
func (s *Session) Consult(ctx context.Context, r io.Reader, in Interactor) error {
	p := s.NewParser(bufio.NewReader(r), nil)
	for {
		if s.Disposed() {
			return ErrDisposed
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var h Heap
		p.heap = &h
		p.DoubleQuotes = s.flags.quotes()
		t, err := p.Term()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("consult: %s: %w", p.Start(), err)
		}

		if err := s.consultTerm(ctx, &h, t, p.Vars, in); err != nil {
			return fmt.Errorf("consult: %s: %w", p.Start(), err)
		}
	}
}

func (s *Session) consultTerm(ctx context.Context, h *Heap, t Term, vars []ParsedVariable, in Interactor) error {
	if c, ok := t.(*Compound); ok {
		switch {
		case c.Functor == atomIf && len(c.Args) == 1:
			return s.directive(ctx, h, c.Args[0])
		case c.Functor == atomQuery && len(c.Args) == 1:
			return s.query(ctx, h, c.Args[0], vars, in)
		case c.Functor == atomDCG && len(c.Args) == 2:
			rule, err := dcgTranslate(h, c.Args[0], c.Args[1])
			if err != nil {
				return err
			}
			return s.kb.AssertZ(h, rule)
		}
	}
	return s.kb.AssertZ(h, t)
}

func (s *Session) directive(ctx context.Context, h *Heap, goal Term) error {
	e := s.Submit(h, goal)
	defer e.Close()
	ok, err := e.Next(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrDirectiveFailed, s.format(h, goal))
	}
	return nil
}

func (s *Session) query(ctx context.Context, h *Heap, goal Term, vars []ParsedVariable, in Interactor) error {
	text := s.format(h, goal)
	if in == nil {
		e := s.Submit(h, goal)
		defer e.Close()
		ok, err := e.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			logrus.WithField("goal", text).Warn("query failed")
		}
		return nil
	}

	if !in.OnGoal(text) {
		return nil
	}
	e := s.Submit(h, goal)
	defer e.Close()
	for n := 0; ; {
		ok, err := e.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			in.OnFail(text, n)
			return nil
		}
		n++
		if !in.OnSolution(bindings(h, vars), n) {
			return nil
		}
	}
}

func bindings(h *Heap, vars []ParsedVariable) []Binding {
	bs := make([]Binding, 0, len(vars))
	for _, v := range vars {
		if strings.HasPrefix(string(v.Name), "_") {
			continue
		}
		bs = append(bs, Binding{Name: v.Name, Value: h.Simplify(v.Variable)})
	}
	return bs
}

func (s *Session) format(h *Heap, t Term) string {
	var sb strings.Builder
	_ = WriteTerm(&sb, t, h, WithQuoted(true), WithOps(s.ops))
	return sb.String()
}
