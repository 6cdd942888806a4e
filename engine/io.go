package engine

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"sync"
)

// IOProvider resolves names of see/1, tell/1, append/1 and consult/1 to readers and writers.
// Readers and writers which implement io.Closer are closed by seen/0, told/0 or when the session is disposed.
type IOProvider interface {
	Reader(ctx context.Context, name string) (io.Reader, error)
	Writer(ctx context.Context, name string, append bool) (io.Writer, error)
}

type inputStream struct {
	name   Atom
	reader *bufio.Reader
	closer io.Closer
	parser *Parser
}

type outputStream struct {
	name   Atom
	writer io.Writer
	closer io.Closer
}

func closerOf(v any) io.Closer {
	c, _ := v.(io.Closer)
	return c
}

type streams struct {
	mu       sync.Mutex
	provider IOProvider

	userInput  *inputStream
	userOutput *outputStream
	input      *inputStream
	output     *outputStream
	inputs     map[Atom]*inputStream
	outputs    map[Atom]*outputStream
}

func newStreams() *streams {
	s := streams{
		inputs:  map[Atom]*inputStream{},
		outputs: map[Atom]*outputStream{},
	}
	s.setUserInput(strings.NewReader(""))
	s.setUserOutput(io.Discard)
	return &s
}

func (s *streams) setUserInput(r io.Reader) {
	s.userInput = &inputStream{name: atomUser, reader: bufio.NewReader(r)}
	s.input = s.userInput
}

func (s *streams) setUserOutput(w io.Writer) {
	s.userOutput = &outputStream{name: atomUser, writer: w}
	s.output = s.userOutput
}

// fork returns streams which share the provider and the user streams but no opened streams.
func (s *streams) fork() *streams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &streams{
		provider:   s.provider,
		userInput:  s.userInput,
		userOutput: s.userOutput,
		input:      s.userInput,
		output:     s.userOutput,
		inputs:     map[Atom]*inputStream{},
		outputs:    map[Atom]*outputStream{},
	}
}

func (s *streams) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for name, in := range s.inputs {
		if in.closer != nil {
			errs = append(errs, in.closer.Close())
		}
		delete(s.inputs, name)
	}
	for name, out := range s.outputs {
		if out.closer != nil {
			errs = append(errs, out.closer.Close())
		}
		delete(s.outputs, name)
	}
	s.input, s.output = s.userInput, s.userOutput
	return errors.Join(errs...)
}

var errNoProvider = errors.New("no io provider")

func openError(err error, name Atom, h *Heap) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ExistenceError(ObjectTypeSourceSink, name, h)
	}
	return PermissionError(OperationOpen, PermissionTypeSourceSink, name, h)
}

func (s *streams) see(ctx context.Context, name Atom, h *Heap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == atomUser {
		s.input = s.userInput
		return nil
	}
	if in, ok := s.inputs[name]; ok {
		s.input = in
		return nil
	}
	if s.provider == nil {
		return openError(errNoProvider, name, h)
	}
	r, err := s.provider.Reader(ctx, string(name))
	if err != nil {
		return openError(err, name, h)
	}
	in := &inputStream{name: name, reader: bufio.NewReader(r), closer: closerOf(r)}
	s.inputs[name] = in
	s.input = in
	return nil
}

func (s *streams) seen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.input
	s.input = s.userInput
	if in == s.userInput {
		return nil
	}
	delete(s.inputs, in.name)
	if in.closer != nil {
		return in.closer.Close()
	}
	return nil
}

func (s *streams) tell(ctx context.Context, name Atom, append bool, h *Heap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == atomUser {
		s.output = s.userOutput
		return nil
	}
	if out, ok := s.outputs[name]; ok {
		s.output = out
		return nil
	}
	if s.provider == nil {
		return openError(errNoProvider, name, h)
	}
	w, err := s.provider.Writer(ctx, string(name), append)
	if err != nil {
		return openError(err, name, h)
	}
	out := &outputStream{name: name, writer: w, closer: closerOf(w)}
	s.outputs[name] = out
	s.output = out
	return nil
}

func (s *streams) told() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.output
	s.output = s.userOutput
	if out == s.userOutput {
		return nil
	}
	delete(s.outputs, out.name)
	if out.closer != nil {
		return out.closer.Close()
	}
	return nil
}

func (s *streams) write(f func(w io.Writer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := f(s.output.writer); err != nil {
		return SystemError(err)
	}
	return nil
}

func (s *streams) read(session *Session, h *Heap) (Term, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.input
	if in.parser == nil {
		in.parser = session.NewParser(in.reader, h)
	}
	in.parser.heap = h
	in.parser.DoubleQuotes = session.flags.quotes()
	t, err := in.parser.Term()
	switch {
	case errors.Is(err, io.EOF):
		return atomEndOfFile, nil
	case errors.Is(err, ErrInsufficient):
		return nil, SyntaxError(err, h)
	case err != nil:
		return nil, err
	default:
		return t, nil
	}
}

func sourceSink(h *Heap, t Term) (Atom, error) {
	switch t := h.Resolve(t).(type) {
	case Variable:
		return "", InstantiationError(h)
	case Atom:
		return t, nil
	default:
		return "", DomainError(ValidDomainSourceSink, t, h)
	}
}

func (e *Engine) writeTerm(t Term, opts ...WriteOption) (bool, error) {
	opts = append([]WriteOption{WithOps(e.session.ops)}, opts...)
	return true, e.session.streams.write(func(w io.Writer) error {
		return WriteTerm(w, t, e.heap, opts...)
	})
}

// Write is write/1.
func Write(e *Engine, args []Term) (bool, error) {
	return e.writeTerm(args[0], WithNumberVars(true))
}

// WriteQ is writeq/1.
func WriteQ(e *Engine, args []Term) (bool, error) {
	return e.writeTerm(args[0], WithQuoted(true), WithNumberVars(true))
}

// Print is print/1.
func Print(e *Engine, args []Term) (bool, error) {
	return e.writeTerm(args[0], WithQuoted(true), WithNumberVars(true))
}

// WriteCanonical is write_canonical/1.
func WriteCanonical(e *Engine, args []Term) (bool, error) {
	return e.writeTerm(args[0], WithQuoted(true), WithIgnoreOps(true))
}

// NewLine is nl/0.
func NewLine(e *Engine, _ []Term) (bool, error) {
	return true, e.session.streams.write(func(w io.Writer) error {
		_, err := io.WriteString(w, "\n")
		return err
	})
}

// Tab is tab/1.
func Tab(e *Engine, args []Term) (bool, error) {
	n, err := e.eval(args[0])
	if err != nil {
		return false, err
	}
	i, ok := n.(Integer)
	if !ok {
		return false, TypeError(ValidTypeInteger, n, e.heap)
	}
	return true, e.session.streams.write(func(w io.Writer) error {
		if i <= 0 {
			return nil
		}
		_, err := io.WriteString(w, strings.Repeat(" ", int(i)))
		return err
	})
}

// Read is read/1. It unifies end_of_file at the end of the current input.
func Read(e *Engine, args []Term) (bool, error) {
	t, err := e.session.streams.read(e.session, e.heap)
	if err != nil {
		return false, err
	}
	return e.heap.Unify(args[0], t), nil
}

// See is see/1.
func See(e *Engine, args []Term) (bool, error) {
	name, err := sourceSink(e.heap, args[0])
	if err != nil {
		return false, err
	}
	return true, e.session.streams.see(e.Context(), name, e.heap)
}

// Seen is seen/0.
func Seen(e *Engine, _ []Term) (bool, error) {
	if err := e.session.streams.seen(); err != nil {
		return false, SystemError(err)
	}
	return true, nil
}

// Tell is tell/1.
func Tell(e *Engine, args []Term) (bool, error) {
	name, err := sourceSink(e.heap, args[0])
	if err != nil {
		return false, err
	}
	return true, e.session.streams.tell(e.Context(), name, false, e.heap)
}

// Append is append/1.
func Append(e *Engine, args []Term) (bool, error) {
	name, err := sourceSink(e.heap, args[0])
	if err != nil {
		return false, err
	}
	return true, e.session.streams.tell(e.Context(), name, true, e.heap)
}

// Told is told/0.
func Told(e *Engine, _ []Term) (bool, error) {
	if err := e.session.streams.told(); err != nil {
		return false, SystemError(err)
	}
	return true, nil
}

// ConsultPredicate is consult/1. It takes either a name or a list of names.
func ConsultPredicate(e *Engine, args []Term) (bool, error) {
	h := e.heap
	var names []Term
	switch t := h.Resolve(args[0]).(type) {
	case Variable:
		return false, InstantiationError(h)
	case *Compound:
		if !t.isList() {
			return false, DomainError(ValidDomainSourceSink, t, h)
		}
		var err error
		names, err = Slice(h, t)
		if err != nil {
			return false, err
		}
	default:
		names = []Term{t}
	}

	s := e.session
	for _, n := range names {
		name, err := sourceSink(h, n)
		if err != nil {
			return false, err
		}
		if s.streams.provider == nil {
			return false, openError(errNoProvider, name, h)
		}
		r, err := s.streams.provider.Reader(e.Context(), string(name))
		if err != nil {
			return false, openError(err, name, h)
		}
		err = s.Consult(e.Context(), r, nil)
		if c := closerOf(r); c != nil {
			_ = c.Close()
		}
		if err != nil {
			return false, err
		}
	}
	return true, nil
}
