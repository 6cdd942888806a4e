package prolog

import (
	"context"
	_ "embed" // for go:embed
	"errors"
	"fmt"
	"io"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/logicbase/prolog/engine"
)

//go:embed bootstrap.pl
var bootstrap string

// Interpreter is a Prolog interpreter. It's a session with the bootstrap library loaded.
type Interpreter struct {
	*engine.Session
	Metrics *Metrics

	queries *lru.Cache[string, *engine.Prepared]
}

type options struct {
	registerer prometheus.Registerer
	provider   engine.IOProvider
}

// Option configures an Interpreter.
type Option func(*options)

// WithRegisterer registers the metrics of the interpreter to reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithIOProvider replaces the file access with p.
func WithIOProvider(p engine.IOProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// New creates a new Prolog interpreter with the default configuration. It reads from in and writes to out.
func New(in io.Reader, out io.Writer, opts ...Option) *Interpreter {
	i, err := NewWithConfig(DefaultConfig(), in, out, opts...)
	if err != nil {
		panic(err)
	}
	return i
}

// NewWithConfig creates a new Prolog interpreter with the configuration.
func NewWithConfig(c Config, in io.Reader, out io.Writer, opts ...Option) (*Interpreter, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	o := options{}
	if !c.Sandbox {
		o.provider = FileProvider{FS: RealFS{}}
	}
	for _, f := range opts {
		f(&o)
	}

	m := NewMetrics(o.registerer)
	sopts := []engine.Option{
		engine.WithHooks(m.hooks()),
		engine.WithAsyncWorkers(c.AsyncWorkers),
	}
	if o.provider != nil {
		sopts = append(sopts, engine.WithIOProvider(o.provider))
	}
	if in != nil {
		sopts = append(sopts, engine.WithUserInput(in))
	}
	if out != nil {
		sopts = append(sopts, engine.WithUserOutput(out))
	}

	i := Interpreter{
		Session: engine.NewSession(sopts...),
		Metrics: m,
	}
	m.observe(i.Session)

	if c.QueryCacheSize > 0 {
		cache, err := lru.New[string, *engine.Prepared](c.QueryCacheSize)
		if err != nil {
			return nil, err
		}
		i.queries = cache
	}

	if err := i.Consult(context.Background(), strings.NewReader(bootstrap), nil); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	for name, value := range c.flags() {
		if err := i.SetFlag(name, value); err != nil {
			return nil, fmt.Errorf("flag %s: %w", name, err)
		}
	}

	for _, name := range c.Preload {
		if err := i.ConsultFile(context.Background(), name); err != nil {
			return nil, err
		}
	}
	return &i, nil
}

// Exec consults a Prolog text. Directives are run and queries are run once.
func (i *Interpreter) Exec(text string) error {
	return i.ExecContext(context.Background(), text)
}

// ExecContext consults a Prolog text with context.
func (i *Interpreter) ExecContext(ctx context.Context, text string) error {
	return i.Consult(ctx, strings.NewReader(text), nil)
}

// ConsultFile consults the file name through the IO provider.
func (i *Interpreter) ConsultFile(ctx context.Context, name string) error {
	if err := i.QuerySolutionContext(ctx, `consult(?).`, engine.Atom(name)).Err(); err != nil {
		return fmt.Errorf("consult %s: %w", name, err)
	}
	return nil
}

// Query executes a prolog query and returns *Solutions.
func (i *Interpreter) Query(query string, args ...any) (*Solutions, error) {
	return i.QueryContext(context.Background(), query, args...)
}

// QueryContext executes a prolog query and returns *Solutions with context.
func (i *Interpreter) QueryContext(ctx context.Context, query string, args ...any) (*Solutions, error) {
	p, err := i.prepare(query, args)
	if err != nil {
		return nil, err
	}
	e, vars := p.Submit(i.Session)
	return &Solutions{
		ctx:     ctx,
		engine:  e,
		vars:    vars,
		metrics: i.Metrics,
	}, nil
}

func (i *Interpreter) prepare(query string, args []any) (*engine.Prepared, error) {
	if i.queries == nil || len(args) > 0 {
		return i.Prepare(query, args...)
	}
	if p, ok := i.queries.Get(query); ok {
		i.Metrics.QueryCache.WithLabelValues("hit").Inc()
		return p, nil
	}
	i.Metrics.QueryCache.WithLabelValues("miss").Inc()
	p, err := i.Prepare(query)
	if err != nil {
		return nil, err
	}
	i.queries.Add(query, p)
	return p, nil
}

// ErrNoSolutions indicates there's no solutions for the query.
var ErrNoSolutions = errors.New("no solutions")

// QuerySolution executes a Prolog query for the first solution.
func (i *Interpreter) QuerySolution(query string, args ...any) *Solution {
	return i.QuerySolutionContext(context.Background(), query, args...)
}

// QuerySolutionContext executes a Prolog query with context.
func (i *Interpreter) QuerySolutionContext(ctx context.Context, query string, args ...any) *Solution {
	sols, err := i.QueryContext(ctx, query, args...)
	if err != nil {
		return &Solution{err: err}
	}

	if !sols.Next() {
		if err := sols.Err(); err != nil {
			return &Solution{err: err}
		}
		return &Solution{err: ErrNoSolutions}
	}

	return &Solution{sols: sols, err: sols.Close()}
}

// Close disposes the session. Async goals are cancelled.
func (i *Interpreter) Close() error {
	i.Dispose()
	logrus.WithField("session", i.ID).Debug("interpreter closed")
	return nil
}
