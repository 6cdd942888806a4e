package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultAsyncWorkers is the default number of goroutines which run async goals at the same time.
const DefaultAsyncWorkers = 8

type asyncPool struct {
	group  errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	active  int
	waiters []chan struct{}
}

func newAsyncPool(workers int) *asyncPool {
	if workers <= 0 {
		workers = DefaultAsyncWorkers
	}
	p := asyncPool{}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.group.SetLimit(workers)
	return &p
}

func (p *asyncPool) begin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active++
}

func (p *asyncPool) end() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active--
	if p.active > 0 {
		return
	}
	for _, w := range p.waiters {
		close(w)
	}
	p.waiters = nil
}

func (p *asyncPool) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *asyncPool) wait(ctx context.Context) error {
	p.mu.Lock()
	if p.active == 0 {
		p.mu.Unlock()
		return nil
	}
	w := make(chan struct{})
	p.waiters = append(p.waiters, w)
	p.mu.Unlock()

	select {
	case <-w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *asyncPool) run(task func() error) {
	p.begin()
	f := func() error {
		defer p.end()
		return task()
	}
	if p.group.TryGo(f) {
		return
	}
	// Queue the task without blocking the caller which may be a worker itself.
	go p.group.Go(f)
}

// SubmitAsync proves goal to exhaustion on a worker goroutine. The goal is copied so that it doesn't share
// variables with the caller. A halt raised by the goal disposes the session.
func (s *Session) SubmitAsync(goal Term, h *Heap) error {
	if s.Disposed() {
		return ErrDisposed
	}
	t, n := h.freeze(goal)
	id := uuid.New()
	s.async.run(func() error {
		var heap Heap
		e := s.Submit(&heap, heap.instantiate(t, n))
		log := logrus.WithFields(logrus.Fields{
			"session": s.ID,
			"task":    id,
		})
		log.WithField("goal", t).Debug("async task started")
		var (
			err error
			ok  = true
		)
		for ok && err == nil {
			ok, err = e.Next(s.async.ctx)
		}

		var he *HaltError
		switch {
		case errors.As(err, &he):
			log.WithField("status", he.Status).Info("async task halted the session")
			s.Dispose()
		case errors.Is(err, ErrDisposed), errors.Is(err, context.Canceled):
			log.Debug("async task cancelled")
		case err != nil:
			log.WithError(err).Warn("async task failed")
		default:
			log.Debug("async task finished")
		}
		return nil
	})
	return nil
}

// ActiveAsyncTasks returns the number of async goals which are either running or waiting for a worker.
func (s *Session) ActiveAsyncTasks() int {
	return s.async.len()
}

// WaitAsync blocks until there are no active async goals or ctx is done.
func (s *Session) WaitAsync(ctx context.Context) error {
	return s.async.wait(ctx)
}

// Async is async/1.
func Async(e *Engine, args []Term) (bool, error) {
	goal := e.heap.Resolve(args[0])
	switch goal.(type) {
	case Variable:
		return false, InstantiationError(e.heap)
	case Atom, *Compound:
	default:
		return false, TypeError(ValidTypeCallable, goal, e.heap)
	}
	if err := e.session.SubmitAsync(goal, e.heap); err != nil {
		return false, err
	}
	return true, nil
}

// WaitAsyncPredicate is waitasync/0.
func WaitAsyncPredicate(e *Engine, _ []Term) (bool, error) {
	return true, e.session.WaitAsync(e.Context())
}
