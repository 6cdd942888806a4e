package engine

import (
	"context"
	"sync"
)

// lockTable is a table of named locks. A named lock is not reentrant.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func (t *lockTable) get(name string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.locks == nil {
		t.locks = map[string]chan struct{}{}
	}
	l, ok := t.locks[name]
	if !ok {
		l = make(chan struct{}, 1)
		t.locks[name] = l
	}
	return l
}

// Lock acquires the lock named name. It blocks until the lock is available or ctx is done.
func (s *Session) Lock(ctx context.Context, name string) error {
	select {
	case s.locks.get(name) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryLock acquires the lock named name if it's available and reports whether it did.
func (s *Session) TryLock(name string) bool {
	select {
	case s.locks.get(name) <- struct{}{}:
		return true
	default:
		return false
	}
}

// Unlock releases the lock named name. Releasing a lock which is not held does nothing.
func (s *Session) Unlock(name string) {
	select {
	case <-s.locks.get(name):
	default:
	}
}

func lockName(h *Heap, t Term) (string, error) {
	switch t := h.Resolve(t).(type) {
	case Variable:
		return "", InstantiationError(h)
	case Atom:
		return string(t), nil
	default:
		return "", TypeError(ValidTypeAtom, t, h)
	}
}

// LockPredicate is lock/1.
func LockPredicate(e *Engine, args []Term) (bool, error) {
	name, err := lockName(e.heap, args[0])
	if err != nil {
		return false, err
	}
	return true, e.session.Lock(e.Context(), name)
}

// TryLockPredicate is trylock/1.
func TryLockPredicate(e *Engine, args []Term) (bool, error) {
	name, err := lockName(e.heap, args[0])
	if err != nil {
		return false, err
	}
	return e.session.TryLock(name), nil
}

// UnlockPredicate is unlock/1.
func UnlockPredicate(e *Engine, args []Term) (bool, error) {
	name, err := lockName(e.heap, args[0])
	if err != nil {
		return false, err
	}
	e.session.Unlock(name)
	return true, nil
}
