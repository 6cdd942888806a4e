package main

import (
	"fmt"
	"io"
	"os"

	"github.com/logicbase/prolog"
	"github.com/logicbase/prolog/engine"
)

// New creates a prolog.Interpreter with some helper predicates.
func New(c prolog.Config, r io.Reader, w io.Writer) (*prolog.Interpreter, error) {
	i, err := prolog.NewWithConfig(c, r, w)
	if err != nil {
		return nil, err
	}
	i.Register("version", 1, func(e *engine.Engine, args []engine.Term) (bool, error) {
		return e.Heap().Unify(args[0], engine.Atom(Version)), nil
	})
	i.Register("cd", 1, func(e *engine.Engine, args []engine.Term) (bool, error) {
		switch dir := e.Heap().Resolve(args[0]).(type) {
		case engine.Variable:
			return false, engine.InstantiationError(e.Heap())
		case engine.Atom:
			if err := os.Chdir(string(dir)); err != nil {
				return false, engine.PermissionError(engine.OperationOpen, engine.PermissionTypeSourceSink, dir, e.Heap())
			}
			return true, nil
		default:
			return false, engine.TypeError(engine.ValidTypeAtom, dir, e.Heap())
		}
	})
	i.Register("go_string", 2, func(e *engine.Engine, args []engine.Term) (bool, error) {
		t := e.Heap().Simplify(args[0])
		return e.Heap().Unify(args[1], engine.Atom(fmt.Sprintf("%#v", t))), nil
	})
	return i, nil
}
