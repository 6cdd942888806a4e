package engine

import (
	"fmt"
	"math"
	"sync"
)

type unknownAction int

const (
	unknownError unknownAction = iota
	unknownFail
	unknownWarning
)

func (u unknownAction) String() string {
	switch u {
	case unknownError:
		return "error"
	case unknownFail:
		return "fail"
	case unknownWarning:
		return "warning"
	default:
		return fmt.Sprintf("unknown(%d)", int(u))
	}
}

var unknownActions = map[Atom]unknownAction{
	"error":   unknownError,
	"fail":    unknownFail,
	"warning": unknownWarning,
}

var doubleQuotesValues = map[Atom]DoubleQuotes{
	"codes": DoubleQuotesCodes,
	"chars": DoubleQuotesChars,
	"atom":  DoubleQuotesAtom,
}

const (
	flagBounded      = Atom("bounded")
	flagMaxInteger   = Atom("max_integer")
	flagMinInteger   = Atom("min_integer")
	flagVersionData  = Atom("version_data")
	flagVerify       = Atom("verify")
	flagUnknown      = Atom("unknown")
	flagDoubleQuotes = Atom("double_quotes")
	flagDebug        = Atom("debug")
)

var flagNames = []Atom{
	flagBounded,
	flagDebug,
	flagDoubleQuotes,
	flagMaxInteger,
	flagMinInteger,
	flagUnknown,
	flagVerify,
	flagVersionData,
}

type flags struct {
	mu           sync.RWMutex
	verify       bool
	debug        bool
	unknownFlag  unknownAction
	doubleQuotes DoubleQuotes
}

func newFlags() *flags {
	return &flags{verify: true}
}

func (f *flags) unknown() unknownAction {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.unknownFlag
}

func (f *flags) quotes() DoubleQuotes {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.doubleQuotes
}

func (f *flags) copy() *flags {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return &flags{
		verify:       f.verify,
		debug:        f.debug,
		unknownFlag:  f.unknownFlag,
		doubleQuotes: f.doubleQuotes,
	}
}

func onOff(b bool) Atom {
	if b {
		return atomOn
	}
	return atomOff
}

func boolean(b bool) Atom {
	if b {
		return atomTrue
	}
	return atomFalse
}

func (f *flags) get(name Atom) (Term, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	switch name {
	case flagBounded:
		return atomTrue, true
	case flagMaxInteger:
		return Integer(math.MaxInt64), true
	case flagMinInteger:
		return Integer(math.MinInt64), true
	case flagVersionData:
		return Atom("jprol").Apply(Integer(2), Integer(0), Integer(0), atomEmptyList), true
	case flagVerify:
		return boolean(f.verify), true
	case flagDebug:
		return onOff(f.debug), true
	case flagUnknown:
		return Atom(f.unknownFlag.String()), true
	case flagDoubleQuotes:
		return Atom(f.doubleQuotes.String()), true
	default:
		return nil, false
	}
}

// set changes the flag. It returns an error if the flag is read only, unknown, or value is not valid for it.
func (f *flags) set(h *Heap, name Atom, value Term) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	invalid := DomainError(ValidDomainFlagValue, atomPlus.Apply(name, value), h)
	switch name {
	case flagBounded, flagMaxInteger, flagMinInteger, flagVersionData:
		return PermissionError(OperationModify, PermissionTypeFlag, name, h)
	case flagVerify:
		switch value {
		case atomTrue, atomOn:
			f.verify = true
		case atomFalse, atomOff:
			f.verify = false
		default:
			return invalid
		}
	case flagDebug:
		switch value {
		case atomTrue, atomOn:
			f.debug = true
		case atomFalse, atomOff:
			f.debug = false
		default:
			return invalid
		}
	case flagUnknown:
		a, ok := value.(Atom)
		if !ok {
			return invalid
		}
		u, ok := unknownActions[a]
		if !ok {
			return invalid
		}
		f.unknownFlag = u
	case flagDoubleQuotes:
		a, ok := value.(Atom)
		if !ok {
			return invalid
		}
		d, ok := doubleQuotesValues[a]
		if !ok {
			return invalid
		}
		f.doubleQuotes = d
	default:
		return DomainError(ValidDomainPrologFlag, name, h)
	}
	return nil
}

// SetPrologFlag is set_prolog_flag/2.
func SetPrologFlag(e *Engine, args []Term) (bool, error) {
	h := e.heap
	name, value := h.Resolve(args[0]), h.Simplify(args[1])
	if isVariable(name) || !IsGround(h, value) {
		return false, InstantiationError(h)
	}
	n, ok := name.(Atom)
	if !ok {
		return false, TypeError(ValidTypeAtom, name, h)
	}
	s := e.session
	if err := s.flags.set(h, n, value); err != nil {
		return false, err
	}
	s.applyFlags()
	return true, nil
}

// CurrentPrologFlag is current_prolog_flag/2.
func CurrentPrologFlag(e *Engine, args []Term, c *Cursor) (bool, error) {
	h := e.heap
	if c.Init(CursorTerms) {
		switch name := h.Resolve(args[0]).(type) {
		case Variable:
			for _, n := range flagNames {
				v, _ := e.session.flags.get(n)
				c.Terms = append(c.Terms, Pair(n, v))
			}
		case Atom:
			v, ok := e.session.flags.get(name)
			if !ok {
				c.Stop()
				return false, DomainError(ValidDomainPrologFlag, name, h)
			}
			c.Terms = []Term{Pair(name, v)}
		default:
			c.Stop()
			return false, TypeError(ValidTypeAtom, name, h)
		}
	}
	t := c.Term()
	if t == nil {
		return false, nil
	}
	return h.Unify(Pair(args[0], args[1]), t), nil
}
