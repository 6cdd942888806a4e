package engine

import (
	"errors"
)

// ControlKind is the outcome of a step of the resolution.
type ControlKind uint8

// ControlKind is one of these values.
const (
	// ControlProceed continues with the current continuation.
	ControlProceed ControlKind = iota

	// ControlFail backtracks to the latest choice point.
	ControlFail

	// ControlCut removes choice points above the barrier and continues.
	ControlCut

	// ControlThrow unwinds to the nearest catch/3 or the top level.
	ControlThrow

	// ControlHalt stops the whole session.
	ControlHalt

	// ControlAbort stops the resolution with a fatal error which catch/3 can't intercept.
	ControlAbort
)

func (k ControlKind) String() string {
	return [...]string{
		ControlProceed: "proceed",
		ControlFail:    "fail",
		ControlCut:     "cut",
		ControlThrow:   "throw",
		ControlHalt:    "halt",
		ControlAbort:   "abort",
	}[k]
}

// Control is a result of a step.
type Control struct {
	Kind    ControlKind
	Barrier int
	Ball    Exception
	Status  int
	Err     error
}

// Proceed continues with the current continuation.
func Proceed() Control {
	return Control{Kind: ControlProceed}
}

// Fail backtracks.
func Fail() Control {
	return Control{Kind: ControlFail}
}

// CutTo removes choice points at or above barrier.
func CutTo(barrier int) Control {
	return Control{Kind: ControlCut, Barrier: barrier}
}

// Thrown raises ball.
func Thrown(ball Exception) Control {
	return Control{Kind: ControlThrow, Ball: ball}
}

// Halt stops the session with status.
func Halt(status int) Control {
	return Control{Kind: ControlHalt, Status: status}
}

// controlOf converts an error returned by a builtin into a Control.
func controlOf(err error) Control {
	var (
		ex Exception
		he *HaltError
	)
	switch {
	case errors.As(err, &ex):
		return Thrown(ex)
	case errors.As(err, &he):
		return Halt(he.Status)
	default:
		return Control{Kind: ControlAbort, Err: err}
	}
}

// error converts a terminal Control back into an error.
func (c Control) error() error {
	switch c.Kind {
	case ControlThrow:
		return c.Ball
	case ControlHalt:
		return &HaltError{Status: c.Status}
	case ControlAbort:
		return c.Err
	default:
		return nil
	}
}
