package engine

import (
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// TriggerKind is the kind of knowledge base change a trigger observes.
type TriggerKind uint8

// TriggerKind is one of these values.
const (
	TriggerAssert TriggerKind = 1 << iota
	TriggerRetract

	TriggerAssertRetract = TriggerAssert | TriggerRetract
)

var triggerKinds = map[Atom]TriggerKind{
	"onassert":        TriggerAssert,
	"onretract":       TriggerRetract,
	"onassertretract": TriggerAssertRetract,
}

func (k TriggerKind) String() string {
	switch k {
	case TriggerAssert:
		return "assert"
	case TriggerRetract:
		return "retract"
	default:
		return "assert_retract"
	}
}

// TriggerEvent describes a change of the knowledge base.
type TriggerEvent struct {
	Signature ProcedureIndicator
	Kind      TriggerKind
}

// Trigger observes changes of procedures. Handler is called synchronously on the goroutine which made the change.
// OnHalt is called once when the session is disposed.
type Trigger struct {
	Signatures map[ProcedureIndicator]TriggerKind
	Handler    func(TriggerEvent)
	OnHalt     func()
}

type triggers struct {
	mu         sync.RWMutex
	registered map[ProcedureIndicator][]*Trigger
}

func (ts *triggers) register(t *Trigger) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.registered == nil {
		ts.registered = map[ProcedureIndicator][]*Trigger{}
	}
	for pi := range t.Signatures {
		if !slices.Contains(ts.registered[pi], t) {
			ts.registered[pi] = append(ts.registered[pi], t)
		}
	}
}

func (ts *triggers) unregister(t *Trigger) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for pi, list := range ts.registered {
		list = slices.DeleteFunc(slices.Clone(list), func(e *Trigger) bool {
			return e == t
		})
		if len(list) == 0 {
			delete(ts.registered, pi)
			continue
		}
		ts.registered[pi] = list
	}
}

func (ts *triggers) observed(pi ProcedureIndicator, kind TriggerKind) []*Trigger {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	var ret []*Trigger
	for _, t := range ts.registered[pi] {
		if t.Signatures[pi]&kind != 0 {
			ret = append(ret, t)
		}
	}
	return ret
}

func (ts *triggers) notify(pi ProcedureIndicator, kind TriggerKind) {
	for _, t := range ts.observed(pi, kind) {
		logrus.WithFields(logrus.Fields{
			"signature": pi,
			"event":     kind,
		}).Debug("trigger")
		if t.Handler != nil {
			t.Handler(TriggerEvent{Signature: pi, Kind: kind})
		}
	}
}

// halt calls OnHalt of every trigger once and clears the registry.
func (ts *triggers) halt() {
	ts.mu.Lock()
	registered := ts.registered
	ts.registered = nil
	ts.mu.Unlock()

	seen := map[*Trigger]struct{}{}
	for _, list := range registered {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			if t.OnHalt != nil {
				t.OnHalt()
			}
		}
	}
}
