package prolog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/logicbase/prolog/engine"
)

const metricsNamespace = "prolog"

// Metrics are the counters of an Interpreter.
type Metrics struct {
	Inferences prometheus.Counter
	Backtracks prometheus.Counter
	Solutions  prometheus.Counter
	Changes    *prometheus.CounterVec
	QueryCache *prometheus.CounterVec

	factory promauto.Factory
}

// NewMetrics creates the counters and registers them to reg. If reg is nil, they are not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Inferences: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "inferences_total",
			Help:      "Number of procedure calls.",
		}),
		Backtracks: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "backtracks_total",
			Help:      "Number of resumed choice points.",
		}),
		Solutions: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "solutions_total",
			Help:      "Number of solutions returned to the callers of queries.",
		}),
		Changes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "kb_changes_total",
			Help:      "Number of changes of the knowledge base by kind.",
		}, []string{"kind"}),
		QueryCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "query_cache_total",
			Help:      "Number of lookups of the parsed query cache by result.",
		}, []string{"result"}),
		factory: f,
	}
}

func (m *Metrics) hooks() engine.Hooks {
	return engine.Hooks{
		OnCall: func(engine.ProcedureIndicator) {
			m.Inferences.Inc()
		},
		OnRedo: func() {
			m.Backtracks.Inc()
		},
		OnChange: func(ev engine.TriggerEvent) {
			m.Changes.WithLabelValues(ev.Kind.String()).Inc()
		},
	}
}

// observe exports the number of active async goals of s.
func (m *Metrics) observe(s *engine.Session) {
	m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "async_active",
		Help:      "Number of async goals either running or waiting for a worker.",
	}, func() float64 {
		return float64(s.ActiveAsyncTasks())
	})
}
