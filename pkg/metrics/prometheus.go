package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	TurnsProcessed *prometheus.CounterVec
	ToolCalls      *prometheus.CounterVec
	HandOvers      *prometheus.CounterVec
	HandBacks      *prometheus.CounterVec
	StaleTurns     prometheus.Counter
	TurnDuration   prometheus.Histogram
	ErrorsCount    *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics on the default registry
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates new prometheus metrics on reg
func NewMetricsWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TurnsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_processed_total",
			Help:      "The total number of specialist turns by outcome",
		}, []string{"assistant", "outcome"}),
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "The total number of dispatched tool calls",
		}, []string{"assistant", "tool", "outcome"}),
		HandOvers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hand_overs_total",
			Help:      "The total number of hand-overs between specialists",
		}, []string{"from", "to"}),
		HandBacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hand_backs_total",
			Help:      "The total number of hand-backs to a waiting caller",
		}, []string{"from", "to"}),
		StaleTurns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_turns_total",
			Help:      "The total number of turns failed by the stale processing sweep",
		}),
		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time taken to process a specialist turn",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
