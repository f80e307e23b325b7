// Package statsmetrics records pipeline metrics for the stats module.
package statsmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the set of measurements the stats service records.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
	RecordPageFetched(ctx context.Context, direction string, size int)
	RecordResultsIngested(ctx context.Context, count int)
	RecordNicknameResolution(ctx context.Context, source string)
}

type prometheusMetrics struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	pages      *prometheus.CounterVec
	messages   *prometheus.CounterVec
	ingested   prometheus.Counter
	nicknames  *prometheus.CounterVec
}

// NewPrometheus registers the stats collectors on reg.
func NewPrometheus(reg prometheus.Registerer) Metrics {
	m := &prometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle",
			Subsystem: "stats",
			Name:      "operations_total",
			Help:      "Service operations by outcome.",
		}, []string{"operation", "service", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wordle",
			Subsystem: "stats",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"operation", "service"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle",
			Subsystem: "crawler",
			Name:      "pages_fetched_total",
			Help:      "Message history pages fetched, by direction.",
		}, []string{"direction"}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle",
			Subsystem: "crawler",
			Name:      "messages_seen_total",
			Help:      "Messages returned by history pages, by direction.",
		}, []string{"direction"}),
		ingested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wordle",
			Subsystem: "crawler",
			Name:      "results_ingested_total",
			Help:      "Results announcements parsed and stored.",
		}),
		nicknames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle",
			Subsystem: "reconciler",
			Name:      "nicknames_total",
			Help:      "Nickname resolution attempts by source (cache, query, unresolved).",
		}, []string{"source"}),
	}
	reg.MustRegister(m.operations, m.durations, m.pages, m.messages, m.ingested, m.nicknames)
	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "attempt").Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "success").Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(operation, service, "failure").Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordPageFetched(_ context.Context, direction string, size int) {
	m.pages.WithLabelValues(direction).Inc()
	m.messages.WithLabelValues(direction).Add(float64(size))
}

func (m *prometheusMetrics) RecordResultsIngested(_ context.Context, count int) {
	m.ingested.Add(float64(count))
}

func (m *prometheusMetrics) RecordNicknameResolution(_ context.Context, source string) {
	m.nicknames.WithLabelValues(source).Inc()
}

type noop struct{}

// NewNoop returns Metrics that record nothing.
func NewNoop() Metrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordPageFetched(context.Context, string, int)                         {}
func (noop) RecordResultsIngested(context.Context, int)                             {}
func (noop) RecordNicknameResolution(context.Context, string)                       {}
