// Package metrics provides the per-module operation metrics recorder backed
// by Prometheus, plus a no-op implementation for tests.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder records service operation outcomes.
type Recorder interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)
}

// PrometheusRecorder implements Recorder on a Prometheus registry.
type PrometheusRecorder struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder registers and returns a Recorder scoped to a module.
func NewPrometheusRecorder(reg prometheus.Registerer, module string) *PrometheusRecorder {
	labels := prometheus.Labels{"module": module}

	r := &PrometheusRecorder{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "tab_operation_attempts_total",
			Help:        "Service operation attempts.",
			ConstLabels: labels,
		}, []string{"operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "tab_operation_successes_total",
			Help:        "Service operation successes.",
			ConstLabels: labels,
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "tab_operation_failures_total",
			Help:        "Service operation failures.",
			ConstLabels: labels,
		}, []string{"operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "tab_operation_duration_seconds",
			Help:        "Service operation duration.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(r.attempts, r.successes, r.failures, r.durations)
	return r
}

func (r *PrometheusRecorder) RecordOperationAttempt(_ context.Context, operation string) {
	r.attempts.WithLabelValues(operation).Inc()
}

func (r *PrometheusRecorder) RecordOperationSuccess(_ context.Context, operation string) {
	r.successes.WithLabelValues(operation).Inc()
}

func (r *PrometheusRecorder) RecordOperationFailure(_ context.Context, operation string) {
	r.failures.WithLabelValues(operation).Inc()
}

func (r *PrometheusRecorder) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// NoOp discards all recordings. Used in tests.
type NoOp struct{}

var _ Recorder = NoOp{}

func (NoOp) RecordOperationAttempt(context.Context, string)                 {}
func (NoOp) RecordOperationSuccess(context.Context, string)                 {}
func (NoOp) RecordOperationFailure(context.Context, string)                 {}
func (NoOp) RecordOperationDuration(context.Context, string, time.Duration) {}
