// Package metrics provides centralized metrics management for the server supervisor.
//
// This package implements a unified taxonomy for Prometheus metrics:
//   - Supervisor metrics: state transitions, command queue depth, load outcomes
//   - Process metrics: activation/deactivation latency, kills, terminations
//   - HTTP metrics: admin surface request counters and latency
//
// Supervisor and process metrics are named <namespace>_<category>_<metric_name>,
// with the namespace defaulting to "supervisor" (e.g. supervisor_process_kills_total).
//
// Example:
//
//	registry := metrics.DefaultRegistry()
//	registry.Supervisor().StateTransitionsTotal.WithLabelValues("Activating", "Active").Inc()
//	registry.Process().ActivationFailuresTotal.Inc()
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricCategory represents the category of a metric.
type MetricCategory string

const (
	// CategorySupervisor represents supervisor-level metrics (state machine, scheduler).
	CategorySupervisor MetricCategory = "supervisor"

	// CategoryProcess represents process lifecycle metrics (activate/deactivate/kill).
	CategoryProcess MetricCategory = "process"
)

// SupervisorMetrics holds metrics describing the state machine and command scheduler.
type SupervisorMetrics struct {
	StateTransitionsTotal *prometheus.CounterVec
	CommandsExecutedTotal *prometheus.CounterVec
	CommandQueueDepth     *prometheus.GaugeVec
	LoadOutcomesTotal     *prometheus.CounterVec
	DisabledServers       prometheus.Gauge
}

// NewSupervisorMetrics registers and returns supervisor-level metrics under namespace.
func NewSupervisorMetrics(namespace string) *SupervisorMetrics {
	return &SupervisorMetrics{
		StateTransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "supervisor",
				Name:      "state_transitions_total",
				Help:      "Total number of internal state transitions, labeled by from/to state.",
			},
			[]string{"from", "to"},
		),
		CommandsExecutedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "supervisor",
				Name:      "commands_executed_total",
				Help:      "Total number of commands executed, labeled by command kind and outcome.",
			},
			[]string{"command", "outcome"},
		),
		CommandQueueDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "supervisor",
				Name:      "command_queue_depth",
				Help:      "Number of pending command slots currently occupied, labeled by slot.",
			},
			[]string{"slot"},
		),
		LoadOutcomesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "supervisor",
				Name:      "load_outcomes_total",
				Help:      "Total number of load operations, labeled by outcome (applied/semantic_equal/rollback/destroy).",
			},
			[]string{"outcome"},
		),
		DisabledServers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "supervisor",
				Name:      "disabled_servers",
				Help:      "Number of servers currently disabled due to activation failure.",
			},
		),
	}
}

// ProcessMetrics holds metrics describing the activator bridge and child lifecycle.
type ProcessMetrics struct {
	ActivationDurationSeconds   prometheus.Histogram
	DeactivationDurationSeconds prometheus.Histogram
	ActivationFailuresTotal     prometheus.Counter
	KillsTotal                  prometheus.Counter
	TerminationsTotal           *prometheus.CounterVec
}

// NewProcessMetrics registers and returns process-lifecycle metrics under namespace.
func NewProcessMetrics(namespace string) *ProcessMetrics {
	return &ProcessMetrics{
		ActivationDurationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "process",
				Name:      "activation_duration_seconds",
				Help:      "Time spent in the Activating state before reaching Active or ActivationTimeout.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		DeactivationDurationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "process",
				Name:      "deactivation_duration_seconds",
				Help:      "Time spent in the Deactivating state before the child process exits.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		ActivationFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "process",
				Name:      "activation_failures_total",
				Help:      "Total number of activation syscall failures.",
			},
		),
		KillsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "process",
				Name:      "kills_total",
				Help:      "Total number of times a managed process was forcibly killed after a deactivation timeout or a failed graceful deactivation.",
			},
		),
		TerminationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "process",
				Name:      "terminations_total",
				Help:      "Total number of child process terminations, labeled by whether they were considered a failure.",
			},
			[]string{"failed"},
		),
	}
}

// MetricsRegistry is the central registry for all Prometheus metrics.
// Provides organized access to metrics by category (Supervisor, Process).
//
// Thread-safe: All Prometheus metrics are thread-safe by design.
// Singleton: Use DefaultRegistry() to get the global instance.
type MetricsRegistry struct {
	namespace string

	supervisor *SupervisorMetrics
	process    *ProcessMetrics

	supervisorOnce sync.Once
	processOnce    sync.Once
}

var (
	defaultRegistry     *MetricsRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the global singleton MetricsRegistry.
// Safe for concurrent use. Initialized once on first call.
func DefaultRegistry() *MetricsRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewMetricsRegistry("supervisor")
	})
	return defaultRegistry
}

// NewMetricsRegistry creates a new MetricsRegistry with the specified namespace.
// For most use cases, use DefaultRegistry() instead of calling this directly.
func NewMetricsRegistry(namespace string) *MetricsRegistry {
	if namespace == "" {
		namespace = "supervisor"
	}

	return &MetricsRegistry{
		namespace: namespace,
	}
}

// Supervisor returns the Supervisor metrics manager. Lazy-initialized on first access.
func (r *MetricsRegistry) Supervisor() *SupervisorMetrics {
	r.supervisorOnce.Do(func() {
		r.supervisor = NewSupervisorMetrics(r.namespace)
	})
	return r.supervisor
}

// Process returns the Process metrics manager. Lazy-initialized on first access.
func (r *MetricsRegistry) Process() *ProcessMetrics {
	r.processOnce.Do(func() {
		r.process = NewProcessMetrics(r.namespace)
	})
	return r.process
}

// Namespace returns the configured namespace for this registry.
func (r *MetricsRegistry) Namespace() string {
	return r.namespace
}
