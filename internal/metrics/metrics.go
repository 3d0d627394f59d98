// Package metrics exposes Prometheus counters for the handshake pipeline, the
// task bridge and the host endpoint.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bootbridge"

// Result labels shared by the step and poll counters.
const (
	ResultOK      = "ok"
	ResultMissing = "missing"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Metrics holds the collectors registered on its own registry.
type Metrics struct {
	registry     *prometheus.Registry
	steps        *prometheus.CounterVec
	polls        *prometheus.CounterVec
	taskChanges  prometheus.Counter
	hostRequests prometheus.Counter
	hostUpdates  *prometheus.CounterVec
	hostCurrent  *prometheus.GaugeVec
}

// New constructs Metrics on a fresh registry so multiple instances (tests,
// embedded hosts) never collide on registration.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	steps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "handshake",
			Name:      "steps_total",
			Help:      "Handshake steps executed, by step name and result.",
		},
		[]string{"step", "result"},
	)
	polls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "taskbridge",
			Name:      "polls_total",
			Help:      "Task polls issued, by result.",
		},
		[]string{"result"},
	)
	taskChanges := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "taskbridge",
			Name:      "task_changes_total",
			Help:      "Number of NewTask events published.",
		},
	)
	hostRequests := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "current_task_requests_total",
			Help:      "Requests answered by the current task endpoint.",
		},
	)
	hostUpdates := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "task_updates_total",
			Help:      "Times the host switched to a task, by task.",
		},
		[]string{"task"},
	)
	hostCurrent := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "host",
			Name:      "current_task",
			Help:      "1 for the task the host currently reports, 0 for tasks it held before.",
		},
		[]string{"task"},
	)

	registry.MustRegister(steps, polls, taskChanges, hostRequests, hostUpdates, hostCurrent)

	return &Metrics{
		registry:     registry,
		steps:        steps,
		polls:        polls,
		taskChanges:  taskChanges,
		hostRequests: hostRequests,
		hostUpdates:  hostUpdates,
		hostCurrent:  hostCurrent,
	}
}

// ObserveStep counts one handshake step outcome.
func (m *Metrics) ObserveStep(step, result string) {
	m.steps.WithLabelValues(step, result).Inc()
}

// ObservePoll counts one task poll outcome.
func (m *Metrics) ObservePoll(result string) {
	m.polls.WithLabelValues(result).Inc()
}

// ObserveTaskChange counts one published NewTask event.
func (m *Metrics) ObserveTaskChange() {
	m.taskChanges.Inc()
}

// ObserveHostRequest counts one answered current task request.
func (m *Metrics) ObserveHostRequest() {
	m.hostRequests.Inc()
}

// ObserveHostTask records that the host switched from previous to task.
func (m *Metrics) ObserveHostTask(previous, task string) {
	m.hostUpdates.WithLabelValues(task).Inc()
	if previous != "" {
		m.hostCurrent.WithLabelValues(previous).Set(0)
	}
	m.hostCurrent.WithLabelValues(task).Set(1)
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Snapshot returns every non-zero counter and gauge series, keyed by metric
// name and labels in exposition form, e.g. bootbridge_taskbridge_polls_total{result="ok"}.
func (m *Metrics) Snapshot() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	snapshot := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			var value float64
			switch {
			case metric.GetCounter() != nil:
				value = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				value = metric.GetGauge().GetValue()
			default:
				continue
			}
			if value == 0 {
				continue
			}

			labels := make([]string, 0, len(metric.GetLabel()))
			for _, pair := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", pair.GetName(), pair.GetValue()))
			}
			sort.Strings(labels)

			key := family.GetName()
			if len(labels) > 0 {
				key += "{" + strings.Join(labels, ",") + "}"
			}
			snapshot[key] = value
		}
	}
	return snapshot, nil
}
