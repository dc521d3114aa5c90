// Package metrics exposes the engine's Prometheus instruments.
package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	ServiceName string
	Environment string
}

// Reconciliation outcome labels.
const (
	OutcomeMatched   = "matched"
	OutcomeDuplicate = "duplicate"
	OutcomeUnmatched = "unmatched"
	OutcomeFailed    = "failed"
)

// ReconciliationMetrics tracks what the engine did with incoming
// payments and how much money it moved onto bills.
type ReconciliationMetrics struct {
	outcomes     *prometheus.CounterVec
	appliedUnits prometheus.Counter
	overdueBills prometheus.Counter
}

var (
	reconciliationOnce    sync.Once
	reconciliationMetrics *ReconciliationMetrics
)

// Reconciliation returns the process-wide reconciliation instruments.
func Reconciliation() *ReconciliationMetrics {
	return ReconciliationWithConfig(Config{})
}

func ReconciliationWithConfig(cfg Config) *ReconciliationMetrics {
	reconciliationOnce.Do(func() {
		reconciliationMetrics = newReconciliationMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return reconciliationMetrics
}

func ResetReconciliationMetricsForTest() {
	reconciliationOnce = sync.Once{}
	reconciliationMetrics = nil
}

func newReconciliationMetrics(registerer prometheus.Registerer, cfg Config) *ReconciliationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := constLabelsFor(cfg)

	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "ispbilling_reconciliations_total",
			Help:        "Reconciliation attempts by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"result"},
	)
	appliedUnits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "ispbilling_reconciled_minor_units_total",
			Help:        "Minor currency units applied to bills by reconciliation.",
			ConstLabels: constLabels,
		},
	)
	overdueBills := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "ispbilling_overdue_bills_total",
			Help:        "Bills flipped to overdue by the sweep.",
			ConstLabels: constLabels,
		},
	)
	registerer.MustRegister(outcomes, appliedUnits, overdueBills)

	return &ReconciliationMetrics{
		outcomes:     outcomes,
		appliedUnits: appliedUnits,
		overdueBills: overdueBills,
	}
}

// ObserveOutcome counts one reconciliation attempt.
func (m *ReconciliationMetrics) ObserveOutcome(result string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(result).Inc()
}

// AddApplied records money placed on bills, in minor units.
func (m *ReconciliationMetrics) AddApplied(units int64) {
	if m == nil || units <= 0 {
		return
	}
	m.appliedUnits.Add(float64(units))
}

// AddOverdue records bills flipped by one overdue sweep.
func (m *ReconciliationMetrics) AddOverdue(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.overdueBills.Add(float64(count))
}

func constLabelsFor(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "ispbilling"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}
