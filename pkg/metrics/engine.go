package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records inventory engine activity.
type EngineMetrics struct {
	ledgerEntries       *prometheus.CounterVec
	transferTransitions *prometheus.CounterVec
	auditCompletions    prometheus.Counter
	stockRejections     *prometheus.CounterVec
	adjustmentDuration  *prometheus.HistogramVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	ledgerEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_entries_total",
		Help: "Ledger entries written, by entry type.",
	}, []string{"type"})
	transferTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transfer_transitions_total",
		Help: "Transfer status transitions applied.",
	}, []string{"from", "to"})
	auditCompletions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_completions_total",
		Help: "Audits reconciled to completion.",
	})
	stockRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_rejections_total",
		Help: "Operations rejected for insufficient stock.",
	}, []string{"operation"})
	adjustmentDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adjustment_duration_seconds",
		Help:    "Duration of stock adjustments in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	reg.MustRegister(ledgerEntries, transferTransitions, auditCompletions, stockRejections, adjustmentDuration)
	return &EngineMetrics{
		ledgerEntries:       ledgerEntries,
		transferTransitions: transferTransitions,
		auditCompletions:    auditCompletions,
		stockRejections:     stockRejections,
		adjustmentDuration:  adjustmentDuration,
	}
}

// IncLedgerEntry increments the entry counter for the given entry type.
func (m *EngineMetrics) IncLedgerEntry(entryType string) {
	if m == nil || m.ledgerEntries == nil {
		return
	}
	m.ledgerEntries.WithLabelValues(normalizeLabel(entryType)).Inc()
}

// IncTransferTransition increments the transition counter for a status change.
func (m *EngineMetrics) IncTransferTransition(from, to string) {
	if m == nil || m.transferTransitions == nil {
		return
	}
	m.transferTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncAuditCompletion increments the completed audit counter.
func (m *EngineMetrics) IncAuditCompletion() {
	if m == nil || m.auditCompletions == nil {
		return
	}
	m.auditCompletions.Inc()
}

// IncStockRejection increments the insufficient stock counter for the named operation.
func (m *EngineMetrics) IncStockRejection(operation string) {
	if m == nil || m.stockRejections == nil {
		return
	}
	m.stockRejections.WithLabelValues(normalizeLabel(operation)).Inc()
}

// ObserveAdjustment records the duration of an adjustment by mode.
func (m *EngineMetrics) ObserveAdjustment(mode string, duration time.Duration) {
	if m == nil || m.adjustmentDuration == nil {
		return
	}
	m.adjustmentDuration.WithLabelValues(normalizeLabel(mode)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
