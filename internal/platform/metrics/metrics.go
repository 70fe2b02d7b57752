package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Methods are
// nil-safe so services can run without metrics in tests.
type Metrics struct {
	IngestionsTotal        *prometheus.CounterVec
	CandidatesValidated    *prometheus.CounterVec
	RegistryCallDuration   *prometheus.HistogramVec
	ReconciliationsApplied prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		IngestionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eudrgate_ingestions_total",
			Help: "Ingestion attempts by outcome",
		}, []string{"outcome"}),
		CandidatesValidated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "eudrgate_candidates_validated_total",
			Help: "Supplier statement candidates by classification result",
		}, []string{"result"}),
		RegistryCallDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eudrgate_registry_call_duration_seconds",
			Help:    "Latency of remote registry calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		ReconciliationsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "eudrgate_reconciliations_applied_total",
			Help: "Ledger records backfilled with registry-issued numbers",
		}),
	}
}

func (m *Metrics) IncIngestion(outcome string) {
	if m != nil {
		m.IngestionsTotal.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncCandidate(result string) {
	if m != nil {
		m.CandidatesValidated.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveRegistryCall(operation string, d time.Duration) {
	if m != nil {
		m.RegistryCallDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) IncReconciliation() {
	if m != nil {
		m.ReconciliationsApplied.Inc()
	}
}
