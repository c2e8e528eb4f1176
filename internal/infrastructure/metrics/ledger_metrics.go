// Package metrics expone las métricas Prometheus del libro de facturas.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/optica-api/internal/application/billing"
)

var _ billing.LedgerMetrics = (*LedgerMetrics)(nil)

// LedgerMetrics implementa billing.LedgerMetrics con contadores e histograma Prometheus.
type LedgerMetrics struct {
	created  prometheus.Counter
	voided   prometheus.Counter
	failures *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewLedgerMetrics registra las métricas en registerer (prometheus.DefaultRegisterer si es nil).
// env se agrega como etiqueta constante.
func NewLedgerMetrics(registerer prometheus.Registerer, env string) (*LedgerMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	env = strings.TrimSpace(env)
	if env == "" {
		env = "unknown"
	}
	constLabels := prometheus.Labels{"env": env}

	m := &LedgerMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "optica_invoices_created_total",
			Help:        "Facturas creadas y confirmadas.",
			ConstLabels: constLabels,
		}),
		voided: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "optica_invoices_voided_total",
			Help:        "Facturas anuladas.",
			ConstLabels: constLabels,
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "optica_invoice_creation_failures_total",
			Help:        "Creaciones de factura revertidas, por etapa.",
			ConstLabels: constLabels,
		}, []string{"stage"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "optica_invoice_creation_duration_seconds",
			Help:        "Duración de la creación de facturas confirmadas (incluye el PDF).",
			Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		}),
	}
	for _, c := range []prometheus.Collector{m.created, m.voided, m.failures, m.duration} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *LedgerMetrics) InvoiceCreated() { m.created.Inc() }

func (m *LedgerMetrics) InvoiceVoided() { m.voided.Inc() }

func (m *LedgerMetrics) CreationFailed(stage string) { m.failures.WithLabelValues(stage).Inc() }

func (m *LedgerMetrics) ObserveCreation(d time.Duration) { m.duration.Observe(d.Seconds()) }
