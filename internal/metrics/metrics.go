// Package metrics exposes prometheus instruments for multi-document runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/invoice-extractor/internal/async"
)

type Metrics struct {
	documents   *prometheus.CounterVec
	backends    *prometheus.CounterVec
	fields      *prometheus.CounterVec
	escalations prometheus.Counter
	duration    prometheus.Histogram
}

// New registers the instruments on reg. Use a fresh registry per process or test.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		documents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invoicex_documents_total",
			Help: "Documents processed, by outcome status",
		}, []string{"status"}),
		backends: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invoicex_backend_selected_total",
			Help: "Documents whose text came from each backend",
		}, []string{"backend"}),
		fields: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invoicex_fields_extracted_total",
			Help: "Non-null fields extracted, by field",
		}, []string{"field"}),
		escalations: f.NewCounter(prometheus.CounterOpts{
			Name: "invoicex_ocr_escalations_total",
			Help: "Documents for which OCR was attempted",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoicex_document_duration_seconds",
			Help:    "Time taken to extract one document",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 180},
		}),
	}
}

// ObserveJob implements async.Observer.
func (m *Metrics) ObserveJob(r async.JobResult) {
	m.documents.WithLabelValues(string(r.Status)).Inc()
	m.duration.Observe(r.Duration.Seconds())
	if r.Err != nil {
		return
	}
	if sel := r.Outcome.Selected; sel.Backend != "" {
		m.backends.WithLabelValues(sel.Backend).Inc()
		if sel.Escalated {
			m.escalations.Inc()
		}
	}
	rec := r.Outcome.Record
	if rec.InvoiceNumber != nil {
		m.fields.WithLabelValues("invoice_number").Inc()
	}
	if rec.InvoiceDate != nil {
		m.fields.WithLabelValues("invoice_date").Inc()
	}
	if rec.InvoiceID != nil {
		m.fields.WithLabelValues("invoice_id").Inc()
	}
	if rec.TotalAmount != nil {
		m.fields.WithLabelValues("total_amount").Inc()
	}
}

// Handler serves the registry in the prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
