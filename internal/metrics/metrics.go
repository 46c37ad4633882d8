// Package metrics exposes pipeline counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	DocumentsIngested   *prometheus.CounterVec
	AnalysisOutcomes    *prometheus.CounterVec
	ExtractionSources   *prometheus.CounterVec
	CurationTransitions *prometheus.CounterVec
	GeneralEvictions    prometheus.Counter
	IntegrityChecks     *prometheus.CounterVec
	ProviderCalls       *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram
}

// New registers every collector on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		DocumentsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "juriscope",
			Name:      "documents_ingested_total",
			Help:      "Scraped documents offered for intake, by outcome.",
		}, []string{"outcome"}),
		AnalysisOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "juriscope",
			Name:      "analysis_outcomes_total",
			Help:      "Per-document analysis results.",
		}, []string{"outcome"}),
		ExtractionSources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "juriscope",
			Name:      "extraction_source_total",
			Help:      "Where analyzable text came from.",
		}, []string{"source"}),
		CurationTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "juriscope",
			Name:      "curation_transitions_total",
			Help:      "Document status transitions.",
		}, []string{"from", "to"}),
		GeneralEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "juriscope",
			Name:      "general_evictions_total",
			Help:      "Articles pushed out of the general section.",
		}),
		IntegrityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "juriscope",
			Name:      "integrity_checks_total",
			Help:      "Integrity verifications, by resulting status.",
		}, []string{"status"}),
		ProviderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "juriscope",
			Name:      "analyzer_calls_total",
			Help:      "Analyzer provider calls, by provider and result.",
		}, []string{"provider", "result"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "juriscope",
			Name:      "analysis_duration_seconds",
			Help:      "Time spent in the analyzer per document.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
	}
	reg.MustRegister(
		m.DocumentsIngested, m.AnalysisOutcomes, m.ExtractionSources, m.CurationTransitions,
		m.GeneralEvictions, m.IntegrityChecks, m.ProviderCalls, m.AnalysisDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Nil-safe helpers so components can run without metrics.

func (m *Metrics) Ingested(outcome string) {
	if m != nil {
		m.DocumentsIngested.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Analysis(outcome string) {
	if m != nil {
		m.AnalysisOutcomes.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Extracted(source string) {
	if m != nil {
		m.ExtractionSources.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) Transition(from, to string) {
	if m != nil {
		m.CurationTransitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) Evicted(n int) {
	if m != nil && n > 0 {
		m.GeneralEvictions.Add(float64(n))
	}
}

func (m *Metrics) Integrity(status string) {
	if m != nil {
		m.IntegrityChecks.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ProviderCall(provider, result string) {
	if m != nil {
		m.ProviderCalls.WithLabelValues(provider, result).Inc()
	}
}

func (m *Metrics) ObserveAnalysis(seconds float64) {
	if m != nil {
		m.AnalysisDuration.Observe(seconds)
	}
}
