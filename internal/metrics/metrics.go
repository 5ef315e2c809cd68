// Package metrics defines the Prometheus collectors for the retrieval,
// answering and ingestion pipelines.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "archivist_search_total",
		Help: "Scoped searches by retrieval mode (ranked, fallback, empty).",
	}, []string{"mode"})

	SearchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "archivist_search_duration_seconds",
		Help:    "Time spent in lexical index searches.",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	CompletionAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "archivist_completion_attempts_total",
		Help: "Completion calls by provider and outcome (success, transient, permanent).",
	}, []string{"provider", "outcome"})

	CompletionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "archivist_completion_duration_seconds",
		Help:    "Duration of individual completion calls.",
		Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 15, 30, 60, 120},
	}, []string{"provider"})

	IngestedDocuments = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "archivist_ingested_documents_total",
		Help: "Ingested records by collection and action (upsert, tombstone, skip, error).",
	}, []string{"collection", "action"})

	AskTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "archivist_ask_total",
		Help: "Questions by outcome (answered, failed, no_scope, empty).",
	}, []string{"outcome"})
)

var registerOnce sync.Once

// MustRegister registers all collectors. Safe to call more than once.
func MustRegister(registerer prometheus.Registerer) {
	registerOnce.Do(func() {
		registerer.MustRegister(
			SearchTotal,
			SearchDuration,
			CompletionAttempts,
			CompletionDuration,
			IngestedDocuments,
			AskTotal,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCompletion records one completion attempt.
func ObserveCompletion(provider, outcome string, start time.Time) {
	CompletionAttempts.WithLabelValues(provider, outcome).Inc()
	CompletionDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
