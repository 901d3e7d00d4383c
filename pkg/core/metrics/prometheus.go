// Package metrics exposes Prometheus instruments for searches, filing tasks and LLM calls.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "counsel_search_duration_seconds",
			Help:    "End-to-end search duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"direction"},
	)

	SearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counsel_search_total",
			Help: "Searches by direction and final status",
		},
		[]string{"direction", "status"},
	)

	TaskOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counsel_task_outcomes_total",
			Help: "Per-task outcomes reported by the worker pools",
		},
		[]string{"pool", "outcome"},
	)

	SearchPages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counsel_fulltext_pages_total",
			Help: "Full-text search pages fetched",
		},
		[]string{"status"},
	)

	LLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counsel_llm_calls_total",
			Help: "Language-model extraction attempts",
		},
		[]string{"provider", "status"},
	)

	RuleMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counsel_rule_candidates_total",
			Help: "Validated candidates produced per extraction rule",
		},
		[]string{"rule"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "counsel_cache_lookups_total",
			Help: "Result cache lookups",
		},
		[]string{"backend", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		SearchDuration,
		SearchTotal,
		TaskOutcomes,
		SearchPages,
		LLMCalls,
		RuleMatches,
		CacheLookups,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
