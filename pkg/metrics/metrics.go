// Package metrics exposes Prometheus instrumentation for the build pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewbuilder_llm_requests_total",
			Help: "Total number of LLM requests by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewbuilder_tokens_total",
			Help: "Total tokens consumed by provider and direction",
		},
		[]string{"provider", "direction"},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewbuilder_runs_total",
			Help: "Total runs by final status",
		},
		[]string{"status"},
	)

	TasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crewbuilder_tasks_total",
			Help: "Total executed tasks by final status",
		},
		[]string{"status"},
	)

	RateLimitWaitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crewbuilder_rate_limit_waits_total",
			Help: "Number of times execution paused for rate limiting",
		},
	)
)

// RecordUsage increments the token counters for one LLM call.
func RecordUsage(provider string, promptTokens, completionTokens int) {
	TokensTotal.WithLabelValues(provider, "prompt").Add(float64(promptTokens))
	TokensTotal.WithLabelValues(provider, "completion").Add(float64(completionTokens))
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
