// Package metrics exposes the engine's Prometheus collectors. Every
// collector is registered on Registry, which the HTTP layer serves at
// /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tutorloop"

// Registry holds every tutorloop collector plus the Go runtime collectors.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	SessionsStarted = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Practice sessions started, by session type.",
	}, []string{"type"})

	SessionsCompleted = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_completed_total",
		Help:      "Practice sessions completed, by session type.",
	}, []string{"type"})

	SessionsAbandoned = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_abandoned_total",
		Help:      "Live sessions discarded without completion.",
	})

	ActiveSessions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Sessions currently in progress or paused.",
	})

	Answers = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_total",
		Help:      "Submitted answers, by correctness.",
	}, []string{"correct"})

	SessionDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "session_duration_seconds",
		Help:      "Active session duration excluding paused time.",
		Buckets:   []float64{60, 120, 300, 600, 900, 1200, 1800, 2700, 3600},
	}, []string{"type"})

	MistakesClassified = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mistakes_classified_total",
		Help:      "Mistakes attributed to a misconception, by classifier.",
	}, []string{"classifier"})

	ReviewsGraded = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_graded_total",
		Help:      "Review card gradings, by quality score.",
	}, []string{"quality"})

	Optimizations = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "curriculum_optimizations_total",
		Help:      "Curriculum optimization outcomes (optimized, skipped, review, failed).",
	}, []string{"outcome"})

	Dropped = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "background_items_dropped_total",
		Help:      "Items dropped because a background queue was full.",
	}, []string{"queue"})

	LLMRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_requests_total",
		Help:      "Generative service requests, by provider, purpose and outcome.",
	}, []string{"provider", "purpose", "outcome"})

	LLMLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_request_duration_seconds",
		Help:      "Generative service request latency.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 9),
	}, []string{"provider", "purpose"})

	LLMRetries = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_retries_total",
		Help:      "Generative service requests sent again after a transient failure.",
	}, []string{"provider"})

	HTTPRequests = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "API request latency, by route and status class.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// Outcome is the label value for a boolean success.
func Outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
