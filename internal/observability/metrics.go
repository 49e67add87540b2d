package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BriefsTotal counts finished briefs by terminal status.
	BriefsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adwola_briefs_total",
		Help: "Total number of briefs by terminal status",
	}, []string{"status"})

	// PostsGenerated counts persisted posts by platform.
	PostsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adwola_posts_generated_total",
		Help: "Total number of generated posts by platform",
	}, []string{"platform"})

	// PostGenerationFailures counts per-post failures by pipeline stage.
	PostGenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adwola_post_generation_failures_total",
		Help: "Total number of failed post generation steps by stage",
	}, []string{"stage"})

	// AIRequestDuration records latency of calls to the model providers.
	AIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adwola_ai_request_duration_seconds",
		Help:    "Latency of AI provider requests in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
	}, []string{"kind"})

	UsageCheckFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adwola_usage_check_failures_total",
		Help: "Total number of usage limit checks that could not be completed",
	})
)

// TrackAIRequest returns a function that records the request latency when called.
func TrackAIRequest(kind string) func() {
	start := time.Now()
	return func() {
		AIRequestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
}
