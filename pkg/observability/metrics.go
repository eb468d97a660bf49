package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ActivitiesProcessed counts processed activities by activity type and
// terminal result ("ok", "error").
var ActivitiesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "relay",
	Name:      "activities_processed_total",
	Help:      "Activities dispatched through the processor.",
}, []string{"type", "result"})

// ActivityDuration observes end-to-end handler chain latency per activity type.
var ActivityDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "relay",
	Name:      "activity_duration_seconds",
	Help:      "Handler chain execution time.",
	Buckets:   prometheus.DefBuckets,
}, []string{"type"})

// RetryAttempts counts retried operation attempts (the first attempt is not
// a retry).
var RetryAttempts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "relay",
	Name:      "retry_attempts_total",
	Help:      "Operation retries performed by the retry policy.",
})

// TokenRefreshes counts external token issuance calls by token kind
// ("bot", "graph").
var TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "relay",
	Name:      "token_refreshes_total",
	Help:      "External token issuance calls.",
}, []string{"kind"})
