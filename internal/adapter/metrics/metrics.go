package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the logs service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	EntriesTotal     prometheus.Counter
	BackendDuration  *prometheus.HistogramVec
	CredentialsTotal *prometheus.CounterVec
	TokenCacheHits   prometheus.Counter
	TokenCacheMisses prometheus.Counter
	RateLimitedTotal prometheus.Counter
}

// New initializes the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logg",
			Subsystem: "api",
			Name:      "logs_requests_total",
			Help:      "Total number of /logs requests by outcome.",
		}, []string{"status"}), // status: ok, invalid, error
		EntriesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "logg",
			Subsystem: "api",
			Name:      "log_entries_returned_total",
			Help:      "Total number of log entries returned to clients.",
		}),
		BackendDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "logg",
			Subsystem: "backend",
			Name:      "read_duration_seconds",
			Help:      "Latency of LogReadingService.Read calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}), // status: ok, error
		CredentialsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logg",
			Subsystem: "auth",
			Name:      "credential_resolutions_total",
			Help:      "Credential resolutions by winning source.",
		}, []string{"source"}),
		TokenCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "logg",
			Subsystem: "auth",
			Name:      "token_cache_hits_total",
			Help:      "Total number of IAM token cache hits.",
		}),
		TokenCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "logg",
			Subsystem: "auth",
			Name:      "token_cache_misses_total",
			Help:      "Total number of IAM token cache misses.",
		}),
		RateLimitedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "logg",
			Subsystem: "api",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		}),
	}
}
