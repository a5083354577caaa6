package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for credential resolution
type Metrics struct {
	// Resolution metrics
	ResolutionsTotal   *prometheus.CounterVec
	ResolutionDuration *prometheus.HistogramVec

	// Defaults-cache metrics
	DefaultsCacheLookups *prometheus.CounterVec

	// Token fetch metrics
	TokenFetchErrors *prometheus.CounterVec
}

// Config holds configuration for metrics
type Config struct {
	// Namespace for metrics (default: "dbt_bigquery_auth")
	Namespace string

	// Subsystem for metrics (default: "")
	Subsystem string

	// Registry to use (default: prometheus.DefaultRegisterer)
	Registry prometheus.Registerer
}

// DefaultConfig returns default metrics configuration
func DefaultConfig() Config {
	return Config{
		Namespace: "dbt_bigquery_auth",
		Subsystem: "",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(config Config) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "dbt_bigquery_auth"
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "resolutions_total",
				Help:      "Total number of credential resolution attempts",
			},
			[]string{"method", "status"},
		),

		ResolutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "resolution_duration_seconds",
				Help:      "Credential resolution duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),

		DefaultsCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "defaults_cache_lookups_total",
				Help:      "Total number of ambient-credential cache lookups",
			},
			[]string{"result"},
		),

		TokenFetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: config.Namespace,
				Subsystem: config.Subsystem,
				Name:      "token_fetch_errors_total",
				Help:      "Total number of access token fetch failures",
			},
			[]string{"method"},
		),
	}
}

// ObserveResolution records one resolution attempt. Safe on a nil
// receiver so callers can leave metrics unconfigured.
func (m *Metrics) ObserveResolution(method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(method, status).Inc()
	m.ResolutionDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// CacheLookup records a defaults-cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.DefaultsCacheLookups.WithLabelValues(result).Inc()
}

// TokenFetchError records a failed access token fetch.
func (m *Metrics) TokenFetchError(method string) {
	if m == nil {
		return
	}
	m.TokenFetchErrors.WithLabelValues(method).Inc()
}
