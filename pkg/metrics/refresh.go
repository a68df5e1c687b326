package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RefreshMetrics records outcomes of snapshot refreshes against remote
// sources: the product catalog, the exchange-rate feed, and homepage content.
type RefreshMetrics struct {
	duration   *prometheus.HistogramVec
	success    *prometheus.CounterVec
	failure    *prometheus.CounterVec
	staleServe *prometheus.CounterVec
}

// NewRefreshMetrics registers the refresh metrics on the provided registerer.
func NewRefreshMetrics(reg prometheus.Registerer) *RefreshMetrics {
	if reg == nil {
		return &RefreshMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapshot_refresh_duration_seconds",
		Help:    "Duration of snapshot refreshes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_refresh_success",
		Help: "Successful snapshot refreshes.",
	}, []string{"source"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_refresh_failure",
		Help: "Failed snapshot refreshes.",
	}, []string{"source"})
	staleServe := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_stale_serves",
		Help: "Reads served from a stale snapshot after a refresh failure.",
	}, []string{"source"})
	reg.MustRegister(duration, success, failure, staleServe)
	return &RefreshMetrics{
		duration:   duration,
		success:    success,
		failure:    failure,
		staleServe: staleServe,
	}
}

// ObserveDuration records the duration for the named source.
func (r *RefreshMetrics) ObserveDuration(source string, duration time.Duration) {
	if r == nil || r.duration == nil {
		return
	}
	r.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named source.
func (r *RefreshMetrics) IncSuccess(source string) {
	if r == nil || r.success == nil {
		return
	}
	r.success.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncFailure increments the failure counter for the named source.
func (r *RefreshMetrics) IncFailure(source string) {
	if r == nil || r.failure == nil {
		return
	}
	r.failure.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncStaleServe increments the stale-serve counter for the named source.
func (r *RefreshMetrics) IncStaleServe(source string) {
	if r == nil || r.staleServe == nil {
		return
	}
	r.staleServe.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}
