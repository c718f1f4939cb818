package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "netprofile"

// Probe results used as the "result" label.
const (
	ResultHealthy     = "healthy"
	ResultUnhealthy   = "unhealthy"
	ResultUnreachable = "unreachable"
	ResultInvalid     = "invalid"
)

// Metrics holds the collectors updated by profile checks.
type Metrics struct {
	probes        *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	healthy       *prometheus.GaugeVec
	cacheHits     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Profile checks by result.",
		}, []string{"profile", "result"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Time spent probing the node of a profile.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"profile"}),
		healthy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profile_healthy",
			Help:      "1 when the last check of the profile was healthy.",
		}, []string{"profile"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_cache_hits_total",
			Help:      "Status requests served from cache.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.probes, m.probeDuration, m.healthy, m.cacheHits)
	}
	return m
}

// MustRegisterMetrics creates the collectors on the default prometheus registry.
func MustRegisterMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// ObserveProbe records the outcome of one profile check.
func (m *Metrics) ObserveProbe(profile, result string, took time.Duration) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(profile, result).Inc()
	m.probeDuration.WithLabelValues(profile).Observe(took.Seconds())
	if result == ResultHealthy {
		m.healthy.WithLabelValues(profile).Set(1)
	} else {
		m.healthy.WithLabelValues(profile).Set(0)
	}
}

// CacheHit counts a status served from cache.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}
