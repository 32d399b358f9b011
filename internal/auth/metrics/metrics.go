package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for auth operations.
type Metrics struct {
	Registrations   prometheus.Counter
	Logins          prometheus.Counter
	Refreshes       prometheus.Counter
	Logouts         prometheus.Counter
	AuthFailures    *prometheus.CounterVec
	RefreshReuse    prometheus.Counter
	PasswordHashing prometheus.Histogram
}

// New registers auth collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Name: "rhymcaffer_auth_registrations_total",
			Help: "Total number of successful registrations",
		}),
		Logins: f.NewCounter(prometheus.CounterOpts{
			Name: "rhymcaffer_auth_logins_total",
			Help: "Total number of successful logins",
		}),
		Refreshes: f.NewCounter(prometheus.CounterOpts{
			Name: "rhymcaffer_auth_refreshes_total",
			Help: "Total number of successful token refreshes",
		}),
		Logouts: f.NewCounter(prometheus.CounterOpts{
			Name: "rhymcaffer_auth_logouts_total",
			Help: "Total number of logouts",
		}),
		AuthFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rhymcaffer_auth_failures_total",
			Help: "Total number of authentication failures by reason",
		}, []string{"reason"}),
		RefreshReuse: f.NewCounter(prometheus.CounterOpts{
			Name: "rhymcaffer_auth_refresh_reuse_total",
			Help: "Refresh attempts with an already consumed or revoked refresh token",
		}),
		PasswordHashing: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rhymcaffer_auth_password_hash_duration_ms",
			Help:    "Duration of password hashing and comparison in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

func (m *Metrics) IncrementRegistrations() { m.Registrations.Inc() }
func (m *Metrics) IncrementLogins()        { m.Logins.Inc() }
func (m *Metrics) IncrementRefreshes()     { m.Refreshes.Inc() }
func (m *Metrics) IncrementLogouts()       { m.Logouts.Inc() }
func (m *Metrics) IncrementRefreshReuse()  { m.RefreshReuse.Inc() }

func (m *Metrics) IncrementAuthFailures(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObservePasswordHashing(durationMs float64) {
	m.PasswordHashing.Observe(durationMs)
}
