package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for auth operations.
type Metrics struct {
	Logins          prometheus.Counter
	LoginFailures   *prometheus.CounterVec
	Registrations   prometheus.Counter
	TokensIssued    *prometheus.CounterVec
	TokenRefreshes  prometheus.Counter
	LoginDurationMs prometheus.Histogram
}

// New registers and returns auth metrics collectors.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clavis_logins_total",
			Help: "Total number of successful logins",
		}),
		LoginFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clavis_login_failures_total",
			Help: "Total number of failed logins by reason",
		}, []string{"reason"}),
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clavis_registrations_total",
			Help: "Total number of users registered",
		}),
		TokensIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clavis_tokens_issued_total",
			Help: "Total number of tokens issued by kind",
		}, []string{"kind"}),
		TokenRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clavis_token_refreshes_total",
			Help: "Total number of access tokens reissued via refresh",
		}),
		LoginDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clavis_login_duration_ms",
			Help:    "Duration of login requests in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
	}
}
