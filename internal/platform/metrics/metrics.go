package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway. A nil *Metrics is
// valid and records nothing, so tests can pass nil.
type Metrics struct {
	Lookups          *prometheus.CounterVec
	TrustRejections  *prometheus.CounterVec
	RateLimitDenials prometheus.Counter
	CaptchaVerdicts  *prometheus.CounterVec
	BackendLatency   prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "order_gateway_lookups_total",
			Help: "Order lookups by terminal outcome",
		}, []string{"outcome"}),
		TrustRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "order_gateway_trust_rejections_total",
			Help: "Requests rejected by the trust stage",
		}, []string{"reason"}),
		RateLimitDenials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "order_gateway_rate_limit_denials_total",
			Help: "Requests denied by the rate limiter",
		}),
		CaptchaVerdicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "order_gateway_captcha_verdicts_total",
			Help: "CAPTCHA verification verdicts",
		}, []string{"verdict"}),
		BackendLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "order_gateway_backend_latency_seconds",
			Help:    "Latency of order-management backend calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) RecordLookup(outcome string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordTrustRejection(reason string) {
	if m == nil {
		return
	}
	m.TrustRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordRateLimitDenial() {
	if m == nil {
		return
	}
	m.RateLimitDenials.Inc()
}

func (m *Metrics) RecordCaptchaVerdict(verdict string) {
	if m == nil {
		return
	}
	m.CaptchaVerdicts.WithLabelValues(verdict).Inc()
}

func (m *Metrics) ObserveBackendLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.BackendLatency.Observe(d.Seconds())
}
