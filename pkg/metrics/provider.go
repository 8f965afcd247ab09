package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics records outbound calls to delivery and payment providers.
type ProviderMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	fallback prometheus.Counter
}

// NewProviderMetrics registers the provider metrics on the provided registerer.
func NewProviderMetrics(reg prometheus.Registerer) *ProviderMetrics {
	if reg == nil {
		return &ProviderMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provider_call_duration_seconds",
		Help:    "Duration of outbound provider calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_call_success",
		Help: "Successful provider calls.",
	}, []string{"provider"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provider_call_failure",
		Help: "Failed or timed out provider calls.",
	}, []string{"provider", "reason"})
	fallback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delivery_fallback_used",
		Help: "Delivery quotes answered from the static fallback table.",
	})
	reg.MustRegister(duration, success, failure, fallback)
	return &ProviderMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		fallback: fallback,
	}
}

// ObserveDuration records the duration for the named provider.
func (p *ProviderMetrics) ObserveDuration(provider string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(provider)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named provider.
func (p *ProviderMetrics) IncSuccess(provider string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(provider)).Inc()
}

// IncFailure increments the failure counter. reason is typically "error" or "timeout".
func (p *ProviderMetrics) IncFailure(provider, reason string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(provider), normalizeLabel(reason)).Inc()
}

// IncFallback counts a quote served from the fallback table.
func (p *ProviderMetrics) IncFallback() {
	if p == nil || p.fallback == nil {
		return
	}
	p.fallback.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
