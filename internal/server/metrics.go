package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are registered on a per-service registry so several services
// (and tests) can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	calculations     *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	rateLimited      prometheus.Counter
	subscribers      prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &metrics{
		registry: reg,
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emicalc_http_requests_total",
				Help: "Total HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emicalc_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"route"},
		),
		calculations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emicalc_calculations_total",
				Help: "Completed loan calculations by scheme and affordability band",
			},
			[]string{"scheme", "affordability"},
		),
		validationErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emicalc_validation_errors_total",
				Help: "Rejected inputs by offending field",
			},
			[]string{"field"},
		),
		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "emicalc_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
		subscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "emicalc_stream_subscribers",
			Help: "Open /v1/stream connections",
		}),
	}
}
