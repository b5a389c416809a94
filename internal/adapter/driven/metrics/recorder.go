// Package metrics exposes Prometheus counters for verification traffic,
// expiry sweeps, and HTTP requests on a private registry.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/credtrust/internal/domain/model"
	"github.com/ericfisherdev/credtrust/internal/domain/port/driven"
)

const namespace = "credtrust"

// Compile-time interface satisfaction check.
var _ driven.VerificationCounter = (*Recorder)(nil)

// Recorder owns the service's Prometheus collectors. It never touches the
// global default registry, so several Recorders can coexist in tests.
type Recorder struct {
	registry *prometheus.Registry

	verifications       *prometheus.CounterVec
	sweepExpired        prometheus.Counter
	sweepRuns           prometheus.Counter
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors
// registered alongside the service metrics.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Recorder{
		registry: reg,
		verifications: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Verification requests by lookup method and outcome.",
		}, []string{"method", "outcome"}),
		sweepExpired: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "expired_total",
			Help:      "Credentials moved to expired by the expiry sweep.",
		}),
		sweepRuns: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Completed expiry sweeps.",
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern, and status code.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// RecordVerification counts one verification outcome.
func (r *Recorder) RecordVerification(_ context.Context, event model.VerificationEvent) error {
	method := string(event.Method)
	if method == "" {
		method = "unknown"
	}
	r.verifications.WithLabelValues(method, event.Outcome).Inc()
	return nil
}

// RecordSweep counts one completed expiry sweep.
func (r *Recorder) RecordSweep(expired int64) {
	r.sweepRuns.Inc()
	if expired > 0 {
		r.sweepExpired.Add(float64(expired))
	}
}

// ObserveHTTPRequest records a finished request. route is the mux pattern,
// never the raw path, to keep label cardinality bounded.
func (r *Recorder) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
