// Package metrics exposes ingestion counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/tabinspect/internal/ingest"
)

const namespace = "tabinspect"

// Outcome labels for encoding attempts.
const (
	OutcomeDecoded  = "decoded"
	OutcomeRejected = "rejected"
	OutcomeFatal    = "fatal"
)

// Recorder implements ingest.Observer on top of a Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	attempts *prometheus.CounterVec
	loads    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder registers the ingestion metrics on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encoding_attempts_total",
			Help:      "Encoding attempts on delimited files by candidate and outcome.",
		}, []string{"encoding", "outcome"}),
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Load calls by kind and result (loaded or the failure kind).",
		}, []string{"kind", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of Load calls.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"kind"}),
	}
}

// Attempt counts one encoding attempt.
func (r *Recorder) Attempt(encoding string, err error) {
	outcome := OutcomeDecoded
	switch {
	case err == nil:
	case ingest.IsDecodeError(err):
		outcome = OutcomeRejected
	default:
		outcome = OutcomeFatal
	}
	r.attempts.WithLabelValues(encoding, outcome).Inc()
}

// Loaded counts one Load call and observes its duration.
func (r *Recorder) Loaded(kind ingest.Kind, res ingest.Result, elapsed time.Duration) {
	result := "loaded"
	if res.Failure != nil {
		result = res.Failure.Kind.String()
	}
	r.loads.WithLabelValues(kind.String(), result).Inc()
	r.duration.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
}

// Registry returns the registry holding the ingestion metrics.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
