// Package prometheus collects the ChemPrep server metrics. Each Metrics
// instance owns its own registry, so tests and embedded servers never fight
// over the global default registry.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chemprep"

// Metrics bundles every instrument exposed by the HTTP server.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequests counts finished requests by method, path and status.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration tracks request latency by method and path.
	HTTPDuration *prometheus.HistogramVec

	// MoleculesParsed counts successfully parsed SMILES strings.
	MoleculesParsed prometheus.Counter

	// MoleculesInvalid counts SMILES strings rejected by the parser.
	MoleculesInvalid prometheus.Counter

	// MatrixCells counts computed similarity-matrix cells by metric name.
	MatrixCells *prometheus.CounterVec

	// MatrixDuration tracks full matrix computation time by metric name.
	MatrixDuration *prometheus.HistogramVec
}

// New constructs a Metrics instance backed by a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		MoleculesParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "molecules",
			Name:      "parsed_total",
			Help:      "Total number of SMILES strings successfully parsed.",
		}),
		MoleculesInvalid: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "molecules",
			Name:      "invalid_total",
			Help:      "Total number of SMILES strings rejected by the parser.",
		}),
		MatrixCells: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "similarity",
			Name:      "matrix_cells_total",
			Help:      "Total number of similarity matrix cells computed.",
		}, []string{"metric"}),
		MatrixDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "similarity",
			Name:      "matrix_duration_seconds",
			Help:      "Wall time of full similarity matrix computations.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60, 300},
		}, []string{"metric"}),
	}
}

// Handler returns the /metrics endpoint handler for this instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished HTTP request.
func (m *Metrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveMatrix records one completed similarity matrix computation.
func (m *Metrics) ObserveMatrix(metric string, cells int, elapsed time.Duration) {
	m.MatrixCells.WithLabelValues(metric).Add(float64(cells))
	m.MatrixDuration.WithLabelValues(metric).Observe(elapsed.Seconds())
}
