package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pickupwatch"

// Check results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics collects availability check metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry
	checks   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	stores   *prometheus.GaugeVec
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Availability checks by country and result.",
		}, []string{"country", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Time spent on one availability check, handshake included.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"country"}),
		stores: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "available_stores",
			Help:      "Stores offering pickup of a model at the last check.",
		}, []string{"country", "model"}),
	}

	m.registry.MustRegister(
		m.checks,
		m.duration,
		m.stores,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCheck counts a finished check
func (m *Metrics) ObserveCheck(country string, elapsed time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.checks.WithLabelValues(country, result).Inc()
	m.duration.WithLabelValues(country).Observe(elapsed.Seconds())
}

// SetAvailableStores records how many stores offer model
func (m *Metrics) SetAvailableStores(country, model string, stores int) {
	m.stores.WithLabelValues(country, model).Set(float64(stores))
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
