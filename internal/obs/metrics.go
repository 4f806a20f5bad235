package obs

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the checkout core. A nil
// *Metrics is valid and records nothing, so tests can run without
// touching the default registry.
type Metrics struct {
	Scans            *prometheus.CounterVec
	Checkouts        *prometheus.CounterVec
	Cancellations    prometheus.Counter
	CheckoutDuration prometheus.Histogram
}

// NewMetrics registers and returns the service collectors. Call once per
// process; registration panics on duplicates.
func NewMetrics() *Metrics {
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "checkout",
		Name:      "scans_total",
		Help:      "Total number of scan batches by outcome.",
	}, []string{"outcome"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "checkout",
		Name:      "checkouts_total",
		Help:      "Total number of finish-scan attempts by outcome.",
	}, []string{"outcome"})
	cancellations := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "checkout",
		Name:      "cancellations_total",
		Help:      "Total number of cancelled scan sessions.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pos",
		Subsystem: "checkout",
		Name:      "checkout_duration_ms",
		Help:      "Checkout transaction latency in milliseconds.",
		Buckets:   []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	prometheus.MustRegister(scans, checkouts, cancellations, duration)
	return &Metrics{
		Scans:            scans,
		Checkouts:        checkouts,
		Cancellations:    cancellations,
		CheckoutDuration: duration,
	}
}

// ObserveScan records the outcome of one scan batch.
func (m *Metrics) ObserveScan(outcome string) {
	if m == nil {
		return
	}
	m.Scans.WithLabelValues(outcome).Inc()
}

// ObserveCheckout records the outcome and latency of one finish-scan call.
func (m *Metrics) ObserveCheckout(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
	m.CheckoutDuration.Observe(float64(d.Microseconds()) / 1000.0)
}

// ObserveCancellation records one cancelled session.
func (m *Metrics) ObserveCancellation() {
	if m == nil {
		return
	}
	m.Cancellations.Inc()
}

// MetricsHandler exposes the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
