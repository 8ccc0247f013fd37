// Package metrics declares the prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "commerce"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SalesRegistered prometheus.Counter
	UnitsSold       prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Dispatched commands and queries by request type and outcome.",
		}, []string{"request", "outcome"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Handler latency by request type.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"request"}),
		SalesRegistered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_registered_total",
			Help:      "Sales committed by the register-sale workflow.",
		}),
		UnitsSold: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_sold_total",
			Help:      "Product units decremented from stock by committed sales.",
		}),
	}
}

// ObserveRequest records one dispatch.
func (m *Metrics) ObserveRequest(request, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(request, outcome).Inc()
	m.RequestDuration.WithLabelValues(request).Observe(seconds)
}

// ObserveSale records a committed sale of units items.
func (m *Metrics) ObserveSale(units int) {
	if m == nil {
		return
	}
	m.SalesRegistered.Inc()
	m.UnitsSold.Add(float64(units))
}
