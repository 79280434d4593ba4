package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cartsync"

// CartMetrics tracks mutation outcomes of a cart store
type CartMetrics struct {
	Mutations *prometheus.CounterVec
	Items     prometheus.Gauge
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "mutations_total",
		Help:      "Cart mutations by operation and outcome.",
	}, []string{"operation", "outcome"})
	items := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "items",
		Help:      "Total units currently in the cart.",
	})

	reg.MustRegister(mutations, items)
	return &CartMetrics{Mutations: mutations, Items: items}
}

func (m *CartMetrics) Observe(operation, outcome string, totalItems int) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(operation, outcome).Inc()
	m.Items.Set(float64(totalItems))
}

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
