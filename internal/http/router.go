package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/cartsync/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Inventory      Inventory
	Log            logrus.FieldLogger
	Registry       *prometheus.Registry
	RequestTimeout time.Duration
}

// NewRouter builds the catalog API served to cart clients
func NewRouter(cfg RouterConfig) http.Handler {
	handler := NewCatalogHandler(cfg.Inventory, cfg.Log)
	serverMetrics := metrics.NewServerMetrics(cfg.Registry, "catalog")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer)
	r.Use(Instrument(serverMetrics))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", handler.Health)
	r.Handle("/metrics", metrics.Handler(cfg.Registry))

	r.Get("/products", handler.ListProducts)
	r.Get("/products/{id}", handler.GetProduct)
	r.Get("/stock/{id}", handler.GetStock)
	r.Put("/stock/{id}", handler.SetStock)

	return otelhttp.NewHandler(r, "catalog-api")
}
