package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pescasolic/internal/models"
	"pescasolic/pkg/metrics"
)

// HealthHandler serves /health and /metrics.
type HealthHandler struct {
	metrics  *metrics.Collector
	registry *prometheus.Registry
}

func newHealthHandler(mc *metrics.Collector, reg *prometheus.Registry) *HealthHandler {
	return &HealthHandler{metrics: mc, registry: reg}
}

// Health handles GET /health: liveness plus host gauges.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	snap := h.metrics.HealthSnapshot(c.Context())
	return c.JSON(models.NewSuccessResponse(snap, "ok"))
}

// Metrics handles GET /metrics: Prometheus exposition format.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}
