package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"pescasolic/pkg/metrics"
)

func newTestApp(h fiber.Handler, method, path string) *fiber.App {
	app := fiber.New()
	app.Add(method, path, h)
	return app
}

func TestHealthHandlerHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc := metrics.New(reg)
	h := newHealthHandler(mc, reg)

	app := newTestApp(h.Health, fiber.MethodGet, "/health")
	req := httptest.NewRequest(fiber.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestHealthHandlerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc := metrics.New(reg)
	h := newHealthHandler(mc, reg)

	app := newTestApp(h.Metrics, fiber.MethodGet, "/metrics")
	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct == "" {
		t.Fatal("expected a Content-Type header on the Prometheus exposition body")
	}
}
