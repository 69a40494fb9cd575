// Package metrics exposes the in-process counters every stage increments,
// surfaced at /metrics in Prometheus exposition format and summarised at
// /health alongside host gauges.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Collector is the process-wide singleton every stage reaches into. Built
// once at startup and passed down by reference — the same "process-wide
// singleton with explicit init" shape the semaphore and mutex registry use.
type Collector struct {
	startTime time.Time

	RetriesClassify               prometheus.Counter
	RetriesExtract                prometheus.Counter
	DocumentClassificationErrors prometheus.Counter
	ExtractionErrors              prometheus.Counter
	CronRuns                      prometheus.Counter
	CronSkipped                   prometheus.Counter
	CronCasesUpdated              prometheus.Counter
	CronErrors                    prometheus.Counter
}

// New registers every counter against reg and returns the collector.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		startTime: time.Now(),
		RetriesClassify: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pescasolic_retries_classify_total",
			Help: "GenAI classify-call retry attempts.",
		}),
		RetriesExtract: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pescasolic_retries_extract_total",
			Help: "GenAI extract-call retry attempts.",
		}),
		DocumentClassificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pescasolic_document_classification_errors_total",
			Help: "Per-document classification failures swallowed by C5.",
		}),
		ExtractionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pescasolic_extraction_errors_total",
			Help: "Extraction task failures.",
		}),
		CronRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pescasolic_legal_case_sync_runs_total",
			Help: "Legal-case sync job invocations that acquired the lock.",
		}),
		CronSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pescasolic_legal_case_sync_skipped_total",
			Help: "Legal-case sync job invocations that found the lock busy.",
		}),
		CronCasesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pescasolic_legal_case_sync_cases_updated_total",
			Help: "Legal cases updated by the sync job.",
		}),
		CronErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pescasolic_legal_case_sync_errors_total",
			Help: "Per-case errors collected by the sync job.",
		}),
	}
	reg.MustRegister(
		c.RetriesClassify, c.RetriesExtract, c.DocumentClassificationErrors,
		c.ExtractionErrors, c.CronRuns, c.CronSkipped, c.CronCasesUpdated, c.CronErrors,
	)
	return c
}

// HealthSnapshot is the payload /health returns: uptime plus host gauges
// read live via gopsutil, matching the teacher's own liveness handler shape.
type HealthSnapshot struct {
	Uptime      time.Duration `json:"uptime"`
	CPUPercent  float64       `json:"cpu_percent"`
	MemoryUsed  float64       `json:"memory_used_percent"`
}

func (c *Collector) HealthSnapshot(ctx context.Context) HealthSnapshot {
	snap := HealthSnapshot{Uptime: time.Since(c.startTime)}
	if pct, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(pct) > 0 {
		snap.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snap.MemoryUsed = vm.UsedPercent
	}
	return snap
}
