// Package handlers wires C1-C10 into the Fiber-facing HTTP surface of §6:
// one handler type per route group, each a thin adapter translating a
// request into a stage call and the stage's result into the uniform
// {data, errors[]} envelope. Grounded on the teacher's internal/handlers
// package, which plays the identical "container holds every dependency,
// constructed once in New" role for its own (very different) domain.
package handlers

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"pescasolic/internal/config"
	"pescasolic/internal/repository"
	"pescasolic/pkg/genai"
	lcprovider "pescasolic/pkg/legalcase/provider"
	lcsync "pescasolic/pkg/legalcase/sync"
	"pescasolic/pkg/metrics"
	"pescasolic/pkg/objectstore"
	"pescasolic/pkg/pipeline/classify"
	"pescasolic/pkg/pipeline/eligibility"
	"pescasolic/pkg/pipeline/extract"
	"pescasolic/pkg/search"
	searchclient "pescasolic/pkg/search/client"
)

// Handlers bundles every route group plus the one background job
// (LegalCaseSync) cmd/server schedules on a cron trigger.
type Handlers struct {
	Solicitacao *SolicitacaoHandler
	Processos   *ProcessosHandler
	Health      *HealthHandler

	LegalCaseSync *lcsync.Job

	db *repository.DB
}

// New constructs every process-wide singleton named in §9 (semaphore,
// mutex registry, prompt cache are built deeper inside their own packages)
// and assembles the handler groups. Call Close when the process shuts down.
func New(ctx context.Context, cfg *config.Config) (*Handlers, error) {
	db, err := repository.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	solicitations := repository.NewSolicitationRepository(db.Pool)
	documents := repository.NewDocumentRepository(db.Pool)
	extractions := repository.NewExtractionRepository(db.Pool)
	eligibilityResults := repository.NewEligibilityRepository(db.Pool)
	legalCases := repository.NewLegalCaseRepository(db)
	schedulerLocks := repository.NewSchedulerLockRepository(db)

	store, err := objectstore.New(ctx, objectstore.Config{
		Region:         cfg.Storage.Region,
		Bucket:         cfg.Storage.Bucket,
		AccessKey:      cfg.Storage.AccessKeyID,
		SecretKey:      cfg.Storage.SecretAccessKey,
		Endpoint:       cfg.Storage.Endpoint,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build object store: %w", err)
	}

	prompts, err := genai.LoadPromptRegistry(cfg.GenAI.PromptsPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load prompt registry: %w", err)
	}

	var provider genai.Provider
	switch cfg.GenAI.Provider {
	case "mock":
		provider = &genai.MockProvider{}
	default:
		provider = genai.NewOpenAIProvider(cfg.GenAI.APIKey, cfg.GenAI.Model, cfg.GenAI.CallTimeout)
	}

	registry := prometheus.NewRegistry()
	mc := metrics.New(registry)

	gateway := genai.NewGateway(provider, prompts, genai.Config{
		MaxInFlight: cfg.GenAI.MaxInFlight,
		Retry: genai.RetryConfig{
			MaxAttempts: cfg.GenAI.RetryMaxAttempts,
			WaitInitial: cfg.GenAI.RetryInitial,
			WaitMax:     cfg.GenAI.RetryMax,
		},
		CallTimeout: cfg.GenAI.CallTimeout,
	}, mc)

	classifyStage := classify.NewStage(solicitations, documents, store, gateway, mc, cfg.Processing.MaxClassifyWorkers)
	extractStage := extract.NewStage(documents, extractions, store, gateway, cfg.Processing.MaxExtractWorkers)
	eligibilityStage := eligibility.NewStage(solicitations, documents, extractions, eligibilityResults, gateway, cfg.GenAI.RulesPath)

	legalClient := lcprovider.New(cfg.LegalCase.BaseURL, cfg.LegalCase.APIKey, cfg.LegalCase.Timeout)
	syncJob := lcsync.NewJob(legalCases, schedulerLocks, legalClient, mc, lcsync.Config{
		BatchSize:   cfg.Scheduler.CronBatchSize,
		StaleAfter:  cfg.Scheduler.StaleAfter,
		LockTTL:     cfg.Scheduler.LockTTL,
		ExternalRPM: cfg.Scheduler.ExternalRPM,
	})

	searchCli, err := searchclient.NewClient(searchclient.Config{
		Host:     cfg.OpenSearch.Host,
		Port:     cfg.OpenSearch.Port,
		Username: cfg.OpenSearch.Username,
		Password: cfg.OpenSearch.Password,
		UseSSL:   cfg.OpenSearch.UseSSL,
	}, cfg.OpenSearch.Index)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build search client: %w", err)
	}
	indexer := search.NewIndexer(searchCli)
	dashboard := search.NewDashboard(searchCli)

	return &Handlers{
		Solicitacao: newSolicitacaoHandler(solicitationDeps{
			classify:      classifyStage,
			extract:       extractStage,
			eligibility:   eligibilityStage,
			solicitations: solicitations,
			documents:     documents,
			eligibilities: eligibilityResults,
			indexer:       indexer,
			dashboard:     dashboard,
		}),
		Processos: newProcessosHandler(processosDeps{
			legalCases: legalCases,
			provider:   legalClient,
			indexer:    indexer,
			dashboard:  dashboard,
		}),
		Health:        newHealthHandler(mc, registry),
		LegalCaseSync: syncJob,
		db:            db,
	}, nil
}

func (h *Handlers) Close() {
	h.db.Close()
}
