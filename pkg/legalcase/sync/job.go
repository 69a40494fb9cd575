// Package sync implements C8: a cron-triggered job that refreshes stale
// legal cases from the external judicial provider under a distributed lock
// and a per-call rate limit. Grounded on the teacher's scheduled-job
// wiring in cmd/server/main.go (robfig/cron/v3) and on
// pkg/processing/pipeline/worker.go for the bounded per-case fan-out.
package sync

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"pescasolic/internal/repository"
	"pescasolic/pkg/domain"
	"pescasolic/pkg/legalcase/provider"
	"pescasolic/pkg/metrics"
)

// Config bundles the environment-driven knobs of §6.
type Config struct {
	BatchSize      int
	StaleAfter     time.Duration
	LockTTL        time.Duration
	ExternalRPM    int
}

// Summary is what one run returns, matching §4.8's reporting shape.
type Summary struct {
	Candidates    int      `json:"candidates"`
	Updated       int      `json:"updated"`
	Skipped       int      `json:"skipped"`
	NewMovements  int      `json:"new_movements"`
	FieldChanges  int      `json:"field_changes"`
	Errors        []string `json:"errors,omitempty"`
}

// legalCaseStore and lockStore narrow *repository.LegalCaseRepository and
// *repository.SchedulerLockRepository down to what this job calls, so unit
// tests can substitute fakes instead of a live Postgres — the repository
// invariants themselves (uniqueness, cascade) stay covered by the
// -tags=integration suite (see SPEC_FULL.md §8).
type legalCaseStore interface {
	SelectStale(ctx context.Context, threshold time.Time, limit int) ([]*domain.LegalCase, error)
	ExistingMovementKeys(ctx context.Context, legalCaseID string) (map[domain.MovementKey]bool, error)
	ApplyCaseUpdates(ctx context.Context, update domain.CaseUpdate) error
}

type lockStore interface {
	TryAcquire(ctx context.Context, lockName string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, lockName string) error
}

// caseProvider narrows *provider.Client to C3's single operation.
type caseProvider interface {
	FindCase(ctx context.Context, cnjNumber, courtAcronym string) (*provider.Result, error)
}

type Job struct {
	legalCases legalCaseStore
	locks      lockStore
	client     caseProvider
	metrics    *metrics.Collector
	cfg        Config
}

func NewJob(legalCases *repository.LegalCaseRepository, locks *repository.SchedulerLockRepository, client *provider.Client, mc *metrics.Collector, cfg Config) *Job {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 3 * 24 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Minute
	}
	if cfg.ExternalRPM <= 0 {
		cfg.ExternalRPM = 60
	}
	return &Job{legalCases: legalCases, locks: locks, client: client, metrics: mc, cfg: cfg}
}

// Run executes one scheduler tick: try the lock, bail out quietly if
// another instance already holds it, otherwise process the stale batch
// under the configured rate limit and release the lock on the way out.
func (j *Job) Run(ctx context.Context) (*Summary, error) {
	acquired, err := j.locks.TryAcquire(ctx, domain.UpdateLegalCasesLockName, j.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire scheduler lock: %w", err)
	}
	if !acquired {
		if j.metrics != nil {
			j.metrics.CronSkipped.Inc()
		}
		return &Summary{}, nil
	}
	defer func() {
		if err := j.locks.Release(ctx, domain.UpdateLegalCasesLockName); err != nil {
			log.Printf("[legalcase-sync] release lock failed: %v", err)
		}
	}()

	if j.metrics != nil {
		j.metrics.CronRuns.Inc()
	}

	threshold := time.Now().UTC().Add(-j.cfg.StaleAfter)
	candidates, err := j.legalCases.SelectStale(ctx, threshold, j.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("select stale legal cases: %w", err)
	}

	summary := &Summary{Candidates: len(candidates)}
	limiter := rate.NewLimiter(rate.Limit(float64(j.cfg.ExternalRPM)/60.0), 1)

	for _, existing := range candidates {
		if err := limiter.Wait(ctx); err != nil {
			summary.Errors = append(summary.Errors, err.Error())
			break
		}

		skipped, err := j.refreshOne(ctx, existing, summary)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", existing.NumeroProcesso, err))
			if j.metrics != nil {
				j.metrics.CronErrors.Inc()
			}
			continue
		}
		if skipped {
			summary.Skipped++
		}
	}

	return summary, nil
}

// refreshOne reports (skipped=true) when the provider has no hit for this
// case (§4.8 "if no hit, increment skipped") and returns an error only for
// genuine transport/persistence failures, which are tallied separately.
func (j *Job) refreshOne(ctx context.Context, existing *domain.LegalCase, summary *Summary) (bool, error) {
	result, err := j.client.FindCase(ctx, existing.NumeroProcesso, existing.Court)
	if err != nil {
		return false, err
	}
	if result == nil {
		return true, nil
	}

	existingKeys, err := j.legalCases.ExistingMovementKeys(ctx, existing.ID)
	if err != nil {
		return false, err
	}

	var fresh []domain.LegalCaseMovement
	for _, m := range result.Movements {
		if !existingKeys[m.Key()] {
			fresh = append(fresh, m)
		}
	}

	update := domain.CaseUpdate{
		Case:         result.Case,
		NewMovements: fresh,
		FieldChanges: fieldChanges(existing, result.Case),
	}
	update.Case.ID = existing.ID

	if err := j.legalCases.ApplyCaseUpdates(ctx, update); err != nil {
		return false, err
	}

	summary.Updated++
	summary.NewMovements += len(fresh)
	summary.FieldChanges += update.FieldChanges
	if j.metrics != nil {
		j.metrics.CronCasesUpdated.Inc()
	}
	return false, nil
}

// fieldChanges counts how many top-level fields differ between the locally
// stored case and the freshly fetched one, for the run summary's
// field_changes count (§4.8).
func fieldChanges(before, after *domain.LegalCase) int {
	n := 0
	if before.Body != after.Body {
		n++
	}
	if before.Class != after.Class {
		n++
	}
	if before.Subject != after.Subject {
		n++
	}
	if before.Status != after.Status {
		n++
	}
	if before.Movimentacoes != after.Movimentacoes {
		n++
	}
	return n
}
