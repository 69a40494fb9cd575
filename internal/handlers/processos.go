package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"pescasolic/internal/models"
	"pescasolic/pkg/domain"
	"pescasolic/pkg/domainerr"
	lcprovider "pescasolic/pkg/legalcase/provider"
	"pescasolic/pkg/search"
)

// legalCaseStore, caseProvider, legalCaseIndexer, and legalCaseDashboard
// narrow the concrete repository/provider/search types to the methods this
// handler calls, the same seam used throughout the pipeline stages and C8.
type legalCaseStore interface {
	GetByNumero(ctx context.Context, numero string) (*domain.LegalCase, error)
	Upsert(ctx context.Context, c *domain.LegalCase) error
}
type caseProvider interface {
	FindCase(ctx context.Context, numeroProcesso, court string) (*lcprovider.Result, error)
}
type legalCaseIndexer interface {
	IndexLegalCase(ctx context.Context, c *domain.LegalCase) error
}
type legalCaseDashboard interface {
	LegalCaseCounts(ctx context.Context) (*search.LegalCaseCounts, error)
}

type processosDeps struct {
	legalCases legalCaseStore
	provider   caseProvider
	indexer    legalCaseIndexer
	dashboard  legalCaseDashboard
}

// ProcessosHandler serves the /processos/* group: CNJ lookup (C3, backed by
// the persisted mirror) and the dashboard aggregation.
type ProcessosHandler struct {
	deps processosDeps
}

func newProcessosHandler(deps processosDeps) *ProcessosHandler {
	return &ProcessosHandler{deps: deps}
}

// Consultar handles GET /processos/consultar/{cnj}: returns the persisted
// LegalCase if one is already tracked, otherwise queries C3 for it via the
// court query parameter and persists what it finds.
func (h *ProcessosHandler) Consultar(c *fiber.Ctx) error {
	cnj := c.Params("cnj")
	digits, err := domain.NormalizeCNJ(cnj)
	if err != nil {
		return domainerr.Wrap(domainerr.InvalidInput, "invalid cnj number", err)
	}
	canonical, err := domain.CanonicalCNJ(digits)
	if err != nil {
		return domainerr.Wrap(domainerr.InvalidInput, "invalid cnj number", err)
	}

	existing, err := h.deps.legalCases.GetByNumero(c.UserContext(), canonical)
	if err == nil {
		return c.JSON(models.NewSuccessResponse(existing, ""))
	}

	court := c.Query("tribunal")
	if court == "" {
		return domainerr.New(domainerr.LegalCaseNotFound, "legal case not found: "+canonical)
	}

	result, err := h.deps.provider.FindCase(c.UserContext(), canonical, court)
	if err != nil {
		return domainerr.Wrap(domainerr.LegalCaseNotFound, "legal case provider query failed", err)
	}
	if result == nil {
		return domainerr.New(domainerr.LegalCaseNotFound, "legal case not found: "+canonical)
	}

	if err := h.deps.legalCases.Upsert(c.UserContext(), result.Case); err != nil {
		return domainerr.Wrap(domainerr.LegalCasePersistence, "persist legal case failed", err)
	}
	_ = h.deps.indexer.IndexLegalCase(c.UserContext(), result.Case)

	return c.JSON(models.NewSuccessResponse(result.Case, ""))
}

// Dashboard handles GET /processos/dashboard.
func (h *ProcessosHandler) Dashboard(c *fiber.Ctx) error {
	counts, err := h.deps.dashboard.LegalCaseCounts(c.UserContext())
	if err != nil {
		return domainerr.Wrap(domainerr.Storage, "dashboard aggregation failed", err)
	}
	return c.JSON(models.NewSuccessResponse(counts, ""))
}
