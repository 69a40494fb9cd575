package handlers

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"pescasolic/pkg/domain"
	"pescasolic/pkg/domainerr"
	lcprovider "pescasolic/pkg/legalcase/provider"
	"pescasolic/pkg/search"
)

const testCNJ = "00000012320248260001"
const testCNJCanonical = "0000001-23.2024.8.26.0001"

type fakeLegalCaseStore struct {
	byNumero map[string]*domain.LegalCase
	upserted []*domain.LegalCase
}

func (f *fakeLegalCaseStore) GetByNumero(ctx context.Context, numero string) (*domain.LegalCase, error) {
	lc, ok := f.byNumero[numero]
	if !ok {
		return nil, domainerr.New(domainerr.LegalCaseNotFound, "not found")
	}
	return lc, nil
}

func (f *fakeLegalCaseStore) Upsert(ctx context.Context, c *domain.LegalCase) error {
	f.upserted = append(f.upserted, c)
	return nil
}

type fakeCaseProvider struct {
	result *lcprovider.Result
	err    error
}

func (f *fakeCaseProvider) FindCase(ctx context.Context, numeroProcesso, court string) (*lcprovider.Result, error) {
	return f.result, f.err
}

type fakeLegalCaseIndexer struct{ calls int }

func (f *fakeLegalCaseIndexer) IndexLegalCase(ctx context.Context, c *domain.LegalCase) error {
	f.calls++
	return nil
}

type fakeLegalCaseDashboard struct {
	counts *search.LegalCaseCounts
}

func (f *fakeLegalCaseDashboard) LegalCaseCounts(ctx context.Context) (*search.LegalCaseCounts, error) {
	return f.counts, nil
}

func TestProcessosConsultarReturnsPersistedCase(t *testing.T) {
	h := newProcessosHandler(processosDeps{
		legalCases: &fakeLegalCaseStore{byNumero: map[string]*domain.LegalCase{
			testCNJCanonical: {ID: "case-1", NumeroProcesso: testCNJCanonical},
		}},
	})

	app := fiber.New()
	app.Get("/processos/consultar/:cnj", h.Consultar)

	req := httptest.NewRequest(fiber.MethodGet, "/processos/consultar/"+testCNJ, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestProcessosConsultarRejectsInvalidCNJ(t *testing.T) {
	h := newProcessosHandler(processosDeps{legalCases: &fakeLegalCaseStore{byNumero: map[string]*domain.LegalCase{}}})

	app := fiber.New()
	app.Get("/processos/consultar/:cnj", h.Consultar)

	req := httptest.NewRequest(fiber.MethodGet, "/processos/consultar/abc", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode == fiber.StatusOK {
		t.Fatal("expected an error status for a malformed cnj number")
	}
}

func TestProcessosConsultarRequiresTribunalWhenUntracked(t *testing.T) {
	h := newProcessosHandler(processosDeps{legalCases: &fakeLegalCaseStore{byNumero: map[string]*domain.LegalCase{}}})

	app := fiber.New()
	app.Get("/processos/consultar/:cnj", h.Consultar)

	req := httptest.NewRequest(fiber.MethodGet, "/processos/consultar/"+testCNJ, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode == fiber.StatusOK {
		t.Fatal("expected an error status when tribunal query param is missing and nothing is tracked")
	}
}

func TestProcessosConsultarQueriesProviderWhenUntracked(t *testing.T) {
	indexer := &fakeLegalCaseIndexer{}
	store := &fakeLegalCaseStore{byNumero: map[string]*domain.LegalCase{}}
	h := newProcessosHandler(processosDeps{
		legalCases: store,
		provider: &fakeCaseProvider{result: &lcprovider.Result{
			Case: &domain.LegalCase{ID: "case-1", NumeroProcesso: testCNJCanonical},
		}},
		indexer: indexer,
	})

	app := fiber.New()
	app.Get("/processos/consultar/:cnj", h.Consultar)

	req := httptest.NewRequest(fiber.MethodGet, "/processos/consultar/"+testCNJ+"?tribunal=TJSP", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(store.upserted) != 1 {
		t.Fatalf("expected the found case to be persisted, got %d upserts", len(store.upserted))
	}
	if indexer.calls != 1 {
		t.Fatalf("expected the indexer to be called once, got %d", indexer.calls)
	}
}

func TestProcessosDashboard(t *testing.T) {
	h := newProcessosHandler(processosDeps{
		dashboard: &fakeLegalCaseDashboard{counts: &search.LegalCaseCounts{Total: 5}},
	})

	app := fiber.New()
	app.Get("/processos/dashboard", h.Dashboard)

	req := httptest.NewRequest(fiber.MethodGet, "/processos/dashboard", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
