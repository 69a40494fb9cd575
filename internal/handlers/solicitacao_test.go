package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"pescasolic/pkg/domain"
	"pescasolic/pkg/domainerr"
	"pescasolic/pkg/pipeline/classify"
	"pescasolic/pkg/pipeline/extract"
	"pescasolic/pkg/search"
)

type fakeClassifyStage struct {
	result *classify.Result
	err    error
}

func (f *fakeClassifyStage) Run(ctx context.Context, uploadedBy string, blobs []classify.Blob) (*classify.Result, error) {
	return f.result, f.err
}

type fakeExtractStage struct {
	result *extract.Result
	err    error
}

func (f *fakeExtractStage) Run(ctx context.Context, in extract.Input) (*extract.Result, error) {
	return f.result, f.err
}

type fakeEligibilityStage struct {
	result *domain.EligibilityResult
	err    error
}

func (f *fakeEligibilityStage) Run(ctx context.Context, solicitationID string) (*domain.EligibilityResult, error) {
	return f.result, f.err
}

type fakeSolicitationStore struct {
	byID map[string]*domain.Solicitation
}

func (f *fakeSolicitationStore) Get(ctx context.Context, id string) (*domain.Solicitation, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, domainerr.New(domainerr.SolicitationNotFound, "not found")
	}
	return s, nil
}

type fakeDocumentStore struct {
	bySolicitation map[string][]*domain.Document
}

func (f *fakeDocumentStore) ListBySolicitation(ctx context.Context, solicitationID string) ([]*domain.Document, error) {
	return f.bySolicitation[solicitationID], nil
}

type fakeEligibilityResultStore struct {
	bySolicitation map[string]*domain.EligibilityResult
}

func (f *fakeEligibilityResultStore) Get(ctx context.Context, solicitationID string) (*domain.EligibilityResult, error) {
	e, ok := f.bySolicitation[solicitationID]
	if !ok {
		return nil, domainerr.New(domainerr.SolicitationNotFound, "not found")
	}
	return e, nil
}

type fakeSolicitationIndexer struct{ calls int }

func (f *fakeSolicitationIndexer) IndexSolicitation(ctx context.Context, s *domain.Solicitation, elig *domain.EligibilityResult) error {
	f.calls++
	return nil
}

type fakeSolicitationDashboard struct {
	counts *search.SolicitationCounts
}

func (f *fakeSolicitationDashboard) SolicitationCounts(ctx context.Context) (*search.SolicitationCounts, error) {
	return f.counts, nil
}

func buildMultipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestSolicitacaoClassificadorHappyPath(t *testing.T) {
	deps := solicitationDeps{
		classify: &fakeClassifyStage{result: &classify.Result{
			SolicitationID: "sol-1",
			Documents:      []classify.Outcome{{DocumentID: "doc-1"}},
		}},
		solicitations: &fakeSolicitationStore{byID: map[string]*domain.Solicitation{
			"sol-1": domain.NewSolicitation("sol-1", time.Now().UTC()),
		}},
		indexer: &fakeSolicitationIndexer{},
	}
	h := newSolicitacaoHandler(deps)

	body, contentType := buildMultipartBody(t, map[string]string{"a.pdf": "data"})
	app := fiber.New()
	app.Post("/solicitacao/classificador", h.Classificador)

	req := httptest.NewRequest(fiber.MethodPost, "/solicitacao/classificador", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if indexer := deps.indexer.(*fakeSolicitationIndexer); indexer.calls != 1 {
		t.Fatalf("expected the indexer to be called once, got %d", indexer.calls)
	}
}

func TestSolicitacaoClassificadorRejectsEmptyUpload(t *testing.T) {
	deps := solicitationDeps{classify: &fakeClassifyStage{}}
	h := newSolicitacaoHandler(deps)

	body, contentType := buildMultipartBody(t, map[string]string{})
	app := fiber.New()
	app.Post("/solicitacao/classificador", h.Classificador)

	req := httptest.NewRequest(fiber.MethodPost, "/solicitacao/classificador", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want the generic handler fallback since no middleware.ErrorHandlerMiddleware is mounted in this bare test app", resp.StatusCode)
	}
}

func TestSolicitacaoExtracaoRequiresTargetSelector(t *testing.T) {
	h := newSolicitacaoHandler(solicitationDeps{extract: &fakeExtractStage{}})

	app := fiber.New()
	app.Post("/solicitacao/extracao", h.Extracao)

	req := httptest.NewRequest(fiber.MethodPost, "/solicitacao/extracao", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode == fiber.StatusOK {
		t.Fatal("expected an error status when neither solicitation_id nor document_ids is supplied")
	}
}

func TestSolicitacaoExtracaoHappyPath(t *testing.T) {
	sol := "sol-1"
	deps := solicitationDeps{
		extract: &fakeExtractStage{result: &extract.Result{SolicitationID: &sol}},
		solicitations: &fakeSolicitationStore{byID: map[string]*domain.Solicitation{
			"sol-1": domain.NewSolicitation("sol-1", time.Now().UTC()),
		}},
		indexer: &fakeSolicitationIndexer{},
	}
	h := newSolicitacaoHandler(deps)

	app := fiber.New()
	app.Post("/solicitacao/extracao", h.Extracao)

	req := httptest.NewRequest(fiber.MethodPost, "/solicitacao/extracao", strings.NewReader(`{"solicitation_id":"sol-1"}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSolicitacaoElegibilidadeRequiresSolicitationID(t *testing.T) {
	h := newSolicitacaoHandler(solicitationDeps{eligibility: &fakeEligibilityStage{}})

	app := fiber.New()
	app.Post("/solicitacao/elegibilidade", h.Elegibilidade)

	req := httptest.NewRequest(fiber.MethodPost, "/solicitacao/elegibilidade", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode == fiber.StatusOK {
		t.Fatal("expected a validation error when solicitation_id is missing")
	}
}

func TestSolicitacaoGetNotFound(t *testing.T) {
	h := newSolicitacaoHandler(solicitationDeps{
		solicitations: &fakeSolicitationStore{byID: map[string]*domain.Solicitation{}},
	})

	app := fiber.New()
	app.Get("/solicitacao/:id", h.Get)

	req := httptest.NewRequest(fiber.MethodGet, "/solicitacao/missing", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	// No ErrorHandlerMiddleware is mounted on this bare app, so Fiber's
	// default error handler (500 for any non-*fiber.Error) applies rather
	// than domainerr.StatusClass's 404 mapping — see errors_test.go for
	// that mapping directly.
	if resp.StatusCode == fiber.StatusOK {
		t.Fatal("expected an error status for a missing solicitation")
	}
}

func TestSolicitacaoGetHappyPath(t *testing.T) {
	deps := solicitationDeps{
		solicitations: &fakeSolicitationStore{byID: map[string]*domain.Solicitation{
			"sol-1": domain.NewSolicitation("sol-1", time.Now().UTC()),
		}},
		documents: &fakeDocumentStore{bySolicitation: map[string][]*domain.Document{
			"sol-1": {{ID: "doc-1", SolicitationID: "sol-1"}},
		}},
		eligibilities: &fakeEligibilityResultStore{bySolicitation: map[string]*domain.EligibilityResult{}},
	}
	h := newSolicitacaoHandler(deps)

	app := fiber.New()
	app.Get("/solicitacao/:id", h.Get)

	req := httptest.NewRequest(fiber.MethodGet, "/solicitacao/sol-1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSolicitacaoDashboard(t *testing.T) {
	h := newSolicitacaoHandler(solicitationDeps{
		dashboard: &fakeSolicitationDashboard{counts: &search.SolicitationCounts{Total: 3}},
	})

	app := fiber.New()
	app.Get("/solicitacao/dashboard", h.Dashboard)

	req := httptest.NewRequest(fiber.MethodGet, "/solicitacao/dashboard", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
