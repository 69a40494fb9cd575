package handlers

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"pescasolic/internal/middleware"
	"pescasolic/internal/models"
	"pescasolic/pkg/domain"
	"pescasolic/pkg/domainerr"
	"pescasolic/pkg/pipeline/classify"
	"pescasolic/pkg/pipeline/extract"
	"pescasolic/pkg/search"
)

// classifyStage, extractStage, and eligibilityStage narrow the concrete
// pipeline stage types down to the one method this handler calls, the same
// seam used inside the stages themselves (see pkg/pipeline/classify/
// stage.go) so handler tests can substitute fakes without a live
// Postgres/S3/GenAI stack.
type classifyStage interface {
	Run(ctx context.Context, uploadedBy string, blobs []classify.Blob) (*classify.Result, error)
}
type extractStage interface {
	Run(ctx context.Context, in extract.Input) (*extract.Result, error)
}
type eligibilityStage interface {
	Run(ctx context.Context, solicitationID string) (*domain.EligibilityResult, error)
}
type solicitationStore interface {
	Get(ctx context.Context, id string) (*domain.Solicitation, error)
}
type documentStore interface {
	ListBySolicitation(ctx context.Context, solicitationID string) ([]*domain.Document, error)
}
type eligibilityResultStore interface {
	Get(ctx context.Context, solicitationID string) (*domain.EligibilityResult, error)
}
type solicitationIndexer interface {
	IndexSolicitation(ctx context.Context, s *domain.Solicitation, elig *domain.EligibilityResult) error
}
type solicitationDashboard interface {
	SolicitationCounts(ctx context.Context) (*search.SolicitationCounts, error)
}

type solicitationDeps struct {
	classify      classifyStage
	extract       extractStage
	eligibility   eligibilityStage
	solicitations solicitationStore
	documents     documentStore
	eligibilities eligibilityResultStore
	indexer       solicitationIndexer
	dashboard     solicitationDashboard
}

// SolicitacaoHandler serves the /solicitacao/* group: C5, C6, C7 plus the
// detail and dashboard reads.
type SolicitacaoHandler struct {
	deps solicitationDeps
}

func newSolicitacaoHandler(deps solicitationDeps) *SolicitacaoHandler {
	return &SolicitacaoHandler{deps: deps}
}

// Classificador handles POST /solicitacao/classificador (C5): a multipart
// upload of 1..15 files.
func (h *SolicitacaoHandler) Classificador(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return domainerr.New(domainerr.InvalidInput, "failed to parse multipart form")
	}

	files := form.File["files"]
	if len(files) == 0 {
		return domainerr.New(domainerr.InvalidInput, "no files provided")
	}

	blobs := make([]classify.Blob, 0, len(files))
	for _, fh := range files {
		data, err := readMultipartFile(fh)
		if err != nil {
			return domainerr.Wrap(domainerr.InvalidInput, "failed to read uploaded file", err)
		}
		blobs = append(blobs, classify.Blob{
			Bytes:    data,
			FileName: fh.Filename,
			Mimetype: fh.Header.Get("Content-Type"),
		})
	}

	uploadedBy := "anonimo"
	if user := middleware.GetUserFromContext(c); user != nil {
		uploadedBy = user.UserID
	}

	result, err := h.deps.classify.Run(c.UserContext(), uploadedBy, blobs)
	if err != nil {
		return err
	}

	if solicitation, getErr := h.deps.solicitations.Get(c.UserContext(), result.SolicitationID); getErr == nil {
		_ = h.deps.indexer.IndexSolicitation(c.UserContext(), solicitation, nil)
	}

	return c.JSON(models.NewSuccessResponse(result, "documents classified"))
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

type extracaoRequest struct {
	SolicitationID string   `json:"solicitation_id,omitempty"`
	DocumentIDs    []string `json:"document_ids,omitempty"`
}

// Extracao handles POST /solicitacao/extracao (C6).
func (h *SolicitacaoHandler) Extracao(c *fiber.Ctx) error {
	var req extracaoRequest
	if err := c.BodyParser(&req); err != nil {
		return domainerr.New(domainerr.InvalidInput, "failed to parse request body")
	}
	if req.SolicitationID == "" && len(req.DocumentIDs) == 0 {
		return domainerr.New(domainerr.InvalidInput, "solicitation_id or document_ids is required")
	}

	result, err := h.deps.extract.Run(c.UserContext(), extract.Input{
		DocumentIDs:    req.DocumentIDs,
		SolicitationID: req.SolicitationID,
	})
	if err != nil {
		return err
	}

	if result.SolicitationID != nil {
		if solicitation, getErr := h.deps.solicitations.Get(c.UserContext(), *result.SolicitationID); getErr == nil {
			_ = h.deps.indexer.IndexSolicitation(c.UserContext(), solicitation, nil)
		}
	}

	return c.JSON(models.NewSuccessResponse(result, "documents extracted"))
}

type elegibilidadeRequest struct {
	SolicitationID string `json:"solicitation_id" validate:"required"`
}

// Elegibilidade handles POST /solicitacao/elegibilidade (C7).
func (h *SolicitacaoHandler) Elegibilidade(c *fiber.Ctx) error {
	var req elegibilidadeRequest
	if err := c.BodyParser(&req); err != nil {
		return domainerr.New(domainerr.InvalidInput, "failed to parse request body")
	}
	if err := models.ValidateStruct(req); err != nil {
		return domainerr.New(domainerr.InvalidInput, "solicitation_id is required")
	}

	result, err := h.deps.eligibility.Run(c.UserContext(), req.SolicitationID)
	if err != nil {
		return err
	}

	if solicitation, getErr := h.deps.solicitations.Get(c.UserContext(), req.SolicitationID); getErr == nil {
		_ = h.deps.indexer.IndexSolicitation(c.UserContext(), solicitation, result)
	}

	return c.JSON(models.NewSuccessResponse(result, "eligibility evaluated"))
}

// solicitationDetail is what GET /solicitacao/{id} renders: the
// Solicitation plus its documents and latest eligibility verdict.
type solicitationDetail struct {
	Solicitation interface{} `json:"solicitation"`
	Documents    interface{} `json:"documents"`
	Eligibility  interface{} `json:"eligibility,omitempty"`
}

// Get handles GET /solicitacao/{id}.
func (h *SolicitacaoHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return domainerr.New(domainerr.InvalidInput, "id is required")
	}

	solicitation, err := h.deps.solicitations.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	docs, err := h.deps.documents.ListBySolicitation(c.UserContext(), id)
	if err != nil {
		return err
	}

	detail := solicitationDetail{Solicitation: solicitation, Documents: docs}
	if elig, err := h.deps.eligibilities.Get(c.UserContext(), id); err == nil {
		detail.Eligibility = elig
	}

	return c.JSON(models.NewSuccessResponse(detail, ""))
}

// Dashboard handles GET /solicitacao/dashboard.
func (h *SolicitacaoHandler) Dashboard(c *fiber.Ctx) error {
	counts, err := h.deps.dashboard.SolicitationCounts(c.UserContext())
	if err != nil {
		return domainerr.Wrap(domainerr.Storage, "dashboard aggregation failed", err)
	}
	return c.JSON(models.NewSuccessResponse(counts, ""))
}
