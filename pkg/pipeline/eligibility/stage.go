// Package eligibility implements C7: gather a solicitation's documents and
// extractions, call the evaluation prompt with the opaque rules text
// prepended, normalise the verdict, and persist both the EligibilityResult
// and the resulting Solicitation status transition. Grounded on the
// teacher's handler-composition style (load, call, persist, respond) seen
// throughout internal/handlers.
package eligibility

import (
	"context"
	"encoding/json"
	"time"

	"pescasolic/internal/repository"
	"pescasolic/pkg/domain"
	"pescasolic/pkg/domainerr"
	"pescasolic/pkg/genai"
)

// solicitationStore, documentStore, extractionStore, eligibilityStore, and
// evaluator narrow the concrete repository/genai types down to what this
// stage calls — the same testability seam as C5/C6/C8.
type solicitationStore interface {
	Get(ctx context.Context, id string) (*domain.Solicitation, error)
	UpdateStatus(ctx context.Context, id string, status domain.SolicitationStatus, updatedAt time.Time) error
}

type documentStore interface {
	ListBySolicitation(ctx context.Context, solicitationID string) ([]*domain.Document, error)
}

type extractionStore interface {
	ListByDocumentIDs(ctx context.Context, documentIDs []string) ([]*domain.DocumentExtraction, error)
}

type eligibilityStore interface {
	Upsert(ctx context.Context, e *domain.EligibilityResult) error
}

type evaluator interface {
	Evaluate(ctx context.Context, in genai.EvaluateInput) (genai.EvaluateOutput, error)
}

type Stage struct {
	solicitations solicitationStore
	documents     documentStore
	extractions   extractionStore
	eligibility   eligibilityStore
	gateway       evaluator
	rulesPath     string
}

func NewStage(solicitations *repository.SolicitationRepository, documents *repository.DocumentRepository, extractions *repository.ExtractionRepository, eligibility *repository.EligibilityRepository, gateway *genai.Gateway, rulesPath string) *Stage {
	return &Stage{
		solicitations: solicitations,
		documents:     documents,
		extractions:   extractions,
		eligibility:   eligibility,
		gateway:       gateway,
		rulesPath:     rulesPath,
	}
}

type documentSummary struct {
	ID             string                 `json:"id"`
	FileName       string                 `json:"file_name"`
	Classification string                 `json:"classification"`
	Extraction     map[string]interface{} `json:"extraction"`
}

type evaluationPayload struct {
	SolicitationID string             `json:"solicitation_id"`
	FisherData     map[string]interface{} `json:"fisher_data,omitempty"`
	Documents      []documentSummary  `json:"documents"`
}

// Run executes §4.6's algorithm in full and returns the persisted verdict.
func (s *Stage) Run(ctx context.Context, solicitationID string) (*domain.EligibilityResult, error) {
	solicitation, err := s.solicitations.Get(ctx, solicitationID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.ListBySolicitation(ctx, solicitationID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domainerr.New(domainerr.IncompleteData, "solicitation has no documents: "+solicitationID)
	}

	docIDs := make([]string, len(docs))
	for i, d := range docs {
		docIDs[i] = d.ID
	}
	extractionsByDoc, err := s.loadExtractions(ctx, docIDs)
	if err != nil {
		return nil, err
	}
	if len(extractionsByDoc) == 0 {
		return nil, domainerr.New(domainerr.IncompleteData, "solicitation has no extracted documents: "+solicitationID)
	}

	payload := evaluationPayload{SolicitationID: solicitationID, FisherData: solicitation.FisherData}
	for _, d := range docs {
		extraction, ok := extractionsByDoc[d.ID]
		if !ok {
			continue
		}
		classification := string(domain.ClassOutro)
		if d.Classification != nil {
			classification = string(*d.Classification)
		}
		payload.Documents = append(payload.Documents, documentSummary{
			ID:             d.ID,
			FileName:       d.FileName,
			Classification: classification,
			Extraction:     extraction.Payload,
		})
	}

	rulesText, err := loadRulesText(s.rulesPath)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.EligibilityComputation, "load rules text failed", err)
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.EligibilityComputation, "marshal evaluation payload failed", err)
	}

	out, err := s.gateway.Evaluate(ctx, genai.EvaluateInput{RulesText: rulesText, PayloadJSON: string(payloadJSON)})
	if err != nil {
		return nil, err
	}

	result := &domain.EligibilityResult{
		SolicitationID: solicitationID,
		Status:         normalizeStatus(out.RawStatus),
		ScoreText:      out.ScoreText,
		PendingItems:   out.PendingItems,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.eligibility.Upsert(ctx, result); err != nil {
		return nil, domainerr.Wrap(domainerr.EligibilityComputation, "persist eligibility result failed", err)
	}

	// Status-update failure is swallowed: the eligibility record above is the
	// authoritative artifact, per §4.6 step 8.
	nextStatus := domain.NextStatusForEligibility(result.Status, len(result.PendingItems) > 0)
	_ = s.solicitations.UpdateStatus(ctx, solicitationID, nextStatus, result.UpdatedAt)

	return result, nil
}

func (s *Stage) loadExtractions(ctx context.Context, documentIDs []string) (map[string]*domain.DocumentExtraction, error) {
	extractions, err := s.extractions.ListByDocumentIDs(ctx, documentIDs)
	if err != nil {
		return nil, err
	}
	byDoc := make(map[string]*domain.DocumentExtraction, len(extractions))
	for _, e := range extractions {
		byDoc[e.DocumentID] = e
	}
	return byDoc, nil
}
