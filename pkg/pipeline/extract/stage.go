// Package extract implements C6: download each classified document,
// extract its structured payload under a per-document lock, and persist the
// result. Grounded on pkg/processing/pipeline/worker.go's bounded pool and
// pkg/processing/extractor/service.go's format-aware preprocessing step.
package extract

import (
	"context"
	"time"

	"pescasolic/internal/repository"
	"pescasolic/pkg/domain"
	"pescasolic/pkg/domainerr"
	"pescasolic/pkg/genai"
	"pescasolic/pkg/objectstore"
	"pescasolic/pkg/pipeline"
	"pescasolic/pkg/textextract"
)

// documentStore, extractionStore, blobStore, and extractor narrow the
// concrete repository/objectstore/genai types down to what this stage
// calls, the same testability seam used by C5 (pkg/pipeline/classify) and
// C8 (pkg/legalcase/sync).
type documentStore interface {
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Document, error)
	ListBySolicitation(ctx context.Context, solicitationID string) ([]*domain.Document, error)
}

type extractionStore interface {
	Upsert(ctx context.Context, e *domain.DocumentExtraction) error
}

type blobStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

type extractor interface {
	Extract(ctx context.Context, classification domain.DocumentClassification, data []byte, mimetype string, precedingText string) (map[string]interface{}, error)
}

type Stage struct {
	documents   documentStore
	extractions extractionStore
	store       blobStore
	gateway     extractor
	locks       *documentLocks
	maxWorkers  int
}

func NewStage(documents *repository.DocumentRepository, extractions *repository.ExtractionRepository, store *objectstore.Store, gateway *genai.Gateway, maxWorkers int) *Stage {
	if maxWorkers <= 0 {
		maxWorkers = 6
	}
	return &Stage{
		documents:   documents,
		extractions: extractions,
		store:       store,
		gateway:     gateway,
		locks:       newDocumentLocks(),
		maxWorkers:  maxWorkers,
	}
}

// Record is one persisted extraction, returned to the caller on success.
type Record struct {
	DocumentID   string
	DocumentType string
	Payload      map[string]interface{}
}

// Result bundles every extraction produced plus the resolved solicitation
// id — nil when the input document set spans more than one solicitation.
type Result struct {
	SolicitationID *string
	Extractions    []Record
}

// Input selects the target document set: either an explicit list of ids or
// a solicitation id that resolves to all of its documents.
type Input struct {
	DocumentIDs    []string
	SolicitationID string
}

func (s *Stage) Run(ctx context.Context, in Input) (*Result, error) {
	docs, err := s.resolveTargets(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domainerr.New(domainerr.InvalidInput, "no documents resolved for extraction")
	}

	records := make([]Record, len(docs))
	type indexedDoc struct {
		doc *domain.Document
		idx int
	}
	indexed := make([]indexedDoc, len(docs))
	for i, d := range docs {
		indexed[i] = indexedDoc{doc: d, idx: i}
	}

	err = pipeline.RunFailFast(ctx, s.maxWorkers, indexed, func(ctx context.Context, item indexedDoc) error {
		rec, err := s.extractOne(ctx, item.doc)
		if err != nil {
			return err
		}
		records[item.idx] = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		SolicitationID: resolvedSolicitationID(docs),
		Extractions:    records,
	}, nil
}

func (s *Stage) extractOne(ctx context.Context, doc *domain.Document) (Record, error) {
	mu := s.locks.lockFor(doc.ID)
	mu.Lock()
	defer mu.Unlock()

	data, err := s.store.Download(ctx, doc.S3Key)
	if err != nil {
		return Record{}, err
	}

	classification := domain.ClassOutro
	if doc.Classification != nil {
		classification = *doc.Classification
	}

	precedingText := textextract.Extract(data, doc.Mimetype)
	payload, err := s.gateway.Extract(ctx, classification, data, doc.Mimetype, precedingText)
	if err != nil {
		return Record{}, err
	}
	normalized := normalizePayload(payload).(map[string]interface{})

	extraction := &domain.DocumentExtraction{
		DocumentID:   doc.ID,
		DocumentType: string(classification),
		Payload:      normalized,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.extractions.Upsert(ctx, extraction); err != nil {
		return Record{}, domainerr.Wrap(domainerr.Extraction, "persist extraction failed", err)
	}

	return Record{DocumentID: doc.ID, DocumentType: extraction.DocumentType, Payload: normalized}, nil
}

func (s *Stage) resolveTargets(ctx context.Context, in Input) ([]*domain.Document, error) {
	if len(in.DocumentIDs) > 0 {
		return s.documents.ListByIDs(ctx, in.DocumentIDs)
	}
	if in.SolicitationID != "" {
		return s.documents.ListBySolicitation(ctx, in.SolicitationID)
	}
	return nil, nil
}

func resolvedSolicitationID(docs []*domain.Document) *string {
	if len(docs) == 0 {
		return nil
	}
	first := docs[0].SolicitationID
	for _, d := range docs[1:] {
		if d.SolicitationID != first {
			return nil
		}
	}
	return &first
}

// normalizePayload recursively walks a decoded JSON value, rendering any
// time.Time it finds as an ISO-8601 string — the shape a provider-returned
// date ever takes once decoded through encoding/json is already a string,
// but this keeps the normalisation step explicit and total over nested
// maps/slices per §4.5 step 2.
func normalizePayload(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, nested := range val {
			out[k] = normalizePayload(nested)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, nested := range val {
			out[i] = normalizePayload(nested)
		}
		return out
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return val
	}
}
