// Package classify implements C5: accept uploaded blobs, create a
// solicitation, persist each blob, and fan out classification in bounded
// parallel. Grounded on the teacher's batch-upload handler
// (internal/handlers/batch.go) for the fan-out orchestration shape and on
// pkg/processing/pipeline/worker.go for the bounded-pool discipline.
package classify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"pescasolic/internal/repository"
	"pescasolic/pkg/domain"
	"pescasolic/pkg/domainerr"
	"pescasolic/pkg/genai"
	"pescasolic/pkg/metrics"
	"pescasolic/pkg/objectstore"
	"pescasolic/pkg/pipeline"
	"pescasolic/pkg/reqctx"
)

const (
	minBlobs = 1
	maxBlobs = 15
)

// Blob is one uploaded file as handed to the stage by the HTTP edge.
type Blob struct {
	Bytes    []byte
	FileName string
	Mimetype string
}

// Outcome is one document's classification result.
type Outcome struct {
	DocumentID     string
	Classification *domain.DocumentClassification
}

// Result is C5's return value: the new solicitation id and every
// successfully classified document (unclassified documents are persisted
// but omitted here, per §4.4 step 4).
type Result struct {
	SolicitationID string
	Documents      []Outcome
}

// solicitationCreator, documentStore, blobStore, and classifier narrow the
// concrete *repository.*/*objectstore.Store/*genai.Gateway types down to
// what this stage calls, the same seam the legal-case sync job (C8) uses so
// unit tests can substitute fakes instead of a live Postgres/S3/provider —
// see pkg/legalcase/sync/job.go.
type solicitationCreator interface {
	Create(ctx context.Context, s *domain.Solicitation) error
}

type documentStore interface {
	Create(ctx context.Context, d *domain.Document) error
	SetClassification(ctx context.Context, documentID string, classification domain.DocumentClassification, confidence *float64) error
}

type blobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type classifier interface {
	Classify(ctx context.Context, data []byte, mimetype string) genai.ClassifyResult
}

type Stage struct {
	solicitations solicitationCreator
	documents     documentStore
	store         blobStore
	gateway       classifier
	metrics       *metrics.Collector
	maxWorkers    int
}

func NewStage(solicitations *repository.SolicitationRepository, documents *repository.DocumentRepository, store *objectstore.Store, gateway *genai.Gateway, mc *metrics.Collector, maxWorkers int) *Stage {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &Stage{solicitations: solicitations, documents: documents, store: store, gateway: gateway, metrics: mc, maxWorkers: maxWorkers}
}

// Run executes §4.4's algorithm in full.
func (s *Stage) Run(ctx context.Context, uploadedBy string, blobs []Blob) (*Result, error) {
	if len(blobs) < minBlobs || len(blobs) > maxBlobs {
		return nil, domainerr.New(domainerr.InvalidInput, fmt.Sprintf("expected between %d and %d files, got %d", minBlobs, maxBlobs, len(blobs)))
	}
	for _, b := range blobs {
		if !domain.AllowedUploadMimetypes[b.Mimetype] {
			return nil, domainerr.New(domainerr.InvalidInput, "unsupported mimetype: "+b.Mimetype)
		}
	}

	now := time.Now().UTC()
	solicitationID := uuid.NewString()
	solicitation := domain.NewSolicitation(solicitationID, now)
	if err := s.solicitations.Create(ctx, solicitation); err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "persist solicitation failed", err)
	}

	docs := make([]*domain.Document, 0, len(blobs))
	for _, b := range blobs {
		key, err := randomKey(solicitationID, b.FileName)
		if err != nil {
			return nil, domainerr.Wrap(domainerr.Storage, "derive storage key failed", err)
		}
		if _, err := s.store.Upload(ctx, key, b.Bytes, b.Mimetype); err != nil {
			return nil, err // already a domainerr.Upload/InvalidInput from the store
		}

		doc := &domain.Document{
			ID:             uuid.NewString(),
			SolicitationID: solicitationID,
			S3Key:          key,
			Mimetype:       b.Mimetype,
			FileName:       b.FileName,
			UploadedBy:     uploadedBy,
			UploadedAt:     now,
		}
		if err := s.documents.Create(ctx, doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	type classifyJob struct {
		doc  *domain.Document
		blob Blob
	}
	jobs := make([]classifyJob, len(docs))
	for i, d := range docs {
		jobs[i] = classifyJob{doc: d, blob: blobs[i]}
	}

	var outcomes []Outcome
	var outcomesMu sync.Mutex
	pipeline.RunBestEffort(ctx, s.maxWorkers, jobs, func(ctx context.Context, job classifyJob) error {
		result := s.gateway.Classify(ctx, job.blob.Bytes, job.blob.Mimetype)
		if result.Failed {
			return fmt.Errorf("classification failed for document %s", job.doc.ID)
		}
		if err := s.documents.SetClassification(ctx, job.doc.ID, result.Classification, result.Confidence); err != nil {
			return err
		}
		outcomesMu.Lock()
		outcomes = append(outcomes, Outcome{DocumentID: job.doc.ID, Classification: &result.Classification})
		outcomesMu.Unlock()
		return nil
	}, func(job classifyJob, err error) {
		log.Printf("[classify] request=%s document %s: %v", reqctx.RequestID(ctx), job.doc.ID, err)
		if s.metrics != nil {
			s.metrics.DocumentClassificationErrors.Inc()
		}
	})

	if len(outcomes) == 0 {
		return nil, domainerr.New(domainerr.Classification, "every document in the batch failed classification")
	}

	return &Result{SolicitationID: solicitationID, Documents: outcomes}, nil
}

func randomKey(solicitationID, fileName string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("solicitacoes/%s/docs/%s%s", solicitationID, hex.EncodeToString(buf), filepath.Ext(fileName)), nil
}
