// Package search is the dashboard read model: solicitations and legal cases
// are projected into OpenSearch after each repository write (index-on-write,
// adapted from the teacher's pkg/processing/indexing_processor.go, which did
// the same job over an HTTP queue rather than a direct client call), and the
// two /dashboard endpoints (§6) query the projection via bucket
// aggregations instead of hand-rolled SQL GROUP BYs.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"pescasolic/pkg/domain"
	"pescasolic/pkg/search/client"
)

// docKind distinguishes the two entity shapes sharing one dashboard index.
type docKind string

const (
	kindSolicitation docKind = "solicitation"
	kindLegalCase    docKind = "legal_case"
)

// Indexer projects domain entities into the dashboard index. Every method
// is best-effort from the caller's perspective: a projection failure is
// returned so the caller can log it, but it must never roll back the
// Postgres write that is the actual source of truth.
type Indexer struct {
	client *client.Client
}

func NewIndexer(c *client.Client) *Indexer {
	return &Indexer{client: c}
}

type solicitationDoc struct {
	ID                string    `json:"id"`
	Kind              docKind   `json:"kind"`
	Status            string    `json:"status"`
	Priority          string    `json:"priority"`
	EligibilityStatus string    `json:"eligibility_status,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IndexSolicitation upserts the dashboard projection of a Solicitation.
// eligibility may be nil when no verdict has been computed yet.
func (idx *Indexer) IndexSolicitation(ctx context.Context, s *domain.Solicitation, eligibility *domain.EligibilityResult) error {
	doc := solicitationDoc{
		ID:        s.ID,
		Kind:      kindSolicitation,
		Status:    string(s.Status),
		Priority:  string(s.Priority),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if eligibility != nil {
		doc.EligibilityStatus = string(eligibility.Status)
	}
	return idx.upsert(ctx, "solicitation-"+s.ID, doc)
}

type legalCaseDoc struct {
	ID             string     `json:"id"`
	Kind           docKind    `json:"kind"`
	NumeroProcesso string     `json:"numero_processo"`
	Court          string     `json:"court"`
	Status         string     `json:"status"`
	LastSyncedAt   *time.Time `json:"last_synced_at,omitempty"`
}

// IndexLegalCase upserts the dashboard projection of a LegalCase.
func (idx *Indexer) IndexLegalCase(ctx context.Context, c *domain.LegalCase) error {
	doc := legalCaseDoc{
		ID:             c.ID,
		Kind:           kindLegalCase,
		NumeroProcesso: c.NumeroProcesso,
		Court:          c.Court,
		Status:         c.Status,
		LastSyncedAt:   c.LastSyncedAt,
	}
	return idx.upsert(ctx, "legal_case-"+c.ID, doc)
}

func (idx *Indexer) upsert(ctx context.Context, docID string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal dashboard doc: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index:      idx.client.GetIndex(),
		DocumentID: docID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, idx.client.GetClient())
	if err != nil {
		return fmt.Errorf("index dashboard doc: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index dashboard doc failed: %s", res.Status())
	}
	return nil
}
