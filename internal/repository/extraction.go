package repository

import (
	"context"
	"encoding/json"

	"pescasolic/pkg/domain"
)

type ExtractionRepository struct {
	db Querier
}

func NewExtractionRepository(db Querier) *ExtractionRepository {
	return &ExtractionRepository{db: db}
}

// Upsert replaces any existing extraction for the document, keeping the
// "at most one DocumentExtraction per Document" invariant of §8 true by
// construction rather than by a pre-check.
func (r *ExtractionRepository) Upsert(ctx context.Context, e *domain.DocumentExtraction) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO document_extractions (document_id, document_type, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id) DO UPDATE SET document_type = $2, payload = $3, updated_at = $4`,
		e.DocumentID, e.DocumentType, payload, e.UpdatedAt)
	return err
}

func (r *ExtractionRepository) ListByDocumentIDs(ctx context.Context, documentIDs []string) ([]*domain.DocumentExtraction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT document_id, document_type, payload, updated_at
		FROM document_extractions WHERE document_id = ANY($1)`, documentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.DocumentExtraction
	for rows.Next() {
		var e domain.DocumentExtraction
		var raw []byte
		if err := rows.Scan(&e.DocumentID, &e.DocumentType, &raw, &e.UpdatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(raw, &e.Payload)
		out = append(out, &e)
	}
	return out, rows.Err()
}
