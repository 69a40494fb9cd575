package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pescasolic/pkg/domain"
	"pescasolic/pkg/domainerr"
)

type DocumentRepository struct {
	db Querier
}

func NewDocumentRepository(db Querier) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO documents (id, solicitation_id, s3_key, mimetype, file_name, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.SolicitationID, d.S3Key, d.Mimetype, d.FileName, d.UploadedBy, d.UploadedAt)
	if err != nil {
		return domainerr.Wrap(domainerr.Storage, "persist document failed", err)
	}
	return nil
}

func (r *DocumentRepository) SetClassification(ctx context.Context, documentID string, classification domain.DocumentClassification, confidence *float64) error {
	_, err := r.db.Exec(ctx, `UPDATE documents SET classification = $2, confidence = $3 WHERE id = $1`,
		documentID, classification, confidence)
	return err
}

func (r *DocumentRepository) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, solicitation_id, s3_key, mimetype, file_name, uploaded_by, uploaded_at, classification, confidence
		FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

// ListByIDs resolves an explicit id list for C6, preserving the requested
// order isn't required by the spec (no per-document ordering guarantee),
// so a single ANY($1) query suffices.
func (r *DocumentRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, solicitation_id, s3_key, mimetype, file_name, uploaded_by, uploaded_at, classification, confidence
		FROM documents WHERE id = ANY($1) ORDER BY sequence`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// ListBySolicitation returns a solicitation's documents in insertion order
// (via the monotonic `sequence` column), satisfying §3's "insertion order
// must be recoverable" invariant.
func (r *DocumentRepository) ListBySolicitation(ctx context.Context, solicitationID string) ([]*domain.Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, solicitation_id, s3_key, mimetype, file_name, uploaded_by, uploaded_at, classification, confidence
		FROM documents WHERE solicitation_id = $1 ORDER BY sequence`, solicitationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	var classification *string
	if err := row.Scan(&d.ID, &d.SolicitationID, &d.S3Key, &d.Mimetype, &d.FileName, &d.UploadedBy, &d.UploadedAt, &classification, &d.Confidence); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainerr.New(domainerr.DocumentNotFound, "document not found")
		}
		return nil, err
	}
	if classification != nil {
		c := domain.DocumentClassification(*classification)
		d.Classification = &c
	}
	return &d, nil
}

func scanDocuments(rows pgx.Rows) ([]*domain.Document, error) {
	var out []*domain.Document
	for rows.Next() {
		var d domain.Document
		var classification *string
		if err := rows.Scan(&d.ID, &d.SolicitationID, &d.S3Key, &d.Mimetype, &d.FileName, &d.UploadedBy, &d.UploadedAt, &classification, &d.Confidence); err != nil {
			return nil, err
		}
		if classification != nil {
			c := domain.DocumentClassification(*classification)
			d.Classification = &c
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
