package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"pescasolic/pkg/domain"
	"pescasolic/pkg/domainerr"
)

type SolicitationRepository struct {
	db Querier
}

func NewSolicitationRepository(db Querier) *SolicitationRepository {
	return &SolicitationRepository{db: db}
}

func (r *SolicitationRepository) Create(ctx context.Context, s *domain.Solicitation) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO solicitations (id, status, priority, fisher_data, analysis, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Status, s.Priority, toJSON(s.FisherData), toJSON(s.Analysis), s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *SolicitationRepository) Get(ctx context.Context, id string) (*domain.Solicitation, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, status, priority, fisher_data, analysis, created_at, updated_at
		FROM solicitations WHERE id = $1`, id)

	var s domain.Solicitation
	var fisherData, analysis []byte
	if err := row.Scan(&s.ID, &s.Status, &s.Priority, &fisherData, &analysis, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainerr.New(domainerr.SolicitationNotFound, "solicitation not found: "+id)
		}
		return nil, err
	}
	s.FisherData = fromJSON(fisherData)
	s.Analysis = fromJSON(analysis)
	return &s, nil
}

// UpdateStatus applies the §3/§4.6 status transition. Errors here are
// swallowed by C7 once a verdict is already persisted (see
// pkg/pipeline/eligibility), never here — the repository just reports
// failure honestly.
func (r *SolicitationRepository) UpdateStatus(ctx context.Context, id string, status domain.SolicitationStatus, updatedAt time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE solicitations SET status = $2, updated_at = $3 WHERE id = $1`, id, status, updatedAt)
	return err
}

func toJSON(m map[string]interface{}) []byte {
	if m == nil {
		return nil
	}
	raw, _ := json.Marshal(m)
	return raw
}

func fromJSON(raw []byte) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]interface{}
	_ = json.Unmarshal(raw, &m)
	return m
}
