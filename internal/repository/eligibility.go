package repository

import (
	"context"
	"encoding/json"

	"pescasolic/pkg/domain"
)

type EligibilityRepository struct {
	db Querier
}

func NewEligibilityRepository(db Querier) *EligibilityRepository {
	return &EligibilityRepository{db: db}
}

// Upsert replaces any existing verdict for the solicitation — re-running C7
// "replaces the EligibilityResult and re-applies the status mapping" (§8).
func (r *EligibilityRepository) Upsert(ctx context.Context, e *domain.EligibilityResult) error {
	pending, err := json.Marshal(e.PendingItems)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO eligibility_results (solicitation_id, status, score_text, pending_items, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (solicitation_id) DO UPDATE SET status = $2, score_text = $3, pending_items = $4, updated_at = $5`,
		e.SolicitationID, e.Status, e.ScoreText, pending, e.UpdatedAt)
	return err
}

func (r *EligibilityRepository) Get(ctx context.Context, solicitationID string) (*domain.EligibilityResult, error) {
	row := r.db.QueryRow(ctx, `
		SELECT solicitation_id, status, score_text, pending_items, updated_at
		FROM eligibility_results WHERE solicitation_id = $1`, solicitationID)

	var e domain.EligibilityResult
	var pending []byte
	if err := row.Scan(&e.SolicitationID, &e.Status, &e.ScoreText, &pending, &e.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal(pending, &e.PendingItems)
	return &e, nil
}
