package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pescasolic/pkg/domain"
)

type LegalCaseRepository struct {
	db *DB
}

func NewLegalCaseRepository(db *DB) *LegalCaseRepository {
	return &LegalCaseRepository{db: db}
}

func (r *LegalCaseRepository) GetByNumero(ctx context.Context, numeroProcesso string) (*domain.LegalCase, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, numero_processo, court, body, class, subject, status, filing_date,
		       movimentacoes, ultima_movimentacao, ultima_movimentacao_descricao, last_synced_at
		FROM legal_cases WHERE numero_processo = $1`, numeroProcesso)
	return scanLegalCase(row)
}

// SelectStale returns up to limit cases with last_synced_at IS NULL or
// older than threshold, the candidate set for C8's per-run batch (§4.8).
func (r *LegalCaseRepository) SelectStale(ctx context.Context, threshold time.Time, limit int) ([]*domain.LegalCase, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, numero_processo, court, body, class, subject, status, filing_date,
		       movimentacoes, ultima_movimentacao, ultima_movimentacao_descricao, last_synced_at
		FROM legal_cases
		WHERE last_synced_at IS NULL OR last_synced_at < $1
		ORDER BY last_synced_at NULLS FIRST
		LIMIT $2`, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.LegalCase
	for rows.Next() {
		lc, err := scanLegalCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// ApplyCaseUpdates atomically updates the case's top-level fields, appends
// the movements not already present, and bumps last_synced_at — the single
// repository call §4.8 names as the write boundary for one case's refresh.
func (r *LegalCaseRepository) ApplyCaseUpdates(ctx context.Context, update domain.CaseUpdate) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		c := update.Case
		_, err := tx.Exec(ctx, `
			UPDATE legal_cases SET
				court = $2, body = $3, class = $4, subject = $5, status = $6, filing_date = $7,
				movimentacoes = $8, ultima_movimentacao = $9, ultima_movimentacao_descricao = $10,
				last_synced_at = now()
			WHERE id = $1`,
			c.ID, c.Court, c.Body, c.Class, c.Subject, c.Status, c.FilingDate,
			c.Movimentacoes, c.UltimaMovimentacao, c.UltimaMovimentacaoDescricao)
		if err != nil {
			return err
		}

		for _, m := range update.NewMovements {
			if m.ID == "" {
				m.ID = uuid.NewString()
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO legal_case_movements (id, legal_case_id, movement_date, description)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (legal_case_id, movement_date, description) DO NOTHING`,
				m.ID, c.ID, m.MovementDate, m.Description)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ExistingMovementKeys reports which (date, description) pairs are already
// persisted for a case, so the sync job can compute the "new movements"
// diff before calling ApplyCaseUpdates.
func (r *LegalCaseRepository) ExistingMovementKeys(ctx context.Context, legalCaseID string) (map[domain.MovementKey]bool, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT movement_date, description FROM legal_case_movements WHERE legal_case_id = $1`, legalCaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := map[domain.MovementKey]bool{}
	for rows.Next() {
		var k domain.MovementKey
		if err := rows.Scan(&k.Date, &k.Description); err != nil {
			return nil, err
		}
		keys[k] = true
	}
	return keys, rows.Err()
}

// Upsert inserts a newly-discovered case, used when C3 finds a case not yet
// tracked locally. On a numero_processo conflict it overwrites the existing
// row's fields in place; that row keeps its id, and c.ID is not updated to it.
func (r *LegalCaseRepository) Upsert(ctx context.Context, c *domain.LegalCase) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO legal_cases (id, numero_processo, court, body, class, subject, status, filing_date,
			movimentacoes, ultima_movimentacao, ultima_movimentacao_descricao, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (numero_processo) DO UPDATE SET
			court = $3, body = $4, class = $5, subject = $6, status = $7, filing_date = $8,
			movimentacoes = $9, ultima_movimentacao = $10, ultima_movimentacao_descricao = $11, last_synced_at = now()`,
		c.ID, c.NumeroProcesso, c.Court, c.Body, c.Class, c.Subject, c.Status, c.FilingDate,
		c.Movimentacoes, c.UltimaMovimentacao, c.UltimaMovimentacaoDescricao)
	return err
}

func scanLegalCase(row pgx.Row) (*domain.LegalCase, error) {
	var c domain.LegalCase
	if err := row.Scan(&c.ID, &c.NumeroProcesso, &c.Court, &c.Body, &c.Class, &c.Subject, &c.Status,
		&c.FilingDate, &c.Movimentacoes, &c.UltimaMovimentacao, &c.UltimaMovimentacaoDescricao, &c.LastSyncedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
