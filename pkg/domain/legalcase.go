package domain

import "time"

// LegalCase tracks a judicial case record mirrored from the external
// provider (C3), refreshed periodically by C8.
type LegalCase struct {
	ID                          string     `json:"id"`
	NumeroProcesso              string     `json:"numero_processo"` // canonical NNNNNNN-DD.AAAA.J.TR.OOOO
	Court                       string     `json:"court"`
	Body                        string     `json:"body"`
	Class                       string     `json:"class"`
	Subject                     string     `json:"subject"`
	Status                      string     `json:"status"`
	FilingDate                  *time.Time `json:"filing_date,omitempty"`
	Movimentacoes               int        `json:"movimentacoes"`
	UltimaMovimentacao          *time.Time `json:"ultima_movimentacao,omitempty"`
	UltimaMovimentacaoDescricao string     `json:"ultima_movimentacao_descricao,omitempty"`
	LastSyncedAt                *time.Time `json:"last_synced_at,omitempty"`
}

// IsStale reports whether the case needs a C8 refresh: never synced, or
// synced before the given threshold.
func (c *LegalCase) IsStale(threshold time.Time) bool {
	return c.LastSyncedAt == nil || c.LastSyncedAt.Before(threshold)
}

// LegalCaseMovement is append-only, unique on (legal_case_id, movement_date, description).
type LegalCaseMovement struct {
	ID             string    `json:"id"`
	LegalCaseID    string    `json:"legal_case_id"`
	MovementDate   time.Time `json:"movement_date"`
	Description    string    `json:"description"`
}

// MovementKey is the tuple identity used to diff incoming movements against
// what is already persisted.
type MovementKey struct {
	Date        time.Time
	Description string
}

func (m LegalCaseMovement) Key() MovementKey {
	return MovementKey{Date: m.MovementDate, Description: m.Description}
}

// CaseUpdate bundles what C8 computed for one case: the refreshed
// top-level fields plus the movements not already present, for the
// repository's single atomic apply.
type CaseUpdate struct {
	Case         *LegalCase
	NewMovements []LegalCaseMovement
	FieldChanges int
}
