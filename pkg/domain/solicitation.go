// Package domain holds the entity types of the fishing-subsidy benefit
// pipeline: solicitations, their documents and derived artifacts, and the
// legal cases tracked alongside them.
package domain

import "time"

// SolicitationStatus is the closed set of lifecycle states a Solicitation
// moves through. Mutated only by the eligibility stage or an administrative
// update.
type SolicitationStatus string

const (
	StatusPendente                SolicitationStatus = "pendente"
	StatusEmAnalise                SolicitationStatus = "em_analise"
	StatusAprovada                SolicitationStatus = "aprovada"
	StatusReprovada                SolicitationStatus = "reprovada"
	StatusDocumentacaoIncompleta SolicitationStatus = "documentacao_incompleta"
)

// SolicitationPriority ranks a Solicitation for manual triage; never set by
// the pipeline itself beyond its initial value.
type SolicitationPriority string

const (
	PriorityBaixa SolicitationPriority = "baixa"
	PriorityMedia SolicitationPriority = "media"
	PriorityAlta  SolicitationPriority = "alta"
)

// Solicitation is a benefit request by one citizen, aggregating their
// documents and producing one eligibility verdict.
type Solicitation struct {
	ID         string                 `json:"id"`
	Status     SolicitationStatus     `json:"status"`
	Priority   SolicitationPriority   `json:"priority"`
	FisherData map[string]interface{} `json:"fisher_data,omitempty"`
	Analysis   map[string]interface{} `json:"analysis,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// NewSolicitation builds a Solicitation in its initial lifecycle state.
func NewSolicitation(id string, now time.Time) *Solicitation {
	return &Solicitation{
		ID:        id,
		Status:    StatusPendente,
		Priority:  PriorityBaixa,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NextStatusForEligibility maps an EligibilityStatus to the Solicitation
// status transition C7 applies after persisting a verdict.
func NextStatusForEligibility(status EligibilityStatus, hasPendingItems bool) SolicitationStatus {
	if status == EligibilityApto {
		return StatusAprovada
	}
	if hasPendingItems {
		return StatusDocumentacaoIncompleta
	}
	return StatusReprovada
}
