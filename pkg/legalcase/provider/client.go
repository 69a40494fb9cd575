// Package provider implements C3: a narrow gateway to the external
// judicial API, queried by CNJ case number and court acronym.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"pescasolic/pkg/domain"
)

// Client is C3's single operation. Hand-rolled over net/http, the same way
// the teacher hand-rolls its own DigitalOcean API client rather than
// generating one from a spec — there is exactly one bespoke endpoint to
// call here, so a generated SDK would add nothing.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type movementPayload struct {
	Date        string `json:"data"`
	Descricao   string `json:"descricao"`
	Complemento string `json:"complemento,omitempty"`
}

type caseHit struct {
	NumeroProcesso string            `json:"numero_processo"`
	Court          string            `json:"tribunal"`
	Body           string            `json:"orgao_julgador"`
	Class          string            `json:"classe"`
	Subject        string            `json:"assunto"`
	Status         string            `json:"situacao"`
	FilingDate     string            `json:"data_ajuizamento"`
	Movements      []movementPayload `json:"movimentacoes"`
}

type caseResponsePayload struct {
	Hits []caseHit `json:"hits"`
}

// endpointForCourt derives the request path from the court acronym, the
// way the teacher's DigitalOcean client derives a bucket path from
// configuration rather than hardcoding one URL shape per provider.
func (c *Client) endpointForCourt(courtAcronym string) string {
	return fmt.Sprintf("%s/processos/%s/_search", c.baseURL, strings.ToLower(courtAcronym))
}

// Result bundles the mapped case with its ordered movements — kept
// separate from domain.LegalCase because the case row and its movements
// are persisted by two different repository calls (see C4).
type Result struct {
	Case      *domain.LegalCase
	Movements []domain.LegalCaseMovement
}

// FindCase queries the provider for a single CNJ number scoped to a court.
// Returns (nil, nil) on zero hits; transport errors propagate to the
// caller (C8), which collects them into its per-case error summary.
func (c *Client) FindCase(ctx context.Context, cnjNumber, courtAcronym string) (*Result, error) {
	digits, err := domain.NormalizeCNJ(cnjNumber)
	if err != nil {
		return nil, fmt.Errorf("invalid cnj number: %w", err)
	}

	url := fmt.Sprintf("%s?numero_processo=%s", c.endpointForCourt(courtAcronym), digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request judicial provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read judicial provider response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("judicial provider returned status %d: %s", resp.StatusCode, string(raw))
	}

	var payload caseResponsePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode judicial provider response: %w", err)
	}
	if len(payload.Hits) == 0 {
		return nil, nil
	}

	return mapCase(payload.Hits[0])
}

func mapCase(hit caseHit) (*Result, error) {
	digits, err := domain.NormalizeCNJ(hit.NumeroProcesso)
	if err != nil {
		return nil, fmt.Errorf("provider returned invalid cnj number: %w", err)
	}
	canonical, err := domain.CanonicalCNJ(digits)
	if err != nil {
		return nil, err
	}

	sort.Slice(hit.Movements, func(i, j int) bool {
		return hit.Movements[i].Date < hit.Movements[j].Date
	})

	movements := make([]domain.LegalCaseMovement, 0, len(hit.Movements))
	for _, m := range hit.Movements {
		ts, perr := time.Parse(time.RFC3339, m.Date)
		if perr != nil {
			continue
		}
		description := m.Descricao
		if m.Complemento != "" {
			description = description + " - " + m.Complemento
		}
		movements = append(movements, domain.LegalCaseMovement{
			MovementDate: ts,
			Description:  description,
		})
	}

	filingDate, _ := time.Parse(time.RFC3339, hit.FilingDate)

	lc := &domain.LegalCase{
		NumeroProcesso: canonical,
		Court:          hit.Court,
		Body:           hit.Body,
		Class:          hit.Class,
		Subject:        hit.Subject,
		Status:         hit.Status,
		Movimentacoes:  len(movements),
	}
	if !filingDate.IsZero() {
		lc.FilingDate = &filingDate
	}
	if len(movements) > 0 {
		last := movements[len(movements)-1]
		lc.UltimaMovimentacao = &last.MovementDate
		lc.UltimaMovimentacaoDescricao = last.Description
	}

	return &Result{Case: lc, Movements: movements}, nil
}
