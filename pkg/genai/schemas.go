package genai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ClassifyResponse is the typed decode target for the "classify" schema.
type ClassifyResponse struct {
	DocumentType string   `json:"document_type"`
	Confidence   *float64 `json:"confidence,omitempty"`
}

// ExtractResponse is the typed decode target for every "extract.*" schema:
// a free-form structured payload, shape dependent on document class.
type ExtractResponse struct {
	DocumentType string                 `json:"document_type"`
	Payload      map[string]interface{} `json:"payload"`
}

// EvaluateResponse is the typed decode target for the "evaluate" schema.
type EvaluateResponse struct {
	Status       string   `json:"status"`
	ScoreTexto   string   `json:"score_texto"`
	Pendencias   []string `json:"pendencias,omitempty"`
}

// schemaParser decodes a raw model response body into a typed value. Kept
// as a closed, static registry per the "static registry … validated at
// startup" design note: no reflection-driven schema discovery at runtime.
type schemaParser func(raw []byte) (interface{}, error)

var schemaRegistry = map[string]schemaParser{
	"classify_v1": parseClassifyResponse,
	"extract_v1":  parseExtractResponse,
	"evaluate_v1": parseEvaluateResponse,
}

// extractJSONObject finds the first top-level JSON object in a possibly
// chatty model response, mirroring the teacher's bounds-based extraction
// rather than requiring a bare JSON response.
func extractJSONObject(response string) (string, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}") + 1
	if start == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in model response")
	}
	return response[start:end], nil
}

func parseClassifyResponse(raw []byte) (interface{}, error) {
	jsonStr, err := extractJSONObject(string(raw))
	if err != nil {
		return nil, err
	}
	var resp ClassifyResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("decode classify response: %w", err)
	}
	if resp.DocumentType == "" {
		return nil, fmt.Errorf("classify response missing document_type")
	}
	return resp, nil
}

func parseExtractResponse(raw []byte) (interface{}, error) {
	jsonStr, err := extractJSONObject(string(raw))
	if err != nil {
		return nil, err
	}
	var resp ExtractResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("decode extract response: %w", err)
	}
	if resp.Payload == nil {
		resp.Payload = map[string]interface{}{}
	}
	return resp, nil
}

func parseEvaluateResponse(raw []byte) (interface{}, error) {
	jsonStr, err := extractJSONObject(string(raw))
	if err != nil {
		return nil, err
	}
	var resp EvaluateResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("decode evaluate response: %w", err)
	}
	if resp.Status == "" || resp.ScoreTexto == "" {
		return nil, fmt.Errorf("evaluate response missing status or score_texto")
	}
	return resp, nil
}
