package genai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"pescasolic/pkg/domain"
	"pescasolic/pkg/domainerr"
	"pescasolic/pkg/metrics"
)

// Gateway is the single funnel for every GenAI interaction (C1): prompt
// selection, schema-constrained decoding, a process-wide bounded semaphore,
// and the retry envelope all live here so the three call sites (classify,
// extract, evaluate) share identical concurrency and failure discipline.
type Gateway struct {
	provider Provider
	prompts  *PromptRegistry
	sem      *semaphore.Weighted
	retry    RetryConfig
	timeout  time.Duration
	metrics  *metrics.Collector
}

// Config bundles the environment-driven knobs of §6.
type Config struct {
	MaxInFlight int
	Retry       RetryConfig
	CallTimeout time.Duration
}

func NewGateway(provider Provider, prompts *PromptRegistry, cfg Config, mc *metrics.Collector) *Gateway {
	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	return &Gateway{
		provider: provider,
		prompts:  prompts,
		sem:      semaphore.NewWeighted(int64(maxInFlight)),
		retry:    cfg.Retry,
		timeout:  cfg.CallTimeout,
		metrics:  mc,
	}
}

// invoke acquires the shared semaphore slot, bounds the call with the
// per-call deadline, and runs the retry envelope around a single
// provider.Invoke. The slot is released on success, error, or cancellation.
func (g *Gateway) invoke(ctx context.Context, onRetry func(), systemPrompt, userPrompt string, inputBytes []byte, mimetype string) (string, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire genai semaphore: %w", err)
	}
	defer g.sem.Release(1)

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	return retryableOp(callCtx, g.retry, onRetry, func() (string, error) {
		return g.provider.Invoke(callCtx, systemPrompt, userPrompt, inputBytes, mimetype)
	})
}

// ClassifyResult is the outcome of a classify call; Confidence is kept
// nullable per the Open Question resolution recorded in DESIGN.md.
type ClassifyResult struct {
	Classification domain.DocumentClassification
	Confidence     *float64
	// Failed is true when the sentinel OUTRO classification was produced by
	// an unrecoverable transport/parse failure rather than a genuine model
	// verdict — callers (C5) treat this as "no classification" rather than
	// as an OUTRO classification, per §7's mixed-classification scenario.
	Failed bool
}

// Classify never escalates an error to the caller: any unrecoverable parse
// or transport failure returns the sentinel OUTRO classification instead,
// flagged via Failed so the caller can tell it apart from a genuine OUTRO
// verdict.
func (g *Gateway) Classify(ctx context.Context, data []byte, mimetype string) ClassifyResult {
	prompt := g.prompts.classify()

	raw, err := g.invoke(ctx, func() {
		if g.metrics != nil {
			g.metrics.RetriesClassify.Inc()
		}
	}, prompt.SystemPrompt, prompt.UserPrompt, data, mimetype)
	if err != nil {
		return ClassifyResult{Classification: domain.ClassOutro, Failed: true}
	}

	parsed, err := schemaRegistry[prompt.ResponseSchema](([]byte)(raw))
	if err != nil {
		return ClassifyResult{Classification: domain.ClassOutro, Failed: true}
	}
	resp := parsed.(ClassifyResponse)
	return ClassifyResult{
		Classification: domain.CoerceClassification(resp.DocumentType),
		Confidence:     resp.Confidence,
	}
}

// Extract resolves the prompt by the document's classification (falling
// back to OUTRO) and decodes the structured payload. Escalates on failure.
// precedingText is the output of an optional preprocessing pass (pkg/textextract)
// over the same bytes; empty when no extractor matched the mimetype. It rides
// along in the user prompt rather than as a new parameter to provider.Invoke,
// so the wire contract to the provider stays (systemPrompt, userPrompt, bytes,
// mimetype) regardless of whether preprocessing ran.
func (g *Gateway) Extract(ctx context.Context, classification domain.DocumentClassification, data []byte, mimetype string, precedingText string) (map[string]interface{}, error) {
	prompt := g.prompts.extract(classification)
	userPrompt := prompt.UserPrompt
	if precedingText != "" {
		userPrompt += "\n\n[texto pre-extraido]\n" + precedingText
	}

	raw, err := g.invoke(ctx, func() {
		if g.metrics != nil {
			g.metrics.RetriesExtract.Inc()
		}
	}, prompt.SystemPrompt, userPrompt, data, mimetype)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Extraction, "extraction call failed", err)
	}

	parsed, err := schemaRegistry[prompt.ResponseSchema](([]byte)(raw))
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Extraction, "extraction response malformed", err)
	}
	return parsed.(ExtractResponse).Payload, nil
}

// EvaluateInput is the evaluation payload built by C7: solicitation,
// per-document metadata, extracted payloads, and the opaque rules text.
type EvaluateInput struct {
	RulesText    string
	PayloadJSON  string
}

// EvaluateOutput mirrors §3's EligibilityResult fields prior to status
// normalisation (done by the caller, not here — normalisation is a pure
// function with its own test surface, see pkg/pipeline/eligibility).
type EvaluateOutput struct {
	RawStatus    string
	ScoreText    string
	PendingItems []string
}

func (g *Gateway) Evaluate(ctx context.Context, in EvaluateInput) (EvaluateOutput, error) {
	prompt := g.prompts.evaluate()
	userPrompt := in.RulesText + "\n\n" + prompt.UserPrompt + "\n\n" + in.PayloadJSON

	raw, err := g.invoke(ctx, func() {}, prompt.SystemPrompt, userPrompt, nil, "")
	if err != nil {
		return EvaluateOutput{}, domainerr.Wrap(domainerr.EligibilityComputation, "evaluation call failed", err)
	}

	parsed, err := schemaRegistry[prompt.ResponseSchema](([]byte)(raw))
	if err != nil {
		return EvaluateOutput{}, domainerr.Wrap(domainerr.EligibilityComputation, "evaluation response malformed", err)
	}
	resp := parsed.(EvaluateResponse)
	return EvaluateOutput{RawStatus: resp.Status, ScoreText: resp.ScoreTexto, PendingItems: resp.Pendencias}, nil
}
