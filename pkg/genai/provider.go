package genai

import "context"

// Provider is the transport boundary to a GenAI backend: compose a system
// and user prompt (plus optional input bytes for vision-capable calls) and
// return the raw model text. Everything above this line — prompt
// selection, schema validation, retry, concurrency — is provider-agnostic.
type Provider interface {
	Invoke(ctx context.Context, systemPrompt, userPrompt string, inputBytes []byte, mimetype string) (string, error)
}
