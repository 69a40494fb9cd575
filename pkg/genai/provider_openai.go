package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// openaiProvider hand-rolls the OpenAI chat-completions transport, the same
// way the teacher's own classifier does: no vendor SDK, just an
// http.Client and a couple of request/response structs.
type openaiProvider struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAIProvider builds a Provider backed by OpenAI's chat-completions
// endpoint.
func NewOpenAIProvider(apiKey, model string, timeout time.Duration) Provider {
	if model == "" {
		model = "gpt-4"
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &openaiProvider{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (p *openaiProvider) Invoke(ctx context.Context, systemPrompt, userPrompt string, inputBytes []byte, mimetype string) (string, error) {
	messages := make([]openaiMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: systemPrompt})
	}
	content := userPrompt
	if len(inputBytes) > 0 {
		content = fmt.Sprintf("%s\n\n[attached %s, base64]: %s", userPrompt, mimetype, base64.StdEncoding.EncodeToString(inputBytes))
	}
	messages = append(messages, openaiMessage{Role: "user", Content: content})

	reqBody := openaiRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: 0.1,
		MaxTokens:   2000,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &transportError{statusCode: resp.StatusCode, body: string(raw)}
	}

	var parsed openaiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// transportError preserves the HTTP status code so the retry envelope can
// classify 429/5xx as retryable without string-sniffing the message.
type transportError struct {
	statusCode int
	body       string
}

func (e *transportError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.statusCode, e.body)
}

func (e *transportError) StatusCode() int { return e.statusCode }
