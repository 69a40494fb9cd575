package genai

import "context"

// MockProvider returns a fixed response regardless of input, used by the
// gateway tests and by the "mock" provider selection in config — the same role the teacher's mock classifier plays in its own
// provider switch.
type MockProvider struct {
	Response string
	Err      error
}

func (m *MockProvider) Invoke(ctx context.Context, systemPrompt, userPrompt string, inputBytes []byte, mimetype string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
