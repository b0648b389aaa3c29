package gemini

import "context"

// MockGenerator is a test double for Generator. It records the last request
// and returns a canned response or error.
type MockGenerator struct {
	Response string
	Err      error

	LastPrompt string
	LastFrames int
	Calls      int
}

// NewMockGenerator creates a mock that returns response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

// Generate implements Generator.
func (m *MockGenerator) Generate(_ context.Context, prompt string, frames [][]byte) (string, error) {
	m.Calls++
	m.LastPrompt = prompt
	m.LastFrames = len(frames)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
