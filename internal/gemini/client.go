// Package gemini wraps the hosted Gemini vision model used by the analysis
// page. The model receives a prompt plus a sequence of JPEG frames and
// returns free-text observations.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("missing Gemini API key")

// Generator produces an analysis text for a prompt and a frame sequence.
// The analyzer depends on this interface so tests can substitute a mock.
type Generator interface {
	Generate(ctx context.Context, prompt string, frames [][]byte) (string, error)
}

// Client calls the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Client for the given API key and model name.
// An empty model selects DefaultModel.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends the prompt and frames to the model and returns its text.
func (c *Client) Generate(ctx context.Context, prompt string, frames [][]byte) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, frame := range frames {
		parts = append(parts, genai.NewPartFromBytes(frame, "image/jpeg"))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("model returned an empty response")
	}
	return text, nil
}
