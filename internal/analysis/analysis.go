// Package analysis turns a captured frame sequence into an eye-health
// screening report. It assembles the screening prompt, sends the frames to
// the vision model, and returns the model's observations.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MDidoStar/blinkwell/internal/gemini"
)

// Request describes one analysis run.
type Request struct {
	Frames  [][]byte
	Country string
	City    string
	Age     int
}

// Result is the outcome of an analysis run.
type Result struct {
	Text       string
	FrameCount int
	Country    string
	City       string
	Age        int
	CreatedAt  time.Time
}

// Analyzer runs screening requests against a Generator.
type Analyzer struct {
	gen gemini.Generator
}

// NewAnalyzer creates an Analyzer backed by gen.
func NewAnalyzer(gen gemini.Generator) *Analyzer {
	return &Analyzer{gen: gen}
}

// Analyze sends the request's frames to the model and returns its text.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if len(req.Frames) == 0 {
		return nil, errors.New("analysis: request has no frames")
	}

	text, err := a.gen.Generate(ctx, buildPrompt(req), req.Frames)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	return &Result{
		Text:       text,
		FrameCount: len(req.Frames),
		Country:    req.Country,
		City:       req.City,
		Age:        req.Age,
		CreatedAt:  time.Now(),
	}, nil
}

// buildPrompt frames the task as screening, not diagnosis. The model is told
// what it may and may not say before it sees a single image.
func buildPrompt(req Request) string {
	return fmt.Sprintf(`You are given %d sequential eye images (frames) from a webcam.
Task: Check for possible blinking problems or abnormal blinking patterns.

- You cannot diagnose.
- Give careful observations and safe advice only.
- Keep it short and focused.
- List urgent red flags that require an eye doctor.

Patient context:
- Country: %s
- City: %s
- Age: %d
`, len(req.Frames), req.Country, req.City, req.Age)
}
