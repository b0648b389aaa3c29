package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MDidoStar/blinkwell/internal/analysis"
	"github.com/MDidoStar/blinkwell/internal/config"
	"github.com/MDidoStar/blinkwell/internal/gemini"
	"github.com/MDidoStar/blinkwell/internal/report"
)

// runAnalyze runs the screening offline: frames in, PDF out, nothing
// archived.
func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	key := cfg.Gemini.APIKey()
	if key == "" {
		return fmt.Errorf("%s is not set", cfg.Gemini.APIKeyEnv)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read frame archive: %w", err)
	}

	frames, err := analysis.ExtractFramesBytes(data)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d frames from %s\n", len(frames), args[0])

	client, err := gemini.NewClient(cmd.Context(), key, cfg.Gemini.Model)
	if err != nil {
		return err
	}

	result, err := analysis.NewAnalyzer(client).Analyze(cmd.Context(), analysis.Request{
		Frames:  frames,
		Country: flagCountry,
		City:    flagCity,
		Age:     flagAge,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Text)

	pdfBytes, err := report.Build(report.Document{
		Thumbnail: frames[0],
		Body:      result.Text,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(flagOut, pdfBytes, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("Report written to %s\n", flagOut)
	return nil
}
