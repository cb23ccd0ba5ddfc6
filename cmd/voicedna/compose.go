package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/voicedna/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Build a generation prompt from the profile",
	Long: `Renders the prompt a writer (human or model) needs to produce content in the
user's voice. --in takes a transcript text file, or a JSON file shaped like the
POST /compose body with an enthusiasm map, outline and follow-up answers.`,
	RunE: runCompose,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Compose the prompt and generate content with Gemini",
	RunE:  runGenerate,
}

var (
	composeInputFile  string
	composeOutputFile string
)

func init() {
	for _, c := range []*cobra.Command{composeCmd, generateCmd} {
		c.Flags().StringVarP(&composeInputFile, "in", "i", "", "Path to transcript text or compose request JSON (required)")
		c.Flags().StringVarP(&composeOutputFile, "out", "o", "", "Path to write the output (defaults to stdout)")
		if err := c.MarkFlagRequired("in"); err != nil {
			panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
		}
		rootCmd.AddCommand(c)
	}
}

func runCompose(_ *cobra.Command, _ []string) error {
	req, err := readComposeRequest(composeInputFile)
	if err != nil {
		return err
	}

	return run(appOptions{}, func(ctx context.Context, a *app) error {
		prompt, err := a.engine.ComposePrompt(ctx, a.userID, *req)
		if err != nil {
			return err
		}
		return writeText(composeOutputFile, prompt)
	})
}

func runGenerate(_ *cobra.Command, _ []string) error {
	req, err := readComposeRequest(composeInputFile)
	if err != nil {
		return err
	}

	return run(appOptions{requireLLM: true}, func(ctx context.Context, a *app) error {
		gen, err := a.engine.Generate(ctx, a.userID, *req)
		if err != nil {
			return err
		}
		a.logger.Debug("generated content", zap.String("model", gen.Model), zap.Int("chars", len(gen.Content)))
		return writeText(composeOutputFile, gen.Content)
	})
}

func readComposeRequest(path string) (*types.ComposeRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compose input: %w", err)
	}
	var req types.ComposeRequest
	if bytes.HasPrefix(bytes.TrimSpace(content), []byte("{")) {
		if err := json.Unmarshal(content, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal compose request JSON: %w", err)
		}
		return &req, nil
	}
	req.Transcript = string(content)
	return &req, nil
}

func writeText(path, text string) error {
	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Output: %s\n", path)
	return nil
}
