package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/voicedna/internal/types"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a transcribed voice session and merge it into the profile",
	Long: `Analyzes one voice session and merges it into the voice profile.

--in takes either a JSON file shaped like the POST /sessions body (transcript,
words with start/end seconds, duration) or a plain text transcript. Plain text
has no timestamps, so its enthusiasm map is empty.`,
	RunE: runAnalyze,
}

var (
	analyzeInputFile      string
	analyzeOutputFile     string
	analyzeContributionID string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInputFile, "in", "i", "", "Path to session JSON or transcript text file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOutputFile, "out", "o", "", "Path to write the result JSON (defaults to stdout)")
	analyzeCmd.Flags().StringVar(&analyzeContributionID, "id", "", "Contribution id; reusing one makes the command a no-op")

	if err := analyzeCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	req, err := readSessionRequest(analyzeInputFile)
	if err != nil {
		return err
	}
	if analyzeContributionID != "" {
		req.ContributionID = analyzeContributionID
	}

	return run(appOptions{}, func(ctx context.Context, a *app) error {
		res, err := a.engine.AnalyzeVoiceSession(ctx, a.userID, *req)
		if err != nil {
			return fmt.Errorf("failed to analyze session: %w", err)
		}
		if a.cfg.Verbose {
			a.printer.PrintEnthusiasm(res.Enthusiasm)
			a.printer.PrintVoiceDNA(res.Profile)
		}
		return writeOutput(analyzeOutputFile, res)
	})
}

// readSessionRequest reads a session JSON file, or wraps a text file as a
// transcript without word timings.
func readSessionRequest(path string) (*types.AnalyzeSessionRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var req types.AnalyzeSessionRequest
		if err := json.Unmarshal(content, &req); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session JSON: %w", err)
		}
		return &req, nil
	}
	return &types.AnalyzeSessionRequest{Transcript: string(content)}, nil
}
