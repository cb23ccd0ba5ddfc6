package main

import (
	"context"
	"fmt"

	"github.com/jonathan/voicedna/internal/ingestion"
	"github.com/jonathan/voicedna/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Analyze a writing sample and merge it into the profile",
	Long:  "Extracts written-style features from a text, markdown or saved HTML file. Submitting the same text twice counts once.",
	RunE:  runSample,
}

var importSampleCmd = &cobra.Command{
	Use:   "import-sample",
	Short: "Fetch a published post and analyze it as a writing sample",
	Long:  "Fetches a blog post, newsletter or social post, extracts the main text and analyzes it as a writing sample.",
	RunE:  runImportSample,
}

var (
	sampleInputFile  string
	sampleSourceURL  string
	sampleOutputFile string

	importURL        string
	importUseBrowser bool
	importOutputFile string
)

func init() {
	sampleCmd.Flags().StringVarP(&sampleInputFile, "in", "i", "", "Path to writing sample file (required)")
	sampleCmd.Flags().StringVar(&sampleSourceURL, "source-url", "", "Where the sample was published (optional)")
	sampleCmd.Flags().StringVarP(&sampleOutputFile, "out", "o", "", "Path to write the result JSON (defaults to stdout)")
	if err := sampleCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	importSampleCmd.Flags().StringVarP(&importURL, "url", "u", "", "URL of the post to import (required)")
	importSampleCmd.Flags().BoolVar(&importUseBrowser, "use-browser", false, "Render the page in headless Chrome when plain HTTP returns too little text")
	importSampleCmd.Flags().StringVarP(&importOutputFile, "out", "o", "", "Path to write the result JSON (defaults to stdout)")
	if err := importSampleCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}

	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(importSampleCmd)
}

func runSample(_ *cobra.Command, _ []string) error {
	text, meta, err := ingestion.ReadSampleFile(sampleInputFile)
	if err != nil {
		return err
	}
	req := types.WritingSampleRequest{Text: text, SourceURL: sampleSourceURL}

	return run(appOptions{}, func(ctx context.Context, a *app) error {
		res, err := a.engine.AnalyzeWritingSample(ctx, a.userID, req)
		if err != nil {
			return fmt.Errorf("failed to analyze writing sample: %w", err)
		}
		a.logger.Debug("analyzed writing sample",
			zap.String("path", meta.Path), zap.String("title", meta.Title), zap.Int("words", meta.WordCount))
		if a.cfg.Verbose {
			a.printer.PrintVoiceDNA(res.Profile)
		}
		return writeOutput(sampleOutputFile, res)
	})
}

func runImportSample(_ *cobra.Command, _ []string) error {
	req := types.ImportSampleRequest{URL: importURL, UseBrowser: importUseBrowser}

	return run(appOptions{}, func(ctx context.Context, a *app) error {
		res, err := a.engine.ImportWritingSample(ctx, a.userID, req)
		if err != nil {
			return err
		}
		if a.cfg.Verbose {
			a.printer.PrintVoiceDNA(res.Profile)
		}
		return writeOutput(importOutputFile, res)
	})
}
