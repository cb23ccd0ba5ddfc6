package main

import (
	"context"
	"fmt"

	"github.com/jonathan/voicedna/internal/referents"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the profile summary",
	RunE:  runSummary,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the full voice profile as JSON",
	RunE:  runShow,
}

var recalibrateCmd = &cobra.Command{
	Use:   "recalibrate",
	Short: "Recompute the calibration score from scratch",
	Long:  "Recomputes the calibration score from the profile's contents. Unlike normal updates this may lower the score.",
	RunE:  runRecalibrate,
}

var referentsCmd = &cobra.Command{
	Use:   "referents",
	Short: "List the referent writers available for blending",
	RunE:  runReferents,
}

var profileOutputFile string

func init() {
	for _, c := range []*cobra.Command{summaryCmd, showCmd, recalibrateCmd, referentsCmd} {
		c.Flags().StringVarP(&profileOutputFile, "out", "o", "", "Path to write the output JSON (defaults to stdout)")
		rootCmd.AddCommand(c)
	}
}

func runSummary(_ *cobra.Command, _ []string) error {
	return run(appOptions{}, func(ctx context.Context, a *app) error {
		summary, err := a.engine.Summary(ctx, a.userID)
		if err != nil {
			return err
		}
		if a.cfg.Verbose {
			a.printer.PrintSummary(summary)
		}
		return writeOutput(profileOutputFile, summary)
	})
}

func runShow(_ *cobra.Command, _ []string) error {
	return run(appOptions{}, func(ctx context.Context, a *app) error {
		p, err := a.engine.Profile(ctx, a.userID)
		if err != nil {
			return err
		}
		if a.cfg.Verbose {
			a.printer.PrintVoiceDNA(p)
		}
		return writeOutput(profileOutputFile, p)
	})
}

func runRecalibrate(_ *cobra.Command, _ []string) error {
	return run(appOptions{}, func(ctx context.Context, a *app) error {
		res, err := a.engine.Recalibrate(ctx, a.userID)
		if err != nil {
			return err
		}
		if a.cfg.Verbose {
			a.printer.PrintVoiceDNA(res.Profile)
		}
		a.logger.Info("profile recalibrated",
			zap.Int("calibration_score", res.Profile.CalibrationScore),
			zap.Int("score_change", res.CalibrationScoreChange))
		return writeOutput(profileOutputFile, res)
	})
}

// runReferents reads only the catalog, so it needs no store.
func runReferents(_ *cobra.Command, _ []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	all := catalog.All()
	if rootVerbose {
		printerFor().PrintReferents(all)
	}
	return writeOutput(profileOutputFile, all)
}

// loadCatalog returns the catalog named by --catalog or the embedded one.
func loadCatalog() (*referents.Catalog, error) {
	if rootCatalogPath == "" {
		return referents.Default(), nil
	}
	catalog, err := referents.LoadCatalogFile(rootCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load referent catalog: %w", err)
	}
	return catalog, nil
}
