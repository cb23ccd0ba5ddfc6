package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/types"
	"github.com/spf13/cobra"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Run calibration rounds",
	Long: `A calibration round asks a question, generates a short sample from the answer
and records the user's 1-5 rating. Feedback on the rating becomes learned rules.

  voicedna calibrate start
  voicedna calibrate respond --round <id> --text "..."
  voicedna calibrate rate --round <id> --rating 4 --feedback "a bit too formal"`,
}

var calibrateStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the next calibration round",
	RunE:  runCalibrateStart,
}

var calibrateRespondCmd = &cobra.Command{
	Use:   "respond",
	Short: "Answer a round's prompt (generates a sample when GEMINI_API_KEY is set)",
	RunE:  runCalibrateRespond,
}

var calibrateRateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Rate a round's sample; ratings are final",
	RunE:  runCalibrateRate,
}

var calibrateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List calibration rounds in order",
	RunE:  runCalibrateList,
}

var (
	calibrateRoundID    string
	calibrateText       string
	calibrateVoice      bool
	calibrateRating     int
	calibrateFeedback   string
	calibrateOutputFile string
)

func init() {
	calibrateCmd.PersistentFlags().StringVarP(&calibrateOutputFile, "out", "o", "", "Path to write the result JSON (defaults to stdout)")

	for _, c := range []*cobra.Command{calibrateRespondCmd, calibrateRateCmd} {
		c.Flags().StringVar(&calibrateRoundID, "round", "", "Round id (required)")
		if err := c.MarkFlagRequired("round"); err != nil {
			panic(fmt.Sprintf("failed to mark round flag as required: %v", err))
		}
	}

	calibrateRespondCmd.Flags().StringVar(&calibrateText, "text", "", "The answer (required)")
	calibrateRespondCmd.Flags().BoolVar(&calibrateVoice, "voice", false, "The answer is a voice transcript")
	if err := calibrateRespondCmd.MarkFlagRequired("text"); err != nil {
		panic(fmt.Sprintf("failed to mark text flag as required: %v", err))
	}

	calibrateRateCmd.Flags().IntVar(&calibrateRating, "rating", 0, "Rating from 1 to 5 (required)")
	calibrateRateCmd.Flags().StringVar(&calibrateFeedback, "feedback", "", "What to change")
	if err := calibrateRateCmd.MarkFlagRequired("rating"); err != nil {
		panic(fmt.Sprintf("failed to mark rating flag as required: %v", err))
	}

	calibrateCmd.AddCommand(calibrateStartCmd, calibrateRespondCmd, calibrateRateCmd, calibrateListCmd)
	rootCmd.AddCommand(calibrateCmd)
}

func runCalibrateStart(_ *cobra.Command, _ []string) error {
	return run(appOptions{}, func(ctx context.Context, a *app) error {
		round, err := a.engine.StartCalibrationRound(ctx, a.userID)
		if err != nil {
			return err
		}
		if a.cfg.Verbose {
			a.printer.PrintCalibrationRound(round)
		}
		return writeOutput(calibrateOutputFile, round)
	})
}

func runCalibrateRespond(_ *cobra.Command, _ []string) error {
	roundID, err := uuid.Parse(calibrateRoundID)
	if err != nil {
		return fmt.Errorf("invalid --round: %w", err)
	}
	req := types.RespondRoundRequest{Type: types.ResponseText, Content: calibrateText}
	if calibrateVoice {
		req.Type = types.ResponseVoice
	}

	return run(appOptions{}, func(ctx context.Context, a *app) error {
		round, err := a.engine.RespondToRound(ctx, a.userID, roundID, req)
		if err != nil {
			return err
		}
		if a.cfg.Verbose {
			a.printer.PrintCalibrationRound(round)
		}
		return writeOutput(calibrateOutputFile, round)
	})
}

func runCalibrateRate(_ *cobra.Command, _ []string) error {
	roundID, err := uuid.Parse(calibrateRoundID)
	if err != nil {
		return fmt.Errorf("invalid --round: %w", err)
	}
	req := types.RateRoundRequest{Rating: calibrateRating, Feedback: calibrateFeedback}

	return run(appOptions{}, func(ctx context.Context, a *app) error {
		res, err := a.engine.RateRound(ctx, a.userID, roundID, req)
		if err != nil {
			return err
		}
		if a.cfg.Verbose {
			a.printer.PrintCalibrationRound(res.Round)
			a.printer.PrintVoiceDNA(res.Profile)
		}
		return writeOutput(calibrateOutputFile, res)
	})
}

func runCalibrateList(_ *cobra.Command, _ []string) error {
	return run(appOptions{}, func(ctx context.Context, a *app) error {
		rounds, err := a.engine.ListCalibrationRounds(ctx, a.userID)
		if err != nil {
			return err
		}
		if a.cfg.Verbose {
			for i := range rounds {
				a.printer.PrintCalibrationRound(&rounds[i])
			}
		}
		return writeOutput(calibrateOutputFile, rounds)
	})
}
