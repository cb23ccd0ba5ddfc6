package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/voicedna/internal/types"
	"github.com/spf13/cobra"
)

var blendCmd = &cobra.Command{
	Use:   "blend",
	Short: "Blend referent styles into the profile",
	Long: `Sets which referent writers influence generated content and how strongly.
Weights are percentages; referents together never exceed the configured share
and the user's own voice keeps the rest. Passing no --referent clears the blend.

  voicedna blend --referent coach=30 --referent analyst=15`,
	RunE: runBlend,
}

var (
	blendReferents  []string
	blendOutputFile string
)

func init() {
	blendCmd.Flags().StringArrayVarP(&blendReferents, "referent", "r", nil, "Referent and weight as id=weight (repeatable)")
	blendCmd.Flags().StringVarP(&blendOutputFile, "out", "o", "", "Path to write the resolved blend JSON (defaults to stdout)")
	rootCmd.AddCommand(blendCmd)
}

func runBlend(_ *cobra.Command, _ []string) error {
	selections, err := parseSelections(blendReferents)
	if err != nil {
		return err
	}

	return run(appOptions{}, func(ctx context.Context, a *app) error {
		influences, err := a.engine.SetReferentBlend(ctx, a.userID, types.BlendRequest{Referents: selections})
		if err != nil {
			return err
		}
		if a.cfg.Verbose {
			a.printer.PrintBlend(influences)
		}
		return writeOutput(blendOutputFile, influences)
	})
}

// parseSelections parses id=weight pairs, keeping their order.
func parseSelections(pairs []string) ([]types.ReferentSelection, error) {
	selections := make([]types.ReferentSelection, 0, len(pairs))
	for _, pair := range pairs {
		id, weight, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --referent %q: expected id=weight", pair)
		}
		w, err := strconv.Atoi(strings.TrimSpace(weight))
		if err != nil {
			return nil, fmt.Errorf("invalid weight in --referent %q: %w", pair, err)
		}
		selections = append(selections, types.ReferentSelection{ReferentID: id, Weight: w})
	}
	return selections, nil
}
