// Package main provides the voicedna CLI: it builds and inspects voice
// profiles locally and serves the HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "voicedna",
	Short: "Voice profile engine",
	Long: `voicedna learns how a person speaks and writes from voice sessions, writing
samples and calibration feedback, and turns the learned profile into prompts for
ghostwritten content.

Without DATABASE_URL the profile lives in a local state file (--state).`,
	SilenceUsage: true,
}

var (
	rootConfigPath  string
	rootStatePath   string
	rootUserID      string
	rootVerbose     bool
	rootLogFormat   string
	rootCatalogPath string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Path to config.json file (optional)")
	rootCmd.PersistentFlags().StringVar(&rootStatePath, "state", "voicedna.json", "Local state file used when DATABASE_URL is not set")
	rootCmd.PersistentFlags().StringVar(&rootUserID, "user", "", "User id (required with DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Print formatted results to stderr")
	rootCmd.PersistentFlags().StringVar(&rootLogFormat, "log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().StringVar(&rootCatalogPath, "catalog", "", "Referent catalog YAML replacing the built-in one (optional)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
