package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/server"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for local testing of the API",
	Long: `Signs a token for --user (or a new random user) with JWT_SECRET. Identity is
managed elsewhere in production; this exists for curl sessions against a local
server.`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	userID := uuid.New()
	if rootUserID != "" {
		if userID, err = uuid.Parse(rootUserID); err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
	}

	token, err := server.NewJWTService(jwtCfg).GenerateToken(userID)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "User: %s\n", userID)
	_, err = fmt.Fprintln(os.Stdout, token)
	return err
}
