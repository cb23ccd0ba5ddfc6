package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/observability"
	"github.com/jonathan/voicedna/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the voice profile engine. Requests are
authenticated with HS256 bearer tokens signed with JWT_SECRET.

With DATABASE_URL profiles are stored in PostgreSQL; without it they live in
memory and are lost on exit.`,
	RunE: runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT and config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	shutdownMetrics, err := observability.InitProvider()
	if err != nil {
		return fmt.Errorf("failed to init metrics: %w", err)
	}
	defer func() { _ = shutdownMetrics(context.Background()) }()

	a, err := openApp(ctx, appOptions{allowMissingUser: true, ephemeral: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.close(context.Background(), false) }()

	if servePort != 0 {
		a.cfg.Server.Port = servePort
	}

	opts := server.Options{
		Engine:  a.engine,
		Auth:    server.NewJWTService(jwtCfg).AsTokenValidator(),
		Logger:  a.logger.Named("server"),
		Metrics: observability.DefaultMetrics(),
	}
	if a.db != nil {
		opts.Health = a.db
	} else {
		a.logger.Warn("DATABASE_URL not set, profiles are kept in memory only")
	}

	srv, err := server.New(*a.cfg, opts)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	a.logger.Info("starting server", zap.Int("port", a.cfg.Server.Port))
	return srv.Run(ctx)
}
