package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/db"
	"github.com/jonathan/voicedna/internal/engine"
	"github.com/jonathan/voicedna/internal/llm"
	"github.com/jonathan/voicedna/internal/observability"
	"go.uber.org/zap"
)

// app bundles what every command needs: config, logger, engine and the
// user the command acts for.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	engine  *engine.Engine
	userID  uuid.UUID
	printer *observability.Printer

	db     *db.DB
	client llm.Client
	local  *localState
	memory *engine.MemoryStore
}

type appOptions struct {
	// requireLLM fails early when no API key is configured.
	requireLLM bool
	// allowMissingUser lets the command run against Postgres without --user.
	allowMissingUser bool
	// ephemeral skips the local state file and starts from an empty store.
	ephemeral bool
}

func openApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load(rootConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Verbose = cfg.Verbose || rootVerbose

	logger, err := observability.NewLogger(cfg.LogLevel, rootLogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, printer: printerFor()}
	ok := false
	defer func() {
		if !ok {
			_ = a.close(ctx, false)
		}
	}()

	if rootUserID != "" {
		if a.userID, err = uuid.Parse(rootUserID); err != nil {
			return nil, fmt.Errorf("invalid --user: %w", err)
		}
	}

	var store engine.Store
	if cfg.DatabaseURL != "" {
		if a.userID == uuid.Nil && !opts.allowMissingUser {
			return nil, fmt.Errorf("--user is required when DATABASE_URL is set")
		}
		if a.db, err = db.Connect(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		if err := a.db.Migrate(ctx); err != nil {
			return nil, err
		}
		store = a.db
	} else if opts.ephemeral {
		a.memory = engine.NewMemoryStore()
		store = a.memory
	} else {
		if a.local, err = loadState(rootStatePath); err != nil {
			return nil, err
		}
		if a.userID != uuid.Nil {
			a.local.UserID = a.userID
		}
		a.userID = a.local.UserID
		a.memory = engine.NewMemoryStore()
		if err := a.local.seed(ctx, a.memory); err != nil {
			return nil, err
		}
		store = a.memory
	}

	if cfg.APIKey != "" {
		llmCfg, err := llm.FromSettings(cfg.LLM.Models, cfg.LLM.Temperature)
		if err != nil {
			return nil, fmt.Errorf("invalid llm config: %w", err)
		}
		if a.client, err = llm.NewClient(ctx, llmCfg, cfg.APIKey); err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	} else if opts.requireLLM {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or api_key config is required")
	}

	catalog, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	engOpts := engine.Options{Store: store, Client: a.client, Catalog: catalog, Logger: logger}
	if a.engine, err = engine.New(*cfg, engOpts); err != nil {
		return nil, err
	}

	ok = true
	return a, nil
}

func printerFor() *observability.Printer {
	return observability.NewPrinter(os.Stderr)
}

// close releases resources. With persist set, local state is written back.
func (a *app) close(ctx context.Context, persist bool) error {
	var firstErr error
	if persist && a.local != nil && a.memory != nil {
		if err := a.local.capture(ctx, a.memory); err != nil {
			firstErr = err
		} else if err := a.local.save(rootStatePath); err != nil {
			firstErr = err
		}
	}
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return firstErr
}

// run opens the app, calls fn and persists local state when fn succeeds.
func run(opts appOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	if err := fn(ctx, a); err != nil {
		_ = a.close(ctx, false)
		return err
	}
	return a.close(ctx, true)
}

// writeOutput writes v as indented JSON to path, or stdout when path is empty.
func writeOutput(path string, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonBytes = append(jsonBytes, '\n')

	if path == "" {
		_, err := os.Stdout.Write(jsonBytes)
		return err
	}

	outputDir := filepath.Dir(path)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Output: %s\n", path)
	return nil
}
