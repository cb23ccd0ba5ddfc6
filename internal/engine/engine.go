// Package engine orchestrates the voice profile components around a Store:
// it runs analysis, serializes profile updates per user and persists results.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/blend"
	"github.com/jonathan/voicedna/internal/calibration"
	"github.com/jonathan/voicedna/internal/composer"
	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/enthusiasm"
	"github.com/jonathan/voicedna/internal/linguistics"
	"github.com/jonathan/voicedna/internal/llm"
	"github.com/jonathan/voicedna/internal/observability"
	"github.com/jonathan/voicedna/internal/profile"
	"github.com/jonathan/voicedna/internal/referents"
	"github.com/jonathan/voicedna/internal/schemas"
	"github.com/jonathan/voicedna/internal/types"
	"go.uber.org/zap"
)

// ErrGenerationUnavailable is returned by Generate when no LLM client is configured.
var ErrGenerationUnavailable = errors.New("content generation is not configured")

// Options are the collaborators of an Engine. Only Store is required.
type Options struct {
	Store    Store
	Client   llm.Client           // enables Generate and calibration samples
	Catalog  *referents.Catalog   // defaults to the embedded catalog
	Baseline linguistics.Baseline // defaults to the embedded n-gram table
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// Engine is safe for concurrent use.
type Engine struct {
	cfg config.Config

	store   Store
	client  llm.Client
	catalog *referents.Catalog
	logger  *zap.Logger
	metrics *observability.Metrics
	locks   *UserLocks

	analyzer    *enthusiasm.Analyzer
	extractor   *linguistics.Extractor
	aggregator  *profile.Aggregator
	resolver    *blend.Resolver
	composer    *composer.CachedComposer
	calibration *calibration.Service

	now func() time.Time
}

// New wires the components from cfg. Zero config fields take defaults.
func New(cfg config.Config, opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("engine requires a store")
	}
	cfg = cfg.MergeWithDefaults(config.Default())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = referents.Default()
	}

	comp, err := composer.New(catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to create composer: %w", err)
	}
	cached, err := composer.NewCached(comp, cfg.Composer.CacheSize)
	if err != nil {
		return nil, err
	}
	calib, err := calibration.NewService(opts.Client, logger.Named("calibration"))
	if err != nil {
		return nil, fmt.Errorf("failed to create calibration service: %w", err)
	}

	return &Engine{
		cfg:         cfg,
		store:       opts.Store,
		client:      opts.Client,
		catalog:     catalog,
		logger:      logger,
		metrics:     metrics,
		locks:       NewUserLocks(),
		analyzer:    enthusiasm.NewAnalyzer(cfg.Enthusiasm),
		extractor:   linguistics.NewExtractor(cfg.Linguistics, opts.Baseline),
		aggregator:  profile.NewAggregator(cfg.Aggregator),
		resolver:    blend.NewResolver(catalog, cfg.Blend),
		composer:    cached,
		calibration: calib,
		now:         time.Now,
	}, nil
}

// Catalog returns the referent catalog the engine resolves blends against.
func (e *Engine) Catalog() *referents.Catalog {
	return e.catalog
}

// Result is the outcome of one contribution.
type Result struct {
	Profile                *types.VoiceDNA           `json:"profile"`
	IsNewProfile           bool                      `json:"is_new_profile"`
	CalibrationScoreChange int                       `json:"calibration_score_change"`
	Duplicate              bool                      `json:"duplicate,omitempty"`
	ContributionID         string                    `json:"contribution_id"`
	Enthusiasm             *types.EnthusiasmAnalysis `json:"enthusiasm,omitempty"`
	Features               *types.Features           `json:"features,omitempty"`
	Round                  *types.CalibrationRound   `json:"round,omitempty"`
}

// commitFunc persists a merged profile together with its source record.
type commitFunc func(ctx context.Context, p *types.VoiceDNA) error

// contribute merges c into the user's profile and persists it through commit.
// Callers must hold the user's lock. A contribution id already in the
// profile history is a retry and changes nothing.
func (e *Engine) contribute(ctx context.Context, userID uuid.UUID, c types.Contribution, commit commitFunc) (*Result, error) {
	existing, err := e.store.LoadVoiceDNA(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load voice profile: %w", err)
	}

	if existing.HasContribution(c.ID) {
		e.logger.Info("contribution already merged",
			zap.String("user_id", userID.String()), zap.String("contribution_id", c.ID))
		e.metrics.RecordContribution(ctx, string(c.Kind), "duplicate")
		return &Result{Profile: existing, Duplicate: true, ContributionID: c.ID}, nil
	}

	merged, err := e.aggregator.Merge(existing, c)
	if err != nil {
		e.metrics.RecordContribution(ctx, string(c.Kind), "error")
		return nil, err
	}
	if err := schemas.ValidateVoiceDNA(merged.Profile); err != nil {
		e.metrics.RecordContribution(ctx, string(c.Kind), "error")
		return nil, &profile.AggregationError{Invariant: "schema", Detail: err.Error()}
	}
	if err := commit(ctx, merged.Profile); err != nil {
		e.metrics.RecordContribution(ctx, string(c.Kind), "error")
		return nil, fmt.Errorf("failed to save voice profile: %w", err)
	}

	e.metrics.RecordContribution(ctx, string(c.Kind), "ok")
	e.metrics.CalibrationScore.Record(ctx, int64(merged.Profile.CalibrationScore))
	e.logger.Info("voice profile updated",
		zap.String("user_id", userID.String()),
		zap.String("kind", string(c.Kind)),
		zap.Bool("new_profile", merged.IsNewProfile),
		zap.Int("calibration_score", merged.Profile.CalibrationScore),
		zap.Int("score_change", merged.CalibrationScoreChange),
	)

	return &Result{
		Profile:                merged.Profile,
		IsNewProfile:           merged.IsNewProfile,
		CalibrationScoreChange: merged.CalibrationScoreChange,
		ContributionID:         c.ID,
	}, nil
}

// Profile returns the stored profile.
func (e *Engine) Profile(ctx context.Context, userID uuid.UUID) (*types.VoiceDNA, error) {
	p, err := e.store.LoadVoiceDNA(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load voice profile: %w", err)
	}
	if p == nil {
		return nil, &NotFoundError{Resource: "voice profile", ID: userID.String()}
	}
	return p, nil
}

// Summary projects the stored profile for dashboards. A user without a
// profile gets the empty summary.
func (e *Engine) Summary(ctx context.Context, userID uuid.UUID) (*profile.Summary, error) {
	p, err := e.store.LoadVoiceDNA(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load voice profile: %w", err)
	}
	return e.aggregator.Summarize(p), nil
}

// Recalibrate recomputes the calibration score from scratch and stores it.
// The score may go down.
func (e *Engine) Recalibrate(ctx context.Context, userID uuid.UUID) (*Result, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	existing, err := e.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	res, err := e.aggregator.Recalibrate(existing)
	if err != nil {
		return nil, err
	}
	if err := e.save(ctx, userID, res.Profile); err != nil {
		return nil, err
	}

	e.logger.Info("voice profile recalibrated",
		zap.String("user_id", userID.String()),
		zap.Int("calibration_score", res.Profile.CalibrationScore),
		zap.Int("score_change", res.CalibrationScoreChange),
	)
	return &Result{Profile: res.Profile, CalibrationScoreChange: res.CalibrationScoreChange}, nil
}

func (e *Engine) save(ctx context.Context, userID uuid.UUID, p *types.VoiceDNA) error {
	if err := schemas.ValidateVoiceDNA(p); err != nil {
		return &profile.AggregationError{Invariant: "schema", Detail: err.Error()}
	}
	if err := e.store.SaveVoiceDNA(ctx, userID, p); err != nil {
		return fmt.Errorf("failed to save voice profile: %w", err)
	}
	return nil
}
