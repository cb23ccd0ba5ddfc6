package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/enthusiasm"
	"github.com/jonathan/voicedna/internal/ingestion"
	"github.com/jonathan/voicedna/internal/linguistics"
	"github.com/jonathan/voicedna/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnalyzeVoiceSession runs the enthusiasm analyzer and the feature extractor
// over one transcript and merges the result into the user's profile. Nothing
// is written unless both succeed.
func (e *Engine) AnalyzeVoiceSession(ctx context.Context, userID uuid.UUID, req types.AnalyzeSessionRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := e.checkLength(req.Transcript); err != nil {
		return nil, err
	}

	start := e.now()
	transcript := types.Transcript{
		Text:     req.Transcript,
		Words:    req.Words,
		Duration: req.Duration,
		Language: req.Language,
	}

	actx, cancel := context.WithTimeout(ctx, e.cfg.Engine.AnalysisTimeout)
	defer cancel()

	var (
		analysis *types.EnthusiasmAnalysis
		features *types.Features
	)
	g, gctx := errgroup.WithContext(actx)
	g.Go(func() error {
		var err error
		analysis, err = e.analyzer.Analyze(transcript)
		return err
	})
	g.Go(func() error {
		var err error
		features, err = e.extractor.Extract(gctx, linguistics.Input{
			Text:  req.Transcript,
			Words: req.Words,
			Kind:  types.ContributionVoiceSession,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		e.metrics.RecordContribution(ctx, string(types.ContributionVoiceSession), "invalid")
		return nil, err
	}
	e.metrics.RecordAnalysis(ctx, string(types.ContributionVoiceSession), time.Since(start).Seconds())

	sessionID := uuid.New()
	contributionID := req.ContributionID
	if contributionID == "" {
		contributionID = "session:" + sessionID.String()
	}
	at := e.now().UTC()
	c := types.Contribution{
		ID:         contributionID,
		Kind:       types.ContributionVoiceSession,
		Features:   features,
		Enthusiasm: enthusiasm.Summarize(analysis),
		OccurredAt: at,
	}
	session := &types.VoiceSession{
		ID:         sessionID,
		UserID:     userID,
		Transcript: req.Transcript,
		Duration:   req.Duration,
		Language:   req.Language,
		Enthusiasm: analysis,
		CreatedAt:  at,
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	res, err := e.contribute(ctx, userID, c, func(ctx context.Context, p *types.VoiceDNA) error {
		return e.store.CommitAnalysis(ctx, userID, p, session)
	})
	if err != nil {
		return nil, err
	}
	res.Enthusiasm = analysis
	res.Features = features
	return res, nil
}

// AnalyzeWritingSample extracts written-style features from a piece of the
// user's writing. Without an explicit contribution id the content hash is
// used, so submitting the same text twice counts once.
func (e *Engine) AnalyzeWritingSample(ctx context.Context, userID uuid.UUID, req types.WritingSampleRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	text := ingestion.CleanText(req.Text)
	if err := e.checkLength(text); err != nil {
		return nil, err
	}

	start := e.now()
	features, err := e.extractor.Extract(ctx, linguistics.Input{Text: text, Kind: types.ContributionWritingSample})
	if err != nil {
		e.metrics.RecordContribution(ctx, string(types.ContributionWritingSample), "invalid")
		return nil, err
	}
	e.metrics.RecordAnalysis(ctx, string(types.ContributionWritingSample), time.Since(start).Seconds())

	contributionID := req.ContributionID
	if contributionID == "" {
		contributionID = ingestion.NewMetadata(text, req.SourceURL).ContributionID()
	}
	at := e.now().UTC()
	c := types.Contribution{
		ID:         contributionID,
		Kind:       types.ContributionWritingSample,
		Features:   features,
		OccurredAt: at,
	}
	sample := &types.WritingSample{
		ID:        uuid.New(),
		UserID:    userID,
		SourceURL: req.SourceURL,
		Text:      text,
		CreatedAt: at,
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	res, err := e.contribute(ctx, userID, c, func(ctx context.Context, p *types.VoiceDNA) error {
		return e.store.CommitWritingSample(ctx, userID, p, sample)
	})
	if err != nil {
		return nil, err
	}
	res.Features = features
	return res, nil
}

// ImportWritingSample fetches a published post and analyzes it as a writing sample.
func (e *Engine) ImportWritingSample(ctx context.Context, userID uuid.UUID, req types.ImportSampleRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	text, meta, err := ingestion.ImportFromURL(ctx, req.URL, ingestion.ImportOptions{
		UseBrowser: req.UseBrowser,
		Logger:     e.logger.Named("ingestion"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import writing sample: %w", err)
	}
	e.logger.Info("imported writing sample",
		zap.String("url", req.URL), zap.String("platform", meta.Platform), zap.Int("words", meta.WordCount))

	return e.AnalyzeWritingSample(ctx, userID, types.WritingSampleRequest{
		ContributionID: meta.ContributionID(),
		Text:           text,
		SourceURL:      req.URL,
	})
}

func (e *Engine) checkLength(text string) error {
	need := e.cfg.Linguistics.MinTranscriptWords
	if n := len(strings.Fields(text)); n < need {
		return types.NewValidationError("transcript",
			fmt.Sprintf("too short to analyze: %d words, need at least %d", n, need))
	}
	return nil
}
