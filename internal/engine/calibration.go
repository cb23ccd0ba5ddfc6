package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/calibration"
	"github.com/jonathan/voicedna/internal/composer"
	"github.com/jonathan/voicedna/internal/llm"
	"github.com/jonathan/voicedna/internal/schemas"
	"github.com/jonathan/voicedna/internal/types"
	"go.uber.org/zap"
)

// StartCalibrationRound opens the user's next round with the next prompt in rotation.
func (e *Engine) StartCalibrationRound(ctx context.Context, userID uuid.UUID) (*types.CalibrationRound, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	previous, err := e.store.ListCalibrationRounds(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calibration rounds: %w", err)
	}
	round := e.calibration.NewRound(userID, previous)
	if err := e.saveRound(ctx, round); err != nil {
		return nil, err
	}

	e.logger.Info("calibration round started",
		zap.String("user_id", userID.String()), zap.Int("round", round.RoundNumber))
	return round, nil
}

// ListCalibrationRounds returns the user's rounds in order.
func (e *Engine) ListCalibrationRounds(ctx context.Context, userID uuid.UUID) ([]types.CalibrationRound, error) {
	rounds, err := e.store.ListCalibrationRounds(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calibration rounds: %w", err)
	}
	return rounds, nil
}

// RespondToRound records the user's answer. When an LLM client is configured
// a sample is generated from the answer in the user's current voice; a
// generation failure is logged and leaves the round without a sample.
func (e *Engine) RespondToRound(ctx context.Context, userID, roundID uuid.UUID, req types.RespondRoundRequest) (*types.CalibrationRound, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	round, err := e.store.GetCalibrationRound(ctx, userID, roundID)
	if err != nil {
		return nil, err
	}
	if err := e.calibration.Respond(round, types.RoundResponse{Type: req.Type, Content: req.Content}); err != nil {
		return nil, err
	}

	if e.client != nil {
		sample, err := e.calibrationSample(ctx, userID, round)
		if err != nil {
			e.logger.Warn("calibration sample generation failed",
				zap.String("user_id", userID.String()), zap.Int("round", round.RoundNumber), zap.Error(err))
		} else if err := e.calibration.AttachSample(round, sample); err != nil {
			return nil, err
		}
	}

	if err := e.saveRound(ctx, round); err != nil {
		return nil, err
	}
	return round, nil
}

func (e *Engine) calibrationSample(ctx context.Context, userID uuid.UUID, round *types.CalibrationRound) (string, error) {
	p, err := e.store.LoadVoiceDNA(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load voice profile: %w", err)
	}
	if p == nil {
		// First round for a new user: render against an empty profile.
		p = &types.VoiceDNA{}
	}

	prompt, err := e.composer.Compose(composer.Input{
		Profile:    p,
		Transcript: round.Response.Content,
		Outline:    calibration.SampleOutline(round),
	})
	if err != nil {
		return "", err
	}
	e.metrics.PromptsComposed.Add(ctx, 1)

	sample, err := e.client.GenerateWithSystem(ctx, e.composer.SystemPrompt(), prompt, llm.TierStandard)
	if err != nil {
		e.metrics.RecordGeneration(ctx, "error")
		return "", err
	}
	e.metrics.RecordGeneration(ctx, "ok")
	return sample, nil
}

// RateRound rates a round, extracts insights from the feedback and merges
// them into the profile as learned rules. The round and the profile are
// committed together.
func (e *Engine) RateRound(ctx context.Context, userID, roundID uuid.UUID, req types.RateRoundRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	round, err := e.store.GetCalibrationRound(ctx, userID, roundID)
	if err != nil {
		return nil, err
	}
	if err := e.calibration.Rate(ctx, round, req.Rating, req.Feedback); err != nil {
		return nil, err
	}
	if err := schemas.ValidateCalibrationRound(round); err != nil {
		return nil, types.NewValidationError("round", err.Error())
	}

	c, err := calibration.Contribution(round)
	if err != nil {
		return nil, err
	}
	res, err := e.contribute(ctx, userID, c, func(ctx context.Context, p *types.VoiceDNA) error {
		return e.store.CommitCalibration(ctx, userID, p, round)
	})
	if err != nil {
		return nil, err
	}
	res.Round = round
	return res, nil
}

func (e *Engine) saveRound(ctx context.Context, round *types.CalibrationRound) error {
	if err := schemas.ValidateCalibrationRound(round); err != nil {
		return types.NewValidationError("round", err.Error())
	}
	if err := e.store.SaveCalibrationRound(ctx, round); err != nil {
		return fmt.Errorf("failed to save calibration round: %w", err)
	}
	return nil
}
