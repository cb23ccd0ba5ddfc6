package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/composer"
	"github.com/jonathan/voicedna/internal/llm"
	"github.com/jonathan/voicedna/internal/profile"
	"github.com/jonathan/voicedna/internal/types"
	"go.uber.org/zap"
)

// SetReferentBlend resolves the selections and stores them on the profile.
// An empty selection clears the blend back to the user's own voice.
func (e *Engine) SetReferentBlend(ctx context.Context, userID uuid.UUID, req types.BlendRequest) (*types.ReferentInfluences, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	influences, err := e.resolver.Resolve(req.Referents)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	p, err := e.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.ReferentInfluences = influences
	p.UpdatedAt = e.now().UTC()
	if err := profile.CheckInvariants(p); err != nil {
		return nil, err
	}
	if err := e.save(ctx, userID, p); err != nil {
		return nil, err
	}

	e.logger.Info("referent blend updated",
		zap.String("user_id", userID.String()),
		zap.Int("user_weight", influences.UserWeight),
		zap.Int("referents", len(influences.Referents)),
	)
	if dropped := e.resolver.Dropped(req.Referents, influences); len(dropped) > 0 {
		e.logger.Warn("referents dropped from blend after scaling",
			zap.String("user_id", userID.String()),
			zap.Strings("dropped", dropped),
		)
	}
	return profile.CloneInfluences(influences), nil
}

// ComposePrompt renders the generation prompt for the stored profile.
func (e *Engine) ComposePrompt(ctx context.Context, userID uuid.UUID, req types.ComposeRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	p, err := e.store.LoadVoiceDNA(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load voice profile: %w", err)
	}

	prompt, err := e.composer.Compose(composer.Input{
		Profile:    p,
		Transcript: req.Transcript,
		Enthusiasm: req.Enthusiasm,
		Outline:    req.Outline,
		FollowUps:  req.FollowUps,
	})
	if err != nil {
		return "", err
	}
	e.metrics.PromptsComposed.Add(ctx, 1)
	return prompt, nil
}

// SystemPrompt is the fixed persona handed to the generation collaborator.
func (e *Engine) SystemPrompt() string {
	return e.composer.SystemPrompt()
}

// Generation is a composed prompt and the content generated from it.
type Generation struct {
	Prompt  string `json:"prompt"`
	Content string `json:"content"`
	Model   string `json:"model"`
}

// Generate composes the prompt and hands it to the LLM. A composition
// failure blocks generation for this request only.
func (e *Engine) Generate(ctx context.Context, userID uuid.UUID, req types.ComposeRequest) (*Generation, error) {
	if e.client == nil {
		return nil, ErrGenerationUnavailable
	}
	prompt, err := e.ComposePrompt(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	content, err := e.client.GenerateWithSystem(ctx, e.composer.SystemPrompt(), prompt, llm.TierAdvanced)
	if err != nil {
		e.metrics.RecordGeneration(ctx, "error")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	e.metrics.RecordGeneration(ctx, "ok")

	return &Generation{
		Prompt:  prompt,
		Content: strings.TrimSpace(content),
		Model:   e.client.GetModel(llm.TierAdvanced),
	}, nil
}
