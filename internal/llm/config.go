// Package llm provides the generation collaborator: model tier configuration
// and a Gemini-backed client used for ghostwriting and calibration insights.
package llm

import (
	"fmt"
	"maps"
	"strings"
)

// ModelTier selects a model by how much capability a call needs.
type ModelTier string

const (
	// TierLite extracts insights from calibration feedback.
	TierLite ModelTier = "lite"
	// TierStandard writes calibration samples.
	TierStandard ModelTier = "standard"
	// TierAdvanced writes final ghostwritten content.
	TierAdvanced ModelTier = "advanced"
)

// Tiers lists every tier from cheapest to most capable.
var Tiers = []ModelTier{TierLite, TierStandard, TierAdvanced}

// ParseTier accepts a tier name in any case.
func ParseTier(name string) (ModelTier, error) {
	tier := ModelTier(strings.ToLower(strings.TrimSpace(name)))
	for _, t := range Tiers {
		if t == tier {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown model tier %q", name)
}

// Provider names an LLM backend.
type Provider string

// ProviderGemini is the only backend wired.
const ProviderGemini Provider = "gemini"

// DefaultTemperature is the sampling temperature for ghostwriting.
const DefaultTemperature float32 = 0.7

// Config maps tiers to provider models.
type Config struct {
	Provider            Provider
	Models              map[ModelTier]string
	CreativeTemperature float32 // GenerateWithSystem only; extraction stays near-deterministic
}

// DefaultConfig returns the Gemini model lineup.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		CreativeTemperature: DefaultTemperature,
	}
}

// FromSettings layers per-tier model names and a temperature over the
// defaults. A zero temperature keeps the default.
func FromSettings(models map[string]string, temperature float32) (*Config, error) {
	cfg := DefaultConfig()
	for name, model := range models {
		tier, err := ParseTier(name)
		if err != nil {
			return nil, err
		}
		if model = strings.TrimSpace(model); model == "" {
			return nil, fmt.Errorf("empty model name for tier %s", tier)
		}
		cfg = cfg.WithModel(tier, model)
	}
	if temperature > 0 {
		cfg.CreativeTemperature = temperature
	}
	return cfg, nil
}

// GetModel returns the model for a tier. Missing tiers fall back to standard,
// then lite; an empty string means nothing is configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy with one tier replaced.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := *c
	out.Models = maps.Clone(c.Models)
	if out.Models == nil {
		out.Models = make(map[ModelTier]string)
	}
	out.Models[tier] = model
	return &out
}
