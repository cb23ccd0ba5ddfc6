// Package config provides configuration loading and validation for the engine, CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the configuration that can be loaded from a JSON file.
// Zero values are replaced by defaults in MergeWithDefaults.
type Config struct {
	Enthusiasm  EnthusiasmConfig  `json:"enthusiasm"`
	Linguistics LinguisticsConfig `json:"linguistics"`
	Aggregator  AggregatorConfig  `json:"aggregator"`
	Blend       BlendConfig       `json:"blend"`
	Composer    ComposerConfig    `json:"composer"`
	Engine      EngineConfig      `json:"engine"`
	LLM         LLMConfig         `json:"llm"`
	Server      ServerConfig      `json:"server"`
	RateLimit   RateLimitConfig   `json:"rate_limit"`

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	LogLevel    string `json:"log_level,omitempty"`    // debug, info, warn, error
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
}

// EnthusiasmConfig tunes segmentation and peak selection.
type EnthusiasmConfig struct {
	SilenceGap      float64 `json:"silence_gap_seconds,omitempty"`
	PaceDelta       float64 `json:"pace_delta_wps,omitempty"`
	PaceWindow      int     `json:"pace_window_words,omitempty"`
	MinSegmentWords int     `json:"min_segment_words,omitempty"`
	MaxSegmentWords int     `json:"max_segment_words,omitempty"`
	MaxPeaks        int     `json:"max_peaks,omitempty"`
}

// LinguisticsConfig tunes feature extraction.
type LinguisticsConfig struct {
	ShortSentenceMax   int     `json:"short_sentence_max,omitempty"` // below this is short
	LongSentenceMin    int     `json:"long_sentence_min,omitempty"`  // above this is long
	VocabularyRetain   int     `json:"vocabulary_retain,omitempty"`
	VocabularySurface  int     `json:"vocabulary_surface,omitempty"`
	SignatureRatio     float64 `json:"signature_ratio,omitempty"`
	MinPhraseCount     int     `json:"min_phrase_count,omitempty"`
	MaxPhrases         int     `json:"max_phrases,omitempty"`
	QuestionRate       float64 `json:"question_rate,omitempty"`
	ChronologyMarkers  int     `json:"chronology_markers,omitempty"`
	ShortParagraphMax  int     `json:"short_paragraph_max,omitempty"`
	LongParagraphMin   int     `json:"long_paragraph_min,omitempty"`
	MinTranscriptWords int     `json:"min_transcript_words,omitempty"`
}

// AggregatorConfig tunes profile merging and the calibration score.
type AggregatorConfig struct {
	PriorWeightCap      int           `json:"prior_weight_cap,omitempty"`
	SaturationCount     int           `json:"saturation_count,omitempty"`
	RecencyWindow       time.Duration `json:"recency_window,omitempty"`
	StaleWeight         float64       `json:"stale_weight,omitempty"`
	RuleConfidenceFloor float64       `json:"rule_confidence_floor,omitempty"`
	CalibratedThreshold int           `json:"calibrated_threshold,omitempty"`
	RuleMergeThreshold  float64       `json:"rule_merge_threshold,omitempty"` // 0 disables fuzzy rule consolidation
	HistoryLimit        int           `json:"history_limit,omitempty"`
	VocabularyLimit     int           `json:"vocabulary_limit,omitempty"`
	ExcitedTopicsLimit  int           `json:"excited_topics_limit,omitempty"`
	PhraseLimit         int           `json:"phrase_limit,omitempty"`
}

// BlendConfig bounds referent blending.
type BlendConfig struct {
	MaxReferents    int `json:"max_referents,omitempty"`
	MaxReferentSum  int `json:"max_referent_sum,omitempty"`
	MaxActiveTraits int `json:"max_active_traits,omitempty"`
}

// ComposerConfig tunes prompt composition.
type ComposerConfig struct {
	CacheSize int `json:"cache_size,omitempty"`
}

// EngineConfig tunes orchestration.
type EngineConfig struct {
	AnalysisTimeout time.Duration `json:"analysis_timeout,omitempty"`
}

// LLMConfig overrides the generation models. Keys of Models are tier names
// (lite, standard, advanced); unset tiers keep the built-in model.
type LLMConfig struct {
	Models      map[string]string `json:"models,omitempty"`
	Temperature float32           `json:"temperature,omitempty"` // ghostwriting only
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `json:"port,omitempty"`
	AllowedOrigins  []string      `json:"allowed_origins,omitempty"` // "*" allows any origin
	ReadTimeout     time.Duration `json:"read_timeout,omitempty"`
	WriteTimeout    time.Duration `json:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty"`
	MaxBodyBytes    int64         `json:"max_body_bytes,omitempty"`
}

// RateLimitConfig bounds request rates per client. Endpoint tiers are fixed in
// the ratelimit package; these values govern every other route.
type RateLimitConfig struct {
	Disabled        bool          `json:"disabled,omitempty"`
	DefaultLimit    int           `json:"default_limit,omitempty"` // requests per window
	DefaultWindow   time.Duration `json:"default_window,omitempty"`
	EntryTTL        time.Duration `json:"entry_ttl,omitempty"`
	CleanupInterval time.Duration `json:"cleanup_interval,omitempty"`
	Whitelist       []string      `json:"whitelist,omitempty"`
	Blacklist       []string      `json:"blacklist,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Enthusiasm: EnthusiasmConfig{
			SilenceGap:      1.5,
			PaceDelta:       1.0,
			PaceWindow:      4,
			MinSegmentWords: 4,
			MaxSegmentWords: 40,
			MaxPeaks:        5,
		},
		Linguistics: LinguisticsConfig{
			ShortSentenceMax:   12,
			LongSentenceMin:    22,
			VocabularyRetain:   50,
			VocabularySurface:  10,
			SignatureRatio:     5,
			MinPhraseCount:     2,
			MaxPhrases:         10,
			QuestionRate:       0.1,
			ChronologyMarkers:  3,
			ShortParagraphMax:  40,
			LongParagraphMin:   120,
			MinTranscriptWords: 20,
		},
		Aggregator: AggregatorConfig{
			PriorWeightCap:      10,
			SaturationCount:     20,
			RecencyWindow:       90 * 24 * time.Hour,
			StaleWeight:         0.5,
			RuleConfidenceFloor: 0.6,
			CalibratedThreshold: 70,
			HistoryLimit:        100,
			VocabularyLimit:     100,
			ExcitedTopicsLimit:  10,
			PhraseLimit:         25,
		},
		Blend: BlendConfig{
			MaxReferents:    3,
			MaxReferentSum:  50,
			MaxActiveTraits: 3,
		},
		Composer: ComposerConfig{
			CacheSize: 256,
		},
		Engine: EngineConfig{
			AnalysisTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Port:            8080,
			AllowedOrigins:  []string{"*"},
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    2 << 20,
		},
		RateLimit: RateLimitConfig{
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			EntryTTL:        time.Hour,
			CleanupInterval: 5 * time.Minute,
		},
		LogLevel: "info",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load reads the optional JSON file, fills defaults, overlays environment
// variables and validates the result. An empty path means defaults plus env.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	merged := cfg.MergeWithDefaults(Default())
	merged.applyEnv()

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// applyEnv overlays secrets and deployment settings from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.APIKey == "" {
		c.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" && c.DatabaseURL == "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	if v := getEnvString("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}

	rl := &c.RateLimit
	rl.Disabled = !getEnvBool("RATE_LIMIT_ENABLED", !rl.Disabled)
	rl.DefaultLimit = getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", rl.DefaultLimit)
	rl.DefaultWindow = getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", rl.DefaultWindow)
	rl.CleanupInterval = getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", rl.CleanupInterval)
	if v := getEnvString("RATE_LIMIT_WHITELIST", ""); v != "" {
		rl.Whitelist = splitList(v)
	}
	if v := getEnvString("RATE_LIMIT_BLACKLIST", ""); v != "" {
		rl.Blacklist = splitList(v)
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	e := c.Enthusiasm
	if e.SilenceGap <= 0 {
		return fmt.Errorf("config error: 'enthusiasm.silence_gap_seconds' must be positive")
	}
	if e.PaceDelta <= 0 {
		return fmt.Errorf("config error: 'enthusiasm.pace_delta_wps' must be positive")
	}
	if e.PaceWindow < 2 {
		return fmt.Errorf("config error: 'enthusiasm.pace_window_words' must be at least 2")
	}
	if e.MaxSegmentWords < e.MinSegmentWords {
		return fmt.Errorf("config error: 'enthusiasm.max_segment_words' must be >= min_segment_words")
	}
	if e.MaxPeaks < 1 {
		return fmt.Errorf("config error: 'enthusiasm.max_peaks' must be at least 1")
	}

	l := c.Linguistics
	if l.ShortSentenceMax <= 0 || l.LongSentenceMin < l.ShortSentenceMax {
		return fmt.Errorf("config error: sentence length thresholds must satisfy 0 < short_sentence_max <= long_sentence_min")
	}
	if l.VocabularySurface > l.VocabularyRetain {
		return fmt.Errorf("config error: 'linguistics.vocabulary_surface' cannot exceed vocabulary_retain")
	}
	if l.QuestionRate < 0 || l.QuestionRate > 1 {
		return fmt.Errorf("config error: 'linguistics.question_rate' must be within [0,1]")
	}

	a := c.Aggregator
	if a.PriorWeightCap < 1 {
		return fmt.Errorf("config error: 'aggregator.prior_weight_cap' must be at least 1")
	}
	if a.SaturationCount < 1 {
		return fmt.Errorf("config error: 'aggregator.saturation_count' must be at least 1")
	}
	if a.StaleWeight < 0 || a.StaleWeight > 1 {
		return fmt.Errorf("config error: 'aggregator.stale_weight' must be within [0,1]")
	}
	if a.CalibratedThreshold < 0 || a.CalibratedThreshold > 100 {
		return fmt.Errorf("config error: 'aggregator.calibrated_threshold' must be within [0,100]")
	}
	if a.RuleMergeThreshold < 0 || a.RuleMergeThreshold > 1 {
		return fmt.Errorf("config error: 'aggregator.rule_merge_threshold' must be within [0,1]")
	}

	b := c.Blend
	if b.MaxReferents < 0 {
		return fmt.Errorf("config error: 'blend.max_referents' must be non-negative")
	}
	if b.MaxReferentSum < 0 || b.MaxReferentSum > 50 {
		return fmt.Errorf("config error: 'blend.max_referent_sum' must be within [0,50]")
	}

	if c.Composer.CacheSize < 0 {
		return fmt.Errorf("config error: 'composer.cache_size' must be non-negative")
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config error: 'llm.temperature' must be within [0,2]")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be within [1,65535]")
	}
	if !c.RateLimit.Disabled && (c.RateLimit.DefaultLimit < 1 || c.RateLimit.DefaultWindow <= 0) {
		return fmt.Errorf("config error: 'rate_limit.default_limit' and 'rate_limit.default_window' must be positive")
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: unknown log_level %q", c.LogLevel)
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// Strings
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	mergeFloat(&result.Enthusiasm.SilenceGap, defaults.Enthusiasm.SilenceGap)
	mergeFloat(&result.Enthusiasm.PaceDelta, defaults.Enthusiasm.PaceDelta)
	mergeInt(&result.Enthusiasm.PaceWindow, defaults.Enthusiasm.PaceWindow)
	mergeInt(&result.Enthusiasm.MinSegmentWords, defaults.Enthusiasm.MinSegmentWords)
	mergeInt(&result.Enthusiasm.MaxSegmentWords, defaults.Enthusiasm.MaxSegmentWords)
	mergeInt(&result.Enthusiasm.MaxPeaks, defaults.Enthusiasm.MaxPeaks)

	mergeInt(&result.Linguistics.ShortSentenceMax, defaults.Linguistics.ShortSentenceMax)
	mergeInt(&result.Linguistics.LongSentenceMin, defaults.Linguistics.LongSentenceMin)
	mergeInt(&result.Linguistics.VocabularyRetain, defaults.Linguistics.VocabularyRetain)
	mergeInt(&result.Linguistics.VocabularySurface, defaults.Linguistics.VocabularySurface)
	mergeFloat(&result.Linguistics.SignatureRatio, defaults.Linguistics.SignatureRatio)
	mergeInt(&result.Linguistics.MinPhraseCount, defaults.Linguistics.MinPhraseCount)
	mergeInt(&result.Linguistics.MaxPhrases, defaults.Linguistics.MaxPhrases)
	mergeFloat(&result.Linguistics.QuestionRate, defaults.Linguistics.QuestionRate)
	mergeInt(&result.Linguistics.ChronologyMarkers, defaults.Linguistics.ChronologyMarkers)
	mergeInt(&result.Linguistics.ShortParagraphMax, defaults.Linguistics.ShortParagraphMax)
	mergeInt(&result.Linguistics.LongParagraphMin, defaults.Linguistics.LongParagraphMin)
	mergeInt(&result.Linguistics.MinTranscriptWords, defaults.Linguistics.MinTranscriptWords)

	mergeInt(&result.Aggregator.PriorWeightCap, defaults.Aggregator.PriorWeightCap)
	mergeInt(&result.Aggregator.SaturationCount, defaults.Aggregator.SaturationCount)
	mergeDuration(&result.Aggregator.RecencyWindow, defaults.Aggregator.RecencyWindow)
	mergeFloat(&result.Aggregator.StaleWeight, defaults.Aggregator.StaleWeight)
	mergeFloat(&result.Aggregator.RuleConfidenceFloor, defaults.Aggregator.RuleConfidenceFloor)
	mergeInt(&result.Aggregator.CalibratedThreshold, defaults.Aggregator.CalibratedThreshold)
	mergeFloat(&result.Aggregator.RuleMergeThreshold, defaults.Aggregator.RuleMergeThreshold)
	mergeInt(&result.Aggregator.HistoryLimit, defaults.Aggregator.HistoryLimit)
	mergeInt(&result.Aggregator.VocabularyLimit, defaults.Aggregator.VocabularyLimit)
	mergeInt(&result.Aggregator.ExcitedTopicsLimit, defaults.Aggregator.ExcitedTopicsLimit)
	mergeInt(&result.Aggregator.PhraseLimit, defaults.Aggregator.PhraseLimit)

	mergeInt(&result.Blend.MaxReferents, defaults.Blend.MaxReferents)
	mergeInt(&result.Blend.MaxReferentSum, defaults.Blend.MaxReferentSum)
	mergeInt(&result.Blend.MaxActiveTraits, defaults.Blend.MaxActiveTraits)

	mergeInt(&result.Composer.CacheSize, defaults.Composer.CacheSize)

	mergeDuration(&result.Engine.AnalysisTimeout, defaults.Engine.AnalysisTimeout)

	mergeInt(&result.Server.Port, defaults.Server.Port)
	if len(result.Server.AllowedOrigins) == 0 {
		result.Server.AllowedOrigins = defaults.Server.AllowedOrigins
	}
	mergeDuration(&result.Server.ReadTimeout, defaults.Server.ReadTimeout)
	mergeDuration(&result.Server.WriteTimeout, defaults.Server.WriteTimeout)
	mergeDuration(&result.Server.ShutdownTimeout, defaults.Server.ShutdownTimeout)
	if result.Server.MaxBodyBytes == 0 {
		result.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}

	mergeInt(&result.RateLimit.DefaultLimit, defaults.RateLimit.DefaultLimit)
	mergeDuration(&result.RateLimit.DefaultWindow, defaults.RateLimit.DefaultWindow)
	mergeDuration(&result.RateLimit.EntryTTL, defaults.RateLimit.EntryTTL)
	mergeDuration(&result.RateLimit.CleanupInterval, defaults.RateLimit.CleanupInterval)

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

func mergeInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func mergeFloat(dst *float64, def float64) {
	if *dst == 0 {
		*dst = def
	}
}

func mergeDuration(dst *time.Duration, def time.Duration) {
	if *dst == 0 {
		*dst = def
	}
}
