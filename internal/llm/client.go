package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is the generation collaborator. Implementations must be safe for
// concurrent use.
type Client interface {
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateWithSystem writes creative text under a fixed system instruction.
	GenerateWithSystem(ctx context.Context, systemPrompt, prompt string, tier ModelTier) (string, error)
	// GetModel reports the provider model serving a tier.
	GetModel(tier ModelTier) string
	Close() error
}

// NewClient builds the client for config.Provider; nil config means defaults.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient implements Client on the Gemini API.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient dials Gemini with an API key.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// extractionTemperature keeps structured calls close to deterministic.
const extractionTemperature float32 = 0.1

// request describes one generation call.
type request struct {
	tier        ModelTier
	prompt      string
	system      string
	temperature float32
	json        bool
}

func (c *GeminiClient) generate(ctx context.Context, req request) (string, error) {
	modelName := c.config.GetModel(req.tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", req.tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(req.temperature)
	if req.json {
		model.ResponseMIMEType = "application/json"
	}
	if req.system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.system))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.prompt))
	if err != nil {
		return "", &APICallError{Model: modelName, Cause: err}
	}
	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", &APICallError{Model: modelName, Cause: err}
	}
	return text, nil
}

// GenerateContent returns plain text at extraction temperature.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, request{tier: tier, prompt: prompt, temperature: extractionTemperature})
}

// GenerateJSON asks for a JSON response and strips any code fence around it.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, request{tier: tier, prompt: prompt, temperature: extractionTemperature, json: true})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GenerateWithSystem ghostwrites under a system instruction at the configured
// creative temperature.
func (c *GeminiClient) GenerateWithSystem(ctx context.Context, systemPrompt, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, request{
		tier:        tier,
		prompt:      prompt,
		system:      systemPrompt,
		temperature: c.config.CreativeTemperature,
	})
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// errEmptyResponse means the model returned no usable text, which usually
// indicates a safety block.
var errEmptyResponse = errors.New("no text in response")

// extractTextFromResponse joins the text parts of the first candidate.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", errEmptyResponse
	}
	return sb.String(), nil
}

// APICallError wraps a failed call to the provider.
type APICallError struct {
	Model string
	Cause error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("LLM call to %s failed: %v", e.Model, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
