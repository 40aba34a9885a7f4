package narrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/braindler/braindler-multimodal/internal/config"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultClaudeModel = "claude-3-5-haiku-latest"
	defaultGeminiModel = "gemini-1.5-flash"
	defaultOllamaModel = "llama3.1"
	defaultOllamaURL   = "http://localhost:11434"
)

// NewNarrator builds the narrator for the configured provider. "none" and
// "static" return the deterministic explanation.
func NewNarrator(ctx context.Context, cfg config.NarratorConfig) (Narrator, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "", "none", "static":
		return Static{}, nil

	case "openai":
		return NewLLM(NewOpenAIClient(cfg.APIKey, orDefault(cfg.Model, defaultOpenAIModel), cfg.BaseURL)), nil

	case "claude":
		return NewLLM(NewClaudeClient(cfg.APIKey, orDefault(cfg.Model, defaultClaudeModel), cfg.BaseURL)), nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, orDefault(cfg.Model, defaultGeminiModel))
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return NewLLM(c), nil

	case "ollama":
		// Ollama serves an OpenAI-compatible API under /v1.
		baseURL := orDefault(cfg.BaseURL, defaultOllamaURL)
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := orDefault(cfg.APIKey, "ollama")

		log.Info().Str("baseURL", baseURL).Msg("Using Ollama through its OpenAI-compatible API")
		return NewLLM(NewOpenAIClient(apiKey, orDefault(cfg.Model, defaultOllamaModel), baseURL)), nil

	default:
		return nil, fmt.Errorf("unsupported narrator provider: %s", provider)
	}
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
