package vision

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/wastewise/internal/model"
)

// NewLabeler creates a single-label provider based on configuration
func NewLabeler(ctx context.Context, config Config) (Labeler, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAILabeler(config)

	case "anthropic", "claude":
		return NewAnthropicLabeler(config)

	case "ollama":
		return NewOllamaLabeler(config)

	case "gemini", "google":
		return NewGeminiLabeler(ctx, config)

	case "":
		// No provider configured - labeler disabled
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown vision provider: %s (supported: openai, anthropic, ollama, gemini)", config.Provider)
	}
}

// ConfigFromModel converts the classifier section of the app config, filling
// the API key from the provider's conventional environment variable when unset
func ConfigFromModel(cfg model.ClassifierConfig, httpCfg model.HTTPConfig) Config {
	c := DefaultConfig()
	c.Provider = cfg.Provider
	c.Model = cfg.Model
	c.APIKey = cfg.APIKey
	c.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	c.HTTPProxy = httpCfg.HTTPProxy
	c.HTTPSProxy = httpCfg.HTTPSProxy
	c.NoProxy = httpCfg.NoProxy

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "gemini", "google":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	case "ollama":
		if c.BaseURL == "" {
			c.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}

	return c
}
