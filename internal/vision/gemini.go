package vision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiLabeler labels images with Google Gemini models
type GeminiLabeler struct {
	client *genai.Client
	config Config
}

// NewGeminiLabeler creates a new Gemini labeler
func NewGeminiLabeler(ctx context.Context, config Config) (*GeminiLabeler, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiLabeler{client: client, config: config}, nil
}

// Name returns the provider name
func (p *GeminiLabeler) Name() string {
	return "gemini"
}

// IsAvailable checks the configured model can be described
func (p *GeminiLabeler) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.GenerativeModel(p.model()).Info(ctx); err != nil {
		slog.Warn("Gemini API check failed", "error", err)
		return false
	}
	return true
}

// Label classifies an image
func (p *GeminiLabeler) Label(ctx context.Context, img Image) (*Label, error) {
	if err := waitFor(ctx, p.config.Limiter, "https://generativelanguage.googleapis.com"); err != nil {
		return nil, err
	}

	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model := p.client.GenerativeModel(p.model())
	model.SetTemperature(0.1)
	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 50
	}
	model.SetMaxOutputTokens(int32(maxTokens))
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	resp, err := model.GenerateContent(ctx, genai.ImageData(img.Format(), img.Data), genai.Text(LabelPrompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("no content in Gemini response")
	}

	label, err := ParseLabelResponse(text)
	if err != nil {
		return nil, err
	}
	label.Model = p.model()
	return label, nil
}

// Close releases the underlying client
func (p *GeminiLabeler) Close() error {
	return p.client.Close()
}

func (p *GeminiLabeler) model() string {
	if p.config.Model != "" {
		return p.config.Model
	}
	return "gemini-1.5-flash"
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}
