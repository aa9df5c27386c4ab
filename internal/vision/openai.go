package vision

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/wastewise/internal/util"
)

// OpenAILabeler labels images with OpenAI vision-capable chat models
type OpenAILabeler struct {
	client  *openai.Client
	config  Config
	baseURL string
}

// NewOpenAILabeler creates a new OpenAI labeler
func NewOpenAILabeler(config Config) (*OpenAILabeler, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	return &OpenAILabeler{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  config,
		baseURL: clientConfig.BaseURL,
	}, nil
}

// Name returns the provider name
func (p *OpenAILabeler) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAILabeler) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.ListModels(ctx); err != nil {
		slog.Warn("OpenAI API check failed", "error", err)
		return false
	}
	return true
}

// Label classifies an image using the Chat Completions API with an image part
func (p *OpenAILabeler) Label(ctx context.Context, img Image) (*Label, error) {
	if err := waitFor(ctx, p.config.Limiter, p.baseURL); err != nil {
		return nil, err
	}

	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 50
	}

	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: LabelPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    img.DataURL(),
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	label, err := ParseLabelResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	label.Model = model
	return label, nil
}
