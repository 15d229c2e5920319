// Package openai answers prompts with the OpenAI chat completions API.
package openai

import (
	"context"
	"fmt"
	"math"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/askmydata/backend/internal/llm"
)

const DefaultModel = goopenai.GPT4oMini

type Provider struct {
	BaseURL   string
	ModelName string
	Key       llm.KeySource
	Client    *http.Client
}

// Ensure Provider implements llm.Provider
var _ llm.Provider = &Provider{}

func NewProvider(baseURL, modelName string, key llm.KeySource) *Provider {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Provider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Key:       key,
		// Calls are bounded by the caller's context deadline.
		Client: &http.Client{},
	}
}

func (p *Provider) Name() string {
	return "OpenAI"
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	apiKey, ok := p.Key()
	if !ok {
		return "", llm.ErrMissingAPIKey
	}

	options := llm.ApplyOptions(opts...)
	model := p.ModelName
	if options.Model != "" {
		model = options.Model
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
	}
	cfg.HTTPClient = p.Client
	client := goopenai.NewClientWithConfig(cfg)

	// The request field is omitempty, so an exact zero would fall back to
	// the API default of 1.
	temperature := float32(options.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
