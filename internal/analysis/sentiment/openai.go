package sentiment

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration for the OpenAI sentiment backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string // default: "gpt-4o-mini"
}

// OpenAIProvider rates transcript tone with a chat-completion model.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Analyze(ctx context.Context, text string) (*Result, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzePrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai sentiment: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai sentiment: empty response")
	}

	return parseResult(resp.Choices[0].Message.Content)
}

func parseResult(content string) (*Result, error) {
	var parsed struct {
		Polarity float64 `json:"polarity"`
		Label    string  `json:"label"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse sentiment response: %w", err)
	}

	if parsed.Polarity < -1 {
		parsed.Polarity = -1
	}
	if parsed.Polarity > 1 {
		parsed.Polarity = 1
	}
	if parsed.Label == "" {
		parsed.Label = labelFor(parsed.Polarity)
	}
	return &Result{Polarity: parsed.Polarity, Label: parsed.Label}, nil
}
