package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const checkPrompt = `You are a grammar checker. Find grammar, spelling and
word-usage errors in the text. Ignore casual spoken-language style, filler
words and punctuation. Respond with only a JSON object of the form
{"issues":[{"message":"...","rule":"..."}]} and nothing else.`

// OpenAIConfig holds configuration for the LLM-backed grammar checker.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // optional, for compatible endpoints
	Model   string // default: "gpt-4o-mini"
}

// OpenAIChecker finds grammar issues with a chat-completion model.
type OpenAIChecker struct {
	client *openai.Client
	model  string
}

// NewOpenAIChecker creates an LLM grammar checker with defaults applied.
func NewOpenAIChecker(cfg OpenAIConfig) *OpenAIChecker {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIChecker{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (c *OpenAIChecker) Name() string { return "openai" }

func (c *OpenAIChecker) Check(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyTranscript
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: checkPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai grammar check: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai grammar check: empty response")
	}

	var parsed struct {
		Issues []Issue `json:"issues"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("parse grammar response: %w", err)
	}

	return &Result{IssueCount: len(parsed.Issues), Issues: parsed.Issues}, nil
}
