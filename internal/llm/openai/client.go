// Package openai generates text through the OpenAI chat completions API.
package openai

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/telemetry"
)

const lowTemperature = 0.2

// Client implements llm.Generator using go-openai.
type Client struct {
	api   *goopenai.Client
	model string
}

// NewClient constructs a client. baseURL overrides the API endpoint when set.
func NewClient(baseURL, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{api: goopenai.NewClientWithConfig(cfg), model: model}, nil
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	chat := goopenai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.System},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
	}
	// gpt-5 models reject a non-default temperature.
	if !isGPT5(c.model) {
		chat.Temperature = lowTemperature
	}

	resp, err := c.api.CreateChatCompletion(ctx, chat)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrTransport, err)
	}
	telemetry.Info("llm.usage", map[string]any{
		"model":             c.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	})
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", llm.ErrEmptyOutput
	}
	return resp.Choices[0].Message.Content, nil
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Generator = (*Client)(nil)
