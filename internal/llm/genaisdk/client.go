// Package genaisdk generates text through the Google Gen AI SDK.
package genaisdk

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"resume-matcher/internal/llm"
)

// Client implements llm.Generator on top of genai.Client.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient builds a Gemini API backed client. baseURL overrides the endpoint when set.
func NewClient(ctx context.Context, baseURL, apiKey, model string) (*Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(baseURL) != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.User), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrTransport, err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyOutput
	}
	return text, nil
}

var _ llm.Generator = (*Client)(nil)
