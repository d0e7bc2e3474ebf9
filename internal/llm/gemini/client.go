// Package gemini calls the Gemini generateContent REST endpoint.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"resume-matcher/internal/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	generatePath   = "/v1beta/models/{model}:generateContent"
	textPath       = "candidates.0.content.parts.0.text"
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction content   `json:"systemInstruction"`
}

// Client implements llm.Generator. It makes exactly one request per call.
type Client struct {
	http   *resty.Client
	apiKey string
	model  string
}

// NewClient builds a client. The transport default timeout applies.
func NewClient(baseURL, apiKey, model string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)
	return &Client{http: rc, apiKey: apiKey, model: model}
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	body := generateRequest{
		Contents:          []content{{Parts: []part{{Text: req.User}}}},
		SystemInstruction: content{Parts: []part{{Text: req.System}}},
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		Post(generatePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrTransport, stripURL(err))
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: gemini status %d", llm.ErrTransport, resp.StatusCode())
	}

	text := gjson.GetBytes(resp.Body(), textPath)
	if !text.Exists() || text.Type != gjson.String {
		return "", llm.ErrEmptyOutput
	}
	return text.String(), nil
}

// stripURL drops the request URL from transport errors so the key never reaches logs.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

var _ llm.Generator = (*Client)(nil)
