// Package analysis builds the match prompt, calls the model and parses its verdict.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/telemetry"
)

// Analyzer produces a Result for a resume and job description.
type Analyzer interface {
	Analyze(ctx context.Context, resume, job string) (Result, error)
}

// Client runs one analysis per call. No retries.
type Client struct {
	Generator llm.Generator
	APIKey    string
	Provider  string
	Model     string
}

func NewClient(gen llm.Generator, apiKey, provider, model string) *Client {
	return &Client{Generator: gen, APIKey: apiKey, Provider: provider, Model: model}
}

// Analyze validates inputs and configuration before any network call.
func (c *Client) Analyze(ctx context.Context, resume, job string) (Result, error) {
	if strings.TrimSpace(resume) == "" || strings.TrimSpace(job) == "" {
		return Result{}, newError(KindValidation, ValidationMessage, ErrValidation)
	}
	if strings.TrimSpace(c.APIKey) == "" || c.Generator == nil {
		return Result{}, newError(KindConfiguration, NotConfiguredMessage, ErrNotConfigured)
	}

	req := BuildPrompt(resume, job)
	fields := map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"provider":    c.Provider,
		"model":       c.Model,
		"prompt_hash": llm.PromptHash(req),
	}
	startedAt := time.Now()
	metrics.IncAnalysisStarted()

	result, err := c.run(ctx, req)
	elapsed := metrics.SinceMillis(startedAt)
	metrics.ObserveAnalysisDurationMs(elapsed)
	fields["duration_ms"] = elapsed
	if err != nil {
		metrics.IncAnalysisFailed()
		fields["status"] = "failed"
		fields["kind"] = AsError(err).Kind
		fields["err"] = err
		telemetry.Warn("analysis.status", fields)
		return Result{}, err
	}
	metrics.IncAnalysisCompleted()
	fields["status"] = "completed"
	fields["match_score"] = result.MatchScore
	telemetry.Info("analysis.status", fields)
	return result, nil
}

func (c *Client) run(ctx context.Context, req llm.Request) (Result, error) {
	text, err := c.Generator.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyOutput) {
			return Result{}, newError(KindParse, FailedMessage, fmt.Errorf("%w: %v", ErrParse, err))
		}
		return Result{}, newError(KindTransport, FailedMessage, fmt.Errorf("%w: %v", ErrTransport, err))
	}
	result, err := ParseResult(text)
	if err != nil {
		return Result{}, newError(KindParse, FailedMessage, err)
	}
	return result, nil
}

var _ Analyzer = (*Client)(nil)
