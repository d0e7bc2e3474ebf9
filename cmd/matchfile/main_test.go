package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/shared/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunPrintsResult(t *testing.T) {
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply := `{"matchScore":55,"summary":"Partial","missingKeywords":["gRPC"],"strengths":[],"improvements":["Quantify impact"]}`
		body, _ := json.Marshal(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": reply}}}}},
		})
		_, _ = w.Write(body)
	}))
	defer model.Close()

	dir := t.TempDir()
	cfg := config.Config{GeminiAPIKey: "k", GeminiBaseURL: model.URL, PDFWorker: "ledongthuc/pdf"}
	opts := options{
		resumePath: writeFile(t, dir, "cv.txt", "Go developer"),
		jobPath:    writeFile(t, dir, "jd.txt", "Go and gRPC"),
		provider:   config.ProviderGemini,
		model:      "gemini-test",
		outPath:    filepath.Join(dir, "out.json"),
	}

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, opts, &stdout))

	var got output
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "cv.txt", got.FileName)
	assert.Equal(t, 55.0, got.Result.MatchScore)
	assert.EqualValues(t, "medium", got.View.Band)

	written, err := os.ReadFile(opts.outPath)
	require.NoError(t, err)
	assert.Equal(t, stdout.String(), string(written))
}

func TestRunRejectsUnsupportedResume(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		resumePath: writeFile(t, dir, "cv.png", "\x89PNG\r\n\x1a\n\x00\x00\x00\x00"),
		jobPath:    writeFile(t, dir, "jd.txt", "job"),
		provider:   config.ProviderGemini,
	}
	err := run(context.Background(), config.Config{}, opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Unsupported file type."))
}

func TestRunWithoutKeyFails(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		resumePath: writeFile(t, dir, "cv.txt", "resume"),
		jobPath:    writeFile(t, dir, "jd.txt", "job"),
		provider:   config.ProviderGemini,
	}
	err := run(context.Background(), config.Config{}, opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Analysis API key is not configured.")
}

func TestRootCmdRequiresFlags(t *testing.T) {
	cmd := newRootCmd(config.Config{})
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestDeclaredType(t *testing.T) {
	assert.Equal(t, "application/pdf", declaredType("a/B.PDF"))
	assert.Equal(t, "text/plain", declaredType("cv.txt"))
	assert.Equal(t, "", declaredType("cv.docx"))
}

func TestRootCmdProviderOverrideUsesProviderDefaultModel(t *testing.T) {
	var requested string
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		reply := `{"matchScore":80,"summary":"Good","missingKeywords":[],"strengths":["Go"],"improvements":[]}`
		body, _ := json.Marshal(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": reply}}}}},
		})
		_, _ = w.Write(body)
	}))
	defer model.Close()

	dir := t.TempDir()
	cfg := config.Config{
		LLMProvider:   config.ProviderOpenAI,
		LLMModel:      "gpt-4o-mini",
		GeminiAPIKey:  "k",
		GeminiBaseURL: model.URL,
		PDFWorker:     "ledongthuc/pdf",
	}
	var stdout bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetArgs([]string{
		"--resume", writeFile(t, dir, "cv.txt", "Go developer"),
		"--job", writeFile(t, dir, "jd.txt", "Go"),
		"--provider", "gemini",
	})
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", requested)
}
