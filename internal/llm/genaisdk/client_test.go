package genaisdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/llm"
)

func TestGenerateThroughSDK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"matchScore\":1}"}]}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), server.URL, "k", "gemini-test")
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), llm.Request{System: "s", User: "u"})
	require.NoError(t, err)
	assert.Equal(t, `{"matchScore":1}`, text)
}

func TestGenerateErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), server.URL, "k", "gemini-test")
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), llm.Request{User: "u"})
	assert.ErrorIs(t, err, llm.ErrTransport)
}
