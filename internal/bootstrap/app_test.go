package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"resume-matcher/internal/identity"
	"resume-matcher/internal/shared/auth"
	"resume-matcher/internal/shared/config"
)

const modelReply = "```json\n{\"matchScore\":82,\"summary\":\"Strong match\",\"missingKeywords\":[\"Kubernetes\"],\"strengths\":[\"Go experience\"],\"improvements\":[\"Add cloud certs\"]}\n```"

func testConfig(geminiURL, key string) config.Config {
	return config.Config{
		Env:              "test",
		LLMProvider:      config.ProviderGemini,
		LLMModel:         "gemini-test",
		GeminiAPIKey:     key,
		GeminiBaseURL:    geminiURL,
		PDFWorker:        "ledongthuc/pdf",
		PDFMaxPages:      10,
		MaxUploadBytes:   1 << 20,
		RateLimitDefault: 100,
		RateLimitAnalyze: 100,
	}
}

func signIn(t *testing.T, app *App, userID string) string {
	t.Helper()
	session, err := app.Gate.SignIn(context.Background(), identity.Session{UserID: userID, DisplayName: "Ada"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	token, err := app.Signer.Sign(auth.Claims{SessionID: session.ID, RegisteredClaims: jwt.RegisteredClaims{Subject: userID}})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func call(app *App, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func TestBuildServesHealthWithoutAuth(t *testing.T) {
	app, err := Build(testConfig("", ""))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	w := call(app, http.MethodGet, "/api/v1/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"analysisConfigured":false`) || !strings.Contains(w.Body.String(), `"pdfEngine":"not_loaded"`) {
		t.Fatalf("unexpected health body %s", w.Body.String())
	}

	if w := call(app, http.MethodGet, "/metrics", "", ""); w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
	if w := call(app, http.MethodGet, "/api/v1/workspace", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	var calls atomic.Int32
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := json.Marshal(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": modelReply}}}}},
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer model.Close()

	app, err := Build(testConfig(model.URL, "test-key"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	token := signIn(t, app, "google:1")

	call(app, http.MethodPut, "/api/v1/workspace/resume", token, `{"text":"Senior engineer with 5 years Go experience"}`)
	call(app, http.MethodPut, "/api/v1/workspace/job-description", token, `{"text":"Looking for a Go backend engineer"}`)
	w := call(app, http.MethodPost, "/api/v1/workspace/analyze", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("analyze: %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"matchScore":82`) || !strings.Contains(w.Body.String(), `"band":"high"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one model call, got %d", calls.Load())
	}

	app.Gate.SignOut(context.Background(), "google:1")
	if w := call(app, http.MethodGet, "/api/v1/workspace", token, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after sign-out, got %d", w.Code)
	}
	if got := app.WorkspaceService.Get("google:1"); got.Result != nil || got.Resume.Text != "" {
		t.Fatalf("expected workspace cleared on sign-out, got %+v", got)
	}
}

func TestAnalyzeWithoutKeyIsConfigurationError(t *testing.T) {
	app, err := Build(testConfig("", ""))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	token := signIn(t, app, "google:2")
	call(app, http.MethodPut, "/api/v1/workspace/resume", token, `{"text":"resume"}`)
	call(app, http.MethodPut, "/api/v1/workspace/job-description", token, `{"text":"job"}`)

	w := call(app, http.MethodPost, "/api/v1/workspace/analyze", token, "")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), `"code":"configuration"`) {
		t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
	}
}

func TestBuildGeneratorSelectsProvider(t *testing.T) {
	cfg := testConfig("", "")
	gen, err := BuildGenerator(context.Background(), cfg)
	if err != nil || gen != nil {
		t.Fatalf("expected nil generator without key, got %v %v", gen, err)
	}

	cfg.LLMProvider = config.ProviderOpenAI
	cfg.OpenAIAPIKey = "sk-test"
	cfg.LLMModel = "gpt-4o-mini"
	gen, err = BuildGenerator(context.Background(), cfg)
	if err != nil || gen == nil {
		t.Fatalf("expected openai generator, got %v %v", gen, err)
	}
}
