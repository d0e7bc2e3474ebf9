package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	ProviderGemini    = "gemini"
	ProviderGeminiSDK = "gemini-sdk"
	ProviderOpenAI    = "openai"
)

// Config holds application configuration.
type Config struct {
	Port               string
	CORSAllowOrigin    []string
	DatabaseURL        string
	Env                string
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
	LLMProvider        string
	LLMModel           string
	GeminiAPIKey       string
	GeminiBaseURL      string
	OpenAIAPIKey       string
	PDFWorker          string
	PDFMaxPages        int
	MaxUploadBytes     int64
	RateLimitDefault   float64
	RateLimitAnalyze   float64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	provider := normalizeProvider(getEnv("LLM_PROVIDER", ProviderGemini))
	return Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:        dbURL,
		Env:                env,
		JWTSecret:          getEnv("JWT_SECRET", ""),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
		LLMProvider:        provider,
		LLMModel:           getEnv("LLM_MODEL", defaultModel(provider)),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		PDFWorker:          getEnv("PDF_WORKER", "ledongthuc/pdf"),
		PDFMaxPages:        getEnvInt("PDF_MAX_PAGES", 50),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		RateLimitDefault:   getEnvFloat("RATE_LIMIT_DEFAULT_RPS", 5),
		RateLimitAnalyze:   getEnvFloat("RATE_LIMIT_ANALYZE_RPS", 0.2),
	}
}

// AnalysisAPIKey returns the credential of the active analysis provider.
func (c Config) AnalysisAPIKey() string {
	if c.LLMProvider == ProviderOpenAI {
		return strings.TrimSpace(c.OpenAIAPIKey)
	}
	return strings.TrimSpace(c.GeminiAPIKey)
}

// WithProvider overrides the analysis provider and model. A blank provider
// keeps the current one. A blank model keeps the current model when the
// provider is unchanged and otherwise falls back to the new provider's default.
func (c Config) WithProvider(provider, model string) Config {
	next := c.LLMProvider
	if strings.TrimSpace(provider) != "" {
		next = normalizeProvider(provider)
	}
	model = strings.TrimSpace(model)
	switch {
	case model != "":
		c.LLMModel = model
	case next != c.LLMProvider || strings.TrimSpace(c.LLMModel) == "":
		c.LLMModel = defaultModel(next)
	}
	c.LLMProvider = next
	return c
}

// IdentityConfigured reports whether every sign-in credential is present.
func (c Config) IdentityConfigured() bool {
	for _, v := range []string{c.GoogleClientID, c.GoogleClientSecret, c.GoogleRedirectURL, c.UIRedirectURL} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("config %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val < 0 {
		log.Printf("config %s invalid float %q, using %g", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ProviderOpenAI:
		return ProviderOpenAI
	case ProviderGeminiSDK, "genai":
		return ProviderGeminiSDK
	default:
		return ProviderGemini
	}
}

func defaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return "gpt-4o-mini"
	}
	return "gemini-2.5-flash"
}
