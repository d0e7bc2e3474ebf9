package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/analysis"
	"resume-matcher/internal/identity"
	"resume-matcher/internal/ingest"
	"resume-matcher/internal/llm"
	"resume-matcher/internal/llm/gemini"
	"resume-matcher/internal/llm/genaisdk"
	"resume-matcher/internal/llm/openai"
	"resume-matcher/internal/pdftext"
	"resume-matcher/internal/services/health"
	"resume-matcher/internal/shared/auth"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/server"
	"resume-matcher/internal/shared/storage/db"
	"resume-matcher/internal/users"
	"resume-matcher/internal/workspace"
)

// App holds shared dependencies.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	UsersRepo        users.Repo
	UsersService     *users.Service
	Signer           *auth.Signer
	Gate             *identity.Gate
	GoogleAuth       *identity.GoogleService
	PDFLoader        *pdftext.Loader
	Ingest           *ingest.Service
	Analyzer         *analysis.Client
	WorkspaceService *workspace.Service
}

// Build prepares dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, DB: sqlDB}

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		Signer:           app.Signer,
		Gate:             app.Gate,
		GoogleAuth:       app.GoogleAuth,
		IdentityHandler:  identity.NewHandler(app.Gate),
		UserHandler:      users.NewHandler(app.UsersService),
		WorkspaceHandler: workspace.NewHandler(app.WorkspaceService, cfg.MaxUploadBytes),
		Health:           health.NewService(app.PDFLoader, cfg.AnalysisAPIKey() != "", cfg.IdentityConfigured()),
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory profiles")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory profiles: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildServices(ctx context.Context, app *App) error {
	cfg := app.Config

	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
	}
	app.UsersService = users.NewService(app.UsersRepo)

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return err
	}
	app.Signer = signer
	app.Gate = identity.NewGate(app.UsersService)
	app.GoogleAuth = identity.NewGoogleService(identity.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		UIRedirect:   cfg.UIRedirectURL,
	}, app.Gate, signer)
	if !app.GoogleAuth.Configured() {
		log.Printf("bootstrap: google credentials missing; sign-in disabled")
	}

	app.PDFLoader = pdftext.NewLoader(pdftext.Config{Worker: cfg.PDFWorker, MaxPages: cfg.PDFMaxPages}, nil)
	app.Ingest = ingest.NewService(app.PDFLoader)

	gen, err := BuildGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	app.Analyzer = analysis.NewClient(gen, cfg.AnalysisAPIKey(), cfg.LLMProvider, cfg.LLMModel)

	app.WorkspaceService = workspace.NewService(workspace.NewStore(), app.Ingest, app.Analyzer)
	app.Gate.OnSignOut(app.WorkspaceService.Reset)
	return nil
}

// BuildGenerator returns the provider client, or nil when no API key is set.
// A nil generator makes every analysis fail with a configuration error.
func BuildGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	key := cfg.AnalysisAPIKey()
	if key == "" {
		log.Printf("bootstrap: no API key for provider %s; analysis disabled", cfg.LLMProvider)
		return nil, nil
	}
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return openai.NewClient("", key, cfg.LLMModel)
	case config.ProviderGeminiSDK:
		return genaisdk.NewClient(ctx, cfg.GeminiBaseURL, key, cfg.LLMModel)
	default:
		return gemini.NewClient(cfg.GeminiBaseURL, key, cfg.LLMModel), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
