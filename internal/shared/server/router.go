package server

import (
	"github.com/gin-gonic/gin"

	"resume-matcher/internal/identity"
	"resume-matcher/internal/services/health"
	"resume-matcher/internal/shared/auth"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
	"resume-matcher/internal/users"
	"resume-matcher/internal/workspace"
)

// RouterDeps holds the handlers mounted under /api/v1.
type RouterDeps struct {
	Config           config.Config
	Signer           *auth.Signer
	Gate             *identity.Gate
	GoogleAuth       *identity.GoogleService
	IdentityHandler  *identity.Handler
	UserHandler      *users.Handler
	WorkspaceHandler *workspace.Handler
	Health           *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	var sessions middleware.SessionChecker
	if deps.Gate != nil {
		sessions = deps.Gate
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Signer, sessions),
		middleware.RateLimit(rateLimitConfig(deps.Config)),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		respond.OK(c, deps.Health.Status())
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.IdentityHandler != nil {
		deps.IdentityHandler.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.WorkspaceHandler != nil {
		deps.WorkspaceHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitConfig(cfg config.Config) middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT":                        {Rate: cfg.RateLimitDefault, Burst: burstFor(cfg.RateLimitDefault, 10)},
			middleware.AnalyzeRateLimitGroup: {Rate: cfg.RateLimitAnalyze, Burst: 2},
		},
		GroupFor: middleware.RouteGroups(map[string]string{
			"POST /api/v1/workspace/analyze": middleware.AnalyzeRateLimitGroup,
		}),
	}
}

func burstFor(rate float64, floor int) int {
	if b := int(rate * 2); b > floor {
		return b
	}
	return floor
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
