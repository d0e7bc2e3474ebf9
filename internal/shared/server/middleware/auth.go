package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/auth"
	"resume-matcher/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	sessionIDKey = "sessionId"
	userEmailKey = "userEmail"
)

// SessionChecker reports whether a signed-in session is still active.
type SessionChecker interface {
	Active(userID, sessionID string) bool
}

// Auth validates bearer JWTs against the active sessions and stores identity in context.
func Auth(signer *auth.Signer, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		if isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := signer.Verify(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		if sessions != nil && !sessions.Active(claims.Subject, claims.SessionID) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "session ended", nil)
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(sessionIDKey, claims.SessionID)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		c.Next()
	}
}

func isPublicPath(path string) bool {
	switch {
	case path == "/api/v1/health", path == "/metrics":
		return true
	case strings.HasPrefix(path, "/api/v1/auth/google/"):
		return true
	case !strings.HasPrefix(path, "/api/v1/"):
		return true
	}
	return false
}

// bearerToken reads the Authorization header. EventSource clients cannot set
// headers, so the session event stream also accepts ?access_token=.
func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", false
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		return token, token != ""
	}
	if c.Request.Method == http.MethodGet && c.Request.URL.Path == "/api/v1/session/events" {
		token := strings.TrimSpace(c.Query("access_token"))
		return token, token != ""
	}
	return "", false
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return contextString(c, userIDKey)
}

// SessionIDFromContext fetches the session ID set by the auth middleware.
func SessionIDFromContext(c *gin.Context) string {
	return contextString(c, sessionIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return contextString(c, userEmailKey)
}

func contextString(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
