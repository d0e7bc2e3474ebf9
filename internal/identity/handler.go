package identity

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
)

const heartbeatInterval = 25 * time.Second

// Handler exposes the Gate over HTTP.
type Handler struct {
	Gate *Gate
}

func NewHandler(gate *Gate) *Handler {
	return &Handler{Gate: gate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/signout", h.signOut)
	rg.GET("/session", h.current)
	rg.GET("/session/events", h.events)
}

func (h *Handler) signOut(c *gin.Context) {
	h.Gate.SignOut(c.Request.Context(), middleware.UserIDFromContext(c))
	c.Status(http.StatusNoContent)
}

func (h *Handler) current(c *gin.Context) {
	session, ok := h.Gate.Current(middleware.UserIDFromContext(c))
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "not signed in", nil)
		return
	}
	respond.OK(c, session)
}

// events streams identity changes as server-sent events until sign-out or disconnect.
func (h *Handler) events(c *gin.Context) {
	updates := make(chan *Session, 8)
	unsubscribe := h.Gate.Subscribe(middleware.UserIDFromContext(c), func(s *Session) {
		// Drop the oldest pending state if the client falls behind.
		for {
			select {
			case updates <- s:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			c.SSEvent("ping", "")
			c.Writer.Flush()
		case s := <-updates:
			c.SSEvent("session", encodeSession(s))
			c.Writer.Flush()
			if s == nil {
				return
			}
		}
	}
}

func encodeSession(s *Session) string {
	if s == nil {
		return "null"
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "null"
	}
	return string(data)
}
