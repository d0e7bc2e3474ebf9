package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"resume-matcher/internal/shared/auth"
	"resume-matcher/internal/shared/server/respond"
	"resume-matcher/internal/shared/telemetry"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleConfig carries the Google OAuth credentials.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UIRedirect   string
}

// GoogleService runs the interactive Google sign-in and hands the result to the Gate.
type GoogleService struct {
	oauthConfig *oauth2.Config
	uiRedirect  string
	userInfoURL string
	stateTTL    time.Duration
	stateStore  *stateStore
	gate        *Gate
	signer      *auth.Signer
}

// NewGoogleService builds a GoogleService.
func NewGoogleService(cfg GoogleConfig, gate *Gate, signer *auth.Signer) *GoogleService {
	return &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect:  cfg.UIRedirect,
		userInfoURL: googleUserInfoURL,
		stateTTL:    5 * time.Minute,
		stateStore:  newStateStore(),
		gate:        gate,
		signer:      signer,
	}
}

// Configured reports whether every credential needed for sign-in is present.
func (s *GoogleService) Configured() bool {
	return s.oauthConfig.ClientID != "" && s.oauthConfig.ClientSecret != "" &&
		s.oauthConfig.RedirectURL != "" && s.uiRedirect != ""
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.Configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Sign-in is not configured", nil)
		return
	}

	state := uuid.NewString()
	s.stateStore.put(state, time.Now().Add(s.stateTTL))

	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(state))
}

func (s *GoogleService) callback(c *gin.Context) {
	if !s.Configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Sign-in is not configured", nil)
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}

	if !s.stateStore.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		s.fail(c, "exchange", err)
		return
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		s.fail(c, "userinfo", err)
		return
	}
	if info.Sub == "" {
		s.fail(c, "userinfo", errors.New("missing subject"))
		return
	}

	session, err := s.gate.SignIn(ctx, Session{
		UserID:      "google:" + info.Sub,
		DisplayName: info.Name,
		Email:       info.Email,
		AvatarURL:   info.Picture,
	})
	if err != nil {
		s.fail(c, "signin", err)
		return
	}

	signed, err := s.signer.Sign(auth.Claims{
		Email:            session.Email,
		Name:             session.DisplayName,
		Picture:          session.AvatarURL,
		SessionID:        session.ID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: session.UserID},
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}

	redirectURL, err := appendToken(s.uiRedirect, signed)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}

	c.Redirect(http.StatusFound, redirectURL)
}

func (s *GoogleService) fail(c *gin.Context, stage string, err error) {
	telemetry.Warn("identity.signin_failed", map[string]any{"stage": stage, "err": err})
	respond.Error(c, http.StatusUnauthorized, "identity", SignInFailedMessage, nil)
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := s.oauthConfig.Client(ctx, token)
	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}

	// The v2 endpoint reports the subject as "id".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}

type stateStore struct {
	items map[string]time.Time
	mu    sync.Mutex
	now   func() time.Time
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]time.Time), now: time.Now}
}

func (s *stateStore) put(state string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, v := range s.items {
		if now.After(v) {
			delete(s.items, k)
		}
	}
	s.items[state] = exp
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	exp, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	return ok && !s.now().After(exp)
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
