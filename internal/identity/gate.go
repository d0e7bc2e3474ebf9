package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/shared/util"
	"resume-matcher/internal/users"
)

// ErrSignInFailed is returned when a sign-in attempt cannot complete.
var ErrSignInFailed = errors.New("sign-in failed")

// SignInFailedMessage is shown to the user for any failed sign-in.
const SignInFailedMessage = "Sign-in failed. Please try again."

// ProfileRecorder persists the profile of a user who signed in.
type ProfileRecorder interface {
	RecordSignIn(ctx context.Context, user users.User) error
}

// Listener receives the current session, or nil once signed out.
type Listener func(*Session)

// Gate owns the active sessions and notifies subscribers of identity changes.
// Listeners are called serially and must not call back into SignIn, SignOut or Subscribe.
type Gate struct {
	mu        sync.Mutex
	sessions  map[string]Session
	listeners map[string]map[uint64]Listener
	nextID    uint64
	hooks     []func(ctx context.Context, userID string)

	// notifyMu serializes delivery so a listener sees changes in order.
	notifyMu sync.Mutex

	profiles ProfileRecorder
	now      func() time.Time
}

// NewGate builds a Gate. profiles may be nil.
func NewGate(profiles ProfileRecorder) *Gate {
	return &Gate{
		sessions:  make(map[string]Session),
		listeners: make(map[string]map[uint64]Listener),
		profiles:  profiles,
		now:       time.Now,
	}
}

// OnSignOut registers a hook fired after a user's session ends.
func (g *Gate) OnSignOut(hook func(ctx context.Context, userID string)) {
	g.mu.Lock()
	g.hooks = append(g.hooks, hook)
	g.mu.Unlock()
}

// SignIn validates and activates a session, replacing any previous one for the user.
func (g *Gate) SignIn(ctx context.Context, s Session) (Session, error) {
	if err := s.validate(); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrSignInFailed, err)
	}
	if g.profiles != nil {
		err := g.profiles.RecordSignIn(ctx, users.User{
			ID:          s.UserID,
			Email:       s.Email,
			DisplayName: s.DisplayName,
			AvatarURL:   s.AvatarURL,
		})
		if err != nil {
			return Session{}, fmt.Errorf("%w: record profile: %v", ErrSignInFailed, err)
		}
	}

	s.ID = uuid.NewString()
	s.SignedInAt = g.now().UTC()

	g.notifyMu.Lock()
	defer g.notifyMu.Unlock()
	g.mu.Lock()
	g.sessions[s.UserID] = s
	listeners := g.listenersLocked(s.UserID)
	g.mu.Unlock()

	telemetry.Info("identity.signin", map[string]any{"user_key": util.HashUserKey(s.UserID)})
	for _, l := range listeners {
		current := s
		l(&current)
	}
	return s, nil
}

// SignOut ends the user's session, runs the sign-out hooks, then notifies listeners with nil.
func (g *Gate) SignOut(ctx context.Context, userID string) {
	g.notifyMu.Lock()
	defer g.notifyMu.Unlock()

	g.mu.Lock()
	_, active := g.sessions[userID]
	delete(g.sessions, userID)
	hooks := append([]func(context.Context, string){}, g.hooks...)
	listeners := g.listenersLocked(userID)
	g.mu.Unlock()

	if !active {
		return
	}
	for _, hook := range hooks {
		hook(ctx, userID)
	}
	telemetry.Info("identity.signout", map[string]any{"user_key": util.HashUserKey(userID)})
	for _, l := range listeners {
		l(nil)
	}
}

// Current returns the user's active session.
func (g *Gate) Current(userID string) (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[userID]
	return s, ok
}

// Active reports whether sessionID is the user's live session.
func (g *Gate) Active(userID, sessionID string) bool {
	s, ok := g.Current(userID)
	return ok && sessionID != "" && s.ID == sessionID
}

// Subscribe registers a listener for the user's identity. It fires at once with
// the current state, then on each change. The returned func is idempotent.
func (g *Gate) Subscribe(userID string, l Listener) (unsubscribe func()) {
	g.notifyMu.Lock()
	g.mu.Lock()
	g.nextID++
	id := g.nextID
	if g.listeners[userID] == nil {
		g.listeners[userID] = make(map[uint64]Listener)
	}
	g.listeners[userID][id] = l
	current, ok := g.sessions[userID]
	g.mu.Unlock()

	if ok {
		l(&current)
	} else {
		l(nil)
	}
	g.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.listeners[userID], id)
			if len(g.listeners[userID]) == 0 {
				delete(g.listeners, userID)
			}
		})
	}
}

func (g *Gate) listenersLocked(userID string) []Listener {
	out := make([]Listener, 0, len(g.listeners[userID]))
	for _, l := range g.listeners[userID] {
		out = append(out, l)
	}
	return out
}

func (g *Gate) subscriberCount(userID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.listeners[userID])
}
