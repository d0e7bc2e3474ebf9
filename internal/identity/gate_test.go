package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/users"
)

type failingProfiles struct{}

func (failingProfiles) RecordSignIn(context.Context, users.User) error {
	return errors.New("db down")
}

func TestSignInStoresSessionAndProfile(t *testing.T) {
	profiles := users.NewService(users.NewMemoryRepo())
	gate := NewGate(profiles)
	ctx := context.Background()

	s, err := gate.SignIn(ctx, Session{UserID: "google:1", DisplayName: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.SignedInAt.IsZero())

	current, ok := gate.Current("google:1")
	require.True(t, ok)
	assert.Equal(t, s, current)
	assert.True(t, gate.Active("google:1", s.ID))
	assert.False(t, gate.Active("google:1", "other"))

	user, err := profiles.GetByID(ctx, "google:1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.DisplayName)
}

func TestSignInRejectsInvalidSession(t *testing.T) {
	gate := NewGate(nil)

	_, err := gate.SignIn(context.Background(), Session{UserID: ""})
	assert.ErrorIs(t, err, ErrSignInFailed)

	_, err = gate.SignIn(context.Background(), Session{UserID: "google:1", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrSignInFailed)

	_, ok := gate.Current("google:1")
	assert.False(t, ok)
}

func TestSignInFailsWhenProfileCannotBeRecorded(t *testing.T) {
	gate := NewGate(failingProfiles{})
	_, err := gate.SignIn(context.Background(), Session{UserID: "google:1"})
	assert.ErrorIs(t, err, ErrSignInFailed)
}

func TestSubscribeFiresImmediatelyThenOnChange(t *testing.T) {
	gate := NewGate(nil)
	ctx := context.Background()

	var seen []*Session
	unsubscribe := gate.Subscribe("google:1", func(s *Session) { seen = append(seen, s) })

	_, err := gate.SignIn(ctx, Session{UserID: "google:1", DisplayName: "Ada"})
	require.NoError(t, err)
	gate.SignOut(ctx, "google:1")

	require.Len(t, seen, 3)
	assert.Nil(t, seen[0])
	require.NotNil(t, seen[1])
	assert.Equal(t, "Ada", seen[1].DisplayName)
	assert.Nil(t, seen[2])

	unsubscribe()
	unsubscribe()
	_, err = gate.SignIn(ctx, Session{UserID: "google:1"})
	require.NoError(t, err)
	assert.Len(t, seen, 3)
	assert.Zero(t, gate.subscriberCount("google:1"))
}

func TestSubscribeIsPerUser(t *testing.T) {
	gate := NewGate(nil)
	calls := 0
	defer gate.Subscribe("google:2", func(*Session) { calls++ })()

	_, err := gate.SignIn(context.Background(), Session{UserID: "google:1"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSignOutRunsHooksBeforeListeners(t *testing.T) {
	gate := NewGate(nil)
	ctx := context.Background()
	var order []string
	gate.OnSignOut(func(_ context.Context, userID string) { order = append(order, "hook:"+userID) })

	_, err := gate.SignIn(ctx, Session{UserID: "google:1"})
	require.NoError(t, err)
	defer gate.Subscribe("google:1", func(s *Session) {
		if s == nil {
			order = append(order, "listener:nil")
		}
	})()

	gate.SignOut(ctx, "google:1")
	assert.Equal(t, []string{"hook:google:1", "listener:nil"}, order)

	gate.SignOut(ctx, "google:1")
	assert.Len(t, order, 2, "signing out twice must not re-fire")
}

func TestSignInReplacesPreviousSession(t *testing.T) {
	gate := NewGate(nil)
	first, err := gate.SignIn(context.Background(), Session{UserID: "google:1"})
	require.NoError(t, err)
	second, err := gate.SignIn(context.Background(), Session{UserID: "google:1"})
	require.NoError(t, err)

	assert.False(t, gate.Active("google:1", first.ID))
	assert.True(t, gate.Active("google:1", second.ID))
}
