package users

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRecordSignInKeepsCreatedAt(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.RecordSignIn(ctx, User{ID: "google:1", DisplayName: "Ada"}); err != nil {
		t.Fatalf("first sign in: %v", err)
	}
	now = now.Add(time.Hour)
	if err := svc.RecordSignIn(ctx, User{ID: "google:1", DisplayName: "Ada L."}); err != nil {
		t.Fatalf("second sign in: %v", err)
	}

	user, err := svc.GetByID(ctx, "google:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.DisplayName != "Ada L." {
		t.Fatalf("expected updated name, got %q", user.DisplayName)
	}
	if !user.LastLoginAt.After(user.CreatedAt) {
		t.Fatalf("expected last login after created: %+v", user)
	}
}

func TestRecordSignInRequiresID(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.RecordSignIn(context.Background(), User{ID: " "}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected error for blank id")
	}
	if _, err := svc.GetByID(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
