package users

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotConfigured = errors.New("users service not configured")
	ErrInvalidID     = errors.New("user id is required")
)

// Service records and reads sign-in profiles.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// RecordSignIn upserts the profile of a user who just signed in.
func (s *Service) RecordSignIn(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return ErrNotConfigured
	}
	if strings.TrimSpace(user.ID) == "" {
		return ErrInvalidID
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, ErrNotConfigured
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrInvalidID
	}
	return s.Repo.GetByID(ctx, userID)
}
