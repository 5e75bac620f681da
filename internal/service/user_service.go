package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/repository"
	"kizuki-server/internal/session"
)

type UserService struct {
	userRepo repository.UserRepository
	gate     session.Gate
}

func NewUserService(userRepo repository.UserRepository, gate session.Gate) *UserService {
	return &UserService{
		userRepo: userRepo,
		gate:     gate,
	}
}

func (s *UserService) Me(ctx context.Context) (*domain.User, error) {
	identity, err := currentUser(ctx, s.gate)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	user.Password = ""
	return user, nil
}

func (s *UserService) UpdateDisplayName(ctx context.Context, displayName string) (*domain.User, error) {
	identity, err := currentUser(ctx, s.gate)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	user.DisplayName = displayName
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	user.Password = ""
	return user, nil
}
