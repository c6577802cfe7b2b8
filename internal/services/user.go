package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"giftr/internal/domain"
)

type userService struct {
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

func NewUserService(userRepo domain.UserRepository, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

// SyncFromProvider mirrors a provider user locally. Matching order: by
// external ID first, then by email so invitation placeholders are claimed
// when the invitee signs up.
func (s *userService) SyncFromProvider(ctx context.Context, externalID, email, name string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	if externalID == "" || email == "" {
		return nil, fmt.Errorf("%w: external id and email are required", domain.ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email
	}

	existing, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err == nil {
		existing.Email = email
		existing.Name = name
		existing.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user by external id: %w", err)
	}

	if placeholder, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		placeholder.ExternalID = externalID
		placeholder.Email = email
		placeholder.Name = name
		placeholder.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, placeholder); err != nil {
			return nil, fmt.Errorf("claim placeholder user: %w", err)
		}
		return placeholder, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(externalID, email, name, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *userService) RemoveFromProvider(ctx context.Context, externalID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.userRepo.DeleteByExternalID(ctx, externalID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Already gone; deletion webhooks may be delivered twice.
			return nil
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *userService) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user by external id: %w", err)
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
