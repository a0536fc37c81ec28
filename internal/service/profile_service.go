package service

import (
	"context"
	"strings"
	"time"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/repository"
	"github.com/google/uuid"
)

type ProfileService struct {
	userRepo repository.UserRepository
}

func NewProfileService(userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// ProfileInput holds the fields to change. Nil fields are left alone and an
// empty username clears it.
type ProfileInput struct {
	Username    *string
	DisplayName *string
	Bio         *string
	ShowEmail   *bool
	ShowValues  *bool
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, input ProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			user.Username = nil
		} else {
			user.Username = &username
		}
	}
	if input.DisplayName != nil {
		user.DisplayName = sanitizeText(*input.DisplayName)
	}
	if input.Bio != nil {
		user.Bio = sanitizeText(*input.Bio)
	}
	if input.ShowEmail != nil {
		user.ShowEmail = *input.ShowEmail
	}
	if input.ShowValues != nil {
		user.ShowValues = *input.ShowValues
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
