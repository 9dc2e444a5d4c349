package service

import (
	"context"

	"github.com/google/uuid"

	"ems/internal/model"
	"ems/internal/repository"
)

const userResource = "User"

// UserService exposes account lookups for signed-in callers.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService on the user repository.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

// GetUser returns the account with id, or NotFound when it no longer exists.
func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, userResource, "get user")
	}
	return user, nil
}
