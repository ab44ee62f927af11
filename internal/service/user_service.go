package service

import (
	"context"
	"strings"

	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// UpdateProfileInput carries the fields to change; nil leaves a field as is.
type UpdateProfileInput struct {
	UserID   string
	Name     *string
	Username *string
	Bio      *string
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo}
}

// GetProfile loads a user with counts. IsFollowing is filled for a viewer
// looking at someone else.
func (s *UserService) GetProfile(ctx context.Context, id, viewerID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewerID != "" && viewerID != id {
		following, err := s.followRepo.IsFollowing(ctx, viewerID, id)
		if err != nil {
			return nil, err
		}
		user.IsFollowing = &following
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	fields := map[string]interface{}{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validation.ValidateName(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["name"] = name
	}
	if in.Username != nil {
		username := validation.NormalizeUsername(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["username"] = username
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if err := validation.ValidateBio(bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["bio"] = bio
	}
	if len(fields) == 0 {
		return nil, models.NewValidationError("Nothing to update")
	}

	if err := s.userRepo.Update(ctx, in.UserID, fields); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}
