package service

import (
	"context"

	"pulse/internal/models"
	"pulse/internal/repository"
)

// FollowService provides follow graph business logic.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// FollowResult is the state after a follow toggle; counts belong to the
// followed user.
type FollowResult struct {
	IsFollowing    bool  `json:"isFollowing"`
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// ToggleFollow follows targetID, or unfollows when already following.
func (s *FollowService) ToggleFollow(ctx context.Context, userID, targetID string) (*FollowResult, error) {
	if userID == targetID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	following, err := s.followRepo.Toggle(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	followers, followingCount, err := s.followRepo.Counts(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{
		IsFollowing:    following,
		FollowersCount: followers,
		FollowingCount: followingCount,
	}, nil
}

// ListFollowing returns the users userID follows.
func (s *FollowService) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, userID, limit, offset)
}

// ListFollowers returns the users following userID.
func (s *FollowService) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, userID, limit, offset)
}
