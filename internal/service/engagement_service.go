package service

import (
	"context"

	"pulse/internal/repository"
)

// EngagementService checks targets exist before toggling relations on them.
type EngagementService struct {
	engagementRepo repository.EngagementRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
}

// LikeInput names the liking user and exactly one target.
type LikeInput struct {
	UserID    string
	PostID    string
	CommentID string
}

func NewEngagementService(
	engagementRepo repository.EngagementRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
) *EngagementService {
	return &EngagementService{
		engagementRepo: engagementRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
	}
}

func (s *EngagementService) ToggleLike(ctx context.Context, in LikeInput) (repository.ToggleResult, error) {
	target := repository.LikeTarget{PostID: in.PostID, CommentID: in.CommentID}
	if err := target.Validate(); err != nil {
		return repository.ToggleResult{}, err
	}
	if target.PostID != "" {
		if _, err := s.postRepo.GetByID(ctx, target.PostID, ""); err != nil {
			return repository.ToggleResult{}, err
		}
	} else if _, err := s.commentRepo.GetByID(ctx, target.CommentID, ""); err != nil {
		return repository.ToggleResult{}, err
	}
	return s.engagementRepo.ToggleLike(ctx, in.UserID, target)
}

// RecordView counts the viewer once per post and returns the view count.
func (s *EngagementService) RecordView(ctx context.Context, userID, postID string) (int64, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, ""); err != nil {
		return 0, err
	}
	return s.engagementRepo.RecordView(ctx, userID, postID)
}

func (s *EngagementService) ToggleBookmark(ctx context.Context, userID, postID string) (repository.ToggleResult, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, ""); err != nil {
		return repository.ToggleResult{}, err
	}
	return s.engagementRepo.ToggleBookmark(ctx, userID, postID)
}

func (s *EngagementService) ToggleRepost(ctx context.Context, userID, postID string) (repository.ToggleResult, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, ""); err != nil {
		return repository.ToggleResult{}, err
	}
	return s.engagementRepo.ToggleRepost(ctx, userID, postID)
}
