package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"pulse/internal/models"
	"pulse/internal/pagination"
	"pulse/internal/repository"
)

const maxCommentLen = 2000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	now         func() time.Time
}

type CreateCommentInput struct {
	UserID  string
	PostID  string
	Content string
}

type ListCommentsInput struct {
	PostID    string
	ViewerID  string
	PageToken string
	Limit     int
}

// CommentPage is one page of top-level comments, newest first.
type CommentPage struct {
	Comments      []*models.Comment `json:"comments"`
	NextPageToken *string           `json:"nextPageToken"`
}

type UpdateCommentInput struct {
	UserID    string
	CommentID string
	Content   string
}

type DeleteCommentInput struct {
	UserID    string
	CommentID string
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content, err := validateCommentContent(in.Content)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID, ""); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID, in.UserID)
}

func (s *CommentService) ListComments(ctx context.Context, in ListCommentsInput) (*CommentPage, error) {
	cursor, err := pagination.Decode(in.PageToken)
	if err != nil {
		return nil, models.NewValidationError("invalid pageToken")
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID, ""); err != nil {
		return nil, err
	}
	limit := pagination.ClampLimit(in.Limit)

	rows, err := s.commentRepo.ListByPost(ctx, in.PostID, in.ViewerID, cursor, limit+1)
	if err != nil {
		return nil, err
	}
	comments, hasMore := pagination.Trim(rows, limit)
	if comments == nil {
		comments = []*models.Comment{}
	}

	page := &CommentPage{Comments: comments}
	if hasMore {
		last := comments[len(comments)-1]
		page.NextPageToken = pagination.After(last.CreatedAt, last.ID).Token()
	}
	return page, nil
}

// UpdateComment replaces the content of the caller's own comment and marks
// it edited.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID, in.UserID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	content, err := validateCommentContent(in.Content)
	if err != nil {
		return nil, err
	}

	editedAt := s.now()
	comment.Content = content
	comment.Edited = true
	comment.EditedAt = &editedAt
	if err := s.commentRepo.UpdateContent(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID, in.UserID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID, "")
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return nil, err
	}
	return comment, nil
}

func validateCommentContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "", models.NewValidationError("Comment too long (max 2000 characters)")
	}
	return content, nil
}
