package repository

import (
	"context"
	"errors"
	"log/slog"

	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/pagination"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id, viewerID string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID, viewerID string, cursor *pagination.Cursor, limit int) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) error
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", slog.String("comment_id", comment.ID), slog.String("post_id", comment.PostID))
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Comment, error) {
	var comment models.Comment
	err := applyCommentDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("comments.id = ?", id).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	comment.ExposeViewerState(viewerID)
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID, viewerID string, cursor *pagination.Cursor, limit int) ([]*models.Comment, error) {
	tx := applyCommentDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("comments.post_id = ?", postID)
	tx = applyCursor(tx, "comments", cursor)

	var comments []*models.Comment
	err := tx.
		Order("comments.created_at DESC").
		Order("comments.id DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, c := range comments {
		c.ExposeViewerState(viewerID)
	}
	return comments, nil
}

// UpdateContent stores new content together with the edited marker.
func (r *commentRepository) UpdateContent(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Model(&models.Comment{ID: comment.ID}).Updates(map[string]interface{}{
		"content":   comment.Content,
		"edited":    comment.Edited,
		"edited_at": comment.EditedAt,
	}).Error
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "update", slog.String("comment_id", comment.ID))
	return nil
}

// Delete removes the comment and its likes.
func (r *commentRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockForDelete(tx, &models.Comment{}, "id = ?", id); err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Comment{}).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "delete", slog.String("comment_id", id))
	return nil
}

func applyCommentDetails(db *gorm.DB, viewerID string) *gorm.DB {
	selectQuery := "comments.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.comment_id = comments.id) AS likes_count"
	if viewerID != "" {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.comment_id = comments.id AND likes.user_id = ?) AS liked", viewerID)
	}
	return db.Select(selectQuery + ", false AS liked")
}
