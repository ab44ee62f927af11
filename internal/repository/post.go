// Package repository provides data access layer implementations for the application.
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

// FeedQuery selects one window of posts ordered newest first.
type FeedQuery struct {
	ViewerID string
	// AuthorIDs restricts the feed to these authors when non-nil.
	AuthorIDs []string
	Cursor    *pagination.Cursor
	// Limit is the number of rows fetched; callers ask for one extra row to
	// detect the end of the stream.
	Limit int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID string) (*models.Post, error)
	List(ctx context.Context, q FeedQuery) ([]*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", slog.String("post_id", post.ID))
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Post, error) {
	var post models.Post
	err := applyPostDetails(r.db.WithContext(ctx), viewerID).
		Preload("User").
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	post.ExposeViewerState(viewerID)
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, q FeedQuery) ([]*models.Post, error) {
	tx := applyPostDetails(r.db.WithContext(ctx), q.ViewerID).Preload("User")
	if q.AuthorIDs != nil {
		tx = tx.Where("posts.user_id IN ?", q.AuthorIDs)
	}
	tx = applyCursor(tx, "posts", q.Cursor)

	var posts []*models.Post
	err := tx.
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(q.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range posts {
		p.ExposeViewerState(q.ViewerID)
	}
	return posts, nil
}

// Delete removes the post and every row that depends on it.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the post and its comments first so in-flight likes and views
		// land before the dependents are removed, or find nothing to engage with
		postIDs, err := lockForDelete(tx, &models.Post{}, "id = ?", id)
		if err != nil {
			return err
		}
		if len(postIDs) == 0 {
			return models.NewNotFoundError("Post", id)
		}
		commentIDs, err := lockForDelete(tx, &models.Comment{}, "post_id = ?", id)
		if err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.Like{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		for _, dep := range []interface{}{&models.Comment{}, &models.View{}, &models.Bookmark{}, &models.Repost{}} {
			if err := tx.Where("post_id = ?", id).Delete(dep).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "delete", slog.String("post_id", id))
	return nil
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func applyPostDetails(db *gorm.DB, viewerID string) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
		"(SELECT COUNT(*) FROM views WHERE views.post_id = posts.id) AS views_count, " +
		"(SELECT COUNT(*) FROM reposts WHERE reposts.post_id = posts.id) AS reposts_count, " +
		"(SELECT COUNT(*) FROM bookmarks WHERE bookmarks.post_id = posts.id) AS bookmarks_count"

	if viewerID != "" {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked", viewerID)
	}
	return db.Select(selectQuery + ", false AS liked")
}

// applyCursor keeps rows strictly after c in (created_at DESC, id DESC) order.
func applyCursor(db *gorm.DB, table string, c *pagination.Cursor) *gorm.DB {
	if c == nil {
		return db
	}
	return db.Where(
		"("+table+".created_at < ? OR ("+table+".created_at = ? AND "+table+".id < ?))",
		c.CreatedAt, c.CreatedAt, c.ID,
	)
}
