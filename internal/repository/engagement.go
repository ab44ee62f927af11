package repository

import (
	"context"
	"errors"

	"pulse/internal/database"
	"pulse/internal/models"
	"pulse/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeTarget names exactly one liked entity.
type LikeTarget struct {
	PostID    string
	CommentID string
}

// Validate enforces the exactly-one-target rule.
func (t LikeTarget) Validate() error {
	switch {
	case t.PostID == "" && t.CommentID == "":
		return models.NewValidationError("postId or commentId is required")
	case t.PostID != "" && t.CommentID != "":
		return models.NewValidationError("provide either postId or commentId, not both")
	}
	return nil
}

func (t LikeTarget) column() (string, string) {
	if t.PostID != "" {
		return "post_id", t.PostID
	}
	return "comment_id", t.CommentID
}

// ToggleResult is the state of a (user, target) relation after a toggle.
type ToggleResult struct {
	Active bool
	Count  int64
}

// EngagementRepository flips likes, bookmarks and reposts and records views.
// Every write is a single conditional statement guarded by a unique index, so
// concurrent requests from the same user cannot double-insert.
type EngagementRepository interface {
	ToggleLike(ctx context.Context, userID string, target LikeTarget) (ToggleResult, error)
	ToggleBookmark(ctx context.Context, userID, postID string) (ToggleResult, error)
	ToggleRepost(ctx context.Context, userID, postID string) (ToggleResult, error)
	RecordView(ctx context.Context, userID, postID string) (int64, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// toggleSpec describes one unique (user_id, column) relation table.
type toggleSpec struct {
	kind   string
	model  interface{}
	column string
	row    func() interface{}
	// target is the engaged entity, locked for the length of the write
	target       interface{}
	targetEntity string
}

// lockTarget takes a shared lock on the engaged row inside tx. A concurrent
// delete, which locks the same row for update, either commits first and the
// write sees not found, or waits until the write commits and then removes it
// with the rest of the dependents. sqlite drops the locking clause and
// serialises writers instead.
func lockTarget(tx *gorm.DB, model interface{}, entity, id string) error {
	var ids []string
	if err := tx.Model(model).Clauses(clause.Locking{Strength: "SHARE"}).Where("id = ?", id).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return models.NewNotFoundError(entity, id)
	}
	return nil
}

// lockForDelete takes update locks on the rows matched by query and returns
// their ids.
func lockForDelete(tx *gorm.DB, model interface{}, query string, args ...interface{}) ([]string, error) {
	var ids []string
	err := tx.Model(model).Clauses(clause.Locking{Strength: "UPDATE"}).Where(query, args...).Pluck("id", &ids).Error
	return ids, err
}

func (r *engagementRepository) ToggleLike(ctx context.Context, userID string, target LikeTarget) (ToggleResult, error) {
	if err := target.Validate(); err != nil {
		return ToggleResult{}, err
	}
	column, id := target.column()
	var targetModel interface{} = &models.Post{}
	entity := "Post"
	if column == "comment_id" {
		targetModel, entity = &models.Comment{}, "Comment"
	}
	return r.toggle(ctx, toggleSpec{
		kind:         "like_" + column,
		model:        &models.Like{},
		column:       column,
		target:       targetModel,
		targetEntity: entity,
		row: func() interface{} {
			like := &models.Like{UserID: userID}
			if column == "post_id" {
				like.PostID = &id
			} else {
				like.CommentID = &id
			}
			return like
		},
	}, userID, id)
}

func (r *engagementRepository) ToggleBookmark(ctx context.Context, userID, postID string) (ToggleResult, error) {
	return r.toggle(ctx, toggleSpec{
		kind:         "bookmark",
		model:        &models.Bookmark{},
		column:       "post_id",
		row:          func() interface{} { return &models.Bookmark{UserID: userID, PostID: postID} },
		target:       &models.Post{},
		targetEntity: "Post",
	}, userID, postID)
}

func (r *engagementRepository) ToggleRepost(ctx context.Context, userID, postID string) (ToggleResult, error) {
	return r.toggle(ctx, toggleSpec{
		kind:         "repost",
		model:        &models.Repost{},
		column:       "post_id",
		row:          func() interface{} { return &models.Repost{UserID: userID, PostID: postID} },
		target:       &models.Post{},
		targetEntity: "Post",
	}, userID, postID)
}

// toggle deletes the relation if it exists and inserts it otherwise. The
// delete is conditional and the insert ignores conflicts, so a concurrent
// insert that wins the race simply leaves the relation active.
func (r *engagementRepository) toggle(ctx context.Context, spec toggleSpec, userID, targetID string) (ToggleResult, error) {
	var active bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTarget(tx, spec.target, spec.targetEntity, targetID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND "+spec.column+" = ?", userID, targetID).Delete(spec.model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			active = false
			return nil
		}
		active = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(spec.row()).Error
	})
	if database.IsUniqueViolation(err) {
		observability.UniqueRacesAbsorbed.WithLabelValues(spec.kind).Inc()
		active, err = true, nil
	}
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return ToggleResult{}, appErr
		}
		return ToggleResult{}, models.NewInternalError(err)
	}

	count, err := r.count(ctx, spec.model, spec.column, targetID)
	if err != nil {
		return ToggleResult{}, err
	}

	state := "off"
	if active {
		state = "on"
	}
	observability.EngagementToggles.WithLabelValues(spec.kind, state).Inc()
	return ToggleResult{Active: active, Count: count}, nil
}

// RecordView inserts the (user, post) view once. Repeats and lost races are
// not errors; the current count is returned either way.
func (r *engagementRepository) RecordView(ctx context.Context, userID, postID string) (int64, error) {
	var inserted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTarget(tx, &models.Post{}, "Post", postID); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.View{UserID: userID, PostID: postID})
		inserted = res.RowsAffected > 0
		return res.Error
	})

	var appErr *models.AppError
	switch {
	case err == nil && inserted:
		observability.ViewsRecorded.WithLabelValues("new").Inc()
	case err == nil || database.IsUniqueViolation(err):
		if err != nil {
			observability.UniqueRacesAbsorbed.WithLabelValues("view").Inc()
		}
		observability.ViewsRecorded.WithLabelValues("duplicate").Inc()
	case errors.As(err, &appErr):
		return 0, appErr
	default:
		return 0, models.NewInternalError(err)
	}

	return r.count(ctx, &models.View{}, "post_id", postID)
}

func (r *engagementRepository) count(ctx context.Context, model interface{}, column, targetID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where(column+" = ?", targetID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
