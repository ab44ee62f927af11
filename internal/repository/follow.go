package repository

import (
	"context"

	"pulse/internal/database"
	"pulse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository manages the directed follow graph.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followeeID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	FolloweeIDs(ctx context.Context, followerID string) ([]string, error)
	Counts(ctx context.Context, userID string) (followers, following int64, err error)
	ListFollowing(ctx context.Context, userID string, limit, offset int) ([]models.User, error)
	ListFollowers(ctx context.Context, userID string, limit, offset int) ([]models.User, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Toggle follows when the edge is absent and unfollows when present, using
// the same conditional-delete-then-insert-ignore shape as likes.
func (r *followRepository) Toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		following = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
	})
	if database.IsUniqueViolation(err) {
		following, err = true, nil
	}
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return following, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *followRepository) FolloweeIDs(ctx context.Context, followerID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) Counts(ctx context.Context, userID string) (int64, int64, error) {
	var row struct {
		Followers int64
		Following int64
	}
	err := r.db.WithContext(ctx).Raw(
		`SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = ?) AS followers,
			(SELECT COUNT(*) FROM follows WHERE follower_id = ?) AS following`,
		userID, userID,
	).Scan(&row).Error
	if err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return row.Followers, row.Following, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]models.User, error) {
	return r.listEdge(ctx, "follows.followee_id", "follows.follower_id", userID, limit, offset)
}

func (r *followRepository) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]models.User, error) {
	return r.listEdge(ctx, "follows.follower_id", "follows.followee_id", userID, limit, offset)
}

func (r *followRepository) listEdge(ctx context.Context, joinColumn, filterColumn, userID string, limit, offset int) ([]models.User, error) {
	users := []models.User{}
	err := applyUserDetails(r.db.WithContext(ctx)).
		Joins("JOIN follows ON "+joinColumn+" = users.id").
		Where(filterColumn+" = ?", userID).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
