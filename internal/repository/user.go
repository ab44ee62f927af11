package repository

import (
	"context"
	"errors"
	"log/slog"

	"pulse/internal/cache"
	"pulse/internal/database"
	"pulse/internal/models"
	"pulse/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

// GetByID loads the profile row through the cache and always recomputes the
// follower and following counts.
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var counts struct {
		FollowersCount int64
		FollowingCount int64
	}
	if err := applyUserDetails(r.db.WithContext(ctx).Model(&models.User{})).
		Where("users.id = ?", id).
		Scan(&counts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	user.FollowersCount = counts.FollowersCount
	user.FollowingCount = counts.FollowingCount
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewConflictError("username or email already taken")
		}
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", slog.String("user_id", user.ID))
	return nil
}

// Update writes the given columns and drops the cached row.
func (r *userRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return models.NewConflictError("username already taken")
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	r.log.LogWrite(ctx, "update", slog.String("user_id", id))
	return nil
}

// applyUserDetails selects the profile columns plus follow counts.
func applyUserDetails(db *gorm.DB) *gorm.DB {
	return db.Select("users.*, " +
		"(SELECT COUNT(*) FROM follows f WHERE f.followee_id = users.id) AS followers_count, " +
		"(SELECT COUNT(*) FROM follows f WHERE f.follower_id = users.id) AS following_count")
}
