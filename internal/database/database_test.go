package database

import (
	"errors"
	"fmt"
	"testing"

	"pulse/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection reset")))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert view: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
}

func TestMigrate_EnforcesEngagementUniqueness(t *testing.T) {
	db := openSQLite(t)

	user := models.User{Username: "ada"}
	require.NoError(t, db.Create(&user).Error)
	post := models.Post{UserID: user.ID, Content: "hello"}
	require.NoError(t, db.Create(&post).Error)

	require.NoError(t, db.Create(&models.View{UserID: user.ID, PostID: post.ID}).Error)
	err := db.Create(&models.View{UserID: user.ID, PostID: post.ID}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	require.NoError(t, db.Create(&models.Like{UserID: user.ID, PostID: &post.ID}).Error)
	err = db.Create(&models.Like{UserID: user.ID, PostID: &post.ID}).Error
	assert.True(t, IsUniqueViolation(err))

	require.NoError(t, db.Create(&models.Follow{FollowerID: user.ID, FolloweeID: "someone"}).Error)
	err = db.Create(&models.Follow{FollowerID: user.ID, FolloweeID: "someone"}).Error
	assert.True(t, IsUniqueViolation(err))
}

func TestMigrate_LikeNeedsExactlyOneTarget(t *testing.T) {
	db := openSQLite(t)

	neither := db.Create(&models.Like{UserID: "u1"}).Error
	assert.Error(t, neither)

	p, c := "p1", "c1"
	both := db.Create(&models.Like{UserID: "u1", PostID: &p, CommentID: &c}).Error
	assert.Error(t, both)
}

func TestModelHooks_AssignTimeOrderedIDs(t *testing.T) {
	db := openSQLite(t)

	first := models.User{Username: "first"}
	second := models.User{Username: "second"}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	assert.Len(t, first.ID, 36)
	assert.Equal(t, models.BadgeNone, first.Badge)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "UTC", first.CreatedAt.Location().String())
}
