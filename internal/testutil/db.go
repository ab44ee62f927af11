// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pulse/internal/database"
	"pulse/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// NewDB returns a migrated in-memory sqlite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the shared memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with the given username.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Name: strings.ToUpper(username[:1]) + username[1:], Username: username}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePostAt inserts a post authored by userID with an explicit timestamp.
func CreatePostAt(t testing.TB, db *gorm.DB, userID, content string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: userID, Content: content, CreatedAt: at.UTC(), UpdatedAt: at.UTC()}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreatePosts inserts n posts one second apart, oldest first, and returns
// them in insertion order.
func CreatePosts(t testing.TB, db *gorm.DB, userID string, n int, start time.Time) []*models.Post {
	t.Helper()
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, CreatePostAt(t, db, userID, fmt.Sprintf("post %d", i), start.Add(time.Duration(i)*time.Second)))
	}
	return posts
}

// CreateCommentAt inserts a comment with an explicit timestamp.
func CreateCommentAt(t testing.TB, db *gorm.DB, postID, userID, content string, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: postID, UserID: userID, Content: content, CreatedAt: at.UTC(), UpdatedAt: at.UTC()}
	require.NoError(t, db.Create(c).Error)
	return c
}
