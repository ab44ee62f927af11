package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"pulse/internal/models"
	"pulse/internal/pagination"
	"pulse/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectFeed(t *testing.T, repo PostRepository, q FeedQuery) []*models.Post {
	t.Helper()
	var all []*models.Post
	for i := 0; i < 50; i++ {
		rows, err := repo.List(context.Background(), q)
		require.NoError(t, err)
		page, hasMore := pagination.Trim(rows, q.Limit-1)
		all = append(all, page...)
		if !hasMore {
			return all
		}
		last := page[len(page)-1]
		q.Cursor = pagination.After(last.CreatedAt, last.ID)
	}
	t.Fatal("feed did not terminate")
	return nil
}

func TestPostRepository_ListWalksFeedExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	author := testutil.CreateUser(t, db, "ada")
	created := testutil.CreatePosts(t, db, author.ID, 45, base)

	got := collectFeed(t, repo, FeedQuery{Limit: 21})

	require.Len(t, got, 45)
	seen := map[string]bool{}
	for i, p := range got {
		assert.False(t, seen[p.ID], "post %s returned twice", p.ID)
		seen[p.ID] = true
		// newest first
		assert.Equal(t, created[44-i].ID, p.ID)
		assert.Equal(t, "ada", p.User.Username)
	}
}

func TestPostRepository_ListBreaksTimestampTiesByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	author := testutil.CreateUser(t, db, "ada")
	for i := 0; i < 5; i++ {
		testutil.CreatePostAt(t, db, author.ID, "same instant", base)
	}

	got := collectFeed(t, repo, FeedQuery{Limit: 3})

	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i-1].ID, got[i].ID)
	}
}

func TestPostRepository_ListFiltersAuthors(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ada := testutil.CreateUser(t, db, "ada")
	bob := testutil.CreateUser(t, db, "bob")
	testutil.CreatePosts(t, db, ada.ID, 3, base)
	testutil.CreatePosts(t, db, bob.ID, 2, base.Add(time.Hour))

	posts, err := repo.List(context.Background(), FeedQuery{AuthorIDs: []string{bob.ID}, Limit: 10})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, bob.ID, p.UserID)
	}
}

func TestPostRepository_GetByIDCountsAndViewerState(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	engagement := NewEngagementRepository(db)
	ctx := context.Background()

	ada := testutil.CreateUser(t, db, "ada")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePostAt(t, db, ada.ID, "hello", base)
	testutil.CreateCommentAt(t, db, post.ID, bob.ID, "hi", base.Add(time.Minute))

	_, err := engagement.ToggleLike(ctx, bob.ID, LikeTarget{PostID: post.ID})
	require.NoError(t, err)
	_, err = engagement.RecordView(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	_, err = engagement.ToggleBookmark(ctx, bob.ID, post.ID)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.LikesCount)
	assert.Equal(t, int64(1), got.CommentsCount)
	assert.Equal(t, int64(1), got.ViewsCount)
	assert.Equal(t, int64(1), got.BookmarksCount)
	assert.Equal(t, int64(0), got.RepostsCount)
	require.NotNil(t, got.LikedByViewer)
	assert.True(t, *got.LikedByViewer)

	asAuthor, err := repo.GetByID(ctx, post.ID, ada.ID)
	require.NoError(t, err)
	require.NotNil(t, asAuthor.LikedByViewer)
	assert.False(t, *asAuthor.LikedByViewer)

	anonymous, err := repo.GetByID(ctx, post.ID, "")
	require.NoError(t, err)
	assert.Nil(t, anonymous.LikedByViewer)
}

func TestPostRepository_GetByIDNotFound(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing", "")
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, err.(*models.AppError).Code)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	engagement := NewEngagementRepository(db)
	ctx := context.Background()

	ada := testutil.CreateUser(t, db, "ada")
	post := testutil.CreatePostAt(t, db, ada.ID, "doomed", base)
	comment := testutil.CreateCommentAt(t, db, post.ID, ada.ID, "reply", base.Add(time.Second))
	_, err := engagement.ToggleLike(ctx, ada.ID, LikeTarget{PostID: post.ID})
	require.NoError(t, err)
	_, err = engagement.ToggleLike(ctx, ada.ID, LikeTarget{CommentID: comment.ID})
	require.NoError(t, err)
	_, err = engagement.ToggleRepost(ctx, ada.ID, post.ID)
	require.NoError(t, err)
	_, err = engagement.RecordView(ctx, ada.ID, post.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, post.ID))

	for _, m := range []interface{}{&models.Post{}, &models.Comment{}, &models.Like{}, &models.View{}, &models.Repost{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T rows left behind", m)
	}

	err = repo.Delete(ctx, post.ID)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, err.(*models.AppError).Code)
}

func TestPostRepository_DeleteLocksPostAndCommentsFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "posts" WHERE id = $1 FOR UPDATE`)).
		WithArgs("post-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("post-1"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "comments" WHERE post_id = $1 FOR UPDATE`)).
		WithArgs("post-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "likes" WHERE post_id = $1`)).
		WithArgs("post-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	for _, table := range []string{"comments", "views", "bookmarks", "reposts"} {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "` + table + `" WHERE post_id = $1`)).
			WithArgs("post-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE id = $1`)).
		WithArgs("post-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "post-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
