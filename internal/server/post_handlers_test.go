package server

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"pulse/internal/models"
	"pulse/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPosts_ClampsLimitToHundred(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "ada")
	testutil.CreatePosts(t, env.db, author.ID, 120, base)

	resp := env.do(http.MethodGet, "/api/posts?limit=500", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeJSON[feedBody](t, resp)
	assert.Len(t, body.Posts, 100)
	assert.NotNil(t, body.NextPageToken)
}

func TestGetPosts_ExactlyOnePageEndsStream(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "ada")
	testutil.CreatePosts(t, env.db, author.ID, 20, base)

	resp := env.do(http.MethodGet, "/api/posts?limit=20", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeJSON[feedBody](t, resp)
	assert.Len(t, body.Posts, 20)
	assert.Nil(t, body.NextPageToken)
}

func TestGetPosts_WalksEveryPostOnceNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "ada")
	created := testutil.CreatePosts(t, env.db, author.ID, 45, base)

	var got []string
	token := ""
	for pages := 0; pages < 10; pages++ {
		path := "/api/posts?limit=20"
		if token != "" {
			path += "&pageToken=" + url.QueryEscape(token)
		}
		resp := env.do(http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeJSON[feedBody](t, resp)
		for _, p := range body.Posts {
			got = append(got, p.ID)
		}
		if body.NextPageToken == nil {
			break
		}
		token = *body.NextPageToken
	}

	require.Len(t, got, 45)
	for i, id := range got {
		assert.Equal(t, created[44-i].ID, id, "position %d", i)
	}
}

func TestGetPosts_DefaultLimitAndBadInput(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "ada")
	testutil.CreatePosts(t, env.db, author.ID, 25, base)

	for _, limit := range []string{"", "abc", "0", "-3"} {
		resp := env.do(http.MethodGet, "/api/posts?limit="+limit, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, "limit=%q", limit)
		body := decodeJSON[feedBody](t, resp)
		assert.Len(t, body.Posts, 20, "limit=%q", limit)
	}

	resp := env.do(http.MethodGet, "/api/posts?pageToken=not-a-cursor", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPosts_FollowingFeed(t *testing.T) {
	env := newTestEnv(t)
	viewer := testutil.CreateUser(t, env.db, "viewer")
	followed := testutil.CreateUser(t, env.db, "followed")
	stranger := testutil.CreateUser(t, env.db, "stranger")
	testutil.CreatePosts(t, env.db, followed.ID, 3, base)
	testutil.CreatePosts(t, env.db, stranger.ID, 3, base.Add(time.Hour))

	t.Run("follows nobody", func(t *testing.T) {
		resp := env.do(http.MethodGet, "/api/posts?following=true", nil, env.token(viewer.ID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeJSON[map[string]interface{}](t, resp)
		assert.Equal(t, []interface{}{}, body["posts"])
		assert.Contains(t, body, "nextPageToken")
		assert.Nil(t, body["nextPageToken"])
	})

	t.Run("only followed authors", func(t *testing.T) {
		require.NoError(t, env.db.Create(&models.Follow{FollowerID: viewer.ID, FolloweeID: followed.ID}).Error)

		resp := env.do(http.MethodGet, "/api/posts?following=true", nil, env.token(viewer.ID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeJSON[feedBody](t, resp)
		require.Len(t, body.Posts, 3)
		for _, p := range body.Posts {
			assert.Equal(t, followed.ID, p.UserID)
		}
	})

	t.Run("requires a viewer", func(t *testing.T) {
		resp := env.do(http.MethodGet, "/api/posts?following=true", nil, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetPosts_ViewerState(t *testing.T) {
	env := newTestEnv(t)
	viewer := testutil.CreateUser(t, env.db, "viewer")
	post := testutil.CreatePostAt(t, env.db, viewer.ID, "hello", base)
	require.NoError(t, env.db.Create(&models.Like{UserID: viewer.ID, PostID: &post.ID}).Error)

	anon := decodeJSON[feedBody](t, env.do(http.MethodGet, "/api/posts", nil, ""))
	require.Len(t, anon.Posts, 1)
	assert.Nil(t, anon.Posts[0].LikedByViewer)
	assert.Equal(t, int64(1), anon.Posts[0].LikesCount)

	mine := decodeJSON[feedBody](t, env.do(http.MethodGet, "/api/posts", nil, env.token(viewer.ID)))
	require.Len(t, mine.Posts, 1)
	require.NotNil(t, mine.Posts[0].LikedByViewer)
	assert.True(t, *mine.Posts[0].LikedByViewer)
}

func TestGetPosts_ClaimedUserMustMatchToken(t *testing.T) {
	env := newTestEnv(t)
	viewer := testutil.CreateUser(t, env.db, "viewer")

	resp := env.do(http.MethodGet, "/api/posts?userId="+viewer.ID, nil, env.token(viewer.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/posts?userId=someone-else", nil, env.token(viewer.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/posts?userId="+viewer.ID, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "ada")
	token := env.token(author.ID)

	t.Run("requires auth", func(t *testing.T) {
		resp := env.do(http.MethodPost, "/api/posts", map[string]string{"content": "hi"}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects empty", func(t *testing.T) {
		resp := env.do(http.MethodPost, "/api/posts", map[string]string{"content": "   "}, token)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects foreign media", func(t *testing.T) {
		resp := env.do(http.MethodPost, "/api/posts", map[string]interface{}{
			"mediaUrls": []string{"https://elsewhere.example/cat.png"},
		}, token)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("creates", func(t *testing.T) {
		resp := env.do(http.MethodPost, "/api/posts", map[string]string{"content": "  first post  "}, token)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decodeJSON[struct {
			Post struct {
				ID        string   `json:"id"`
				Content   string   `json:"content"`
				MediaURLs []string `json:"media_url"`
				User      struct {
					Username string `json:"username"`
				} `json:"user"`
			} `json:"post"`
		}](t, resp)
		assert.NotEmpty(t, body.Post.ID)
		assert.Equal(t, "first post", body.Post.Content)
		assert.Equal(t, []string{}, body.Post.MediaURLs)
		assert.Equal(t, "ada", body.Post.User.Username)
	})
}

func TestGetPost(t *testing.T) {
	env := newTestEnv(t)
	author := testutil.CreateUser(t, env.db, "ada")
	post := testutil.CreatePostAt(t, env.db, author.ID, "hello", base)

	resp := env.do(http.MethodGet, "/api/posts/"+post.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeJSON[map[string]map[string]interface{}](t, resp)
	assert.Equal(t, post.ID, body["post"]["id"])

	resp = env.do(http.MethodGet, "/api/posts/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/posts/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeletePost_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := testutil.CreateUser(t, env.db, "owner")
	other := testutil.CreateUser(t, env.db, "other")
	post := testutil.CreatePostAt(t, env.db, owner.ID, "mine", base)
	testutil.CreateCommentAt(t, env.db, post.ID, other.ID, "nice", base.Add(time.Minute))

	resp := env.do(http.MethodDelete, "/api/posts/"+post.ID, nil, env.token(other.ID))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodDelete, "/api/posts/"+post.ID, nil, env.token(owner.ID))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/posts/"+post.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var comments int64
	require.NoError(t, env.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	assert.Zero(t, comments)
}

func TestGetUserPosts(t *testing.T) {
	env := newTestEnv(t)
	ada := testutil.CreateUser(t, env.db, "ada")
	bob := testutil.CreateUser(t, env.db, "bob")
	testutil.CreatePosts(t, env.db, ada.ID, 3, base)
	testutil.CreatePosts(t, env.db, bob.ID, 2, base)

	body := decodeJSON[feedBody](t, env.do(http.MethodGet, "/api/users/"+bob.ID+"/posts", nil, ""))
	require.Len(t, body.Posts, 2)
	for _, p := range body.Posts {
		assert.Equal(t, bob.ID, p.UserID)
	}

	resp := env.do(http.MethodGet, fmt.Sprintf("/api/users/%s/posts", uuid.NewString()), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
