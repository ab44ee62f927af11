package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pulse/internal/models"
	"pulse/internal/pagination"
	"pulse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, string, string) (*models.Post, error)
	listFn    func(context.Context, repository.FeedQuery) ([]*models.Post, error)
	deleteFn  func(context.Context, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID string) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, q repository.FeedQuery) ([]*models.Post, error) {
	return s.listFn(ctx, q)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = "post-new"
			return nil
		},
		getByIDFn: func(_ context.Context, id, _ string) (*models.Post, error) {
			return &models.Post{ID: id, UserID: "author"}, nil
		},
		listFn:   func(_ context.Context, _ repository.FeedQuery) ([]*models.Post, error) { return nil, nil },
		deleteFn: func(_ context.Context, _ string) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn        func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, string, string) (*models.Comment, error)
	listByPostFn    func(context.Context, string, string, *pagination.Cursor, int) ([]*models.Comment, error)
	updateContentFn func(context.Context, *models.Comment) error
	deleteFn        func(context.Context, string) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id, viewerID string) (*models.Comment, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID, viewerID string, cursor *pagination.Cursor, limit int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, viewerID, cursor, limit)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, c *models.Comment) error {
	return s.updateContentFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

// userRepoStub is an in-memory repository.UserRepository.
type userRepoStub struct {
	users   map[string]*models.User
	updates []map[string]interface{}
	failErr error
}

func newUserRepoStub(users ...*models.User) *userRepoStub {
	s := &userRepoStub{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *userRepoStub) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	cp := *u
	return &cp, nil
}
func (s *userRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("User", username)
}
func (s *userRepoStub) Create(_ context.Context, u *models.User) error {
	s.users[u.ID] = u
	return nil
}
func (s *userRepoStub) Update(_ context.Context, id string, fields map[string]interface{}) error {
	if s.failErr != nil {
		return s.failErr
	}
	u, ok := s.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	s.updates = append(s.updates, fields)
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "username":
			u.Username = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "image":
			u.Image = v.(string)
		case "banner_image":
			u.BannerImage = v.(string)
		}
	}
	return nil
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followees map[string][]string
	toggled   []string
}

func (s *followRepoStub) Toggle(_ context.Context, followerID, followeeID string) (bool, error) {
	s.toggled = append(s.toggled, followerID+">"+followeeID)
	return len(s.toggled)%2 == 1, nil
}
func (s *followRepoStub) IsFollowing(_ context.Context, followerID, followeeID string) (bool, error) {
	for _, id := range s.followees[followerID] {
		if id == followeeID {
			return true, nil
		}
	}
	return false, nil
}
func (s *followRepoStub) FolloweeIDs(_ context.Context, followerID string) ([]string, error) {
	ids := s.followees[followerID]
	if ids == nil {
		return []string{}, nil
	}
	return ids, nil
}
func (s *followRepoStub) Counts(_ context.Context, _ string) (int64, int64, error) {
	return 3, 4, nil
}
func (s *followRepoStub) ListFollowing(_ context.Context, _ string, _, _ int) ([]models.User, error) {
	return []models.User{}, nil
}
func (s *followRepoStub) ListFollowers(_ context.Context, _ string, _, _ int) ([]models.User, error) {
	return []models.User{}, nil
}

// storeStub is an in-memory storage.Store.
type storeStub struct {
	objects   map[string][]byte
	deleted   []string
	deleteErr error
}

const storeBase = "https://media.test/"

func newStoreStub() *storeStub {
	return &storeStub{objects: map[string][]byte{}}
}

func (s *storeStub) Upload(_ context.Context, key string, body []byte, _ string) (string, error) {
	s.objects[key] = body
	return storeBase + key, nil
}
func (s *storeStub) Delete(_ context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	return s.deleteErr
}
func (s *storeStub) KeyFromURL(url string) (string, bool) {
	if len(url) <= len(storeBase) || url[:len(storeBase)] != storeBase {
		return "", false
	}
	return url[len(storeBase):], true
}

// makePosts returns n posts, newest first, one second apart.
func makePosts(n int) []*models.Post {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]*models.Post, n)
	for i := 0; i < n; i++ {
		out[i] = &models.Post{ID: fmt.Sprintf("p%03d", i), CreatedAt: base.Add(-time.Duration(i) * time.Second)}
	}
	return out
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeForbidden)
}
