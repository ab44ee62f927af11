package service

import (
	"context"
	"testing"

	"pulse/internal/models"
	"pulse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engagementRepoStub struct {
	likes []repository.LikeTarget
	views int64
}

func (s *engagementRepoStub) ToggleLike(_ context.Context, _ string, target repository.LikeTarget) (repository.ToggleResult, error) {
	s.likes = append(s.likes, target)
	return repository.ToggleResult{Active: len(s.likes)%2 == 1, Count: int64(len(s.likes) % 2)}, nil
}
func (s *engagementRepoStub) ToggleBookmark(_ context.Context, _, _ string) (repository.ToggleResult, error) {
	return repository.ToggleResult{Active: true, Count: 1}, nil
}
func (s *engagementRepoStub) ToggleRepost(_ context.Context, _, _ string) (repository.ToggleResult, error) {
	return repository.ToggleResult{Active: true, Count: 1}, nil
}
func (s *engagementRepoStub) RecordView(_ context.Context, _, _ string) (int64, error) {
	s.views = 1
	return s.views, nil
}

func TestEngagementService_ToggleLike(t *testing.T) {
	t.Parallel()

	comments, _ := memCommentRepo(&models.Comment{ID: "c1", UserID: "a"})
	repo := &engagementRepoStub{}
	svc := NewEngagementService(repo, noopPostRepo(), comments)
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, LikeInput{UserID: "u"})
	assertValidationError(t, err)
	_, err = svc.ToggleLike(ctx, LikeInput{UserID: "u", PostID: "p", CommentID: "c1"})
	assertValidationError(t, err)

	_, err = svc.ToggleLike(ctx, LikeInput{UserID: "u", CommentID: "nope"})
	assertAppError(t, err, models.CodeNotFound)

	res, err := svc.ToggleLike(ctx, LikeInput{UserID: "u", PostID: "p1"})
	require.NoError(t, err)
	assert.True(t, res.Active)

	res, err = svc.ToggleLike(ctx, LikeInput{UserID: "u", PostID: "p1"})
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Equal(t, []repository.LikeTarget{{PostID: "p1"}, {PostID: "p1"}}, repo.likes)
}

func TestEngagementService_MissingPost(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id, _ string) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	comments, _ := memCommentRepo()
	svc := NewEngagementService(&engagementRepoStub{}, posts, comments)
	ctx := context.Background()

	_, err := svc.RecordView(ctx, "u", "gone")
	assertAppError(t, err, models.CodeNotFound)
	_, err = svc.ToggleBookmark(ctx, "u", "gone")
	assertAppError(t, err, models.CodeNotFound)
	_, err = svc.ToggleRepost(ctx, "u", "gone")
	assertAppError(t, err, models.CodeNotFound)
	_, err = svc.ToggleLike(ctx, LikeInput{UserID: "u", PostID: "gone"})
	assertAppError(t, err, models.CodeNotFound)
}
