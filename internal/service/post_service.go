// Package service holds the business rules between HTTP handlers and the
// repositories.
package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/pagination"
	"pulse/internal/repository"
	"pulse/internal/storage"

	"go.opentelemetry.io/otel/attribute"
)

const maxPostContentLen = 5000

type PostService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	store      storage.Store
	log        *observability.ServiceLogger
}

// FeedInput selects one page of the feed.
type FeedInput struct {
	ViewerID  string
	Following bool
	PageToken string
	Limit     int
}

// FeedPage is one page of posts plus the token for the next one. A nil
// token means the stream is exhausted.
type FeedPage struct {
	Posts         []*models.Post `json:"posts"`
	NextPageToken *string        `json:"nextPageToken"`
}

type CreatePostInput struct {
	UserID    string
	Content   string
	MediaURLs []string
}

type DeletePostInput struct {
	UserID string
	PostID string
}

func NewPostService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	store storage.Store,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		followRepo: followRepo,
		userRepo:   userRepo,
		store:      store,
		log:        observability.NewServiceLogger("post"),
	}
}

// Feed returns posts newest first. With Following set only authors the
// viewer follows are included; a viewer who follows nobody gets an empty,
// exhausted page without the posts query running.
func (s *PostService) Feed(ctx context.Context, in FeedInput) (*FeedPage, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.Feed",
		attribute.Bool("feed.following", in.Following),
		attribute.Bool("feed.anonymous", in.ViewerID == ""),
	)
	defer span.End()

	variant := "all"
	var authors []string
	if in.Following {
		variant = "following"
		if in.ViewerID == "" {
			return nil, models.NewValidationError("following feed requires an authenticated viewer")
		}
		ids, err := s.followRepo.FolloweeIDs(ctx, in.ViewerID)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		if len(ids) == 0 {
			observability.FeedPageSize.WithLabelValues(variant).Observe(0)
			return &FeedPage{Posts: []*models.Post{}}, nil
		}
		authors = ids
	}

	page, err := s.page(ctx, in, authors)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int("feed.size", len(page.Posts)))
	observability.FeedPageSize.WithLabelValues(variant).Observe(float64(len(page.Posts)))
	return page, nil
}

// UserPosts pages through one author's posts.
func (s *PostService) UserPosts(ctx context.Context, authorID string, in FeedInput) (*FeedPage, error) {
	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return nil, err
	}
	page, err := s.page(ctx, in, []string{authorID})
	if err != nil {
		return nil, err
	}
	observability.FeedPageSize.WithLabelValues("profile").Observe(float64(len(page.Posts)))
	return page, nil
}

func (s *PostService) page(ctx context.Context, in FeedInput, authors []string) (*FeedPage, error) {
	cursor, err := pagination.Decode(in.PageToken)
	if err != nil {
		return nil, models.NewValidationError("invalid pageToken")
	}
	limit := pagination.ClampLimit(in.Limit)

	rows, err := s.postRepo.List(ctx, repository.FeedQuery{
		ViewerID:  in.ViewerID,
		AuthorIDs: authors,
		Cursor:    cursor,
		Limit:     limit + 1,
	})
	if err != nil {
		return nil, err
	}

	posts, hasMore := pagination.Trim(rows, limit)
	out := &FeedPage{Posts: normalizePosts(posts)}
	if hasMore {
		last := posts[len(posts)-1]
		out.NextPageToken = pagination.After(last.CreatedAt, last.ID).Token()
	}
	return out, nil
}

func (s *PostService) GetPost(ctx context.Context, id, viewerID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	normalizePosts([]*models.Post{post})
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && len(in.MediaURLs) == 0 {
		return nil, models.NewValidationError("Post needs content or media")
	}
	if utf8.RuneCountInString(content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 5000 characters)")
	}
	if len(in.MediaURLs) > models.MaxPostMedia {
		return nil, models.NewValidationError("A post can carry at most 4 media items")
	}
	ownPrefix := "posts/" + in.UserID + "/"
	for _, u := range in.MediaURLs {
		key, ok := s.keyFor(u)
		if !ok || !strings.HasPrefix(key, ownPrefix) {
			return nil, models.NewValidationError("media_url must reference your own uploads")
		}
	}

	post := &models.Post{
		UserID:    in.UserID,
		Content:   content,
		MediaURLs: append([]string{}, in.MediaURLs...),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, post.ID, in.UserID)
}

// DeletePost removes a post owned by the caller. Stored media is removed on a
// best-effort basis after the rows are gone.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, "")
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return nil, err
	}

	var keys []string
	for _, u := range post.MediaURLs {
		if key, ok := s.keyFor(u); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) > 0 {
		if err := s.store.Delete(ctx, keys...); err != nil {
			s.log.LogDegraded(ctx, err, "delete_post_media", slog.String("post_id", post.ID))
		}
	}
	return post, nil
}

func (s *PostService) keyFor(url string) (string, bool) {
	if s.store == nil {
		return "", false
	}
	return s.store.KeyFromURL(url)
}

// normalizePosts makes empty media lists encode as [] rather than null.
func normalizePosts(posts []*models.Post) []*models.Post {
	if posts == nil {
		return []*models.Post{}
	}
	for _, p := range posts {
		if p.MediaURLs == nil {
			p.MediaURLs = []string{}
		}
	}
	return posts
}
