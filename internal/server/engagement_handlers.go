package server

import (
	"context"
	"strings"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/notifications"
	"pulse/internal/repository"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ToggleLike handles POST /api/likes
// @Summary Like or unlike a post or comment
// @Description Exactly one of postId and commentId is required. Returns the state after the toggle and a fresh count.
// @Tags engagement
// @Accept json
// @Produce json
// @Param request body object{postId=string,commentId=string} true "Target"
// @Success 200 {object} object{liked=bool,likesCount=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /likes [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	var req struct {
		UserID    string `json:"userId"`
		PostID    string `json:"postId"`
		CommentID string `json:"commentId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := checkClaimedUser(c, req.UserID); err != nil {
		return respondError(c, err)
	}

	req.PostID, req.CommentID = strings.TrimSpace(req.PostID), strings.TrimSpace(req.CommentID)
	for _, id := range []string{req.PostID, req.CommentID} {
		if id != "" && !validID(id) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid target id"))
		}
	}

	res, err := s.engagementService.ToggleLike(c.UserContext(), service.LikeInput{
		UserID:    middleware.ViewerID(c),
		PostID:    req.PostID,
		CommentID: req.CommentID,
	})
	if err != nil {
		return respondError(c, err)
	}

	payload := fiber.Map{"kind": "like", "count": res.Count}
	if req.PostID != "" {
		payload["postId"] = req.PostID
	} else {
		payload["commentId"] = req.CommentID
	}
	s.publishFeedEvent(c.UserContext(), notifications.EventPostEngagement, payload)

	return c.JSON(fiber.Map{"liked": res.Active, "likesCount": res.Count})
}

// RecordView handles POST /api/posts/:id/view
// @Summary Record a view
// @Description Idempotent per viewer and post.
// @Tags engagement
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} object{viewCount=int}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/view [post]
func (s *Server) RecordView(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := checkClaimedUser(c, c.Query("userId")); err != nil {
		return respondError(c, err)
	}

	count, err := s.engagementService.RecordView(c.UserContext(), middleware.ViewerID(c), postID)
	if err != nil {
		return respondError(c, err)
	}

	s.publishFeedEvent(c.UserContext(), notifications.EventPostEngagement, fiber.Map{
		"postId": postID,
		"kind":   "view",
		"count":  count,
	})

	return c.JSON(fiber.Map{"viewCount": count})
}

// ToggleBookmark handles POST /api/posts/:id/bookmark
// @Summary Bookmark or unbookmark a post
// @Tags engagement
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} object{bookmarked=bool,bookmarksCount=int}
// @Security BearerAuth
// @Router /posts/{id}/bookmark [post]
func (s *Server) ToggleBookmark(c *fiber.Ctx) error {
	return s.togglePostRelation(c, "bookmark", s.engagementService.ToggleBookmark, "bookmarked", "bookmarksCount")
}

// ToggleRepost handles POST /api/posts/:id/repost
// @Summary Repost or undo a repost
// @Tags engagement
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} object{reposted=bool,repostsCount=int}
// @Security BearerAuth
// @Router /posts/{id}/repost [post]
func (s *Server) ToggleRepost(c *fiber.Ctx) error {
	return s.togglePostRelation(c, "repost", s.engagementService.ToggleRepost, "reposted", "repostsCount")
}

type postToggle func(ctx context.Context, userID, postID string) (repository.ToggleResult, error)

func (s *Server) togglePostRelation(c *fiber.Ctx, kind string, toggle postToggle, stateKey, countKey string) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := toggle(c.UserContext(), middleware.ViewerID(c), postID)
	if err != nil {
		return respondError(c, err)
	}

	s.publishFeedEvent(c.UserContext(), notifications.EventPostEngagement, fiber.Map{
		"postId": postID,
		"kind":   kind,
		"count":  res.Count,
	})

	return c.JSON(fiber.Map{stateKey: res.Active, countKey: res.Count})
}
