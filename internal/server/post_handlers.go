package server

import (
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/notifications"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// @Summary List the feed
// @Description Newest first, cursor paginated. following=true restricts the feed to followed authors.
// @Tags posts
// @Produce json
// @Param limit query int false "Page size (1-100, default 20)"
// @Param pageToken query string false "Opaque cursor from a previous page"
// @Param following query bool false "Only posts from followed users"
// @Success 200 {object} service.FeedPage
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	if err := checkClaimedUser(c, c.Query("userId")); err != nil {
		return respondError(c, err)
	}

	page, err := s.postService.Feed(c.UserContext(), service.FeedInput{
		ViewerID:  middleware.ViewerID(c),
		Following: c.QueryBool("following", false),
		PageToken: c.Query("pageToken"),
		Limit:     c.QueryInt("limit", 0),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(page)
}

// GetUserPosts handles GET /api/users/:id/posts
// @Summary List a user's posts
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Param limit query int false "Page size (1-100, default 20)"
// @Param pageToken query string false "Opaque cursor from a previous page"
// @Success 200 {object} service.FeedPage
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	page, err := s.postService.UserPosts(c.UserContext(), authorID, service.FeedInput{
		ViewerID:  middleware.ViewerID(c),
		PageToken: c.Query("pageToken"),
		Limit:     c.QueryInt("limit", 0),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} object{post=models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id, middleware.ViewerID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"post": post})
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Description Content, media or both. Media URLs must come from POST /media.
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{content=string,mediaUrls=[]string} true "Post"
// @Success 201 {object} object{post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		UserID    string   `json:"userId"`
		Content   string   `json:"content"`
		MediaURLs []string `json:"mediaUrls"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := checkClaimedUser(c, req.UserID); err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:    middleware.ViewerID(c),
		Content:   req.Content,
		MediaURLs: req.MediaURLs,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.publishFeedEvent(c.UserContext(), notifications.EventPostCreated, fiber.Map{"post": post})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Description Owner only. Stored media objects are removed as well.
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: middleware.ViewerID(c),
		PostID: id,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.publishFeedEvent(c.UserContext(), notifications.EventPostDeleted, fiber.Map{
		"postId":   post.ID,
		"authorId": post.UserID,
	})

	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
