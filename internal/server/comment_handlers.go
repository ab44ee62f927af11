package server

import (
	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments
// @Summary List comments on a post
// @Tags comments
// @Produce json
// @Param id path string true "Post ID"
// @Param limit query int false "Page size (1-100, default 20)"
// @Param pageToken query string false "Opaque cursor from a previous page"
// @Success 200 {object} service.CommentPage
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	page, err := s.commentService.ListComments(c.UserContext(), service.ListCommentsInput{
		PostID:    postID,
		ViewerID:  middleware.ViewerID(c),
		PageToken: c.Query("pageToken"),
		Limit:     c.QueryInt("limit", 0),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(page)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} object{comment=models.Comment}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		UserID  string `json:"userId"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := checkClaimedUser(c, req.UserID); err != nil {
		return respondError(c, err)
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:  middleware.ViewerID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

// UpdateComment handles PATCH /api/comments/:id
// @Summary Edit a comment
// @Description Author only. Marks the comment as edited.
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Comment ID"
// @Param request body object{content=string} true "New content"
// @Success 200 {object} object{comment=models.Comment}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id} [patch]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		UserID  string `json:"userId"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := checkClaimedUser(c, req.UserID); err != nil {
		return respondError(c, err)
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    middleware.ViewerID(c),
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"comment": comment})
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment
// @Description Author only. Likes on the comment are removed with it.
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := checkClaimedUser(c, c.Query("userId")); err != nil {
		return respondError(c, err)
	}

	if _, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    middleware.ViewerID(c),
		CommentID: commentID,
	}); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}
