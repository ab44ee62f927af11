package server

import (
	"context"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} object{user=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.UserContext(), id, middleware.ViewerID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	viewer := middleware.ViewerID(c)
	user, err := s.userService.GetProfile(c.UserContext(), viewer, viewer)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

// UpdateMyProfile handles PATCH /api/users/me
// @Summary Update the caller's profile
// @Description Absent fields are left unchanged.
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{name=string,username=string,bio=string} true "Fields to change"
// @Success 200 {object} object{user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [patch]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name     *string `json:"name"`
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   middleware.ViewerID(c),
		Name:     req.Name,
		Username: req.Username,
		Bio:      req.Bio,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

// ToggleFollow handles POST /api/users/:id/follow
// @Summary Follow or unfollow a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} service.FollowResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/follow [post]
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := s.followService.ToggleFollow(c.UserContext(), middleware.ViewerID(c), targetID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(res)
}

// GetFollowing handles GET /api/users/:id/following
// @Summary Users this user follows
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Offset"
// @Success 200 {object} object{users=[]models.User}
// @Router /users/{id}/following [get]
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	return s.listFollowGraph(c, s.followService.ListFollowing)
}

// GetFollowers handles GET /api/users/:id/followers
// @Summary Users following this user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Offset"
// @Success 200 {object} object{users=[]models.User}
// @Router /users/{id}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	return s.listFollowGraph(c, s.followService.ListFollowers)
}

type followLister func(ctx context.Context, userID string, limit, offset int) ([]models.User, error)

func (s *Server) listFollowGraph(c *fiber.Ctx, list followLister) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	users, err := list(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	if users == nil {
		users = []models.User{}
	}

	return c.JSON(fiber.Map{"users": users})
}
