package server

import (
	"io"
	"strings"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadMedia handles POST /api/media
// @Summary Upload media
// @Description kind=post stores an attachment for a later POST /posts. kind=avatar or banner replaces the caller's profile image.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image or video"
// @Param kind formData string false "post, avatar or banner (default post)"
// @Success 201 {object} service.MediaUpload
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /media [post]
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	body, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}

	kind := strings.ToLower(strings.TrimSpace(c.FormValue("kind")))
	if kind == "" {
		kind = service.MediaKindPost
	}

	uploaded, err := s.mediaService.Upload(c.UserContext(), service.UploadMediaInput{
		UserID: middleware.ViewerID(c),
		Kind:   kind,
		Body:   body,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(uploaded)
}
