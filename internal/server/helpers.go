package server

import (
	"errors"
	"log/slog"
	"strings"

	"pulse/internal/middleware"
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter holding an entity id.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (string, error) {
	id := strings.TrimSpace(c.Params(param))
	if !validID(id) {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return "", errResponseWritten
	}
	return id, nil
}

func validID(id string) bool {
	return id != "" && uuid.Validate(id) == nil
}

// respondError maps err to its status and writes the standard error body.
// Server errors are logged with the request context.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// checkClaimedUser accepts a userId sent by clients that still pass it
// explicitly. It must name the authenticated viewer; it never grants an
// identity on its own.
func checkClaimedUser(c *fiber.Ctx, claimed string) error {
	claimed = strings.TrimSpace(claimed)
	if claimed == "" {
		return nil
	}
	viewer := middleware.ViewerID(c)
	if viewer == "" {
		return models.NewUnauthorizedError("Authorization required")
	}
	if claimed != viewer {
		return models.NewForbiddenError("userId does not match the authenticated user")
	}
	return nil
}
