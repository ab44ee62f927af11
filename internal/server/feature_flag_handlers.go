package server

import (
	"pulse/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns the flags evaluated for the current viewer.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{"flags": map[string]bool{}})
	}

	return c.JSON(fiber.Map{
		"flags": s.featureFlags.Snapshot(middleware.ViewerID(c)),
	})
}
