package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// ListPages handles GET /api/v1/pages
func (s *Server) ListPages(c fiber.Ctx) error {
	pages := s.dashboard.Navigation()

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"pages": pages,
		"total": len(pages),
	})
}

// GetPage handles GET /api/v1/pages/{slug}
func (s *Server) GetPage(c fiber.Ctx, slug string, params GetPageParams) error {
	if params.Refresh != nil && *params.Refresh {
		if err := s.dashboard.Refresh(c.Context(), slug); err != nil {
			return apiError(err)
		}

		s.log.WithField("page", slug).Debug("Refreshed page queries")
	}

	view, err := s.dashboard.Render(c.Context(), slug)
	if err != nil {
		return apiError(err)
	}

	return c.Status(fiber.StatusOK).JSON(view)
}

// InvalidateCache handles POST /api/v1/cache/invalidate
func (s *Server) InvalidateCache(c fiber.Ctx) error {
	removed, err := s.cache.InvalidateAll(c.Context())
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"removed": removed}).Info("Invalidated query cache")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"invalidated": removed})
}
