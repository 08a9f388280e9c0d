package server

import (
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTrendingHashtags handles GET /api/hashtags/trending
func (s *Server) GetTrendingHashtags(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	hashtags, err := s.hashtagService.Trending(c.Context(), limit)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"hashtags": hashtags})
}

// SearchHashtags handles GET /api/hashtags/search/:query
func (s *Server) SearchHashtags(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	hashtags, err := s.hashtagService.Search(c.Context(), c.Params("query"), page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(pagedBody("hashtags", hashtags, page, len(hashtags)))
}
