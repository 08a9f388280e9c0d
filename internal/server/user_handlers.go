package server

import (
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req service.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.UserID = userID

	user, err := s.userService.UpdateProfile(c.Context(), req)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	user, err := s.userService.GetProfile(c.Context(), username, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(user)
}

// SearchUsers handles GET /api/users/search/:query
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	users, err := s.userService.SearchUsers(c.Context(), c.Params("query"), page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(pagedBody("users", users, page, len(users)))
}

// ToggleFollow handles POST /api/users/:username/follow
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	username := c.Params("username")

	result, err := s.followService.ToggleFollow(c.Context(), userID, username)
	if err != nil {
		return models.RespondError(c, err)
	}

	if result.Notification != nil {
		s.publishNotification(result.Notification)
	}

	return c.JSON(result)
}

// GetFollowers handles GET /api/users/:username/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	username := c.Params("username")
	page := parsePagination(c, 20)

	users, err := s.followService.Followers(c.Context(), username, page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(pagedBody("followers", users, page, len(users)))
}

// GetFollowing handles GET /api/users/:username/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	username := c.Params("username")
	page := parsePagination(c, 20)

	users, err := s.followService.Following(c.Context(), username, page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(pagedBody("following", users, page, len(users)))
}
