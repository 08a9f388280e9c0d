package server

import (
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Content   string `json:"content"`
		MediaURL  string `json:"media_url"`
		MediaType string `json:"media_type"`
		Tags      string `json:"tags"`
		Location  string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:    userID,
		Content:   req.Content,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
		Tags:      req.Tags,
		Location:  req.Location,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), userID, id); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// GetFeed handles GET /api/posts/feed
func (s *Server) GetFeed(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := parsePagination(c, 20)

	posts, err := s.postService.HomeFeed(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(pagedBody("posts", posts, page, len(posts)))
}

// GetTrendingPosts handles GET /api/posts/trending
func (s *Server) GetTrendingPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.Trending(c.Context(), page.Limit, page.Offset, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(pagedBody("posts", posts, page, len(posts)))
}

// GetUserPosts handles GET /api/posts/user/:username
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	username := c.Params("username")
	page := parsePagination(c, 20)

	posts, err := s.postService.PostsByUser(c.Context(), username, page.Limit, page.Offset, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(pagedBody("posts", posts, page, len(posts)))
}

// GetHashtagPosts handles GET /api/hashtags/:tag/posts
func (s *Server) GetHashtagPosts(c *fiber.Ctx) error {
	tag := c.Params("tag")
	page := parsePagination(c, 20)

	posts, err := s.postService.PostsByHashtag(c.Context(), tag, page.Limit, page.Offset, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(pagedBody("posts", posts, page, len(posts)))
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleLike(c.Context(), userID, id)
	if err != nil {
		return models.RespondError(c, err)
	}

	if result.Notification != nil {
		s.publishNotification(result.Notification)
	}

	return c.JSON(result)
}
