package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// allowedMediaTypes maps accepted upload MIME types to the media_type value
// stored on posts.
var allowedMediaTypes = map[string]string{
	"image/jpeg": "image",
	"image/png":  "image",
	"image/gif":  "image",
	"image/webp": "image",
	"video/mp4":  "video",
	"video/webm": "video",
}

// UploadMedia handles POST /api/uploads
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	file, err := c.FormFile("media")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Media file is required"))
	}

	maxBytes := int64(s.config.MaxUploadMB) * 1024 * 1024
	if file.Size > maxBytes {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.config.MaxUploadMB)))
	}

	contentType := file.Header.Get("Content-Type")
	mediaType, ok := allowedMediaTypes[contentType]
	if !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unsupported media type"))
	}

	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	// Random filename so uploads cannot collide or traverse paths.
	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := uuid.New().String() + ext
	dest := filepath.Join(s.config.UploadDir, filename)

	if err := c.SaveFile(file, dest); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"media_url":  "/uploads/" + filename,
		"media_type": mediaType,
	})
}
