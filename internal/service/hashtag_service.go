package service

import (
	"context"
	"strings"
	"time"

	"pulse/internal/models"
	"pulse/internal/repository"
)

// HashtagService provides hashtag discovery business logic.
type HashtagService struct {
	hashtagRepo    repository.HashtagRepository
	trendingWindow time.Duration
}

// NewHashtagService returns a new HashtagService.
func NewHashtagService(hashtagRepo repository.HashtagRepository, trendingWindow time.Duration) *HashtagService {
	return &HashtagService{hashtagRepo: hashtagRepo, trendingWindow: trendingWindow}
}

// Trending ranks hashtags by posts created inside the trailing window.
func (s *HashtagService) Trending(ctx context.Context, limit int) ([]*models.Hashtag, error) {
	since := time.Now().Add(-s.trendingWindow)
	return s.hashtagRepo.Trending(ctx, since, limit)
}

func (s *HashtagService) Search(ctx context.Context, query string, limit, offset int) ([]*models.Hashtag, error) {
	query = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(query), "#"))
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.hashtagRepo.Search(ctx, query, limit, offset)
}
