// Package service contains the business logic sitting between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"pulse/internal/models"
	"pulse/internal/repository"
)

const maxPostContentLen = 2000

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// PostService provides post, feed and like business logic.
type PostService struct {
	postRepo         repository.PostRepository
	userRepo         repository.UserRepository
	hashtagRepo      repository.HashtagRepository
	notificationRepo repository.NotificationRepository
	trendingWindow   time.Duration
}

type CreatePostInput struct {
	UserID    uint
	Content   string
	MediaURL  string
	MediaType string
	Tags      string
	Location  string
}

// ToggleLikeResult reports the post's like state after a toggle. Notification
// is non-nil when the toggle produced one, so the caller can push it out.
type ToggleLikeResult struct {
	Liked        bool                 `json:"liked"`
	LikesCount   int                  `json:"likes_count"`
	Notification *models.Notification `json:"-"`
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	hashtagRepo repository.HashtagRepository,
	notificationRepo repository.NotificationRepository,
	trendingWindow time.Duration,
) *PostService {
	return &PostService{
		postRepo:         postRepo,
		userRepo:         userRepo,
		hashtagRepo:      hashtagRepo,
		notificationRepo: notificationRepo,
		trendingWindow:   trendingWindow,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && strings.TrimSpace(in.MediaURL) == "" {
		return nil, models.NewValidationError("Post must have content or media")
	}
	if utf8.RuneCountInString(content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 2000 characters)")
	}

	post := &models.Post{
		UserID:    in.UserID,
		Content:   content,
		MediaURL:  in.MediaURL,
		MediaType: in.MediaType,
		Tags:      in.Tags,
		Location:  in.Location,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if tags := ExtractHashtags(content, in.Tags); len(tags) > 0 {
		if err := s.hashtagRepo.IndexPost(ctx, post.ID, tags); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, currentUserID)
}

// DeletePost removes the post and its dependent rows. Only the author may
// delete a post. Hashtag usage counts are left as they were.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// HomeFeed returns posts by the user and everyone they follow, newest first.
func (s *PostService) HomeFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.HomeFeed(ctx, userID, limit, offset)
}

// Trending returns posts from the trailing window ranked by engagement score.
// The score reads the stored counters; it is never recomputed from relation
// rows.
func (s *PostService) Trending(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	since := time.Now().Add(-s.trendingWindow)
	return s.postRepo.Trending(ctx, since, limit, offset, currentUserID)
}

func (s *PostService) PostsByUser(ctx context.Context, username string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.postRepo.ByUser(ctx, user.ID, limit, offset, currentUserID)
}

func (s *PostService) PostsByHashtag(ctx context.Context, tag string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if tag == "" {
		return nil, models.NewValidationError("Hashtag is required")
	}
	if _, err := s.hashtagRepo.GetByTag(ctx, tag); err != nil {
		return nil, err
	}
	return s.postRepo.ByHashtag(ctx, tag, limit, offset, currentUserID)
}

// ToggleLike likes the post if the user has not liked it, and unlikes it
// otherwise. When two requests race on the same pair, the unique index on
// likes decides the winner; the loser gets a conflict and no counter moves.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (*ToggleLikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if post.Liked {
		if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
			return nil, err
		}
		return &ToggleLikeResult{Liked: false, LikesCount: post.LikesCount - 1}, nil
	}

	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return nil, err
	}
	result := &ToggleLikeResult{Liked: true, LikesCount: post.LikesCount + 1}

	if post.UserID != userID {
		actor, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		notification := &models.Notification{
			UserID:  post.UserID,
			Type:    models.NotificationTypeLike,
			Message: fmt.Sprintf("%s liked your post", actor.Username),
			ActorID: &actor.ID,
			PostID:  &post.ID,
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			return nil, err
		}
		notification.Actor = actor
		result.Notification = notification
	}

	return result, nil
}

// ExtractHashtags pulls #tags out of the given texts, lowercased and
// deduplicated in order of first appearance.
func ExtractHashtags(texts ...string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, text := range texts {
		for _, match := range hashtagPattern.FindAllStringSubmatch(text, -1) {
			tag := strings.ToLower(match[1])
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
