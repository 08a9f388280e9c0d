package service

import (
	"context"
	"fmt"

	"pulse/internal/models"
	"pulse/internal/repository"
)

// FollowService provides follow-graph business logic.
type FollowService struct {
	followRepo       repository.FollowRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

// ToggleFollowResult reports the relation state after a toggle. Notification
// is non-nil when the toggle produced one.
type ToggleFollowResult struct {
	Following    bool                 `json:"following"`
	Notification *models.Notification `json:"-"`
}

// NewFollowService returns a new FollowService.
func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
) *FollowService {
	return &FollowService{
		followRepo:       followRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

// ToggleFollow follows the target user if not already followed, and
// unfollows otherwise. Unfollowing never notifies.
func (s *FollowService) ToggleFollow(ctx context.Context, userID uint, targetUsername string) (*ToggleFollowResult, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == userID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	following, err := s.followRepo.IsFollowing(ctx, userID, target.ID)
	if err != nil {
		return nil, err
	}

	if following {
		if err := s.followRepo.Unfollow(ctx, userID, target.ID); err != nil {
			return nil, err
		}
		return &ToggleFollowResult{Following: false}, nil
	}

	if err := s.followRepo.Follow(ctx, userID, target.ID); err != nil {
		return nil, err
	}

	actor, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	notification := &models.Notification{
		UserID:  target.ID,
		Type:    models.NotificationTypeFollow,
		Message: fmt.Sprintf("%s started following you", actor.Username),
		ActorID: &actor.ID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}
	notification.Actor = actor

	return &ToggleFollowResult{Following: true, Notification: notification}, nil
}

// Followers returns users following the given user, most recent first.
func (s *FollowService) Followers(ctx context.Context, username string, limit, offset int) ([]*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, user.ID, limit, offset)
}

// Following returns users the given user follows, most recent first.
func (s *FollowService) Following(ctx context.Context, username string, limit, offset int) ([]*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, user.ID, limit, offset)
}
