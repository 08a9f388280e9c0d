package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"pulse/internal/models"
	"pulse/internal/repository"
)

const (
	maxCommentContentLen = 500
	replyPreviewLimit    = 3
)

// CommentService provides comment business logic.
type CommentService struct {
	commentRepo      repository.CommentRepository
	postRepo         repository.PostRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

type CreateCommentInput struct {
	UserID          uint
	PostID          uint
	ParentCommentID *uint
	Content         string
}

// CreateCommentResult carries the created comment plus the notification it
// produced, if any.
type CreateCommentResult struct {
	Comment      *models.Comment
	Notification *models.Notification
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
) *CommentService {
	return &CommentService{
		commentRepo:      commentRepo,
		postRepo:         postRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*CreateCommentResult, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentContentLen {
		return nil, models.NewValidationError("Comment too long (max 500 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		UserID:          in.UserID,
		PostID:          in.PostID,
		ParentCommentID: in.ParentCommentID,
		Content:         content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	result := &CreateCommentResult{Comment: created}

	if post.UserID != in.UserID {
		actor, err := s.userRepo.GetByID(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		notification := &models.Notification{
			UserID:  post.UserID,
			Type:    models.NotificationTypeComment,
			Message: fmt.Sprintf("%s commented on your post", actor.Username),
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

// DeleteComment removes a comment and its replies. Only the comment's author
// may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, commentID)
}

// ListComments returns a post's top-level comments, newest first, each with
// a short preview of its earliest replies.
func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, comment := range comments {
		replies, err := s.commentRepo.ListReplies(ctx, comment.ID, replyPreviewLimit, 0)
		if err != nil {
			return nil, err
		}
		for _, reply := range replies {
			comment.Replies = append(comment.Replies, *reply)
		}
		count, err := s.commentRepo.CountReplies(ctx, comment.ID)
		if err != nil {
			return nil, err
		}
		comment.RepliesCount = int(count)
	}
	return comments, nil
}

// ListReplies returns all replies to a comment, oldest first.
func (s *CommentService) ListReplies(ctx context.Context, commentID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListReplies(ctx, commentID, limit, offset)
}
