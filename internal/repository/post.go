package repository

import (
	"context"
	"errors"
	"time"

	"pulse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations.
//
// Create, Delete, Like and Unlike pair the relation change with its mirrored
// counter update inside a single transaction: no reader ever observes the
// relation row without the counter adjustment, or vice versa.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	HomeFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	Trending(ctx context.Context, since time.Time, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ByHashtag(ctx context.Context, tag string, limit, offset int, currentUserID uint) ([]*models.Post, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", post.UserID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + ?", 1)).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyLiked(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// Delete removes the post, its likes, its comments and its hashtag links, and
// decrements the owner's posts_count, all in one transaction. Hashtag usage
// counters are intentionally left untouched.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "user_id").First(&post, id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostHashtag{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", post.UserID).
			UpdateColumn("posts_count", gorm.Expr("posts_count - ?", 1)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// HomeFeed returns posts authored by userID or any user userID follows,
// newest first. Counters are read from the stored columns; only the liked
// flag is derived from the likes relation.
func (r *postRepository) HomeFeed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyLiked(r.db.WithContext(ctx), userID).
		Preload("User").
		Where("posts.user_id IN (SELECT following_id FROM follows WHERE follower_id = ? UNION SELECT ?)",
			userID, userID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Trending returns posts created after `since`, ranked by engagement score
// (2*likes + comments + shares) with creation time as tiebreak. The ranking
// is recomputed from current counters on every call.
func (r *postRepository) Trending(ctx context.Context, since time.Time, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyLiked(r.db.WithContext(ctx), currentUserID, trendingScoreSelect).
		Preload("User").
		Where("posts.created_at > ?", since).
		Order("engagement_score DESC, posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ByUser(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyLiked(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("posts.user_id = ?", userID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ByHashtag(ctx context.Context, tag string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyLiked(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Joins("JOIN post_hashtags ph ON ph.post_id = posts.id").
		Joins("JOIN hashtags h ON h.id = ph.hashtag_id").
		Where("h.tag = ?", tag).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

const trendingScoreSelect = ", (posts.likes_count * 2 + posts.comments_count + posts.shares_count) as engagement_score"

// applyLiked selects posts.* plus a liked flag derived from the likes
// relation for the requesting user. extraSelect fragments are appended as-is.
func (r *postRepository) applyLiked(db *gorm.DB, currentUserID uint, extraSelect ...string) *gorm.DB {
	selectQuery := "posts.*"
	for _, s := range extraSelect {
		selectQuery += s
	}

	if currentUserID != 0 {
		return db.Model(&models.Post{}).
			Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}
	return db.Model(&models.Post{}).Select(selectQuery + ", false as liked")
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Like inserts the like row and increments likes_count atomically. The unique
// index on (user_id, post_id) is the serialization point: if the insert hits
// the conflict the transaction rolls back without touching the counter and a
// CONFLICT error tells the caller to re-read current state.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).Create(&models.Like{UserID: userID, PostID: postID})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Post already liked")
		}
		if err := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

// Unlike removes the like row and decrements likes_count atomically. A missing
// row means a concurrent unlike won; the counter is left untouched.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Post not liked")
		}
		if err := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - ?", 1)).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}
