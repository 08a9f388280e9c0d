package repository

import (
	"context"
	"errors"
	"time"

	"pulse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HashtagRepository defines the interface for hashtag data operations.
type HashtagRepository interface {
	IndexPost(ctx context.Context, postID uint, tags []string) error
	GetByTag(ctx context.Context, tag string) (*models.Hashtag, error)
	Trending(ctx context.Context, since time.Time, limit int) ([]*models.Hashtag, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*models.Hashtag, error)
}

type hashtagRepository struct {
	db *gorm.DB
}

// NewHashtagRepository creates a new hashtag repository
func NewHashtagRepository(db *gorm.DB) HashtagRepository {
	return &hashtagRepository{db: db}
}

// IndexPost records each tag against the post. Usage counts only ever grow;
// deleting a post later does not walk them back.
func (r *hashtagRepository) IndexPost(ctx context.Context, postID uint, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tag := range tags {
			hashtag := models.Hashtag{Tag: tag, UsageCount: 1}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tag"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"usage_count": gorm.Expr("usage_count + ?", 1)}),
			}).Create(&hashtag).Error; err != nil {
				return err
			}
			if hashtag.ID == 0 {
				// Some drivers do not report the id back on conflict.
				if err := tx.Select("id").Where("tag = ?", tag).First(&hashtag).Error; err != nil {
					return err
				}
			}
			link := models.PostHashtag{PostID: postID, HashtagID: hashtag.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *hashtagRepository) GetByTag(ctx context.Context, tag string) (*models.Hashtag, error) {
	var hashtag models.Hashtag
	if err := r.db.WithContext(ctx).Where("tag = ?", tag).First(&hashtag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Hashtag", tag)
		}
		return nil, models.NewInternalError(err)
	}
	return &hashtag, nil
}

// Trending ranks hashtags by how many posts used them since the cutoff,
// breaking ties on lifetime usage.
func (r *hashtagRepository) Trending(ctx context.Context, since time.Time, limit int) ([]*models.Hashtag, error) {
	var hashtags []*models.Hashtag
	if err := r.db.WithContext(ctx).
		Model(&models.Hashtag{}).
		Select("hashtags.*, COUNT(posts.id) as recent_posts").
		Joins("LEFT JOIN post_hashtags ph ON ph.hashtag_id = hashtags.id").
		Joins("LEFT JOIN posts ON posts.id = ph.post_id AND posts.created_at >= ?", since).
		Group("hashtags.id").
		Order("recent_posts DESC, hashtags.usage_count DESC").
		Limit(limit).
		Find(&hashtags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return hashtags, nil
}

func (r *hashtagRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Hashtag, error) {
	var hashtags []*models.Hashtag
	if err := r.db.WithContext(ctx).
		Where("tag LIKE ?", "%"+query+"%").
		Order("usage_count DESC").
		Limit(limit).
		Offset(offset).
		Find(&hashtags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return hashtags, nil
}
