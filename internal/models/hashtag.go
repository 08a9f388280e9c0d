package models

import "time"

// Hashtag is a normalized (lower-cased) tag with an all-time usage counter.
// Usage is monotonic: it is incremented each time a post includes the tag
// and never decremented, including on post deletion.
type Hashtag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Tag        string    `gorm:"size:100;uniqueIndex;not null" json:"tag"`
	UsageCount int       `gorm:"not null;default:1" json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`

	// RecentPosts is the count of linked posts in the trending window (computed)
	RecentPosts int `gorm:"->;-:migration" json:"recent_posts,omitempty"`
}

// PostHashtag links a post to a hashtag. The composite primary key makes a
// duplicate link a conflict the indexer silently skips.
type PostHashtag struct {
	PostID    uint `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	HashtagID uint `gorm:"primaryKey;autoIncrement:false" json:"hashtag_id"`
}
