// Package models contains data structures for the application's domain models.
package models

import "time"

// Post represents a post in the feed. A post must carry content text, a
// media reference, or both.
//
// LikesCount, CommentsCount and SharesCount are denormalized counters
// maintained transactionally with the underlying relation rows.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID" json:"user"`
	Content       string    `gorm:"type:text" json:"content"`
	MediaURL      string    `gorm:"size:255" json:"media_url"`
	MediaType     string    `gorm:"size:50" json:"media_type"`
	Tags          string    `gorm:"type:text" json:"tags"`
	Location      string    `gorm:"size:100" json:"location"`
	LikesCount    int       `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int       `gorm:"not null;default:0" json:"comments_count"`
	SharesCount   int       `gorm:"not null;default:0" json:"shares_count"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Liked indicates whether the requesting user liked this post (computed)
	Liked bool `gorm:"->;-:migration" json:"liked"`
	// EngagementScore is the trending rank score (computed on trending queries)
	EngagementScore int `gorm:"->;-:migration" json:"engagement_score,omitempty"`
}
