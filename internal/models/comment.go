package models

import "time"

// Comment is attached to a post and may reply to another comment.
// Reply nesting is one level deep by convention: listing queries filter on
// parent_comment_id rather than the schema enforcing depth.
type Comment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null" json:"user_id"`
	PostID          uint      `gorm:"not null;index" json:"post_id"`
	ParentCommentID *uint     `gorm:"index" json:"parent_comment_id,omitempty"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
	Post Post `gorm:"foreignKey:PostID" json:"-"`

	// Replies holds a preview of the earliest replies (computed on listing)
	Replies []Comment `gorm:"-" json:"replies,omitempty"`
	// RepliesCount is the total number of replies (computed on listing)
	RepliesCount int `gorm:"-" json:"replies_count"`
}
