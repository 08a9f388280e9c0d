// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered account.
//
// FollowersCount, FollowingCount and PostsCount are denormalized counters
// maintained transactionally by the repository layer alongside the follow
// and post relations; they are never recomputed at read time.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"size:255;not null" json:"-"`
	FullName       string    `gorm:"size:100" json:"full_name"`
	Bio            string    `gorm:"type:text" json:"bio"`
	ProfilePicture string    `gorm:"size:255" json:"profile_picture"`
	CoverPhoto     string    `gorm:"size:255" json:"cover_photo"`
	Location       string    `gorm:"size:100" json:"location"`
	Website        string    `gorm:"size:255" json:"website"`
	Verified       bool      `gorm:"not null;default:false" json:"verified"`
	PrivateAccount bool      `gorm:"not null;default:false" json:"private_account"`
	FollowersCount int       `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int       `gorm:"not null;default:0" json:"following_count"`
	PostsCount     int       `gorm:"not null;default:0" json:"posts_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// IsFollowing indicates whether the requesting user follows this user (computed)
	IsFollowing bool `gorm:"-" json:"is_following,omitempty"`
	// FollowedAt is populated on follower/following listings (computed)
	FollowedAt *time.Time `gorm:"->;-:migration" json:"followed_at,omitempty"`
}
