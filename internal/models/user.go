// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Badge is the profile tier shown next to a user's name.
type Badge string

const (
	BadgeNone Badge = "none"
	BadgeBlue Badge = "blue"
	BadgeGold Badge = "gold"
	BadgeGray Badge = "gray"
)

// Valid reports whether b is a known badge tier.
func (b Badge) Valid() bool {
	switch b {
	case BadgeNone, BadgeBlue, BadgeGold, BadgeGray:
		return true
	}
	return false
}

// User represents a user profile. Credentials live with the external auth provider.
type User struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:100" json:"name"`
	Username    string    `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email       *string   `gorm:"uniqueIndex;size:255" json:"-"`
	Bio         string    `gorm:"size:500" json:"bio"`
	Image       string    `json:"image"`
	BannerImage string    `json:"banner_image"`
	Badge       Badge     `gorm:"size:16;default:none" json:"badge"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	FollowersCount int64 `gorm:"->;-:migration" json:"followers_count"`
	FollowingCount int64 `gorm:"->;-:migration" json:"following_count"`
	// IsFollowing is set only when a viewer is known.
	IsFollowing *bool `gorm:"-" json:"is_following,omitempty"`
}

// BeforeCreate assigns a time-ordered identifier.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.Badge == "" {
		u.Badge = BadgeNone
	}
	return nil
}

// PublicUser is the author summary embedded in posts and comments.
type PublicUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
	Badge    Badge  `json:"badge"`
}

// TableName maps PublicUser onto the users table for preloading.
func (PublicUser) TableName() string { return "users" }

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
