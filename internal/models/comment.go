package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is a top-level reply to a post.
type Comment struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	PostID    string     `gorm:"size:36;not null;index:idx_comments_post,priority:1" json:"post_id"`
	UserID    string     `gorm:"size:36;not null;index" json:"user_id"`
	User      PublicUser `gorm:"foreignKey:UserID" json:"user"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Edited    bool       `gorm:"not null;default:false" json:"edited"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	CreatedAt time.Time  `gorm:"index:idx_comments_post,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	LikesCount    int64 `gorm:"->;-:migration" json:"likes_count"`
	Liked         bool  `gorm:"->;-:migration" json:"-"`
	LikedByViewer *bool `gorm:"-" json:"liked_by_viewer,omitempty"`
}

// BeforeCreate assigns a time-ordered identifier.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	return nil
}

// ExposeViewerState mirrors Post.ExposeViewerState.
func (c *Comment) ExposeViewerState(viewerID string) {
	if viewerID == "" {
		c.LikedByViewer = nil
		return
	}
	liked := c.Liked
	c.LikedByViewer = &liked
}
