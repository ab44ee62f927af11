package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxPostMedia caps the number of media attachments on one post.
const MaxPostMedia = 4

// Post represents a post in the feed.
type Post struct {
	ID        string                      `gorm:"primaryKey;size:36" json:"id"`
	UserID    string                      `gorm:"size:36;not null;index" json:"user_id"`
	User      PublicUser                  `gorm:"foreignKey:UserID" json:"user"`
	Content   string                      `gorm:"type:text" json:"content"`
	MediaURLs datatypes.JSONSlice[string] `json:"media_url"`
	CreatedAt time.Time                   `gorm:"index:idx_posts_feed,priority:1,sort:desc" json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`

	// Counts are not persisted; computed at query time
	LikesCount     int64 `gorm:"->;-:migration" json:"likes_count"`
	CommentsCount  int64 `gorm:"->;-:migration" json:"comments_count"`
	ViewsCount     int64 `gorm:"->;-:migration" json:"views_count"`
	RepostsCount   int64 `gorm:"->;-:migration" json:"reposts_count"`
	BookmarksCount int64 `gorm:"->;-:migration" json:"bookmarks_count"`
	// Liked is the raw per-viewer flag selected alongside the counts.
	Liked bool `gorm:"->;-:migration" json:"-"`
	// LikedByViewer is Liked exposed only when a viewer is known.
	LikedByViewer *bool `gorm:"-" json:"liked_by_viewer,omitempty"`
}

// BeforeCreate assigns a time-ordered identifier.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = newID()
	}
	return nil
}

// ExposeViewerState copies the selected liked flag to the wire field when
// viewerID is set.
func (p *Post) ExposeViewerState(viewerID string) {
	if viewerID == "" {
		p.LikedByViewer = nil
		return
	}
	liked := p.Liked
	p.LikedByViewer = &liked
}
