package models

import (
	"time"

	"gorm.io/gorm"
)

// Like references a user and exactly one of a post or a comment.
type Like struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_like_user_post,priority:1;uniqueIndex:idx_like_user_comment,priority:1" json:"user_id"`
	PostID    *string   `gorm:"size:36;uniqueIndex:idx_like_user_post,priority:2;index;check:chk_like_single_target,(post_id IS NULL) <> (comment_id IS NULL)" json:"post_id,omitempty"`
	CommentID *string   `gorm:"size:36;uniqueIndex:idx_like_user_comment,priority:2;index" json:"comment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the plural table name explicit for raw statements.
func (Like) TableName() string { return "likes" }

// BeforeCreate assigns a time-ordered identifier.
func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = newID()
	}
	return nil
}

// View records that a user has seen a post. One row per (user, post).
type View struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_view_user_post,priority:1" json:"user_id"`
	PostID    string    `gorm:"size:36;not null;uniqueIndex:idx_view_user_post,priority:2;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (v *View) BeforeCreate(_ *gorm.DB) error {
	if v.ID == "" {
		v.ID = newID()
	}
	return nil
}

// Bookmark is a private save of a post.
type Bookmark struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_bookmark_user_post,priority:1" json:"user_id"`
	PostID    string    `gorm:"size:36;not null;uniqueIndex:idx_bookmark_user_post,priority:2;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Bookmark) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = newID()
	}
	return nil
}

// Repost is a public share of a post.
type Repost struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_repost_user_post,priority:1" json:"user_id"`
	PostID    string    `gorm:"size:36;not null;uniqueIndex:idx_repost_user_post,priority:2;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Repost) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = newID()
	}
	return nil
}

// Follow is a directed edge from follower to followee.
type Follow struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	FollowerID string    `gorm:"size:36;not null;uniqueIndex:idx_follow_pair,priority:1" json:"follower_id"`
	FolloweeID string    `gorm:"size:36;not null;uniqueIndex:idx_follow_pair,priority:2;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (f *Follow) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = newID()
	}
	return nil
}
