package models

import (
	"time"
)

// Comment is a top-level comment (ParentID nil) or a reply. Children are not
// stored as a column; they are the rows whose parent_id points here and are
// filled in by the repository on reads, newest first.
type Comment struct {
	ID          ID        `gorm:"primaryKey;autoIncrement:false" json:"_id"`
	PostID      ID        `gorm:"not null;index:idx_comment_post_top,priority:1" json:"post_id"`
	PostAuthor  ID        `gorm:"not null" json:"post_author"`
	Body        string    `gorm:"type:text;not null" json:"comment"`
	CommentedBy ID        `gorm:"not null;index" json:"-"`
	IsReply     bool      `gorm:"not null;default:false;index:idx_comment_post_top,priority:2" json:"isReply"`
	ParentID    *ID       `gorm:"index" json:"parent,omitempty"`
	CreatedAt   time.Time `gorm:"not null;index:idx_comment_post_top,priority:3" json:"commentedAt"`

	Children []ID `gorm:"-" json:"children"`
}

type CommentSummary struct {
	ID   ID     `json:"_id"`
	Body string `json:"comment"`
}

func (c Comment) Summary() CommentSummary {
	return CommentSummary{ID: c.ID, Body: c.Body}
}
