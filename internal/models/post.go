package models

import (
	"time"
)

// Activity holds the denormalized counters of a post. TotalComments and
// TotalParentComments are cached aggregates of the comments table and can be
// rebuilt with a recount.
type Activity struct {
	TotalLikes          int64 `gorm:"default:0;not null" json:"total_likes"`
	TotalComments       int64 `gorm:"default:0;not null" json:"total_comments"`
	TotalReads          int64 `gorm:"default:0;not null" json:"total_reads"`
	TotalParentComments int64 `gorm:"default:0;not null" json:"total_parent_comments"`
}

type Post struct {
	ID          ID        `gorm:"primaryKey;autoIncrement:false" json:"_id"`
	Slug        string    `gorm:"uniqueIndex;size:120;not null" json:"post_id"`
	AuthorID    ID        `gorm:"not null;index" json:"-"`
	Title       string    `gorm:"not null" json:"title"`
	Des         string    `gorm:"size:200" json:"des"`
	BannerURL   string    `json:"bannerUrl"`
	Content     string    `gorm:"type:text" json:"-"` // opaque editor blocks, raw JSON
	Tags        string    `gorm:"size:255" json:"-"`  // comma separated
	Activity    Activity  `gorm:"embedded" json:"activity"`
	PublishedAt time.Time `gorm:"autoCreateTime" json:"publishedAt"`
	UpdatedAt   time.Time `json:"-"`
}

type PostSummary struct {
	ID    ID     `json:"_id"`
	Slug  string `json:"post_id"`
	Title string `json:"title"`
}

func (p Post) Summary() PostSummary {
	return PostSummary{ID: p.ID, Slug: p.Slug, Title: p.Title}
}
