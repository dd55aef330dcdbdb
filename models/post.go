package models

import (
	"time"

	"gorm.io/gorm"
)

type PostType string

const (
	PostTypeNews    PostType = "news"
	PostTypeArticle PostType = "article"
)

func (t PostType) Valid() bool {
	return t == PostTypeNews || t == PostTypeArticle
}

// DailyLimit is the number of posts of this type one author may create in a rolling 24h window.
func (t PostType) DailyLimit() int {
	if t == PostTypeArticle {
		return 5
	}
	return 3
}

// Noun is the word used for this type in notification emails.
func (t PostType) Noun() string {
	if t == PostTypeArticle {
		return "article"
	}
	return "news"
}

type Post struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	AuthorID   uint           `json:"author_id" gorm:"not null;index"`
	Author     Author         `json:"author" gorm:"foreignKey:AuthorID"`
	PostType   PostType       `json:"post_type" gorm:"type:varchar(16);not null;index"`
	Title      string         `json:"title" gorm:"not null"`
	Content    string         `json:"content" gorm:"type:text"`
	Categories []Category     `json:"categories" gorm:"many2many:post_categories;"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (p *Post) CategoryIDs() []uint {
	ids := make([]uint, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
