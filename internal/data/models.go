package data

import (
	"html/template"
	"time"
)

// Article is a news article row plus the read-side fields joined onto it.
type Article struct {
	ID           int64         `db:"id" json:"id"`
	Title        string        `db:"title" json:"title"`
	Content      string        `db:"content" json:"content"`
	HTMLContent  template.HTML `db:"-" json:"html_content,omitempty"`
	Slug         string        `db:"slug" json:"slug"`
	PhotoURL     *string       `db:"photo_url" json:"photo_url"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time    `db:"updated_at" json:"updated_at"`
	CreatedBy    string        `db:"created_by" json:"created_by"`
	UpdatedBy    *string       `db:"updated_by" json:"updated_by"`
	ViewCount    int64         `db:"view_count" json:"view_count"`
	CategoryID   int64         `db:"category_id" json:"category_id"`
	CategoryName string        `db:"category_name" json:"category_name"`
	IsActive     bool          `db:"is_active" json:"is_active"`
	IsFeatured   bool          `db:"is_featured" json:"is_featured"`
	IsDeleted    bool          `db:"is_deleted" json:"is_deleted"`
	Tags         []*Tag        `db:"-" json:"tags"`
}

// Category groups articles. Articles reference it by id.
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Tag is a catalog entry with a unique, case-sensitive name.
type Tag struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// ArticleTag links an article to one of its tags.
type ArticleTag struct {
	ArticleID int64 `db:"article_id"`
	TagID     int64 `db:"tag_id"`
}

// ListOrder selects the ordering of article listings.
type ListOrder int

const (
	// OrderByUpdated sorts by last edit (creation time for never-edited rows), newest first.
	OrderByUpdated ListOrder = iota
	// OrderByViews sorts by view count, highest first.
	OrderByViews
)

// ListFilter restricts ListArticles. Nil flags mean "either value".
type ListFilter struct {
	Active     *bool
	Featured   *bool
	CategoryID int64
	Order      ListOrder
	Limit      int
}
