package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ContentStatus is the lifecycle state of a content document
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
)

// Valid reports whether s is a known status
func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusDraft, ContentStatusPublished, ContentStatusArchived:
		return true
	}
	return false
}

// Content is a document conforming to a content type
// Table: cms_contents
type Content struct {
	ID            uint64            `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	SiteID        string            `gorm:"column:site_id;type:varchar(64);not null;uniqueIndex:uk_contents_site_content,priority:1;uniqueIndex:uk_contents_site_type_slug,priority:1;index:idx_contents_listing,priority:1" json:"siteId"`
	ContentTypeID string            `gorm:"column:content_type_id;type:varchar(64);not null;uniqueIndex:uk_contents_site_type_slug,priority:2;index:idx_contents_listing,priority:2" json:"contentTypeId"`
	ContentID     string            `gorm:"column:content_id;type:varchar(36);not null;uniqueIndex:uk_contents_site_content,priority:2" json:"contentId"`
	Title         string            `gorm:"column:title;type:varchar(500);not null" json:"title"`
	TitleSearch   string            `gorm:"column:title_search;type:varchar(500);not null;default:''" json:"-"`
	Slug          string            `gorm:"column:slug;type:varchar(191);not null;uniqueIndex:uk_contents_site_type_slug,priority:3" json:"slug"`
	Data          datatypes.JSONMap `gorm:"column:data" json:"data"`
	Status        ContentStatus     `gorm:"column:status;type:varchar(20);not null;default:draft;index:idx_contents_listing,priority:3" json:"status"`
	Version       int               `gorm:"column:version;not null;default:1" json:"version"`
	PublishedAt   *time.Time        `gorm:"column:published_at" json:"publishedAt,omitempty"`
	CreatedBy     string            `gorm:"column:created_by;type:varchar(36)" json:"createdBy,omitempty"`
	UpdatedBy     string            `gorm:"column:updated_by;type:varchar(36)" json:"updatedBy,omitempty"`
	CreatedAt     time.Time         `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time         `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for Content model
func (Content) TableName() string {
	return "cms_contents"
}

// FoldTitle is the case-folded form stored in title_search.
// SQLite LOWER() only folds ASCII, so folding happens here for every driver.
func FoldTitle(title string) string {
	return strings.ToLower(title)
}

// CreateContentRequest is the body for creating content
type CreateContentRequest struct {
	Title  string                 `json:"title" binding:"required,max=500"`
	Slug   string                 `json:"slug"`
	Data   map[string]interface{} `json:"data"`
	Status ContentStatus          `json:"status"`
}

// UpdateContentRequest is the body for updating content; nil fields stay unchanged
type UpdateContentRequest struct {
	Title   *string                `json:"title" binding:"omitempty,max=500"`
	Slug    *string                `json:"slug"`
	Data    map[string]interface{} `json:"data"`
	Status  *ContentStatus         `json:"status"`
	Version *int                   `json:"version"`
}
