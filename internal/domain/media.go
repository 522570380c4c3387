package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Media is an uploaded file
// Table: cms_media
type Media struct {
	ID         uint64            `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	SiteID     string            `gorm:"column:site_id;type:varchar(64);not null;uniqueIndex:uk_media_site_media,priority:1" json:"siteId"`
	MediaID    string            `gorm:"column:media_id;type:varchar(36);not null;uniqueIndex:uk_media_site_media,priority:2" json:"mediaId"`
	URL        string            `gorm:"column:url;type:varchar(1024)" json:"url"`
	Key        string            `gorm:"column:storage_key;type:varchar(512)" json:"key"`
	Filename   string            `gorm:"column:filename;type:varchar(255)" json:"filename"`
	MimeType   string            `gorm:"column:mime_type;type:varchar(127)" json:"contentType"`
	Size       int64             `gorm:"column:size" json:"size"`
	Width      *int              `gorm:"column:width" json:"width,omitempty"`
	Height     *int              `gorm:"column:height" json:"height,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`
	UploadedBy string            `gorm:"column:uploaded_by;type:varchar(36)" json:"uploadedBy,omitempty"`
	CreatedAt  time.Time         `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  time.Time         `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for Media model
func (Media) TableName() string {
	return "cms_media"
}

// UpdateMediaRequest replaces the metadata of an upload
type UpdateMediaRequest struct {
	Filename *string                `json:"filename" binding:"omitempty,max=255"`
	Metadata map[string]interface{} `json:"metadata"`
}
