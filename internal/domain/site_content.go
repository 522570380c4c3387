package domain

import (
	"time"

	"gorm.io/datatypes"
)

// SiteContent is the singleton text configuration of a public site
// Table: cms_site_contents
type SiteContent struct {
	ID        uint64            `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	SiteID    string            `gorm:"column:site_id;type:varchar(64);not null;uniqueIndex" json:"siteId"`
	Fields    datatypes.JSONMap `gorm:"column:fields" json:"fields"`
	UpdatedBy string            `gorm:"column:updated_by;type:varchar(36)" json:"updatedBy,omitempty"`
	CreatedAt time.Time         `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time         `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for SiteContent model
func (SiteContent) TableName() string {
	return "cms_site_contents"
}

// UpsertSiteContentRequest replaces the site's text fields
type UpsertSiteContentRequest struct {
	Fields map[string]interface{} `json:"fields" binding:"required"`
}
