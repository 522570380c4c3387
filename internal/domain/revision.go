package domain

import (
	"time"

	"gorm.io/datatypes"
)

// RevisionChangeType describes what replaced the snapshotted state
type RevisionChangeType string

const (
	RevisionUpdate  RevisionChangeType = "update"
	RevisionArchive RevisionChangeType = "archive"
	RevisionRestore RevisionChangeType = "restore"
)

// Revision is an append-only snapshot of a content document before a change
// Table: cms_revisions
type Revision struct {
	ID            uint64             `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	SiteID        string             `gorm:"column:site_id;type:varchar(64);not null;uniqueIndex:uk_revisions_content_version,priority:1" json:"siteId"`
	ContentID     string             `gorm:"column:content_id;type:varchar(36);not null;uniqueIndex:uk_revisions_content_version,priority:2" json:"contentId"`
	Version       int                `gorm:"column:version;not null;uniqueIndex:uk_revisions_content_version,priority:3" json:"version"`
	ContentTypeID string             `gorm:"column:content_type_id;type:varchar(64);not null" json:"contentTypeId"`
	ChangeType    RevisionChangeType `gorm:"column:change_type;type:varchar(20)" json:"changeType"`
	Title         string             `gorm:"column:title;type:varchar(500)" json:"title"`
	Slug          string             `gorm:"column:slug;type:varchar(191)" json:"slug"`
	Data          datatypes.JSONMap  `gorm:"column:data" json:"data"`
	Status        ContentStatus      `gorm:"column:status;type:varchar(20)" json:"status"`
	EditedBy      string             `gorm:"column:edited_by;type:varchar(36)" json:"editedBy,omitempty"`
	CreatedAt     time.Time          `gorm:"column:created_at" json:"createdAt"`
}

// TableName specifies the table name for Revision model
func (Revision) TableName() string {
	return "cms_revisions"
}

// NewRevision snapshots c as it is now
func NewRevision(c *Content, changeType RevisionChangeType, editedBy string) *Revision {
	data := make(datatypes.JSONMap, len(c.Data))
	for k, v := range c.Data {
		data[k] = v
	}
	return &Revision{
		SiteID:        c.SiteID,
		ContentID:     c.ContentID,
		Version:       c.Version,
		ContentTypeID: c.ContentTypeID,
		ChangeType:    changeType,
		Title:         c.Title,
		Slug:          c.Slug,
		Data:          data,
		Status:        c.Status,
		EditedBy:      editedBy,
	}
}
