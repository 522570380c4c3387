package domain

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionStatus is the sales state of a lead
type SubmissionStatus string

const (
	SubmissionNew       SubmissionStatus = "new"
	SubmissionContacted SubmissionStatus = "contacted"
	SubmissionQualified SubmissionStatus = "qualified"
	SubmissionConverted SubmissionStatus = "converted"
	SubmissionLost      SubmissionStatus = "lost"
)

// Valid reports whether s is a known status
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionNew, SubmissionContacted, SubmissionQualified, SubmissionConverted, SubmissionLost:
		return true
	}
	return false
}

// FormSubmission is a lead captured from a public form
// Table: cms_form_submissions
type FormSubmission struct {
	ID           uint64            `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	SiteID       string            `gorm:"column:site_id;type:varchar(64);not null;uniqueIndex:uk_form_submissions_site_id,priority:1;index:idx_form_submissions_status,priority:1" json:"siteId"`
	SubmissionID string            `gorm:"column:submission_id;type:varchar(36);not null;uniqueIndex:uk_form_submissions_site_id,priority:2" json:"id"`
	Title        string            `gorm:"column:title;type:varchar(255)" json:"title"`
	Data         datatypes.JSONMap `gorm:"column:data" json:"data"`
	Email        string            `gorm:"column:email;type:varchar(255)" json:"email,omitempty"`
	Status       SubmissionStatus  `gorm:"column:status;type:varchar(20);not null;default:new;index:idx_form_submissions_status,priority:2" json:"status"`
	IP           string            `gorm:"column:ip;type:varchar(64)" json:"ip,omitempty"`
	UserAgent    string            `gorm:"column:user_agent;type:varchar(512)" json:"userAgent,omitempty"`
	CreatedAt    time.Time         `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time         `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for FormSubmission model
func (FormSubmission) TableName() string {
	return "cms_form_submissions"
}

// CreateFormSubmissionRequest is the public form body
type CreateFormSubmissionRequest struct {
	Title string                 `json:"title" binding:"max=255"`
	Email string                 `json:"email" binding:"omitempty,email,max=255"`
	Data  map[string]interface{} `json:"data" binding:"required"`
}

// UpdateSubmissionStatusRequest changes one lead's status
type UpdateSubmissionStatusRequest struct {
	Status SubmissionStatus `json:"status" binding:"required"`
}

// BulkSubmissionStatusRequest changes many leads' status
type BulkSubmissionStatusRequest struct {
	IDs    []string         `json:"ids" binding:"required,min=1,max=500"`
	Status SubmissionStatus `json:"status" binding:"required"`
}
