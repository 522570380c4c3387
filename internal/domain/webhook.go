package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Webhook events
const (
	EventContentCreated        = "content.created"
	EventContentUpdated        = "content.updated"
	EventContentPublished      = "content.published"
	EventContentArchived       = "content.archived"
	EventContentDeleted        = "content.deleted"
	EventFormSubmissionCreated = "form_submission.created"
)

// WebhookEvents lists every event a webhook can subscribe to
var WebhookEvents = []string{
	EventContentCreated, EventContentUpdated, EventContentPublished,
	EventContentArchived, EventContentDeleted, EventFormSubmissionCreated,
}

// Webhook is an outbound notification target
// Table: cms_webhooks
type Webhook struct {
	ID            uint64                      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	SiteID        string                      `gorm:"column:site_id;type:varchar(64);not null;uniqueIndex:uk_webhooks_site_webhook,priority:1" json:"siteId"`
	WebhookID     string                      `gorm:"column:webhook_id;type:varchar(36);not null;uniqueIndex:uk_webhooks_site_webhook,priority:2" json:"webhookId"`
	URL           string                      `gorm:"column:url;type:varchar(1024);not null" json:"url"`
	Secret        string                      `gorm:"column:secret;type:varchar(255)" json:"secret,omitempty"`
	Events        datatypes.JSONSlice[string] `gorm:"column:events" json:"events"`
	TrackedFields datatypes.JSONSlice[string] `gorm:"column:tracked_fields" json:"trackedFields"`
	Active        bool                        `gorm:"column:active;not null" json:"active"`
	CreatedAt     time.Time                   `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time                   `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for Webhook model
func (Webhook) TableName() string {
	return "cms_webhooks"
}

// Subscribes reports whether the webhook wants event
func (w *Webhook) Subscribes(event string) bool {
	if !w.Active {
		return false
	}
	for _, e := range w.Events {
		if e == event || e == "*" {
			return true
		}
	}
	return false
}

// Tracks reports whether any changed key is tracked; no tracked fields tracks everything.
// A tracked "data" entry matches every data.<fieldId> change.
func (w *Webhook) Tracks(changed []string) bool {
	if len(w.TrackedFields) == 0 {
		return true
	}
	for _, c := range changed {
		for _, t := range w.TrackedFields {
			if c == t || c == "data."+t || (t == "data" && strings.HasPrefix(c, "data.")) {
				return true
			}
		}
	}
	return false
}

// Redacted returns a copy without the signing secret
func (w Webhook) Redacted() Webhook {
	w.Secret = ""
	return w
}

// WebhookRequest is the body for creating or replacing a webhook
type WebhookRequest struct {
	URL           string   `json:"url" binding:"required,url,max=1024"`
	Secret        string   `json:"secret" binding:"max=255"`
	Events        []string `json:"events" binding:"required,min=1"`
	TrackedFields []string `json:"trackedFields"`
	Active        *bool    `json:"active"`
}
