package domain

import (
	"regexp"
	"time"

	"gorm.io/datatypes"
)

// FieldType is the tag of a content type field
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldTextarea  FieldType = "textarea"
	FieldRichText  FieldType = "richtext"
	FieldNumber    FieldType = "number"
	FieldBoolean   FieldType = "boolean"
	FieldDate      FieldType = "date"
	FieldImage     FieldType = "image"
	FieldFile      FieldType = "file"
	FieldSelect    FieldType = "select"
	FieldReference FieldType = "reference"
	FieldJSON      FieldType = "json"
	FieldURL       FieldType = "url"
	FieldEmail     FieldType = "email"
)

// FieldTypes lists every supported field type
var FieldTypes = []FieldType{
	FieldText, FieldTextarea, FieldRichText, FieldNumber, FieldBoolean, FieldDate,
	FieldImage, FieldFile, FieldSelect, FieldReference, FieldJSON, FieldURL, FieldEmail,
}

// Valid reports whether t is a known field type
func (t FieldType) Valid() bool {
	for _, ft := range FieldTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// SlugPattern is the shape of a contentTypeId
var SlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// SiteIDPattern is the shape of a siteId; it also keeps cache key globs literal
var SiteIDPattern = SlugPattern

// ValidSiteID reports whether id is a well-formed siteId
func ValidSiteID(id string) bool {
	return SiteIDPattern.MatchString(id)
}

// ContentSlugPattern is the shape of a content slug
var ContentSlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,190}$`)

// ContentTypeField is one typed field of a content type
type ContentTypeField struct {
	FieldID   string    `json:"fieldId"`
	Name      string    `json:"name"`
	Type      FieldType `json:"type"`
	Required  bool      `json:"required"`
	MinLength *int      `json:"minLength,omitempty"`
	MaxLength *int      `json:"maxLength,omitempty"`
	Pattern   string    `json:"pattern,omitempty"`
	Options   []string  `json:"options,omitempty"`
}

// ContentType is a per-site schema
// Table: cms_content_types
type ContentType struct {
	ID            uint64                                `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	SiteID        string                                `gorm:"column:site_id;type:varchar(64);not null;uniqueIndex:uk_content_types_site_type,priority:1" json:"siteId"`
	ContentTypeID string                                `gorm:"column:content_type_id;type:varchar(64);not null;uniqueIndex:uk_content_types_site_type,priority:2" json:"contentTypeId"`
	Name          string                                `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description   string                                `gorm:"column:description;type:text" json:"description,omitempty"`
	Fields        datatypes.JSONSlice[ContentTypeField] `gorm:"column:fields" json:"fields"`
	IsSystem      bool                                  `gorm:"column:is_system;default:false" json:"isSystem"`
	CreatedAt     time.Time                             `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time                             `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name for ContentType model
func (ContentType) TableName() string {
	return "cms_content_types"
}

// StripUnknown returns a copy of data holding only declared field ids
func (ct *ContentType) StripUnknown(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for _, f := range ct.Fields {
		if v, ok := data[f.FieldID]; ok {
			out[f.FieldID] = v
		}
	}
	return out
}

// CreateContentTypeRequest is the body for creating a content type
type CreateContentTypeRequest struct {
	ContentTypeID string             `json:"contentTypeId" binding:"required"`
	Name          string             `json:"name" binding:"required,max=255"`
	Description   string             `json:"description"`
	Fields        []ContentTypeField `json:"fields"`
}

// UpdateContentTypeRequest is the body for updating a content type
type UpdateContentTypeRequest struct {
	Name        *string            `json:"name" binding:"omitempty,max=255"`
	Description *string            `json:"description"`
	Fields      []ContentTypeField `json:"fields"`
}
