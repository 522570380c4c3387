package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage is the object store media uploads are written to
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// UploadResult contains the result of a file upload
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// GenerateKey creates a unique, tenant-prefixed storage key
func GenerateKey(siteID, prefix, filename string) string {
	now := time.Now()
	ext := strings.ToLower(path.Ext(filename))
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	return fmt.Sprintf("%s/%s/%d/%02d/%s_%s%s",
		siteID, prefix, now.Year(), now.Month(),
		base, uuid.NewString()[:8], ext)
}
