package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/query"
	"github.com/damoang/angple-cms/internal/repository"
	pkglogger "github.com/damoang/angple-cms/pkg/logger"
	"github.com/damoang/angple-cms/pkg/storage"
)

// MediaService handles uploads to object storage and their metadata rows
type MediaService struct {
	repo      repository.MediaRepository
	store     storage.Storage
	maxSize   int64    // max file size in bytes
	allowExts []string // allowed file extensions
}

// NewMediaService creates a new MediaService
func NewMediaService(repo repository.MediaRepository, store storage.Storage, maxSizeMB int, allowExts []string) *MediaService {
	exts := make([]string, 0, len(allowExts))
	for _, e := range allowExts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return &MediaService{
		repo:      repo,
		store:     store,
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		allowExts: exts,
	}
}

// Upload stores a multipart file
func (s *MediaService) Upload(ctx context.Context, siteID string, file *multipart.FileHeader, actor string) (*domain.Media, error) {
	if file.Size > s.maxSize {
		return nil, common.NewValidationError(fmt.Sprintf("file too large (max %dMB)", s.maxSize/(1024*1024)), nil)
	}
	src, err := file.Open()
	if err != nil {
		return nil, common.Internal("open upload", err)
	}
	defer src.Close()

	return s.UploadReader(ctx, siteID, file.Filename, src, actor)
}

// UploadReader stores r under a tenant-prefixed key and records it
func (s *MediaService) UploadReader(ctx context.Context, siteID, filename string, r io.Reader, actor string) (*domain.Media, error) {
	ext := strings.ToLower(path.Ext(filename))
	if !s.isAllowedExt(ext) {
		return nil, common.NewValidationError("file type not allowed", map[string]string{"ext": ext})
	}

	// one byte over the limit is enough to reject
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, common.Internal("read upload", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, common.NewValidationError(fmt.Sprintf("file too large (max %dMB)", s.maxSize/(1024*1024)), nil)
	}
	if len(data) == 0 {
		return nil, common.NewValidationError("file is empty", nil)
	}

	contentType := http.DetectContentType(data)
	if isDangerousContentType(contentType) {
		return nil, common.NewValidationError("potentially dangerous file type detected", nil)
	}
	if ext == ".svg" {
		contentType = "image/svg+xml"
	}

	var width, height *int
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		w, h := cfg.Width, cfg.Height
		width, height = &w, &h
	}

	name := sanitizeFilename(filename, ext)
	key := storage.GenerateKey(siteID, "media", name)
	result, err := s.store.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
	if err != nil {
		return nil, common.Internal("store upload", err)
	}

	m := &domain.Media{
		SiteID:     siteID,
		MediaID:    uuid.NewString(),
		URL:        result.URL,
		Key:        result.Key,
		Filename:   path.Base(filename),
		MimeType:   contentType,
		Size:       int64(len(data)),
		Width:      width,
		Height:     height,
		Metadata:   map[string]interface{}{},
		UploadedBy: actor,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		// 행 저장 실패 시 고아 객체 정리
		if delErr := s.store.Delete(ctx, result.Key); delErr != nil {
			pkglogger.GetLogger().Warn().Err(delErr).Str("key", result.Key).Msg("failed to remove orphaned upload")
		}
		return nil, wrapErr("create media", err)
	}

	l := pkglogger.WithSite(siteID)
	l.Info().
		Str("key", result.Key).
		Int64("size", m.Size).
		Str("content_type", contentType).
		Msg("media uploaded")
	return m, nil
}

// List returns uploads newest first
func (s *MediaService) List(ctx context.Context, siteID string, limit, skip int) ([]*domain.Media, *common.ListMeta, error) {
	limit = query.ClampLimit(limit)
	skip = query.ClampSkip(skip)
	items, total, err := s.repo.List(ctx, siteID, limit, skip)
	if err != nil {
		return nil, nil, wrapErr("list media", err)
	}
	if items == nil {
		items = []*domain.Media{}
	}
	return items, common.NewListMeta(limit, skip, total), nil
}

func (s *MediaService) Get(ctx context.Context, siteID, mediaID string) (*domain.Media, error) {
	m, err := s.repo.FindByID(ctx, siteID, mediaID)
	return m, wrapErr("get media", err)
}

// Update renames the upload or replaces its metadata
func (s *MediaService) Update(ctx context.Context, siteID, mediaID string, req *domain.UpdateMediaRequest) (*domain.Media, error) {
	m, err := s.repo.FindByID(ctx, siteID, mediaID)
	if err != nil {
		return nil, wrapErr("get media", err)
	}
	if req.Filename != nil {
		name := strings.TrimSpace(*req.Filename)
		if name == "" {
			return nil, common.NewValidationError("filename is required", nil)
		}
		m.Filename = path.Base(name)
	}
	if req.Metadata != nil {
		m.Metadata = req.Metadata
	}
	m.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, wrapErr("update media", err)
	}
	return m, nil
}

// Delete removes the stored object, then the row. Content referencing the URL is left as is.
func (s *MediaService) Delete(ctx context.Context, siteID, mediaID string) error {
	m, err := s.repo.FindByID(ctx, siteID, mediaID)
	if err != nil {
		return wrapErr("get media", err)
	}
	if err := s.store.Delete(ctx, m.Key); err != nil {
		return common.Internal("delete stored object", err)
	}
	return wrapErr("delete media", s.repo.Delete(ctx, siteID, mediaID))
}

func (s *MediaService) isAllowedExt(ext string) bool {
	for _, a := range s.allowExts {
		if a == ext {
			return true
		}
	}
	return false
}

func isDangerousContentType(ct string) bool {
	dangerous := []string{
		"application/x-executable",
		"application/x-sharedlib",
		"application/x-mach-binary",
		"application/x-dosexec",
		"text/html",
	}
	for _, d := range dangerous {
		if strings.HasPrefix(ct, d) {
			return true
		}
	}
	return false
}

func sanitizeFilename(original, ext string) string {
	base := strings.TrimSuffix(path.Base(original), path.Ext(original))
	// Keep only alphanumeric, Korean, dash, underscore
	var result strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '-' || r == '_' || (r >= 0xAC00 && r <= 0xD7A3) { // Korean
			result.WriteRune(r)
		}
	}
	s := result.String()
	if s == "" {
		s = "file"
	}
	return s + ext
}
