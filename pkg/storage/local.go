package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes objects below a directory that the API serves statically
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage creates the root directory if needed
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Upload copies body to <root>/<key>
func (s *LocalStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dst, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("local upload failed: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("local upload failed: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, body)
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("local upload failed: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         s.PublicURL(key),
		ContentType: contentType,
		Size:        written,
	}, nil
}

// Delete removes the object; a missing file is not an error
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local delete failed: %w", err)
	}
	return nil
}

// PublicURL returns baseURL/key
func (s *LocalStorage) PublicURL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(key), "/")
}
