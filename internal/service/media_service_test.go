package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damoang/angple-cms/internal/common"
	"github.com/damoang/angple-cms/internal/domain"
	"github.com/damoang/angple-cms/internal/repository"
	"github.com/damoang/angple-cms/pkg/storage"
)

func newMediaFixture(t *testing.T) (*MediaService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)
	repo := repository.NewMediaRepository(setupTestDB(t))
	return NewMediaService(repo, store, 1, []string{".png", "jpg", ".txt"}), dir
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMediaService_UploadImage(t *testing.T) {
	svc, dir := newMediaFixture(t)
	ctx := context.Background()

	m, err := svc.UploadReader(ctx, "site-a", "../Hero Image.PNG", bytes.NewReader(pngBytes(t, 40, 30)), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "image/png", m.MimeType)
	require.NotNil(t, m.Width)
	assert.Equal(t, 40, *m.Width)
	assert.Equal(t, 30, *m.Height)
	assert.Equal(t, "Hero Image.PNG", m.Filename)
	assert.True(t, strings.HasPrefix(m.Key, "site-a/media/"))
	assert.True(t, strings.HasPrefix(m.URL, "/uploads/site-a/media/"))

	_, err = os.Stat(filepath.Join(dir, m.Key))
	require.NoError(t, err)

	got, err := svc.Get(ctx, "site-a", m.MediaID)
	require.NoError(t, err)
	assert.Equal(t, m.Key, got.Key)

	_, err = svc.Get(ctx, "site-b", m.MediaID)
	assert.Equal(t, common.KindNotFound, common.KindOf(err))
}

func TestMediaService_Rejects(t *testing.T) {
	svc, _ := newMediaFixture(t)
	ctx := context.Background()

	_, err := svc.UploadReader(ctx, "site-a", "run.exe", strings.NewReader("MZ"), "user-1")
	assert.Equal(t, common.KindValidation, common.KindOf(err))

	_, err = svc.UploadReader(ctx, "site-a", "big.txt", bytes.NewReader(make([]byte, 1024*1024+1)), "user-1")
	assert.Equal(t, common.KindValidation, common.KindOf(err))

	_, err = svc.UploadReader(ctx, "site-a", "page.txt", strings.NewReader("<html><script>alert(1)</script></html>"), "user-1")
	assert.Equal(t, common.KindValidation, common.KindOf(err))

	_, err = svc.UploadReader(ctx, "site-a", "empty.txt", strings.NewReader(""), "user-1")
	assert.Equal(t, common.KindValidation, common.KindOf(err))
}

func TestMediaService_ListUpdateDelete(t *testing.T) {
	svc, dir := newMediaFixture(t)
	ctx := context.Background()

	a, err := svc.UploadReader(ctx, "site-a", "a.txt", strings.NewReader("alpha"), "user-1")
	require.NoError(t, err)
	assert.Nil(t, a.Width)
	_, err = svc.UploadReader(ctx, "site-a", "b.txt", strings.NewReader("beta"), "user-1")
	require.NoError(t, err)

	items, meta, err := svc.List(ctx, "site-a", 1, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(2), meta.Total)

	name := "renamed.txt"
	updated, err := svc.Update(ctx, "site-a", a.MediaID, &domain.UpdateMediaRequest{
		Filename: &name,
		Metadata: map[string]interface{}{"alt": "Alpha"},
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", updated.Filename)
	assert.Equal(t, "Alpha", updated.Metadata["alt"])

	require.NoError(t, svc.Delete(ctx, "site-a", a.MediaID))
	_, err = os.Stat(filepath.Join(dir, a.Key))
	assert.True(t, os.IsNotExist(err))
	_, err = svc.Get(ctx, "site-a", a.MediaID)
	assert.Equal(t, common.KindNotFound, common.KindOf(err))
}
