package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/hypernova-labs/catalog-service/internal/models"
	"github.com/hypernova-labs/catalog-service/internal/storetest"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type imageFixture struct {
	ctx     context.Context
	objects *storetest.ObjectStore
	index   *storetest.ImageIndex
	events  *storetest.Publisher
	images  *ImageService
}

func newImageFixture(t *testing.T, withIndex bool) *imageFixture {
	t.Helper()
	logger, _ := logtest.NewNullLogger()

	f := &imageFixture{
		ctx:     context.Background(),
		objects: storetest.NewObjectStore(),
		index:   storetest.NewImageIndex(),
		events:  storetest.NewPublisher(nil),
	}
	if withIndex {
		f.images = NewImageService(f.objects, f.index, f.events, logger)
	} else {
		f.images = NewImageService(f.objects, nil, f.events, logger)
	}
	return f
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func thumbnailOpts(w, h int) models.ThumbnailOptions {
	return models.ThumbnailOptions{Width: w, Height: h, Quality: DefaultThumbnailQuality}
}

func TestImageService_UploadKeepsExtensionAndIndexes(t *testing.T) {
	f := newImageFixture(t, true)
	data := pngBytes(t, 4, 4)

	img, err := f.images.Upload(f.ctx, "holiday photo.PNG", bytes.NewReader(data), int64(len(data)), "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(img.ObjectName, ".PNG"))
	assert.NotContains(t, img.ObjectName, "holiday")
	assert.NotEmpty(t, img.ETag)
	require.NotNil(t, img.Size)
	assert.Equal(t, int64(len(data)), *img.Size)

	indexed, ok := f.index.Get(img.ETag)
	require.True(t, ok)
	assert.Equal(t, img.ObjectName, indexed)
	assert.Equal(t, []string{EventImageUploaded}, f.events.Names())
}

func TestImageService_UploadsNeverOverwrite(t *testing.T) {
	f := newImageFixture(t, false)

	for i := 0; i < 2; i++ {
		_, err := f.images.Upload(f.ctx, "same.jpg", strings.NewReader("x"), 1, "image/jpeg")
		require.NoError(t, err)
	}
	assert.Len(t, f.objects.Names(), 2)
}

func TestImageService_UploadFailure(t *testing.T) {
	f := newImageFixture(t, true)
	f.objects.FailOn("Upload", errors.New("bucket gone"))

	_, err := f.images.Upload(f.ctx, "a.jpg", strings.NewReader("x"), 1, "image/jpeg")
	require.Error(t, err)
	assert.Empty(t, f.events.Names())
}

func TestImageService_GetUsesIndexWithoutScanning(t *testing.T) {
	f := newImageFixture(t, true)
	etag := f.objects.Put("a.jpg", []byte("a"), "image/jpeg")
	f.index.Set(etag, "a.jpg")

	img, err := f.images.Get(f.ctx, `"`+etag+`"`)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", img.ObjectName)
	assert.Zero(t, f.objects.ListCalls())
}

func TestImageService_GetFallsBackToScan(t *testing.T) {
	f := newImageFixture(t, true)
	f.objects.Put("a.jpg", []byte("a"), "image/jpeg")
	etag := f.objects.Put("b.jpg", []byte("b"), "image/jpeg")

	img, err := f.images.Get(f.ctx, etag)
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", img.ObjectName)
	assert.Equal(t, 1, f.objects.ListCalls())

	indexed, ok := f.index.Get(etag)
	require.True(t, ok, "scan result is remembered")
	assert.Equal(t, "b.jpg", indexed)

	_, err = f.images.Get(f.ctx, etag)
	require.NoError(t, err)
	assert.Equal(t, 1, f.objects.ListCalls())
}

func TestImageService_StaleIndexEntryIsReplaced(t *testing.T) {
	f := newImageFixture(t, true)
	etag := f.objects.Put("current.jpg", []byte("c"), "image/jpeg")
	f.index.Set(etag, "deleted.jpg")

	img, err := f.images.Get(f.ctx, etag)
	require.NoError(t, err)
	assert.Equal(t, "current.jpg", img.ObjectName)

	indexed, _ := f.index.Get(etag)
	assert.Equal(t, "current.jpg", indexed)
}

func TestImageService_BrokenIndexStillResolves(t *testing.T) {
	f := newImageFixture(t, true)
	etag := f.objects.Put("a.jpg", []byte("a"), "image/jpeg")
	f.index.Break(errors.New("redis down"))

	img, err := f.images.Get(f.ctx, etag)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", img.ObjectName)
}

func TestImageService_UnknownETagIsNotFound(t *testing.T) {
	f := newImageFixture(t, false)
	f.objects.Put("a.jpg", []byte("a"), "image/jpeg")

	_, err := f.images.Get(f.ctx, "does-not-exist")
	requireCode(t, err, models.ErrorCodeNotFound)

	_, err = f.images.Get(f.ctx, `""`)
	requireCode(t, err, models.ErrorCodeNotFound)

	_, err = f.images.Download(f.ctx, "does-not-exist", thumbnailOpts(0, 0))
	requireCode(t, err, models.ErrorCodeNotFound)

	err = f.images.Delete(f.ctx, "does-not-exist")
	requireCode(t, err, models.ErrorCodeNotFound)
}

func TestImageService_DownloadOriginal(t *testing.T) {
	f := newImageFixture(t, false)
	etag := f.objects.Put("a.png", []byte("raw bytes"), "image/png")

	dl, err := f.images.Download(f.ctx, etag, thumbnailOpts(0, 0))
	require.NoError(t, err)
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "raw bytes", string(body))
	assert.Equal(t, "a.png", dl.Filename)
	assert.Equal(t, "image/png", dl.ContentType)
	assert.Equal(t, int64(len("raw bytes")), dl.ContentLength)
	assert.False(t, dl.Inline)
}

func TestImageService_DownloadThumbnail(t *testing.T) {
	f := newImageFixture(t, false)
	etag := f.objects.Put("wide.png", pngBytes(t, 400, 200), "image/png")

	dl, err := f.images.Download(f.ctx, etag, thumbnailOpts(100, 0))
	require.NoError(t, err)
	defer dl.Body.Close()

	assert.True(t, dl.Inline)
	assert.Equal(t, "thumb_wide.png", dl.Filename)
	assert.Equal(t, "image/jpeg", dl.ContentType)
	assert.Zero(t, f.objects.OpenReaders(), "source stream is closed once the thumbnail is built")

	cfg, err := jpeg.DecodeConfig(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestImageService_DownloadThumbnailOfCorruptImage(t *testing.T) {
	f := newImageFixture(t, false)
	etag := f.objects.Put("broken.png", []byte("not an image"), "image/png")

	_, err := f.images.Download(f.ctx, etag, thumbnailOpts(64, 64))
	require.Error(t, err)
	_, isAPI := models.AsAPIError(err)
	assert.False(t, isAPI, "decode failures are internal errors")
	assert.Zero(t, f.objects.OpenReaders())
}

func TestImageService_DownloadValidatesOptions(t *testing.T) {
	f := newImageFixture(t, false)
	etag := f.objects.Put("a.png", pngBytes(t, 2, 2), "image/png")

	for _, opts := range []models.ThumbnailOptions{
		{Width: -1, Quality: 80},
		{Height: -5, Quality: 80},
		{Width: 10, Quality: 0},
		{Width: 10, Quality: 101},
	} {
		_, err := f.images.Download(f.ctx, etag, opts)
		requireCode(t, err, models.ErrorCodeInvalidRequest)
	}
}

func TestImageService_DeleteForgetsIndexEntry(t *testing.T) {
	f := newImageFixture(t, true)
	etag := f.objects.Put("a.jpg", []byte("a"), "image/jpeg")
	f.index.Set(etag, "a.jpg")

	require.NoError(t, f.images.Delete(f.ctx, etag))

	assert.Empty(t, f.objects.Names())
	_, ok := f.index.Get(etag)
	assert.False(t, ok)
	assert.Equal(t, []string{EventImageDeleted}, f.events.Names())

	_, err := f.images.Get(f.ctx, etag)
	requireCode(t, err, models.ErrorCodeNotFound)
}

func TestImageService_ListPropagatesErrors(t *testing.T) {
	f := newImageFixture(t, false)
	f.objects.Put("a.jpg", []byte("a"), "image/jpeg")
	f.objects.Put("b.jpg", []byte("b"), "image/jpeg")

	images, err := f.images.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, images, 2)

	f.objects.FailOn("List", errors.New("timeout"))
	_, err = f.images.List(f.ctx)
	assert.Error(t, err)
}
