package imageprocessor_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yatube/yatube/internal/pkg/imageprocessor"
	"github.com/yatube/yatube/internal/pkg/storage"
)

type recordingSink struct {
	mu     sync.Mutex
	thumbs map[uint]string
	// images, when set, holds the current image per post
	images map[uint]string
}

func (s *recordingSink) SetThumbnail(postID uint, imageKey, thumbKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.images != nil && s.images[postID] != imageKey {
		return false, nil
	}
	s.thumbs[postID] = thumbKey
	return true, nil
}

func (s *recordingSink) setImage(postID uint, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[postID] = key
}

// gatedStore holds Open of one key until release is closed.
type gatedStore struct {
	storage.Storage
	key     string
	release chan struct{}
}

func (s *gatedStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == s.key {
		<-s.release
	}
	return s.Storage.Open(ctx, key)
}

func (s *recordingSink) get(postID uint) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.thumbs[postID]
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{G: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func withStatusCache(t *testing.T) map[string]string {
	t.Helper()
	var mu sync.Mutex
	values := map[string]string{}
	origSet, origGet := imageprocessor.SetCacheImplementation, imageprocessor.GetCacheImplementation
	imageprocessor.SetCacheImplementation = func(key string, value interface{}, _ time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		values[key] = fmt.Sprint(value)
		return nil
	}
	imageprocessor.GetCacheImplementation = func(key string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		v, ok := values[key]
		if !ok {
			return "", fmt.Errorf("cache miss")
		}
		return v, nil
	}
	t.Cleanup(func() {
		imageprocessor.SetCacheImplementation = origSet
		imageprocessor.GetCacheImplementation = origGet
	})
	return values
}

func TestThumbnailKey(t *testing.T) {
	assert.Equal(t, "thumbs/posts/2024/05/abc.webp", imageprocessor.ThumbnailKey("posts/2024/05/abc.png"))
	assert.Equal(t, "thumbs/posts/abc.webp", imageprocessor.ThumbnailKey("posts/abc"))
}

func TestMakeThumbnailScalesDown(t *testing.T) {
	thumb, err := imageprocessor.MakeThumbnail(testPNG(t, 1200, 300))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
	assert.Equal(t, imageprocessor.ThumbnailWidth, cfg.Width)
	assert.Equal(t, 150, cfg.Height)
}

func TestMakeThumbnailKeepsSmallImages(t *testing.T) {
	thumb, err := imageprocessor.MakeThumbnail(testPNG(t, 40, 20))
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
}

func TestMakeThumbnailRejectsGarbage(t *testing.T) {
	_, err := imageprocessor.MakeThumbnail([]byte("nope"))
	assert.Error(t, err)
}

func TestTakenAtWithoutExif(t *testing.T) {
	assert.Nil(t, imageprocessor.TakenAt(testPNG(t, 2, 2)))
}

func TestProcessorWritesThumbnail(t *testing.T) {
	withStatusCache(t)

	store, err := storage.NewLocalStorage(t.TempDir(), "/media/")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "posts/2024/05/pic.png", testPNG(t, 800, 400), "image/png"))

	sink := &recordingSink{thumbs: map[uint]string{}}
	p := imageprocessor.New(store, sink, 2)

	assert.False(t, p.Enqueue(1, "posts/2024/05/pic.png"), "not started yet")

	p.Start()
	require.True(t, p.Enqueue(7, "posts/2024/05/pic.png"))
	p.Stop()

	assert.Equal(t, "thumbs/posts/2024/05/pic.webp", sink.get(7))
	assert.Equal(t, imageprocessor.STATUS_COMPLETED, imageprocessor.GetPostImageStatus(7))
	assert.False(t, imageprocessor.IsPostImageProcessing(7))

	rc, err := store.Open(ctx, "thumbs/posts/2024/05/pic.webp")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestProcessorRecordsFailure(t *testing.T) {
	withStatusCache(t)

	store, err := storage.NewLocalStorage(t.TempDir(), "/media/")
	require.NoError(t, err)
	sink := &recordingSink{thumbs: map[uint]string{}}
	p := imageprocessor.New(store, sink, 1)

	p.Start()
	require.True(t, p.Enqueue(3, "posts/missing.png"))
	p.Stop()

	assert.Empty(t, sink.get(3))
	assert.Equal(t, imageprocessor.STATUS_FAILED, imageprocessor.GetPostImageStatus(3))
}

func TestProcessPostImageWithoutProcessor(t *testing.T) {
	imageprocessor.SetProcessor(nil)
	assert.NotPanics(t, func() { imageprocessor.ProcessPostImage(1, "posts/a.png") })
}

func TestProcessorDropsThumbnailOfReplacedImage(t *testing.T) {
	withStatusCache(t)

	local, err := storage.NewLocalStorage(t.TempDir(), "/media/")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, local.Save(ctx, "posts/old.png", testPNG(t, 300, 200), "image/png"))
	require.NoError(t, local.Save(ctx, "posts/new.png", testPNG(t, 300, 200), "image/png"))

	store := &gatedStore{Storage: local, key: "posts/old.png", release: make(chan struct{})}
	sink := &recordingSink{thumbs: map[uint]string{}, images: map[uint]string{5: "posts/old.png"}}
	p := imageprocessor.New(store, sink, 2)
	p.Start()

	require.True(t, p.Enqueue(5, "posts/old.png"))
	sink.setImage(5, "posts/new.png")
	require.True(t, p.Enqueue(5, "posts/new.png"))

	assert.Eventually(t, func() bool {
		return sink.get(5) == imageprocessor.ThumbnailKey("posts/new.png")
	}, 5*time.Second, 10*time.Millisecond)

	close(store.release)
	p.Stop()

	assert.Equal(t, imageprocessor.ThumbnailKey("posts/new.png"), sink.get(5))
	_, err = local.Open(ctx, imageprocessor.ThumbnailKey("posts/old.png"))
	assert.Error(t, err, "stale thumbnail removed")
}
