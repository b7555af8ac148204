package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	key := NewKey("posts", ".PNG", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(key, "posts/2024/05/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.NotEqual(t, key, NewKey("posts", "png", time.Now()))
}

func TestLocalStorageRoundTrip(t *testing.T) {
	st, err := NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, "posts/2024/05/a.png", []byte("data"), "image/png"))
	assert.Equal(t, "/media/posts/2024/05/a.png", st.URL("posts/2024/05/a.png"))

	rc, err := st.Open(ctx, "posts/2024/05/a.png")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "data", string(body))

	require.NoError(t, st.Delete(ctx, "posts/2024/05/a.png"))
	require.NoError(t, st.Delete(ctx, "posts/2024/05/a.png"))
	_, err = st.Open(ctx, "posts/2024/05/a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageStaysInRoot(t *testing.T) {
	root := t.TempDir()
	st, err := NewLocalStorage(root, "/media/")
	require.NoError(t, err)

	p, err := st.path("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, root), p)
}

func TestS3URL(t *testing.T) {
	st := &S3Storage{cfg: S3Config{BucketName: "media", Region: "eu-central-1"}}
	assert.Equal(t, "https://media.s3.eu-central-1.amazonaws.com/posts/a.png", st.URL("posts/a.png"))

	st.cfg.EndpointURL = "http://minio:9000/"
	assert.Equal(t, "http://minio:9000/media/posts/a.png", st.URL("posts/a.png"))

	st.cfg.PublicURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/posts/a.png", st.URL("/posts/a.png"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType("x.JFIF"))
	assert.Equal(t, "image/webp", ContentType("thumbs/x.webp"))
	assert.Equal(t, "application/octet-stream", ContentType("x"))
}
