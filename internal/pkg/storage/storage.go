package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yatube/yatube/internal/pkg/env"
)

// ErrNotFound is returned by Open when the key does not exist.
var ErrNotFound = errors.New("media object not found")

// Storage persists uploaded media under opaque keys such as
// "posts/2024/05/<uuid>.png".
type Storage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
	Name() string
}

// Config selects and configures the media backend.
type Config struct {
	Backend string // local or s3
	Root    string
	BaseURL string
	S3      S3Config
}

// LoadConfig reads MEDIA_* and S3_* from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Backend: env.GetEnv("MEDIA_STORAGE", "local"),
		Root:    env.GetEnv("MEDIA_ROOT", "./media"),
		BaseURL: env.GetEnv("MEDIA_URL", "/media/"),
		S3: S3Config{
			AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
			Region:          env.GetEnv("S3_REGION", "us-east-1"),
			BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
			EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
			PublicURL:       env.GetEnv("S3_PUBLIC_URL", ""),
		},
	}

	switch cfg.Backend {
	case "local":
	case "s3":
		if err := cfg.S3.Validate(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported MEDIA_STORAGE %q", cfg.Backend)
	}
	return cfg, nil
}

// New builds the configured backend.
func New(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg.Backend == "s3" {
		return NewS3Storage(ctx, cfg.S3)
	}
	return NewLocalStorage(cfg.Root, cfg.BaseURL)
}

// NewKey returns a unique key below prefix, bucketed by year and month.
func NewKey(prefix, ext string, now time.Time) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	name := uuid.New().String()
	if ext != "" {
		name += "." + ext
	}
	return path.Join(prefix, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())), name)
}

// ContentType maps an image extension to its MIME type.
func ContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg", ".jpe", ".jfif":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".bmp":
		return "image/bmp"
	case ".tiff", ".tif":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

var (
	defaultStorage Storage
	defaultMu      sync.RWMutex
)

// SetDefault installs the process-wide media storage.
func SetDefault(s Storage) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultStorage = s
}

// GetDefault returns the process-wide media storage, or nil before setup.
func GetDefault() Storage {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultStorage
}

// MediaURL resolves key through the default storage; empty keys stay empty.
func MediaURL(key string) string {
	if key == "" {
		return ""
	}
	if s := GetDefault(); s != nil {
		return s.URL(key)
	}
	return "/media/" + key
}
