package imageprocessor

import (
	"fmt"
	"time"

	"github.com/yatube/yatube/internal/pkg/cache"
)

// Cache key format for thumbnail generation status
const PostImageStatusKeyFormat = "post:image:status:%d"

// Status constants for image processing
const (
	STATUS_PENDING    = "pending"
	STATUS_PROCESSING = "processing"
	STATUS_COMPLETED  = "completed"
	STATUS_FAILED     = "failed"
)

// Overridable for tests
var (
	SetCacheImplementation = cache.Set
	GetCacheImplementation = cache.Get
)

// SetPostImageStatus records the thumbnail status for a post. It is a no-op
// without Redis.
func SetPostImageStatus(postID uint, status string) {
	key := fmt.Sprintf(PostImageStatusKeyFormat, postID)
	_ = SetCacheImplementation(key, status, 24*time.Hour)
}

// GetPostImageStatus returns the last recorded status, or "" if unknown.
func GetPostImageStatus(postID uint) string {
	status, err := GetCacheImplementation(fmt.Sprintf(PostImageStatusKeyFormat, postID))
	if err != nil {
		return ""
	}
	return status
}

// IsPostImageProcessing reports whether a thumbnail is still on its way.
func IsPostImageProcessing(postID uint) bool {
	if postID == 0 {
		return false
	}
	status := GetPostImageStatus(postID)
	return status == STATUS_PENDING || status == STATUS_PROCESSING
}
