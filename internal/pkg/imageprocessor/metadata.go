package imageprocessor

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// TakenAt returns the EXIF capture time of an image, or nil when the file
// carries no usable EXIF block.
func TakenAt(data []byte) *time.Time {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		log.Debugf("[ImageProcessor] No EXIF data: %v", err)
		return nil
	}

	dt, err := x.DateTime()
	if err != nil || dt.IsZero() {
		return nil
	}
	return &dt
}
