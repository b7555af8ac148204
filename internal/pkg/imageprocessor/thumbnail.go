package imageprocessor

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	_ "golang.org/x/image/webp"
)

const (
	ThumbnailWidth   = 600
	ThumbnailQuality = 85
)

// MakeThumbnail decodes data, applies the EXIF orientation, scales it down
// to ThumbnailWidth and encodes it as lossy WebP. Smaller images keep their
// size.
func MakeThumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	if img.Bounds().Dx() > ThumbnailWidth {
		img = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, ThumbnailQuality)
	if err != nil {
		return nil, fmt.Errorf("error creating encoder options: %w", err)
	}

	var out bytes.Buffer
	if err := webp.Encode(&out, img, options); err != nil {
		return nil, fmt.Errorf("error encoding WebP image: %w", err)
	}
	return out.Bytes(), nil
}
