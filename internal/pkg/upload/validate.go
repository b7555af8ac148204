package upload

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// AllowedExtensions is the sorted allow-list shown in error messages.
var AllowedExtensions = []string{"bmp", "gif", "jfif", "jpe", "jpeg", "jpg", "png", "tif", "tiff", "webp"}

var allowedExt = func() map[string]bool {
	m := make(map[string]bool, len(AllowedExtensions))
	for _, ext := range AllowedExtensions {
		m[ext] = true
	}
	return m
}()

const DefaultMaxBytes int64 = 10 << 20

var (
	ErrInvalidImage = errors.New("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	ErrEmptyFile    = errors.New("The submitted file is empty.")
)

// ExtensionError reports a file extension outside the allow-list.
type ExtensionError struct {
	Ext string
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("File extension '%s' is not supported. Supported file extensions: '%s'.",
		e.Ext, strings.Join(AllowedExtensions, ", "))
}

// SizeError reports an upload above the configured limit.
type SizeError struct {
	Size, Max int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("Ensure this file is at most %d bytes (it has %d).", e.Max, e.Size)
}

// Image is an upload that passed validation.
type Image struct {
	Filename string
	Ext      string
	Data     []byte
	Width    int
	Height   int
	MimeType string
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// ValidateImage checks the extension allow-list, the size limit and finally
// that the content decodes as a raster image. maxBytes <= 0 disables the
// size check.
func ValidateImage(filename string, data []byte, maxBytes int64) (*Image, error) {
	ext := Extension(filename)
	if !allowedExt[ext] {
		return nil, &ExtensionError{Ext: ext}
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, &SizeError{Size: int64(len(data)), Max: maxBytes}
	}

	// Scriptable content never reaches the decoder
	detected := http.DetectContentType(data)
	if strings.HasPrefix(detected, "text/") || strings.HasPrefix(detected, "application/xhtml") || detected == "image/svg+xml" {
		return nil, ErrInvalidImage
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImage
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, ErrInvalidImage
	}

	return &Image{
		Filename: filepath.Base(filename),
		Ext:      ext,
		Data:     data,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: detected,
	}, nil
}
