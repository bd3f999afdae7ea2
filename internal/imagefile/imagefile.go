package imagefile

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// Encoder encodes an image into file bytes.
type Encoder interface {
	// Encode encodes an image to bytes in the target format.
	Encode(img image.Image) ([]byte, error)

	// Format returns the format name (e.g. "qoi", "png", "webp").
	Format() string

	// FileExtension returns the appropriate file extension.
	FileExtension() string
}

// NewEncoder creates an encoder for the given format and quality. Quality
// only affects the lossy formats.
func NewEncoder(format string, quality int) (Encoder, error) {
	switch format {
	case "qoi":
		return &QOIEncoder{}, nil
	case "png":
		return &PNGEncoder{}, nil
	case "jpeg", "jpg":
		return &JPEGEncoder{Quality: quality}, nil
	case "webp":
		return newWebPEncoder(quality)
	default:
		return nil, fmt.Errorf("unsupported image format: %q (supported: qoi, png, jpeg, webp)", format)
	}
}

// FormatForPath maps a file name to the format name understood by
// NewEncoder and DecodeImage, or "" for an unrecognized extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".qoi":
		return "qoi"
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".webp":
		return "webp"
	}
	return ""
}
